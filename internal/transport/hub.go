package transport

import (
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/bigtwo/internal/engine"
)

// writeWait bounds how long a single frame write may block before the
// subscriber is dropped, mirroring the teacher's bot write pump.
const writeWait = 10 * time.Second

// envelope is the JSON frame every event is published as: a type tag
// plus the kind-specific payload, so clients can dispatch on "kind"
// without a second round of sniffing (spec §6.3).
type envelope struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}

// Hub is a websocket-backed EventBus (spec §6.3): one topic per room,
// fanned out to every subscriber connection registered for that room.
// Grounded on the teacher's Server.botCount/Register bookkeeping in
// internal/server/server.go, generalized from one bot-per-connection
// to N event-subscribers-per-room.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[*subscriber]struct{}
	logger      *log.Logger
}

type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewHub constructs an empty event hub.
func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
		logger:      logger.WithPrefix("transport.hub"),
	}
}

// Subscribe registers conn to receive roomID's events until it is
// closed or Unsubscribe is called.
func (h *Hub) Subscribe(roomID string, conn *websocket.Conn) *subscriber {
	sub := &subscriber{conn: conn}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscribers[roomID] == nil {
		h.subscribers[roomID] = make(map[*subscriber]struct{})
	}
	h.subscribers[roomID][sub] = struct{}{}
	return sub
}

// Unsubscribe removes sub from roomID's topic.
func (h *Hub) Unsubscribe(roomID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers[roomID], sub)
}

// Publish satisfies engine.EventBus: it encodes event as a JSON
// envelope and writes it to every subscriber of roomID, dropping any
// connection that fails to keep up rather than blocking the commit
// path that triggered it.
func (h *Hub) Publish(roomID string, event engine.Event) {
	payload, err := eventPayload(event)
	if err != nil {
		h.logger.Error("failed to encode event", "kind", event.Kind(), "error", err)
		return
	}
	frame, err := json.Marshal(envelope{Kind: event.Kind(), Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal envelope", "kind", event.Kind(), "error", err)
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers[roomID]))
	for sub := range h.subscribers[roomID] {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.mu.Lock()
		_ = sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, frame)
		sub.mu.Unlock()
		if err != nil {
			h.logger.Debug("dropping unresponsive subscriber", "room", roomID, "error", err)
			h.Unsubscribe(roomID, sub)
			_ = sub.conn.Close()
		}
	}
}

// eventPayload renders event's kind-specific fields as a JSON-ready
// value, translating internal bigtwo.Card values to the wire's
// {rank, suit} shape.
func eventPayload(event engine.Event) (interface{}, error) {
	switch e := event.(type) {
	case engine.CardsPlayedEvent:
		return map[string]interface{}{
			"seat_index": e.SeatIndex,
			"cards":      cardsToWire(e.Cards),
			"combo_kind": e.ComboKind.String(),
		}, nil
	case engine.PlayerPassedEvent:
		return map[string]interface{}{"seat_index": e.SeatIndex}, nil
	case engine.TrickClearedEvent:
		return map[string]interface{}{"next_turn": e.NextTurn, "reason": e.Reason}, nil
	case engine.TimerStartedEvent:
		return map[string]interface{}{
			"sequence_id": e.SequenceID,
			"end_at_ms":   e.EndAtMS,
			"exempt_seat": e.ExemptSeat,
			"triggering_play": map[string]interface{}{
				"seat":  e.TriggeringPlay.Seat,
				"cards": cardsToWire(e.TriggeringPlay.Combo.Cards),
			},
		}, nil
	case engine.TimerCancelledEvent:
		return map[string]interface{}{"sequence_id": e.SequenceID, "reason": e.Reason}, nil
	case engine.TimerExpiredEvent:
		return map[string]interface{}{"sequence_id": e.SequenceID}, nil
	case engine.MatchEndedEvent:
		lines := make([]matchScoreWire, len(e.MatchScores))
		for i, l := range e.MatchScores {
			lines[i] = matchScoreWire{SeatIndex: l.SeatIndex, CardsRemaining: l.CardsRemaining, MatchPoints: l.MatchPoints, Cumulative: l.Cumulative}
		}
		return map[string]interface{}{"match_scores": lines}, nil
	case engine.GameOverEvent:
		return map[string]interface{}{"final_winner_index": e.FinalWinnerIndex, "final_scores": scoresToWire(e.FinalScores)}, nil
	default:
		return nil, errUnknownEventKind(event.Kind())
	}
}

// scoresToWire keys final scores by seat index as a string, since JSON
// object keys must be strings.
func scoresToWire(scores map[int]int) map[string]int {
	out := make(map[string]int, len(scores))
	for seat, score := range scores {
		out[strconv.Itoa(seat)] = score
	}
	return out
}

type errUnknownEventKind string

func (e errUnknownEventKind) Error() string { return "transport: unknown event kind " + string(e) }
