package transport

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/lox/bigtwo/internal/engine"
	"github.com/lox/bigtwo/internal/store"
)

// Server is the HTTP+WebSocket front door to a running engine.Engine
// (spec §6.1, §6.3). Grounded on internal/server/server.go's mux
// assembly and routesOnce/ensureRoutes pattern.
type Server struct {
	engine   *engine.Engine
	store    store.Store
	hub      *Hub
	upgrader websocket.Upgrader
	mux      *http.ServeMux
	logger   *log.Logger

	httpServer *http.Server
	routesOnce sync.Once
}

// New builds a Server wrapping eng, publishing events to hub. st
// resolves a caller's identity to its seat index for response shaping.
func New(eng *engine.Engine, st store.Store, hub *Hub, logger *log.Logger) *Server {
	return &Server{
		engine: eng,
		store:  st,
		hub:    hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux:    http.NewServeMux(),
		logger: logger.WithPrefix("transport"),
	}
}

func (s *Server) ensureRoutes() {
	s.routesOnce.Do(func() {
		s.mux.HandleFunc("/health", s.handleHealth)
		s.mux.HandleFunc("/actions/play", s.handlePlayCards)
		s.mux.HandleFunc("/actions/pass", s.handlePass)
		s.mux.HandleFunc("/rooms/", s.handleRoomEvents)
	})
}

// Start listens on addr and serves until the process is signaled to
// stop (mirrors internal/server/server.go's Start/Serve split).
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve serves HTTP on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.ensureRoutes()
	s.httpServer = &http.Server{Handler: s.mux}
	s.logger.Info("server starting", "addr", listener.Addr().String())
	return s.httpServer.Serve(listener)
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK\n"))
}

// handlePlayCards serves the PlayCards action RPC (spec §6.1).
func (s *Server) handlePlayCards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req playCardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: bigtwo.ErrKindInvalidCombination, Details: err.Error()})
		return
	}

	cardIDs := make([]string, 0, len(req.Cards))
	for _, cw := range req.Cards {
		card, ok := cw.toCard()
		if !ok {
			writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: bigtwo.ErrKindInvalidCombination, Details: "unparseable card"})
			return
		}
		cardIDs = append(cardIDs, card.ID())
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	state, err := s.engine.PlayCards(ctx, req.RoomCode, req.ActorIdentity, cardIDs, engine.ActionModeExternal)
	if err != nil {
		writeGameError(w, err)
		return
	}

	resp := playCardsResponse{
		Success:          true,
		NextTurn:         state.CurrentTurn,
		CardsRemaining:   state.HandCount(s.resolveSeatIndex(ctx, req.RoomCode, req.ActorIdentity)),
		MatchEnded:       state.Phase == bigtwo.PhaseMatchFinished || state.Phase == bigtwo.PhaseGameOver,
		GameOver:         state.Phase == bigtwo.PhaseGameOver,
		FinalWinnerIndex: state.FinalWinner,
		AutoPassTimer:    timerToWire(state.AutoPassTimer),
	}
	if state.LastPlay != nil {
		resp.ComboType = state.LastPlay.Combo.Kind.String()
	}
	if resp.MatchEnded {
		resp.MatchScores = matchScoresFromState(state)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePass serves the PlayerPass action RPC (spec §6.1).
func (s *Server) handlePass(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req passRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Error: bigtwo.ErrKindInvalidCombination, Details: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	state, err := s.engine.PlayerPass(ctx, req.RoomCode, req.ActorIdentity, engine.ActionModeExternal)
	if err != nil {
		writeGameError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, passResponse{
		Success:       true,
		NextTurn:      state.CurrentTurn,
		Passes:        state.Passes,
		TrickCleared:  state.LastPlay == nil,
		AutoPassTimer: timerToWire(state.AutoPassTimer),
	})
}

// handleRoomEvents upgrades /rooms/{id}/events to a websocket
// subscription on that room's event topic (spec §6.3).
func (s *Server) handleRoomEvents(w http.ResponseWriter, r *http.Request) {
	roomID := roomIDFromPath(r.URL.Path)
	if roomID == "" {
		http.NotFound(w, r)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "room", roomID, "error", err)
		return
	}

	sub := s.hub.Subscribe(roomID, conn)
	s.logger.Debug("subscriber connected", "room", roomID)

	// Drain and discard inbound frames; this topic is server-to-client
	// only. The read loop's sole purpose is detecting disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.hub.Unsubscribe(roomID, sub)
			_ = conn.Close()
			return
		}
	}
}

const requestTimeout = 5 * time.Second

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeGameError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusOK, errorResponse{
		Success: false,
		Error:   bigtwo.KindOf(err),
		Details: err.Error(),
	})
}

// resolveSeatIndex looks up identity's seat in roomID so the response
// can report that seat's own remaining hand size. A lookup failure
// (seat removed mid-request, room renamed) degrades to -1 rather than
// failing a response the engine has already committed.
func (s *Server) resolveSeatIndex(ctx context.Context, roomID, identity string) int {
	room, err := s.store.LoadRoom(ctx, roomID)
	if err != nil {
		return -1
	}
	seat, ok := room.SeatByIdentity(identity)
	if !ok {
		return -1
	}
	return seat.Index
}

func matchScoresFromState(state *bigtwo.GameState) []matchScoreWire {
	lines := make([]matchScoreWire, 0, state.SeatCount)
	for seat := 0; seat < state.SeatCount; seat++ {
		points := 0
		if state.LastMatchWinner == nil || *state.LastMatchWinner != seat {
			points = bigtwo.MatchPoints(state.HandCount(seat))
		}
		lines = append(lines, matchScoreWire{
			SeatIndex:      seat,
			CardsRemaining: state.HandCount(seat),
			MatchPoints:    points,
			Cumulative:     state.Scores[seat],
		})
	}
	return lines
}

func roomIDFromPath(path string) string {
	const prefix = "/rooms/"
	if len(path) <= len(prefix) || path[:len(prefix)] != prefix {
		return ""
	}
	rest := path[len(prefix):]
	for i, c := range rest {
		if c == '/' {
			return rest[:i]
		}
	}
	return rest
}
