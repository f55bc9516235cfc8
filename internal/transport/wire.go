// Package transport is the HTTP+WebSocket front door to the engine
// (spec §6.1-§6.3), grounded on the teacher's internal/server package:
// a net/http.ServeMux of plain handlers plus a gorilla/websocket hub
// for the one-topic-per-room event fanout, generalized from framed
// binary protocol messages to the JSON wire contract spec.md names
// explicitly at the RPC boundary.
package transport

import "github.com/lox/bigtwo/internal/bigtwo"

// cardWire is the {rank, suit} shape spec.md §6.1 specifies for a card
// on the wire, distinct from the engine's internal "3D"-style Card.ID.
type cardWire struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

func (c cardWire) toCard() (bigtwo.Card, bool) {
	rank, ok := bigtwo.ParseRank(c.Rank)
	if !ok {
		return bigtwo.Card{}, false
	}
	suit, ok := bigtwo.ParseSuit(c.Suit)
	if !ok {
		return bigtwo.Card{}, false
	}
	return bigtwo.NewCard(rank, suit), true
}

func cardToWire(c bigtwo.Card) cardWire {
	return cardWire{Rank: c.Rank.String(), Suit: c.Suit.Letter()}
}

func cardsToWire(cards []bigtwo.Card) []cardWire {
	out := make([]cardWire, len(cards))
	for i, c := range cards {
		out[i] = cardToWire(c)
	}
	return out
}

// playCardsRequest is spec.md §6.1's PlayCards request shape.
type playCardsRequest struct {
	RoomCode      string     `json:"room_code"`
	ActorIdentity string     `json:"actor_identity"`
	Cards         []cardWire `json:"cards"`
}

// passRequest is spec.md §6.1's PlayerPass request shape.
type passRequest struct {
	RoomCode      string `json:"room_code"`
	ActorIdentity string `json:"actor_identity"`
}

// autoPassTimerWire mirrors bigtwo.TimerState for the wire.
type autoPassTimerWire struct {
	SequenceID uint64 `json:"sequence_id"`
	EndAtMS    int64  `json:"end_at_ms"`
	ExemptSeat int    `json:"exempt_seat"`
}

func timerToWire(t *bigtwo.TimerState) *autoPassTimerWire {
	if t == nil {
		return nil
	}
	return &autoPassTimerWire{SequenceID: t.SequenceID, EndAtMS: t.EndAtMS, ExemptSeat: t.ExemptSeat}
}

// matchScoreWire mirrors engine.MatchScoreLine for the wire.
type matchScoreWire struct {
	SeatIndex      int `json:"seat_index"`
	CardsRemaining int `json:"cards_remaining"`
	MatchPoints    int `json:"match_points"`
	Cumulative     int `json:"cumulative"`
}

// playCardsResponse is spec.md §6.1's PlayCards success response shape.
type playCardsResponse struct {
	Success           bool              `json:"success"`
	NextTurn          int               `json:"next_turn"`
	ComboType         string            `json:"combo_type"`
	CardsRemaining    int               `json:"cards_remaining"`
	MatchEnded        bool              `json:"match_ended"`
	GameOver          bool              `json:"game_over"`
	FinalWinnerIndex  *int              `json:"final_winner_index,omitempty"`
	MatchScores       []matchScoreWire  `json:"match_scores,omitempty"`
	AutoPassTimer     *autoPassTimerWire `json:"auto_pass_timer,omitempty"`
}

// passResponse is spec.md §6.1's PlayerPass success response shape.
type passResponse struct {
	Success       bool               `json:"success"`
	NextTurn      int                `json:"next_turn"`
	Passes        int                `json:"passes"`
	TrickCleared  bool               `json:"trick_cleared"`
	AutoPassTimer *autoPassTimerWire `json:"auto_pass_timer,omitempty"`
}

// errorResponse is the shared failure shape for both action RPCs.
type errorResponse struct {
	Success bool             `json:"success"`
	Error   bigtwo.ErrorKind `json:"error"`
	Details string           `json:"details,omitempty"`
}
