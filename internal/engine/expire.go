package engine

import (
	"context"
	"errors"

	"github.com/lox/bigtwo/internal/bigtwo"
)

// errTimerAlreadyCleared marks a no-op ExpireTimer call: the scanner
// observed an expired timer, but by the time this ran a manual pass or
// a concurrent expiry already cleared it.
var errTimerAlreadyCleared = errors.New("engine: timer already cleared")

// ExpireTimer executes the auto-pass timer's expiry side effect (spec
// §4.3): the seat that made the unbeatable play is treated as having
// won the trick outright, exactly as if every other seat had manually
// passed. It satisfies timer.ExpireFunc.
func (e *Engine) ExpireTimer(ctx context.Context, roomID string) error {
	var pending []Event
	// This is a system-driven commit, not a bot-coordinator move, so
	// it uses ActionModeExternal: if the trick now lands on a bot
	// seat, the coordinator must be retriggered same as for any
	// human action (spec §9).
	_, err := e.commit(ctx, roomID, ActionModeExternal, func(state *bigtwo.GameState) (*bigtwo.GameState, error) {
		pending = nil
		if state.AutoPassTimer == nil || !state.AutoPassTimer.Active {
			return nil, errTimerAlreadyCleared
		}
		next, events := applyTimerExpiry(state)
		pending = events
		return next, nil
	})
	if err != nil {
		if errors.Is(err, errTimerAlreadyCleared) {
			return nil
		}
		return err
	}

	for _, ev := range pending {
		e.events.Publish(roomID, ev)
	}
	return nil
}

func applyTimerExpiry(state *bigtwo.GameState) (*bigtwo.GameState, []Event) {
	next := state.Clone()
	timer := next.AutoPassTimer
	exempt := timer.ExemptSeat

	next.AutoPassTimer = nil
	next.LastPlay = nil
	next.Passes = 0
	next.CurrentTurn = exempt

	events := []Event{
		TimerExpiredEvent{SequenceID: timer.SequenceID},
		TrickClearedEvent{NextTurn: exempt, Reason: TrickClearTimerExpired},
	}
	return next, events
}
