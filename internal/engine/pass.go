package engine

import (
	"context"

	"github.com/lox/bigtwo/internal/bigtwo"
)

// PlayerPass executes a pass action (spec §4.2.2): actorIdentity
// declines to play on their turn. mode distinguishes a human-initiated
// call from the bot coordinator's internal call.
func (e *Engine) PlayerPass(ctx context.Context, roomID, actorIdentity string, mode ActionMode) (*bigtwo.GameState, error) {
	seat, err := e.resolveSeat(ctx, roomID, actorIdentity)
	if err != nil {
		return nil, err
	}

	var pending []Event
	newState, err := e.commit(ctx, roomID, mode, func(state *bigtwo.GameState) (*bigtwo.GameState, error) {
		pending = nil
		next, events, applyErr := e.applyPass(state, seat)
		if applyErr != nil {
			return nil, applyErr
		}
		pending = events
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range pending {
		e.events.Publish(roomID, ev)
	}
	return newState, nil
}

// applyPass validates and executes a single pass attempt against
// state, in the order given by spec §4.2.2.
func (e *Engine) applyPass(state *bigtwo.GameState, seat bigtwo.Seat) (*bigtwo.GameState, []Event, error) {
	if state.Phase != bigtwo.PhaseFirstPlay && state.Phase != bigtwo.PhasePlaying {
		return nil, nil, bigtwo.NewGameError(bigtwo.ErrKindGameNotActive, string(state.Phase))
	}
	if state.CurrentTurn != seat.Index {
		return nil, nil, bigtwo.NewGameError(bigtwo.ErrKindNotYourTurn, "")
	}
	if state.LastPlay == nil {
		if state.Passes == 0 {
			// Race exception (spec §4.2.2 step 2): last_play and passes are
			// always reset together (trick clear, match start), so a pass
			// that arrives while leading with passes still at zero is a
			// client racing that reset rather than a real protocol
			// violation. Treat it as an idempotent no-op success.
			return state.Clone(), nil, nil
		}
		return nil, nil, bigtwo.NewGameError(bigtwo.ErrKindCannotPassWhenLeading, "")
	}
	if required := mustPlayHighestBeatingSingle(state, seat); required != nil {
		return nil, nil, bigtwo.NewRequiredCardError(*required)
	}

	next := state.Clone()
	next.Passes++
	events := []Event{PlayerPassedEvent{SeatIndex: seat.Index}}

	if next.Passes == next.SeatCount-1 {
		// Every other seat has passed since the last play: the trick
		// clears and its winner leads the next one (spec §4.2.2 step 6).
		winner := next.LastPlay.Seat
		if next.AutoPassTimer != nil {
			events = append(events, TimerCancelledEvent{SequenceID: next.AutoPassTimer.SequenceID, Reason: TimerCancelManualPass})
			next.AutoPassTimer = nil
		}
		next.LastPlay = nil
		next.Passes = 0
		next.CurrentTurn = winner
		events = append(events, TrickClearedEvent{NextTurn: winner, Reason: TrickClearThreePasses})
		return next, events, nil
	}

	if next.AutoPassTimer != nil {
		events = append(events, TimerCancelledEvent{SequenceID: next.AutoPassTimer.SequenceID, Reason: TimerCancelManualPass})
		next.AutoPassTimer = nil
	}
	next.CurrentTurn = next.NextSeat(seat.Index)
	return next, events, nil
}
