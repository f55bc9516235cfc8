package engine

import (
	"context"

	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/lox/bigtwo/internal/combo"
)

// PlayCards executes a play action (spec §4.2.1): actorIdentity plays
// the cards named by cardIDs out of their hand. mode distinguishes a
// human-initiated call from the bot coordinator's internal call.
func (e *Engine) PlayCards(ctx context.Context, roomID, actorIdentity string, cardIDs []string, mode ActionMode) (*bigtwo.GameState, error) {
	seat, err := e.resolveSeat(ctx, roomID, actorIdentity)
	if err != nil {
		return nil, err
	}

	cards, err := parseCards(cardIDs)
	if err != nil {
		return nil, bigtwo.NewGameError(bigtwo.ErrKindInvalidCombination, err.Error())
	}

	var pending []Event
	newState, err := e.commit(ctx, roomID, mode, func(state *bigtwo.GameState) (*bigtwo.GameState, error) {
		pending = nil
		next, events, applyErr := e.applyPlay(state, seat, cards)
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

// applyPlay validates and executes a single play attempt against state,
// in the order given by spec §4.2.1. It never mutates state; it
// returns a freshly cloned successor.
func (e *Engine) applyPlay(state *bigtwo.GameState, seat bigtwo.Seat, cards []bigtwo.Card) (*bigtwo.GameState, []Event, error) {
	if state.Phase != bigtwo.PhaseFirstPlay && state.Phase != bigtwo.PhasePlaying {
		return nil, nil, bigtwo.NewGameError(bigtwo.ErrKindGameNotActive, string(state.Phase))
	}
	if state.CurrentTurn != seat.Index {
		return nil, nil, bigtwo.NewGameError(bigtwo.ErrKindNotYourTurn, "")
	}

	hand := state.Hands[seat.Index]
	if !handContains(hand, cards) {
		return nil, nil, bigtwo.NewGameError(bigtwo.ErrKindCardNotInHand, "")
	}

	played := combo.Classify(cards)
	if played.Kind == bigtwo.Invalid {
		return nil, nil, bigtwo.NewGameError(bigtwo.ErrKindInvalidCombination, "")
	}

	// The 3♦-must-lead rule only gates the very first play of the
	// whole game (match_number 1); every later match's lead is free
	// (spec §9 Open Question #2). Only the first match is dealt in
	// PhaseFirstPlay; roomconfig.DealNextMatch deals every later match
	// into PhasePlaying, so no later lead re-enters PhaseFirstPlay.
	if state.Phase == bigtwo.PhaseFirstPlay {
		if !bigtwo.NewCardSet(cards).Contains(bigtwo.ThreeOfDiamonds) {
			return nil, nil, bigtwo.NewGameError(bigtwo.ErrKindMustLeadWithThreeOfDiamond, "")
		}
	}

	if state.LastPlay != nil {
		if !combo.Beats(played, state.LastPlay.Combo) {
			return nil, nil, bigtwo.NewGameError(bigtwo.ErrKindCannotBeat, "")
		}
	}

	if required := mustPlayHighestBeatingSingle(state, seat); required != nil {
		if played.Kind != bigtwo.Single || !played.Cards[0].Equal(*required) {
			return nil, nil, bigtwo.NewRequiredCardError(*required)
		}
	}

	next := state.Clone()
	next.Hands[seat.Index] = removeCards(hand, cards)
	for _, c := range cards {
		next.PlayedCards[c] = struct{}{}
	}
	next.LastPlay = &bigtwo.LastPlay{Combo: played, Seat: seat.Index}
	next.Passes = 0
	if next.Phase == bigtwo.PhaseFirstPlay {
		next.Phase = bigtwo.PhasePlaying
	}

	events := []Event{CardsPlayedEvent{SeatIndex: seat.Index, Cards: cards, ComboKind: played.Kind}}

	if len(next.Hands[seat.Index]) == 0 {
		if next.AutoPassTimer != nil {
			events = append(events, TimerCancelledEvent{SequenceID: next.AutoPassTimer.SequenceID, Reason: TimerCancelNewPlay})
			next.AutoPassTimer = nil
		}
		applyMatchEnd(next, seat.Index)
		events = append(events, matchEndedEvent(next, seat.Index))
		if next.Phase == bigtwo.PhaseGameOver {
			events = append(events, GameOverEvent{FinalWinnerIndex: *next.FinalWinner, FinalScores: cloneScores(next.Scores)})
		}
		return next, events, nil
	}

	remaining := bigtwo.Remaining(next.PlayedCards, bigtwo.CardSet{})
	wasActive := next.AutoPassTimer != nil
	if combo.IsHighestPossible(played, remaining) {
		next.NextTimerSequence++
		seq := next.NextTimerSequence
		duration := next.TimerDuration()
		next.AutoPassTimer = &bigtwo.TimerState{
			Active:         true,
			StartedAtMS:    nowMS(),
			DurationMS:     duration.Milliseconds(),
			EndAtMS:        nowMS() + duration.Milliseconds(),
			SequenceID:     seq,
			TriggeringPlay: *next.LastPlay,
			ExemptSeat:     seat.Index,
		}
		events = append(events, TimerStartedEvent{
			SequenceID:     seq,
			EndAtMS:        next.AutoPassTimer.EndAtMS,
			ExemptSeat:     seat.Index,
			TriggeringPlay: *next.LastPlay,
		})
	} else if wasActive {
		events = append(events, TimerCancelledEvent{SequenceID: state.AutoPassTimer.SequenceID, Reason: TimerCancelNewPlay})
		next.AutoPassTimer = nil
	}

	next.CurrentTurn = next.NextSeat(seat.Index)
	return next, events, nil
}
