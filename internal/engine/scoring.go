package engine

import "github.com/lox/bigtwo/internal/bigtwo"

// applyMatchEnd scores a finished match and detects game-over (spec
// §4.2.3): every seat other than winnerSeat is charged
// bigtwo.MatchPoints for the cards still in its hand; the winner scores
// nothing. If any seat's cumulative score reaches state.ScoreThreshold(),
// the game ends and the seat with the lowest cumulative score wins,
// ties broken by the lowest seat index.
func applyMatchEnd(state *bigtwo.GameState, winnerSeat int) {
	for seat := 0; seat < state.SeatCount; seat++ {
		if seat == winnerSeat {
			continue
		}
		state.Scores[seat] += bigtwo.MatchPoints(len(state.Hands[seat]))
	}

	winner := winnerSeat
	state.LastMatchWinner = &winner
	state.MatchNumber++

	threshold := state.ScoreThreshold()
	gameOver := false
	for _, score := range state.Scores {
		if score >= threshold {
			gameOver = true
			break
		}
	}

	if gameOver {
		state.Phase = bigtwo.PhaseGameOver
		state.FinalWinner = finalWinner(state)
	} else {
		state.Phase = bigtwo.PhaseMatchFinished
	}
}

// finalWinner returns the seat with the lowest cumulative score,
// ties broken by the lowest seat index.
func finalWinner(state *bigtwo.GameState) *int {
	best := 0
	for seat := 1; seat < state.SeatCount; seat++ {
		if state.Scores[seat] < state.Scores[best] {
			best = seat
		}
	}
	return &best
}

// matchEndedEvent summarizes a finished match for the event bus.
func matchEndedEvent(state *bigtwo.GameState, winnerSeat int) MatchEndedEvent {
	lines := make([]MatchScoreLine, 0, state.SeatCount)
	for seat := 0; seat < state.SeatCount; seat++ {
		count := len(state.Hands[seat])
		points := 0
		if seat != winnerSeat {
			points = bigtwo.MatchPoints(count)
		}
		lines = append(lines, MatchScoreLine{
			SeatIndex:      seat,
			CardsRemaining: count,
			MatchPoints:    points,
			Cumulative:     state.Scores[seat],
		})
	}
	return MatchEndedEvent{MatchScores: lines}
}
