package bot

import "github.com/lox/bigtwo/internal/bigtwo"

// Easy always plays the weakest legal combination it holds and never
// considers the rest of the table (spec §4.5's bottom tier).
type Easy struct{}

func (Easy) Decide(state *bigtwo.GameState, seat int) Decision {
	candidates := legalPlays(state.Hands[seat], state.LastPlay)
	if len(candidates) == 0 {
		return Decision{Pass: true, Reasoning: "no legal combination beats the current play"}
	}
	sortByKey(candidates)
	return Decision{Cards: candidates[0].combo.Cards, Reasoning: "playing the weakest legal combination"}
}
