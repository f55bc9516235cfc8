package bot

import "github.com/lox/bigtwo/internal/bigtwo"

// Medium plays the weakest legal combination it holds, conserving
// strong cards for later, but switches to its strongest once some
// opponent is down to two cards or fewer (spec §4.5's middle tier).
type Medium struct{}

func (Medium) Decide(state *bigtwo.GameState, seat int) Decision {
	candidates := legalPlays(state.Hands[seat], state.LastPlay)
	if len(candidates) == 0 {
		return Decision{Pass: true, Reasoning: "no legal combination beats the current play"}
	}
	sortByKey(candidates)

	if anyOpponentInDanger(state, seat) {
		strongest := candidates[len(candidates)-1]
		return Decision{Cards: strongest.combo.Cards, Reasoning: "an opponent is close to winning, playing strongest available"}
	}
	return Decision{Cards: candidates[0].combo.Cards, Reasoning: "playing the weakest legal combination"}
}
