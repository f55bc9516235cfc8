package bot

import "github.com/lox/bigtwo/internal/bigtwo"

// Hard plays with full information about every seat's hand — the bot
// runs server-side, so this is simply using state the server already
// has, not a card-counting trick. It prefers the weakest play that no
// other seat can beat outright, and switches to an aggressive denial
// play once an opponent is down to two cards or fewer (spec §4.5's
// top tier).
type Hard struct{}

func (Hard) Decide(state *bigtwo.GameState, seat int) Decision {
	candidates := legalPlays(state.Hands[seat], state.LastPlay)
	if len(candidates) == 0 {
		return Decision{Pass: true, Reasoning: "no legal combination beats the current play"}
	}
	sortByKey(candidates)

	if anyOpponentInDanger(state, seat) {
		strongest := candidates[len(candidates)-1]
		return Decision{Cards: strongest.combo.Cards, Reasoning: "an opponent is close to winning, playing strongest available"}
	}

	for _, c := range candidates {
		if !beatableByAnyOtherSeat(state, seat, c.combo) {
			return Decision{Cards: c.combo.Cards, Reasoning: "playing the weakest combination no other hand can beat"}
		}
	}
	return Decision{Cards: candidates[0].combo.Cards, Reasoning: "no safe play found, playing the weakest legal combination"}
}

// beatableByAnyOtherSeat reports whether some seat other than actor
// actually holds a combination that would beat played.
func beatableByAnyOtherSeat(state *bigtwo.GameState, actor int, played bigtwo.Combination) bool {
	asLastPlay := &bigtwo.LastPlay{Combo: played, Seat: actor}
	for seat, hand := range state.Hands {
		if seat == actor {
			continue
		}
		if len(legalPlays(hand, asLastPlay)) > 0 {
			return true
		}
	}
	return false
}
