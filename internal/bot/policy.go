// Package bot implements the difficulty-tiered decision policies (C5)
// a bot seat uses to choose its move. Every policy is a pure function
// of the visible game state; none hold state between calls, so the
// same policy value is safe to reuse across every bot seat and room.
package bot

import (
	"sort"

	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/lox/bigtwo/internal/combo"
)

// Decision is a bot's chosen action for its turn (spec §4.5).
type Decision struct {
	Pass      bool
	Cards     []bigtwo.Card
	Reasoning string
}

// Policy decides what a bot seat plays on its turn.
type Policy interface {
	Decide(state *bigtwo.GameState, seat int) Decision
}

// ForDifficulty resolves the policy for a seat's configured difficulty.
func ForDifficulty(difficulty bigtwo.BotDifficulty) Policy {
	switch difficulty {
	case bigtwo.DifficultyHard:
		return Hard{}
	case bigtwo.DifficultyMedium:
		return Medium{}
	default:
		return Easy{}
	}
}

// candidate is a legal play paired with the ranking key used to order
// it against the other candidates.
type candidate struct {
	combo bigtwo.Combination
	key   bigtwo.RankingKey
}

// legalPlays enumerates every combination in hand that is legal given
// lastPlay: any combination at all if nil (the seat is leading), or
// any combination that beats lastPlay.Combo otherwise.
func legalPlays(hand []bigtwo.Card, lastPlay *bigtwo.LastPlay) []candidate {
	var out []candidate
	consider := func(c bigtwo.Combination) {
		if c.Kind == bigtwo.Invalid {
			return
		}
		if lastPlay != nil && !combo.Beats(c, lastPlay.Combo) {
			return
		}
		out = append(out, candidate{combo: c, key: combo.CompareHighest(c)})
	}

	for _, card := range hand {
		consider(combo.Classify([]bigtwo.Card{card}))
	}
	for _, pair := range combo.EnumeratePairs(hand) {
		consider(pair)
	}
	for _, triple := range combo.EnumerateTriples(hand) {
		consider(triple)
	}
	for _, kind := range []bigtwo.Kind{bigtwo.Straight, bigtwo.Flush, bigtwo.FullHouse, bigtwo.FourOfAKind, bigtwo.StraightFlush} {
		for _, five := range combo.EnumerateFives(hand, kind) {
			consider(five)
		}
	}
	return out
}

// sortByKey sorts candidates from weakest to strongest ranking key.
func sortByKey(candidates []candidate) {
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].key.Less(candidates[j].key) })
}

// anyOpponentInDanger reports whether some seat other than actor is
// down to a hand size that could plausibly end the match next turn.
func anyOpponentInDanger(state *bigtwo.GameState, actor int) bool {
	for seat, hand := range state.Hands {
		if seat != actor && len(hand) <= 2 {
			return true
		}
	}
	return false
}
