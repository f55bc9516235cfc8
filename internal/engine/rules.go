package engine

import (
	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/lox/bigtwo/internal/combo"
)

// mustPlayHighestBeatingSingle implements the one-card-left rule
// (spec §4.2.1 step 8 / §4.2.2 step 3): when the next seat to act holds
// exactly one card and the current trick is led by a single, a seat
// that holds a single beating it may not play (or pass) anything else
// — it must play its own highest such single. Returns nil when the
// rule does not apply to actor right now.
func mustPlayHighestBeatingSingle(state *bigtwo.GameState, actor bigtwo.Seat) *bigtwo.Card {
	if state.LastPlay == nil || state.LastPlay.Combo.Kind != bigtwo.Single {
		return nil
	}
	if len(state.Hands[state.NextSeat(actor.Index)]) != 1 {
		return nil
	}

	lastKey := combo.CompareHighest(state.LastPlay.Combo)
	var best *bigtwo.Card
	var bestKey bigtwo.RankingKey
	for _, c := range state.Hands[actor.Index] {
		key := bigtwo.RankingKey{Rank: c.Rank, Suit: c.Suit}
		if !lastKey.Less(key) {
			continue
		}
		if best == nil || bestKey.Less(key) {
			card := c
			best = &card
			bestKey = key
		}
	}
	return best
}
