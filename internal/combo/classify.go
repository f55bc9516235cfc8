// Package combo implements the combination engine (C1): classifying a
// set of cards into a legal combination kind, ranking it, and deciding
// whether one combination beats another. Every function here is pure
// and stateless over its inputs, per spec.
package combo

import (
	"sort"

	"github.com/lox/bigtwo/internal/bigtwo"
)

// Classify returns the kind of cards, or bigtwo.Invalid if cards does
// not form a legal combination. Classify never fails; an unrecognized
// shape simply classifies as Invalid (spec §4.1).
func Classify(cards []bigtwo.Card) bigtwo.Combination {
	switch len(cards) {
	case 1:
		return bigtwo.Combination{Kind: bigtwo.Single, Cards: sorted(cards)}
	case 2:
		if sameRank(cards) {
			return bigtwo.Combination{Kind: bigtwo.Pair, Cards: sorted(cards)}
		}
	case 3:
		if sameRank(cards) {
			return bigtwo.Combination{Kind: bigtwo.Triple, Cards: sorted(cards)}
		}
	case 5:
		return classifyFive(cards)
	}
	return bigtwo.Combination{Kind: bigtwo.Invalid, Cards: cards}
}

func classifyFive(cards []bigtwo.Card) bigtwo.Combination {
	ordered := sorted(cards)
	isStraight := matchesStraightSequence(ordered)
	isFlush := sameSuit(ordered)

	switch {
	case isStraight && isFlush:
		return bigtwo.Combination{Kind: bigtwo.StraightFlush, Cards: ordered}
	case hasFourOfAKind(ordered):
		return bigtwo.Combination{Kind: bigtwo.FourOfAKind, Cards: ordered}
	case hasFullHouse(ordered):
		return bigtwo.Combination{Kind: bigtwo.FullHouse, Cards: ordered}
	case isFlush:
		return bigtwo.Combination{Kind: bigtwo.Flush, Cards: ordered}
	case isStraight:
		return bigtwo.Combination{Kind: bigtwo.Straight, Cards: ordered}
	default:
		return bigtwo.Combination{Kind: bigtwo.Invalid, Cards: ordered}
	}
}

func sorted(cards []bigtwo.Card) []bigtwo.Card {
	out := make([]bigtwo.Card, len(cards))
	copy(out, cards)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func sameRank(cards []bigtwo.Card) bool {
	for i := 1; i < len(cards); i++ {
		if cards[i].Rank != cards[0].Rank {
			return false
		}
	}
	return true
}

func sameSuit(cards []bigtwo.Card) bool {
	for i := 1; i < len(cards); i++ {
		if cards[i].Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

func rankCounts(cards []bigtwo.Card) map[bigtwo.Rank]int {
	counts := make(map[bigtwo.Rank]int, len(cards))
	for _, c := range cards {
		counts[c.Rank]++
	}
	return counts
}

func hasFullHouse(cards []bigtwo.Card) bool {
	counts := rankCounts(cards)
	if len(counts) != 2 {
		return false
	}
	for _, n := range counts {
		if n != 2 && n != 3 {
			return false
		}
	}
	return true
}

func hasFourOfAKind(cards []bigtwo.Card) bool {
	counts := rankCounts(cards)
	if len(counts) != 2 {
		return false
	}
	for _, n := range counts {
		if n == 4 {
			return true
		}
	}
	return false
}

// matchesStraightSequence reports whether the five ranks present in
// cards (ignoring suit) form one of the canonical straight sequences
// from bigtwo.StraightSequences. This checks the enumerated sequence
// table rather than raw rank-delta arithmetic, so wraparounds like
// A-2-3-4-5 agree with the wire contract (spec §4.1, §6.5).
func matchesStraightSequence(cards []bigtwo.Card) bool {
	present := make(map[bigtwo.Rank]bool, 5)
	for _, c := range cards {
		if present[c.Rank] {
			return false // duplicate rank can't be part of a straight
		}
		present[c.Rank] = true
	}
	for _, seq := range bigtwo.StraightSequences() {
		match := true
		for _, r := range seq {
			if !present[r] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
