package combo

import "github.com/lox/bigtwo/internal/bigtwo"

// IsHighestPossible reports whether no combination of the same
// cardinality drawn from remaining could beat combo (spec §4.3). It is
// the pure decision function behind the auto-pass timer's
// highest-remaining detector (C3): callers pass the cards some other
// seat could still hold (bigtwo.Remaining of the match's played cards
// and the combo just played).
//
// For cardinality 1-3 this enumerates the (small, O(52)) set of
// possible combinations in remaining. For cardinality 5 it checks
// existence kind-by-kind instead of enumerating all 5-card subsets of
// remaining (which can number over a million): first whether any
// strictly stronger kind exists in remaining at all, then whether a
// same-kind combination with a strictly greater ranking key exists.
func IsHighestPossible(combo bigtwo.Combination, remaining []bigtwo.Card) bool {
	switch combo.Kind {
	case bigtwo.Single:
		return !existsStrongerSingle(combo, remaining)
	case bigtwo.Pair:
		return !existsStrongerSmall(combo, EnumeratePairs(remaining))
	case bigtwo.Triple:
		return !existsStrongerSmall(combo, EnumerateTriples(remaining))
	case bigtwo.Straight, bigtwo.Flush, bigtwo.FullHouse, bigtwo.FourOfAKind, bigtwo.StraightFlush:
		return !existsStrongerFive(combo, remaining)
	default:
		return false
	}
}

func existsStrongerSingle(combo bigtwo.Combination, remaining []bigtwo.Card) bool {
	key := CompareHighest(combo)
	for _, c := range remaining {
		if key.Less(bigtwo.RankingKey{Rank: c.Rank, Suit: c.Suit}) {
			return true
		}
	}
	return false
}

func existsStrongerSmall(combo bigtwo.Combination, candidates []bigtwo.Combination) bool {
	for _, cand := range candidates {
		if Beats(cand, combo) {
			return true
		}
	}
	return false
}

// existsStrongerFive checks, kind by kind, whether remaining can form
// a 5-card combination that beats combo.
func existsStrongerFive(combo bigtwo.Combination, remaining []bigtwo.Card) bool {
	ranks, suits := tally(remaining)

	// Strictly stronger kinds first (only meaningful at cardinality 5).
	for k := combo.Kind + 1; k <= bigtwo.StraightFlush; k++ {
		if kindExists(k, remaining, ranks, suits) {
			return true
		}
	}

	// Same kind, strictly greater ranking key.
	key := CompareHighest(combo)
	switch combo.Kind {
	case bigtwo.Straight, bigtwo.StraightFlush:
		return existsStrongerStraight(combo.Kind, key, remaining, suits)
	case bigtwo.Flush:
		return existsStrongerFlush(key, suits)
	case bigtwo.FullHouse:
		return existsStrongerFullHouse(key.Rank, ranks)
	case bigtwo.FourOfAKind:
		return existsStrongerQuad(key.Rank, ranks, len(remaining))
	}
	return false
}

func tally(cards []bigtwo.Card) (ranks map[bigtwo.Rank]int, suits map[bigtwo.Suit][]bigtwo.Card) {
	ranks = make(map[bigtwo.Rank]int)
	suits = make(map[bigtwo.Suit][]bigtwo.Card)
	for _, c := range cards {
		ranks[c.Rank]++
		suits[c.Suit] = append(suits[c.Suit], c)
	}
	return
}

func kindExists(kind bigtwo.Kind, remaining []bigtwo.Card, ranks map[bigtwo.Rank]int, suits map[bigtwo.Suit][]bigtwo.Card) bool {
	switch kind {
	case bigtwo.FourOfAKind:
		if len(remaining) < 5 {
			return false
		}
		for _, n := range ranks {
			if n >= 4 {
				return true
			}
		}
		return false
	case bigtwo.FullHouse:
		for r1, n1 := range ranks {
			if n1 < 3 {
				continue
			}
			for r2, n2 := range ranks {
				if r2 != r1 && n2 >= 2 {
					return true
				}
			}
		}
		return false
	case bigtwo.Flush:
		for _, cards := range suits {
			if len(cards) >= 5 {
				return true
			}
		}
		return false
	case bigtwo.StraightFlush:
		for _, cards := range suits {
			if len(cards) < 5 {
				continue
			}
			if anyStraightAmong(cards) {
				return true
			}
		}
		return false
	case bigtwo.Straight:
		return anyStraightAmong(remaining)
	}
	return false
}

func anyStraightAmong(cards []bigtwo.Card) bool {
	present := make(map[bigtwo.Rank]bool, len(cards))
	for _, c := range cards {
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

func existsStrongerStraight(kind bigtwo.Kind, key bigtwo.RankingKey, remaining []bigtwo.Card, suits map[bigtwo.Suit][]bigtwo.Card) bool {
	present := make(map[bigtwo.Rank][]bigtwo.Card, len(remaining))
	for _, c := range remaining {
		present[c.Rank] = append(present[c.Rank], c)
	}
	for _, seq := range bigtwo.StraightSequences() {
		full := true
		for _, r := range seq {
			if len(present[r]) == 0 {
				full = false
				break
			}
		}
		if !full {
			continue
		}
		if kind == bigtwo.StraightFlush {
			// need all five from the same suit
			if !sequenceHasFlush(seq, suits) {
				continue
			}
		}
		top := seq[len(seq)-1]
		for _, topCard := range present[top] {
			if kind == bigtwo.StraightFlush && !sequenceHasFlush(seq, map[bigtwo.Suit][]bigtwo.Card{topCard.Suit: suits[topCard.Suit]}) {
				continue
			}
			candidate := bigtwo.RankingKey{Rank: topCard.Rank, Suit: topCard.Suit}
			if key.Less(candidate) {
				return true
			}
		}
	}
	return false
}

func sequenceHasFlush(seq [5]bigtwo.Rank, suits map[bigtwo.Suit][]bigtwo.Card) bool {
	for _, cards := range suits {
		if len(cards) < 5 {
			continue
		}
		present := make(map[bigtwo.Rank]bool, len(cards))
		for _, c := range cards {
			present[c.Rank] = true
		}
		full := true
		for _, r := range seq {
			if !present[r] {
				full = false
				break
			}
		}
		if full {
			return true
		}
	}
	return false
}

func existsStrongerFlush(key bigtwo.RankingKey, suits map[bigtwo.Suit][]bigtwo.Card) bool {
	for _, cards := range suits {
		if len(cards) < 5 {
			continue
		}
		top := cards[0]
		for _, c := range cards[1:] {
			if top.Less(c) {
				top = c
			}
		}
		if key.Less(bigtwo.RankingKey{Rank: top.Rank, Suit: top.Suit}) {
			return true
		}
	}
	return false
}

func existsStrongerFullHouse(tripleRank bigtwo.Rank, ranks map[bigtwo.Rank]int) bool {
	for r, n := range ranks {
		if r <= tripleRank || n < 3 {
			continue
		}
		for r2, n2 := range ranks {
			if r2 != r && n2 >= 2 {
				return true
			}
		}
	}
	return false
}

func existsStrongerQuad(quadRank bigtwo.Rank, ranks map[bigtwo.Rank]int, remainingCount int) bool {
	if remainingCount < 5 {
		return false
	}
	for r, n := range ranks {
		if r > quadRank && n >= 4 {
			return true
		}
	}
	return false
}
