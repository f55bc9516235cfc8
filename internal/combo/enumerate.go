package combo

import "github.com/lox/bigtwo/internal/bigtwo"

// EnumeratePairs returns every pair combination that can be formed from
// cards (used by the highest-remaining detector, C3, to ask "is there a
// stronger pair left in the remaining cards?").
func EnumeratePairs(cards []bigtwo.Card) []bigtwo.Combination {
	byRank := groupByRank(cards)
	var out []bigtwo.Combination
	for _, group := range byRank {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				out = append(out, Classify([]bigtwo.Card{group[i], group[j]}))
			}
		}
	}
	return out
}

// EnumerateTriples returns every triple combination that can be formed
// from cards.
func EnumerateTriples(cards []bigtwo.Card) []bigtwo.Combination {
	byRank := groupByRank(cards)
	var out []bigtwo.Combination
	for _, group := range byRank {
		if len(group) < 3 {
			continue
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				for k := j + 1; k < len(group); k++ {
					out = append(out, Classify([]bigtwo.Card{group[i], group[j], group[k]}))
				}
			}
		}
	}
	return out
}

// EnumerateFives returns every 5-card combination classifying as kind
// that can be formed from cards. kind must be one of Straight, Flush,
// FullHouse, FourOfAKind, or StraightFlush; any other kind yields no
// combinations. This is intentionally exhaustive-but-bounded: a 13-card
// hand (worst case for a single seat) has C(13,5) = 1287 five-card
// subsets, well within the "polynomial in a 13-card hand" budget
// spec §5 calls for.
func EnumerateFives(cards []bigtwo.Card, kind bigtwo.Kind) []bigtwo.Combination {
	if kind.Cardinality() != 5 {
		return nil
	}
	var out []bigtwo.Combination
	combinations(cards, 5, func(subset []bigtwo.Card) {
		c := Classify(subset)
		if c.Kind == kind {
			out = append(out, c)
		}
	})
	return out
}

func groupByRank(cards []bigtwo.Card) map[bigtwo.Rank][]bigtwo.Card {
	groups := make(map[bigtwo.Rank][]bigtwo.Card)
	for _, c := range cards {
		groups[c.Rank] = append(groups[c.Rank], c)
	}
	return groups
}

// combinations calls emit with every size-n subset of cards, in the
// order generated by a standard combinatorial index walk.
func combinations(cards []bigtwo.Card, n int, emit func([]bigtwo.Card)) {
	if n > len(cards) {
		return
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	for {
		subset := make([]bigtwo.Card, n)
		for i, idx := range indices {
			subset[i] = cards[idx]
		}
		emit(subset)

		i := n - 1
		for i >= 0 && indices[i] == i+len(cards)-n {
			i--
		}
		if i < 0 {
			return
		}
		indices[i]++
		for j := i + 1; j < n; j++ {
			indices[j] = indices[j-1] + 1
		}
	}
}
