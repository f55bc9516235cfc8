package combo

import "github.com/lox/bigtwo/internal/bigtwo"

// CompareHighest returns the ranking key used to compare two
// combinations of the same kind and cardinality (spec §4.1).
func CompareHighest(c bigtwo.Combination) bigtwo.RankingKey {
	switch c.Kind {
	case bigtwo.Single, bigtwo.Pair, bigtwo.Triple, bigtwo.Flush:
		return highestCardKey(c.Cards)
	case bigtwo.FullHouse:
		return bigtwo.RankingKey{Rank: tripleRank(c.Cards)}
	case bigtwo.FourOfAKind:
		return bigtwo.RankingKey{Rank: quadRank(c.Cards)}
	case bigtwo.Straight, bigtwo.StraightFlush:
		return straightKey(c.Cards)
	default:
		return bigtwo.RankingKey{}
	}
}

// highestCardKey returns the (rank, suit) of the highest card by total
// order among cards.
func highestCardKey(cards []bigtwo.Card) bigtwo.RankingKey {
	best := cards[0]
	for _, c := range cards[1:] {
		if best.Less(c) {
			best = c
		}
	}
	return bigtwo.RankingKey{Rank: best.Rank, Suit: best.Suit}
}

// tripleRank returns the rank appearing three times in a full house.
func tripleRank(cards []bigtwo.Card) bigtwo.Rank {
	counts := rankCounts(cards)
	for rank, n := range counts {
		if n == 3 {
			return rank
		}
	}
	return 0
}

// quadRank returns the rank appearing four times in a four-of-a-kind.
func quadRank(cards []bigtwo.Card) bigtwo.Rank {
	counts := rankCounts(cards)
	for rank, n := range counts {
		if n == 4 {
			return rank
		}
	}
	return 0
}

// straightKey returns the ranking key for a straight or straight
// flush: the rank of the sequence's designated top card (per the
// sequence's own listed order, so A-2-3-4-5's top is the 5, not the
// ace) paired with that card's suit.
func straightKey(cards []bigtwo.Card) bigtwo.RankingKey {
	present := make(map[bigtwo.Rank]bigtwo.Card, len(cards))
	for _, c := range cards {
		present[c.Rank] = c
	}
	for _, seq := range bigtwo.StraightSequences() {
		match := true
		for _, r := range seq {
			if _, ok := present[r]; !ok {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		top := seq[len(seq)-1]
		topCard := present[top]
		return bigtwo.RankingKey{Rank: topCard.Rank, Suit: topCard.Suit}
	}
	return bigtwo.RankingKey{}
}

// Beats reports whether newCombo legally beats lastCombo: newCombo
// must classify as legal, have the same cardinality as lastCombo, and
// either have strictly greater kind strength (only meaningful at
// cardinality 5) or the same kind with a strictly greater ranking key
// (spec §4.1). Comparisons against an Invalid combination always
// return false (spec §8, invariant 6).
func Beats(newCombo, lastCombo bigtwo.Combination) bool {
	if newCombo.Kind == bigtwo.Invalid || lastCombo.Kind == bigtwo.Invalid {
		return false
	}
	if len(newCombo.Cards) != len(lastCombo.Cards) {
		return false
	}
	if newCombo.Kind != lastCombo.Kind {
		// Kind-strength comparison is only defined at cardinality 5,
		// where the five 5-card kinds are comparable by their fixed order.
		if newCombo.Kind.Cardinality() != 5 {
			return false
		}
		return newCombo.Kind > lastCombo.Kind
	}
	return CompareHighest(lastCombo).Less(CompareHighest(newCombo))
}
