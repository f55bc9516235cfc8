package engine

import "github.com/lox/bigtwo/internal/bigtwo"

// parseCards parses the wire-format card identifiers named in an
// action RPC payload (spec §6.1).
func parseCards(ids []string) ([]bigtwo.Card, error) {
	cards := make([]bigtwo.Card, 0, len(ids))
	for _, id := range ids {
		c, err := bigtwo.ParseCard(id)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// handContains reports whether every card in cards is present in hand.
func handContains(hand, cards []bigtwo.Card) bool {
	set := bigtwo.NewCardSet(hand)
	for _, c := range cards {
		if !set.Contains(c) {
			return false
		}
	}
	return true
}

// removeCards returns hand with every card in cards removed.
func removeCards(hand, cards []bigtwo.Card) []bigtwo.Card {
	remove := bigtwo.NewCardSet(cards)
	out := make([]bigtwo.Card, 0, len(hand))
	for _, c := range hand {
		if !remove.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

func cloneScores(scores map[int]int) map[int]int {
	out := make(map[int]int, len(scores))
	for seat, score := range scores {
		out[seat] = score
	}
	return out
}
