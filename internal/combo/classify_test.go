package combo

import (
	"testing"

	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/stretchr/testify/require"
)

func c(rank bigtwo.Rank, suit bigtwo.Suit) bigtwo.Card {
	return bigtwo.NewCard(rank, suit)
}

func TestClassify_Single(t *testing.T) {
	result := Classify([]bigtwo.Card{c(bigtwo.King, bigtwo.Spades)})
	require.Equal(t, bigtwo.Single, result.Kind)
}

func TestClassify_Pair(t *testing.T) {
	result := Classify([]bigtwo.Card{c(bigtwo.Five, bigtwo.Diamonds), c(bigtwo.Five, bigtwo.Clubs)})
	require.Equal(t, bigtwo.Pair, result.Kind)
}

func TestClassify_PairRejectsMismatchedRank(t *testing.T) {
	result := Classify([]bigtwo.Card{c(bigtwo.Five, bigtwo.Diamonds), c(bigtwo.Six, bigtwo.Clubs)})
	require.Equal(t, bigtwo.Invalid, result.Kind)
}

func TestClassify_Triple(t *testing.T) {
	result := Classify([]bigtwo.Card{
		c(bigtwo.Nine, bigtwo.Diamonds), c(bigtwo.Nine, bigtwo.Clubs), c(bigtwo.Nine, bigtwo.Hearts),
	})
	require.Equal(t, bigtwo.Triple, result.Kind)
}

func TestClassify_StraightWraparoundAceLow(t *testing.T) {
	result := Classify([]bigtwo.Card{
		c(bigtwo.Ace, bigtwo.Diamonds), c(bigtwo.Two, bigtwo.Clubs), c(bigtwo.Three, bigtwo.Hearts),
		c(bigtwo.Four, bigtwo.Spades), c(bigtwo.Five, bigtwo.Diamonds),
	})
	require.Equal(t, bigtwo.Straight, result.Kind)
}

func TestClassify_StraightWraparoundAceHigh(t *testing.T) {
	result := Classify([]bigtwo.Card{
		c(bigtwo.Ten, bigtwo.Diamonds), c(bigtwo.Jack, bigtwo.Clubs), c(bigtwo.Queen, bigtwo.Hearts),
		c(bigtwo.King, bigtwo.Spades), c(bigtwo.Ace, bigtwo.Diamonds),
	})
	require.Equal(t, bigtwo.Straight, result.Kind)
}

func TestClassify_RejectsNonSequentialFive(t *testing.T) {
	result := Classify([]bigtwo.Card{
		c(bigtwo.Three, bigtwo.Diamonds), c(bigtwo.Four, bigtwo.Clubs), c(bigtwo.Six, bigtwo.Hearts),
		c(bigtwo.Seven, bigtwo.Spades), c(bigtwo.Eight, bigtwo.Diamonds),
	})
	require.Equal(t, bigtwo.Invalid, result.Kind)
}

func TestClassify_Flush(t *testing.T) {
	result := Classify([]bigtwo.Card{
		c(bigtwo.Three, bigtwo.Diamonds), c(bigtwo.Five, bigtwo.Diamonds), c(bigtwo.Seven, bigtwo.Diamonds),
		c(bigtwo.Nine, bigtwo.Diamonds), c(bigtwo.King, bigtwo.Diamonds),
	})
	require.Equal(t, bigtwo.Flush, result.Kind)
}

func TestClassify_FullHouse(t *testing.T) {
	result := Classify([]bigtwo.Card{
		c(bigtwo.Four, bigtwo.Diamonds), c(bigtwo.Four, bigtwo.Clubs), c(bigtwo.Four, bigtwo.Hearts),
		c(bigtwo.Nine, bigtwo.Spades), c(bigtwo.Nine, bigtwo.Diamonds),
	})
	require.Equal(t, bigtwo.FullHouse, result.Kind)
}

func TestClassify_FourOfAKind(t *testing.T) {
	result := Classify([]bigtwo.Card{
		c(bigtwo.Seven, bigtwo.Diamonds), c(bigtwo.Seven, bigtwo.Clubs), c(bigtwo.Seven, bigtwo.Hearts),
		c(bigtwo.Seven, bigtwo.Spades), c(bigtwo.Two, bigtwo.Diamonds),
	})
	require.Equal(t, bigtwo.FourOfAKind, result.Kind)
}

func TestClassify_StraightFlush(t *testing.T) {
	result := Classify([]bigtwo.Card{
		c(bigtwo.Three, bigtwo.Hearts), c(bigtwo.Four, bigtwo.Hearts), c(bigtwo.Five, bigtwo.Hearts),
		c(bigtwo.Six, bigtwo.Hearts), c(bigtwo.Seven, bigtwo.Hearts),
	})
	require.Equal(t, bigtwo.StraightFlush, result.Kind)
}

func TestClassify_RejectsFourCards(t *testing.T) {
	result := Classify([]bigtwo.Card{
		c(bigtwo.Three, bigtwo.Diamonds), c(bigtwo.Four, bigtwo.Clubs),
		c(bigtwo.Five, bigtwo.Hearts), c(bigtwo.Six, bigtwo.Spades),
	})
	require.Equal(t, bigtwo.Invalid, result.Kind)
}
