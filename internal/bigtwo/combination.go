package bigtwo

// Kind is the tagged kind of a combination, in fixed strength order.
// Stronger kinds beat weaker kinds only at cardinality 5 (spec §3).
type Kind int

const (
	Invalid Kind = iota
	Single
	Pair
	Triple
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// String renders the kind for logs.
func (k Kind) String() string {
	switch k {
	case Single:
		return "Single"
	case Pair:
		return "Pair"
	case Triple:
		return "Triple"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "FullHouse"
	case FourOfAKind:
		return "FourOfAKind"
	case StraightFlush:
		return "StraightFlush"
	default:
		return "Invalid"
	}
}

// Cardinality returns the number of cards a legal combination of this
// kind contains. Invalid has no defined cardinality.
func (k Kind) Cardinality() int {
	switch k {
	case Single:
		return 1
	case Pair:
		return 2
	case Triple:
		return 3
	case Straight, Flush, FullHouse, FourOfAKind, StraightFlush:
		return 5
	default:
		return 0
	}
}

// Combination is an ordered multiset of cards tagged with a kind
// (spec §3). It is produced only by the combo package's Classify;
// callers should treat Cards as read-only.
type Combination struct {
	Kind  Kind
	Cards []Card
}

// RankingKey is the comparison key used by CompareHighest/Beats
// (spec §4.1): for singles/pairs/triples/straights/flushes it is the
// (rank, suit) of the combination's governing card; for full houses
// and four-of-a-kinds it is the rank of the triple/quad respectively.
type RankingKey struct {
	Rank Rank
	Suit Suit
}

// Less reports whether k sorts strictly before other.
func (k RankingKey) Less(other RankingKey) bool {
	if k.Rank != other.Rank {
		return k.Rank < other.Rank
	}
	return k.Suit < other.Suit
}
