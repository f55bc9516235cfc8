package bigtwo

import "time"

// Canonical constants from the wire contract (spec §6.5). These are
// defaults; RoomConfig may override the tunable ones per room.
const (
	// ScoreThreshold is the cumulative score at or above which the
	// game ends.
	ScoreThreshold = 101

	// DefaultTimerDuration is the auto-pass countdown length.
	DefaultTimerDuration = 10 * time.Second

	// DefaultBotDelayMin and DefaultBotDelayMax bound the bot
	// coordinator's inter-move sleep.
	DefaultBotDelayMin = 300 * time.Millisecond
	DefaultBotDelayMax = 500 * time.Millisecond

	// DefaultMaxBotMoves caps a single coordinator run.
	DefaultMaxBotMoves = 20

	// DefaultLeaseDuration is 1.5x the coordinator's hard stop.
	DefaultLeaseDuration = 45 * time.Second

	// CoordinatorHardStop bounds a single coordinator invocation.
	CoordinatorHardStop = 30 * time.Second

	// StoreCallTimeout and StoreRetries bound the persistence retry
	// policy described in spec §5.
	StoreCallTimeout = 3 * time.Second
	StoreRetries     = 5
	StoreBackoff     = 800 * time.Millisecond
)

// straightSequences is the canonical superset of valid 5-rank straight
// sequences (spec §6.5). Each entry is sorted low-to-high in the
// sequence's own ordering (not the table's total rank order), since
// ace and two can each function as the low card of a wraparound
// sequence that a raw rank-delta check would reject or wrongly accept.
var straightSequences = [][5]Rank{
	{Ace, Two, Three, Four, Five},
	{Two, Three, Four, Five, Six},
	{Three, Four, Five, Six, Seven},
	{Four, Five, Six, Seven, Eight},
	{Five, Six, Seven, Eight, Nine},
	{Six, Seven, Eight, Nine, Ten},
	{Seven, Eight, Nine, Ten, Jack},
	{Eight, Nine, Ten, Jack, Queen},
	{Nine, Ten, Jack, Queen, King},
	{Ten, Jack, Queen, King, Ace},
}

// StraightSequences returns the canonical straight sequence table. The
// slice is a defensive copy; callers must not mutate it.
func StraightSequences() [][5]Rank {
	out := make([][5]Rank, len(straightSequences))
	copy(out, straightSequences)
	return out
}

// MatchPenalty returns the per-card penalty multiplier p(c) for a seat
// holding c cards at match end (spec §4.2.3).
func MatchPenalty(cardCount int) int {
	switch {
	case cardCount <= 0:
		return 0
	case cardCount <= 4:
		return 1
	case cardCount <= 9:
		return 2
	default:
		return 3
	}
}

// MatchPoints returns c * p(c), the points a seat scores for a match
// based on how many cards it was left holding.
func MatchPoints(cardCount int) int {
	return cardCount * MatchPenalty(cardCount)
}
