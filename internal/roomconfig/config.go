// Package roomconfig loads the per-room parameters a pre-seeded room is
// configured with (seat count, bot difficulties, tunable thresholds),
// generalizing the teacher's internal/server.ServerConfig HCL loader
// (TableConfig/BotConfig blocks) from poker tables/blinds to Big Two
// seats/bot tiers. Room seating/readiness lifecycle itself stays out of
// scope; this only describes the parameters of a room once seeded.
package roomconfig

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/lox/bigtwo/internal/store"
)

// Config is the decoded contents of a room configuration file.
type Config struct {
	Rooms []RoomBlock `hcl:"room,block"`
}

// RoomBlock configures one room: its seat count, each seat's bot
// tier, and any per-room override of otherwise-global tunables.
type RoomBlock struct {
	Code    string     `hcl:"code,label"`
	Seats   []SeatSpec `hcl:"seat,block"`
	Overrides *Overrides `hcl:"overrides,block"`
}

// SeatSpec configures a single seat. An empty Difficulty marks a human
// seat; IsBot is derived rather than stored redundantly.
type SeatSpec struct {
	Index      int    `hcl:"index,label"`
	Identity   string `hcl:"identity,optional"`
	Difficulty string `hcl:"difficulty,optional"`
}

// Overrides holds the tunables a room may override from their package
// defaults (spec §6.5): the score threshold that ends a game and the
// auto-pass timer's duration.
type Overrides struct {
	ScoreThreshold      int `hcl:"score_threshold,optional"`
	TimerDurationMillis int `hcl:"timer_duration_ms,optional"`
}

// IsBot reports whether the seat is bot-controlled.
func (s SeatSpec) IsBot() bool { return s.Difficulty != "" }

// BotDifficulty resolves the seat's configured tier, defaulting to
// Medium for a bot seat whose difficulty string doesn't parse.
func (s SeatSpec) BotDifficulty() bigtwo.BotDifficulty {
	switch s.Difficulty {
	case string(bigtwo.DifficultyEasy):
		return bigtwo.DifficultyEasy
	case string(bigtwo.DifficultyHard):
		return bigtwo.DifficultyHard
	default:
		return bigtwo.DifficultyMedium
	}
}

// Load reads and decodes an HCL room configuration file. A missing file
// is not an error: Load returns an empty Config, and cmd/bigtwo-server
// then seeds its built-in demo room, same as the teacher's
// LoadServerConfig falling back to its packaged default.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("roomconfig: parse %s: %s", path, diags.Error())
	}

	var cfg Config
	if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
		return nil, fmt.Errorf("roomconfig: decode %s: %s", path, diags.Error())
	}

	for i := range cfg.Rooms {
		if err := cfg.Rooms[i].validate(); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// Deal builds the initial Room and GameState for r using a freshly
// shuffled deck dealt round-robin across its seats (with three seats
// the first seat gets the one extra card), the way a lobby's dealer
// would before handing the room to the engine (that dealing step itself
// is out of scope; this just gives cmd/bigtwo-server something runnable
// to seed its store with).
func (r RoomBlock) Deal(rng *rand.Rand) (store.Room, *bigtwo.GameState) {
	seats := make([]bigtwo.Seat, len(r.Seats))
	for i, spec := range r.Seats {
		seats[i] = bigtwo.Seat{
			Index:         spec.Index,
			Identity:      spec.Identity,
			IsBot:         spec.IsBot(),
			BotDifficulty: spec.BotDifficulty(),
		}
	}
	room := store.Room{ID: r.Code, Seats: seats}

	deck := bigtwo.FullDeck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	seatCount := len(seats)
	hands := make(map[int][]bigtwo.Card, seatCount)
	scores := make(map[int]int, seatCount)
	currentTurn := 0
	for _, seat := range seats {
		scores[seat.Index] = 0
	}
	for i, c := range deck {
		seat := seats[i%seatCount]
		hands[seat.Index] = append(hands[seat.Index], c)
		if c.Equal(bigtwo.ThreeOfDiamonds) {
			currentTurn = seat.Index
		}
	}

	state := &bigtwo.GameState{
		Phase:       bigtwo.PhaseFirstPlay,
		SeatCount:   seatCount,
		CurrentTurn: currentTurn,
		Hands:       hands,
		PlayedCards: bigtwo.CardSet{},
		MatchNumber: 1,
		Scores:      scores,
	}
	if r.Overrides != nil {
		if r.Overrides.ScoreThreshold > 0 {
			state.ScoreThresholdOverride = r.Overrides.ScoreThreshold
		}
		if r.Overrides.TimerDurationMillis > 0 {
			state.TimerDurationOverride = time.Duration(r.Overrides.TimerDurationMillis) * time.Millisecond
		}
	}
	return room, state
}

// DealNextMatch reshuffles and redeals r's seats for the match
// following prev, carrying forward cumulative scores, the score/timer
// overrides, the match number and the timer sequence counter, and
// seating winnerSeat to lead
// (spec §9 Open Question #2: only the very first match's lead is
// gated on holding 3♦; every later match is led by whoever just won).
// Re-dealing between matches is itself external to the engine (spec
// §4.2.3 step 6: "schedule a new match, dealing is out of scope");
// this is that external dealer, invoked the same way Deal stands in
// for the very first one.
func (r RoomBlock) DealNextMatch(rng *rand.Rand, prev *bigtwo.GameState, winnerSeat int) *bigtwo.GameState {
	deck := bigtwo.FullDeck()
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })

	hands := make(map[int][]bigtwo.Card, prev.SeatCount)
	for i, c := range deck {
		seat := i % prev.SeatCount
		hands[seat] = append(hands[seat], c)
	}

	scores := make(map[int]int, len(prev.Scores))
	for seat, score := range prev.Scores {
		scores[seat] = score
	}

	return &bigtwo.GameState{
		Phase:                  bigtwo.PhasePlaying,
		SeatCount:              prev.SeatCount,
		CurrentTurn:            winnerSeat,
		Hands:                  hands,
		PlayedCards:            bigtwo.CardSet{},
		MatchNumber:            prev.MatchNumber,
		Scores:                 scores,
		ScoreThresholdOverride: prev.ScoreThresholdOverride,
		TimerDurationOverride:  prev.TimerDurationOverride,
		NextTimerSequence:      prev.NextTimerSequence,
	}
}

func (r RoomBlock) validate() error {
	if len(r.Seats) < 2 || len(r.Seats) > 4 {
		return fmt.Errorf("roomconfig: room %s: seat count must be between 2 and 4, got %d", r.Code, len(r.Seats))
	}
	seen := make(map[int]bool, len(r.Seats))
	for _, seat := range r.Seats {
		if seen[seat.Index] {
			return fmt.Errorf("roomconfig: room %s: duplicate seat index %d", r.Code, seat.Index)
		}
		seen[seat.Index] = true
		if !seat.IsBot() && seat.Identity == "" {
			return fmt.Errorf("roomconfig: room %s: seat %d is neither a bot nor has an identity", r.Code, seat.Index)
		}
	}
	return nil
}
