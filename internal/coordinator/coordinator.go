// Package coordinator drives bot seats' turns (C4, spec §4.4). It is
// grounded on the teacher's internal/server.BotPool register/unregister
// channel loop, generalized from "seat a hand when enough bots are
// available" to "play every consecutive bot turn in a room, coordinated
// across processes with a leased row instead of an in-process mutex."
package coordinator

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/lox/bigtwo/internal/bot"
	"github.com/lox/bigtwo/internal/engine"
	"github.com/lox/bigtwo/internal/store"
)

// Coordinator plays every consecutive bot turn in a room once it wins
// that room's lease. A deployment runs one Coordinator per server
// process; only the process holding the lease ever moves a room's
// bots (spec §4.4.2), so there's no cross-process race on the hand.
type Coordinator struct {
	id     string
	store  store.Store
	engine *engine.Engine
	logger *log.Logger
	rng    *rand.Rand

	leaseDuration time.Duration
	hardStop      time.Duration
	maxMoves      int
	delayMin      time.Duration
	delayMax      time.Duration
}

// New constructs a Coordinator with a process-unique identity.
func New(st store.Store, eng *engine.Engine, logger *log.Logger) *Coordinator {
	return &Coordinator{
		id:            uuid.NewString(),
		store:         st,
		engine:        eng,
		logger:        logger.WithPrefix("coordinator"),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
		leaseDuration: bigtwo.DefaultLeaseDuration,
		hardStop:      bigtwo.CoordinatorHardStop,
		maxMoves:      bigtwo.DefaultMaxBotMoves,
		delayMin:      bigtwo.DefaultBotDelayMin,
		delayMax:      bigtwo.DefaultBotDelayMax,
	}
}

// OnCommit is wired into engine.Engine.OnCommit (spec §9): every
// successful action retriggers a run attempt, which is a cheap no-op
// unless the resulting current_turn belongs to a bot seat. It runs
// detached from the committing call's context, since an HTTP request's
// context ends long before a bot run should.
func (c *Coordinator) OnCommit(_ context.Context, roomID string, _ *bigtwo.GameState) {
	go c.Run(context.Background(), roomID)
}

// Run attempts to acquire roomID's bot lease and, on success, plays
// every consecutive bot turn until a human seat is on turn, the match
// ends, maxMoves is reached, or hardStop elapses (spec §4.4.1).
func (c *Coordinator) Run(ctx context.Context, roomID string) {
	ok, err := c.store.TryAcquireBotLease(ctx, roomID, c.id, c.leaseDuration)
	if err != nil {
		c.logger.Error("failed to acquire bot lease", "room", roomID, "error", err)
		return
	}
	if !ok {
		return
	}
	defer func() {
		if err := c.store.ReleaseBotLease(ctx, roomID, c.id); err != nil {
			c.logger.Error("failed to release bot lease", "room", roomID, "error", err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.hardStop)
	defer cancel()

	for move := 0; move < c.maxMoves; move++ {
		if err := c.store.RenewBotLease(ctx, roomID, c.id, c.leaseDuration); err != nil {
			c.logger.Warn("bot lease lost mid-run", "room", roomID, "error", err)
			return
		}

		room, err := c.store.LoadRoom(ctx, roomID)
		if err != nil {
			c.logger.Error("failed to load room", "room", roomID, "error", err)
			return
		}
		state, err := c.store.LoadGameState(ctx, roomID)
		if err != nil {
			c.logger.Error("failed to load game state", "room", roomID, "error", err)
			return
		}
		if state.Phase != bigtwo.PhaseFirstPlay && state.Phase != bigtwo.PhasePlaying {
			return
		}

		seat, ok := seatByIndex(room, state.CurrentTurn)
		if !ok || !seat.IsBot {
			return
		}

		if err := c.playTurn(ctx, roomID, seat); err != nil {
			c.logger.Error("bot move failed", "room", roomID, "seat", seat.Index, "error", err)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.interMoveDelay()):
		}
	}
	c.logger.Warn("bot run hit its move cap", "room", roomID, "moves", c.maxMoves)
}

func seatByIndex(room store.Room, index int) (bigtwo.Seat, bool) {
	for _, s := range room.Seats {
		if s.Index == index {
			return s, true
		}
	}
	return bigtwo.Seat{}, false
}

func (c *Coordinator) interMoveDelay() time.Duration {
	span := c.delayMax - c.delayMin
	if span <= 0 {
		return c.delayMin
	}
	return c.delayMin + time.Duration(c.rng.Int63n(int64(span)))
}

// playTurn asks seat's policy for a decision and executes it. If the
// one-card-left rule rejects the decision, it retries once with the
// card the rule names as required (spec §4.2.1 step 8) rather than
// failing the bot's whole turn.
func (c *Coordinator) playTurn(ctx context.Context, roomID string, seat bigtwo.Seat) error {
	state, err := c.store.LoadGameState(ctx, roomID)
	if err != nil {
		return err
	}

	policy := bot.ForDifficulty(seat.BotDifficulty)
	decision := policy.Decide(state, seat.Index)

	if decision.Pass {
		_, err := c.engine.PlayerPass(ctx, roomID, seat.Identity, engine.ActionModeInternal)
		return c.retryWithRequiredCard(ctx, roomID, seat, err)
	}

	ids := make([]string, len(decision.Cards))
	for i, card := range decision.Cards {
		ids[i] = card.ID()
	}
	_, err = c.engine.PlayCards(ctx, roomID, seat.Identity, ids, engine.ActionModeInternal)
	return c.retryWithRequiredCard(ctx, roomID, seat, err)
}

func (c *Coordinator) retryWithRequiredCard(ctx context.Context, roomID string, seat bigtwo.Seat, err error) error {
	var ge *bigtwo.GameError
	if !errors.As(err, &ge) || ge.Kind != bigtwo.ErrKindMustPlayHighestBeating || ge.Card == nil {
		return err
	}
	_, err = c.engine.PlayCards(ctx, roomID, seat.Identity, []string{ge.Card.ID()}, engine.ActionModeInternal)
	return err
}
