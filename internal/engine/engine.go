// Package engine implements the game state machine (C2): the two
// entry points, PlayCards and PlayerPass, that every action in the
// system ultimately funnels through, plus match-end scoring and phase
// transitions. It is the central orchestrator described in spec §4.2.
package engine

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/lox/bigtwo/internal/store"
)

// Engine is the authoritative game state machine for every room it is
// handed. It holds no per-room state itself; everything lives in the
// store (E1), read fresh on every call and committed with an
// optimistic-concurrency version check.
type Engine struct {
	store  store.Store
	events EventBus
	logger *log.Logger

	// onCommit is the post-commit dispatcher (spec §9): after a
	// successful commit it is handed the new state so the caller can
	// decide whether to trigger the bot coordinator. It is nil-safe.
	onCommit func(ctx context.Context, roomID string, state *bigtwo.GameState)
}

// New constructs an Engine over the given store and event bus.
func New(st store.Store, events EventBus, logger *log.Logger) *Engine {
	return &Engine{
		store:  st,
		events: events,
		logger: logger.WithPrefix("engine"),
	}
}

// OnCommit registers the post-commit dispatcher. The bot coordinator
// wires itself in here so that every successful PlayCards/PlayerPass
// that leaves a bot on turn gets a trigger, without the engine needing
// to import the coordinator package.
func (e *Engine) OnCommit(fn func(ctx context.Context, roomID string, state *bigtwo.GameState)) {
	e.onCommit = fn
}

// ActionMode distinguishes a human-initiated call from the bot
// coordinator's internal call (spec §6.2), which must not re-trigger
// the coordinator and cause unbounded recursion.
type ActionMode int

const (
	ActionModeExternal ActionMode = iota
	ActionModeInternal
)

func nowMS() int64 { return time.Now().UnixMilli() }

// commit runs the store's bounded retry policy around a single
// conditional update (spec §5, §7): ConcurrentUpdate is retried with
// fresh state up to bigtwo.StoreRetries times, bigtwo.StoreBackoff
// apart, and then surfaced as ConcurrentUpdate. Any other update error
// is surfaced at once as StoreUnavailable, without a retry; a load
// error is returned as the store reported it.
func (e *Engine) commit(ctx context.Context, roomID string, mode ActionMode, attempt func(state *bigtwo.GameState) (*bigtwo.GameState, error)) (*bigtwo.GameState, error) {
	for try := 0; ; try++ {
		state, err := e.store.LoadGameState(ctx, roomID)
		if err != nil {
			return nil, err
		}

		newState, opErr := attempt(state)
		if opErr != nil {
			// Precondition failures abort immediately with no retry
			// and no state change (spec §4.2.5).
			return nil, opErr
		}

		err = e.store.ConditionalUpdateGameState(ctx, roomID, state.Version, newState)
		if err == nil {
			newState.Version = state.Version + 1
			// Internal calls come from the bot coordinator itself; it
			// must not retrigger on its own commit (spec §6.2).
			if mode == ActionModeExternal && e.onCommit != nil {
				e.onCommit(ctx, roomID, newState)
			}
			return newState, nil
		}
		if err != bigtwo.ErrConcurrentUpdate {
			return nil, bigtwo.NewGameError(bigtwo.ErrKindStoreUnavailable, err.Error())
		}
		if try >= bigtwo.StoreRetries {
			return nil, bigtwo.NewGameError(bigtwo.ErrKindConcurrentUpdate, "exhausted retry budget")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(bigtwo.StoreBackoff):
		}
	}
}

// resolveSeat loads the room and finds the acting seat (spec §4.2.1
// step 1 / §4.2.2 step 1).
func (e *Engine) resolveSeat(ctx context.Context, roomID, actorIdentity string) (bigtwo.Seat, error) {
	room, err := e.store.LoadRoom(ctx, roomID)
	if err != nil {
		return bigtwo.Seat{}, err
	}
	seat, ok := room.SeatByIdentity(actorIdentity)
	if !ok {
		return bigtwo.Seat{}, bigtwo.NewGameError(bigtwo.ErrKindNotAMember, actorIdentity)
	}
	return seat, nil
}
