// Package store defines the persistent-store interface the engine
// depends on (E1, spec §6.4) and ships one in-memory implementation
// sufficient to run and test the whole engine end-to-end. A durable
// backend is out of scope (spec §1); the interface is shaped so a
// SQL-backed implementation could satisfy it without engine changes.
package store

import (
	"context"
	"time"

	"github.com/lox/bigtwo/internal/bigtwo"
)

// Room is the seating/identity record for a room (spec §6.4's
// LoadRoom). Room lifecycle before game start (seating, readiness,
// dealing) is out of scope; this only describes a room the engine
// already finds seeded.
type Room struct {
	ID    string
	Seats []bigtwo.Seat
}

// SeatByIdentity returns the seat whose Identity matches identity.
func (r Room) SeatByIdentity(identity string) (bigtwo.Seat, bool) {
	for _, s := range r.Seats {
		if s.Identity == identity {
			return s, true
		}
	}
	return bigtwo.Seat{}, false
}

// Store is the narrow persistence contract the engine, timer scanner,
// and bot coordinator depend on (spec §6.4). Every method is safe for
// concurrent use by multiple server processes.
type Store interface {
	// LoadRoom resolves a room code to its seating record.
	LoadRoom(ctx context.Context, roomID string) (Room, error)

	// LoadGameState returns the authoritative state for a room,
	// including its optimistic-concurrency Version.
	LoadGameState(ctx context.Context, roomID string) (*bigtwo.GameState, error)

	// ConditionalUpdateGameState commits newState iff the room's
	// current version still equals expectedVersion, then bumps the
	// version. Returns bigtwo.ErrConcurrentUpdate on a version
	// mismatch; the caller is expected to retry with fresh state.
	ConditionalUpdateGameState(ctx context.Context, roomID string, expectedVersion uint64, newState *bigtwo.GameState) error

	// UpdateSeatScores persists cumulative scores, e.g. after a match
	// ends, independent of the game-state row.
	UpdateSeatScores(ctx context.Context, roomID string, scores map[int]int) error

	// TryAcquireBotLease attempts to acquire the per-room bot
	// coordinator lease via an atomic compare-and-set (spec §4.4.2).
	// Returns false, nil (not an error) when another coordinator
	// already holds an unexpired lease.
	TryAcquireBotLease(ctx context.Context, roomID, coordinatorID string, ttl time.Duration) (bool, error)

	// ReleaseBotLease deletes the lease row keyed by (roomID,
	// coordinatorID), releasing only the caller's own lease.
	ReleaseBotLease(ctx context.Context, roomID, coordinatorID string) error

	// RenewBotLease extends a held lease's expiry. Used by a
	// long-running coordinator loop to detect lease loss: a renewal
	// that fails because the row no longer names coordinatorID means
	// the lease already expired out from under it.
	RenewBotLease(ctx context.Context, roomID, coordinatorID string, ttl time.Duration) error

	// DueTimerRooms returns the IDs of rooms whose auto_pass_timer is
	// active and has end_at <= now. Satisfies timer.DueRoomsFunc.
	DueTimerRooms(ctx context.Context, now time.Time) ([]string, error)
}
