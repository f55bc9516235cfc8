// Package timer implements the periodic side of the auto-pass timer
// contract (C3, spec §4.3): a coarse scan loop that discovers rooms
// whose countdown has expired and forces the execution side effect.
// The pure decision (is a play unbeatable?) lives in
// internal/combo.IsHighestPossible; this package only owns the
// wall-clock scheduling.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultTickInterval is the scan cadence. Spec §4.3 requires expiry
// to be observed within 2x this interval of end_at.
const DefaultTickInterval = 250 * time.Millisecond

// DueRoomsFunc returns the room IDs whose auto-pass timer has an
// end_at at or before now and is still active.
type DueRoomsFunc func(ctx context.Context, now time.Time) ([]string, error)

// ExpireFunc executes the timer-expiry side effect for a room: forcing
// every non-exempt seat that hasn't passed since the triggering play
// to pass, advancing current_turn to the exempt seat, and clearing the
// trick.
type ExpireFunc func(ctx context.Context, roomID string) error

// Scanner periodically polls for expired auto-pass timers and executes
// them. It is grounded on the teacher's match-trigger channel loop
// (internal/server/pool.go's matchLoop), generalized from "try to seat
// a hand" to "try to expire a timer."
type Scanner struct {
	interval time.Duration
	logger   *log.Logger
	dueRooms DueRoomsFunc
	expire   ExpireFunc

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewScanner constructs a Scanner. interval <= 0 uses DefaultTickInterval.
func NewScanner(interval time.Duration, logger *log.Logger, dueRooms DueRoomsFunc, expire ExpireFunc) *Scanner {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Scanner{
		interval: interval,
		logger:   logger.WithPrefix("timer"),
		dueRooms: dueRooms,
		expire:   expire,
		stopCh:   make(chan struct{}),
	}
}

// Run blocks, ticking until ctx is cancelled or Stop is called.
func (s *Scanner) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			s.tick(ctx, now)
		}
	}
}

func (s *Scanner) tick(ctx context.Context, now time.Time) {
	rooms, err := s.dueRooms(ctx, now)
	if err != nil {
		s.logger.Error("failed to list due rooms", "error", err)
		return
	}
	for _, roomID := range rooms {
		if err := s.expire(ctx, roomID); err != nil {
			s.logger.Error("failed to expire auto-pass timer", "room", roomID, "error", err)
		}
	}
}

// Stop halts the scan loop. Safe to call more than once.
func (s *Scanner) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}
