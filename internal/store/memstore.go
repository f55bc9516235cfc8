package store

import (
	"context"
	"sync"
	"time"

	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/rs/zerolog"
)

// lease is a row in the bot-coordinator lease table (spec §4.4.2).
type lease struct {
	coordinatorID string
	expiresAt     time.Time
}

// MemStore is an in-process Store implementation. It is the reference
// backend used by cmd/bigtwo-server and the test suite; a production
// deployment would swap this for a row-oriented database behind the
// same interface.
type MemStore struct {
	mu     sync.Mutex
	logger zerolog.Logger

	rooms  map[string]Room
	states map[string]*bigtwo.GameState
	leases map[string]lease
}

// NewMemStore constructs an empty in-memory store.
func NewMemStore(logger zerolog.Logger) *MemStore {
	return &MemStore{
		logger: logger.With().Str("component", "store").Logger(),
		rooms:  make(map[string]Room),
		states: make(map[string]*bigtwo.GameState),
		leases: make(map[string]lease),
	}
}

// SeedRoom installs a room and its initial game state. This stands in
// for the external dealer/lobby flow (out of scope, spec §1): tests
// and cmd/bigtwo-server call this once to bootstrap a room before the
// engine takes over.
func (m *MemStore) SeedRoom(room Room, state *bigtwo.GameState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[room.ID] = room
	state.RoomID = room.ID
	m.states[room.ID] = state.Clone()
}

func (m *MemStore) LoadRoom(_ context.Context, roomID string) (Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	if !ok {
		return Room{}, bigtwo.NewGameError(bigtwo.ErrKindRoomNotFound, roomID)
	}
	return room, nil
}

func (m *MemStore) LoadGameState(_ context.Context, roomID string) (*bigtwo.GameState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[roomID]
	if !ok {
		return nil, bigtwo.NewGameError(bigtwo.ErrKindStateMissing, roomID)
	}
	return state.Clone(), nil
}

func (m *MemStore) ConditionalUpdateGameState(_ context.Context, roomID string, expectedVersion uint64, newState *bigtwo.GameState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.states[roomID]
	if !ok {
		return bigtwo.NewGameError(bigtwo.ErrKindStateMissing, roomID)
	}
	if current.Version != expectedVersion {
		return bigtwo.ErrConcurrentUpdate
	}

	committed := newState.Clone()
	committed.Version = expectedVersion + 1
	m.states[roomID] = committed
	return nil
}

func (m *MemStore) UpdateSeatScores(_ context.Context, roomID string, scores map[int]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return bigtwo.NewGameError(bigtwo.ErrKindRoomNotFound, roomID)
	}
	for i, seat := range room.Seats {
		if score, ok := scores[seat.Index]; ok {
			room.Seats[i].CumulativeScore = score
		}
	}
	m.rooms[roomID] = room
	return nil
}

func (m *MemStore) TryAcquireBotLease(_ context.Context, roomID, coordinatorID string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	if existing, ok := m.leases[roomID]; ok && existing.expiresAt.After(now) {
		return false, nil
	}

	m.leases[roomID] = lease{coordinatorID: coordinatorID, expiresAt: now.Add(ttl)}
	m.logger.Debug().Str("room", roomID).Str("coordinator", coordinatorID).Msg("bot lease acquired")
	return true, nil
}

func (m *MemStore) ReleaseBotLease(_ context.Context, roomID, coordinatorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.leases[roomID]; ok && existing.coordinatorID == coordinatorID {
		delete(m.leases, roomID)
		m.logger.Debug().Str("room", roomID).Str("coordinator", coordinatorID).Msg("bot lease released")
	}
	return nil
}

func (m *MemStore) RenewBotLease(_ context.Context, roomID, coordinatorID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.leases[roomID]
	if !ok || existing.coordinatorID != coordinatorID {
		return bigtwo.ErrLeaseLost
	}
	existing.expiresAt = time.Now().Add(ttl)
	m.leases[roomID] = existing
	return nil
}

func (m *MemStore) DueTimerRooms(_ context.Context, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []string
	for roomID, state := range m.states {
		if state.AutoPassTimer != nil && state.AutoPassTimer.Expired(now) {
			due = append(due, roomID)
		}
	}
	return due, nil
}
