package engine

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/lox/bigtwo/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// recordingBus is a thread-unsafe EventBus recorder good enough for
// single-goroutine tests.
type recordingBus struct {
	events []Event
}

func (b *recordingBus) Publish(_ string, event Event) {
	b.events = append(b.events, event)
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// newTestRoom seeds a 4-seat room at the start of its first match:
// each seat holds a consecutive 13-card band of the canonical deck, so
// seat 0 holds the 3♦ and leads.
func newTestRoom(t *testing.T) (*store.MemStore, *Engine, *recordingBus, string) {
	t.Helper()
	mem := store.NewMemStore(zerolog.New(io.Discard))
	bus := &recordingBus{}
	eng := New(mem, bus, testLogger())

	room := store.Room{
		ID: "room-1",
		Seats: []bigtwo.Seat{
			{Index: 0, Identity: "alice"},
			{Index: 1, Identity: "bob"},
			{Index: 2, Identity: "carol"},
			{Index: 3, Identity: "dave"},
		},
	}

	deck := bigtwo.FullDeck()
	hands := map[int][]bigtwo.Card{
		0: deck[0:13],
		1: deck[13:26],
		2: deck[26:39],
		3: deck[39:52],
	}
	// Guarantee seat 0 holds the 3♦ to lead legally.
	if !bigtwo.NewCardSet(hands[0]).Contains(bigtwo.ThreeOfDiamonds) {
		for seat, hand := range hands {
			for i, c := range hand {
				if c.Equal(bigtwo.ThreeOfDiamonds) {
					hands[seat][i], hands[0][0] = hands[0][0], hands[seat][i]
				}
			}
		}
	}

	state := &bigtwo.GameState{
		Phase:       bigtwo.PhaseFirstPlay,
		SeatCount:   4,
		CurrentTurn: 0,
		Hands:       hands,
		PlayedCards: bigtwo.CardSet{},
		MatchNumber: 1,
		Scores:      map[int]int{0: 0, 1: 0, 2: 0, 3: 0},
	}
	mem.SeedRoom(room, state)

	return mem, eng, bus, room.ID
}

func TestPlayCards_FirstPlayMustLeadWithThreeOfDiamonds(t *testing.T) {
	_, eng, _, roomID := newTestRoom(t)
	ctx := context.Background()

	_, err := eng.PlayCards(ctx, roomID, "alice", []string{"4D"}, ActionModeExternal)
	require.Error(t, err)
	require.Equal(t, bigtwo.ErrKindMustLeadWithThreeOfDiamond, bigtwo.KindOf(err))
}

func TestPlayCards_LeadThenBeatThenCannotBeat(t *testing.T) {
	mem, eng, bus, roomID := newTestRoom(t)
	ctx := context.Background()

	state, err := eng.PlayCards(ctx, roomID, "alice", []string{"3D"}, ActionModeExternal)
	require.NoError(t, err)
	require.Equal(t, bigtwo.PhasePlaying, state.Phase)
	require.Equal(t, 1, state.CurrentTurn)
	require.NotNil(t, state.LastPlay)
	require.Equal(t, bigtwo.Single, state.LastPlay.Combo.Kind)

	// Bob's natural band of deck[13:26] is entirely Six-through-Nine,
	// so his weakest card already beats alice's 3♦; play it to
	// set up a concrete CannotBeat case for carol.
	_, err = eng.PlayCards(ctx, roomID, "bob", []string{"6C"}, ActionModeExternal)
	require.NoError(t, err)

	// Swap a card weaker than 6♣ into carol's hand so she has a
	// legal-but-losing single to attempt.
	loaded, err := mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)
	fourDiamonds := bigtwo.NewCard(bigtwo.Four, bigtwo.Diamonds)
	loaded.Hands[0] = removeCard(loaded.Hands[0], fourDiamonds)
	loaded.Hands[2] = append(loaded.Hands[2], fourDiamonds)
	err = mem.ConditionalUpdateGameState(ctx, roomID, loaded.Version, loaded)
	require.NoError(t, err)

	_, err = eng.PlayCards(ctx, roomID, "carol", []string{"4D"}, ActionModeExternal)
	require.Error(t, err)
	require.Equal(t, bigtwo.ErrKindCannotBeat, bigtwo.KindOf(err))

	_, err = eng.PlayCards(ctx, roomID, "carol", []string{"9H"}, ActionModeExternal)
	require.NoError(t, err)

	loaded, err = mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)
	require.Equal(t, bigtwo.Single, loaded.LastPlay.Combo.Kind)
	require.Equal(t, 2, loaded.LastPlay.Seat)

	require.NotEmpty(t, bus.events)
}

// removeCard returns hand with one copy of c removed, for test setup
// that needs to relocate a specific card between hands.
func removeCard(hand []bigtwo.Card, c bigtwo.Card) []bigtwo.Card {
	out := make([]bigtwo.Card, 0, len(hand))
	for _, card := range hand {
		if card.Equal(c) {
			continue
		}
		out = append(out, card)
	}
	return out
}

func TestPlayCards_NotYourTurn(t *testing.T) {
	_, eng, _, roomID := newTestRoom(t)
	ctx := context.Background()

	_, err := eng.PlayCards(ctx, roomID, "bob", []string{"4D"}, ActionModeExternal)
	require.Error(t, err)
	require.Equal(t, bigtwo.ErrKindNotYourTurn, bigtwo.KindOf(err))
}

func TestPlayerPass_NoOpWhenLeadingWithZeroPasses(t *testing.T) {
	// spec §4.2.2 step 2's race exception: last_play and passes are
	// always reset together, so a pass that arrives while leading with
	// passes still at zero is a client racing that reset, not a real
	// protocol violation, and must succeed as a no-op.
	_, eng, bus, roomID := newTestRoom(t)
	ctx := context.Background()

	state, err := eng.PlayerPass(ctx, roomID, "alice", ActionModeExternal)
	require.NoError(t, err)
	require.Nil(t, state.LastPlay)
	require.Equal(t, 0, state.Passes)
	require.Equal(t, 0, state.CurrentTurn)
	require.Empty(t, bus.events)
}

func TestPlayerPass_ThreePassesClearTrick(t *testing.T) {
	mem, eng, _, roomID := newTestRoom(t)
	ctx := context.Background()

	_, err := eng.PlayCards(ctx, roomID, "alice", []string{"3D"}, ActionModeExternal)
	require.NoError(t, err)

	_, err = eng.PlayerPass(ctx, roomID, "bob", ActionModeExternal)
	require.NoError(t, err)
	_, err = eng.PlayerPass(ctx, roomID, "carol", ActionModeExternal)
	require.NoError(t, err)
	state, err := eng.PlayerPass(ctx, roomID, "dave", ActionModeExternal)
	require.NoError(t, err)

	require.Nil(t, state.LastPlay)
	require.Equal(t, 0, state.Passes)
	require.Equal(t, 0, state.CurrentTurn) // alice led and wins the trick back

	loaded, err := mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)
	require.Nil(t, loaded.AutoPassTimer)
}

func TestPlayCards_UnbeatableSingleStartsTimer(t *testing.T) {
	mem, eng, _, roomID := newTestRoom(t)
	ctx := context.Background()

	// Force alice's hand down to the 3♦, a harmless filler, and the
	// 2♠ (the single highest card in the deck), so nothing unplayed
	// can beat the 2♠ once it is led. The filler keeps alice above
	// one card while the other three pass, so the one-card-left rule
	// doesn't fire on them first.
	state, err := mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)

	two := bigtwo.NewCard(bigtwo.Two, bigtwo.Spades)
	filler := bigtwo.NewCard(bigtwo.Four, bigtwo.Diamonds)
	for seat, hand := range state.Hands {
		if seat == 0 {
			continue
		}
		kept := make([]bigtwo.Card, 0, len(hand))
		for _, c := range hand {
			if c.Equal(two) || c.Equal(filler) {
				continue
			}
			kept = append(kept, c)
		}
		state.Hands[seat] = kept
	}
	state.Hands[0] = []bigtwo.Card{bigtwo.ThreeOfDiamonds, filler, two}
	err = mem.ConditionalUpdateGameState(ctx, roomID, state.Version, state)
	require.NoError(t, err)

	_, err = eng.PlayCards(ctx, roomID, "alice", []string{"3D"}, ActionModeExternal)
	require.NoError(t, err)
	_, err = eng.PlayerPass(ctx, roomID, "bob", ActionModeExternal)
	require.NoError(t, err)
	_, err = eng.PlayerPass(ctx, roomID, "carol", ActionModeExternal)
	require.NoError(t, err)
	_, err = eng.PlayerPass(ctx, roomID, "dave", ActionModeExternal)
	require.NoError(t, err)

	loaded, err := mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)
	require.Equal(t, 0, loaded.CurrentTurn)

	_, err = eng.PlayCards(ctx, roomID, "alice", []string{"2S"}, ActionModeExternal)
	require.NoError(t, err)

	loaded, err = mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)
	require.NotNil(t, loaded.AutoPassTimer)
	require.True(t, loaded.AutoPassTimer.Active)
	require.Equal(t, 0, loaded.AutoPassTimer.ExemptSeat)
}

func TestPlayCards_TimerSequenceIDsAreStrictlyIncreasing(t *testing.T) {
	// spec §4.2.1/§4.3: sequence_id = prev_sequence_id + 1, a
	// strictly-increasing per-room counter, not a wall-clock derived
	// value that can collide across fast successive installs.
	mem, eng, _, roomID := newTestRoom(t)
	ctx := context.Background()

	state, err := mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)

	// 2♠ and 2♥ are used for the two rounds: rank Two always outranks
	// every other rank, and suit only breaks ties within the same rank,
	// so 2♥ is the highest remaining single the moment 2♠ is gone,
	// regardless of which other cards (including the lower 2♦/2♣) are
	// still unplayed elsewhere.
	twoSpades := bigtwo.NewCard(bigtwo.Two, bigtwo.Spades)
	twoHearts := bigtwo.NewCard(bigtwo.Two, bigtwo.Hearts)
	filler1 := bigtwo.NewCard(bigtwo.Four, bigtwo.Diamonds)
	filler2 := bigtwo.NewCard(bigtwo.Five, bigtwo.Diamonds)
	special := bigtwo.NewCardSet([]bigtwo.Card{twoSpades, twoHearts, filler1, filler2})
	for seat, hand := range state.Hands {
		if seat == 0 {
			continue
		}
		kept := make([]bigtwo.Card, 0, len(hand))
		for _, c := range hand {
			if special.Contains(c) {
				continue
			}
			kept = append(kept, c)
		}
		state.Hands[seat] = kept
	}
	state.Hands[0] = []bigtwo.Card{bigtwo.ThreeOfDiamonds, filler1, twoSpades, filler2, twoHearts}
	err = mem.ConditionalUpdateGameState(ctx, roomID, state.Version, state)
	require.NoError(t, err)

	_, err = eng.PlayCards(ctx, roomID, "alice", []string{"3D"}, ActionModeExternal)
	require.NoError(t, err)
	for _, identity := range []string{"bob", "carol", "dave"} {
		_, err = eng.PlayerPass(ctx, roomID, identity, ActionModeExternal)
		require.NoError(t, err)
	}

	// Round one: 2♠ is unbeatable, installing the first timer.
	_, err = eng.PlayCards(ctx, roomID, "alice", []string{"2S"}, ActionModeExternal)
	require.NoError(t, err)
	loaded, err := mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)
	require.NotNil(t, loaded.AutoPassTimer)
	require.Equal(t, uint64(1), loaded.AutoPassTimer.SequenceID)
	require.Equal(t, uint64(1), loaded.NextTimerSequence)

	for _, identity := range []string{"bob", "carol", "dave"} {
		_, err = eng.PlayerPass(ctx, roomID, identity, ActionModeExternal)
		require.NoError(t, err)
	}
	loaded, err = mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)
	require.Nil(t, loaded.AutoPassTimer, "three passes clear the trick and cancel the first timer")

	// Round two: with 2♠ gone, 2♥ is now the highest remaining single,
	// installing a second timer whose sequence_id must be strictly
	// greater than the first's rather than colliding with it.
	_, err = eng.PlayCards(ctx, roomID, "alice", []string{"2H"}, ActionModeExternal)
	require.NoError(t, err)
	loaded, err = mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)
	require.NotNil(t, loaded.AutoPassTimer)
	require.Equal(t, uint64(2), loaded.AutoPassTimer.SequenceID)
	require.Equal(t, uint64(2), loaded.NextTimerSequence)
}

func TestPlayCards_MatchEndScoresAndAdvancesMatchNumber(t *testing.T) {
	mem, eng, bus, roomID := newTestRoom(t)
	ctx := context.Background()

	state, err := mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)
	state.Hands[0] = []bigtwo.Card{bigtwo.ThreeOfDiamonds}
	err = mem.ConditionalUpdateGameState(ctx, roomID, state.Version, state)
	require.NoError(t, err)

	newState, err := eng.PlayCards(ctx, roomID, "alice", []string{"3D"}, ActionModeExternal)
	require.NoError(t, err)
	require.Equal(t, bigtwo.PhaseMatchFinished, newState.Phase)
	require.Equal(t, 2, newState.MatchNumber)
	require.NotNil(t, newState.LastMatchWinner)
	require.Equal(t, 0, *newState.LastMatchWinner)
	require.Greater(t, newState.Scores[1], 0)

	var sawMatchEnded bool
	for _, ev := range bus.events {
		if ev.Kind() == "match_ended" {
			sawMatchEnded = true
		}
	}
	require.True(t, sawMatchEnded)
}

func TestPlayCards_GameOverAtScoreThreshold(t *testing.T) {
	mem, eng, bus, roomID := newTestRoom(t)
	ctx := context.Background()

	state, err := mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)
	state.Hands[0] = []bigtwo.Card{bigtwo.ThreeOfDiamonds}
	state.Scores[1] = bigtwo.ScoreThreshold - 1
	err = mem.ConditionalUpdateGameState(ctx, roomID, state.Version, state)
	require.NoError(t, err)

	newState, err := eng.PlayCards(ctx, roomID, "alice", []string{"3D"}, ActionModeExternal)
	require.NoError(t, err)
	require.Equal(t, bigtwo.PhaseGameOver, newState.Phase)
	require.NotNil(t, newState.FinalWinner)

	var sawGameOver bool
	for _, ev := range bus.events {
		if ev.Kind() == "game_over" {
			sawGameOver = true
		}
	}
	require.True(t, sawGameOver)
}

func TestPlayCards_OneCardLeftRuleForcesHighestBeatingSingle(t *testing.T) {
	mem, eng, _, roomID := newTestRoom(t)
	ctx := context.Background()

	_, err := eng.PlayCards(ctx, roomID, "alice", []string{"3D"}, ActionModeExternal)
	require.NoError(t, err)

	state, err := mem.LoadGameState(ctx, roomID)
	require.NoError(t, err)

	fourSpades := bigtwo.NewCard(bigtwo.Four, bigtwo.Spades)
	sixDiamonds := bigtwo.NewCard(bigtwo.Six, bigtwo.Diamonds)
	sevenDiamonds := bigtwo.NewCard(bigtwo.Seven, bigtwo.Diamonds)
	removeFrom := func(except int, cards ...bigtwo.Card) {
		drop := bigtwo.NewCardSet(cards)
		for seat, hand := range state.Hands {
			if seat == except {
				continue
			}
			kept := make([]bigtwo.Card, 0, len(hand))
			for _, c := range hand {
				if !drop.Contains(c) {
					kept = append(kept, c)
				}
			}
			state.Hands[seat] = kept
		}
	}
	removeFrom(-1, fourSpades, sixDiamonds, sevenDiamonds)
	// Carol is the next seat to act after bob (spec §4.2.1 step 8 /
	// §4.2.2 step 3 key off the *next* seat, not just any other seat),
	// so her lone card is what arms the rule for bob's move.
	state.Hands[2] = []bigtwo.Card{fourSpades}
	// Bob's hand is pared down to exactly the two singles that beat
	// alice's 3♦, so 7♦ is unambiguously the highest beating single.
	state.Hands[1] = []bigtwo.Card{sixDiamonds, sevenDiamonds}

	err = mem.ConditionalUpdateGameState(ctx, roomID, state.Version, state)
	require.NoError(t, err)

	_, err = eng.PlayCards(ctx, roomID, "bob", []string{"6D"}, ActionModeExternal)
	require.Error(t, err)
	require.Equal(t, bigtwo.ErrKindMustPlayHighestBeating, bigtwo.KindOf(err))

	_, err = eng.PlayerPass(ctx, roomID, "bob", ActionModeExternal)
	require.Error(t, err)
	require.Equal(t, bigtwo.ErrKindMustPlayHighestBeating, bigtwo.KindOf(err))

	_, err = eng.PlayCards(ctx, roomID, "bob", []string{"7D"}, ActionModeExternal)
	require.NoError(t, err)
}
