package main

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	clog "github.com/charmbracelet/log"
	"github.com/lox/bigtwo/internal/bigtwo"
	"github.com/lox/bigtwo/internal/coordinator"
	"github.com/lox/bigtwo/internal/engine"
	"github.com/lox/bigtwo/internal/roomconfig"
	"github.com/lox/bigtwo/internal/store"
	"github.com/lox/bigtwo/internal/timer"
	"github.com/lox/bigtwo/internal/transport"
	"github.com/rs/zerolog"
)

type CLI struct {
	Addr            string `kong:"default=':8080',help='Server address'"`
	Debug           bool   `kong:"help='Enable debug logging'"`
	RoomConfig      string `kong:"name='room-config',default='rooms.hcl',help='HCL file describing rooms to seed (missing file falls back to a single built-in demo room)'"`
	Seed            *int64 `kong:"help='Deterministic RNG seed for dealing (optional)'"`
	TimerTick       int    `kong:"name='timer-tick-ms',default='250',help='Auto-pass timer scan interval in milliseconds'"`
	RedealTick      int    `kong:"name='redeal-tick-ms',default='1000',help='Finished-match redeal scan interval in milliseconds'"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("bigtwo-server"),
		kong.Description("Server-authoritative Big Two engine for bot-vs-human play"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	zlevel := zerolog.InfoLevel
	clevel := clog.InfoLevel
	if cli.Debug {
		zlevel = zerolog.DebugLevel
		clevel = clog.DebugLevel
	}
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zlevel).With().Timestamp().Logger()
	logger := clog.NewWithOptions(os.Stderr, clog.Options{Level: clevel, ReportTimestamp: true})

	seed := time.Now().UnixNano()
	if cli.Seed != nil {
		seed = *cli.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	mem := store.NewMemStore(zlog)
	hub := transport.NewHub(logger)
	eng := engine.New(mem, hub, logger)
	coord := coordinator.New(mem, eng, logger)
	eng.OnCommit(coord.OnCommit)

	rooms, err := seedRooms(mem, rng, cli.RoomConfig)
	if err != nil {
		kctx.FatalIfErrorf(err)
	}
	zlog.Info().Int("room_count", len(rooms)).Str("config", cli.RoomConfig).Msg("rooms seeded")

	scanner := timer.NewScanner(time.Duration(cli.TimerTick)*time.Millisecond, logger, mem.DueTimerRooms, eng.ExpireTimer)
	ctx, cancelScanner := context.WithCancel(context.Background())
	go scanner.Run(ctx)
	defer cancelScanner()

	redealStop := startRedealer(mem, coord, rooms, rng, time.Duration(cli.RedealTick)*time.Millisecond, logger)
	defer close(redealStop)

	srv := transport.New(eng, mem, hub, logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		zlog.Info().Str("addr", cli.Addr).Msg("server starting")
		serverErr <- srv.Start(cli.Addr)
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			kctx.FatalIfErrorf(err)
		}
	case sig := <-sigChan:
		zlog.Info().Str("signal", sig.String()).Msg("received signal, shutting down gracefully")
		shutdown(srv, serverErr, zlog)
	}
}

func shutdown(srv *transport.Server, serverErr <-chan error, zlog zerolog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := <-serverErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		zlog.Error().Err(err).Msg("server exited with error")
	} else {
		zlog.Info().Msg("server shutdown complete")
	}
}

// seedRooms loads roomPath and deals every room it names into mem,
// falling back to a single built-in two-seat demo room (one human, one
// easy bot) when the file is absent, so the server is runnable without
// any configuration (spec.md's room seating/readiness lifecycle is out
// of scope; this is only the bootstrap dealer standing in for it).
func seedRooms(mem *store.MemStore, rng *rand.Rand, roomPath string) ([]roomconfig.RoomBlock, error) {
	cfg, err := roomconfig.Load(roomPath)
	if err != nil {
		return nil, err
	}

	if len(cfg.Rooms) == 0 {
		cfg.Rooms = []roomconfig.RoomBlock{{
			Code: "demo",
			Seats: []roomconfig.SeatSpec{
				{Index: 0, Identity: "player"},
				{Index: 1, Difficulty: "easy"},
			},
		}}
	}

	for _, room := range cfg.Rooms {
		seeded, state := room.Deal(rng)
		mem.SeedRoom(seeded, state)
	}
	return cfg.Rooms, nil
}

// startRedealer runs a lightweight poll loop that finds rooms sitting
// in PhaseMatchFinished and deals their next match, seating the
// previous winner to lead (spec.md §9 Open Question #2; §4.2.3 step 6
// names this external dealer invocation but leaves dealing itself out
// of scope). It commits directly through the store's
// ConditionalUpdateGameState rather than the engine, since dealing a
// fresh hand isn't a PlayCards/PlayerPass action; it then calls the
// coordinator directly so a bot seated to lead still gets to move.
func startRedealer(st *store.MemStore, coord *coordinator.Coordinator, rooms []roomconfig.RoomBlock, rng *rand.Rand, interval time.Duration, logger *clog.Logger) chan struct{} {
	stop := make(chan struct{})
	byCode := make(map[string]roomconfig.RoomBlock, len(rooms))
	for _, r := range rooms {
		byCode[r.Code] = r
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				redealFinishedMatches(st, coord, byCode, rng, logger)
			}
		}
	}()
	return stop
}

func redealFinishedMatches(st *store.MemStore, coord *coordinator.Coordinator, byCode map[string]roomconfig.RoomBlock, rng *rand.Rand, logger *clog.Logger) {
	ctx := context.Background()
	for code, room := range byCode {
		state, err := st.LoadGameState(ctx, code)
		if err != nil || state.Phase != bigtwo.PhaseMatchFinished || state.LastMatchWinner == nil {
			continue
		}

		next := room.DealNextMatch(rng, state, *state.LastMatchWinner)
		if err := st.ConditionalUpdateGameState(ctx, code, state.Version, next); err != nil {
			logger.Error("failed to redeal finished match", "room", code, "error", err)
			continue
		}
		coord.OnCommit(ctx, code, next)
	}
}
