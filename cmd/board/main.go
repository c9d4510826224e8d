// Command board draws the live shuttle board in a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shuttle.campusbus.org/internal/appconf"
	"shuttle.campusbus.org/internal/board"
	"shuttle.campusbus.org/internal/clock"
	"shuttle.campusbus.org/internal/i18n"
	"shuttle.campusbus.org/internal/logging"
	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/publisher"
	"shuttle.campusbus.org/internal/schedule"
	"shuttle.campusbus.org/internal/shuttle"
	"shuttle.campusbus.org/internal/utils"
)

type options struct {
	direction    string
	date         string
	preview      string
	lang         string
	showAll      bool
	once         bool
	clear        bool
	schedulePath string
	nightCutoff  string
	natsURL      string
	natsPrefix   string
	envFile      string
	clock        clock.Clock
}

func main() {
	opts := options{}
	flag.StringVar(&opts.direction, "dir", "sn", "Direction (sn|ns)")
	flag.StringVar(&opts.date, "date", "", "Day to show as YYYY-MM-DD (today when empty)")
	flag.StringVar(&opts.preview, "preview", "", "Pin the board to a run id")
	flag.StringVar(&opts.lang, "lang", appconf.DefaultLang, "Language (en|zh)")
	flag.BoolVar(&opts.showAll, "all", false, "List runs that already left")
	flag.BoolVar(&opts.once, "once", false, "Draw one frame and exit")
	flag.BoolVar(&opts.clear, "clear", true, "Clear the screen before each redraw")
	flag.StringVar(&opts.schedulePath, "schedule", "", "Path to a schedule YAML file (built-in schedule when empty)")
	flag.StringVar(&opts.nightCutoff, "night-cutoff", "19:30", "Time of day the night route starts")
	flag.StringVar(&opts.natsURL, "nats-url", "", "Also publish every frame to this NATS server (NATS_URL when empty)")
	flag.StringVar(&opts.natsPrefix, "nats-prefix", appconf.DefaultNatsSubjectPrefix, "NATS subject prefix")
	flag.StringVar(&opts.envFile, "env-file", ".env", "Path to a .env file (ignored when missing)")
	clockEnv := flag.String("clock-env", "", "Environment variable that pins the time")
	clockFile := flag.String("clock-file", "", "File that pins the time")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	opts.clock = clock.New(*clockEnv, *clockFile, time.Local)
	logger := logging.NewLogger(os.Stderr, false, *verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil && !errors.Is(err, context.Canceled) {
		logging.LogError(logger, "board failed", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer, logger *slog.Logger) error {
	if opts.envFile != "" {
		if err := appconf.LoadDotEnv(opts.envFile); err != nil {
			return err
		}
	}
	if opts.natsURL == "" {
		opts.natsURL = os.Getenv("NATS_URL")
	}

	dir, err := models.ParseDirection(opts.direction)
	if err != nil {
		return err
	}
	cutoff, err := utils.TimeToMinutes(opts.nightCutoff)
	if err != nil {
		return fmt.Errorf("night-cutoff: %w", err)
	}

	var store *schedule.Store
	if opts.schedulePath != "" {
		store, err = schedule.LoadFile(opts.schedulePath)
	} else {
		store, err = schedule.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("failed to load schedule: %w", err)
	}

	tr, err := i18n.New(i18n.DefaultLang)
	if err != nil {
		return err
	}
	c := opts.clock
	if c == nil {
		c = clock.RealClock{}
	}

	state := board.State{Direction: dir, PreviewRunID: opts.preview, ShowAll: opts.showAll, Lang: tr.Normalize(opts.lang)}
	if opts.date != "" {
		state.Date, err = utils.ParseServiceDate(opts.date, c.Now().Location())
		if err != nil {
			return err
		}
	}

	engine := shuttle.NewEngine(store, cutoff)
	terminal := board.NewTerminal(out, tr, opts.clear && !opts.once)

	if opts.once {
		now := c.Now()
		view, err := engine.Build(shuttle.Request{
			Direction:    state.Direction,
			Date:         state.Date,
			Now:          now,
			PreviewRunID: state.PreviewRunID,
			ShowAll:      state.ShowAll,
		})
		if err != nil {
			return err
		}
		terminal.Render(board.Frame{Trigger: board.TriggerStart, Now: now, State: state, View: &view})
		return nil
	}

	renderers := []board.Renderer{terminal}
	if opts.natsURL != "" {
		pub, err := publisher.Connect(opts.natsURL, opts.natsPrefix, logger, nil)
		if err != nil {
			return err
		}
		defer pub.Close()
		renderers = append(renderers, pub)
	}

	b := board.New(board.Config{
		Engine:    engine,
		Clock:     c,
		Logger:    logger,
		Initial:   state,
		Renderers: renderers,
	})
	return b.Run(ctx)
}
