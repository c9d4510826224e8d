// Package board runs the live board: it owns what the rider is looking at and
// recomputes the view on clock ticks, periodic refreshes and rider actions.
package board

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"shuttle.campusbus.org/internal/clock"
	"shuttle.campusbus.org/internal/logging"
	"shuttle.campusbus.org/internal/metrics"
	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/shuttle"
	"shuttle.campusbus.org/internal/utils"
)

const (
	DefaultClockTick = time.Second
	DefaultRefresh   = 30 * time.Second
)

// Trigger names what caused a frame.
type Trigger string

const (
	TriggerStart   Trigger = "start"
	TriggerClock   Trigger = "clock"
	TriggerRefresh Trigger = "refresh"
	TriggerEvent   Trigger = "event"
)

// State is the rider's selection. A zero Date means today.
type State struct {
	Direction    models.Direction
	Date         time.Time
	PreviewRunID string
	ShowAll      bool
	Lang         string
}

// Frame is one update handed to renderers. Clock frames carry no View.
type Frame struct {
	Trigger Trigger
	Now     time.Time
	State   State
	View    *shuttle.View
	Err     error
}

type Renderer interface {
	Render(Frame)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(Frame)

func (f RendererFunc) Render(fr Frame) { f(fr) }

type Config struct {
	Engine    *shuttle.Engine
	Clock     clock.Clock
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	ClockTick time.Duration
	Refresh   time.Duration
	Initial   State
	Renderers []Renderer
}

// Board is the single writer of State. All mutation happens on the Run
// goroutine; other goroutines talk to it through Send.
type Board struct {
	engine    *shuttle.Engine
	clock     clock.Clock
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tick      time.Duration
	refresh   time.Duration
	renderers []Renderer

	state  State
	events chan Event
	done   chan struct{}
}

var ErrStopped = errors.New("board stopped")

func New(cfg Config) *Board {
	if cfg.Clock == nil {
		cfg.Clock = clock.RealClock{}
	}
	if cfg.ClockTick <= 0 {
		cfg.ClockTick = DefaultClockTick
	}
	if cfg.Refresh <= 0 {
		cfg.Refresh = DefaultRefresh
	}
	if cfg.Initial.Direction == "" {
		cfg.Initial.Direction = models.SouthToNorth
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Board{
		engine:    cfg.Engine,
		clock:     cfg.Clock,
		logger:    logger.With(slog.String("component", "board")),
		metrics:   cfg.Metrics,
		tick:      cfg.ClockTick,
		refresh:   cfg.Refresh,
		renderers: cfg.Renderers,
		state:     cfg.Initial,
		events:    make(chan Event),
		done:      make(chan struct{}),
	}
}

// Send delivers ev to the running board. It blocks until the board has taken
// the event, ctx ends, or the board stops.
func (b *Board) Send(ctx context.Context, ev Event) error {
	select {
	case b.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-b.done:
		return ErrStopped
	}
}

// Run emits a start frame and then serves ticks and events until ctx is
// cancelled. It returns ctx.Err().
func (b *Board) Run(ctx context.Context) error {
	defer close(b.done)

	clockTicker := time.NewTicker(b.tick)
	defer clockTicker.Stop()
	refreshTicker := time.NewTicker(b.refresh)
	defer refreshTicker.Stop()

	logging.LogOperation(b.logger, "board_started",
		slog.String("direction", string(b.state.Direction)),
		slog.Duration("refresh", b.refresh))

	b.recompute(TriggerStart)

	for {
		select {
		case <-ctx.Done():
			logging.LogOperation(b.logger, "board_stopped")
			return ctx.Err()

		case <-clockTicker.C:
			b.emit(Frame{Trigger: TriggerClock, Now: b.clock.Now(), State: b.state})

		case <-refreshTicker.C:
			// other days are static
			if b.viewingToday() {
				b.recompute(TriggerRefresh)
			}

		case ev := <-b.events:
			b.state = ev.apply(b.state)
			b.recompute(TriggerEvent)
		}
	}
}

func (b *Board) viewingToday() bool {
	return b.state.Date.IsZero() || utils.SameDay(b.clock.Now(), b.state.Date)
}

func (b *Board) recompute(trigger Trigger) {
	now := b.clock.Now()
	started := time.Now()
	view, err := b.engine.Build(shuttle.Request{
		Direction:    b.state.Direction,
		Date:         b.state.Date,
		Now:          now,
		PreviewRunID: b.state.PreviewRunID,
		ShowAll:      b.state.ShowAll,
	})
	if err != nil {
		logging.LogError(b.logger, "failed to build view", err,
			slog.String("trigger", string(trigger)),
			slog.String("direction", string(b.state.Direction)))
		b.emit(Frame{Trigger: trigger, Now: now, State: b.state, Err: err})
		return
	}
	b.metrics.ObserveView(string(view.Direction), len(view.Projection.Active), time.Since(started))
	b.emit(Frame{Trigger: trigger, Now: now, State: b.state, View: &view})
}

func (b *Board) emit(f Frame) {
	if b.metrics != nil {
		b.metrics.BoardFramesTotal.WithLabelValues(string(f.Trigger)).Inc()
	}
	for _, r := range b.renderers {
		r.Render(f)
	}
}
