// Package publisher broadcasts the simulated live board over NATS.
package publisher

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"shuttle.campusbus.org/internal/board"
	"shuttle.campusbus.org/internal/logging"
	"shuttle.campusbus.org/internal/metrics"
	"shuttle.campusbus.org/internal/models"
	"shuttle.campusbus.org/internal/shuttle"
)

// Conn is the part of a NATS connection the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

type NATSPublisher struct {
	conn    Conn
	nc      *nats.Conn
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Connect dials url and returns a publisher on subjects under prefix.
func Connect(url, prefix string, logger *slog.Logger, m *metrics.Metrics) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(slog.String("component", "nats_publisher"))

	nc, err := nats.Connect(url,
		nats.Name("campus-shuttle-board"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.LogError(logger, "nats disconnected", err)
				return
			}
			logger.Warn("nats disconnected")
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", slog.String("url", c.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	p := New(nc, prefix, logger, m)
	p.nc = nc
	return p, nil
}

// New wraps an existing connection.
func New(conn Conn, prefix string, logger *slog.Logger, m *metrics.Metrics) *NATSPublisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &NATSPublisher{
		conn:    conn,
		prefix:  strings.TrimSuffix(prefix, "."),
		logger:  logger,
		metrics: m,
	}
}

// Close drains and closes a connection opened by Connect.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// Subject returns the subject snapshots of dir are published on.
func (p *NATSPublisher) Subject(dir models.Direction) string {
	return p.prefix + "." + dir.Short()
}

// LiveSnapshot is the published projection of one direction.
type LiveSnapshot struct {
	Direction   models.Direction        `json:"direction"`
	Date        string                  `json:"date"`
	Clock       string                  `json:"clock"`
	Mode        models.Mode             `json:"mode"`
	Live        bool                    `json:"live"`
	Stations    []models.Station        `json:"stations"`
	Active      []models.LiveRunState   `json:"active"`
	Placements  []models.BusPlacement   `json:"placements"`
	Arrivals    []models.StationArrival `json:"arrivals"`
	NextRunID   string                  `json:"nextRunId,omitempty"`
	PublishedAt time.Time               `json:"publishedAt"`
}

func NewSnapshot(view shuttle.View, at time.Time) LiveSnapshot {
	s := LiveSnapshot{
		Direction:   view.Direction,
		Date:        view.Date,
		Clock:       view.Clock,
		Mode:        view.Mode,
		Live:        view.Projection.Live,
		Stations:    view.Topology.Stations,
		Active:      view.Projection.Active,
		Placements:  view.Projection.Placements,
		Arrivals:    view.Projection.Arrivals,
		PublishedAt: at.UTC(),
	}
	if view.Display.Kind == shuttle.DisplayNext && view.Display.Run != nil {
		s.NextRunID = view.Display.Run.ID
	}
	return s
}

// Publish sends the snapshot of view.
func (p *NATSPublisher) Publish(view shuttle.View, at time.Time) error {
	b, err := json.Marshal(NewSnapshot(view, at))
	if err != nil {
		return err
	}
	subject := p.Subject(view.Direction)
	err = p.conn.Publish(subject, b)
	if p.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		p.metrics.PublishTotal.WithLabelValues(status).Inc()
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	p.logger.Debug("snapshot published", slog.String("subject", subject), slog.Int("bytes", len(b)))
	return nil
}

// Render publishes every computed view. Clock frames, failed frames and
// pinned previews are skipped.
func (p *NATSPublisher) Render(f board.Frame) {
	if f.View == nil || f.View.Preview() {
		return
	}
	if err := p.Publish(*f.View, f.Now); err != nil {
		logging.LogError(p.logger, "failed to publish snapshot", err)
	}
}
