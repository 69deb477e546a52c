// Package horizon projects the fee band a few minutes ahead from recent history.
package horizon

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"governor-xrpl-lab/internal/domain"
	"governor-xrpl-lab/internal/observability"
	"governor-xrpl-lab/internal/storage"
)

// Config tunes the predictor.
type Config struct {
	Capacity       int     `yaml:"capacity" env:"CAPACITY"`
	ShortWindow    int     `yaml:"short_window" env:"SHORT_WINDOW"`
	Epsilon        float64 `yaml:"epsilon" env:"EPSILON"`
	HorizonSeconds int     `yaml:"horizon_seconds" env:"HORIZON_SECONDS"`
	MinPoints      int     `yaml:"min_points" env:"MIN_POINTS"`
}

// DefaultConfig returns the default predictor configuration.
func DefaultConfig() Config {
	return Config{
		Capacity:       120,
		ShortWindow:    10,
		Epsilon:        1e-3,
		HorizonSeconds: 600,
		MinPoints:      3,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Capacity <= 0 {
		c.Capacity = d.Capacity
	}
	if c.ShortWindow <= 0 {
		c.ShortWindow = d.ShortWindow
	}
	if c.Epsilon <= 0 {
		c.Epsilon = d.Epsilon
	}
	if c.HorizonSeconds <= 0 {
		c.HorizonSeconds = d.HorizonSeconds
	}
	if c.MinPoints < 2 {
		c.MinPoints = d.MinPoints
	}
	return c
}

// minDT floors the time delta of a slope computation, in seconds.
const minDT = 1e-6

// Options holds optional predictor collaborators.
type Options struct {
	// Store persists every observed point. Nil keeps history in memory only.
	Store  storage.HistoryStore
	Logger *log.Logger
}

// Predictor keeps a bounded fee history and projects the band forward.
type Predictor struct {
	cfg    Config
	store  storage.HistoryStore
	logger *log.Logger

	mu  sync.Mutex
	buf *RingBuffer
}

// NewPredictor creates a predictor with an empty history.
func NewPredictor(cfg Config, opts Options) *Predictor {
	cfg = cfg.withDefaults()
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Predictor{
		cfg:    cfg,
		store:  opts.Store,
		logger: logger,
		buf:    NewRingBuffer(cfg.Capacity),
	}
}

// Restore loads the most recent persisted points into the buffer.
func (p *Predictor) Restore(ctx context.Context) error {
	if p.store == nil {
		return nil
	}
	points, err := p.store.LoadRecent(ctx, p.cfg.Capacity)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, pt := range points {
		if pt != nil {
			p.buf.Push(*pt)
		}
	}
	observability.UpdateHistorySize(p.buf.Len())
	return nil
}

// Observe records the snapshot and returns the resulting horizon.
// Persistence failures are logged and do not affect the forecast.
func (p *Predictor) Observe(ctx context.Context, s domain.NetworkSnapshot, band domain.Band) domain.FeeHorizon {
	pt := domain.PointFromSnapshot(s, band)

	p.mu.Lock()
	p.buf.Push(pt)
	points := p.buf.Points()
	p.mu.Unlock()

	observability.UpdateHistorySize(len(points))

	if p.store != nil {
		if err := p.store.Append(ctx, &pt); err != nil {
			p.logger.Printf("append history point (ledger %d): %v", pt.LedgerSeq, err)
			observability.RecordStoreError("history", "append")
		}
	}

	return p.project(points, band)
}

// Forecast returns the horizon for the current history without recording anything.
func (p *Predictor) Forecast(band domain.Band) domain.FeeHorizon {
	p.mu.Lock()
	points := p.buf.Points()
	p.mu.Unlock()
	return p.project(points, band)
}

// Len returns the number of buffered points.
func (p *Predictor) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Len()
}

// project computes trends over the short and long windows. The projection
// only escalates, one step at most, and only from elevated or extreme.
func (p *Predictor) project(points []domain.HistoryPoint, band domain.Band) domain.FeeHorizon {
	current := band
	if !current.IsValid() {
		current = domain.BandNormal
	}

	h := domain.FeeHorizon{
		ProjectedBand:  current,
		CurrentBand:    current,
		TrendShort:     domain.Trend{Direction: domain.TrendFlat},
		TrendLong:      domain.Trend{Direction: domain.TrendFlat},
		HorizonSeconds: p.cfg.HorizonSeconds,
		Points:         len(points),
	}

	if len(points) < p.cfg.MinPoints {
		h.Comment = fmt.Sprintf("Warm-up: %d of %d points collected, projecting the current %s band.",
			len(points), p.cfg.MinPoints, current)
		return h
	}

	short := points
	if len(points) > p.cfg.ShortWindow {
		short = points[len(points)-p.cfg.ShortWindow:]
	}
	h.TrendShort = p.trend(short)
	h.TrendLong = p.trend(points)

	bothRising := h.TrendShort.Direction == domain.TrendRising && h.TrendLong.Direction == domain.TrendRising
	switch {
	case current.IsStressed() && bothRising:
		h.ProjectedBand = current.Escalate()
		h.Comment = fmt.Sprintf("Fees %s and still rising on both windows, projecting %s.", current, h.ProjectedBand)
	case bothRising:
		h.Comment = fmt.Sprintf("Fees rising from a %s base, no escalation projected yet.", current)
	case h.TrendShort.Direction == domain.TrendFalling:
		h.Comment = fmt.Sprintf("Fees easing; holding the %s band until classification drops.", current)
	default:
		h.Comment = fmt.Sprintf("Mixed or flat trends, holding the %s band.", current)
	}
	return h
}

// trend computes delta(median_fee) / delta(seconds) between the window ends.
func (p *Predictor) trend(series []domain.HistoryPoint) domain.Trend {
	if len(series) < 2 {
		return domain.Trend{Direction: domain.TrendFlat}
	}
	first, last := series[0], series[len(series)-1]
	dt := last.Timestamp.Sub(first.Timestamp).Seconds()
	if dt < minDT {
		dt = minDT
	}
	slope := float64(last.MedianFee-first.MedianFee) / dt

	dir := domain.TrendFlat
	switch {
	case slope > p.cfg.Epsilon:
		dir = domain.TrendRising
	case slope < -p.cfg.Epsilon:
		dir = domain.TrendFalling
	}
	return domain.Trend{Direction: dir, Slope: slope}
}
