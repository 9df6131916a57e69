// Package outbox moves aggregator events off the dispatch path and hands them
// to the external sinks: the event log, the order archive and the statistics
// mirror.
package outbox

import (
	"context"
	"time"

	"overcooked-live/internal/aggregator"
	"overcooked-live/internal/restaurant"
	"overcooked-live/internal/statistics"

	"go.uber.org/zap"
)

const (
	DefaultBufferSize = 1024
	flushTimeout      = 5 * time.Second
)

// Publisher appends envelopes to the event log.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
}

// Archive stores finished and cancelled orders.
type Archive interface {
	ArchiveOrder(ctx context.Context, env Envelope) error
}

// StatsMirror copies statistics counters to shared storage.
type StatsMirror interface {
	MirrorStats(ctx context.Context, env Envelope) error
}

type StatsProvider interface {
	Snapshot(restaurantID int) ([]statistics.Timeframe, error)
}

type Option func(*Relay)

func WithPublisher(p Publisher) Option {
	return func(r *Relay) { r.publisher = p }
}

func WithArchive(a Archive) Option {
	return func(r *Relay) { r.archive = a }
}

func WithStatsMirror(m StatsMirror) Option {
	return func(r *Relay) { r.mirror = m }
}

func WithClock(now func() time.Time) Option {
	return func(r *Relay) { r.now = now }
}

// Relay is an aggregator subscriber with a bounded queue. Events that do not
// fit are dropped.
type Relay struct {
	logger *zap.Logger
	stats  StatsProvider
	queue  chan Envelope
	now    func() time.Time

	publisher Publisher
	archive   Archive
	mirror    StatsMirror
}

var _ aggregator.Subscriber = (*Relay)(nil)

func NewRelay(logger *zap.Logger, stats StatsProvider, bufferSize int, opts ...Option) *Relay {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	r := &Relay{
		logger: logger.Named("outbox"),
		stats:  stats,
		queue:  make(chan Envelope, bufferSize),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Relay) HandleRestaurantEvent(ev aggregator.Event) {
	if r.publisher == nil && r.archive == nil && r.mirror == nil {
		return
	}

	env, err := newEnvelope(ev, r.now(), r.stats)
	if err != nil {
		r.logger.Error("failed to encode event",
			zap.String("event", ev.Name()),
			zap.Int("restaurant_id", ev.RestaurantID),
			zap.Error(err))
		return
	}

	select {
	case r.queue <- env:
	default:
		r.logger.Warn("outbox full, dropping event",
			zap.String("event", env.Event),
			zap.Int("restaurant_id", env.RestaurantID))
	}
}

// Pending returns the number of queued envelopes.
func (r *Relay) Pending() int {
	return len(r.queue)
}

// Run delivers queued envelopes until ctx is cancelled, then flushes what is
// already queued.
func (r *Relay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.flush(ctx)
			return nil
		case env := <-r.queue:
			r.deliver(ctx, env)
		}
	}
}

func (r *Relay) flush(ctx context.Context) {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
	defer cancel()
	for {
		select {
		case env := <-r.queue:
			r.deliver(flushCtx, env)
		default:
			return
		}
	}
}

func (r *Relay) deliver(ctx context.Context, env Envelope) {
	fields := func(sink string, err error) []zap.Field {
		return []zap.Field{
			zap.String("sink", sink),
			zap.String("event", env.Event),
			zap.Int("restaurant_id", env.RestaurantID),
			zap.Error(err),
		}
	}

	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, env); err != nil {
			r.logger.Error("failed to publish event", fields("kafka", err)...)
		}
	}

	if env.Event == restaurant.EventFinishedOrCancelledOrder && env.Order != nil && r.archive != nil {
		if err := r.archive.ArchiveOrder(ctx, env); err != nil {
			r.logger.Error("failed to archive order", fields("postgres", err)...)
		}
	}

	if env.Stats != nil && r.mirror != nil {
		if err := r.mirror.MirrorStats(ctx, env); err != nil {
			r.logger.Error("failed to mirror statistics", fields("redis", err)...)
		}
	}
}
