package service

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fortunamfo/branchbot/internal/domain"
	"github.com/fortunamfo/branchbot/internal/infra/observability"
	"github.com/fortunamfo/branchbot/internal/infra/resilience"
	"github.com/fortunamfo/branchbot/internal/port"
)

// Deliverer pushes one broadcast bundle to a single chat. The bot's
// transport adapter implements it; BlockedError classification lets the
// fan-out tell "user blocked the bot" apart from transient failures.
type Deliverer interface {
	Deliver(ctx context.Context, chatID int64, items []domain.BroadcastItem) error
}

// ProgressFunc receives (delivered, total) ticks during a fan-out.
type ProgressFunc func(done, total int)

// progressStep: how many deliveries between progress ticks.
const progressStep = 50

// Broadcaster fans a bundle of items out to every registered subscriber,
// with bounded concurrency and pacing to stay under flood limits.
type Broadcaster struct {
	subscribers port.SubscriberStore
	deliverer   Deliverer
	bulkhead    *resilience.Bulkhead
	pace        time.Duration
	metrics     *observability.Metrics
	logger      *zap.Logger
}

// NewBroadcaster creates the broadcast service. maxConcurrency caps
// in-flight deliveries; pace is the delay between launches.
func NewBroadcaster(subscribers port.SubscriberStore, deliverer Deliverer, maxConcurrency int, pace time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Broadcaster {
	return &Broadcaster{
		subscribers: subscribers,
		deliverer:   deliverer,
		bulkhead:    resilience.NewBulkhead(maxConcurrency),
		pace:        pace,
		metrics:     metrics,
		logger:      logger,
	}
}

// SubscriberCount reports how many users a broadcast would reach.
func (b *Broadcaster) SubscriberCount(ctx context.Context) (int, error) {
	subs, err := b.subscribers.ListSubscribers(ctx)
	if err != nil {
		return 0, err
	}
	return len(subs), nil
}

// Run delivers items to every subscriber. Individual failures never
// abort the fan-out: blocked users are tallied, everything else is
// logged and counted as blocked too (the subscriber is unreachable
// either way). Cancellation stops launching new deliveries.
func (b *Broadcaster) Run(ctx context.Context, items []domain.BroadcastItem, progress ProgressFunc) (domain.BroadcastResult, error) {
	ctx, span := tracer.Start(ctx, "Broadcaster.Run")
	defer span.End()

	subs, err := b.subscribers.ListSubscribers(ctx)
	if err != nil {
		return domain.BroadcastResult{}, err
	}

	var sent, blocked, done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for _, sub := range subs {
		if err := b.bulkhead.Acquire(gctx); err != nil {
			break
		}

		chatID := sub.TelegramID
		g.Go(func() error {
			defer b.bulkhead.Release()

			if err := b.deliverer.Deliver(gctx, chatID, items); err != nil {
				blocked.Add(1)
				b.metrics.IncrBroadcast("blocked")
				b.logger.Warn("broadcast delivery failed",
					zap.Int64("chat_id", chatID),
					zap.Error(err),
				)
			} else {
				sent.Add(1)
				b.metrics.IncrBroadcast("sent")
			}

			if n := done.Add(1); progress != nil && (n%progressStep == 0 || n == int64(len(subs))) {
				progress(int(n), len(subs))
			}
			return nil
		})

		// Flood-limit pacing between launches.
		select {
		case <-gctx.Done():
		case <-time.After(b.pace):
		}
	}

	_ = g.Wait()

	result := domain.BroadcastResult{
		Total:   len(subs),
		Sent:    int(sent.Load()),
		Blocked: int(blocked.Load()),
	}
	b.logger.Info("broadcast finished",
		zap.Int("total", result.Total),
		zap.Int("sent", result.Sent),
		zap.Int("blocked", result.Blocked),
	)
	return result, ctx.Err()
}
