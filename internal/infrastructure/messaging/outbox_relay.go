package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/novabank/credit-engine/pkg/events"
	pkgkafka "github.com/novabank/credit-engine/pkg/kafka"
)

const (
	defaultRelayInterval = time.Second
	relayBatchSize       = 100
)

// producer is the slice of pkg/kafka.Producer the relay needs.
type producer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// OutboxRelay drains the event outbox into a Kafka topic. Messages are keyed
// by aggregate ID so per-aggregate ordering holds; entries stay unpublished
// until the broker acknowledges them, so delivery is at-least-once.
type OutboxRelay struct {
	outbox   events.OutboxRepository
	producer producer
	topic    string
	interval time.Duration
	logger   *slog.Logger
}

// NewOutboxRelay creates a relay. A non-positive interval falls back to the
// default.
func NewOutboxRelay(
	outbox events.OutboxRepository,
	producer producer,
	topic string,
	interval time.Duration,
	logger *slog.Logger,
) *OutboxRelay {
	if interval <= 0 {
		interval = defaultRelayInterval
	}
	return &OutboxRelay{
		outbox:   outbox,
		producer: producer,
		topic:    topic,
		interval: interval,
		logger:   logger,
	}
}

// Run polls the outbox until ctx is cancelled. Delivery failures are logged
// and retried on the next tick; they never stop the loop.
func (r *OutboxRelay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("outbox relay started", "topic", r.topic, "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if n, err := r.RelayOnce(ctx); err != nil {
				r.logger.WarnContext(ctx, "outbox relay pass failed", "error", err)
			} else if n > 0 {
				r.logger.DebugContext(ctx, "relayed outbox entries", "count", n)
			}
		}
	}
}

// RelayOnce publishes one batch of unpublished entries and returns how many
// were delivered.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (int, error) {
	entries, err := r.outbox.FetchUnpublished(ctx, relayBatchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch unpublished: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	messages := make([]pkgkafka.Message, 0, len(entries))
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, pkgkafka.Message{
			Key:   []byte(e.AggregateID),
			Value: e.Payload,
			Headers: map[string]string{
				"event_type": e.EventType,
				"event_id":   e.ID,
			},
		})
		ids = append(ids, e.ID)
	}

	if err := r.producer.Publish(ctx, r.topic, messages...); err != nil {
		return 0, fmt.Errorf("publish to topic %s: %w", r.topic, err)
	}

	if err := r.outbox.MarkPublished(ctx, ids); err != nil {
		// The broker already has the batch; the next pass re-sends it.
		// Consumers must tolerate duplicates.
		return 0, fmt.Errorf("mark published: %w", err)
	}
	return len(entries), nil
}
