package postgres

import (
	"context"
	"fmt"

	"github.com/novabank/credit-engine/pkg/events"
	pkgpostgres "github.com/novabank/credit-engine/pkg/postgres"
)

// OutboxRepo implements events.OutboxRepository over a pgx Querier. Stored
// through a transaction-scoped Querier, an entry commits atomically with the
// state change that produced its event.
type OutboxRepo struct {
	q pkgpostgres.Querier
}

// NewOutboxRepo creates a repository backed by a pool or transaction.
func NewOutboxRepo(q pkgpostgres.Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Store inserts outbox entries.
func (r *OutboxRepo) Store(ctx context.Context, entries []events.OutboxEntry) error {
	query := `
		INSERT INTO event_outbox (
			id, aggregate_id, aggregate_type, event_type, payload, created_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`
	for _, e := range entries {
		_, err := r.q.Exec(ctx, query,
			e.ID, e.AggregateID, e.AggregateType, e.EventType, e.Payload, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("store outbox entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// FetchUnpublished returns up to batchSize undelivered entries, oldest first.
func (r *OutboxRepo) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at, published_at
		FROM event_outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
	`
	rows, err := r.q.Query(ctx, query, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(
			&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType,
			&e.Payload, &e.CreatedAt, &e.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkPublished stamps the given entries as delivered.
func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.q.Exec(ctx,
		`UPDATE event_outbox SET published_at = now() WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("mark outbox entries published: %w", err)
	}
	return nil
}
