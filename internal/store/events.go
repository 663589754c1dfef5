package store

import (
	"context"

	"github.com/nao1215/ballot/internal/voting"
	"github.com/nao1215/ballot/pkg/event"
)

// EventRepository はeventsテーブルを操作する。
type EventRepository struct {
	db *DB
	q  queryer
}

var _ voting.EventStore = (*EventRepository)(nil)

// Append はイベントを追記する。
func (r *EventRepository) Append(ctx context.Context, ev *event.Event) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	_, err := r.q.ExecContext(ctx, r.db.rebind(`
		INSERT INTO events (id, aggregate_id, aggregate_type, event_type, data, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		ev.ID, ev.AggregateID, string(ev.AggregateType), string(ev.EventType), string(ev.Data), ev.CreatedAt.UTC(),
	)
	return mapError(err)
}

// ListRecent は新しい順に最大limit件のイベントを返す。
func (r *EventRepository) ListRecent(ctx context.Context, limit int) ([]event.Event, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.q.QueryContext(ctx, r.db.rebind(`
		SELECT id, aggregate_id, aggregate_type, event_type, data, created_at
		FROM events ORDER BY seq DESC LIMIT ?`), limit)
	if err != nil {
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	events := []event.Event{}
	for rows.Next() {
		var (
			ev            event.Event
			aggregateType string
			eventType     string
			data          string
			createdAt     timestamp
		)
		if err := rows.Scan(&ev.ID, &ev.AggregateID, &aggregateType, &eventType, &data, &createdAt); err != nil {
			return nil, err
		}
		ev.AggregateType = event.AggregateType(aggregateType)
		ev.EventType = event.Type(eventType)
		ev.Data = []byte(data)
		ev.CreatedAt = createdAt.Time
		events = append(events, ev)
	}
	return events, rows.Err()
}
