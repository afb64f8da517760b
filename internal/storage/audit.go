package storage

import (
	"context"
	"fmt"
	"time"
)

// AuditEvent is one recorded expense mutation, written by the worker from
// consumed queue messages.
type AuditEvent struct {
	ID         int64
	EventID    string
	UserID     int64
	ExpenseID  int64
	Action     string
	OccurredAt time.Time
	RecordedAt time.Time
}

// InsertAuditEvent records a mutation. The unique event id makes the write
// idempotent under queue redelivery; a duplicate is silently skipped.
func (r *Repository) InsertAuditEvent(ctx context.Context, ev AuditEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO audit_events (event_id, user_id, expense_id, action, occurred_at, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.UserID, ev.ExpenseID, ev.Action, ev.OccurredAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns the most recent mutations for one user, newest
// first.
func (r *Repository) ListAuditEvents(ctx context.Context, userID int64, limit int) ([]AuditEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, event_id, user_id, expense_id, action, occurred_at, recorded_at
		FROM audit_events
		WHERE user_id = ?
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	events := make([]AuditEvent, 0)
	for rows.Next() {
		var ev AuditEvent
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.UserID, &ev.ExpenseID, &ev.Action, &ev.OccurredAt, &ev.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
