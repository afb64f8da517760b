// Package worker consumes expense events from the queue and turns them into
// durable audit records.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"outlay/internal/amqp"
	"outlay/internal/log"
	"outlay/internal/storage"
)

// AuditRecorder is the slice of the storage layer the worker writes to.
type AuditRecorder interface {
	InsertAuditEvent(ctx context.Context, ev storage.AuditEvent) error
}

// AuditWorker appends one audit row per consumed expense event. Insertion is
// idempotent on the event id, so redelivered messages do not duplicate rows.
type AuditWorker struct {
	recorder AuditRecorder
	logger   *log.Logger
}

func NewAuditWorker(recorder AuditRecorder) *AuditWorker {
	return &AuditWorker{
		recorder: recorder,
		logger:   log.New(log.ComponentWorker, slog.LevelInfo),
	}
}

// HandleExpenseEvent records one event. An error tells the consumer to nack
// and requeue the delivery.
func (w *AuditWorker) HandleExpenseEvent(ctx context.Context, msg *amqp.ExpenseEventMessage) error {
	if msg.EventID == "" {
		return fmt.Errorf("event without id")
	}

	err := w.recorder.InsertAuditEvent(ctx, storage.AuditEvent{
		EventID:    msg.EventID,
		UserID:     msg.UserID,
		ExpenseID:  msg.ExpenseID,
		Action:     msg.Action,
		OccurredAt: msg.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	w.logger.InfoContext(ctx, "recorded audit event",
		log.FieldEventID, msg.EventID,
		log.FieldUserID, msg.UserID,
		log.FieldExpenseID, msg.ExpenseID,
		log.FieldEventAction, msg.Action)
	return nil
}

// Run consumes events until ctx is cancelled.
func (w *AuditWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeExpenseEvents(ctx, func(msg *amqp.ExpenseEventMessage) error {
		return w.HandleExpenseEvent(ctx, msg)
	})
}
