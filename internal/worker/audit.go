// Package worker consumes record mutation events and appends them to the
// audit table. The HTTP API never waits on this: events are processed out
// of band and a lost event never loses a record.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"spendwise/internal/amqp"
	"spendwise/internal/storage"
)

type AuditStore interface {
	InsertAuditEvent(ctx context.Context, ev storage.AuditEvent) error
}

type AuditWorker struct {
	store AuditStore

	processed atomic.Int64
	failed    atomic.Int64
}

func NewAuditWorker(store AuditStore) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleRecordEvent persists one consumed event. An error requeues the
// delivery, so the insert must stay idempotent-friendly (append-only).
func (w *AuditWorker) HandleRecordEvent(msg *amqp.RecordEventMessage) error {
	ev := storage.AuditEvent{
		RecordID:   msg.RecordID,
		UserID:     msg.UserID,
		RecordType: msg.Type,
		Operation:  msg.Operation,
		OccurredAt: msg.Timestamp,
	}

	if err := w.store.InsertAuditEvent(context.Background(), ev); err != nil {
		w.failed.Add(1)
		return fmt.Errorf("store audit event: %w", err)
	}

	w.processed.Add(1)
	slog.Info("audit event stored",
		"record_id", msg.RecordID,
		"user_id", msg.UserID,
		"operation", msg.Operation)
	return nil
}

// LogSummary reports the running totals since startup.
func (w *AuditWorker) LogSummary(ctx context.Context) {
	slog.InfoContext(ctx, "audit worker summary",
		"events_processed", w.processed.Load(),
		"events_failed", w.failed.Load())
}

func (w *AuditWorker) Processed() int64 {
	return w.processed.Load()
}
