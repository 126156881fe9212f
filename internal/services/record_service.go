// Package services orchestrates the repository and the event stream
// behind the HTTP handlers.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"spendwise/internal/amqp"
	"spendwise/internal/core"
	"spendwise/internal/storage"
)

// EventPublisher is the slice of the AMQP client the service needs.
type EventPublisher interface {
	PublishRecordEvent(ctx context.Context, msg *amqp.RecordEventMessage) error
}

// RecordService performs record CRUD against SQLite and publishes a
// mutation event after each successful write.
type RecordService struct {
	storage   *storage.SQLiteRepository
	publisher EventPublisher
}

func NewRecordService(storage *storage.SQLiteRepository, publisher EventPublisher) *RecordService {
	return &RecordService{storage: storage, publisher: publisher}
}

// List returns the full record set for a user.
func (s *RecordService) List(ctx context.Context, userID int64) ([]core.Record, error) {
	return s.storage.ListRecords(ctx, userID)
}

// Create validates and stores a new record. Category membership in the
// catalog is enforced here, at creation time only.
func (s *RecordService) Create(ctx context.Context, rec core.Record) (int64, error) {
	if err := rec.Validate(); err != nil {
		return 0, err
	}
	id, err := s.storage.CreateRecord(ctx, rec)
	if err != nil {
		return 0, fmt.Errorf("create record: %w", err)
	}
	s.publishEvent(ctx, id, rec.UserID, rec.Type, amqp.OpCreate)
	return id, nil
}

// Update replaces an existing record's editable fields.
func (s *RecordService) Update(ctx context.Context, rec core.Record) error {
	if rec.ID == 0 {
		return core.ErrMissingID
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if err := s.storage.UpdateRecord(ctx, rec); err != nil {
		return err
	}
	s.publishEvent(ctx, rec.ID, rec.UserID, rec.Type, amqp.OpUpdate)
	return nil
}

// Delete removes a record by id and type, returning the owning user id.
func (s *RecordService) Delete(ctx context.Context, id int64, t core.RecordType) (int64, error) {
	userID, err := s.storage.DeleteRecord(ctx, id, t)
	if err != nil {
		return 0, err
	}
	s.publishEvent(ctx, id, userID, t, amqp.OpDelete)
	return userID, nil
}

// publishEvent emits a mutation event. The write already succeeded, so a
// publish failure is logged and swallowed.
func (s *RecordService) publishEvent(ctx context.Context, recordID, userID int64, t core.RecordType, op string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewRecordEventMessage(recordID, userID, t, op)
	if err := s.publisher.PublishRecordEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish record event",
			"record_id", recordID, "operation", op, "error", err)
	}
}

// Close releases the underlying repository.
func (s *RecordService) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}
