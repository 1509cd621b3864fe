package outbox

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sherryseats/orders-backend/pkg/db/models"
)

// maxErrorText bounds last_error and error_message columns.
const maxErrorText = 1024

var errNoTx = errors.New("outbox: transaction required")

// Store owns the outbox_events table. Every write method takes the caller's
// transaction so bookkeeping commits together with the change it describes.
type Store struct {
	db *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

// Append inserts a new unpublished row.
func (s *Store) Append(tx *gorm.DB, row models.OutboxEvent) error {
	if tx == nil {
		return errNoTx
	}
	return tx.Create(&row).Error
}

// Claim returns up to limit unpublished rows below the attempt ceiling, oldest
// first. Postgres rows stay locked (SKIP LOCKED) until tx ends.
func (s *Store) Claim(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if tx == nil {
		return nil, errNoTx
	}
	q := tx.Model(&models.OutboxEvent{}).
		Where("published_at IS NULL AND attempt_count < ?", maxAttempts).
		Order("created_at ASC, id ASC").
		Limit(limit)
	if tx.Dialector != nil && tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}
	var rows []models.OutboxEvent
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) MarkPublished(tx *gorm.DB, id uuid.UUID, at time.Time) error {
	return s.update(tx, id, map[string]any{
		"published_at": at.UTC(),
		"last_error":   nil,
	})
}

// RecordFailure bumps attempt_count and keeps the latest cause.
func (s *Store) RecordFailure(tx *gorm.DB, id uuid.UUID, cause error) error {
	return s.update(tx, id, map[string]any{
		"attempt_count": gorm.Expr("attempt_count + 1"),
		"last_error":    errorText(cause),
	})
}

// Park pins attempt_count at ceiling so Claim never returns the row again.
func (s *Store) Park(tx *gorm.DB, id uuid.UUID, cause error, ceiling int) error {
	return s.update(tx, id, map[string]any{
		"attempt_count": ceiling,
		"last_error":    errorText(cause),
	})
}

// Purge deletes rows published before cutoff plus abandoned rows older than
// cutoff that reached minAttempts. tx may be nil.
func (s *Store) Purge(ctx context.Context, tx *gorm.DB, cutoff time.Time, minAttempts int) (int64, error) {
	conn := tx
	if conn == nil {
		conn = s.db
	}
	cutoff = cutoff.UTC()
	res := conn.WithContext(ctx).
		Where("published_at IS NOT NULL AND published_at < ?", cutoff).
		Or("published_at IS NULL AND attempt_count >= ? AND created_at < ?", minAttempts, cutoff).
		Delete(&models.OutboxEvent{})
	return res.RowsAffected, res.Error
}

func (s *Store) update(tx *gorm.DB, id uuid.UUID, fields map[string]any) error {
	if tx == nil {
		return errNoTx
	}
	return tx.Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(fields).Error
}

// DeadLetters owns outbox_dlq, the parking lot for rows that will never publish.
type DeadLetters struct {
	db *gorm.DB
}

func NewDeadLetters(conn *gorm.DB) *DeadLetters {
	return &DeadLetters{db: conn}
}

func (d *DeadLetters) Add(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errNoTx
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.ErrorMessage != nil {
		entry.ErrorMessage = clip(*entry.ErrorMessage)
	}
	return tx.Create(&entry).Error
}

// ByEventID returns nil without error when the row never dead-lettered.
func (d *DeadLetters) ByEventID(ctx context.Context, eventID uuid.UUID) (*models.OutboxDLQ, error) {
	var entry models.OutboxDLQ
	err := d.db.WithContext(ctx).Where("event_id = ?", eventID).Take(&entry).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return &entry, nil
}

func errorText(err error) *string {
	if err == nil {
		return nil
	}
	return clip(err.Error())
}

func clip(msg string) *string {
	if len(msg) > maxErrorText {
		msg = msg[:maxErrorText]
	}
	return &msg
}
