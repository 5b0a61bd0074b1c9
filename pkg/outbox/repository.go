package outbox

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
)

const maxErrorText = 1024

// Repository is the outbox_events table. Every method runs on the caller's
// transaction.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) InsertTx(tx *gorm.DB, event models.OutboxEvent) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return tx.Create(&event).Error
}

// ClaimBatchTx returns up to limit unpublished rows, oldest first, that have
// fewer than maxAttempts failures. Postgres locks them FOR UPDATE SKIP LOCKED
// so parallel publishers split the queue.
func (r *Repository) ClaimBatchTx(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	q := tx.Where("published_at IS NULL")
	if maxAttempts > 0 {
		q = q.Where("attempt_count < ?", maxAttempts)
	}
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}
	var batch []models.OutboxEvent
	err := q.Order("created_at, id").Limit(limit).Find(&batch).Error
	return batch, err
}

func (r *Repository) MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error {
	return r.update(tx, id, map[string]any{"published_at": r.now().UTC()})
}

// RecordFailureTx bumps the attempt count and keeps the row queued.
func (r *Repository) RecordFailureTx(tx *gorm.DB, id uuid.UUID, cause error) error {
	return r.update(tx, id, map[string]any{
		"attempt_count": gorm.Expr("attempt_count + 1"),
		"last_error":    errorText(cause),
	})
}

// RetireTx takes a dead-lettered row out of the queue for good.
func (r *Repository) RetireTx(tx *gorm.DB, id uuid.UUID, cause error) error {
	return r.update(tx, id, map[string]any{
		"attempt_count": gorm.Expr("attempt_count + 1"),
		"last_error":    errorText(cause),
		"published_at":  r.now().UTC(),
	})
}

func (r *Repository) update(tx *gorm.DB, id uuid.UUID, cols map[string]any) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Model(&models.OutboxEvent{}).Where("id = ?", id).Updates(cols).Error
}

func errorText(err error) *string {
	if err == nil {
		return nil
	}
	msg := clip(err.Error())
	return &msg
}

func clip(msg string) string {
	if len(msg) <= maxErrorText {
		return msg
	}
	return msg[:maxErrorText]
}
