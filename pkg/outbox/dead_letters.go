package outbox

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
	pkgerrors "github.com/dreamcandylab/candylab-backend/pkg/errors"
)

// DeadLetters stores events the publisher gave up on.
type DeadLetters struct {
	db *gorm.DB
}

func NewDeadLetters(db *gorm.DB) *DeadLetters {
	return &DeadLetters{db: db}
}

// InsertTx records entry inside the publisher's batch transaction.
func (d *DeadLetters) InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.ErrorMessage != nil {
		msg := clip(*entry.ErrorMessage)
		entry.ErrorMessage = &msg
	}
	return tx.Create(&entry).Error
}

// ByEventID is NOT_FOUND when the event was never dead-lettered.
func (d *DeadLetters) ByEventID(ctx context.Context, eventID uuid.UUID) (*models.OutboxDLQ, error) {
	var entry models.OutboxDLQ
	err := d.db.WithContext(ctx).Where("event_id = ?", eventID).Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dead letter not found")
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Recent lists the newest failures first.
func (d *DeadLetters) Recent(ctx context.Context, limit int) ([]models.OutboxDLQ, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	var out []models.OutboxDLQ
	err := d.db.WithContext(ctx).Order("failed_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// Requeue puts a dead-lettered event back in the publish queue with a fresh
// attempt budget and drops its dead-letter row.
func (d *DeadLetters) Requeue(ctx context.Context, eventID uuid.UUID) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("event_id = ?", eventID).Delete(&models.OutboxDLQ{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "dead letter not found")
		}
		res = tx.Model(&models.OutboxEvent{}).
			Where("id = ?", eventID).
			Updates(map[string]any{"published_at": nil, "attempt_count": 0, "last_error": nil})
		if res.Error != nil {
			return fmt.Errorf("reset outbox event %s: %w", eventID, res.Error)
		}
		if res.RowsAffected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "outbox event not found")
		}
		return nil
	})
}
