package votes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
)

// Repository encapsulates vote persistence and the jelly vote counter.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// IncrementJellyVotes bumps the counter and reports whether the jelly exists.
func (r *Repository) IncrementJellyVotes(tx *gorm.DB, jellyID uuid.UUID) (bool, error) {
	res := tx.Exec(`UPDATE jellies SET votes = votes + 1 WHERE id = ?`, jellyID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// InsertVote records the pair and reports false when it already existed.
func (r *Repository) InsertVote(tx *gorm.DB, userID, jellyID uuid.UUID, at time.Time) (bool, error) {
	res := tx.Exec(
		`INSERT INTO votes (id, user_id, jelly_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, jelly_id) DO NOTHING`,
		uuid.New(), userID, jellyID, at,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) JellyVotes(tx *gorm.DB, jellyID uuid.UUID) (int, error) {
	var count int
	err := tx.Raw(`SELECT votes FROM jellies WHERE id = ?`, jellyID).Scan(&count).Error
	return count, err
}

func (r *Repository) Exists(ctx context.Context, userID, jellyID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("user_id = ? AND jelly_id = ?", userID, jellyID).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) JellyIDsByUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("jelly_id", &ids).Error
	return ids, err
}

// VoterIDsTx lists who voted for the jelly.
func (r *Repository) VoterIDsTx(tx *gorm.DB, jellyID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(&models.Vote{}).Where("jelly_id = ?", jellyID).Pluck("user_id", &ids).Error
	return ids, err
}

func (r *Repository) DeleteByJellyTx(tx *gorm.DB, jellyID uuid.UUID) (int64, error) {
	res := tx.Where("jelly_id = ?", jellyID).Delete(&models.Vote{})
	return res.RowsAffected, res.Error
}
