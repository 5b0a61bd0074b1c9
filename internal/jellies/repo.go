package jellies

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dreamcandylab/candylab-backend/pkg/db/models"
)

// Repository encapsulates jelly persistence.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateTx(tx *gorm.DB, jelly *models.Jelly) error {
	if jelly.ID == uuid.Nil {
		jelly.ID = uuid.New()
	}
	return tx.Create(jelly).Error
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Jelly, error) {
	var jelly models.Jelly
	if err := r.db.WithContext(ctx).First(&jelly, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &jelly, nil
}

func (r *Repository) ListLatest(ctx context.Context) ([]models.Jelly, error) {
	var rows []models.Jelly
	err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&rows).Error
	return rows, err
}

// ListRanking orders by votes, earliest entry first on ties.
func (r *Repository) ListRanking(ctx context.Context) ([]models.Jelly, error) {
	var rows []models.Jelly
	err := r.db.WithContext(ctx).Order("votes DESC").Order("created_at ASC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *Repository) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]models.Jelly, error) {
	var rows []models.Jelly
	err := r.db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// Top returns the ranking leader with at least one vote.
func (r *Repository) Top(ctx context.Context) (*models.Jelly, error) {
	var jelly models.Jelly
	err := r.db.WithContext(ctx).
		Where("votes > 0").
		Order("votes DESC").
		Order("created_at ASC").
		Order("id ASC").
		First(&jelly).Error
	if err != nil {
		return nil, err
	}
	return &jelly, nil
}

func (r *Repository) DeleteTx(tx *gorm.DB, id uuid.UUID) (int64, error) {
	res := tx.Where("id = ?", id).Delete(&models.Jelly{})
	return res.RowsAffected, res.Error
}
