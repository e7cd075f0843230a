package repository

import (
	"context"
	"time"

	"golang-stock-sentiment/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LastPriceUpdateRepository manages the single-row sweep completion marker.
type LastPriceUpdateRepository interface {
	Get(ctx context.Context) (*entity.LastPriceUpdate, error)
	Touch(ctx context.Context, at time.Time) error
}

// NewLastPriceUpdateRepository creates a new GORM-based sweep marker
// repository.
func NewLastPriceUpdateRepository(db *gorm.DB) LastPriceUpdateRepository {
	return &lastPriceUpdateRepository{db: db}
}

type lastPriceUpdateRepository struct {
	db *gorm.DB
}

// Get retrieves the marker, or nil when no sweep has completed yet.
func (r *lastPriceUpdateRepository) Get(ctx context.Context) (*entity.LastPriceUpdate, error) {
	var marker entity.LastPriceUpdate
	err := r.db.WithContext(ctx).First(&marker, 1).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &marker, nil
}

// Touch writes the marker atomically, creating the row on first use.
func (r *lastPriceUpdateRepository) Touch(ctx context.Context, at time.Time) error {
	marker := &entity.LastPriceUpdate{ID: 1, UpdatedAt: at}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(marker).Error
}
