package repository

import (
	"context"
	"time"

	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/pkg/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ClosingPriceRepository defines the interface for the price ledger.
type ClosingPriceRepository interface {
	Upsert(ctx context.Context, record *entity.ClosingPrice) error
	Find(ctx context.Context, symbol string, date time.Time) (*entity.ClosingPrice, error)
	FindBySymbolDates(ctx context.Context, symbol string, dates []time.Time) ([]entity.ClosingPrice, error)
}

// NewClosingPriceRepository creates a new GORM-based price ledger repository.
func NewClosingPriceRepository(db *gorm.DB) ClosingPriceRepository {
	return &closingPriceRepository{db: db}
}

type closingPriceRepository struct {
	db *gorm.DB
}

// Upsert writes a ledger row for (symbol, date), updating the existing row
// in place when one exists. A closure flag forces the price to NULL so the
// "price set while market closed" state cannot be stored.
func (r *closingPriceRepository) Upsert(ctx context.Context, record *entity.ClosingPrice) error {
	record.Date = utils.DateOnly(record.Date)
	if record.IsWeekend || record.IsHoliday {
		record.Price = nil
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "is_weekend", "is_holiday", "updated_at"}),
	}).Create(record).Error
}

// Find retrieves the ledger row for (symbol, date), or nil when none exists.
func (r *closingPriceRepository) Find(ctx context.Context, symbol string, date time.Time) (*entity.ClosingPrice, error) {
	var record entity.ClosingPrice
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND date = ?", symbol, utils.DateOnly(date)).
		First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindBySymbolDates retrieves the ledger rows for a symbol across a set of
// dates in one query.
func (r *closingPriceRepository) FindBySymbolDates(ctx context.Context, symbol string, dates []time.Time) ([]entity.ClosingPrice, error) {
	normalized := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		normalized = append(normalized, utils.DateOnly(d))
	}

	var records []entity.ClosingPrice
	err := r.db.WithContext(ctx).
		Where("symbol = ? AND date IN ?", symbol, normalized).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
