package repository

import (
	"context"
	"time"

	"golang-stock-sentiment/internal/entity"

	"gorm.io/gorm"
)

// PredictionRepository defines the interface for prediction summary data
// operations.
type PredictionRepository interface {
	Create(ctx context.Context, prediction *entity.PredictionSummary) error
	FindAll(ctx context.Context) ([]PredictionWithCompany, error)
	ExistsForDate(ctx context.Context, symbol string, date time.Time) (bool, error)
	FindSince(ctx context.Context, since time.Time) ([]entity.PredictionSummary, error)
}

// PredictionWithCompany is a prediction summary row joined with its company
// display name.
type PredictionWithCompany struct {
	entity.PredictionSummary
	Name string `json:"name"`
}

// NewPredictionRepository creates a new GORM-based prediction repository.
func NewPredictionRepository(db *gorm.DB) PredictionRepository {
	return &predictionRepository{db: db}
}

type predictionRepository struct {
	db *gorm.DB
}

// Create persists a new prediction summary together with its classified news
// articles and join rows. Articles already present (matched by URL) are
// reused instead of duplicated.
func (r *predictionRepository) Create(ctx context.Context, prediction *entity.PredictionSummary) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		articles := prediction.NewsArticles
		prediction.NewsArticles = nil

		if err := tx.Create(prediction).Error; err != nil {
			return err
		}

		for i := range articles {
			article := &articles[i]
			var existing entity.ClassifiedNews
			err := tx.Where("url = ?", article.URL).First(&existing).Error
			switch {
			case err == nil:
				*article = existing
			case err == gorm.ErrRecordNotFound:
				if err := tx.Create(article).Error; err != nil {
					return err
				}
			default:
				return err
			}
		}

		if len(articles) == 0 {
			return nil
		}
		return tx.Model(prediction).Association("NewsArticles").Append(articles)
	})
}

// FindAll retrieves all prediction summaries with their company names,
// newest first.
func (r *predictionRepository) FindAll(ctx context.Context) ([]PredictionWithCompany, error) {
	var rows []PredictionWithCompany
	err := r.db.WithContext(ctx).
		Table("prediction_summaries ps").
		Select("ps.*, c.name").
		Joins("JOIN companies c ON c.symbol = ps.symbol").
		Order("ps.date_time DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExistsForDate reports whether an anchor already exists for the symbol on
// the given calendar date, ignoring time of day.
func (r *predictionRepository) ExistsForDate(ctx context.Context, symbol string, date time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PredictionSummary{}).
		Where("symbol = ? AND DATE(date_time) = DATE(?)", symbol, date).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindSince retrieves all prediction summaries anchored on or after the
// given time.
func (r *predictionRepository) FindSince(ctx context.Context, since time.Time) ([]entity.PredictionSummary, error) {
	var predictions []entity.PredictionSummary
	err := r.db.WithContext(ctx).
		Where("date_time >= ?", since).
		Order("date_time ASC").
		Find(&predictions).Error
	if err != nil {
		return nil, err
	}
	return predictions, nil
}
