package repository

import (
	"context"

	"golang-stock-sentiment/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyRepository defines the interface for the company display-name
// cache.
type CompanyRepository interface {
	FindBySymbol(ctx context.Context, symbol string) (*entity.Company, error)
	Create(ctx context.Context, company *entity.Company) error
	UpdateName(ctx context.Context, symbol, name string) error
}

// NewCompanyRepository creates a new GORM-based company repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

type companyRepository struct {
	db *gorm.DB
}

// FindBySymbol retrieves a company by symbol, or nil when unknown.
func (r *companyRepository) FindBySymbol(ctx context.Context, symbol string) (*entity.Company, error) {
	var company entity.Company
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&company).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Create inserts a company row, ignoring a concurrent insert for the same
// symbol.
func (r *companyRepository) Create(ctx context.Context, company *entity.Company) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}},
		DoNothing: true,
	}).Create(company).Error
}

// UpdateName fills in the display name for a symbol. Used to correct rows
// whose name lookup failed at creation time.
func (r *companyRepository) UpdateName(ctx context.Context, symbol, name string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Company{}).
		Where("symbol = ?", symbol).
		Update("name", name).Error
}
