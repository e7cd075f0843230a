package service

import (
	"context"
	"strings"

	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/internal/tracker/repository"
	"golang-stock-sentiment/pkg/logger"
)

// CompanyService maintains the lazy symbol → display-name cache.
type CompanyService interface {
	EnsureCompany(ctx context.Context, symbol string) error
}

// NewCompanyService creates a new company service.
func NewCompanyService(companyRepo repository.CompanyRepository, finnhubRepo repository.FinnhubRepository, log *logger.Logger) CompanyService {
	return &companyService{
		companyRepo: companyRepo,
		finnhubRepo: finnhubRepo,
		logger:      log,
	}
}

type companyService struct {
	companyRepo repository.CompanyRepository
	finnhubRepo repository.FinnhubRepository
	logger      *logger.Logger
}

// EnsureCompany creates the company row for a symbol on first use, looking
// up the display name from the profile API. A failed name lookup stores an
// empty name rather than blocking the caller; the empty name is corrected
// on a later call.
func (s *companyService) EnsureCompany(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(symbol)

	company, err := s.companyRepo.FindBySymbol(ctx, symbol)
	if err != nil {
		return err
	}

	if company == nil {
		name := s.lookupName(ctx, symbol)
		return s.companyRepo.Create(ctx, &entity.Company{Symbol: symbol, Name: name})
	}

	if company.Name == "" {
		if name := s.lookupName(ctx, symbol); name != "" {
			return s.companyRepo.UpdateName(ctx, symbol, name)
		}
	}

	return nil
}

func (s *companyService) lookupName(ctx context.Context, symbol string) string {
	profile, err := s.finnhubRepo.GetCompanyProfile(ctx, symbol)
	if err != nil {
		s.logger.Warn("Company name lookup failed",
			logger.ErrorField(err),
			logger.StringField("symbol", symbol),
		)
		return ""
	}
	return profile.Name
}
