package service

import (
	"context"
	"testing"
	"time"

	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/internal/tracker/dto"
	"golang-stock-sentiment/internal/tracker/repository"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/utils"

	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

type fakeFinnhubRepo struct {
	news        []dto.NewsItem
	newsErr     error
	quote       *dto.QuoteResponse
	quoteErr    error
	profile     *dto.CompanyProfile
	profileErr  error
	holidays    []dto.MarketHoliday
	holidaysErr error
}

func (f *fakeFinnhubRepo) GetCompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]dto.NewsItem, error) {
	return f.news, f.newsErr
}

func (f *fakeFinnhubRepo) GetQuote(ctx context.Context, symbol string) (*dto.QuoteResponse, error) {
	return f.quote, f.quoteErr
}

func (f *fakeFinnhubRepo) GetCompanyProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error) {
	return f.profile, f.profileErr
}

func (f *fakeFinnhubRepo) GetMarketHolidays(ctx context.Context) ([]dto.MarketHoliday, error) {
	return f.holidays, f.holidaysErr
}

type fakeClosingPriceRepo struct {
	records   map[string]*entity.ClosingPrice
	upsertErr error
	upserts   int
}

func newFakeClosingPriceRepo() *fakeClosingPriceRepo {
	return &fakeClosingPriceRepo{records: map[string]*entity.ClosingPrice{}}
}

func priceKey(symbol string, date time.Time) string {
	return symbol + "|" + utils.DateOnly(date).Format(utils.DateLayout)
}

func (f *fakeClosingPriceRepo) Upsert(ctx context.Context, record *entity.ClosingPrice) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts++
	stored := *record
	stored.Date = utils.DateOnly(record.Date)
	if stored.IsWeekend || stored.IsHoliday {
		stored.Price = nil
	}
	f.records[priceKey(record.Symbol, record.Date)] = &stored
	return nil
}

func (f *fakeClosingPriceRepo) Find(ctx context.Context, symbol string, date time.Time) (*entity.ClosingPrice, error) {
	return f.records[priceKey(symbol, date)], nil
}

func (f *fakeClosingPriceRepo) FindBySymbolDates(ctx context.Context, symbol string, dates []time.Time) ([]entity.ClosingPrice, error) {
	var out []entity.ClosingPrice
	for _, date := range dates {
		if record, ok := f.records[priceKey(symbol, date)]; ok {
			out = append(out, *record)
		}
	}
	return out, nil
}

type fakePredictionRepo struct {
	created   []*entity.PredictionSummary
	createErr error
	all       []repository.PredictionWithCompany
	exists    bool
	existsErr error
	since     []entity.PredictionSummary
	sinceErr  error
}

func (f *fakePredictionRepo) FindAll(ctx context.Context) ([]repository.PredictionWithCompany, error) {
	return f.all, nil
}

func (f *fakePredictionRepo) Create(ctx context.Context, prediction *entity.PredictionSummary) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, prediction)
	return nil
}

func (f *fakePredictionRepo) ExistsForDate(ctx context.Context, symbol string, date time.Time) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakePredictionRepo) FindSince(ctx context.Context, sinceTime time.Time) ([]entity.PredictionSummary, error) {
	return f.since, f.sinceErr
}

type fakeLastUpdateRepo struct {
	last    *entity.LastPriceUpdate
	touched []time.Time
}

func (f *fakeLastUpdateRepo) Get(ctx context.Context) (*entity.LastPriceUpdate, error) {
	return f.last, nil
}

func (f *fakeLastUpdateRepo) Touch(ctx context.Context, at time.Time) error {
	f.touched = append(f.touched, at)
	f.last = &entity.LastPriceUpdate{ID: 1, UpdatedAt: at}
	return nil
}

type fakeYahooRepo struct {
	prices map[string]float64
	errs   map[string]error
	calls  []string
}

func (f *fakeYahooRepo) GetClosingPrice(ctx context.Context, symbol string, date time.Time) (float64, error) {
	key := priceKey(symbol, date)
	f.calls = append(f.calls, key)
	if err, ok := f.errs[key]; ok {
		return 0, err
	}
	price, ok := f.prices[key]
	if !ok {
		return 0, repository.ErrPriceUnavailable
	}
	return price, nil
}

type fakeCalendar struct {
	holidays map[string]string
}

func (f *fakeCalendar) Check(ctx context.Context, date time.Time) DayStatus {
	if utils.IsWeekend(date) {
		return DayStatus{IsWeekend: true}
	}
	if name, ok := f.holidays[date.Format(utils.DateLayout)]; ok {
		return DayStatus{IsHoliday: true, HolidayName: name}
	}
	return DayStatus{IsTradingDay: true}
}

type fakeCompanyService struct {
	symbols []string
}

func (f *fakeCompanyService) EnsureCompany(ctx context.Context, symbol string) error {
	f.symbols = append(f.symbols, symbol)
	return nil
}

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
	updates   map[string]string
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{companies: map[string]*entity.Company{}, updates: map[string]string{}}
}

func (f *fakeCompanyRepo) FindBySymbol(ctx context.Context, symbol string) (*entity.Company, error) {
	return f.companies[symbol], nil
}

func (f *fakeCompanyRepo) Create(ctx context.Context, company *entity.Company) error {
	f.companies[company.Symbol] = company
	return nil
}

func (f *fakeCompanyRepo) UpdateName(ctx context.Context, symbol, name string) error {
	f.updates[symbol] = name
	if company, ok := f.companies[symbol]; ok {
		company.Name = name
	}
	return nil
}

type fakeAIRepo struct {
	results map[string]*dto.SentimentResult
	errs    map[string]error
	err     error
	calls   int
}

func (f *fakeAIRepo) ClassifySentiment(ctx context.Context, text string) (*dto.SentimentResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if err, ok := f.errs[text]; ok {
		return nil, err
	}
	if result, ok := f.results[text]; ok {
		return result, nil
	}
	return &dto.SentimentResult{
		Sentiment:     "Neutral",
		Probabilities: map[string]float64{"Positive": 0.2, "Negative": 0.2, "Neutral": 0.6},
	}, nil
}

type fakeRSSRepo struct {
	news []dto.NewsItem
	err  error
}

func (f *fakeRSSRepo) GetCompanyNews(ctx context.Context, symbol string, limit int) ([]dto.NewsItem, error) {
	return f.news, f.err
}

type fakeNewsContentRepo struct {
	content map[string]string
	err     error
}

func (f *fakeNewsContentRepo) Extract(ctx context.Context, articleURL string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.content[articleURL], nil
}
