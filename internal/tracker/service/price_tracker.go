package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/internal/tracker/config"
	"golang-stock-sentiment/internal/tracker/dto"
	"golang-stock-sentiment/internal/tracker/repository"
	"golang-stock-sentiment/pkg/common"
	"golang-stock-sentiment/pkg/logger"
	redisPkg "golang-stock-sentiment/pkg/redis"
	"golang-stock-sentiment/pkg/utils"
)

// FutureOffsets are the fixed forward horizons, in calendar days, tracked
// for every prediction anchor.
var FutureOffsets = []int{1, 2, 3, 7}

const defaultSweepLookbackDays = 31

// ErrSweepInProgress indicates another backfill sweep currently holds the
// sweep lock.
var ErrSweepInProgress = errors.New("a price sweep is already running")

// resolveOutcome classifies the result of one per-date resolution step.
type resolveOutcome int

const (
	outcomeSkippedFuture resolveOutcome = iota
	outcomeWeekend
	outcomeHoliday
	outcomeResolved
	outcomePending
)

// PriceTrackerService resolves and records closing prices for prediction
// anchors and their future offsets.
type PriceTrackerService interface {
	ResolveAnchorAndFutures(ctx context.Context, symbol string, anchorDate time.Time) []error
	RunBackfillSweep(ctx context.Context, lookbackDays int) (*dto.PriceSweepSummary, error)
	GetPriceRecord(ctx context.Context, symbol string, date time.Time) (*entity.ClosingPrice, error)
	GetLastSweep(ctx context.Context) (*entity.LastPriceUpdate, error)
}

// NewPriceTrackerService creates a new price tracker service. The Redis
// client guards against overlapping sweeps and may be nil in tests.
func NewPriceTrackerService(
	cfg *config.Config,
	log *logger.Logger,
	closingPriceRepo repository.ClosingPriceRepository,
	predictionRepo repository.PredictionRepository,
	lastUpdateRepo repository.LastPriceUpdateRepository,
	yahooFinanceRepo repository.YahooFinanceRepository,
	calendar MarketCalendarService,
	companySvc CompanyService,
	redisClient *redisPkg.Client,
) PriceTrackerService {
	return &priceTrackerService{
		cfg:              cfg,
		logger:           log,
		closingPriceRepo: closingPriceRepo,
		predictionRepo:   predictionRepo,
		lastUpdateRepo:   lastUpdateRepo,
		yahooFinanceRepo: yahooFinanceRepo,
		calendar:         calendar,
		companySvc:       companySvc,
		redisClient:      redisClient,
		now:              time.Now,
	}
}

type priceTrackerService struct {
	cfg              *config.Config
	logger           *logger.Logger
	closingPriceRepo repository.ClosingPriceRepository
	predictionRepo   repository.PredictionRepository
	lastUpdateRepo   repository.LastPriceUpdateRepository
	yahooFinanceRepo repository.YahooFinanceRepository
	calendar         MarketCalendarService
	companySvc       CompanyService
	redisClient      *redisPkg.Client
	now              func() time.Time
}

// ResolveAnchorAndFutures resolves the closing price for the anchor date
// and each future offset. Failures are collected per date and never abort
// the remaining dates.
func (s *priceTrackerService) ResolveAnchorAndFutures(ctx context.Context, symbol string, anchorDate time.Time) []error {
	var errs []error
	for _, date := range s.targetDates(anchorDate) {
		if _, err := s.resolveDate(ctx, symbol, date); err != nil {
			s.logger.Error("Failed to resolve closing price",
				logger.ErrorField(err),
				logger.StringField("symbol", symbol),
				logger.StringField("date", date.Format(utils.DateLayout)),
			)
			errs = append(errs, fmt.Errorf("%s %s: %w", symbol, date.Format(utils.DateLayout), err))
		}
	}
	return errs
}

// RunBackfillSweep re-attempts price resolution for every prediction inside
// the lookback window. Rows already resolved or flagged as closures are
// skipped, so repeated sweeps converge to zero work.
func (s *priceTrackerService) RunBackfillSweep(ctx context.Context, lookbackDays int) (*dto.PriceSweepSummary, error) {
	if lookbackDays <= 0 {
		lookbackDays = s.cfg.Tracker.SweepLookbackDays
	}
	if lookbackDays <= 0 {
		lookbackDays = defaultSweepLookbackDays
	}

	if err := s.acquireSweepLock(ctx); err != nil {
		return nil, err
	}
	defer s.releaseSweepLock(ctx)

	summary := &dto.PriceSweepSummary{
		LookbackDays:    lookbackDays,
		UpdatedBySymbol: map[string]int{},
		Updates:         []dto.PriceUpdateDetail{},
		Errors:          []string{},
		StartedAt:       s.now(),
	}

	since := utils.DateOnly(s.now()).AddDate(0, 0, -lookbackDays)
	predictions, err := s.predictionRepo.FindSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions for sweep: %w", err)
	}

	for _, prediction := range predictions {
		summary.PredictionsChecked++
		s.sweepPrediction(ctx, &prediction, summary)
	}

	// The marker always moves, even for a sweep full of per-item errors,
	// so monitoring can tell "sweep ran with gaps" from "sweep never ran".
	summary.CompletedAt = s.now()
	if err := s.lastUpdateRepo.Touch(ctx, summary.CompletedAt); err != nil {
		s.logger.Error("Failed to update sweep marker", logger.ErrorField(err))
		summary.Errors = append(summary.Errors, fmt.Sprintf("sweep marker: %s", err))
	}

	s.logger.Info("Backfill sweep completed",
		logger.IntField("predictions_checked", summary.PredictionsChecked),
		logger.IntField("prices_updated", summary.PricesUpdated),
		logger.IntField("weekend_skips", summary.WeekendSkips),
		logger.IntField("holiday_skips", summary.HolidaySkips),
		logger.IntField("errors", len(summary.Errors)),
	)

	return summary, nil
}

// GetPriceRecord retrieves one ledger row, or nil when none exists.
func (s *priceTrackerService) GetPriceRecord(ctx context.Context, symbol string, date time.Time) (*entity.ClosingPrice, error) {
	return s.closingPriceRepo.Find(ctx, symbol, date)
}

// GetLastSweep retrieves the sweep completion marker.
func (s *priceTrackerService) GetLastSweep(ctx context.Context) (*entity.LastPriceUpdate, error) {
	return s.lastUpdateRepo.Get(ctx)
}

func (s *priceTrackerService) sweepPrediction(ctx context.Context, prediction *entity.PredictionSummary, summary *dto.PriceSweepSummary) {
	targets := s.targetDates(prediction.DateTime)

	existing, err := s.closingPriceRepo.FindBySymbolDates(ctx, prediction.Symbol, targets)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", prediction.Symbol, err))
		return
	}
	byDate := make(map[time.Time]*entity.ClosingPrice, len(existing))
	for i := range existing {
		byDate[utils.DateOnly(existing[i].Date)] = &existing[i]
	}

	for _, date := range targets {
		if record, ok := byDate[utils.DateOnly(date)]; ok && !record.NeedsResolution() {
			continue
		}

		outcome, err := s.resolveDate(ctx, prediction.Symbol, date)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s %s: %s", prediction.Symbol, date.Format(utils.DateLayout), err))
			continue
		}

		switch outcome.kind {
		case outcomeWeekend:
			summary.WeekendSkips++
		case outcomeHoliday:
			summary.HolidaySkips++
		case outcomeResolved:
			summary.PricesUpdated++
			summary.UpdatedBySymbol[prediction.Symbol]++
			summary.Updates = append(summary.Updates, dto.PriceUpdateDetail{
				Symbol: prediction.Symbol,
				Date:   date.Format(utils.DateLayout),
				Price:  outcome.price,
				Status: string(entity.PriceStatusResolved),
			})
		}
	}
}

type resolveResult struct {
	kind  resolveOutcome
	price *float64
}

// resolveDate runs the per-date resolution procedure shared by anchor-time
// resolution and the backfill sweep. Hard resolver errors leave any
// existing ledger row untouched.
func (s *priceTrackerService) resolveDate(ctx context.Context, symbol string, date time.Time) (resolveResult, error) {
	today := utils.DateOnly(s.now())
	date = utils.DateOnly(date)

	// Future prices are unknowable; the sweep will pick the date up once
	// it has passed.
	if date.After(today) {
		return resolveResult{kind: outcomeSkippedFuture}, nil
	}

	status := s.calendar.Check(ctx, date)
	if status.IsWeekend || status.IsHoliday {
		record := &entity.ClosingPrice{
			Symbol:    symbol,
			Date:      date,
			IsWeekend: status.IsWeekend,
			IsHoliday: status.IsHoliday,
		}
		if err := s.upsert(ctx, record); err != nil {
			return resolveResult{}, err
		}
		if status.IsWeekend {
			return resolveResult{kind: outcomeWeekend}, nil
		}
		return resolveResult{kind: outcomeHoliday}, nil
	}

	price, err := s.yahooFinanceRepo.GetClosingPrice(ctx, symbol, date)
	if err != nil {
		if errors.Is(err, repository.ErrPriceUnavailable) {
			// Past trading day without data: record the gap so the sweep
			// keeps retrying it.
			record := &entity.ClosingPrice{Symbol: symbol, Date: date}
			if err := s.upsert(ctx, record); err != nil {
				return resolveResult{}, err
			}
			return resolveResult{kind: outcomePending}, nil
		}
		return resolveResult{}, err
	}

	record := &entity.ClosingPrice{
		Symbol: symbol,
		Date:   date,
		Price:  utils.ToPointer(price),
	}
	if err := s.upsert(ctx, record); err != nil {
		return resolveResult{}, err
	}
	return resolveResult{kind: outcomeResolved, price: record.Price}, nil
}

func (s *priceTrackerService) upsert(ctx context.Context, record *entity.ClosingPrice) error {
	if err := s.companySvc.EnsureCompany(ctx, record.Symbol); err != nil {
		// A missing display name must never block the price write.
		s.logger.Warn("Failed to ensure company row",
			logger.ErrorField(err),
			logger.StringField("symbol", record.Symbol),
		)
	}
	return s.closingPriceRepo.Upsert(ctx, record)
}

func (s *priceTrackerService) targetDates(anchor time.Time) []time.Time {
	anchorDate := utils.DateOnly(anchor)
	dates := make([]time.Time, 0, len(FutureOffsets)+1)
	dates = append(dates, anchorDate)
	for _, offset := range FutureOffsets {
		dates = append(dates, anchorDate.AddDate(0, 0, offset))
	}
	return dates
}

func (s *priceTrackerService) acquireSweepLock(ctx context.Context) error {
	if s.redisClient == nil {
		return nil
	}
	ttl := s.cfg.Tracker.SweepLockTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	acquired, err := s.redisClient.Client.SetNX(ctx, common.RedisKeyPriceSweepLock, s.now().Format(time.RFC3339), ttl).Result()
	if err != nil {
		// A lock-store outage should not stop the sweep; overlapping runs
		// are idempotent anyway.
		s.logger.Warn("Failed to acquire sweep lock, continuing without it", logger.ErrorField(err))
		return nil
	}
	if !acquired {
		return ErrSweepInProgress
	}
	return nil
}

func (s *priceTrackerService) releaseSweepLock(ctx context.Context) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Client.Del(ctx, common.RedisKeyPriceSweepLock).Err(); err != nil {
		s.logger.Warn("Failed to release sweep lock", logger.ErrorField(err))
	}
}
