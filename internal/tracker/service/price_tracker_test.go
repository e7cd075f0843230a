package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/internal/tracker/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPriceTracker(
	t *testing.T,
	closingPriceRepo *fakeClosingPriceRepo,
	predictionRepo *fakePredictionRepo,
	lastUpdateRepo *fakeLastUpdateRepo,
	yahooRepo *fakeYahooRepo,
	calendar *fakeCalendar,
	now time.Time,
) *priceTrackerService {
	t.Helper()
	cfg := &config.Config{}
	cfg.Tracker.SweepLookbackDays = 31
	svc := NewPriceTrackerService(cfg, newTestLogger(t), closingPriceRepo, predictionRepo, lastUpdateRepo, yahooRepo, calendar, &fakeCompanyService{}, nil).(*priceTrackerService)
	svc.now = func() time.Time { return now }
	return svc
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestResolveAnchorAndFutures_FutureDatesSkipped(t *testing.T) {
	cpRepo := newFakeClosingPriceRepo()
	yahoo := &fakeYahooRepo{prices: map[string]float64{
		priceKey("AAPL", day(2025, 5, 12)): 189.50,
	}}
	now := day(2025, 5, 12)
	svc := newTestPriceTracker(t, cpRepo, &fakePredictionRepo{}, &fakeLastUpdateRepo{}, yahoo, &fakeCalendar{}, now)

	errs := svc.ResolveAnchorAndFutures(context.Background(), "AAPL", day(2025, 5, 12))

	assert.Empty(t, errs)
	// Only the anchor date has passed; the four offsets are still ahead.
	assert.Len(t, cpRepo.records, 1)
	record := cpRepo.records[priceKey("AAPL", day(2025, 5, 12))]
	require.NotNil(t, record)
	require.NotNil(t, record.Price)
	assert.Equal(t, 189.50, *record.Price)
	assert.Equal(t, entity.PriceStatusResolved, record.Status())
}

func TestResolveAnchorAndFutures_WeekendDatesFlaggedWithoutFetch(t *testing.T) {
	cpRepo := newFakeClosingPriceRepo()
	yahoo := &fakeYahooRepo{prices: map[string]float64{
		priceKey("AAPL", day(2025, 5, 9)):  188.00, // Friday anchor
		priceKey("AAPL", day(2025, 5, 12)): 189.50, // Monday, D+3
		priceKey("AAPL", day(2025, 5, 16)): 191.25, // Friday, D+7
	}}
	now := day(2025, 5, 20)
	svc := newTestPriceTracker(t, cpRepo, &fakePredictionRepo{}, &fakeLastUpdateRepo{}, yahoo, &fakeCalendar{}, now)

	errs := svc.ResolveAnchorAndFutures(context.Background(), "AAPL", day(2025, 5, 9))

	assert.Empty(t, errs)
	assert.Len(t, cpRepo.records, 5)

	saturday := cpRepo.records[priceKey("AAPL", day(2025, 5, 10))]
	require.NotNil(t, saturday)
	assert.Nil(t, saturday.Price)
	assert.True(t, saturday.IsWeekend)
	assert.Equal(t, entity.PriceStatusWeekend, saturday.Status())

	sunday := cpRepo.records[priceKey("AAPL", day(2025, 5, 11))]
	require.NotNil(t, sunday)
	assert.Equal(t, entity.PriceStatusWeekend, sunday.Status())

	// Weekend dates never reach the price source.
	assert.Len(t, yahoo.calls, 3)
	assert.NotContains(t, yahoo.calls, priceKey("AAPL", day(2025, 5, 10)))
	assert.NotContains(t, yahoo.calls, priceKey("AAPL", day(2025, 5, 11)))
}

func TestResolveAnchorAndFutures_HolidayFlagged(t *testing.T) {
	cpRepo := newFakeClosingPriceRepo()
	yahoo := &fakeYahooRepo{prices: map[string]float64{
		priceKey("AAPL", day(2025, 12, 24)): 250.00,
		priceKey("AAPL", day(2025, 12, 26)): 251.00,
		priceKey("AAPL", day(2025, 12, 31)): 253.00,
	}}
	calendar := &fakeCalendar{holidays: map[string]string{"2025-12-25": "Christmas Day"}}
	now := day(2026, 1, 5)
	svc := newTestPriceTracker(t, cpRepo, &fakePredictionRepo{}, &fakeLastUpdateRepo{}, yahoo, calendar, now)

	errs := svc.ResolveAnchorAndFutures(context.Background(), "AAPL", day(2025, 12, 24))

	assert.Empty(t, errs)
	holiday := cpRepo.records[priceKey("AAPL", day(2025, 12, 25))]
	require.NotNil(t, holiday)
	assert.Nil(t, holiday.Price)
	assert.True(t, holiday.IsHoliday)
	assert.Equal(t, entity.PriceStatusHoliday, holiday.Status())
	assert.NotContains(t, yahoo.calls, priceKey("AAPL", day(2025, 12, 25)))
}

func TestResolveAnchorAndFutures_UnavailablePriceRecordedAsPending(t *testing.T) {
	cpRepo := newFakeClosingPriceRepo()
	// No prices configured at all, so every trading day is unavailable.
	yahoo := &fakeYahooRepo{}
	now := day(2025, 5, 14)
	svc := newTestPriceTracker(t, cpRepo, &fakePredictionRepo{}, &fakeLastUpdateRepo{}, yahoo, &fakeCalendar{}, now)

	errs := svc.ResolveAnchorAndFutures(context.Background(), "AAPL", day(2025, 5, 13))

	// Unavailable data is a recorded gap, not an error.
	assert.Empty(t, errs)
	record := cpRepo.records[priceKey("AAPL", day(2025, 5, 13))]
	require.NotNil(t, record)
	assert.Nil(t, record.Price)
	assert.False(t, record.IsWeekend)
	assert.False(t, record.IsHoliday)
	assert.Equal(t, entity.PriceStatusPending, record.Status())
	assert.True(t, record.NeedsResolution())
}

func TestResolveAnchorAndFutures_HardErrorLeavesNoRecord(t *testing.T) {
	cpRepo := newFakeClosingPriceRepo()
	yahoo := &fakeYahooRepo{
		errs: map[string]error{
			priceKey("AAPL", day(2025, 5, 13)): errors.New("upstream 500"),
		},
		prices: map[string]float64{
			priceKey("AAPL", day(2025, 5, 12)): 189.50,
		},
	}
	now := day(2025, 5, 13)
	svc := newTestPriceTracker(t, cpRepo, &fakePredictionRepo{}, &fakeLastUpdateRepo{}, yahoo, &fakeCalendar{}, now)

	errs := svc.ResolveAnchorAndFutures(context.Background(), "AAPL", day(2025, 5, 12))

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "2025-05-13")
	// The failed date keeps no row; the anchor still resolved.
	assert.Nil(t, cpRepo.records[priceKey("AAPL", day(2025, 5, 13))])
	assert.NotNil(t, cpRepo.records[priceKey("AAPL", day(2025, 5, 12))])
}

func TestRunBackfillSweep_FillsPendingAndMissingDates(t *testing.T) {
	cpRepo := newFakeClosingPriceRepo()
	// Anchor already resolved, D+1 recorded as a pending gap.
	cpRepo.records[priceKey("AAPL", day(2025, 5, 12))] = &entity.ClosingPrice{
		Symbol: "AAPL", Date: day(2025, 5, 12), Price: floatPtr(189.50),
	}
	cpRepo.records[priceKey("AAPL", day(2025, 5, 13))] = &entity.ClosingPrice{
		Symbol: "AAPL", Date: day(2025, 5, 13),
	}

	yahoo := &fakeYahooRepo{prices: map[string]float64{
		priceKey("AAPL", day(2025, 5, 13)): 190.10,
		priceKey("AAPL", day(2025, 5, 14)): 190.80,
		priceKey("AAPL", day(2025, 5, 15)): 191.40,
		priceKey("AAPL", day(2025, 5, 19)): 193.00,
	}}
	predRepo := &fakePredictionRepo{since: []entity.PredictionSummary{
		{ID: 1, Symbol: "AAPL", DateTime: day(2025, 5, 12)},
	}}
	lastRepo := &fakeLastUpdateRepo{}
	now := day(2025, 5, 20)
	svc := newTestPriceTracker(t, cpRepo, predRepo, lastRepo, yahoo, &fakeCalendar{}, now)

	summary, err := svc.RunBackfillSweep(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 31, summary.LookbackDays)
	assert.Equal(t, 1, summary.PredictionsChecked)
	// Pending D+1 plus the three missing offsets.
	assert.Equal(t, 4, summary.PricesUpdated)
	assert.Equal(t, 4, summary.UpdatedBySymbol["AAPL"])
	assert.Empty(t, summary.Errors)
	assert.Len(t, lastRepo.touched, 1)

	healed := cpRepo.records[priceKey("AAPL", day(2025, 5, 13))]
	require.NotNil(t, healed.Price)
	assert.Equal(t, 190.10, *healed.Price)
	// The already resolved anchor was not re-fetched.
	assert.NotContains(t, yahoo.calls, priceKey("AAPL", day(2025, 5, 12)))
}

func TestRunBackfillSweep_SecondRunIsNoOp(t *testing.T) {
	cpRepo := newFakeClosingPriceRepo()
	yahoo := &fakeYahooRepo{prices: map[string]float64{
		priceKey("AAPL", day(2025, 5, 12)): 189.50,
		priceKey("AAPL", day(2025, 5, 13)): 190.10,
		priceKey("AAPL", day(2025, 5, 14)): 190.80,
		priceKey("AAPL", day(2025, 5, 15)): 191.40,
		priceKey("AAPL", day(2025, 5, 19)): 193.00,
	}}
	predRepo := &fakePredictionRepo{since: []entity.PredictionSummary{
		{ID: 1, Symbol: "AAPL", DateTime: day(2025, 5, 12)},
	}}
	lastRepo := &fakeLastUpdateRepo{}
	now := day(2025, 5, 20)
	svc := newTestPriceTracker(t, cpRepo, predRepo, lastRepo, yahoo, &fakeCalendar{}, now)

	first, err := svc.RunBackfillSweep(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 5, first.PricesUpdated)
	callsAfterFirst := len(yahoo.calls)

	second, err := svc.RunBackfillSweep(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, second.PricesUpdated)
	assert.Equal(t, 0, second.WeekendSkips)
	// Weekend and resolved rows are final, so nothing was re-fetched.
	assert.Len(t, yahoo.calls, callsAfterFirst)
	assert.Len(t, lastRepo.touched, 2)
}

func TestRunBackfillSweep_CountsWeekendAndHolidaySkips(t *testing.T) {
	cpRepo := newFakeClosingPriceRepo()
	yahoo := &fakeYahooRepo{prices: map[string]float64{
		priceKey("MSFT", day(2025, 5, 23)): 430.00, // Friday anchor
		priceKey("MSFT", day(2025, 5, 30)): 433.75, // D+7
	}}
	// Memorial Day closes the Monday after the anchor weekend.
	calendar := &fakeCalendar{holidays: map[string]string{"2025-05-26": "Memorial Day"}}
	predRepo := &fakePredictionRepo{since: []entity.PredictionSummary{
		{ID: 1, Symbol: "MSFT", DateTime: day(2025, 5, 23)},
	}}
	now := day(2025, 6, 2)
	svc := newTestPriceTracker(t, cpRepo, predRepo, &fakeLastUpdateRepo{}, yahoo, calendar, now)

	summary, err := svc.RunBackfillSweep(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 2, summary.PricesUpdated)
	assert.Equal(t, 2, summary.WeekendSkips)
	assert.Equal(t, 1, summary.HolidaySkips)
}

func TestRunBackfillSweep_CollectsErrorsWithoutAborting(t *testing.T) {
	cpRepo := newFakeClosingPriceRepo()
	yahoo := &fakeYahooRepo{
		errs: map[string]error{
			priceKey("AAPL", day(2025, 5, 13)): errors.New("upstream 500"),
		},
		prices: map[string]float64{
			priceKey("AAPL", day(2025, 5, 12)): 189.50,
			priceKey("AAPL", day(2025, 5, 14)): 190.80,
			priceKey("AAPL", day(2025, 5, 15)): 191.40,
			priceKey("AAPL", day(2025, 5, 19)): 193.00,
		},
	}
	predRepo := &fakePredictionRepo{since: []entity.PredictionSummary{
		{ID: 1, Symbol: "AAPL", DateTime: day(2025, 5, 12)},
	}}
	lastRepo := &fakeLastUpdateRepo{}
	now := day(2025, 5, 20)
	svc := newTestPriceTracker(t, cpRepo, predRepo, lastRepo, yahoo, &fakeCalendar{}, now)

	summary, err := svc.RunBackfillSweep(context.Background(), 0)

	require.NoError(t, err)
	assert.Equal(t, 4, summary.PricesUpdated)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "2025-05-13")
	// The marker moves even with per-item errors.
	assert.Len(t, lastRepo.touched, 1)
}

func TestTargetDates(t *testing.T) {
	svc := newTestPriceTracker(t, newFakeClosingPriceRepo(), &fakePredictionRepo{}, &fakeLastUpdateRepo{}, &fakeYahooRepo{}, &fakeCalendar{}, day(2025, 5, 20))

	dates := svc.targetDates(time.Date(2025, 5, 12, 15, 30, 0, 0, time.UTC))

	require.Len(t, dates, 5)
	assert.Equal(t, day(2025, 5, 12), dates[0])
	assert.Equal(t, day(2025, 5, 13), dates[1])
	assert.Equal(t, day(2025, 5, 14), dates[2])
	assert.Equal(t, day(2025, 5, 15), dates[3])
	assert.Equal(t, day(2025, 5, 19), dates[4])
}

func floatPtr(v float64) *float64 {
	return &v
}
