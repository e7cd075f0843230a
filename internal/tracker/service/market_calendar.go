package service

import (
	"context"
	"time"

	"golang-stock-sentiment/internal/tracker/repository"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/utils"
)

// DayStatus describes why a date is or is not a trading day.
type DayStatus struct {
	IsTradingDay bool
	IsWeekend    bool
	IsHoliday    bool
	HolidayName  string
}

// MarketCalendarService determines whether the market is open on a given
// date.
type MarketCalendarService interface {
	Check(ctx context.Context, date time.Time) DayStatus
}

// NewMarketCalendarService creates a new market calendar service.
func NewMarketCalendarService(finnhubRepo repository.FinnhubRepository, log *logger.Logger) MarketCalendarService {
	return &marketCalendarService{
		finnhubRepo: finnhubRepo,
		logger:      log,
	}
}

type marketCalendarService struct {
	finnhubRepo repository.FinnhubRepository
	logger      *logger.Logger
}

// Check classifies a date as weekend, holiday, or trading day. A holiday
// counts only when the market is closed for the whole day; shortened
// sessions are trading days. Holiday lookup failures fail open so a
// calendar outage cannot block ledger writes.
func (s *marketCalendarService) Check(ctx context.Context, date time.Time) DayStatus {
	if utils.IsWeekend(date) {
		return DayStatus{IsWeekend: true}
	}

	holidays, err := s.finnhubRepo.GetMarketHolidays(ctx)
	if err != nil {
		s.logger.Warn("Holiday lookup failed, treating date as a trading day",
			logger.ErrorField(err),
			logger.StringField("date", date.Format(utils.DateLayout)),
		)
		return DayStatus{IsTradingDay: true}
	}

	dateStr := date.Format(utils.DateLayout)
	for _, holiday := range holidays {
		if holiday.AtDate == dateStr && holiday.FullDayClosed() {
			return DayStatus{IsHoliday: true, HolidayName: holiday.EventName}
		}
	}

	return DayStatus{IsTradingDay: true}
}
