package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-stock-sentiment/internal/tracker/dto"

	"github.com/stretchr/testify/assert"
)

func TestMarketCalendar_Weekend(t *testing.T) {
	svc := NewMarketCalendarService(&fakeFinnhubRepo{}, newTestLogger(t))

	saturday := time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 5, 18, 0, 0, 0, 0, time.UTC)

	assert.True(t, svc.Check(context.Background(), saturday).IsWeekend)
	assert.True(t, svc.Check(context.Background(), sunday).IsWeekend)
	assert.False(t, svc.Check(context.Background(), saturday).IsTradingDay)
}

func TestMarketCalendar_FullDayHoliday(t *testing.T) {
	finnhub := &fakeFinnhubRepo{
		holidays: []dto.MarketHoliday{
			{AtDate: "2025-12-25", EventName: "Christmas Day", TradingHour: ""},
		},
	}
	svc := NewMarketCalendarService(finnhub, newTestLogger(t))

	status := svc.Check(context.Background(), time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC))
	assert.True(t, status.IsHoliday)
	assert.Equal(t, "Christmas Day", status.HolidayName)
	assert.False(t, status.IsTradingDay)
}

func TestMarketCalendar_PartialTradingDayIsOpen(t *testing.T) {
	finnhub := &fakeFinnhubRepo{
		holidays: []dto.MarketHoliday{
			{AtDate: "2025-12-24", EventName: "Christmas Eve", TradingHour: "09:30-13:00"},
		},
	}
	svc := NewMarketCalendarService(finnhub, newTestLogger(t))

	status := svc.Check(context.Background(), time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC))
	assert.True(t, status.IsTradingDay)
	assert.False(t, status.IsHoliday)
}

func TestMarketCalendar_LookupFailureFailsOpen(t *testing.T) {
	finnhub := &fakeFinnhubRepo{holidaysErr: errors.New("finnhub down")}
	svc := NewMarketCalendarService(finnhub, newTestLogger(t))

	status := svc.Check(context.Background(), time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC))
	assert.True(t, status.IsTradingDay)
	assert.False(t, status.IsHoliday)
}

func TestMarketCalendar_WeekendSkipsHolidayLookup(t *testing.T) {
	finnhub := &fakeFinnhubRepo{holidaysErr: errors.New("should not be called")}
	svc := NewMarketCalendarService(finnhub, newTestLogger(t))

	status := svc.Check(context.Background(), time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC))
	assert.True(t, status.IsWeekend)
}
