package dto

import (
	"time"
)

// PriceSweepRequest is the payload to trigger a backfill sweep.
type PriceSweepRequest struct {
	LookbackDays int `json:"lookback_days"`
}

// PriceUpdateDetail records one ledger write performed by a sweep.
type PriceUpdateDetail struct {
	Symbol string   `json:"symbol"`
	Date   string   `json:"date"`
	Price  *float64 `json:"price"`
	Status string   `json:"status"`
}

// PriceSweepSummary aggregates the outcome of one backfill sweep. Per-item
// errors are collected here instead of aborting the sweep.
type PriceSweepSummary struct {
	LookbackDays       int                 `json:"lookback_days"`
	PredictionsChecked int                 `json:"predictions_checked"`
	PricesUpdated      int                 `json:"prices_updated"`
	WeekendSkips       int                 `json:"weekend_skips"`
	HolidaySkips       int                 `json:"holiday_skips"`
	UpdatedBySymbol    map[string]int      `json:"updated_by_symbol"`
	Updates            []PriceUpdateDetail `json:"updates"`
	Errors             []string            `json:"errors"`
	StartedAt          time.Time           `json:"started_at"`
	CompletedAt        time.Time           `json:"completed_at"`
}

// ClosingPriceResponse represents one price ledger row.
type ClosingPriceResponse struct {
	Symbol    string   `json:"symbol"`
	Date      string   `json:"date"`
	Price     *float64 `json:"price"`
	IsWeekend bool     `json:"is_weekend"`
	IsHoliday bool     `json:"is_holiday"`
	Status    string   `json:"status"`
}

// LastPriceUpdateResponse reports when the sweep last completed.
type LastPriceUpdateResponse struct {
	UpdatedAt *time.Time `json:"updated_at"`
}
