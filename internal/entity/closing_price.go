package entity

import (
	"time"
)

// PriceStatus describes the resolution state of a ClosingPrice row.
type PriceStatus string

const (
	// PriceStatusResolved means a real closing price is stored.
	PriceStatusResolved PriceStatus = "resolved"
	// PriceStatusWeekend means the market was closed for a weekend.
	PriceStatusWeekend PriceStatus = "weekend"
	// PriceStatusHoliday means the market was closed for a holiday.
	PriceStatusHoliday PriceStatus = "holiday"
	// PriceStatusPending means the date is a trading day whose price has
	// not been fetched yet; the backfill sweep retries these.
	PriceStatusPending PriceStatus = "pending"
)

// ClosingPrice is the market closing price ledger row for one (symbol,
// calendar date) pair. Price is NULL for closures and pending rows; the two
// flags distinguish why.
type ClosingPrice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"uniqueIndex:uq_symbol_date;size:10;not null" json:"symbol"`
	Date      time.Time `gorm:"uniqueIndex:uq_symbol_date;type:date;not null" json:"date"`
	Price     *float64  `json:"price"`
	IsWeekend bool      `gorm:"not null;default:false" json:"is_weekend"`
	IsHoliday bool      `gorm:"not null;default:false" json:"is_holiday"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the ClosingPrice model.
func (ClosingPrice) TableName() string {
	return "closing_prices"
}

// Status derives the tri-state resolution status from the stored columns.
func (c *ClosingPrice) Status() PriceStatus {
	switch {
	case c.IsWeekend:
		return PriceStatusWeekend
	case c.IsHoliday:
		return PriceStatusHoliday
	case c.Price != nil:
		return PriceStatusResolved
	default:
		return PriceStatusPending
	}
}

// NeedsResolution reports whether the sweep should retry this row.
func (c *ClosingPrice) NeedsResolution() bool {
	return c.Status() == PriceStatusPending
}
