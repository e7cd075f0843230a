package entity

import (
	"time"
)

// LastPriceUpdate is a single-row marker recording when the backfill sweep
// last completed.
type LastPriceUpdate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName specifies the table name for the LastPriceUpdate model.
func (LastPriceUpdate) TableName() string {
	return "last_price_update"
}
