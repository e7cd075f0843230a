package entity

import (
	"time"
)

// Company caches the display name for a ticker symbol. Rows are created
// lazily the first time a symbol is seen and only rewritten to fill in a
// name that could not be resolved at creation time.
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Symbol    string    `gorm:"uniqueIndex;size:10;not null" json:"symbol"`
	Name      string    `gorm:"size:100" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Company model.
func (Company) TableName() string {
	return "companies"
}
