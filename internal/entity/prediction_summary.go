package entity

import (
	"time"
)

// PredictionSummary is one sentiment-aggregation anchor for a (symbol,
// calendar date) pair. Probability columns hold per-article probability sums,
// so they can exceed 1.0. Rows are immutable once created.
type PredictionSummary struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Symbol   string    `gorm:"index;size:10;not null" json:"symbol"`
	DateTime time.Time `gorm:"not null" json:"date_time"`

	PositiveCount int `gorm:"not null" json:"positive_count"`
	NegativeCount int `gorm:"not null" json:"negative_count"`
	NeutralCount  int `gorm:"not null" json:"neutral_count"`

	PositiveProbability float64 `gorm:"type:numeric(5,2);not null" json:"positive_probability"`
	NegativeProbability float64 `gorm:"type:numeric(5,2);not null" json:"negative_probability"`
	NeutralProbability  float64 `gorm:"type:numeric(5,2);not null" json:"neutral_probability"`

	// StockValue is the resolved price at the anchor date; nil when the
	// price could not be resolved at creation time.
	StockValue *float64 `json:"stock_value"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	NewsArticles []ClassifiedNews `gorm:"many2many:prediction_news;" json:"news_articles,omitempty"`
}

// TableName specifies the table name for the PredictionSummary model.
func (PredictionSummary) TableName() string {
	return "prediction_summaries"
}
