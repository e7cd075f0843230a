package dto

import (
	"time"
)

// CreatePredictionRequest is the payload to create a prediction anchor.
// Date is optional and defaults to today.
type CreatePredictionRequest struct {
	Symbol string `json:"symbol"`
	Date   string `json:"date"`
}

// PredictionResponse represents a prediction summary joined with its company
// display name.
type PredictionResponse struct {
	ID                  uint      `json:"id"`
	Symbol              string    `json:"symbol"`
	Name                string    `json:"name"`
	DateTime            time.Time `json:"date_time"`
	PositiveCount       int       `json:"positive_count"`
	NegativeCount       int       `json:"negative_count"`
	NeutralCount        int       `json:"neutral_count"`
	PositiveProbability float64   `json:"positive_probability"`
	NegativeProbability float64   `json:"negative_probability"`
	NeutralProbability  float64   `json:"neutral_probability"`
	StockValue          *float64  `json:"stock_value"`
	ArticleCount        int       `json:"article_count,omitempty"`
}

// Progress stages emitted while a prediction is being created.
const (
	ProgressStageStarted       = "started"
	ProgressStageNewsFetched   = "news_fetched"
	ProgressStageClassified    = "article_classified"
	ProgressStageAggregated    = "aggregated"
	ProgressStagePriceResolved = "price_resolved"
	ProgressStageSaved         = "saved"
)

// ProgressEvent is one incremental notification pushed to the caller during
// prediction creation. Events are ordered and the stream is not cancelable
// once classification has started.
type ProgressEvent struct {
	Stage     string `json:"stage"`
	Symbol    string `json:"symbol"`
	Index     int    `json:"index,omitempty"`
	Total     int    `json:"total,omitempty"`
	Headline  string `json:"headline,omitempty"`
	Sentiment string `json:"sentiment,omitempty"`
	Message   string `json:"message,omitempty"`
}

// ProgressFunc receives progress events; a nil ProgressFunc disables
// streaming.
type ProgressFunc func(event ProgressEvent)
