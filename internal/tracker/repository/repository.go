package repository

import (
	"context"

	"golang-stock-sentiment/internal/tracker/dto"
)

// AIRepository defines the interface for sentiment classification providers.
type AIRepository interface {
	ClassifySentiment(ctx context.Context, text string) (*dto.SentimentResult, error)
}
