package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang-stock-sentiment/internal/tracker/dto"
	"golang-stock-sentiment/pkg/logger"

	"github.com/mmcdole/gofeed"
)

// RSSNewsRepository is the Google News RSS fallback source, used when the
// primary news provider returns no articles for a symbol.
type RSSNewsRepository interface {
	GetCompanyNews(ctx context.Context, symbol string, limit int) ([]dto.NewsItem, error)
}

type rssNewsRepository struct {
	log *logger.Logger
}

// NewRSSNewsRepository creates a new Google News RSS repository.
func NewRSSNewsRepository(log *logger.Logger) RSSNewsRepository {
	return &rssNewsRepository{log: log}
}

// GetCompanyNews fetches up to limit recent articles mentioning the symbol.
func (r *rssNewsRepository) GetCompanyNews(ctx context.Context, symbol string, limit int) ([]dto.NewsItem, error) {
	feedURL := fmt.Sprintf("https://news.google.com/rss/search?q=%s+stock&hl=en-US&gl=US&ceid=US:en", strings.ToUpper(symbol))

	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}

	items := make([]dto.NewsItem, 0, limit)
	for _, item := range feed.Items {
		if limit > 0 && len(items) >= limit {
			break
		}
		if item.Title == "" || item.Link == "" {
			continue
		}

		var published int64
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.Unix()
		} else {
			published = time.Now().Unix()
		}

		source := ""
		if item.Custom != nil {
			source = item.Custom["source"]
		}

		items = append(items, dto.NewsItem{
			Headline: item.Title,
			Summary:  strings.TrimSpace(item.Description),
			URL:      item.Link,
			Datetime: published,
			Source:   source,
		})
	}

	r.log.Info("Fetched RSS fallback news",
		logger.StringField("symbol", symbol),
		logger.IntField("count", len(items)),
	)

	return items, nil
}
