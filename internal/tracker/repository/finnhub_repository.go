package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-stock-sentiment/internal/tracker/config"
	"golang-stock-sentiment/internal/tracker/dto"
	"golang-stock-sentiment/pkg/common"
	"golang-stock-sentiment/pkg/logger"
	redisPkg "golang-stock-sentiment/pkg/redis"
	"golang-stock-sentiment/pkg/utils"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const holidayCacheKey = "market_holidays"

// FinnhubRepository defines the interface for the Finnhub market data API.
type FinnhubRepository interface {
	GetCompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]dto.NewsItem, error)
	GetQuote(ctx context.Context, symbol string) (*dto.QuoteResponse, error)
	GetCompanyProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error)
	GetMarketHolidays(ctx context.Context) ([]dto.MarketHoliday, error)
}

type finnhubRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
	holidayCache   *cache.Cache
	redisClient    *redisPkg.Client
}

// NewFinnhubRepository creates a new Finnhub API repository. The Redis
// client is optional; without it quotes are fetched uncached.
func NewFinnhubRepository(cfg *config.Config, log *logger.Logger, redisClient *redisPkg.Client) FinnhubRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Finnhub.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	return &finnhubRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		requestLimiter: requestLimiter,
		holidayCache:   cache.New(12*time.Hour, 24*time.Hour),
		redisClient:    redisClient,
	}
}

// GetCompanyNews fetches company news for the window [from, to].
func (r *finnhubRepository) GetCompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]dto.NewsItem, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))
	params.Set("from", from.Format(utils.DateLayout))
	params.Set("to", to.Format(utils.DateLayout))

	var news []dto.NewsItem
	if err := r.get(ctx, "/company-news", params, &news); err != nil {
		return nil, fmt.Errorf("failed to fetch company news: %w", err)
	}
	return news, nil
}

// GetQuote fetches the current quote for a symbol, served from the Redis
// cache when a fresh entry exists.
func (r *finnhubRepository) GetQuote(ctx context.Context, symbol string) (*dto.QuoteResponse, error) {
	cacheKey := fmt.Sprintf(common.RedisKeyQuote, strings.ToUpper(symbol))

	if r.redisClient != nil {
		cached, err := r.redisClient.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var quote dto.QuoteResponse
			if err := json.Unmarshal([]byte(cached), &quote); err == nil {
				return &quote, nil
			}
		} else if err != redis.Nil {
			r.log.Warn("Failed to read quote cache", logger.ErrorField(err), logger.StringField("symbol", symbol))
		}
	}

	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))

	var quote dto.QuoteResponse
	if err := r.get(ctx, "/quote", params, &quote); err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}
	if quote.Current == 0 && quote.Timestamp == 0 {
		return nil, fmt.Errorf("no quote data for symbol %s", symbol)
	}

	if r.redisClient != nil && r.cfg.Tracker.QuoteCacheTTL > 0 {
		if payload, err := json.Marshal(quote); err == nil {
			if err := r.redisClient.Client.Set(ctx, cacheKey, payload, r.cfg.Tracker.QuoteCacheTTL).Err(); err != nil {
				r.log.Warn("Failed to write quote cache", logger.ErrorField(err), logger.StringField("symbol", symbol))
			}
		}
	}

	return &quote, nil
}

// GetCompanyProfile fetches the company profile for a symbol.
func (r *finnhubRepository) GetCompanyProfile(ctx context.Context, symbol string) (*dto.CompanyProfile, error) {
	params := url.Values{}
	params.Set("symbol", strings.ToUpper(symbol))

	var profile dto.CompanyProfile
	if err := r.get(ctx, "/stock/profile2", params, &profile); err != nil {
		return nil, fmt.Errorf("failed to fetch company profile: %w", err)
	}
	return &profile, nil
}

// GetMarketHolidays fetches the holiday calendar for the configured
// exchange. Responses are cached in memory since the calendar changes at
// most a few times a year.
func (r *finnhubRepository) GetMarketHolidays(ctx context.Context) ([]dto.MarketHoliday, error) {
	if cached, found := r.holidayCache.Get(holidayCacheKey); found {
		return cached.([]dto.MarketHoliday), nil
	}

	params := url.Values{}
	params.Set("exchange", r.cfg.Finnhub.Exchange)

	var resp dto.MarketHolidayResponse
	if err := r.get(ctx, "/stock/market-holiday", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch market holidays: %w", err)
	}

	r.holidayCache.Set(holidayCacheKey, resp.Data, cache.DefaultExpiration)
	return resp.Data, nil
}

func (r *finnhubRepository) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for request limit: %w", err)
	}

	params.Set("token", r.cfg.Finnhub.APIKey)
	apiURL := fmt.Sprintf("%s%s?%s", r.cfg.Finnhub.BaseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("received non-OK response: %d - %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
