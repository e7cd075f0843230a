package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"golang-stock-sentiment/internal/tracker/config"
	"golang-stock-sentiment/internal/tracker/dto"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/utils"

	"golang.org/x/time/rate"
)

// ErrPriceUnavailable indicates Yahoo Finance has no closing price for the
// requested (symbol, date). This is a data gap, not a transport failure:
// callers record it as retryable instead of failing.
var ErrPriceUnavailable = errors.New("closing price unavailable")

// YahooFinanceRepository defines the interface for historical closing price
// lookups.
type YahooFinanceRepository interface {
	GetClosingPrice(ctx context.Context, symbol string, date time.Time) (float64, error)
}

type yahooFinanceRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	httpClient     *http.Client
	requestLimiter *rate.Limiter
}

// NewYahooFinanceRepository creates a new Yahoo Finance chart API
// repository.
func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.YahooFinance.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)
	return &yahooFinanceRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		requestLimiter: requestLimiter,
	}
}

// GetClosingPrice fetches the daily close for (symbol, date) from the v8
// chart API. Returns ErrPriceUnavailable when the API has no bar for that
// date.
func (r *yahooFinanceRepository) GetClosingPrice(ctx context.Context, symbol string, date time.Time) (float64, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	day := utils.DateOnly(date)
	period1 := day.Unix()
	period2 := day.Add(24 * time.Hour).Unix()

	apiURL := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=1d&includePrePost=false",
		r.cfg.YahooFinance.BaseURL, strings.ToUpper(symbol), period1, period2)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	// Yahoo answers 404 with a chart error body for unknown symbols; both
	// mean "no data", not a transport failure.
	if resp.StatusCode == http.StatusNotFound {
		return 0, ErrPriceUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("received non-OK response: %d - %s", resp.StatusCode, string(body))
	}

	var chart dto.YahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return 0, fmt.Errorf("failed to decode response body: %w", err)
	}

	if chart.Chart.Error != nil {
		r.log.Debug("Yahoo chart error",
			logger.StringField("symbol", symbol),
			logger.StringField("code", chart.Chart.Error.Code),
			logger.StringField("description", chart.Chart.Error.Description),
		)
		return 0, ErrPriceUnavailable
	}
	if len(chart.Chart.Result) == 0 {
		return 0, ErrPriceUnavailable
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return 0, ErrPriceUnavailable
	}
	closes := result.Indicators.Quote[0].Close

	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		if utils.SameDate(time.Unix(ts, 0).UTC(), day) {
			return math.Round(*closes[i]*100) / 100, nil
		}
	}

	return 0, ErrPriceUnavailable
}
