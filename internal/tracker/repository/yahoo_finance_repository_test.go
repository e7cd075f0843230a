package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang-stock-sentiment/internal/tracker/config"
	"golang-stock-sentiment/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYahooTestRepo(t *testing.T, handler http.HandlerFunc) (YahooFinanceRepository, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.YahooFinance.BaseURL = server.URL
	cfg.YahooFinance.MaxRequestPerMinute = 600

	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return NewYahooFinanceRepository(cfg, log), server
}

func TestGetClosingPrice_ReturnsRoundedClose(t *testing.T) {
	date := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	repo, _ := newYahooTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		fmt.Fprintf(w, `{"chart":{"result":[{"timestamp":[%d],"indicators":{"quote":[{"close":[189.4999]}]}}]}}`, date.Add(20*time.Hour).Unix())
	})

	price, err := repo.GetClosingPrice(context.Background(), "aapl", date)
	require.NoError(t, err)
	assert.Equal(t, 189.50, price)
}

func TestGetClosingPrice_NoBarForDate(t *testing.T) {
	otherDay := time.Date(2025, 5, 9, 0, 0, 0, 0, time.UTC)
	repo, _ := newYahooTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chart":{"result":[{"timestamp":[%d],"indicators":{"quote":[{"close":[188.0]}]}}]}}`, otherDay.Unix())
	})

	_, err := repo.GetClosingPrice(context.Background(), "AAPL", time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestGetClosingPrice_NullCloseSkipped(t *testing.T) {
	date := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	repo, _ := newYahooTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"chart":{"result":[{"timestamp":[%d],"indicators":{"quote":[{"close":[null]}]}}]}}`, date.Unix())
	})

	_, err := repo.GetClosingPrice(context.Background(), "AAPL", date)
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestGetClosingPrice_ChartError(t *testing.T) {
	repo, _ := newYahooTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)
	})

	_, err := repo.GetClosingPrice(context.Background(), "NOPE", time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestGetClosingPrice_NotFoundStatus(t *testing.T) {
	repo, _ := newYahooTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := repo.GetClosingPrice(context.Background(), "NOPE", time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestGetClosingPrice_ServerErrorIsNotUnavailable(t *testing.T) {
	repo, _ := newYahooTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := repo.GetClosingPrice(context.Background(), "AAPL", time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrPriceUnavailable)
}
