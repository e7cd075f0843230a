package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang-stock-sentiment/internal/tracker/config"
	"golang-stock-sentiment/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFinnhubTestRepo(t *testing.T, handler http.Handler) FinnhubRepository {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.Finnhub.BaseURL = server.URL
	cfg.Finnhub.APIKey = "test-token"
	cfg.Finnhub.Exchange = "US"
	cfg.Finnhub.MaxRequestPerMinute = 600

	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return NewFinnhubRepository(cfg, log, nil)
}

func TestGetCompanyNews(t *testing.T) {
	repo := newFinnhubTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company-news", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "2025-05-10", r.URL.Query().Get("from"))
		assert.Equal(t, "2025-05-12", r.URL.Query().Get("to"))
		assert.Equal(t, "test-token", r.URL.Query().Get("token"))
		fmt.Fprint(w, `[{"headline":"Apple beats estimates","url":"https://news.example/1","summary":"Strong quarter.","datetime":1747036800}]`)
	}))

	from := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 5, 12, 0, 0, 0, 0, time.UTC)
	news, err := repo.GetCompanyNews(context.Background(), "aapl", from, to)

	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "Apple beats estimates", news[0].Headline)
	assert.Equal(t, "https://news.example/1", news[0].URL)
}

func TestGetQuote(t *testing.T) {
	repo := newFinnhubTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		fmt.Fprint(w, `{"c":189.50,"d":1.2,"dp":0.64,"h":190.1,"l":187.9,"o":188.0,"pc":188.3,"t":1747072800}`)
	}))

	quote, err := repo.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 189.50, quote.Current)
}

func TestGetQuote_EmptyQuoteIsError(t *testing.T) {
	repo := newFinnhubTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"c":0,"d":null,"dp":null,"h":0,"l":0,"o":0,"pc":0,"t":0}`)
	}))

	_, err := repo.GetQuote(context.Background(), "NOPE")
	assert.Error(t, err)
}

func TestGetCompanyProfile(t *testing.T) {
	repo := newFinnhubTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/profile2", r.URL.Path)
		fmt.Fprint(w, `{"name":"Apple Inc","ticker":"AAPL","exchange":"NASDAQ"}`)
	}))

	profile, err := repo.GetCompanyProfile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", profile.Name)
}

func TestGetMarketHolidays_CachesResponse(t *testing.T) {
	var requests int64
	repo := newFinnhubTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&requests, 1)
		assert.Equal(t, "/stock/market-holiday", r.URL.Path)
		assert.Equal(t, "US", r.URL.Query().Get("exchange"))
		fmt.Fprint(w, `{"data":[{"atDate":"2025-12-25","eventName":"Christmas Day","tradingHour":""},{"atDate":"2025-12-24","eventName":"Christmas Eve","tradingHour":"09:30-13:00"}],"exchange":"US"}`)
	}))

	first, err := repo.GetMarketHolidays(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.True(t, first[0].FullDayClosed())
	assert.False(t, first[1].FullDayClosed())

	second, err := repo.GetMarketHolidays(context.Background())
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Equal(t, int64(1), atomic.LoadInt64(&requests))
}

func TestFinnhub_NonOKStatus(t *testing.T) {
	repo := newFinnhubTestRepo(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := repo.GetCompanyNews(context.Background(), "AAPL", time.Now().AddDate(0, 0, -2), time.Now())
	assert.Error(t, err)
}
