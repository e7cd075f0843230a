package config

import (
	"time"

	"golang-stock-sentiment/pkg/config"
)

// Finnhub holds the configuration for the Finnhub API.
type Finnhub struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	Exchange            string `mapstructure:"exchange"`
	NewsLookbackDays    int    `mapstructure:"news_lookback_days"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// YahooFinance holds the configuration for the Yahoo Finance API.
type YahooFinance struct {
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// Telegram holds configuration for the sweep report notifier.
type Telegram struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Tracker holds tracker-specific configuration.
type Tracker struct {
	SweepLookbackDays int           `mapstructure:"sweep_lookback_days"`
	SweepCron         string        `mapstructure:"sweep_cron"`
	SweepLockTTL      time.Duration `mapstructure:"sweep_lock_ttl"`
	QuoteCacheTTL     time.Duration `mapstructure:"quote_cache_ttl"`
	RSSFallback       bool          `mapstructure:"rss_fallback"`
}

// Config holds the full configuration for the tracker service.
type Config struct {
	App          config.App      `mapstructure:"app"`
	Logger       config.Logger   `mapstructure:"logger"`
	Database     config.Database `mapstructure:"database"`
	Redis        config.Redis    `mapstructure:"redis"`
	API          config.API      `mapstructure:"api"`
	Finnhub      Finnhub         `mapstructure:"finnhub"`
	YahooFinance YahooFinance    `mapstructure:"yahoo_finance"`
	Gemini       Gemini          `mapstructure:"gemini"`
	Telegram     Telegram        `mapstructure:"telegram"`
	Tracker      Tracker         `mapstructure:"tracker"`
}

// Load loads the tracker configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
