package service

import (
	"context"
	"errors"
	"time"

	"golang-stock-sentiment/internal/tracker/config"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/telegram"

	"github.com/robfig/cron/v3"
)

// SweepScheduler runs the price backfill sweep on a cron schedule and
// reports the outcome to Telegram when a notifier is configured.
type SweepScheduler struct {
	cfg          *config.Config
	logger       *logger.Logger
	priceTracker PriceTrackerService
	notifier     telegram.Notifier
	cron         *cron.Cron
}

// NewSweepScheduler creates a new SweepScheduler. The notifier may be nil.
func NewSweepScheduler(cfg *config.Config, log *logger.Logger, priceTracker PriceTrackerService, notifier telegram.Notifier) *SweepScheduler {
	return &SweepScheduler{
		cfg:          cfg,
		logger:       log,
		priceTracker: priceTracker,
		notifier:     notifier,
	}
}

// Start registers the cron entry and runs the scheduler until the context
// is canceled.
func (s *SweepScheduler) Start(ctx context.Context) error {
	location, err := time.LoadLocation(s.cfg.App.TimeZone)
	if err != nil {
		s.logger.Warn("Invalid time zone, falling back to UTC", logger.ErrorField(err), logger.StringField("time_zone", s.cfg.App.TimeZone))
		location = time.UTC
	}

	s.cron = cron.New(cron.WithLocation(location))
	if _, err := s.cron.AddFunc(s.cfg.Tracker.SweepCron, func() { s.runSweep(ctx) }); err != nil {
		return err
	}

	s.logger.Info("Sweep scheduler started",
		logger.StringField("cron", s.cfg.Tracker.SweepCron),
		logger.StringField("time_zone", location.String()),
	)
	s.cron.Start()

	<-ctx.Done()
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	return nil
}

func (s *SweepScheduler) runSweep(ctx context.Context) {
	summary, err := s.priceTracker.RunBackfillSweep(ctx, s.cfg.Tracker.SweepLookbackDays)
	if err != nil {
		if errors.Is(err, ErrSweepInProgress) {
			s.logger.Info("Skipping scheduled sweep, another sweep is running")
			return
		}
		s.logger.Error("Scheduled price sweep failed", logger.ErrorField(err))
		return
	}

	s.logger.Info("Scheduled price sweep completed",
		logger.IntField("predictions_checked", summary.PredictionsChecked),
		logger.IntField("prices_updated", summary.PricesUpdated),
		logger.IntField("errors", len(summary.Errors)),
	)

	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendMessage(telegram.FormatSweepSummaryForTelegram(summary)); err != nil {
		s.logger.Warn("Failed to send sweep report to Telegram", logger.ErrorField(err))
	}
}
