package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang-stock-sentiment/internal/entity"
	"golang-stock-sentiment/internal/tracker/config"
	"golang-stock-sentiment/internal/tracker/dto"
	"golang-stock-sentiment/internal/tracker/repository"
	"golang-stock-sentiment/pkg/common"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/utils"

	"gorm.io/datatypes"
)

var (
	// ErrPredictionExists indicates an anchor already exists for the
	// (symbol, calendar date) pair.
	ErrPredictionExists = errors.New("prediction already exists")
	// ErrNoNewsFound indicates the news sources returned zero articles, so
	// no anchor can be created.
	ErrNoNewsFound = errors.New("no news found")
)

// PredictionService creates and lists prediction anchors.
type PredictionService interface {
	CreatePrediction(ctx context.Context, req *dto.CreatePredictionRequest, onProgress dto.ProgressFunc) (*dto.PredictionResponse, error)
	GetAllPredictions(ctx context.Context) ([]*dto.PredictionResponse, error)
	AnalyzeText(ctx context.Context, text string) (*dto.SentimentResult, error)
}

// NewPredictionService creates a new prediction service.
func NewPredictionService(
	cfg *config.Config,
	log *logger.Logger,
	predictionRepo repository.PredictionRepository,
	finnhubRepo repository.FinnhubRepository,
	rssNewsRepo repository.RSSNewsRepository,
	newsContentRepo repository.NewsContentRepository,
	yahooFinanceRepo repository.YahooFinanceRepository,
	aiRepo repository.AIRepository,
	companySvc CompanyService,
	priceTracker PriceTrackerService,
) PredictionService {
	return &predictionService{
		cfg:             cfg,
		logger:          log,
		predictionRepo:  predictionRepo,
		finnhubRepo:     finnhubRepo,
		rssNewsRepo:     rssNewsRepo,
		newsContentRepo: newsContentRepo,
		yahooRepo:       yahooFinanceRepo,
		aiRepo:          aiRepo,
		companySvc:      companySvc,
		priceTracker:    priceTracker,
	}
}

type predictionService struct {
	cfg             *config.Config
	logger          *logger.Logger
	predictionRepo  repository.PredictionRepository
	finnhubRepo     repository.FinnhubRepository
	rssNewsRepo     repository.RSSNewsRepository
	newsContentRepo repository.NewsContentRepository
	yahooRepo       repository.YahooFinanceRepository
	aiRepo          repository.AIRepository
	companySvc      CompanyService
	priceTracker    PriceTrackerService
}

// CreatePrediction fetches news for the symbol, classifies each article,
// stores the aggregated anchor, and kicks off future price resolution.
// Progress events are pushed through onProgress when it is non-nil.
func (s *predictionService) CreatePrediction(ctx context.Context, req *dto.CreatePredictionRequest, onProgress dto.ProgressFunc) (*dto.PredictionResponse, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	localNow := utils.TimeNowIn(s.cfg.App.TimeZone)
	anchorDate := utils.DateOnly(localNow)
	if req.Date != "" {
		parsed, err := utils.ParseDate(req.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", req.Date, err)
		}
		anchorDate = utils.DateOnly(parsed)
	}

	exists, err := s.predictionRepo.ExistsForDate(ctx, symbol, anchorDate)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing prediction: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w for %s on %s", ErrPredictionExists, symbol, anchorDate.Format(utils.DateLayout))
	}

	s.emit(onProgress, dto.ProgressEvent{Stage: dto.ProgressStageStarted, Symbol: symbol})

	articles, err := s.fetchNews(ctx, symbol, anchorDate)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoNewsFound, symbol)
	}

	s.emit(onProgress, dto.ProgressEvent{
		Stage:  dto.ProgressStageNewsFetched,
		Symbol: symbol,
		Total:  len(articles),
	})

	summary, newsEntities, err := s.classifyArticles(ctx, symbol, articles, onProgress)
	if err != nil {
		return nil, err
	}

	s.emit(onProgress, dto.ProgressEvent{
		Stage:   dto.ProgressStageAggregated,
		Symbol:  symbol,
		Total:   len(newsEntities),
		Message: fmt.Sprintf("%d positive, %d negative, %d neutral", summary.PositiveCount, summary.NegativeCount, summary.NeutralCount),
	})

	stockValue, dateTime := s.resolveAnchorPrice(ctx, symbol, anchorDate, localNow)
	s.emit(onProgress, dto.ProgressEvent{Stage: dto.ProgressStagePriceResolved, Symbol: symbol})

	if err := s.companySvc.EnsureCompany(ctx, symbol); err != nil {
		s.logger.Warn("Failed to ensure company row", logger.ErrorField(err), logger.StringField("symbol", symbol))
	}

	prediction := &entity.PredictionSummary{
		Symbol:              symbol,
		DateTime:            dateTime,
		PositiveCount:       summary.PositiveCount,
		NegativeCount:       summary.NegativeCount,
		NeutralCount:        summary.NeutralCount,
		PositiveProbability: summary.PositiveProbability,
		NegativeProbability: summary.NegativeProbability,
		NeutralProbability:  summary.NeutralProbability,
		StockValue:          stockValue,
		NewsArticles:        newsEntities,
	}
	if err := s.predictionRepo.Create(ctx, prediction); err != nil {
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}

	s.emit(onProgress, dto.ProgressEvent{Stage: dto.ProgressStageSaved, Symbol: symbol})

	// Future offsets are best effort; the backfill sweep retries anything
	// that fails here.
	if errs := s.priceTracker.ResolveAnchorAndFutures(ctx, symbol, anchorDate); len(errs) > 0 {
		s.logger.Warn("Some future prices could not be resolved",
			logger.StringField("symbol", symbol),
			logger.IntField("failed", len(errs)),
		)
	}

	return &dto.PredictionResponse{
		ID:                  prediction.ID,
		Symbol:              prediction.Symbol,
		DateTime:            prediction.DateTime,
		PositiveCount:       prediction.PositiveCount,
		NegativeCount:       prediction.NegativeCount,
		NeutralCount:        prediction.NeutralCount,
		PositiveProbability: prediction.PositiveProbability,
		NegativeProbability: prediction.NegativeProbability,
		NeutralProbability:  prediction.NeutralProbability,
		StockValue:          prediction.StockValue,
		ArticleCount:        len(newsEntities),
	}, nil
}

// GetAllPredictions retrieves all prediction anchors with company names.
func (s *predictionService) GetAllPredictions(ctx context.Context) ([]*dto.PredictionResponse, error) {
	rows, err := s.predictionRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.PredictionResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, &dto.PredictionResponse{
			ID:                  row.ID,
			Symbol:              row.Symbol,
			Name:                row.Name,
			DateTime:            row.DateTime,
			PositiveCount:       row.PositiveCount,
			NegativeCount:       row.NegativeCount,
			NeutralCount:        row.NeutralCount,
			PositiveProbability: row.PositiveProbability,
			NegativeProbability: row.NegativeProbability,
			NeutralProbability:  row.NeutralProbability,
			StockValue:          row.StockValue,
		})
	}
	return responses, nil
}

// AnalyzeText classifies a single piece of text without persisting
// anything.
func (s *predictionService) AnalyzeText(ctx context.Context, text string) (*dto.SentimentResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text is required")
	}
	return s.aiRepo.ClassifySentiment(ctx, text)
}

func (s *predictionService) fetchNews(ctx context.Context, symbol string, anchorDate time.Time) ([]dto.NewsItem, error) {
	lookback := s.cfg.Finnhub.NewsLookbackDays
	if lookback <= 0 {
		lookback = 2
	}
	from := anchorDate.AddDate(0, 0, -lookback)

	articles, err := s.finnhubRepo.GetCompanyNews(ctx, symbol, from, anchorDate)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news: %w", err)
	}

	if len(articles) == 0 && s.cfg.Tracker.RSSFallback {
		s.logger.Info("No Finnhub news, trying RSS fallback", logger.StringField("symbol", symbol))
		articles, err = s.rssNewsRepo.GetCompanyNews(ctx, symbol, 20)
		if err != nil {
			s.logger.Warn("RSS fallback failed", logger.ErrorField(err), logger.StringField("symbol", symbol))
			return nil, nil
		}
	}
	return articles, nil
}

type sentimentAggregate struct {
	PositiveCount       int
	NegativeCount       int
	NeutralCount        int
	PositiveProbability float64
	NegativeProbability float64
	NeutralProbability  float64
}

// classifyArticles runs the classification loop. Individual article
// failures are skipped; the loop fails only when no article could be
// classified at all.
func (s *predictionService) classifyArticles(ctx context.Context, symbol string, articles []dto.NewsItem, onProgress dto.ProgressFunc) (*sentimentAggregate, []entity.ClassifiedNews, error) {
	var (
		aggregate    sentimentAggregate
		newsEntities []entity.ClassifiedNews
	)

	for i, article := range articles {
		text := strings.TrimSpace(article.Summary)
		if text == "" && article.URL != "" {
			extracted, err := s.newsContentRepo.Extract(ctx, article.URL)
			if err != nil {
				s.logger.Debug("Article content extraction failed, using headline",
					logger.ErrorField(err),
					logger.StringField("url", article.URL),
				)
			} else {
				text = extracted
			}
		}
		if text == "" {
			text = article.Headline
		}
		if text == "" {
			continue
		}

		result, err := s.aiRepo.ClassifySentiment(ctx, text)
		if err != nil {
			s.logger.Error("Failed to classify article",
				logger.ErrorField(err),
				logger.StringField("symbol", symbol),
				logger.StringField("headline", article.Headline),
			)
			continue
		}

		switch result.Sentiment {
		case common.SentimentPositive:
			aggregate.PositiveCount++
		case common.SentimentNegative:
			aggregate.NegativeCount++
		case common.SentimentNeutral:
			aggregate.NeutralCount++
		}
		aggregate.PositiveProbability += result.Probabilities[common.SentimentPositive]
		aggregate.NegativeProbability += result.Probabilities[common.SentimentNegative]
		aggregate.NeutralProbability += result.Probabilities[common.SentimentNeutral]

		probabilities, _ := json.Marshal(result.Probabilities)
		newsEntities = append(newsEntities, entity.ClassifiedNews{
			Title:           article.Headline,
			URL:             article.URL,
			DateTime:        time.Unix(article.Datetime, 0).UTC(),
			Classification:  result.Sentiment,
			ConfidenceScore: result.Probabilities[result.Sentiment],
			Probabilities:   datatypes.JSON(probabilities),
			KeyTopics:       result.KeyTopics,
		})

		s.emit(onProgress, dto.ProgressEvent{
			Stage:     dto.ProgressStageClassified,
			Symbol:    symbol,
			Index:     i + 1,
			Total:     len(articles),
			Headline:  article.Headline,
			Sentiment: result.Sentiment,
		})
	}

	if len(newsEntities) == 0 {
		return nil, nil, fmt.Errorf("classification failed for all %d articles of %s", len(articles), symbol)
	}
	return &aggregate, newsEntities, nil
}

// resolveAnchorPrice resolves the anchor-date price: the live quote for a
// today anchor, the historical close otherwise. Failures leave the value
// nil for the sweep to heal.
func (s *predictionService) resolveAnchorPrice(ctx context.Context, symbol string, anchorDate time.Time, localNow time.Time) (*float64, time.Time) {
	if utils.SameDate(anchorDate, localNow) {
		dateTime := time.Date(
			anchorDate.Year(), anchorDate.Month(), anchorDate.Day(),
			localNow.Hour(), localNow.Minute(), localNow.Second(), 0, time.UTC,
		)
		quote, err := s.finnhubRepo.GetQuote(ctx, symbol)
		if err != nil {
			s.logger.Warn("Failed to fetch current quote", logger.ErrorField(err), logger.StringField("symbol", symbol))
			return nil, dateTime
		}
		return utils.ToPointer(quote.Current), dateTime
	}

	dateTime := utils.EndOfDay(anchorDate)
	price, err := s.yahooRepo.GetClosingPrice(ctx, symbol, anchorDate)
	if err != nil {
		if !errors.Is(err, repository.ErrPriceUnavailable) {
			s.logger.Warn("Failed to fetch anchor closing price", logger.ErrorField(err), logger.StringField("symbol", symbol))
		}
		return nil, dateTime
	}
	return utils.ToPointer(price), dateTime
}

func (s *predictionService) emit(onProgress dto.ProgressFunc, event dto.ProgressEvent) {
	if onProgress != nil {
		onProgress(event)
	}
}
