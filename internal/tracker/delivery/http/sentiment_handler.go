package http

import (
	"net/http"

	"golang-stock-sentiment/internal/tracker/dto"
	"golang-stock-sentiment/internal/tracker/service"
	"golang-stock-sentiment/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SentimentHandler handles ad hoc sentiment analysis requests.
type SentimentHandler struct {
	predictionService service.PredictionService
	logger            *logger.Logger
}

// NewSentimentHandler creates a new SentimentHandler.
func NewSentimentHandler(predictionService service.PredictionService, logger *logger.Logger) *SentimentHandler {
	return &SentimentHandler{predictionService: predictionService, logger: logger}
}

// RegisterRoutes registers the sentiment routes to the Echo group.
func (h *SentimentHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/analyze", h.Analyze)
}

// Analyze godoc
// @Summary Classify a piece of text
// @Description Classify arbitrary financial text into Positive, Negative or Neutral without persisting anything
// @Tags sentiment
// @Accept  json
// @Produce  json
// @Param   request  body    dto.AnalyzeSentimentRequest   true    "Text to classify"
// @Success 200 {object} dto.SentimentResult
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /sentiment/analyze [post]
func (h *SentimentHandler) Analyze(c echo.Context) error {
	var req dto.AnalyzeSentimentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	if req.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text is required"})
	}

	result, err := h.predictionService.AnalyzeText(c.Request().Context(), req.Text)
	if err != nil {
		h.logger.Error("Failed to analyze text", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to analyze text"})
	}
	return c.JSON(http.StatusOK, result)
}
