package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang-stock-sentiment/internal/tracker/dto"
	"golang-stock-sentiment/internal/tracker/service"
	"golang-stock-sentiment/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictionHandler handles HTTP requests for prediction anchors.
type PredictionHandler struct {
	predictionService service.PredictionService
	logger            *logger.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predictionService service.PredictionService, logger *logger.Logger) *PredictionHandler {
	return &PredictionHandler{predictionService: predictionService, logger: logger}
}

// RegisterRoutes registers the prediction routes to the Echo group.
func (h *PredictionHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreatePrediction)
	g.GET("", h.GetAllPredictions)
}

// CreatePrediction godoc
// @Summary Create a prediction anchor
// @Description Fetch news for a symbol, classify sentiment per article and store the aggregated anchor. Pass stream=true to receive progress events as an SSE stream.
// @Tags predictions
// @Accept  json
// @Produce  json
// @Param   prediction  body    dto.CreatePredictionRequest   true    "Symbol and optional date"
// @Param   stream  query   bool    false   "Stream progress as server-sent events"
// @Success 201 {object} dto.PredictionResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /predictions [post]
func (h *PredictionHandler) CreatePrediction(c echo.Context) error {
	var req dto.CreatePredictionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	if req.Symbol == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "symbol is required"})
	}

	if c.QueryParam("stream") == "true" {
		return h.createPredictionStream(c, &req)
	}

	prediction, err := h.predictionService.CreatePrediction(c.Request().Context(), &req, nil)
	if err != nil {
		return c.JSON(predictionErrorStatus(err), echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, prediction)
}

// createPredictionStream runs the creation while pushing progress events to
// the client over a server-sent event stream. The stream ends with either a
// "result" or an "error" event.
func (h *PredictionHandler) createPredictionStream(c echo.Context, req *dto.CreatePredictionRequest) error {
	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)

	flusher, ok := resp.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	writeEvent := func(event string, payload interface{}) {
		data, err := json.Marshal(payload)
		if err != nil {
			h.logger.Error("Failed to marshal progress event", logger.ErrorField(err))
			return
		}
		fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	prediction, err := h.predictionService.CreatePrediction(c.Request().Context(), req, func(event dto.ProgressEvent) {
		writeEvent("progress", event)
	})
	if err != nil {
		writeEvent("error", echo.Map{"error": err.Error()})
		return nil
	}

	writeEvent("result", prediction)
	return nil
}

// GetAllPredictions godoc
// @Summary Get all prediction anchors
// @Description Get all prediction anchors with company names, newest first
// @Tags predictions
// @Produce  json
// @Success 200 {array} dto.PredictionResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /predictions [get]
func (h *PredictionHandler) GetAllPredictions(c echo.Context) error {
	predictions, err := h.predictionService.GetAllPredictions(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get all predictions", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get predictions"})
	}
	return c.JSON(http.StatusOK, predictions)
}

func predictionErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrPredictionExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrNoNewsFound):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
