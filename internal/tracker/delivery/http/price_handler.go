package http

import (
	"errors"
	"net/http"

	"golang-stock-sentiment/internal/tracker/dto"
	"golang-stock-sentiment/internal/tracker/service"
	"golang-stock-sentiment/pkg/logger"
	"golang-stock-sentiment/pkg/utils"

	"github.com/labstack/echo/v4"
)

// PriceHandler handles HTTP requests for the price ledger and sweep.
type PriceHandler struct {
	priceTracker service.PriceTrackerService
	logger       *logger.Logger
}

// NewPriceHandler creates a new PriceHandler.
func NewPriceHandler(priceTracker service.PriceTrackerService, logger *logger.Logger) *PriceHandler {
	return &PriceHandler{priceTracker: priceTracker, logger: logger}
}

// RegisterRoutes registers the price routes to the Echo group.
func (h *PriceHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/sweep", h.RunSweep)
	g.GET("/last-update", h.GetLastUpdate)
	g.GET("/:symbol", h.GetPrice)
}

// RunSweep godoc
// @Summary Run a price backfill sweep
// @Description Re-check all pending ledger rows for recent prediction anchors and fill in closes that have since become available. The sweep always returns 200 with per-item errors embedded in the summary.
// @Tags prices
// @Accept  json
// @Produce  json
// @Param   sweep  body    dto.PriceSweepRequest   false   "Optional lookback override"
// @Success 200 {object} dto.PriceSweepSummary
// @Failure 409 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /prices/sweep [post]
func (h *PriceHandler) RunSweep(c echo.Context) error {
	var req dto.PriceSweepRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	summary, err := h.priceTracker.RunBackfillSweep(c.Request().Context(), req.LookbackDays)
	if err != nil {
		if errors.Is(err, service.ErrSweepInProgress) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		h.logger.Error("Price sweep failed", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to run price sweep"})
	}
	return c.JSON(http.StatusOK, summary)
}

// GetPrice godoc
// @Summary Get one price ledger row
// @Description Get the recorded closing price for a symbol on a calendar date
// @Tags prices
// @Produce  json
// @Param   symbol  path    string  true    "Stock symbol"
// @Param   date    query   string  true    "Calendar date (YYYY-MM-DD)"
// @Success 200 {object} dto.ClosingPriceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /prices/{symbol} [get]
func (h *PriceHandler) GetPrice(c echo.Context) error {
	symbol := c.Param("symbol")
	date, err := utils.ParseDate(c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or missing date, expected YYYY-MM-DD"})
	}

	record, err := h.priceTracker.GetPriceRecord(c.Request().Context(), symbol, date)
	if err != nil {
		h.logger.Error("Failed to get price record", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get price record"})
	}
	if record == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No price recorded for this symbol and date"})
	}

	return c.JSON(http.StatusOK, dto.ClosingPriceResponse{
		Symbol:    record.Symbol,
		Date:      record.Date.Format(utils.DateLayout),
		Price:     record.Price,
		IsWeekend: record.IsWeekend,
		IsHoliday: record.IsHoliday,
		Status:    string(record.Status()),
	})
}

// GetLastUpdate godoc
// @Summary Get the last sweep time
// @Description Get the timestamp of the most recent completed backfill sweep
// @Tags prices
// @Produce  json
// @Success 200 {object} dto.LastPriceUpdateResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /prices/last-update [get]
func (h *PriceHandler) GetLastUpdate(c echo.Context) error {
	last, err := h.priceTracker.GetLastSweep(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to get last price update", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to get last price update"})
	}

	resp := dto.LastPriceUpdateResponse{}
	if last != nil {
		resp.UpdatedAt = &last.UpdatedAt
	}
	return c.JSON(http.StatusOK, resp)
}
