package telegram

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang-stock-sentiment/internal/tracker/dto"
	"golang-stock-sentiment/pkg/utils"
)

// FormatSweepSummaryForTelegram formats the outcome of a price backfill
// sweep into a Markdown string for Telegram.
func FormatSweepSummaryForTelegram(summary *dto.PriceSweepSummary) string {
	var sb strings.Builder

	sb.WriteString("🧹 *Price Backfill Sweep Report*\n\n")
	sb.WriteString(fmt.Sprintf("📅 Lookback: %d days\n", summary.LookbackDays))
	sb.WriteString(fmt.Sprintf("🔍 Predictions checked: %d\n", summary.PredictionsChecked))
	sb.WriteString(fmt.Sprintf("💰 Prices updated: %d\n", summary.PricesUpdated))
	sb.WriteString(fmt.Sprintf("🏖 Weekend skips: %d | 🎌 Holiday skips: %d\n", summary.WeekendSkips, summary.HolidaySkips))
	sb.WriteString(fmt.Sprintf("⏱ Duration: %s\n", summary.CompletedAt.Sub(summary.StartedAt).Round(time.Second)))

	if len(summary.UpdatedBySymbol) > 0 {
		sb.WriteString("\n📈 *Updates by symbol:*\n")
		symbols := make([]string, 0, len(summary.UpdatedBySymbol))
		for symbol := range summary.UpdatedBySymbol {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		for _, symbol := range symbols {
			sb.WriteString(fmt.Sprintf("• `%s`: %d\n", symbol, summary.UpdatedBySymbol[symbol]))
		}
	}

	if len(summary.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("\n⚠️ *Errors (%d):*\n", len(summary.Errors)))
		shown := summary.Errors
		if len(shown) > 10 {
			shown = shown[:10]
		}
		for _, msg := range shown {
			sb.WriteString(fmt.Sprintf("• %s\n", msg))
		}
		if len(summary.Errors) > 10 {
			sb.WriteString(fmt.Sprintf("_...and %d more_\n", len(summary.Errors)-10))
		}
	} else {
		sb.WriteString("\n✅ No errors\n")
	}

	return sb.String()
}

// FormatPredictionForTelegram formats a freshly created prediction anchor
// into a Markdown string for Telegram.
func FormatPredictionForTelegram(prediction *dto.PredictionResponse) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📰 *New Sentiment Anchor: %s*\n\n", prediction.Symbol))
	sb.WriteString(fmt.Sprintf("📅 %s\n", prediction.DateTime.Format(utils.DateLayout)))
	sb.WriteString(fmt.Sprintf("😊 Positive: %d | 😟 Negative: %d | 😐 Neutral: %d\n",
		prediction.PositiveCount, prediction.NegativeCount, prediction.NeutralCount))

	if prediction.StockValue != nil {
		sb.WriteString(fmt.Sprintf("💵 Anchor price: $%.2f\n", *prediction.StockValue))
	} else {
		sb.WriteString("💵 Anchor price: _pending_\n")
	}
	if prediction.ArticleCount > 0 {
		sb.WriteString(fmt.Sprintf("🗞 Articles classified: %d\n", prediction.ArticleCount))
	}

	return sb.String()
}
