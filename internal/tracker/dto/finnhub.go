package dto

// NewsItem is one article from the Finnhub company-news endpoint.
type NewsItem struct {
	Category string `json:"category"`
	Datetime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// QuoteResponse is the Finnhub real-time quote payload.
type QuoteResponse struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	PercentChange float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PreviousClose float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// CompanyProfile is the Finnhub company profile payload (profile2).
type CompanyProfile struct {
	Country          string  `json:"country"`
	Currency         string  `json:"currency"`
	Exchange         string  `json:"exchange"`
	Name             string  `json:"name"`
	Ticker           string  `json:"ticker"`
	IPO              string  `json:"ipo"`
	MarketCap        float64 `json:"marketCapitalization"`
	Industry         string  `json:"finnhubIndustry"`
	WebURL           string  `json:"weburl"`
	Logo             string  `json:"logo"`
	ShareOutstanding float64 `json:"shareOutstanding"`
}

// MarketHoliday is one entry from the Finnhub market-holiday endpoint.
// TradingHour is empty when the market is closed for the whole day and holds
// the shortened session hours otherwise.
type MarketHoliday struct {
	AtDate      string `json:"atDate"`
	EventName   string `json:"eventName"`
	TradingHour string `json:"tradingHour"`
}

// FullDayClosed reports whether the holiday closes the market for the entire
// day. Entries with partial trading hours do not count as closures.
func (h MarketHoliday) FullDayClosed() bool {
	return h.TradingHour == ""
}

// MarketHolidayResponse is the Finnhub market-holiday payload.
type MarketHolidayResponse struct {
	Data     []MarketHoliday `json:"data"`
	Exchange string          `json:"exchange"`
	Timezone string          `json:"timezone"`
}
