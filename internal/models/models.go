// Package models provides domain models for the research terminal.
package models

import (
	"time"
)

// Interval represents the sampling interval of loaded history.
type Interval string

const (
	Interval1Min   Interval = "1min"
	Interval5Min   Interval = "5min"
	Interval15Min  Interval = "15min"
	Interval30Min  Interval = "30min"
	Interval60Min  Interval = "60min"
	IntervalDaily  Interval = "1440min"
	IntervalWeekly Interval = "week"
)

// IsIntraday reports whether the interval is finer than one day.
func (i Interval) IsIntraday() bool {
	switch i {
	case IntervalDaily, IntervalWeekly:
		return false
	default:
		return true
	}
}

// Candle represents OHLCV data for a time period.
type Candle struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Recommendation is an aggregate buy/sell/neutral verdict from an upstream
// screener, with the vote counts behind it.
type Recommendation struct {
	Interval string  `csv:"interval" json:"interval"`
	Verdict  string  `csv:"verdict" json:"verdict"`
	Buy      int     `csv:"buy" json:"buy"`
	Neutral  int     `csv:"neutral" json:"neutral"`
	Sell     int     `csv:"sell" json:"sell"`
	Score    float64 `csv:"score" json:"score"`
}

// PatternEvent is a chart pattern detected upstream over a candle window.
type PatternEvent struct {
	Name       string    `csv:"pattern" json:"pattern"`
	Status     string    `csv:"status" json:"status"`
	Signal     string    `csv:"signal" json:"signal"`
	StartTime  time.Time `csv:"start_time" json:"start_time"`
	EndTime    time.Time `csv:"end_time" json:"end_time"`
	PriceLow   float64   `csv:"price_low" json:"price_low"`
	PriceHigh  float64   `csv:"price_high" json:"price_high"`
	Confidence float64   `csv:"confidence" json:"confidence"`
}

// GasFees holds current Ethereum gas prices in gwei by priority tier.
type GasFees struct {
	Tier    string  `csv:"tier" json:"tier"`
	Gwei    float64 `csv:"gwei" json:"gwei"`
	WaitMin float64 `csv:"wait_minutes" json:"wait_minutes"`
}

// CoinProfile is a summary of a crypto asset.
type CoinProfile struct {
	ID            string  `csv:"id" json:"id"`
	Symbol        string  `csv:"symbol" json:"symbol"`
	Name          string  `csv:"name" json:"name"`
	Rank          int     `csv:"rank" json:"rank"`
	PriceUSD      float64 `csv:"price_usd" json:"price_usd"`
	MarketCapUSD  float64 `csv:"market_cap_usd" json:"market_cap_usd"`
	Change24hPct  float64 `csv:"change_24h_pct" json:"change_24h_pct"`
	Change7dPct   float64 `csv:"change_7d_pct" json:"change_7d_pct"`
	CircSupply    float64 `csv:"circulating_supply" json:"circulating_supply"`
	AllTimeHigh   float64 `csv:"ath_usd" json:"ath_usd"`
	Description   string  `csv:"description" json:"description"`
	HomepageURL   string  `csv:"homepage" json:"homepage"`
}

// WithdrawalFee is the exchange withdrawal cost for one crypto asset.
type WithdrawalFee struct {
	Symbol     string  `csv:"symbol" json:"symbol"`
	Name       string  `csv:"name" json:"name"`
	LowestFee  float64 `csv:"lowest_fee_usd" json:"lowest_fee_usd"`
	MedianFee  float64 `csv:"median_fee_usd" json:"median_fee_usd"`
	Exchanges  int     `csv:"exchanges" json:"exchanges"`
}

// Message is one social post about a ticker.
type Message struct {
	CreatedAt time.Time `csv:"created_at" json:"created_at"`
	User      string    `csv:"user" json:"user"`
	Sentiment string    `csv:"sentiment" json:"sentiment"`
	Body      string    `csv:"body" json:"body"`
}

// SentimentSummary aggregates bullish/bearish tagging over recent messages.
type SentimentSummary struct {
	Symbol       string  `csv:"symbol" json:"symbol"`
	WatchlistCnt int     `csv:"watchlist_count" json:"watchlist_count"`
	Bullish      int     `csv:"bullish" json:"bullish"`
	Bearish      int     `csv:"bearish" json:"bearish"`
	BullRatio    float64 `csv:"bull_ratio" json:"bull_ratio"`
}

// Filing is one SEC filing reference.
type Filing struct {
	Date        string `csv:"date" json:"date"`
	Form        string `csv:"form" json:"form"`
	Description string `csv:"description" json:"description"`
	URL         string `csv:"url" json:"url"`
}

// Fundamental is one key/value row scraped from a stock overview page.
type Fundamental struct {
	Field string `csv:"field" json:"field"`
	Value string `csv:"value" json:"value"`
}

// ComparisonRow is the long-format export shape for one statement item of
// one ticker in a financials comparison.
type ComparisonRow struct {
	Item   string `csv:"item" json:"item"`
	Ticker string `csv:"ticker" json:"ticker"`
	Value  string `csv:"value" json:"value"`
}

// CandleRow is the flat export shape for a candle.
type CandleRow struct {
	Timestamp string  `csv:"timestamp" json:"timestamp"`
	Open      float64 `csv:"open" json:"open"`
	High      float64 `csv:"high" json:"high"`
	Low       float64 `csv:"low" json:"low"`
	Close     float64 `csv:"close" json:"close"`
	Volume    int64   `csv:"volume" json:"volume"`
}

// NewCandleRow flattens a candle for export.
func NewCandleRow(c Candle) CandleRow {
	return CandleRow{
		Timestamp: c.Timestamp.Format(time.RFC3339),
		Open:      c.Open,
		High:      c.High,
		Low:       c.Low,
		Close:     c.Close,
		Volume:    c.Volume,
	}
}

// IndicatorPoint is the long-format export shape for one value of one
// indicator series.
type IndicatorPoint struct {
	Timestamp string  `csv:"timestamp" json:"timestamp"`
	Series    string  `csv:"series" json:"series"`
	Value     float64 `csv:"value" json:"value"`
}
