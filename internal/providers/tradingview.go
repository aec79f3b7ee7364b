package providers

import (
	"context"
	"fmt"

	"finterm/internal/errors"
	"finterm/internal/models"
)

const tradingViewBaseURL = "https://scanner.tradingview.com"

// TradingView fetches aggregate analyst-style recommendations from the
// public scanner endpoint.
type TradingView struct {
	client  *Client
	BaseURL string
}

// NewTradingView creates a TradingView recommendation fetcher.
func NewTradingView(client *Client) *TradingView {
	return &TradingView{client: client, BaseURL: tradingViewBaseURL}
}

// recomIntervals are the interval suffixes the scanner accepts, in display
// order. The empty suffix is the default (daily) rating.
var recomIntervals = []struct {
	suffix string
	label  string
}{
	{"|15", "15min"},
	{"|60", "1h"},
	{"", "1d"},
	{"|1W", "1W"},
	{"|1M", "1M"},
}

type scanRequest struct {
	Symbols struct {
		Tickers []string `json:"tickers"`
	} `json:"symbols"`
	Columns []string `json:"columns"`
}

type scanResponse struct {
	Data []struct {
		Symbol string        `json:"s"`
		Values []interface{} `json:"d"`
	} `json:"data"`
}

// verdict maps the scanner's [-1,1] rating score onto the five-step label.
func verdict(score float64) string {
	switch {
	case score >= 0.5:
		return "STRONG_BUY"
	case score >= 0.1:
		return "BUY"
	case score <= -0.5:
		return "STRONG_SELL"
	case score <= -0.1:
		return "SELL"
	default:
		return "NEUTRAL"
	}
}

// Recommendation fetches the overall rating per interval for an
// exchange-qualified ticker (e.g. "NASDAQ:AAPL"). Each interval's row counts
// the component ratings (overall, moving averages, oscillators) voting buy,
// neutral and sell.
func (t *TradingView) Recommendation(ctx context.Context, market, symbol string) ([]models.Recommendation, error) {
	var req scanRequest
	req.Symbols.Tickers = []string{symbol}
	for _, iv := range recomIntervals {
		req.Columns = append(req.Columns,
			"Recommend.All"+iv.suffix,
			"Recommend.MA"+iv.suffix,
			"Recommend.Other"+iv.suffix,
		)
	}

	u := fmt.Sprintf("%s/%s/scan", t.BaseURL, market)
	body, err := t.client.postJSON(ctx, "tradingview", u, req)
	if err != nil {
		return nil, err
	}

	var resp scanResponse
	if err := decodeJSON("tradingview", u, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Values) < len(req.Columns) {
		return nil, errors.NewProviderError("tradingview", u, errors.ErrNoData)
	}

	values := resp.Data[0].Values
	rows := make([]models.Recommendation, 0, len(recomIntervals))
	for i, iv := range recomIntervals {
		all := toFloat(values[i*3])
		components := []float64{all, toFloat(values[i*3+1]), toFloat(values[i*3+2])}

		var buy, neutral, sell int
		for _, c := range components {
			switch {
			case c >= 0.1:
				buy++
			case c <= -0.1:
				sell++
			default:
				neutral++
			}
		}

		rows = append(rows, models.Recommendation{
			Interval: iv.label,
			Verdict:  verdict(all),
			Buy:      buy,
			Neutral:  neutral,
			Sell:     sell,
			Score:    all,
		})
	}
	return rows, nil
}
