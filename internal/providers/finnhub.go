package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"finterm/internal/errors"
	"finterm/internal/models"
)

const finnhubBaseURL = "https://finnhub.io"

// Finnhub fetches chart pattern recognition events. The scan endpoint
// requires an API key.
type Finnhub struct {
	client  *Client
	BaseURL string
	apiKey  string
}

// NewFinnhub creates a Finnhub pattern fetcher.
func NewFinnhub(client *Client, apiKey string) *Finnhub {
	return &Finnhub{client: client, BaseURL: finnhubBaseURL, apiKey: apiKey}
}

type finnhubPatterns struct {
	Points []struct {
		PatternName string  `json:"patternname"`
		PatternType string  `json:"patterntype"`
		Status      string  `json:"status"`
		ATime       float64 `json:"atime"`
		DTime       float64 `json:"dtime"`
		APrice      float64 `json:"aprice"`
		BPrice      float64 `json:"bprice"`
		CPrice      float64 `json:"cprice"`
		DPrice      float64 `json:"dprice"`
		Mature      int     `json:"mature"`
	} `json:"points"`
}

// finnhubResolution maps the session interval onto the scan endpoint's
// resolution tokens.
func finnhubResolution(interval models.Interval) string {
	switch interval {
	case models.Interval1Min:
		return "1"
	case models.Interval5Min:
		return "5"
	case models.Interval15Min:
		return "15"
	case models.Interval30Min:
		return "30"
	case models.Interval60Min:
		return "60"
	case models.IntervalWeekly:
		return "W"
	default:
		return "D"
	}
}

// Patterns fetches detected chart patterns for a ticker.
func (f *Finnhub) Patterns(ctx context.Context, ticker string, interval models.Interval) ([]models.PatternEvent, error) {
	if f.apiKey == "" {
		return nil, errors.NewProviderError("finnhub", "scan/pattern",
			fmt.Errorf("%w: api key not configured", errors.ErrConfigInvalid))
	}

	u := fmt.Sprintf("%s/api/v1/scan/pattern?symbol=%s&resolution=%s&token=%s",
		f.BaseURL, url.QueryEscape(ticker), finnhubResolution(interval), url.QueryEscape(f.apiKey))

	var resp finnhubPatterns
	if err := f.client.getJSON(ctx, "finnhub", u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Points) == 0 {
		return nil, errors.NewProviderError("finnhub", u, errors.ErrNoData)
	}

	events := make([]models.PatternEvent, 0, len(resp.Points))
	for _, p := range resp.Points {
		low, high := p.APrice, p.APrice
		for _, price := range []float64{p.BPrice, p.CPrice, p.DPrice} {
			if price == 0 {
				continue
			}
			if price < low {
				low = price
			}
			if price > high {
				high = price
			}
		}
		end := p.DTime
		if end == 0 {
			end = p.ATime
		}
		events = append(events, models.PatternEvent{
			Name:       p.PatternName,
			Status:     p.Status,
			Signal:     p.PatternType,
			StartTime:  time.Unix(int64(p.ATime), 0).UTC(),
			EndTime:    time.Unix(int64(end), 0).UTC(),
			PriceLow:   low,
			PriceHigh:  high,
			Confidence: float64(p.Mature),
		})
	}
	return events, nil
}
