package providers

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"finterm/internal/errors"
	"finterm/internal/models"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// Yahoo fetches OHLCV history from the Yahoo Finance chart API.
type Yahoo struct {
	client  *Client
	BaseURL string
}

// NewYahoo creates a Yahoo history fetcher.
func NewYahoo(client *Client) *Yahoo {
	return &Yahoo{client: client, BaseURL: yahooBaseURL}
}

// yahooChart is the response structure from the Yahoo Finance chart API.
// Numeric arrays decode as interface{} because null bars (holidays) appear
// in place of numbers.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []interface{} `json:"open"`
					High   []interface{} `json:"high"`
					Low    []interface{} `json:"low"`
					Close  []interface{} `json:"close"`
					Volume []interface{} `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func toFloat(v interface{}) float64 {
	if v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	default:
		return 0
	}
}

// yahooInterval maps the session interval to the chart API interval token.
func yahooInterval(interval models.Interval) string {
	switch interval {
	case models.Interval1Min:
		return "1m"
	case models.Interval5Min:
		return "5m"
	case models.Interval15Min:
		return "15m"
	case models.Interval30Min:
		return "30m"
	case models.Interval60Min:
		return "60m"
	case models.IntervalWeekly:
		return "1wk"
	default:
		return "1d"
	}
}

// History fetches candles for symbol from start until now at the given
// interval, oldest first.
func (y *Yahoo) History(ctx context.Context, symbol string, start time.Time, interval models.Interval) ([]models.Candle, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?period1=%d&period2=%d&interval=%s",
		y.BaseURL, url.PathEscape(symbol), start.Unix(), time.Now().Unix(), yahooInterval(interval))

	var chart yahooChart
	if err := y.client.getJSON(ctx, "yahoo", u, &chart); err != nil {
		return nil, err
	}
	if chart.Chart.Error != nil {
		return nil, errors.BadFormat("yahoo", u, fmt.Errorf("api error: %s", chart.Chart.Error.Description))
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, errors.NewProviderError("yahoo", u, errors.ErrNoData)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	candles := make([]models.Candle, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) || i >= len(quote.Close) {
			break
		}
		o := toFloat(quote.Open[i])
		h := toFloat(quote.High[i])
		l := toFloat(quote.Low[i])
		c := toFloat(quote.Close[i])
		if o == 0 && h == 0 && l == 0 && c == 0 {
			continue // null bars (holidays etc.)
		}
		var vol int64
		if i < len(quote.Volume) {
			vol = int64(toFloat(quote.Volume[i]))
		}
		candles = append(candles, models.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    vol,
		})
	}

	if len(candles) == 0 {
		return nil, errors.NewProviderError("yahoo", u, errors.ErrNoData)
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Timestamp.Before(candles[j].Timestamp) })
	return candles, nil
}
