package providers

import (
	"context"
	"fmt"
	"net/url"

	"finterm/internal/models"
)

const finvizBaseURL = "https://finviz.com"

// Finviz downloads the annotated daily chart image for a ticker.
type Finviz struct {
	client  *Client
	BaseURL string
}

// NewFinviz creates a Finviz chart fetcher.
func NewFinviz(client *Client) *Finviz {
	return &Finviz{client: client, BaseURL: finvizBaseURL}
}

// ChartImage downloads the chart for ticker to destPath. The candle type
// follows the session interval: intraday sessions get the intraday chart.
func (f *Finviz) ChartImage(ctx context.Context, ticker string, interval models.Interval, destPath string) error {
	period := "d"
	if interval.IsIntraday() {
		period = "i"
	}
	u := fmt.Sprintf("%s/chart.ashx?t=%s&ty=c&ta=1&p=%s", f.BaseURL, url.QueryEscape(ticker), period)
	return f.client.download(ctx, "finviz", u, destPath)
}
