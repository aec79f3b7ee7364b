package providers

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"finterm/internal/errors"
	"finterm/internal/models"
)

const finBrainBaseURL = "https://api.finbrain.tech"

// FinBrain fetches the deep-learning technical summary for a ticker.
type FinBrain struct {
	client  *Client
	BaseURL string
	apiKey  string
}

// NewFinBrain creates a FinBrain summary fetcher. The API key is optional
// for the public technical-analysis endpoint.
func NewFinBrain(client *Client, apiKey string) *FinBrain {
	return &FinBrain{client: client, BaseURL: finBrainBaseURL, apiKey: apiKey}
}

type finBrainResponse struct {
	Ticker            string            `json:"ticker"`
	TechnicalAnalysis map[string]string `json:"technicalAnalysis"`
}

// Summary returns the technical-analysis fields as field/value rows, sorted
// by field name for stable rendering.
func (f *FinBrain) Summary(ctx context.Context, ticker string) ([]models.Fundamental, error) {
	u := fmt.Sprintf("%s/v0/technicalAnalysis/%s", f.BaseURL, url.PathEscape(ticker))
	if f.apiKey != "" {
		u += "?token=" + url.QueryEscape(f.apiKey)
	}

	var resp finBrainResponse
	if err := f.client.getJSON(ctx, "finbrain", u, &resp); err != nil {
		return nil, err
	}
	if len(resp.TechnicalAnalysis) == 0 {
		return nil, errors.NewProviderError("finbrain", u, errors.ErrNoData)
	}

	rows := make([]models.Fundamental, 0, len(resp.TechnicalAnalysis))
	for field, value := range resp.TechnicalAnalysis {
		rows = append(rows, models.Fundamental{
			Field: strings.TrimSpace(field),
			Value: strings.TrimSpace(value),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Field < rows[j].Field })
	return rows, nil
}
