package providers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"finterm/internal/errors"
	"finterm/internal/models"
)

const stockTwitsBaseURL = "https://api.stocktwits.com"

// StockTwits fetches the public message stream and derives bull/bear
// sentiment for a ticker.
type StockTwits struct {
	client  *Client
	BaseURL string
}

// NewStockTwits creates a StockTwits fetcher.
func NewStockTwits(client *Client) *StockTwits {
	return &StockTwits{client: client, BaseURL: stockTwitsBaseURL}
}

type stockTwitsStream struct {
	Symbol struct {
		Symbol         string `json:"symbol"`
		WatchlistCount int    `json:"watchlist_count"`
	} `json:"symbol"`
	Messages []struct {
		Body      string `json:"body"`
		CreatedAt string `json:"created_at"`
		User      struct {
			Username string `json:"username"`
		} `json:"user"`
		Entities struct {
			Sentiment *struct {
				Basic string `json:"basic"`
			} `json:"sentiment"`
		} `json:"entities"`
	} `json:"messages"`
}

func (s *StockTwits) stream(ctx context.Context, ticker string) (*stockTwitsStream, error) {
	u := fmt.Sprintf("%s/api/2/streams/symbol/%s.json", s.BaseURL, url.PathEscape(ticker))

	var resp stockTwitsStream
	if err := s.client.getJSON(ctx, "stocktwits", u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Messages) == 0 {
		return nil, errors.NewProviderError("stocktwits", u, errors.ErrNoData)
	}
	return &resp, nil
}

// Messages fetches the most recent posts about ticker, at most limit rows.
func (s *StockTwits) Messages(ctx context.Context, ticker string, limit int) ([]models.Message, error) {
	resp, err := s.stream(ctx, ticker)
	if err != nil {
		return nil, err
	}

	msgs := make([]models.Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if limit > 0 && len(msgs) >= limit {
			break
		}
		sentiment := ""
		if m.Entities.Sentiment != nil {
			sentiment = m.Entities.Sentiment.Basic
		}
		created, _ := time.Parse("2006-01-02T15:04:05Z", m.CreatedAt)
		msgs = append(msgs, models.Message{
			CreatedAt: created,
			User:      m.User.Username,
			Sentiment: sentiment,
			Body:      m.Body,
		})
	}
	return msgs, nil
}

// BullBear aggregates the sentiment tags across the latest messages. The
// ratio counts only tagged messages.
func (s *StockTwits) BullBear(ctx context.Context, ticker string) (*models.SentimentSummary, error) {
	resp, err := s.stream(ctx, ticker)
	if err != nil {
		return nil, err
	}

	summary := &models.SentimentSummary{
		Symbol:       resp.Symbol.Symbol,
		WatchlistCnt: resp.Symbol.WatchlistCount,
	}
	for _, m := range resp.Messages {
		if m.Entities.Sentiment == nil {
			continue
		}
		switch m.Entities.Sentiment.Basic {
		case "Bullish":
			summary.Bullish++
		case "Bearish":
			summary.Bearish++
		}
	}
	if tagged := summary.Bullish + summary.Bearish; tagged > 0 {
		summary.BullRatio = float64(summary.Bullish) / float64(tagged)
	}
	return summary, nil
}
