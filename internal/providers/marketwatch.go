package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"finterm/internal/errors"
	"finterm/internal/models"
)

const marketWatchBaseURL = "https://www.marketwatch.com"

// MarketWatch scrapes SEC filings from a ticker's financials page.
type MarketWatch struct {
	client  *Client
	BaseURL string
}

// NewMarketWatch creates a MarketWatch filings scraper.
func NewMarketWatch(client *Client) *MarketWatch {
	return &MarketWatch{client: client, BaseURL: marketWatchBaseURL}
}

// Filings scrapes recent SEC filings for ticker, newest first as listed.
func (m *MarketWatch) Filings(ctx context.Context, ticker string, limit int) ([]models.Filing, error) {
	u := fmt.Sprintf("%s/investing/stock/%s/financials/secfilings",
		m.BaseURL, url.PathEscape(strings.ToLower(ticker)))

	doc, err := m.client.getDocument(ctx, "marketwatch", u)
	if err != nil {
		return nil, err
	}

	var filings []models.Filing
	doc.Find("table tbody tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if limit > 0 && len(filings) >= limit {
			return false
		}
		cells := row.Find("td")
		if cells.Length() < 3 {
			return true
		}
		link, _ := cells.Eq(2).Find("a").Attr("href")
		filings = append(filings, models.Filing{
			Date:        strings.TrimSpace(cells.Eq(0).Text()),
			Form:        strings.TrimSpace(cells.Eq(1).Text()),
			Description: strings.TrimSpace(cells.Eq(2).Text()),
			URL:         link,
		})
		return true
	})

	if len(filings) == 0 {
		return nil, errors.BadFormat("marketwatch", u, errors.ErrNoData)
	}
	return filings, nil
}

// IncomeStatement scrapes the income statement line items for ticker,
// keeping the most recent period's value per item. Quarterly statements come
// from the /income/quarter page, annual from /income.
func (m *MarketWatch) IncomeStatement(ctx context.Context, ticker string, quarter bool) ([]models.Fundamental, error) {
	u := fmt.Sprintf("%s/investing/stock/%s/financials/income",
		m.BaseURL, url.PathEscape(strings.ToLower(ticker)))
	if quarter {
		u += "/quarter"
	}

	doc, err := m.client.getDocument(ctx, "marketwatch", u)
	if err != nil {
		return nil, err
	}

	var items []models.Fundamental
	doc.Find("table tbody tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		field := strings.TrimSpace(cells.Eq(0).Text())
		if field == "" {
			return
		}
		// The newest period is the last cell carrying text; trailing
		// trend-chart cells are empty.
		value := ""
		for j := cells.Length() - 1; j >= 1; j-- {
			if v := strings.TrimSpace(cells.Eq(j).Text()); v != "" {
				value = v
				break
			}
		}
		if value == "" {
			return
		}
		items = append(items, models.Fundamental{Field: field, Value: value})
	})

	if len(items) == 0 {
		return nil, errors.BadFormat("marketwatch", u, errors.ErrNoData)
	}
	return items, nil
}
