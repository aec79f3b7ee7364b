package providers

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"finterm/internal/errors"
	"finterm/internal/models"
)

const withdrawalFeesBaseURL = "https://withdrawalfees.com"

// WithdrawalFees scrapes per-asset exchange withdrawal costs.
type WithdrawalFees struct {
	client  *Client
	BaseURL string
}

// NewWithdrawalFees creates a withdrawal-fee scraper.
func NewWithdrawalFees(client *Client) *WithdrawalFees {
	return &WithdrawalFees{client: client, BaseURL: withdrawalFeesBaseURL}
}

// parseUSD strips currency formatting ("$1,234.56") and parses the number.
func parseUSD(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Top scrapes the lowest and median withdrawal fee per asset, limited to the
// first limit rows of the overview table.
func (w *WithdrawalFees) Top(ctx context.Context, limit int) ([]models.WithdrawalFee, error) {
	u := w.BaseURL + "/coins"
	doc, err := w.client.getDocument(ctx, "withdrawalfees", u)
	if err != nil {
		return nil, err
	}

	var fees []models.WithdrawalFee
	doc.Find("table tbody tr").EachWithBreak(func(i int, row *goquery.Selection) bool {
		if limit > 0 && len(fees) >= limit {
			return false
		}
		cells := row.Find("td")
		if cells.Length() < 4 {
			return true
		}
		fees = append(fees, models.WithdrawalFee{
			Symbol:    strings.TrimSpace(cells.Eq(0).Find(".symbol").Text()),
			Name:      strings.TrimSpace(cells.Eq(0).Find(".name").Text()),
			LowestFee: parseUSD(cells.Eq(1).Text()),
			MedianFee: parseUSD(cells.Eq(2).Text()),
			Exchanges: int(parseUSD(cells.Eq(3).Text())),
		})
		return true
	})

	if len(fees) == 0 {
		return nil, errors.BadFormat("withdrawalfees", u, errors.ErrNoData)
	}
	return fees, nil
}
