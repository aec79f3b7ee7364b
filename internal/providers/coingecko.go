package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"finterm/internal/models"
)

const coinGeckoBaseURL = "https://api.coingecko.com"

// CoinGecko fetches crypto asset profiles.
type CoinGecko struct {
	client  *Client
	BaseURL string
}

// NewCoinGecko creates a CoinGecko profile fetcher.
func NewCoinGecko(client *Client) *CoinGecko {
	return &CoinGecko{client: client, BaseURL: coinGeckoBaseURL}
}

type coinGeckoCoin struct {
	ID          string `json:"id"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	MarketRank  int    `json:"market_cap_rank"`
	Description struct {
		EN string `json:"en"`
	} `json:"description"`
	Links struct {
		Homepage []string `json:"homepage"`
	} `json:"links"`
	MarketData struct {
		CurrentPrice struct {
			USD float64 `json:"usd"`
		} `json:"current_price"`
		MarketCap struct {
			USD float64 `json:"usd"`
		} `json:"market_cap"`
		ATH struct {
			USD float64 `json:"usd"`
		} `json:"ath"`
		Change24h         float64 `json:"price_change_percentage_24h"`
		Change7d          float64 `json:"price_change_percentage_7d"`
		CirculatingSupply float64 `json:"circulating_supply"`
	} `json:"market_data"`
}

// firstSentence trims a long description down to its first sentence.
func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ". "); i >= 0 {
		return s[:i+1]
	}
	return s
}

// Coin fetches the profile for a coin by its CoinGecko id (e.g. "bitcoin").
func (c *CoinGecko) Coin(ctx context.Context, id string) (*models.CoinProfile, error) {
	u := fmt.Sprintf("%s/api/v3/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false",
		c.BaseURL, url.PathEscape(strings.ToLower(id)))

	var coin coinGeckoCoin
	if err := c.client.getJSON(ctx, "coingecko", u, &coin); err != nil {
		return nil, err
	}

	homepage := ""
	if len(coin.Links.Homepage) > 0 {
		homepage = coin.Links.Homepage[0]
	}

	return &models.CoinProfile{
		ID:           coin.ID,
		Symbol:       strings.ToUpper(coin.Symbol),
		Name:         coin.Name,
		Rank:         coin.MarketRank,
		PriceUSD:     coin.MarketData.CurrentPrice.USD,
		MarketCapUSD: coin.MarketData.MarketCap.USD,
		Change24hPct: coin.MarketData.Change24h,
		Change7dPct:  coin.MarketData.Change7d,
		CircSupply:   coin.MarketData.CirculatingSupply,
		AllTimeHigh:  coin.MarketData.ATH.USD,
		Description:  firstSentence(coin.Description.EN),
		HomepageURL:  homepage,
	}, nil
}
