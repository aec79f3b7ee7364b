package providers

import (
	"context"

	"finterm/internal/models"
)

const ethGasBaseURL = "https://ethgasstation.info"

// EthGas fetches current Ethereum gas prices by priority tier.
type EthGas struct {
	client  *Client
	BaseURL string
}

// NewEthGas creates an Ethereum gas price fetcher.
func NewEthGas(client *Client) *EthGas {
	return &EthGas{client: client, BaseURL: ethGasBaseURL}
}

// ethGasResponse carries prices in tenths of gwei and waits in minutes.
type ethGasResponse struct {
	Fastest     float64 `json:"fastest"`
	Fast        float64 `json:"fast"`
	Average     float64 `json:"average"`
	SafeLow     float64 `json:"safeLow"`
	FastestWait float64 `json:"fastestWait"`
	FastWait    float64 `json:"fastWait"`
	AvgWait     float64 `json:"avgWait"`
	SafeLowWait float64 `json:"safeLowWait"`
}

// Fees fetches gas prices, fastest tier first.
func (e *EthGas) Fees(ctx context.Context) ([]models.GasFees, error) {
	u := e.BaseURL + "/json/ethgasAPI.json"

	var resp ethGasResponse
	if err := e.client.getJSON(ctx, "ethgasstation", u, &resp); err != nil {
		return nil, err
	}

	return []models.GasFees{
		{Tier: "fastest", Gwei: resp.Fastest / 10, WaitMin: resp.FastestWait},
		{Tier: "fast", Gwei: resp.Fast / 10, WaitMin: resp.FastWait},
		{Tier: "average", Gwei: resp.Average / 10, WaitMin: resp.AvgWait},
		{Tier: "safe low", Gwei: resp.SafeLow / 10, WaitMin: resp.SafeLowWait},
	}, nil
}
