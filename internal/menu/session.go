// Package menu implements the interactive menus built on the command
// router: the main menu, the technical-analysis menu and the crypto menu.
package menu

import (
	"time"

	"github.com/rs/zerolog"

	"finterm/internal/analysis/indicators"
	"finterm/internal/cli"
	"finterm/internal/config"
	"finterm/internal/models"
	"finterm/internal/providers"
	"finterm/internal/store"
)

// Session holds the loaded ticker state shared by the menus. The load
// command replaces it wholesale; handlers only ever read it.
type Session struct {
	Ticker   string
	Start    time.Time
	Interval models.Interval
	Candles  []models.Candle
}

// Loaded reports whether a ticker with history is available.
func (s *Session) Loaded() bool {
	return s.Ticker != "" && len(s.Candles) > 0
}

// Deps bundles everything the menus need. Feature flags come in through the
// config snapshot at construction, never from globals.
type Deps struct {
	Out    *cli.Output
	Logger zerolog.Logger
	Cfg    *config.Config
	Cache  store.CandleStore // nil when the cache is disabled

	Yahoo       *providers.Yahoo
	Finviz      *providers.Finviz
	FinBrain    *providers.FinBrain
	TradingView *providers.TradingView
	Finnhub     *providers.Finnhub
	CoinGecko   *providers.CoinGecko
	EthGas      *providers.EthGas
	WFees       *providers.WithdrawalFees
	MarketWatch *providers.MarketWatch
	StockTwits  *providers.StockTwits

	Engine *indicators.Engine
}
