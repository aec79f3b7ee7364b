package menu

import (
	"context"
	"fmt"

	"finterm/internal/cli"
	"finterm/internal/models"
	"finterm/internal/router"
)

// Crypto is the cryptocurrency menu. It needs no loaded ticker.
type Crypto struct {
	deps   Deps
	out    *cli.Output
	router *router.Router
}

// NewCrypto builds the crypto menu.
func NewCrypto(deps Deps) (*Crypto, error) {
	c := &Crypto{
		deps: deps,
		out:  deps.Out,
	}
	c.router = router.New(prompt(deps.Cfg.Terminal.Flair, "crypto"), deps.Out.Writer(), deps.Logger)

	commands := []struct {
		name string
		h    router.Handler
	}{
		{"help", c.handleHelp},
		{"q", exitMenu},
		{"quit", exitProgram},
		{"gwei", c.handleGwei},
		{"coin", c.handleCoin},
		{"wfees", c.handleWFees},
	}
	for _, cmd := range commands {
		if err := c.router.Register(cmd.name, cmd.h); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Crypto) handleHelp(args []string) router.Signal {
	c.out.Println()
	c.out.Bold("Crypto")
	c.out.Println("   help      show this help")
	c.out.Println("   q         back to the main menu")
	c.out.Println("   quit      exit the program")
	c.out.Println()
	c.out.Println("   gwei      current Ethereum gas prices")
	c.out.Println("   coin ID   coin profile by CoinGecko id (e.g. coin bitcoin)")
	c.out.Println("   wfees     exchange withdrawal fees [--limit]")
	c.out.Println()
	return router.Continue
}

func (c *Crypto) handleGwei(args []string) router.Signal {
	p := router.NewParser("gwei")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(c.out.Writer(), args) {
		return router.Continue
	}

	fees, err := c.deps.EthGas.Fees(context.Background())
	if err != nil {
		c.out.Error("gwei: %v", err)
		return router.Continue
	}

	c.out.Println()
	table := cli.NewTable(c.out, "Tier", "Gwei", "Wait (min)")
	for _, f := range fees {
		table.AddRow(f.Tier, fmt.Sprintf("%.1f", f.Gwei), fmt.Sprintf("%.1f", f.WaitMin))
	}
	table.Render()
	c.out.Println()
	exportRows(c.out, c.deps.Cfg, "gwei", *exportFmt, &fees)
	return router.Continue
}

func (c *Crypto) handleCoin(args []string) router.Signal {
	p := router.NewParser("coin")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(c.out.Writer(), args) {
		return router.Continue
	}

	rest := p.Args()
	if len(rest) != 1 {
		c.out.Error("coin: expected exactly one coin id (e.g. coin bitcoin)")
		return router.Continue
	}

	profile, err := c.deps.CoinGecko.Coin(context.Background(), rest[0])
	if err != nil {
		c.out.Error("coin: %v", err)
		return router.Continue
	}

	c.out.Println()
	c.out.Bold("%s (%s) — rank #%d", profile.Name, profile.Symbol, profile.Rank)
	c.out.Printf("   Price:       %s\n", cli.FormatUSD(profile.PriceUSD))
	c.out.Printf("   Market cap:  %s\n", cli.FormatCompactUSD(profile.MarketCapUSD))
	c.out.Printf("   24h change:  %s\n", c.out.FormatPercent(profile.Change24hPct))
	c.out.Printf("   7d change:   %s\n", c.out.FormatPercent(profile.Change7dPct))
	c.out.Printf("   Circulating: %.0f %s\n", profile.CircSupply, profile.Symbol)
	c.out.Printf("   ATH:         %s\n", cli.FormatUSD(profile.AllTimeHigh))
	if profile.Description != "" {
		c.out.Printf("   %s\n", cli.TruncateString(profile.Description, 120))
	}
	if profile.HomepageURL != "" {
		c.out.Printf("   %s\n", profile.HomepageURL)
	}
	c.out.Println()
	exportRows(c.out, c.deps.Cfg, "coin_"+profile.ID, *exportFmt, &[]models.CoinProfile{*profile})
	return router.Continue
}

func (c *Crypto) handleWFees(args []string) router.Signal {
	p := router.NewParser("wfees")
	limit := p.PositiveInt("limit", "l", 10, "number of assets to show")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(c.out.Writer(), args) {
		return router.Continue
	}

	fees, err := c.deps.WFees.Top(context.Background(), *limit)
	if err != nil {
		c.out.Error("wfees: %v", err)
		return router.Continue
	}

	c.out.Println()
	table := cli.NewTable(c.out, "Symbol", "Name", "Lowest", "Median", "Exchanges")
	for _, f := range fees {
		table.AddRow(f.Symbol, f.Name,
			cli.FormatUSD(f.LowestFee), cli.FormatUSD(f.MedianFee),
			fmt.Sprintf("%d", f.Exchanges))
	}
	table.Render()
	c.out.Println()
	exportRows(c.out, c.deps.Cfg, "wfees", *exportFmt, &fees)
	return router.Continue
}
