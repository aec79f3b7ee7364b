package menu

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finterm/internal/analysis/indicators"
	"finterm/internal/cli"
	"finterm/internal/models"
	"finterm/internal/router"
)

// tableTail is how many trailing rows indicator tables show.
const tableTail = 10

// TA is the technical-analysis menu over the loaded ticker.
type TA struct {
	deps    Deps
	session *Session
	out     *cli.Output
	router  *router.Router
}

// NewTA builds the TA menu. The caller guarantees a loaded session.
func NewTA(deps Deps, session *Session) (*TA, error) {
	t := &TA{
		deps:    deps,
		session: session,
		out:     deps.Out,
	}
	t.router = router.New(prompt(deps.Cfg.Terminal.Flair, "ta"), deps.Out.Writer(), deps.Logger)

	commands := []struct {
		name string
		h    router.Handler
	}{
		{"help", t.handleHelp},
		{"q", exitMenu},
		{"quit", exitProgram},
		{"view", t.handleView},
		{"summary", t.handleSummary},
		{"recom", t.handleRecom},
		{"pr", t.handlePR},
		{"ema", t.maHandler("EMA", func(l int) indicators.Indicator { return indicators.NewEMA(l) })},
		{"sma", t.maHandler("SMA", func(l int) indicators.Indicator { return indicators.NewSMA(l) })},
		{"vwap", t.handleVWAP},
		{"cci", t.handleCCI},
		{"macd", t.handleMACD},
		{"rsi", t.handleRSI},
		{"stoch", t.handleStoch},
		{"adx", t.handleADX},
		{"aroon", t.handleAroon},
		{"bbands", t.handleBBands},
		{"ad", t.handleAD},
		{"obv", t.handleOBV},
	}
	for _, c := range commands {
		if err := t.router.Register(c.name, c.h); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *TA) handleHelp(args []string) router.Signal {
	t.out.Println()
	t.out.Bold("Technical analysis — %s", t.session.Ticker)
	t.out.Println("   help      show this help")
	t.out.Println("   q         back to the main menu")
	t.out.Println("   quit      exit the program")
	t.out.Println()
	t.out.Println("   view      annotated chart image (transient download)")
	t.out.Println("   summary   technical summary (FinBrain)")
	t.out.Println("   recom     aggregate recommendation (TradingView)")
	t.out.Println("   pr        pattern recognition (Finnhub)")
	t.out.Println()
	t.out.Println("overlap:    ema, sma, vwap")
	t.out.Println("momentum:   cci, macd, rsi, stoch")
	t.out.Println("trend:      adx, aroon")
	t.out.Println("volatility: bbands")
	t.out.Println("volume:     ad, obv")
	t.out.Println()
	return router.Continue
}

// render shows an indicator series stack with the shared table/sparkline
// and export path. warmup is the index of the first computed value.
func (t *TA) render(title string, warmup int, series map[string][]float64, exportFmt string) {
	renderSeries(t.out, t.deps.Cfg, title, t.session.Ticker,
		t.session.Candles, series, warmup, tableTail, exportFmt)
}

// shiftAll applies the --offset forward shift to every series.
func shiftAll(series map[string][]float64, offset int) map[string][]float64 {
	if offset <= 0 {
		return series
	}
	shifted := make(map[string][]float64, len(series))
	for name, values := range series {
		shifted[name] = indicators.Shift(values, offset)
	}
	return shifted
}

func (t *TA) handleView(args []string) router.Signal {
	p := router.NewParser("view")
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	path := strings.ToUpper(t.session.Ticker) + ".jpg"
	err := t.deps.Finviz.ChartImage(context.Background(), t.session.Ticker, t.session.Interval, path)
	if err != nil {
		t.out.Error("view: %v", err)
		return router.Continue
	}

	// The image is transient: removed before the next command dispatch.
	t.router.ScheduleCleanup(path)
	t.out.Info("Chart image saved to %s (removed after the next command)", path)
	return router.Continue
}

func (t *TA) handleSummary(args []string) router.Signal {
	p := router.NewParser("summary")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	rows, err := t.deps.FinBrain.Summary(context.Background(), t.session.Ticker)
	if err != nil {
		t.out.Error("summary: %v", err)
		return router.Continue
	}

	t.out.Println()
	table := cli.NewTable(t.out, "Field", "Value")
	for _, r := range rows {
		table.AddRow(r.Field, r.Value)
	}
	table.Render()
	t.out.Println()
	exportRows(t.out, t.deps.Cfg, "summary_"+t.session.Ticker, *exportFmt, &rows)
	return router.Continue
}

func (t *TA) handleRecom(args []string) router.Signal {
	p := router.NewParser("recom")
	screener := p.String("screener", "s", "america", "TradingView screener market")
	exchange := p.String("exchange", "e", "NASDAQ", "exchange prefix for the ticker")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	symbol := t.session.Ticker
	if *exchange != "" {
		symbol = *exchange + ":" + symbol
	}
	rows, err := t.deps.TradingView.Recommendation(context.Background(), *screener, symbol)
	if err != nil {
		t.out.Error("recom: %v", err)
		return router.Continue
	}

	t.out.Println()
	table := cli.NewTable(t.out, "Interval", "Recommendation", "Buy", "Neutral", "Sell", "Score")
	for _, r := range rows {
		table.AddRow(r.Interval, t.out.Recommendation(r.Verdict),
			fmt.Sprintf("%d", r.Buy), fmt.Sprintf("%d", r.Neutral), fmt.Sprintf("%d", r.Sell),
			fmt.Sprintf("%.2f", r.Score))
	}
	table.Render()
	t.out.Println()
	exportRows(t.out, t.deps.Cfg, "recom_"+t.session.Ticker, *exportFmt, &rows)
	return router.Continue
}

func (t *TA) handlePR(args []string) router.Signal {
	p := router.NewParser("pr")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	events, err := t.deps.Finnhub.Patterns(context.Background(), t.session.Ticker, t.session.Interval)
	if err != nil {
		t.out.Error("pr: %v", err)
		return router.Continue
	}

	t.out.Println()
	table := cli.NewTable(t.out, "Pattern", "Signal", "Status", "Start", "End", "Range")
	for _, e := range events {
		table.AddRow(e.Name, t.out.Sentiment(strings.Title(e.Signal)), e.Status,
			cli.FormatDate(e.StartTime), cli.FormatDate(e.EndTime),
			fmt.Sprintf("%.2f–%.2f", e.PriceLow, e.PriceHigh))
	}
	table.Render()
	t.out.Println()
	exportRows(t.out, t.deps.Cfg, "pr_"+t.session.Ticker, *exportFmt, &events)
	return router.Continue
}

// maHandler builds the shared handler for multi-length moving averages.
func (t *TA) maHandler(title string, build func(length int) indicators.Indicator) router.Handler {
	return func(args []string) router.Signal {
		p := router.NewParser(strings.ToLower(title))
		lengths := p.PositiveIntList("length", "l", []int{20, 50}, "window lengths (comma-separated)")
		offset := p.NonNegativeInt("offset", "o", 0, "shift the series forward by N rows")
		exportFmt := p.ExportFlag()
		if !p.ParseKnown(t.out.Writer(), args) {
			return router.Continue
		}

		series, err := t.deps.Engine.ComputeLengths(context.Background(), t.session.Candles, *lengths, build)
		if err != nil {
			t.out.Error("%s: %v", strings.ToLower(title), err)
			return router.Continue
		}
		longest := 0
		for _, l := range *lengths {
			if l > longest {
				longest = l
			}
		}
		t.render(title, longest-1+*offset, shiftAll(series, *offset), *exportFmt)
		return router.Continue
	}
}

// lastSessionCandles restricts intraday histories to the final trading day,
// which is the window VWAP is conventionally read over.
func lastSessionCandles(candles []models.Candle, interval models.Interval) []models.Candle {
	if !interval.IsIntraday() || len(candles) == 0 {
		return candles
	}
	lastDay := candles[len(candles)-1].Timestamp.Truncate(24 * time.Hour)
	for i := len(candles) - 1; i >= 0; i-- {
		if candles[i].Timestamp.Before(lastDay) {
			return candles[i+1:]
		}
	}
	return candles
}

func (t *TA) handleVWAP(args []string) router.Signal {
	p := router.NewParser("vwap")
	offset := p.NonNegativeInt("offset", "o", 0, "shift the series forward by N rows")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	candles := lastSessionCandles(t.session.Candles, t.session.Interval)
	values, err := indicators.NewVWAP().Calculate(candles)
	if err != nil {
		t.out.Error("vwap: %v", err)
		return router.Continue
	}
	series := shiftAll(map[string][]float64{"VWAP": values}, *offset)
	renderSeries(t.out, t.deps.Cfg, "VWAP", t.session.Ticker, candles, series, *offset, tableTail, *exportFmt)
	return router.Continue
}

func (t *TA) handleCCI(args []string) router.Signal {
	p := router.NewParser("cci")
	length := p.PositiveInt("length", "l", 14, "lookback window")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	ind := indicators.NewCCI(*length)
	values, err := ind.Calculate(t.session.Candles)
	if err != nil {
		t.out.Error("cci: %v", err)
		return router.Continue
	}
	t.render("CCI", ind.Period()-1, map[string][]float64{ind.Name(): values}, *exportFmt)
	return router.Continue
}

func (t *TA) handleMACD(args []string) router.Signal {
	p := router.NewParser("macd")
	fast := p.PositiveInt("fast", "f", 12, "fast EMA period")
	slow := p.PositiveInt("slow", "s", 26, "slow EMA period")
	signal := p.PositiveInt("signal", "n", 9, "signal EMA period")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	ind := indicators.NewMACD(*fast, *slow, *signal)
	series, err := ind.Calculate(t.session.Candles)
	if err != nil {
		t.out.Error("macd: %v", err)
		return router.Continue
	}
	t.render("MACD", ind.Period()-1, series, *exportFmt)
	return router.Continue
}

func (t *TA) handleRSI(args []string) router.Signal {
	p := router.NewParser("rsi")
	length := p.PositiveInt("length", "l", 14, "lookback window")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	ind := indicators.NewRSI(*length)
	values, err := ind.Calculate(t.session.Candles)
	if err != nil {
		t.out.Error("rsi: %v", err)
		return router.Continue
	}
	// The first RSI value lands one bar after the lookback window.
	t.render("RSI", ind.Period(), map[string][]float64{ind.Name(): values}, *exportFmt)
	return router.Continue
}

func (t *TA) handleStoch(args []string) router.Signal {
	p := router.NewParser("stoch")
	fastK := p.PositiveInt("fastkperiod", "k", 14, "%K lookback window")
	slowD := p.PositiveInt("slowdperiod", "d", 3, "%D smoothing window")
	slowK := p.PositiveInt("slowkperiod", "", 3, "%K smoothing window")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	series, err := indicators.NewStochastic(*fastK, *slowD, *slowK).Calculate(t.session.Candles)
	if err != nil {
		t.out.Error("stoch: %v", err)
		return router.Continue
	}
	// %D warms up after the %K lookback, its smoothing, and the %D window.
	warmup := *fastK + *slowD - 2
	if *slowK > 1 {
		warmup += *slowK - 1
	}
	t.render("Stochastic", warmup, series, *exportFmt)
	return router.Continue
}

func (t *TA) handleADX(args []string) router.Signal {
	p := router.NewParser("adx")
	length := p.PositiveInt("length", "l", 14, "lookback window")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	ind := indicators.NewADX(*length)
	series, err := ind.Calculate(t.session.Candles)
	if err != nil {
		t.out.Error("adx: %v", err)
		return router.Continue
	}
	t.render("ADX", ind.Period()-1, series, *exportFmt)
	return router.Continue
}

func (t *TA) handleAroon(args []string) router.Signal {
	p := router.NewParser("aroon")
	length := p.PositiveInt("length", "l", 25, "lookback window")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	ind := indicators.NewAroon(*length)
	series, err := ind.Calculate(t.session.Candles)
	if err != nil {
		t.out.Error("aroon: %v", err)
		return router.Continue
	}
	t.render("Aroon", ind.Period()-1, series, *exportFmt)
	return router.Continue
}

func (t *TA) handleBBands(args []string) router.Signal {
	p := router.NewParser("bbands")
	length := p.PositiveInt("length", "l", 20, "lookback window")
	std := p.PositiveFloat("std", "s", 2.0, "standard deviation multiplier")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	ind := indicators.NewBollingerBands(*length, *std)
	series, err := ind.Calculate(t.session.Candles)
	if err != nil {
		t.out.Error("bbands: %v", err)
		return router.Continue
	}
	t.render("BollingerBands", ind.Period()-1, series, *exportFmt)
	return router.Continue
}

func (t *TA) handleAD(args []string) router.Signal {
	p := router.NewParser("ad")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	values, err := indicators.NewADLine().Calculate(t.session.Candles)
	if err != nil {
		t.out.Error("ad: %v", err)
		return router.Continue
	}
	t.render("ADLine", 0, map[string][]float64{"ADLine": values}, *exportFmt)
	return router.Continue
}

func (t *TA) handleOBV(args []string) router.Signal {
	p := router.NewParser("obv")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(t.out.Writer(), args) {
		return router.Continue
	}

	values, err := indicators.NewOBV().Calculate(t.session.Candles)
	if err != nil {
		t.out.Error("obv: %v", err)
		return router.Continue
	}
	t.render("OBV", 0, map[string][]float64{"OBV": values}, *exportFmt)
	return router.Continue
}
