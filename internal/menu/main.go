package menu

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"finterm/internal/cli"
	"finterm/internal/models"
	"finterm/internal/router"
)

// Main is the top-level interactive menu.
type Main struct {
	deps    Deps
	session *Session
	out     *cli.Output
	router  *router.Router
	scanner *bufio.Scanner
}

// NewMain builds the main menu over the given input stream. Registration
// failures are programmer errors and surface here, before the loop starts.
func NewMain(deps Deps, session *Session, in io.Reader) (*Main, error) {
	m := &Main{
		deps:    deps,
		session: session,
		out:     deps.Out,
		scanner: bufio.NewScanner(in),
	}
	m.router = router.New(prompt(deps.Cfg.Terminal.Flair, ""), deps.Out.Writer(), deps.Logger)

	commands := []struct {
		name string
		h    router.Handler
	}{
		{"help", m.handleHelp},
		{"q", exitMenu},
		{"quit", exitProgram},
		{"load", m.handleLoad},
		{"messages", m.handleMessages},
		{"bullbear", m.handleBullBear},
		{"sec", m.handleSEC},
		{"income", m.handleIncome},
		{"ta", m.handleTA},
		{"crypto", m.handleCrypto},
	}
	for _, c := range commands {
		if err := m.router.Register(c.name, c.h); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// prompt renders the menu prompt, e.g. "(finterm)>(ta)> 🚀 ".
func prompt(flair, submenu string) string {
	p := "(finterm)>"
	if submenu != "" {
		p += "(" + submenu + ")>"
	}
	if flair != "" {
		p += " " + flair
	}
	return p + " "
}

func exitMenu(args []string) router.Signal    { return router.ExitMenu }
func exitProgram(args []string) router.Signal { return router.ExitProgram }

// Run drives the menu until quit or EOF.
func (m *Main) Run() router.Signal {
	return m.router.RunScanner(m.scanner)
}

// Dispatch runs a single command line outside the loop, e.g. the initial
// load from the command-line ticker argument.
func (m *Main) Dispatch(line string) router.Signal {
	return m.router.Dispatch(line)
}

func (m *Main) handleHelp(args []string) router.Signal {
	m.out.Println()
	m.out.Bold("Main menu")
	m.out.Println("   help          show this help")
	m.out.Println("   q             leave the program (same level as quit here)")
	m.out.Println("   quit          exit the program")
	m.out.Println()
	m.out.Println("   load TICKER   load ticker history [--start, --interval]")
	m.out.Println()
	if m.session.Loaded() {
		m.out.Println("   messages      recent social posts about the ticker [--limit]")
		m.out.Println("   bullbear      bull/bear sentiment for the ticker")
		m.out.Println("   sec           recent SEC filings [--limit]")
		m.out.Println("   income TICKERS  compare income statements with peers [--quarter]")
		m.out.Println()
		m.out.Println(">  ta            technical analysis menu")
	}
	m.out.Println(">  crypto        cryptocurrency menu")
	m.out.Println()
	return router.Continue
}

// intervalChoices are the accepted --interval values.
var intervalChoices = []string{
	string(models.Interval1Min), string(models.Interval5Min),
	string(models.Interval15Min), string(models.Interval30Min),
	string(models.Interval60Min), string(models.IntervalDaily),
	string(models.IntervalWeekly),
}

func (m *Main) handleLoad(args []string) router.Signal {
	p := router.NewParser("load")
	start := p.String("start", "s", "", "history start date (YYYY-MM-DD)")
	interval := p.Choice("interval", "i", string(models.IntervalDaily),
		"candle interval", intervalChoices...)
	if !p.ParseKnown(m.out.Writer(), args) {
		return router.Continue
	}

	rest := p.Args()
	if len(rest) != 1 {
		m.out.Error("load: expected exactly one ticker symbol")
		return router.Continue
	}
	ticker := strings.ToUpper(rest[0])

	startTime := time.Now().AddDate(-1, 0, 0)
	if *start != "" {
		parsed, err := time.Parse("2006-01-02", *start)
		if err != nil {
			m.out.Error("load: invalid --start %q, want YYYY-MM-DD", *start)
			return router.Continue
		}
		startTime = parsed
	}

	iv := models.Interval(*interval)
	candles, err := m.fetchHistory(context.Background(), ticker, startTime, iv)
	if err != nil {
		m.out.Error("load: %v", err)
		return router.Continue
	}

	*m.session = Session{
		Ticker:   ticker,
		Start:    startTime,
		Interval: iv,
		Candles:  candles,
	}
	last := candles[len(candles)-1]
	m.out.Success("Loaded %s: %d candles through %s (close %s)",
		ticker, len(candles), cli.FormatDate(last.Timestamp), cli.FormatUSD(last.Close))
	return router.Continue
}

// fetchHistory serves load from the cache when it is fresh, otherwise from
// the upstream provider, writing back on success.
func (m *Main) fetchHistory(ctx context.Context, ticker string, start time.Time, interval models.Interval) ([]models.Candle, error) {
	if m.deps.Cache != nil {
		fresh, err := m.deps.Cache.Freshness(ctx, ticker, interval)
		if err == nil && !fresh.IsZero() && time.Since(fresh) < m.deps.Cfg.Cache.TTL {
			cached, err := m.deps.Cache.GetCandles(ctx, ticker, interval, start, time.Now())
			if err == nil && len(cached) > 0 {
				m.deps.Logger.Debug().Str("ticker", ticker).Int("candles", len(cached)).Msg("Cache hit")
				return cached, nil
			}
		}
	}

	candles, err := m.deps.Yahoo.History(ctx, ticker, start, interval)
	if err != nil {
		return nil, err
	}
	if m.deps.Cache != nil {
		if err := m.deps.Cache.SaveCandles(ctx, ticker, interval, candles); err != nil {
			m.deps.Logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to cache candles")
		}
	}
	return candles, nil
}

// requireTicker aborts a data command when nothing is loaded yet.
func (m *Main) requireTicker() bool {
	if !m.session.Loaded() {
		m.out.Warning("No ticker loaded. Use: load TICKER")
		return false
	}
	return true
}

func (m *Main) handleMessages(args []string) router.Signal {
	p := router.NewParser("messages")
	limit := p.PositiveInt("limit", "l", 10, "number of posts to show")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(m.out.Writer(), args) {
		return router.Continue
	}
	if !m.requireTicker() {
		return router.Continue
	}

	msgs, err := m.deps.StockTwits.Messages(context.Background(), m.session.Ticker, *limit)
	if err != nil {
		m.out.Error("messages: %v", err)
		return router.Continue
	}

	m.out.Println()
	for _, msg := range msgs {
		tag := ""
		if msg.Sentiment != "" {
			tag = " [" + m.out.Sentiment(msg.Sentiment) + "]"
		}
		m.out.Printf("%s  @%s%s\n", cli.FormatDateTime(msg.CreatedAt), msg.User, tag)
		m.out.Printf("   %s\n\n", cli.TruncateString(msg.Body, 140))
	}
	m.export("messages_"+m.session.Ticker, *exportFmt, &msgs)
	return router.Continue
}

func (m *Main) handleBullBear(args []string) router.Signal {
	p := router.NewParser("bullbear")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(m.out.Writer(), args) {
		return router.Continue
	}
	if !m.requireTicker() {
		return router.Continue
	}

	summary, err := m.deps.StockTwits.BullBear(context.Background(), m.session.Ticker)
	if err != nil {
		m.out.Error("bullbear: %v", err)
		return router.Continue
	}

	m.out.Println()
	m.out.Bold("%s sentiment", summary.Symbol)
	m.out.Printf("   Watchlist count: %d\n", summary.WatchlistCnt)
	m.out.Printf("   %s: %d   %s: %d\n",
		m.out.Green("Bullish"), summary.Bullish, m.out.Red("Bearish"), summary.Bearish)
	if summary.Bullish+summary.Bearish > 0 {
		m.out.Printf("   Bull ratio: %.0f%%\n", summary.BullRatio*100)
	}
	m.out.Println()
	m.export("bullbear_"+m.session.Ticker, *exportFmt, &[]models.SentimentSummary{*summary})
	return router.Continue
}

func (m *Main) handleSEC(args []string) router.Signal {
	p := router.NewParser("sec")
	limit := p.PositiveInt("limit", "l", 5, "number of filings to show")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(m.out.Writer(), args) {
		return router.Continue
	}
	if !m.requireTicker() {
		return router.Continue
	}

	filings, err := m.deps.MarketWatch.Filings(context.Background(), m.session.Ticker, *limit)
	if err != nil {
		m.out.Error("sec: %v", err)
		return router.Continue
	}

	m.out.Println()
	table := cli.NewTable(m.out, "Date", "Form", "Description")
	for _, f := range filings {
		table.AddRow(f.Date, f.Form, cli.TruncateString(f.Description, 60))
	}
	table.Render()
	m.out.Println()
	m.export("sec_"+m.session.Ticker, *exportFmt, &filings)
	return router.Continue
}

func (m *Main) handleIncome(args []string) router.Signal {
	p := router.NewParser("income")
	quarter := p.Bool("quarter", "q", false, "use quarterly statements")
	exportFmt := p.ExportFlag()
	if !p.ParseKnown(m.out.Writer(), args) {
		return router.Continue
	}
	if !m.requireTicker() {
		return router.Continue
	}

	rest := p.Args()
	if len(rest) == 0 {
		m.out.Error("income: expected at least one ticker to compare against")
		return router.Continue
	}
	tickers := []string{m.session.Ticker}
	for _, r := range rest {
		tickers = append(tickers, strings.ToUpper(r))
	}

	ctx := context.Background()
	// Row order follows the loaded ticker's statement; peers are looked up
	// by line item and blank where an item is missing.
	var items []string
	statements := make(map[string]map[string]string, len(tickers))
	for i, ticker := range tickers {
		rows, err := m.deps.MarketWatch.IncomeStatement(ctx, ticker, *quarter)
		if err != nil {
			m.out.Error("income: %s: %v", ticker, err)
			return router.Continue
		}
		byItem := make(map[string]string, len(rows))
		for _, r := range rows {
			if _, ok := byItem[r.Field]; ok {
				continue
			}
			byItem[r.Field] = r.Value
			if i == 0 {
				items = append(items, r.Field)
			}
		}
		statements[ticker] = byItem
	}

	timeframe := "annual"
	if *quarter {
		timeframe = "quarterly"
	}
	m.out.Println()
	m.out.Bold("Income comparison (%s)", timeframe)
	table := cli.NewTable(m.out, append([]string{"Item"}, tickers...)...)
	for _, item := range items {
		row := []string{item}
		for _, ticker := range tickers {
			row = append(row, statements[ticker][item])
		}
		table.AddRow(row...)
	}
	table.Render()
	m.out.Println()

	if *exportFmt != "" {
		points := make([]models.ComparisonRow, 0, len(items)*len(tickers))
		for _, ticker := range tickers {
			for _, item := range items {
				points = append(points, models.ComparisonRow{
					Item:   item,
					Ticker: ticker,
					Value:  statements[ticker][item],
				})
			}
		}
		m.export("income_"+strings.Join(tickers, "_"), *exportFmt, &points)
	}
	return router.Continue
}

func (m *Main) handleTA(args []string) router.Signal {
	if !m.requireTicker() {
		return router.Continue
	}
	ta, err := NewTA(m.deps, m.session)
	if err != nil {
		m.out.Error("ta: %v", err)
		return router.Continue
	}
	if sig := ta.router.RunScanner(m.scanner); sig == router.ExitProgram {
		return router.ExitProgram
	}
	return router.Continue
}

func (m *Main) handleCrypto(args []string) router.Signal {
	c, err := NewCrypto(m.deps)
	if err != nil {
		m.out.Error("crypto: %v", err)
		return router.Continue
	}
	if sig := c.router.RunScanner(m.scanner); sig == router.ExitProgram {
		return router.ExitProgram
	}
	return router.Continue
}
