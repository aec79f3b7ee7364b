package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"finterm/internal/errors"
	"finterm/internal/models"
	"finterm/pkg/utils"
)

func newTestClient() *Client {
	c := NewClient(5*time.Second, "finterm-test", zerolog.Nop())
	// A single attempt keeps failure-path tests from sleeping through backoff.
	c.retry = utils.RetryConfig{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1}
	return c
}

const yahooFixture = `{
	"chart": {
		"result": [{
			"timestamp": [1755734400, 1755820800, 1755907200],
			"indicators": {
				"quote": [{
					"open":   [22.1, null, 23.4],
					"high":   [23.0, null, 24.1],
					"low":    [21.8, null, 23.0],
					"close":  [22.9, null, 23.8],
					"volume": [1200000, null, 1350000]
				}]
			}
		}],
		"error": null
	}
}`

func TestYahooHistoryParsesChart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v8/finance/chart/GME") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval = %q, want 1d", r.URL.Query().Get("interval"))
		}
		fmt.Fprint(w, yahooFixture)
	}))
	defer srv.Close()

	yahoo := NewYahoo(newTestClient())
	yahoo.BaseURL = srv.URL

	candles, err := yahoo.History(context.Background(), "GME", time.Now().AddDate(-1, 0, 0), models.IntervalDaily)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}

	// The middle bar is null (market holiday) and must be skipped.
	if len(candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(candles))
	}
	if candles[0].Close != 22.9 || candles[1].Close != 23.8 {
		t.Fatalf("unexpected closes: %v, %v", candles[0].Close, candles[1].Close)
	}
	if candles[0].Volume != 1200000 {
		t.Fatalf("volume = %d, want 1200000", candles[0].Volume)
	}
	if !candles[0].Timestamp.Before(candles[1].Timestamp) {
		t.Fatal("candles not in ascending timestamp order")
	}
}

func TestYahooHistoryServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	yahoo := NewYahoo(newTestClient())
	yahoo.BaseURL = srv.URL

	_, err := yahoo.History(context.Background(), "GME", time.Now().AddDate(0, -1, 0), models.IntervalDaily)
	if !errors.Is(err, errors.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}

	var perr *errors.ProviderError
	if !errors.As(err, &perr) || perr.Provider != "yahoo" {
		t.Fatalf("expected yahoo ProviderError, got %v", err)
	}
}

func TestYahooHistoryMalformedBodyIsFormatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	defer srv.Close()

	yahoo := NewYahoo(newTestClient())
	yahoo.BaseURL = srv.URL

	_, err := yahoo.History(context.Background(), "GME", time.Now().AddDate(0, -1, 0), models.IntervalDaily)
	if !errors.Is(err, errors.ErrUpstreamFormat) {
		t.Fatalf("expected ErrUpstreamFormat, got %v", err)
	}
}

func TestYahooHistoryEmptyResultIsNoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	yahoo := NewYahoo(newTestClient())
	yahoo.BaseURL = srv.URL

	_, err := yahoo.History(context.Background(), "GME", time.Now().AddDate(0, -1, 0), models.IntervalDaily)
	if !errors.Is(err, errors.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

const stockTwitsFixture = `{
	"symbol": {"symbol": "GME", "watchlist_count": 98765},
	"messages": [
		{"body": "to the moon", "created_at": "2026-08-23T14:00:00Z", "user": {"username": "ape1"},
		 "entities": {"sentiment": {"basic": "Bullish"}}},
		{"body": "overvalued", "created_at": "2026-08-23T14:05:00Z", "user": {"username": "bear1"},
		 "entities": {"sentiment": {"basic": "Bearish"}}},
		{"body": "diamond hands", "created_at": "2026-08-23T14:10:00Z", "user": {"username": "ape2"},
		 "entities": {"sentiment": {"basic": "Bullish"}}},
		{"body": "just watching", "created_at": "2026-08-23T14:15:00Z", "user": {"username": "lurker"},
		 "entities": {"sentiment": null}},
		{"body": "lfg", "created_at": "2026-08-23T14:20:00Z", "user": {"username": "ape3"},
		 "entities": {"sentiment": {"basic": "Bullish"}}}
	]
}`

func TestStockTwitsBullBearCountsTaggedMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/2/streams/symbol/GME.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, stockTwitsFixture)
	}))
	defer srv.Close()

	st := NewStockTwits(newTestClient())
	st.BaseURL = srv.URL

	summary, err := st.BullBear(context.Background(), "GME")
	if err != nil {
		t.Fatalf("BullBear failed: %v", err)
	}
	if summary.Bullish != 3 || summary.Bearish != 1 {
		t.Fatalf("counts = %d/%d, want 3/1", summary.Bullish, summary.Bearish)
	}
	if summary.BullRatio != 0.75 {
		t.Fatalf("BullRatio = %v, want 0.75 (untagged messages excluded)", summary.BullRatio)
	}
	if summary.WatchlistCnt != 98765 {
		t.Fatalf("WatchlistCnt = %d", summary.WatchlistCnt)
	}
}

func TestStockTwitsMessagesHonorsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, stockTwitsFixture)
	}))
	defer srv.Close()

	st := NewStockTwits(newTestClient())
	st.BaseURL = srv.URL

	msgs, err := st.Messages(context.Background(), "GME", 2)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].User != "ape1" || msgs[0].Sentiment != "Bullish" {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
}

func TestTradingViewRecommendation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/america/scan" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		// Five intervals, three component scores each: 0.6 / 0.2 / -0.3.
		var values []string
		for i := 0; i < 5; i++ {
			values = append(values, "0.6", "0.2", "-0.3")
		}
		fmt.Fprintf(w, `{"data":[{"s":"NASDAQ:GME","d":[%s]}]}`, strings.Join(values, ","))
	}))
	defer srv.Close()

	tv := NewTradingView(newTestClient())
	tv.BaseURL = srv.URL

	rows, err := tv.Recommendation(context.Background(), "america", "NASDAQ:GME")
	if err != nil {
		t.Fatalf("Recommendation failed: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(rows))
	}

	wantLabels := []string{"15min", "1h", "1d", "1W", "1M"}
	for i, row := range rows {
		if row.Interval != wantLabels[i] {
			t.Errorf("row %d interval = %q, want %q", i, row.Interval, wantLabels[i])
		}
		if row.Verdict != "STRONG_BUY" {
			t.Errorf("row %d verdict = %q, want STRONG_BUY", i, row.Verdict)
		}
		if row.Buy != 2 || row.Neutral != 0 || row.Sell != 1 {
			t.Errorf("row %d votes = %d/%d/%d, want 2/0/1", i, row.Buy, row.Neutral, row.Sell)
		}
	}
}

func TestVerdictThresholds(t *testing.T) {
	cases := map[float64]string{
		0.8:   "STRONG_BUY",
		0.5:   "STRONG_BUY",
		0.3:   "BUY",
		0.1:   "BUY",
		0.05:  "NEUTRAL",
		0:     "NEUTRAL",
		-0.05: "NEUTRAL",
		-0.1:  "SELL",
		-0.3:  "SELL",
		-0.5:  "STRONG_SELL",
		-0.9:  "STRONG_SELL",
	}
	for score, want := range cases {
		if got := verdict(score); got != want {
			t.Errorf("verdict(%v) = %q, want %q", score, got, want)
		}
	}
}

func TestEthGasConvertsTenthsOfGwei(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/ethgasAPI.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"fastest":500,"fast":400,"average":300,"safeLow":250,
			"fastestWait":0.5,"fastWait":1,"avgWait":3,"safeLowWait":10}`)
	}))
	defer srv.Close()

	eg := NewEthGas(newTestClient())
	eg.BaseURL = srv.URL

	fees, err := eg.Fees(context.Background())
	if err != nil {
		t.Fatalf("Fees failed: %v", err)
	}
	if len(fees) != 4 {
		t.Fatalf("got %d tiers, want 4", len(fees))
	}
	if fees[0].Tier != "fastest" || fees[0].Gwei != 50 {
		t.Fatalf("fastest tier = %+v, want 50 gwei", fees[0])
	}
	if fees[3].Gwei != 25 || fees[3].WaitMin != 10 {
		t.Fatalf("safe low tier = %+v", fees[3])
	}
}

func TestCoinGeckoCoinProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/coins/bitcoin" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"id": "bitcoin", "symbol": "btc", "name": "Bitcoin", "market_cap_rank": 1,
			"description": {"en": "Bitcoin is the first cryptocurrency. It was created in 2009."},
			"links": {"homepage": ["https://bitcoin.org"]},
			"market_data": {
				"current_price": {"usd": 64250.5},
				"market_cap": {"usd": 1260000000000},
				"ath": {"usd": 112000},
				"price_change_percentage_24h": -1.2,
				"price_change_percentage_7d": 4.8,
				"circulating_supply": 19750000
			}
		}`)
	}))
	defer srv.Close()

	cg := NewCoinGecko(newTestClient())
	cg.BaseURL = srv.URL

	profile, err := cg.Coin(context.Background(), "Bitcoin")
	if err != nil {
		t.Fatalf("Coin failed: %v", err)
	}
	if profile.Symbol != "BTC" || profile.Rank != 1 {
		t.Fatalf("profile = %+v", profile)
	}
	if profile.PriceUSD != 64250.5 || profile.AllTimeHigh != 112000 {
		t.Fatalf("prices = %v / %v", profile.PriceUSD, profile.AllTimeHigh)
	}
	if profile.Description != "Bitcoin is the first cryptocurrency." {
		t.Fatalf("description not trimmed to first sentence: %q", profile.Description)
	}
	if profile.HomepageURL != "https://bitcoin.org" {
		t.Fatalf("homepage = %q", profile.HomepageURL)
	}
}

func TestFinnhubPatternsRequiresAPIKey(t *testing.T) {
	fh := NewFinnhub(newTestClient(), "")

	_, err := fh.Patterns(context.Background(), "GME", models.IntervalDaily)
	if !errors.Is(err, errors.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid, got %v", err)
	}
}

func TestFinnhubPatterns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("token") != "demo" || q.Get("symbol") != "GME" || q.Get("resolution") != "D" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"points":[{
			"patternname": "Double Bottom", "patterntype": "bullish", "status": "complete",
			"atime": 1755734400, "dtime": 1755907200,
			"aprice": 20.5, "bprice": 24.0, "cprice": 21.0, "dprice": 23.5, "mature": 1
		}]}`)
	}))
	defer srv.Close()

	fh := NewFinnhub(newTestClient(), "demo")
	fh.BaseURL = srv.URL

	events, err := fh.Patterns(context.Background(), "GME", models.IntervalDaily)
	if err != nil {
		t.Fatalf("Patterns failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	e := events[0]
	if e.Name != "Double Bottom" || e.Signal != "bullish" {
		t.Fatalf("event = %+v", e)
	}
	if e.PriceLow != 20.5 || e.PriceHigh != 24.0 {
		t.Fatalf("price window = %v..%v, want 20.5..24.0", e.PriceLow, e.PriceHigh)
	}
}

func TestWithdrawalFeesTop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><table><tbody>
			<tr><td><span class="symbol">BTC</span><span class="name">Bitcoin</span></td>
				<td>$1.50</td><td>$4.25</td><td>42</td></tr>
			<tr><td><span class="symbol">ETH</span><span class="name">Ethereum</span></td>
				<td>$0.75</td><td>$2.10</td><td>51</td></tr>
			<tr><td><span class="symbol">XRP</span><span class="name">Ripple</span></td>
				<td>$0.01</td><td>$0.05</td><td>38</td></tr>
		</tbody></table></body></html>`)
	}))
	defer srv.Close()

	wf := NewWithdrawalFees(newTestClient())
	wf.BaseURL = srv.URL

	fees, err := wf.Top(context.Background(), 2)
	if err != nil {
		t.Fatalf("Top failed: %v", err)
	}
	if len(fees) != 2 {
		t.Fatalf("got %d rows, want limit of 2", len(fees))
	}
	if fees[0].Symbol != "BTC" || fees[0].Name != "Bitcoin" {
		t.Fatalf("first row = %+v", fees[0])
	}
	if fees[0].LowestFee != 1.5 || fees[0].MedianFee != 4.25 || fees[0].Exchanges != 42 {
		t.Fatalf("first row values = %+v", fees[0])
	}
}

func TestWithdrawalFeesEmptyTableIsFormatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>redesigned page</p></body></html>`)
	}))
	defer srv.Close()

	wf := NewWithdrawalFees(newTestClient())
	wf.BaseURL = srv.URL

	_, err := wf.Top(context.Background(), 10)
	if !errors.Is(err, errors.ErrUpstreamFormat) {
		t.Fatalf("expected ErrUpstreamFormat, got %v", err)
	}
}

func TestMarketWatchFilings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/investing/stock/gme/financials/secfilings" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `<html><body><table><tbody>
			<tr><td>08/21/2026</td><td>8-K</td><td><a href="https://sec.gov/doc1">Current report</a></td></tr>
			<tr><td>07/30/2026</td><td>10-Q</td><td><a href="https://sec.gov/doc2">Quarterly report</a></td></tr>
		</tbody></table></body></html>`)
	}))
	defer srv.Close()

	mw := NewMarketWatch(newTestClient())
	mw.BaseURL = srv.URL

	filings, err := mw.Filings(context.Background(), "GME", 5)
	if err != nil {
		t.Fatalf("Filings failed: %v", err)
	}
	if len(filings) != 2 {
		t.Fatalf("got %d filings, want 2", len(filings))
	}
	if filings[0].Form != "8-K" || filings[0].URL != "https://sec.gov/doc1" {
		t.Fatalf("first filing = %+v", filings[0])
	}
}

func TestMarketWatchIncomeStatement(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/investing/stock/gme/financials/income" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		// The trailing cell is the trend-chart column and carries no text.
		fmt.Fprint(w, `<html><body><table><tbody>
			<tr><td>Sales/Revenue</td><td>6.01B</td><td>5.27B</td><td></td></tr>
			<tr><td>Gross Income</td><td>1.26B</td><td>1.16B</td><td></td></tr>
			<tr><td>Net Income</td><td>-381.3M</td><td>-215.3M</td><td></td></tr>
		</tbody></table></body></html>`)
	}))
	defer srv.Close()

	mw := NewMarketWatch(newTestClient())
	mw.BaseURL = srv.URL

	items, err := mw.IncomeStatement(context.Background(), "GME", false)
	if err != nil {
		t.Fatalf("IncomeStatement failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0].Field != "Sales/Revenue" || items[0].Value != "5.27B" {
		t.Fatalf("first item = %+v, want the newest period's value", items[0])
	}
	if items[2].Value != "-215.3M" {
		t.Fatalf("net income = %+v", items[2])
	}
}

func TestMarketWatchIncomeStatementQuarterly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/investing/stock/gme/financials/income/quarter" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `<html><body><table><tbody>
			<tr><td>Sales/Revenue</td><td>1.28B</td><td></td></tr>
		</tbody></table></body></html>`)
	}))
	defer srv.Close()

	mw := NewMarketWatch(newTestClient())
	mw.BaseURL = srv.URL

	items, err := mw.IncomeStatement(context.Background(), "GME", true)
	if err != nil {
		t.Fatalf("IncomeStatement failed: %v", err)
	}
	if len(items) != 1 || items[0].Value != "1.28B" {
		t.Fatalf("items = %+v", items)
	}
}

func TestMarketWatchIncomeStatementEmptyPageIsFormatError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>no statements here</p></body></html>`)
	}))
	defer srv.Close()

	mw := NewMarketWatch(newTestClient())
	mw.BaseURL = srv.URL

	_, err := mw.IncomeStatement(context.Background(), "GME", false)
	if !errors.Is(err, errors.ErrUpstreamFormat) {
		t.Fatalf("expected ErrUpstreamFormat, got %v", err)
	}
}

func TestFinBrainSummarySortedByField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v0/technicalAnalysis/GME") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"ticker":"GME","technicalAnalysis":{
			"trend":"bullish","momentum":"strong","volatility":"high"}}`)
	}))
	defer srv.Close()

	fb := NewFinBrain(newTestClient(), "")
	fb.BaseURL = srv.URL

	rows, err := fb.Summary(context.Background(), "GME")
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Field > rows[i].Field {
			t.Fatalf("rows not sorted by field: %+v", rows)
		}
	}
}

func TestFinvizChartImageDownloads(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("t") != "GME" {
			t.Errorf("ticker = %q", q.Get("t"))
		}
		if q.Get("p") != "d" {
			t.Errorf("period = %q, want d for daily interval", q.Get("p"))
		}
		w.Write(payload)
	}))
	defer srv.Close()

	fv := NewFinviz(newTestClient())
	fv.BaseURL = srv.URL

	dest := filepath.Join(t.TempDir(), "GME.jpg")
	if err := fv.ChartImage(context.Background(), "GME", models.IntervalDaily, dest); err != nil {
		t.Fatalf("ChartImage failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("reading download: %v", err)
	}
	if len(data) != len(payload) {
		t.Fatalf("downloaded %d bytes, want %d", len(data), len(payload))
	}
}

func TestFinvizChartImageIntradayPeriod(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("p"); got != "i" {
			t.Errorf("period = %q, want i for intraday interval", got)
		}
		w.Write([]byte{0xFF})
	}))
	defer srv.Close()

	fv := NewFinviz(newTestClient())
	fv.BaseURL = srv.URL

	dest := filepath.Join(t.TempDir(), "GME.jpg")
	if err := fv.ChartImage(context.Background(), "GME", models.Interval5Min, dest); err != nil {
		t.Fatalf("ChartImage failed: %v", err)
	}
}
