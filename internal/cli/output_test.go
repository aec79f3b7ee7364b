package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFormatUSD(t *testing.T) {
	cases := map[float64]string{
		0:           "$0.00",
		999.5:       "$999.50",
		1000:        "$1,000.00",
		1234567.89:  "$1,234,567.89",
		-42000.1:    "-$42,000.10",
		48921000000: "$48,921,000,000.00",
	}
	for amount, want := range cases {
		if got := FormatUSD(amount); got != want {
			t.Errorf("FormatUSD(%v) = %q, want %q", amount, got, want)
		}
	}
}

func TestFormatVolume(t *testing.T) {
	cases := map[int64]string{
		999:           "999",
		1_500:         "1.50K",
		2_345_678:     "2.35M",
		7_100_000_000: "7.10B",
	}
	for volume, want := range cases {
		if got := FormatVolume(volume); got != want {
			t.Errorf("FormatVolume(%d) = %q, want %q", volume, got, want)
		}
	}
}

func TestFormatCompactUSD(t *testing.T) {
	cases := map[float64]string{
		512.25: "$512.25",
		1_500:  "$1.50K",
		2.5e6:  "$2.50M",
		1.2e9:  "$1.20B",
		3.4e12: "$3.40T",
	}
	for amount, want := range cases {
		if got := FormatCompactUSD(amount); got != want {
			t.Errorf("FormatCompactUSD(%v) = %q, want %q", amount, got, want)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(181.255); got != "181.26" {
		t.Errorf("FormatPrice(181.255) = %q", got)
	}
	if got := FormatPrice(0.1234); got != "0.1234" {
		t.Errorf("FormatPrice(0.1234) = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2026, 8, 24, 15, 4, 0, 0, time.UTC)
	if got := FormatDate(ts); got != "2026-08-24" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDateTime(ts); got != "2026-08-24 15:04" {
		t.Errorf("FormatDateTime = %q", got)
	}
}

func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("TruncateString(short, 10) = %q", got)
	}
	if got := TruncateString("a longer body of text", 10); got != "a longe..." {
		t.Errorf("TruncateString = %q", got)
	}
}

func TestOutputColorDisabled(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf, false)

	out.Success("loaded %s", "GME")
	if strings.Contains(buf.String(), "\033[") {
		t.Fatalf("color-disabled output contains escape codes: %q", buf.String())
	}
	if buf.String() != "loaded GME\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestOutputColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf, true)

	out.Error("fetch failed")
	if !strings.HasPrefix(buf.String(), ColorRed) {
		t.Fatalf("expected red escape prefix: %q", buf.String())
	}
	if !strings.Contains(buf.String(), ColorReset) {
		t.Fatalf("missing reset code: %q", buf.String())
	}
}

func TestFormatPercentTrend(t *testing.T) {
	out := NewOutput(&bytes.Buffer{}, true)

	up := out.FormatPercent(3.5)
	if !strings.Contains(up, "+3.50%") || !strings.Contains(up, ColorGreen) {
		t.Errorf("positive percent = %q", up)
	}
	down := out.FormatPercent(-1.25)
	if !strings.Contains(down, "-1.25%") || !strings.Contains(down, ColorRed) {
		t.Errorf("negative percent = %q", down)
	}
}

func TestSentimentColoring(t *testing.T) {
	out := NewOutput(&bytes.Buffer{}, true)

	if got := out.Sentiment("Bullish"); !strings.Contains(got, ColorGreen) {
		t.Errorf("Bullish = %q", got)
	}
	if got := out.Sentiment("Bearish"); !strings.Contains(got, ColorRed) {
		t.Errorf("Bearish = %q", got)
	}
	if got := out.Sentiment(""); got != "" {
		t.Errorf("untagged = %q", got)
	}
}

func TestTableAlignsColumnsIgnoringANSI(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf, true)

	table := NewTable(out, "Date", "Verdict")
	table.AddRow("2026-08-21", out.Green("BUY"))
	table.AddRow("2026-08-22", out.Red("STRONG_SELL"))
	table.Render()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator and 2 rows, got %d lines", len(lines))
	}

	// Stripped of escapes, the Date column must be padded to equal width.
	row1 := stripANSI(lines[2])
	row2 := stripANSI(lines[3])
	if strings.Index(row1, "BUY") != strings.Index(row2, "STRONG_SELL") {
		t.Fatalf("second column misaligned:\n%q\n%q", row1, row2)
	}
}
