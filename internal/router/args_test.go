package router

import (
	"bytes"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"finterm/internal/errors"
)

func TestParseIntList(t *testing.T) {
	p := NewParser("ema")
	lengths := p.PositiveIntList("length", "l", []int{20, 50}, "window lengths")

	if err := p.Parse([]string{"--length", "20,50,200"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if want := []int{20, 50, 200}; !reflect.DeepEqual(*lengths, want) {
		t.Fatalf("lengths = %v, want %v", *lengths, want)
	}
}

func TestParseIntListDefaults(t *testing.T) {
	p := NewParser("ema")
	lengths := p.PositiveIntList("length", "l", []int{20, 50}, "window lengths")

	if err := p.Parse(nil); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if want := []int{20, 50}; !reflect.DeepEqual(*lengths, want) {
		t.Fatalf("lengths = %v, want %v", *lengths, want)
	}
}

func TestParseIntListCoercionFailure(t *testing.T) {
	p := NewParser("ema")
	p.PositiveIntList("length", "l", []int{20, 50}, "window lengths")

	err := p.Parse([]string{"--length", "20,abc"})
	var argErr *errors.ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected ArgumentError, got %v", err)
	}
}

func TestParseRejectsUnknownFlag(t *testing.T) {
	p := NewParser("rsi")
	p.PositiveInt("length", "l", 14, "window length")

	err := p.Parse([]string{"--bogus", "1"})
	var argErr *errors.ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected ArgumentError for unknown flag, got %v", err)
	}
}

func TestParseRejectsRepeatedFlag(t *testing.T) {
	cases := [][]string{
		{"--length", "20", "--length", "30"},
		{"--length", "20", "-l", "30"},
		{"--length=20", "--length=30"},
	}
	for _, tokens := range cases {
		p := NewParser("sma")
		p.PositiveIntList("length", "l", []int{20}, "window lengths")

		err := p.Parse(tokens)
		var argErr *errors.ArgumentError
		if !errors.As(err, &argErr) {
			t.Errorf("tokens %v: expected ArgumentError, got %v", tokens, err)
		}
	}
}

func TestPositiveIntRejectsZeroAndNegative(t *testing.T) {
	for _, val := range []string{"0", "-3"} {
		p := NewParser("rsi")
		p.PositiveInt("length", "l", 14, "window length")

		err := p.Parse([]string{"--length", val})
		var argErr *errors.ArgumentError
		if !errors.As(err, &argErr) {
			t.Errorf("--length %s: expected ArgumentError, got %v", val, err)
		}
	}
}

func TestNonNegativeIntAcceptsZero(t *testing.T) {
	p := NewParser("ema")
	offset := p.NonNegativeInt("offset", "o", 0, "forward displacement")

	if err := p.Parse([]string{"--offset", "0"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if *offset != 0 {
		t.Fatalf("offset = %d, want 0", *offset)
	}
}

func TestNonNegativeIntRejectsNegative(t *testing.T) {
	p := NewParser("ema")
	p.NonNegativeInt("offset", "o", 0, "forward displacement")

	err := p.Parse([]string{"--offset", "-1"})
	var argErr *errors.ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected ArgumentError, got %v", err)
	}
}

func TestChoiceRestrictsValues(t *testing.T) {
	p := NewParser("load")
	interval := p.Choice("interval", "i", "1440min", "sampling interval",
		"1min", "5min", "15min", "30min", "60min", "1440min", "week")

	if err := p.Parse([]string{"--interval", "5min"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if *interval != "5min" {
		t.Fatalf("interval = %q, want 5min", *interval)
	}

	p2 := NewParser("load")
	p2.Choice("interval", "i", "1440min", "sampling interval",
		"1min", "5min", "15min", "30min", "60min", "1440min", "week")
	err := p2.Parse([]string{"--interval", "2min"})
	var argErr *errors.ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected ArgumentError, got %v", err)
	}
}

func TestPositiveFloatRejectsNonPositive(t *testing.T) {
	p := NewParser("bbands")
	p.PositiveFloat("std", "s", 2.0, "standard deviation multiplier")

	err := p.Parse([]string{"--std", "0"})
	var argErr *errors.ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected ArgumentError, got %v", err)
	}
}

func TestExportFlag(t *testing.T) {
	for _, val := range []string{"csv", "json", "tsv"} {
		p := NewParser("rsi")
		export := p.ExportFlag()
		if err := p.Parse([]string{"--export", val}); err != nil {
			t.Fatalf("--export %s failed: %v", val, err)
		}
		if *export != val {
			t.Fatalf("export = %q, want %q", *export, val)
		}
	}

	p := NewParser("rsi")
	export := p.ExportFlag()
	if err := p.Parse(nil); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if *export != "" {
		t.Fatalf("default export = %q, want empty", *export)
	}

	p2 := NewParser("rsi")
	p2.ExportFlag()
	err := p2.Parse([]string{"--export", "xlsx"})
	var argErr *errors.ArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("expected ArgumentError for xlsx, got %v", err)
	}
}

func TestArgsReturnsPositionals(t *testing.T) {
	p := NewParser("load")
	p.Choice("interval", "i", "1440min", "sampling interval", "1440min", "week")

	if err := p.Parse([]string{"GME", "--interval", "week"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if want := []string{"GME"}; !reflect.DeepEqual(p.Args(), want) {
		t.Fatalf("Args() = %v, want %v", p.Args(), want)
	}
}

func TestParseKnownPrintsDiagnosticAndReportsFalse(t *testing.T) {
	var out bytes.Buffer
	p := NewParser("ema")
	p.NonNegativeInt("offset", "o", 0, "forward displacement")

	if ok := p.ParseKnown(&out, []string{"--offset", "-1"}); ok {
		t.Fatal("ParseKnown reported true on invalid input")
	}
	if out.Len() == 0 {
		t.Fatal("ParseKnown printed no diagnostic")
	}
}

func TestParseKnownSucceedsSilently(t *testing.T) {
	var out bytes.Buffer
	p := NewParser("ema")
	p.NonNegativeInt("offset", "o", 0, "forward displacement")

	if ok := p.ParseKnown(&out, []string{"--offset", "2"}); !ok {
		t.Fatalf("ParseKnown failed: %q", out.String())
	}
	if out.Len() != 0 {
		t.Fatalf("ParseKnown printed on success: %q", out.String())
	}
}

func TestParseKnownHelpPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	p := NewParser("macd")
	p.PositiveInt("fast", "f", 12, "fast EMA period")
	p.PositiveInt("slow", "s", 26, "slow EMA period")

	if ok := p.ParseKnown(&out, []string{"--help"}); ok {
		t.Fatal("ParseKnown reported true for --help")
	}
	usage := out.String()
	if !strings.Contains(usage, "usage: macd") {
		t.Fatalf("usage header missing: %q", usage)
	}
	if !strings.Contains(usage, "--fast") || !strings.Contains(usage, "--slow") {
		t.Fatalf("usage does not list flags: %q", usage)
	}
}

func TestProperty_IntListRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("comma-joined positive ints parse back to the same list", prop.ForAll(
		func(values []int) bool {
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = strconv.Itoa(v)
			}

			p := NewParser("sma")
			parsed := p.PositiveIntList("length", "l", []int{20}, "window lengths")
			if err := p.Parse([]string{"--length", strings.Join(parts, ",")}); err != nil {
				return false
			}
			return reflect.DeepEqual(*parsed, values)
		},
		gen.SliceOfN(3, gen.IntRange(1, 500)).SuchThat(func(v []int) bool { return len(v) > 0 }),
	))

	properties.TestingRun(t)
}
