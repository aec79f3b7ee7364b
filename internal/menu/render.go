package menu

import (
	"fmt"
	"sort"

	"finterm/internal/chart"
	"finterm/internal/cli"
	"finterm/internal/config"
	"finterm/internal/export"
	"finterm/internal/models"
)

// exportRows writes rows per the --export format, printing the destination
// or the failure. An empty format does nothing.
func exportRows(out *cli.Output, cfg *config.Config, basename, format string, rows interface{}) {
	if format == "" {
		return
	}
	path, err := export.Write(cfg.Export.Dir, basename, format, rows)
	if err != nil {
		out.Error("export failed: %v", err)
		return
	}
	out.Info("Exported to %s", path)
}

func (m *Main) export(basename, format string, rows interface{}) {
	exportRows(m.out, m.deps.Cfg, basename, format, rows)
}

// seriesNames returns the series keys in stable display order.
func seriesNames(series map[string][]float64) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// renderSeries prints the tail of an indicator series stack as a table,
// draws sparklines when charts are enabled, and exports long-format points.
// warmup is the first index at which every series carries a computed value;
// rows before it are skipped. Zero values past the warmup are legitimate
// data (MACD and A/D cross zero) and are never skipped.
func renderSeries(out *cli.Output, cfg *config.Config, title, ticker string,
	candles []models.Candle, series map[string][]float64, warmup, tailRows int, exportFmt string) {

	names := seriesNames(series)
	if len(names) == 0 {
		out.Warning("%s: nothing to display", title)
		return
	}

	out.Println()
	out.Bold("%s — %s", title, ticker)

	start := warmup
	if start < 0 || start >= len(candles) {
		start = 0
	}
	first := len(candles) - tailRows
	if first < start {
		first = start
	}

	headers := append([]string{"Date"}, names...)
	table := cli.NewTable(out, headers...)
	for i := first; i < len(candles); i++ {
		row := []string{cli.FormatDate(candles[i].Timestamp)}
		for _, name := range names {
			row = append(row, fmt.Sprintf("%.2f", series[name][i]))
		}
		table.AddRow(row...)
	}
	table.Render()

	if cfg.Terminal.Charts {
		out.Println()
		if len(names) == 1 {
			chart.Line(out.Writer(), names[0], series[names[0]][start:], 0, 0)
		} else {
			for _, name := range names {
				out.Printf("  %-24s %s\n", name, chart.Sparkline(series[name][start:]))
			}
		}
	}
	out.Println()

	if exportFmt != "" {
		points := make([]models.IndicatorPoint, 0, len(names)*(len(candles)-start))
		for _, name := range names {
			for i := start; i < len(candles); i++ {
				points = append(points, models.IndicatorPoint{
					Timestamp: cli.FormatDate(candles[i].Timestamp),
					Series:    name,
					Value:     series[name][i],
				})
			}
		}
		exportRows(out, cfg, fmt.Sprintf("%s_%s", title, ticker), exportFmt, &points)
	}
}
