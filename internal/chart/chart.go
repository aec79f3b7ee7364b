// Package chart renders terminal charts for price history and indicator
// series.
package chart

import (
	"fmt"
	"io"
	"strings"
)

// Line draws an ASCII line chart of values with a y-axis scale, title and
// the given grid dimensions. Fewer than two points prints a placeholder.
func Line(w io.Writer, title string, values []float64, width, height int) {
	if width <= 0 {
		width = 60
	}
	if height <= 0 {
		height = 10
	}

	if title != "" {
		fmt.Fprintf(w, "  %s\n", title)
	}
	if len(values) < 2 {
		fmt.Fprintln(w, "  insufficient data to chart")
		return
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	padding := (hi - lo) * 0.05
	if padding == 0 {
		padding = 1
	}
	lo -= padding
	hi += padding

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = ' '
		}
	}

	for i := 0; i < len(values); i++ {
		x := i * width / len(values)
		y := int((values[i] - lo) / (hi - lo) * float64(height-1))
		if y >= 0 && y < height && x >= 0 && x < width {
			grid[height-1-y][x] = '█'
		}
	}

	for i := 0; i < height; i++ {
		label := strings.Repeat(" ", 10)
		if i == 0 {
			label = fmt.Sprintf("%10.2f", hi)
		} else if i == height-1 {
			label = fmt.Sprintf("%10.2f", lo)
		}
		fmt.Fprintf(w, "  %s │%s\n", label, string(grid[i]))
	}
	fmt.Fprintf(w, "  %s└%s\n", strings.Repeat(" ", 10), strings.Repeat("─", width))
}

// Sparkline renders a one-line block-character summary of values, resampled
// to at most 60 characters.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	mn, mx := values[0], values[0]
	for _, v := range values {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	span := mx - mn
	if span == 0 {
		span = 1
	}

	width := len(values)
	if width > 60 {
		width = 60
	}

	var sb strings.Builder
	for i := 0; i < width; i++ {
		idx := i * len(values) / width
		norm := (values[idx] - mn) / span
		bi := int(norm * float64(len(blocks)-1))
		if bi < 0 {
			bi = 0
		}
		if bi >= len(blocks) {
			bi = len(blocks) - 1
		}
		sb.WriteRune(blocks[bi])
	}
	return sb.String()
}
