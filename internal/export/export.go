// Package export writes fetched datasets to disk in the formats the
// --export flag accepts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"

	"finterm/internal/errors"
)

// Formats lists the accepted --export values.
var Formats = []string{"csv", "json", "tsv"}

// Write serializes rows (a slice of csv-tagged structs) into dir under a
// timestamped file name and returns the written path. An empty format is a
// no-op and returns the empty path.
func Write(dir, basename, format string, rows interface{}) (string, error) {
	if format == "" {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("%s_%s.%s", stamp, basename, format)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(format) {
	case "csv":
		if err := gocsv.Marshal(rows, f); err != nil {
			return "", fmt.Errorf("failed to write csv: %w", err)
		}
	case "tsv":
		w := csv.NewWriter(f)
		w.Comma = '\t'
		if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(w)); err != nil {
			return "", fmt.Errorf("failed to write tsv: %w", err)
		}
	case "json":
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return "", fmt.Errorf("failed to write json: %w", err)
		}
	default:
		return "", errors.Wrapf(errors.ErrExportFormat, "unsupported format %q", format)
	}

	return path, nil
}
