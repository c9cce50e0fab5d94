// Package source reads specification sheets into core tables.
//
// Workbooks are read with excelize, CSV files with encoding/csv behind an
// x/text decoder. Both produce the same thing: the first row as headers,
// every following non-empty row as raw cells. Forward-fill and everything
// after it happen in core.
package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/partspec/internal/config"
	"github.com/JonMunkholm/partspec/internal/core"
)

// ErrUnsupportedFormat is returned by Open for unknown file extensions.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// Default sheet names of the part specification workbook.
const (
	DefaultSpecSheet = "규격정리"
	DefaultCodeSheet = "Name_Code"
)

// Options controls how a source is read.
type Options struct {
	// SpecSheet is preferred over the first worksheet when present.
	SpecSheet string
	// CodeSheet holds code | name | english rows. Missing is not an error.
	CodeSheet string
	// Encoding of CSV input: "utf-8" (default) or "euc-kr".
	Encoding string
}

// DefaultOptions returns the options of the standard workbook.
func DefaultOptions() Options {
	return Options{
		SpecSheet: DefaultSpecSheet,
		CodeSheet: DefaultCodeSheet,
		Encoding:  "utf-8",
	}
}

// OptionsFromConfig maps sheet settings onto reader options. Blank sheet
// names fall back to the defaults.
func OptionsFromConfig(c config.SheetConfig) Options {
	opts := DefaultOptions()
	if c.SpecSheet != "" {
		opts.SpecSheet = c.SpecSheet
	}
	if c.CodeSheet != "" {
		opts.CodeSheet = c.CodeSheet
	}
	if c.Encoding != "" {
		opts.Encoding = c.Encoding
	}
	return opts
}

// Open reads path into a workbook, dispatching on the file extension.
func Open(ctx context.Context, path string, opts Options) (core.Workbook, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ReadWorkbook(ctx, path, opts)
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return core.Workbook{}, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		table, err := ReadCSV(ctx, f, opts)
		if err != nil {
			return core.Workbook{}, fmt.Errorf("read %s: %w", path, err)
		}
		return core.Workbook{
			Source:   path,
			Table:    table,
			Codes:    core.CodeBook{},
			LoadedAt: time.Now(),
		}, nil
	default:
		return core.Workbook{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// CleanCell removes the ="..." wrapper spreadsheet exports put around
// values that would otherwise be read as numbers. Anything else is returned
// unchanged; trimming is left to the consumers.
func CleanCell(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, `="`) && strings.HasSuffix(t, `"`) && len(t) >= 3 {
		return t[2 : len(t)-1]
	}
	return s
}

// buildTable splits records into headers and data rows. Rows without a
// single non-blank cell are dropped so trailing empty lines do not repeat
// the last part.
func buildTable(ctx context.Context, records [][]string) (*core.SpecTable, error) {
	if len(records) == 0 {
		return nil, core.ErrEmptyTable
	}

	headers := cleanRow(records[0])
	rows := make([][]string, 0, len(records)-1)
	for i, rec := range records[1:] {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := cleanRow(rec)
		if blankRow(row) {
			continue
		}
		rows = append(rows, row)
	}
	return core.NewSpecTable(headers, rows)
}

func cleanRow(rec []string) []string {
	out := make([]string, len(rec))
	for i, c := range rec {
		out[i] = CleanCell(c)
	}
	return out
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
