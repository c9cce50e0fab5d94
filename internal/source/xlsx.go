package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/partspec/internal/core"
	"github.com/JonMunkholm/partspec/internal/logging"
)

// ReadWorkbook reads the specification and code sheets of an xlsx file.
func ReadWorkbook(ctx context.Context, path string, opts Options) (core.Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return core.Workbook{}, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	return readWorkbook(ctx, f, path, opts)
}

func readWorkbook(ctx context.Context, f *excelize.File, source string, opts Options) (core.Workbook, error) {
	log := logging.WithFields(ctx, "source", source)

	sheet := specSheet(f, opts.SpecSheet)
	if sheet == "" {
		return core.Workbook{}, fmt.Errorf("workbook %s: %w", source, core.ErrEmptyTable)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return core.Workbook{}, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	table, err := buildTable(ctx, rows)
	if err != nil {
		return core.Workbook{}, fmt.Errorf("sheet %s: %w", sheet, err)
	}

	codes, err := readCodes(f, opts.CodeSheet)
	if err != nil {
		return core.Workbook{}, err
	}
	if len(codes) == 0 && opts.CodeSheet != "" {
		log.Warn("no series codes found", "code_sheet", opts.CodeSheet)
	}

	log.Info("workbook loaded",
		"sheet", sheet,
		"columns", table.Width(),
		"rows", table.Len(),
		"codes", len(codes),
	)

	return core.Workbook{
		Source:   source,
		Table:    table,
		Codes:    codes,
		LoadedAt: time.Now(),
	}, nil
}

// specSheet picks the named sheet when it exists, else the first sheet.
func specSheet(f *excelize.File, preferred string) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, s := range sheets {
		if preferred != "" && strings.TrimSpace(s) == preferred {
			return s
		}
	}
	return sheets[0]
}

// readCodes reads code | name | english rows below a header row. Rows
// missing a code or a name are skipped and a later row for the same name
// replaces an earlier one. A missing sheet yields an empty book.
func readCodes(f *excelize.File, sheet string) (core.CodeBook, error) {
	codes := core.CodeBook{}
	if sheet == "" {
		return codes, nil
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, fmt.Errorf("code sheet %s: %w", sheet, err)
	}
	if idx < 0 {
		return codes, nil
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read code sheet %s: %w", sheet, err)
	}
	for i, row := range rows {
		if i == 0 {
			continue
		}
		code := cell(row, 0)
		name := cell(row, 1)
		if code == "" || name == "" {
			continue
		}
		codes[name] = core.CodeEntry{
			Code:        code,
			Name:        name,
			EnglishName: cell(row, 2),
		}
	}
	return codes, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(CleanCell(row[i]))
}
