package core

import (
	"errors"
	"sort"
	"strings"
)

// ErrEmptyTable is returned when a source has no header row.
var ErrEmptyTable = errors.New("empty table: no header row")

// SpecRow is one data row. Raw holds the cell as read, Complete the value
// after forward-fill from the rows above. Both are indexed by column.
type SpecRow struct {
	raw      []string
	complete []string
}

// Raw returns the cell as read, or "" when col is out of range.
func (r SpecRow) Raw(col int) string {
	if col < 0 || col >= len(r.raw) {
		return ""
	}
	return r.raw[col]
}

// Complete returns the forward-filled value, or "" when col is out of range.
func (r SpecRow) Complete(col int) string {
	if col < 0 || col >= len(r.complete) {
		return ""
	}
	return r.complete[col]
}

// SpecTable is an ordered header list plus normalized rows.
// It is immutable once built; FilterBy returns a new table sharing rows.
type SpecTable struct {
	columns []string
	rows    []SpecRow
}

// NewSpecTable normalizes raw rows against headers.
//
// Every blank cell takes the complete value of the same column in the
// previous row, which is how vertically merged cells arrive from a sheet.
// Rows are padded or truncated to the header width. Only a missing or
// all-blank header row is an error.
func NewSpecTable(headers []string, rows [][]string) (*SpecTable, error) {
	if len(headers) == 0 {
		return nil, ErrEmptyTable
	}
	allBlank := true
	for _, h := range headers {
		if !isBlank(h) {
			allBlank = false
			break
		}
	}
	if allBlank {
		return nil, ErrEmptyTable
	}

	width := len(headers)
	t := &SpecTable{
		columns: make([]string, width),
		rows:    make([]SpecRow, 0, len(rows)),
	}
	for i, h := range headers {
		t.columns[i] = strings.TrimSpace(h)
	}

	var prev []string
	for _, cells := range rows {
		row := SpecRow{
			raw:      make([]string, width),
			complete: make([]string, width),
		}
		copy(row.raw, cells)

		for col := 0; col < width; col++ {
			v := row.raw[col]
			if isBlank(v) {
				if prev != nil {
					v = prev[col]
				} else {
					v = ""
				}
			}
			row.complete[col] = v
		}

		t.rows = append(t.rows, row)
		prev = row.complete
	}

	return t, nil
}

// Columns returns a copy of the header names.
func (t *SpecTable) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Width returns the number of columns.
func (t *SpecTable) Width() int {
	return len(t.columns)
}

// Column returns the header at col, or "" when out of range.
func (t *SpecTable) Column(col int) string {
	if col < 0 || col >= len(t.columns) {
		return ""
	}
	return t.columns[col]
}

// ColumnIndex returns the position of the first header equal to name, or -1.
func (t *SpecTable) ColumnIndex(name string) int {
	name = strings.TrimSpace(name)
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of data rows.
func (t *SpecTable) Len() int {
	return len(t.rows)
}

// Row returns row i.
func (t *SpecTable) Row(i int) SpecRow {
	return t.rows[i]
}

// FilterBy keeps the rows whose trimmed complete value in col equals value.
// Complete values are not recomputed: a row keeps what it inherited from
// rows that were filtered out.
func (t *SpecTable) FilterBy(col int, value string) *SpecTable {
	out := &SpecTable{columns: t.columns}
	if col < 0 || col >= len(t.columns) {
		return out
	}
	value = strings.TrimSpace(value)
	for _, r := range t.rows {
		if strings.TrimSpace(r.complete[col]) == value {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// DistinctValues returns the sorted set of trimmed, non-blank complete
// values of col. Cells are not split into atoms.
func (t *SpecTable) DistinctValues(col int) []string {
	return t.distinctWhere(col, -1, "")
}

// DistinctValuesWhere is DistinctValues restricted to rows whose trimmed
// complete value in filterCol equals match. A negative filterCol disables
// the restriction.
func (t *SpecTable) DistinctValuesWhere(col, filterCol int, match string) []string {
	return t.distinctWhere(col, filterCol, strings.TrimSpace(match))
}

func (t *SpecTable) distinctWhere(col, filterCol int, match string) []string {
	if col < 0 || col >= len(t.columns) {
		return nil
	}
	seen := make(map[string]struct{})
	for _, r := range t.rows {
		if filterCol >= 0 && strings.TrimSpace(r.Complete(filterCol)) != match {
			continue
		}
		v := strings.TrimSpace(r.complete[col])
		if v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// firstNonBlankAtom returns the first atom of the first non-blank complete
// value in col, scanning rows top to bottom.
func (t *SpecTable) firstNonBlankAtom(col int) string {
	for _, r := range t.rows {
		if a := firstAtom(r.Complete(col)); a != "" {
			return a
		}
	}
	return ""
}

// KindOfColumn decides the control kind of col once, from its first
// non-blank atom.
func (t *SpecTable) KindOfColumn(col int) ControlKind {
	return KindOf(t.firstNonBlankAtom(col))
}
