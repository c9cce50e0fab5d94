package core

import (
	"sort"
	"strings"
)

// SeriesInfo describes one series for pickers.
type SeriesInfo struct {
	Name string `json:"name"`
	Code string `json:"code"`
	Rows int    `json:"rows"`
}

// ClassificationInfo groups series by classification.
type ClassificationInfo struct {
	Name   string       `json:"name"`
	Series []SeriesInfo `json:"series"`
}

// Catalog lists classifications and their series, both sorted by name.
func (e *Exporter) Catalog() []ClassificationInfo {
	classCol := e.classificationColumn()
	classes := []string{""}
	if classCol >= 0 {
		classes = e.table.DistinctValues(classCol)
	}

	out := make([]ClassificationInfo, 0, len(classes))
	for _, className := range classes {
		info := ClassificationInfo{Name: className, Series: []SeriesInfo{}}
		for _, name := range e.seriesNames(classCol, className) {
			info.Series = append(info.Series, SeriesInfo{
				Name: name,
				Code: e.codes.Code(name),
				Rows: e.seriesRows(name).Len(),
			})
		}
		out = append(out, info)
	}
	return out
}

// ClassificationOf returns the classification of the first row of series
// name, or "" when unknown.
func (e *Exporter) ClassificationOf(name string) string {
	classCol := e.classificationColumn()
	if classCol < 0 {
		return ""
	}
	rows := e.seriesRows(name)
	if rows.Len() == 0 {
		return ""
	}
	return strings.TrimSpace(rows.Row(0).Complete(classCol))
}

// HasSeries reports whether name is a series of the table. Sheets without a
// series column only know the unnamed series.
func (e *Exporter) HasSeries(name string) bool {
	if e.seriesColumn() < 0 {
		return strings.TrimSpace(name) == ""
	}
	return e.seriesRows(name).Len() > 0
}

// StandardTypes extracts the standard bodies used in col: the text before
// the first space of each value ("KS B 1002:2016" → "KS"), sorted.
func StandardTypes(t *SpecTable, col int) []string {
	seen := make(map[string]struct{})
	for i := 0; i < t.Len(); i++ {
		fields := strings.Fields(t.Row(i).Complete(col))
		if len(fields) == 0 {
			continue
		}
		seen[fields[0]] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// StandardsByType returns the distinct complete values of col that start
// with kind followed by a space, sorted.
func StandardsByType(t *SpecTable, col int, kind string) []string {
	prefix := kind + " "
	seen := make(map[string]struct{})
	for i := 0; i < t.Len(); i++ {
		v := t.Row(i).Complete(col)
		if isBlank(v) || !strings.HasPrefix(v, prefix) {
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
