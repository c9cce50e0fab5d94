package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Column positions of the fixture sheet under the standard layout.
const (
	colClass    = 0
	colSeries   = 1
	colType     = 2
	colMaterial = 3
	colSize     = 8
	colNote     = 9
	colPlating  = 10
	colMarking  = 11
	colUnused   = 12
)

var fixtureHeaders = []string{
	"분류", "시리즈", "종류", "재질", "", "", "", "", "사이즈",
	"비고", "도금", "각인", "사용안함",
}

// fixtureRows relies on forward-fill: blank cells repeat the row above.
var fixtureRows = [][]string{
	{"체결류", "볼트", "육각", "SUS304", "", "", "", "", "M10, M12", "표준", "E", "C", "X"},
	{"", "", "", "SS400", "", "", "", "", "M10", "", "", "", ""},
	{"", "너트", "육각", "SUS304", "", "", "", "", "M8", "고강도", "아연", "", ""},
	{"배관류", "피팅", "엘보", "PVC", "", "", "", "", "25A", "", "", "", ""},
}

var fixtureCodes = CodeBook{
	"볼트": {Code: "BT", Name: "볼트", EnglishName: "Bolt"},
	"너트": {Code: "NT", Name: "너트", EnglishName: "Nut"},
	"피팅": {Code: "FT", Name: "피팅"},
}

func fixtureTable(t *testing.T) *SpecTable {
	t.Helper()
	table, err := NewSpecTable(fixtureHeaders, fixtureRows)
	require.NoError(t, err)
	return table
}

func fixtureExporter(t *testing.T) *Exporter {
	t.Helper()
	e, err := NewExporter(fixtureTable(t), StandardLayout(), fixtureCodes)
	require.NoError(t, err)
	return e
}

func fixtureService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(Workbook{
		Source: "fixture.xlsx",
		Table:  fixtureTable(t),
		Codes:  fixtureCodes,
	}, StandardLayout())
	require.NoError(t, err)
	return s
}

// optionByName finds an exported option, failing the test when absent.
func optionByName(t *testing.T, options []Option, name string) Option {
	t.Helper()
	for _, o := range options {
		if o.Name == name {
			return o
		}
	}
	require.Failf(t, "option not found", "%s", name)
	return Option{}
}

func valueNames(values []OptionValue) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, v.Name)
	}
	return out
}
