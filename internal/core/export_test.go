package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// smallLayout reads 분류 | 시리즈 | hierarchy 2..3 | leaves from 4.
func smallLayout() Layout {
	return Layout{
		Name:                 "small",
		ClassificationColumn: 0,
		SeriesColumn:         1,
		HierarchyFrom:        2,
		HierarchyTo:          3,
		LeafFrom:             4,
		MultiSelectColumn:    3,
	}
}

func smallExporter(t *testing.T, rows [][]string, codes CodeBook) *Exporter {
	t.Helper()
	table, err := NewSpecTable([]string{"분류", "시리즈", "종류", "사이즈", "비고"}, rows)
	require.NoError(t, err)
	e, err := NewExporter(table, smallLayout(), codes)
	require.NoError(t, err)
	return e
}

func TestExport_Grouping(t *testing.T) {
	schema := fixtureExporter(t).Export()

	require.Len(t, schema.Classification, 2)
	pipes, fasteners := schema.Classification[0], schema.Classification[1]

	assert.Equal(t, "배관류", pipes.Name)
	assert.Equal(t, 1, pipes.ID)
	require.Len(t, pipes.Series, 1)
	assert.Equal(t, "피팅", pipes.Series[0].Name)
	assert.Equal(t, "FT", pipes.Series[0].CMD)
	assert.Equal(t, 1, pipes.Series[0].ID)

	assert.Equal(t, "체결류", fasteners.Name)
	assert.Equal(t, 2, fasteners.ID)
	require.Len(t, fasteners.Series, 2)
	assert.Equal(t, "너트", fasteners.Series[0].Name)
	assert.Equal(t, 1, fasteners.Series[0].ID)
	assert.Equal(t, "볼트", fasteners.Series[1].Name)
	assert.Equal(t, "BT", fasteners.Series[1].CMD)
	assert.Equal(t, 2, fasteners.Series[1].ID)
}

func TestExport_BoltOptions(t *testing.T) {
	schema, ok := fixtureExporter(t).ExportSeries("볼트")
	require.True(t, ok)
	require.Len(t, schema.Series, 1)

	bolt := schema.Series[0]
	assert.Equal(t, 2, bolt.ID)

	names := make([]string, 0, len(bolt.Options))
	for i, o := range bolt.Options {
		assert.Equal(t, i, o.ID, "option ids are positional")
		assert.Equal(t, "0", o.DefaultValue)
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"종류", "재질", "사이즈", "비고"}, names)

	kind := optionByName(t, bolt.Options, "종류")
	assert.Equal(t, ControlCombo, kind.Type)
	require.Len(t, kind.Values, 1)
	assert.Equal(t, []string{"-1"}, kind.Values[0].Filter)
	assert.Equal(t, [][]string{{"-1"}}, kind.Values[0].FilterValues)

	material := optionByName(t, bolt.Options, "재질")
	assert.Equal(t, []string{"SUS304", "SS400"}, valueNames(material.Values))
	assert.Equal(t, []string{"0"}, material.Values[1].Filter)
	assert.Equal(t, [][]string{{"0"}}, material.Values[1].FilterValues)

	size := optionByName(t, bolt.Options, "사이즈")
	assert.Equal(t, ControlListBox, size.Type)
	assert.Equal(t, []string{"M10", "M12"}, valueNames(size.Values))
	assert.Equal(t, 1, size.Values[1].EnumID)
	assert.Equal(t, []string{"1"}, size.Values[0].Filter)
	assert.Equal(t, [][]string{{"0", "1"}}, size.Values[0].FilterValues, "M10 appears under both materials")
	assert.Equal(t, [][]string{{"0"}}, size.Values[1].FilterValues)

	note := optionByName(t, bolt.Options, "비고")
	assert.Equal(t, ControlCombo, note.Type)
	assert.Equal(t, []string{"2"}, note.Values[0].Filter, "leaves link to the last hierarchy option")
	assert.Equal(t, [][]string{{"-1"}}, note.Values[0].FilterValues)
}

func TestExport_FreeTextColumnHasNoValues(t *testing.T) {
	e := fixtureExporter(t)
	bolts := e.table.FilterBy(colSeries, "볼트")

	control, ok := e.ControlFor(bolts, colPlating)
	assert.True(t, ok)
	assert.Equal(t, ControlEditBox, control)

	for _, o := range e.Options(bolts) {
		assert.NotEqual(t, "도금", o.Name, "a column holding only E exports no values")
	}
}

func TestExport_ControlFor(t *testing.T) {
	e := fixtureExporter(t)
	table := e.table

	tests := []struct {
		name string
		col  int
		want ControlType
		ok   bool
	}{
		{name: "hierarchy", col: colMaterial, want: ControlCombo, ok: true},
		{name: "multi select", col: colSize, want: ControlListBox, ok: true},
		{name: "normal leaf", col: colNote, want: ControlCombo, ok: true},
		{name: "free text", col: colPlating, want: ControlEditBox, ok: true},
		{name: "boolean", col: colMarking, want: ControlCheckBox, ok: true},
		{name: "excluded", col: colUnused, want: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.ControlFor(table, tt.col)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExport_OnlyDesignatedColumnIsListBox(t *testing.T) {
	headers := []string{"분류", "시리즈", "종류", "나사사이즈", "", "", "", "", "사이즈", "비고"}
	rows := [][]string{
		{"체결류", "볼트", "육각", "M3", "", "", "", "", "10, 12", "표준"},
	}
	table, err := NewSpecTable(headers, rows)
	require.NoError(t, err)
	e, err := NewExporter(table, StandardLayout(), CodeBook{})
	require.NoError(t, err)

	opts := e.Options(table)
	assert.Equal(t, ControlCombo, optionByName(t, opts, "나사사이즈").Type)
	assert.Equal(t, ControlListBox, optionByName(t, opts, "사이즈").Type)

	control, ok := e.ControlFor(table, 3)
	assert.True(t, ok)
	assert.Equal(t, ControlCombo, control)
}

func TestExport_LowercaseLeafAtomsAreValues(t *testing.T) {
	e := smallExporter(t, [][]string{
		{"체결류", "볼트", "육각", "M10", "표준, x, c, C"},
	}, CodeBook{})

	note := optionByName(t, e.Options(e.table), "비고")
	assert.Equal(t, ControlCombo, note.Type)
	assert.Equal(t, []string{"표준", "x", "c"}, valueNames(note.Values))
}

func TestExport_NutKeepsRealPlating(t *testing.T) {
	schema, ok := fixtureExporter(t).ExportSeries("너트")
	require.True(t, ok)

	plating := optionByName(t, schema.Series[0].Options, "도금")
	assert.Equal(t, ControlCombo, plating.Type)
	assert.Equal(t, []string{"아연"}, valueNames(plating.Values))
	assert.Equal(t, 4, plating.ID)
}

func TestExportSeries_Missing(t *testing.T) {
	schema, ok := fixtureExporter(t).ExportSeries("없음")
	assert.False(t, ok)
	assert.Nil(t, schema)
}

func TestExport_RoundTripFirstLevel(t *testing.T) {
	s := fixtureService(t)

	for _, class := range s.Catalog() {
		for _, info := range class.Series {
			tree, err := s.Tree(info.Name)
			require.NoError(t, err)
			schema, err := s.ExportSeries(info.Name)
			require.NoError(t, err)

			first := schema.Series[0].Options[0]
			assert.Equal(t, tree.AvailableValues(SelectionPath{}, colType), valueNames(first.Values), info.Name)
		}
	}
}

func TestExport_FirstParentAtomWins(t *testing.T) {
	e := smallExporter(t, [][]string{{"K", "S", "A, B", "c", "n"}}, nil)

	options := e.Options(e.table)
	kind := optionByName(t, options, "종류")
	assert.Equal(t, []string{"A", "B"}, valueNames(kind.Values))

	size := optionByName(t, options, "사이즈")
	assert.Equal(t, [][]string{{"0"}}, size.Values[0].FilterValues, "only the first parent atom is linked")
}

func TestExport_EmptyHierarchyColumnKeepsIDsDense(t *testing.T) {
	table, err := NewSpecTable(
		[]string{"분류", "시리즈", "종류", "재질", "사이즈", "비고"},
		[][]string{
			{"K", "S", "T", "", "M1", "n"},
			{"", "", "", "", "M2", ""},
		},
	)
	require.NoError(t, err)
	e, err := NewExporter(table, Layout{
		Name:              "gap",
		HierarchyFrom:     2,
		HierarchyTo:       4,
		LeafFrom:          5,
		SeriesColumn:      1,
		MultiSelectColumn: 4,
	}, nil)
	require.NoError(t, err)

	options := e.Options(table)
	require.Len(t, options, 3)
	assert.Equal(t, []string{"종류", "사이즈", "비고"}, []string{options[0].Name, options[1].Name, options[2].Name})
	assert.Equal(t, 1, options[1].ID)
	assert.Equal(t, []string{"-1"}, options[1].Values[0].Filter, "the parent option was skipped")
	assert.Equal(t, []string{"1"}, options[2].Values[0].Filter)
}

func TestExport_WithoutClassificationColumn(t *testing.T) {
	table, err := NewSpecTable(
		[]string{"시리즈", "종류", "비고"},
		[][]string{{"S", "T", "n"}},
	)
	require.NoError(t, err)
	e, err := NewExporter(table, Layout{
		Name:                 "flat",
		ClassificationColumn: -1,
		SeriesColumn:         0,
		HierarchyFrom:        1,
		HierarchyTo:          1,
		LeafFrom:             2,
		MultiSelectColumn:    -1,
	}, nil)
	require.NoError(t, err)

	schema := e.Export()
	require.Len(t, schema.Classification, 1)
	assert.Equal(t, "", schema.Classification[0].Name)
	require.Len(t, schema.Classification[0].Series, 1)
	assert.Equal(t, "S", schema.Classification[0].Series[0].Name)
}

func TestExport_JSONShape(t *testing.T) {
	e := smallExporter(t, [][]string{
		{"A", "S", "T1", "M1", "n"},
		{"", "", "T2", "M1", ""},
	}, CodeBook{"S": {Code: "S01", Name: "S"}})

	schema, ok := e.ExportSeries("S")
	require.True(t, ok)

	got, err := json.Marshal(schema)
	require.NoError(t, err)

	want := `{"Series":[{"name":"S","CMD":"S01","id":1,"option":[` +
		`{"id":0,"name":"종류","default_Value":"0","values":[` +
		`{"enumid":0,"name":"T1","desc":"","filter":["-1"],"filter_Values":[["-1"]]},` +
		`{"enumid":1,"name":"T2","desc":"","filter":["-1"],"filter_Values":[["-1"]]}],"type":"COMBO"},` +
		`{"id":1,"name":"사이즈","default_Value":"0","values":[` +
		`{"enumid":0,"name":"M1","desc":"","filter":["0"],"filter_Values":[["0","1"]]}],"type":"LISTBOX"},` +
		`{"id":2,"name":"비고","default_Value":"0","values":[` +
		`{"enumid":0,"name":"n","desc":"","filter":["1"],"filter_Values":[["-1"]]}],"type":"COMBO"}]}]}`
	assert.Equal(t, want, string(got))
}

func TestEncodeJSON(t *testing.T) {
	data, err := EncodeJSON(map[string]string{"name": "<M10>"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"<M10>\"\n}", string(data))
}

func TestCodeBook(t *testing.T) {
	assert.Equal(t, "BT", fixtureCodes.Code(" 볼트 "))
	assert.Equal(t, "", fixtureCodes.Code("없음"))

	var empty CodeBook
	assert.Equal(t, "", empty.Code("볼트"))
}
