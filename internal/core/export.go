package core

// export.go turns a SpecTable into the enum cross-referenced schema read by
// the external rules consumer.
//
// The consumer never sees the tree. Instead every column becomes an Option
// whose values carry the option id of their parent column ("filter") and
// the enum ids of the parent values they were observed with
// ("filter_Values"). "-1" stands for "unconstrained".
//
// Two simplifications are deliberate and shared with the consumer:
//   - only the first atom of a multi-valued parent cell is linked;
//   - leaf values are linked to the last hierarchy option unconditionally.

import (
	"strconv"
	"strings"
)

const unconstrained = "-1"

// OptionValue is one selectable value of an Option.
type OptionValue struct {
	EnumID       int        `json:"enumid"`
	Name         string     `json:"name"`
	Desc         string     `json:"desc"`
	Filter       []string   `json:"filter"`
	FilterValues [][]string `json:"filter_Values"`
}

// Option is one exported column.
type Option struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	DefaultValue string        `json:"default_Value"`
	Values       []OptionValue `json:"values"`
	Type         ControlType   `json:"type"`
}

// Series is the option set of one series (e.g. one bolt family).
type Series struct {
	Name    string   `json:"name"`
	CMD     string   `json:"CMD"`
	ID      int      `json:"id"`
	Options []Option `json:"option"`
}

// Classification groups series.
type Classification struct {
	Name   string   `json:"name"`
	ID     int      `json:"id"`
	Series []Series `json:"Series"`
}

// ExportSchema is the whole-table export.
type ExportSchema struct {
	Classification []Classification `json:"Classification"`
}

// SeriesSchema is the single-series export stored per part.
type SeriesSchema struct {
	Series []Series `json:"Series"`
}

// CodeEntry is one row of the name/code lookup sheet.
type CodeEntry struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	EnglishName string `json:"english_name,omitempty"`
}

// CodeBook maps series names to their external codes.
type CodeBook map[string]CodeEntry

// Code returns the code for name, or "" when unknown.
func (b CodeBook) Code(name string) string {
	if b == nil {
		return ""
	}
	return b[strings.TrimSpace(name)].Code
}

// Exporter builds ExportSchemas from one table and layout.
type Exporter struct {
	table  *SpecTable
	layout ResolvedLayout
	codes  CodeBook
}

// NewExporter resolves layout against the table headers.
func NewExporter(table *SpecTable, layout Layout, codes CodeBook) (*Exporter, error) {
	resolved, err := layout.Resolve(table.Columns())
	if err != nil {
		return nil, err
	}
	return &Exporter{table: table, layout: resolved, codes: codes}, nil
}

// Layout returns the resolved layout.
func (e *Exporter) Layout() ResolvedLayout {
	return e.layout
}

// Export builds the classification → series schema of the whole table.
//
// Classifications and series are sorted by name and numbered from 1. A
// sheet without a classification column exports one unnamed
// classification; a sheet without a series column exports one unnamed
// series covering every row.
func (e *Exporter) Export() ExportSchema {
	schema := ExportSchema{Classification: []Classification{}}

	classCol := e.classificationColumn()
	classes := []string{""}
	if classCol >= 0 {
		classes = e.table.DistinctValues(classCol)
	}

	for i, className := range classes {
		c := Classification{Name: className, ID: i + 1, Series: []Series{}}

		seriesID := 1
		for _, name := range e.seriesNames(classCol, className) {
			s, ok := e.buildSeries(name, seriesID)
			seriesID++
			if !ok {
				continue
			}
			c.Series = append(c.Series, s)
		}
		schema.Classification = append(schema.Classification, c)
	}
	return schema
}

// ExportSeries exports the single series called name. It returns false when
// no series of that name exists.
func (e *Exporter) ExportSeries(name string) (*SeriesSchema, bool) {
	classCol := e.classificationColumn()
	classes := []string{""}
	if classCol >= 0 {
		classes = e.table.DistinctValues(classCol)
	}

	name = strings.TrimSpace(name)
	for _, className := range classes {
		for i, candidate := range e.seriesNames(classCol, className) {
			if candidate != name {
				continue
			}
			s, ok := e.buildSeries(candidate, i+1)
			if !ok {
				return nil, false
			}
			return &SeriesSchema{Series: []Series{s}}, true
		}
	}
	return nil, false
}

// Options builds the option list of an arbitrary table that shares the
// exporter's headers, e.g. one series filtered by the caller.
func (e *Exporter) Options(rows *SpecTable) []Option {
	options := []Option{}
	optionOf := make(map[int]int)
	nextID := 0

	for _, col := range e.layout.Hierarchy {
		opt := e.hierarchyOption(rows, col, nextID, optionOf)
		if len(opt.Values) == 0 {
			continue
		}
		options = append(options, opt)
		optionOf[col] = nextID
		nextID++
	}

	for _, col := range e.layout.Leaves {
		opt, ok := e.leafOption(rows, col, nextID, optionOf)
		if !ok || len(opt.Values) == 0 {
			continue
		}
		options = append(options, opt)
		optionOf[col] = nextID
		nextID++
	}
	return options
}

// ControlFor returns the control type col would be exported with over rows.
// Excluded leaf columns report false.
func (e *Exporter) ControlFor(rows *SpecTable, col int) (ControlType, bool) {
	for _, h := range e.layout.Hierarchy {
		if h == col {
			if e.layout.IsMultiSelect(col, rows.Column(col)) {
				return ControlListBox, true
			}
			return ControlCombo, true
		}
	}

	switch rows.KindOfColumn(col) {
	case KindFreeText:
		return ControlEditBox, true
	case KindBoolean:
		return ControlCheckBox, true
	case KindExcluded:
		return "", false
	default:
		return ControlCombo, true
	}
}

func (e *Exporter) classificationColumn() int {
	if hasColumn(e.layout.ClassificationColumn, e.table.columns) {
		return e.layout.ClassificationColumn
	}
	return -1
}

func (e *Exporter) seriesColumn() int {
	if hasColumn(e.layout.SeriesColumn, e.table.columns) {
		return e.layout.SeriesColumn
	}
	return -1
}

func (e *Exporter) seriesNames(classCol int, className string) []string {
	seriesCol := e.seriesColumn()
	if seriesCol < 0 {
		return []string{""}
	}
	return e.table.DistinctValuesWhere(seriesCol, classCol, className)
}

// seriesRows returns the rows of series name, or the whole table when the
// sheet has no series column.
func (e *Exporter) seriesRows(name string) *SpecTable {
	seriesCol := e.seriesColumn()
	if seriesCol < 0 {
		return e.table
	}
	return e.table.FilterBy(seriesCol, name)
}

func (e *Exporter) buildSeries(name string, id int) (Series, bool) {
	rows := e.seriesRows(name)
	if rows.Len() == 0 {
		return Series{}, false
	}
	return Series{
		Name:    name,
		CMD:     e.codes.Code(name),
		ID:      id,
		Options: e.Options(rows),
	}, true
}

func (e *Exporter) hierarchyOption(rows *SpecTable, col, id int, optionOf map[int]int) Option {
	opt := Option{
		ID:           id,
		Name:         rows.Column(col),
		DefaultValue: "0",
		Type:         ControlCombo,
		Values:       []OptionValue{},
	}
	if e.layout.IsMultiSelect(col, opt.Name) {
		opt.Type = ControlListBox
	}

	parentCol := e.layout.ParentOf(col)
	parentOption := unconstrained
	if pid, ok := optionOf[parentCol]; ok && parentCol >= 0 {
		parentOption = strconv.Itoa(pid)
	}

	// Parent enum ids follow the first appearance of each parent atom,
	// which is how the parent option numbered its own values.
	parentEnum := newOrderedSet()
	if parentCol >= 0 {
		for i := 0; i < rows.Len(); i++ {
			for _, a := range SplitAtoms(rows.Row(i).Complete(parentCol)) {
				parentEnum.add(a)
			}
		}
	}

	values := newOrderedSet()
	var parents []*orderedSet
	for i := 0; i < rows.Len(); i++ {
		row := rows.Row(i)
		atoms := SplitAtoms(row.Complete(col))
		if len(atoms) == 0 {
			continue
		}
		parentValue := ""
		if parentCol >= 0 {
			parentValue = firstAtom(row.Complete(parentCol))
		}
		for _, a := range atoms {
			pos := values.add(a)
			if pos == len(parents) {
				parents = append(parents, newOrderedSet())
			}
			if parentValue != "" {
				parents[pos].add(parentValue)
			}
		}
	}

	for pos, name := range values.items {
		v := OptionValue{EnumID: pos, Name: name, Desc: ""}
		if parentOption == unconstrained {
			v.Filter = []string{unconstrained}
			v.FilterValues = [][]string{{unconstrained}}
		} else {
			ids := make([]string, 0, parents[pos].len())
			for _, p := range parents[pos].items {
				if enum, ok := parentEnum.position(p); ok {
					ids = append(ids, strconv.Itoa(enum))
				}
			}
			if len(ids) == 0 {
				ids = append(ids, unconstrained)
			}
			v.Filter = []string{parentOption}
			v.FilterValues = [][]string{ids}
		}
		opt.Values = append(opt.Values, v)
	}
	return opt
}

func (e *Exporter) leafOption(rows *SpecTable, col, id int, optionOf map[int]int) (Option, bool) {
	control, ok := e.ControlFor(rows, col)
	if !ok {
		return Option{}, false
	}

	opt := Option{
		ID:           id,
		Name:         rows.Column(col),
		DefaultValue: "0",
		Type:         control,
		Values:       []OptionValue{},
	}

	parentOption := unconstrained
	if pid, ok := optionOf[e.layout.LastHierarchy()]; ok {
		parentOption = strconv.Itoa(pid)
	}

	values := newOrderedSet()
	for i := 0; i < rows.Len(); i++ {
		for _, a := range SplitAtoms(rows.Row(i).Complete(col)) {
			if IsSentinel(a) {
				continue
			}
			values.add(a)
		}
	}

	for pos, name := range values.items {
		opt.Values = append(opt.Values, OptionValue{
			EnumID:       pos,
			Name:         name,
			Desc:         "",
			Filter:       []string{parentOption},
			FilterValues: [][]string{{unconstrained}},
		})
	}
	return opt, true
}
