package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoHierarchy is returned when a layout selects no usable hierarchy column.
var ErrNoHierarchy = errors.New("layout selects no hierarchy column")

// Layout assigns roles to the columns of a specification sheet by position.
//
// The standard sheet reads left to right as classification, series, the
// cascading hierarchy, then leaf attributes. A negative column disables the
// role.
type Layout struct {
	Name string `yaml:"name"`

	ClassificationColumn int `yaml:"classification_column"`
	SeriesColumn         int `yaml:"series_column"`

	// HierarchyFrom and HierarchyTo bound the hierarchy columns, inclusive.
	HierarchyFrom int `yaml:"hierarchy_from"`
	HierarchyTo   int `yaml:"hierarchy_to"`

	// LeafFrom is the first exported leaf column.
	LeafFrom int `yaml:"leaf_from"`

	// MultiSelectColumn is exported as a LISTBOX. When MultiSelectHeader is
	// set, a hierarchy column whose header contains it is treated the same
	// way. The standard layout leaves it empty.
	MultiSelectColumn int    `yaml:"multi_select_column"`
	MultiSelectHeader string `yaml:"multi_select_header"`

	// StandardColumn names the column holding standard numbers such as
	// "KS B 1002:2016".
	StandardColumn string `yaml:"standard_column"`

	// RequiredHeaders must all be present in the sheet.
	RequiredHeaders []string `yaml:"required_headers"`
}

// StandardLayout is the layout of the part specification workbook.
func StandardLayout() Layout {
	return Layout{
		Name:                 "standard",
		ClassificationColumn: 0,
		SeriesColumn:         1,
		HierarchyFrom:        2,
		HierarchyTo:          8,
		LeafFrom:             9,
		MultiSelectColumn:    8,
		StandardColumn:       "규격(표준번호)",
	}
}

// Validate checks the layout's internal consistency.
func (l Layout) Validate() error {
	var errs []string

	if l.Name == "" {
		errs = append(errs, "name is required")
	}
	if l.HierarchyFrom < 0 {
		errs = append(errs, "hierarchy_from must be non-negative")
	}
	if l.HierarchyTo < l.HierarchyFrom {
		errs = append(errs, fmt.Sprintf("hierarchy_to (%d) must be >= hierarchy_from (%d)", l.HierarchyTo, l.HierarchyFrom))
	}
	if l.LeafFrom <= l.HierarchyTo {
		errs = append(errs, fmt.Sprintf("leaf_from (%d) must be > hierarchy_to (%d)", l.LeafFrom, l.HierarchyTo))
	}
	for _, c := range []struct {
		name string
		col  int
	}{
		{"classification_column", l.ClassificationColumn},
		{"series_column", l.SeriesColumn},
	} {
		if c.col >= l.HierarchyFrom && c.col <= l.HierarchyTo {
			errs = append(errs, fmt.Sprintf("%s (%d) overlaps the hierarchy range", c.name, c.col))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("layout %q invalid:\n  - %s", l.Name, strings.Join(errs, "\n  - "))
	}
	return nil
}

// ResolvedLayout is a Layout applied to a concrete header row.
type ResolvedLayout struct {
	Layout

	Hierarchy []int
	Leaves    []int
}

// Resolve applies the layout to headers. Columns with blank headers never
// take a hierarchy or leaf role.
func (l Layout) Resolve(headers []string) (ResolvedLayout, error) {
	if err := ValidateHeaders(headers, l.RequiredHeaders); err != nil {
		return ResolvedLayout{}, err
	}

	r := ResolvedLayout{Layout: l}
	last := l.HierarchyTo
	if last > len(headers)-1 {
		last = len(headers) - 1
	}
	for i := l.HierarchyFrom; i <= last; i++ {
		if !isBlank(headers[i]) {
			r.Hierarchy = append(r.Hierarchy, i)
		}
	}
	for i := l.LeafFrom; i < len(headers); i++ {
		if !isBlank(headers[i]) {
			r.Leaves = append(r.Leaves, i)
		}
	}

	if len(r.Hierarchy) == 0 {
		return ResolvedLayout{}, fmt.Errorf("layout %q: %w", l.Name, ErrNoHierarchy)
	}
	return r, nil
}

// IsMultiSelect reports whether hierarchy column col is exported as a LISTBOX.
func (r ResolvedLayout) IsMultiSelect(col int, header string) bool {
	if col == r.MultiSelectColumn {
		return true
	}
	return r.MultiSelectHeader != "" && strings.Contains(header, r.MultiSelectHeader)
}

// ParentOf returns the hierarchy column preceding col, or -1.
func (r ResolvedLayout) ParentOf(col int) int {
	for i, c := range r.Hierarchy {
		if c == col {
			if i == 0 {
				return -1
			}
			return r.Hierarchy[i-1]
		}
	}
	return -1
}

// LastHierarchy returns the deepest hierarchy column.
func (r ResolvedLayout) LastHierarchy() int {
	return r.Hierarchy[len(r.Hierarchy)-1]
}

// hasColumn reports whether col addresses a header.
func hasColumn(col int, headers []string) bool {
	return col >= 0 && col < len(headers) && !isBlank(headers[col])
}
