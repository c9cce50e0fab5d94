package core

// resolver.go answers cascading selection queries against a Tree.
//
// A caller drives the cascade by holding a SelectionPath and asking, after
// every change, which values the next unresolved level offers
// (AvailableValues). Once every level is chosen, LeafValues exposes the
// attributes of the selected leaf. Queries never modify the tree or path.

import "sort"

// SelectionPath is an immutable column-index to value mapping.
// The zero value is an empty path.
type SelectionPath struct {
	sel map[int]string
}

// NewSelectionPath copies sel into a path.
func NewSelectionPath(sel map[int]string) SelectionPath {
	p := SelectionPath{sel: make(map[int]string, len(sel))}
	for col, v := range sel {
		p.sel[col] = v
	}
	return p
}

// Get returns the selected value of col.
func (p SelectionPath) Get(col int) (string, bool) {
	v, ok := p.sel[col]
	return v, ok
}

// Len returns the number of selected columns.
func (p SelectionPath) Len() int {
	return len(p.sel)
}

// Columns returns the selected columns in ascending order.
func (p SelectionPath) Columns() []int {
	cols := make([]int, 0, len(p.sel))
	for c := range p.sel {
		cols = append(cols, c)
	}
	sort.Ints(cols)
	return cols
}

// Map returns a copy of the selection.
func (p SelectionPath) Map() map[int]string {
	out := make(map[int]string, len(p.sel))
	for c, v := range p.sel {
		out[c] = v
	}
	return out
}

// With returns a new path selecting value at col. Every selection to the
// right of col is dropped since it may no longer be reachable.
func (p SelectionPath) With(col int, value string) SelectionPath {
	next := SelectionPath{sel: make(map[int]string, len(p.sel)+1)}
	for c, v := range p.sel {
		if c < col {
			next.sel[c] = v
		}
	}
	next.sel[col] = value
	return next
}

// Without returns a new path with col and every column to its right removed.
func (p SelectionPath) Without(col int) SelectionPath {
	next := SelectionPath{sel: make(map[int]string, len(p.sel))}
	for c, v := range p.sel {
		if c < col {
			next.sel[c] = v
		}
	}
	return next
}

// AvailableValues returns the distinct values offered at target given path.
//
// The walk starts at the roots. On reaching target's level, the values of
// every reachable node are returned in node order. Before that, each level
// must be selected in path and must match a node; otherwise the result is
// empty. A target that is not a hierarchy column yields nil.
func (t *Tree) AvailableValues(path SelectionPath, target int) []string {
	current := t.roots
	for _, col := range t.levels {
		if col == target {
			seen := newOrderedSet()
			for _, id := range current {
				seen.add(t.nodes[id].Value)
			}
			return seen.items
		}

		selected, ok := path.Get(col)
		if !ok {
			return nil
		}
		current = t.descend(current, selected)
		if len(current) == 0 {
			return nil
		}
	}
	return nil
}

// descend returns the children of every node in ids holding value.
func (t *Tree) descend(ids []NodeID, value string) []NodeID {
	var next []NodeID
	for _, id := range ids {
		if t.nodes[id].Value == value {
			next = append(next, t.nodes[id].children...)
		}
	}
	return next
}

// matching returns the nodes in ids holding value.
func (t *Tree) matching(ids []NodeID, value string) []NodeID {
	var out []NodeID
	for _, id := range ids {
		if t.nodes[id].Value == value {
			out = append(out, id)
		}
	}
	return out
}

// LeafField is the resolved content of one leaf column.
//
// Values never contains sentinel atoms. Enabled says whether a control for
// the column should accept input: normal columns need at least one value,
// free text and boolean columns need their sentinel among the raw atoms,
// excluded columns are never enabled.
type LeafField struct {
	Column  int         `json:"column"`
	Name    string      `json:"name"`
	Kind    ControlKind `json:"kind"`
	Values  []string    `json:"values"`
	Enabled bool        `json:"enabled"`
}

// LeafValues merges the leaf attributes of every node matched by a complete
// path. Stored cells are re-split into atoms and de-duplicated in first
// appearance order. A path that does not reach the last level yields nil.
func (t *Tree) LeafValues(path SelectionPath) []LeafField {
	if len(t.levels) == 0 {
		return nil
	}

	current := t.roots
	var matched []NodeID
	for i, col := range t.levels {
		selected, ok := path.Get(col)
		if !ok {
			return nil
		}
		hits := t.matching(current, selected)
		if len(hits) == 0 {
			return nil
		}
		if i == len(t.levels)-1 {
			matched = hits
			break
		}
		current = nil
		for _, id := range hits {
			current = append(current, t.nodes[id].children...)
		}
	}

	atoms := make(map[int]*orderedSet)
	for _, id := range matched {
		for col, cell := range t.nodes[id].leaf {
			set, ok := atoms[col]
			if !ok {
				set = newOrderedSet()
				atoms[col] = set
			}
			for _, a := range SplitAtoms(cell) {
				set.add(a)
			}
		}
	}

	fields := make([]LeafField, 0, len(atoms))
	for _, col := range t.leafCols {
		set, ok := atoms[col]
		if !ok {
			continue
		}
		fields = append(fields, t.leafField(col, set.items))
	}
	return fields
}

func (t *Tree) leafField(col int, atoms []string) LeafField {
	f := LeafField{
		Column: col,
		Name:   t.columns[col],
		Kind:   t.leafKinds[col],
		Values: []string{},
	}

	var hasFreeText, hasBoolean bool
	for _, a := range atoms {
		switch a {
		case SentinelFreeText:
			hasFreeText = true
		case SentinelBoolean:
			hasBoolean = true
		case SentinelExcluded:
		default:
			f.Values = append(f.Values, a)
		}
	}

	switch f.Kind {
	case KindFreeText:
		f.Enabled = hasFreeText
	case KindBoolean:
		f.Enabled = hasBoolean
	case KindExcluded:
		f.Enabled = false
	default:
		f.Enabled = len(f.Values) > 0
	}
	return f
}

// NextLevel returns the first hierarchy column path does not select,
// following the chain from the root. It returns false when every level is
// selected.
func (t *Tree) NextLevel(path SelectionPath) (int, bool) {
	for _, col := range t.levels {
		if _, ok := path.Get(col); !ok {
			return col, true
		}
	}
	return 0, false
}

// Complete reports whether path selects every level of t.
func (t *Tree) Complete(path SelectionPath) bool {
	_, missing := t.NextLevel(path)
	return !missing && len(t.levels) > 0
}
