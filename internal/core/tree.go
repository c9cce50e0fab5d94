package core

// tree.go builds the cascading decision tree.
//
// Nodes live in a flat arena addressed by NodeID. Every level of the tree
// corresponds to one hierarchy column; a node's children are the distinct
// values seen in the next hierarchy column beneath it. Only nodes of the
// deepest level carry leaf attributes (the complete values of every other
// column, first row wins).

import "sort"

// NodeID addresses a node inside a Tree.
type NodeID int

// noParent marks the virtual root when adding children.
const noParent NodeID = -1

// Node is one value at one hierarchy level.
type Node struct {
	Column     int
	ColumnName string
	Value      string

	children []NodeID
	leaf     map[int]string
}

// childKey identifies a child by (parent, column, value) during a build.
type childKey struct {
	parent NodeID
	column int
	value  string
}

// Tree is an immutable hierarchy built from a SpecTable.
type Tree struct {
	columns   []string
	levels    []int
	leafCols  []int
	leafKinds map[int]ControlKind

	nodes []Node
	roots []NodeID
}

// BuildTree builds the tree of table over the given hierarchy columns.
//
// Columns are sorted and de-duplicated; indices outside the header range or
// pointing at blank headers are ignored. A row stops descending at the first
// hierarchy column whose complete value is blank. A cell holding several
// atoms fans the row out into sibling branches that share everything below.
// BuildTree never fails: missing columns simply produce an empty tree.
func BuildTree(table *SpecTable, hierarchy []int) *Tree {
	t := &Tree{
		columns:   table.Columns(),
		levels:    normalizeLevels(table, hierarchy),
		leafKinds: make(map[int]ControlKind),
	}

	isLevel := make(map[int]bool, len(t.levels))
	for _, c := range t.levels {
		isLevel[c] = true
	}
	for col, name := range t.columns {
		if isLevel[col] || name == "" {
			continue
		}
		t.leafCols = append(t.leafCols, col)
		t.leafKinds[col] = table.KindOfColumn(col)
	}

	if len(t.levels) == 0 {
		return t
	}

	b := &treeBuilder{tree: t, index: make(map[childKey]NodeID)}
	for i := 0; i < table.Len(); i++ {
		b.addRow(noParent, table.Row(i), 0)
	}
	return t
}

func normalizeLevels(table *SpecTable, hierarchy []int) []int {
	seen := make(map[int]bool, len(hierarchy))
	levels := make([]int, 0, len(hierarchy))
	for _, c := range hierarchy {
		if c < 0 || c >= table.Width() || table.Column(c) == "" || seen[c] {
			continue
		}
		seen[c] = true
		levels = append(levels, c)
	}
	sort.Ints(levels)
	return levels
}

type treeBuilder struct {
	tree  *Tree
	index map[childKey]NodeID
}

func (b *treeBuilder) addRow(parent NodeID, row SpecRow, level int) {
	t := b.tree
	if level >= len(t.levels) {
		return
	}

	col := t.levels[level]
	atoms := SplitAtoms(row.Complete(col))
	if len(atoms) == 0 {
		return
	}

	last := level == len(t.levels)-1
	for _, atom := range atoms {
		id := b.child(parent, col, atom)
		if last {
			b.mergeLeaf(id, row)
			continue
		}
		b.addRow(id, row, level+1)
	}
}

// child finds or creates the child of parent holding value in col.
func (b *treeBuilder) child(parent NodeID, col int, value string) NodeID {
	key := childKey{parent: parent, column: col, value: value}
	if id, ok := b.index[key]; ok {
		return id
	}

	t := b.tree
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		Column:     col,
		ColumnName: t.columns[col],
		Value:      value,
	})
	if parent == noParent {
		t.roots = append(t.roots, id)
	} else {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	b.index[key] = id
	return id
}

func (b *treeBuilder) mergeLeaf(id NodeID, row SpecRow) {
	n := &b.tree.nodes[id]
	if n.leaf == nil {
		n.leaf = make(map[int]string, len(b.tree.leafCols))
	}
	for _, col := range b.tree.leafCols {
		if _, ok := n.leaf[col]; ok {
			continue
		}
		n.leaf[col] = row.Complete(col)
	}
}

// Levels returns the hierarchy columns, shallowest first.
func (t *Tree) Levels() []int {
	out := make([]int, len(t.levels))
	copy(out, t.levels)
	return out
}

// Depth returns the number of hierarchy levels.
func (t *Tree) Depth() int {
	return len(t.levels)
}

// LeafColumns returns the non-hierarchy columns in header order.
func (t *Tree) LeafColumns() []int {
	out := make([]int, len(t.leafCols))
	copy(out, t.leafCols)
	return out
}

// LeafKind returns the control kind decided for a leaf column.
func (t *Tree) LeafKind(col int) ControlKind {
	return t.leafKinds[col]
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Roots returns the first-level nodes in insertion order.
func (t *Tree) Roots() []NodeID {
	out := make([]NodeID, len(t.roots))
	copy(out, t.roots)
	return out
}

// Node returns a copy of the node's public fields.
func (t *Tree) Node(id NodeID) Node {
	n := t.nodes[id]
	return Node{Column: n.Column, ColumnName: n.ColumnName, Value: n.Value}
}

// Children returns the children of id in insertion order.
func (t *Tree) Children(id NodeID) []NodeID {
	c := t.nodes[id].children
	out := make([]NodeID, len(c))
	copy(out, c)
	return out
}

// Child returns the child of parent holding value. Pass a negative parent
// to search the roots.
func (t *Tree) Child(parent NodeID, value string) (NodeID, bool) {
	for _, id := range t.childrenOf(parent) {
		if t.nodes[id].Value == value {
			return id, true
		}
	}
	return 0, false
}

// Lookup follows a chain of values from the roots, one per level.
func (t *Tree) Lookup(values ...string) (NodeID, bool) {
	parent := noParent
	for _, v := range values {
		id, ok := t.Child(parent, v)
		if !ok {
			return 0, false
		}
		parent = id
	}
	if parent == noParent {
		return 0, false
	}
	return parent, true
}

// LeafAttributes returns the stored leaf map of id keyed by column name.
// Non-terminal nodes return nil.
func (t *Tree) LeafAttributes(id NodeID) map[string]string {
	n := t.nodes[id]
	if n.leaf == nil {
		return nil
	}
	out := make(map[string]string, len(n.leaf))
	for col, v := range n.leaf {
		out[t.columns[col]] = v
	}
	return out
}

func (t *Tree) childrenOf(parent NodeID) []NodeID {
	if parent < 0 {
		return t.roots
	}
	return t.nodes[parent].children
}

// TreeNode is the nested, serializable form of a subtree.
type TreeNode struct {
	Column   string            `json:"column"`
	Value    string            `json:"value"`
	Children []TreeNode        `json:"children,omitempty"`
	Leaf     map[string]string `json:"leaf,omitempty"`
}

// Dump renders the whole tree as nested TreeNodes.
func (t *Tree) Dump() []TreeNode {
	return t.dump(t.roots)
}

func (t *Tree) dump(ids []NodeID) []TreeNode {
	out := make([]TreeNode, 0, len(ids))
	for _, id := range ids {
		n := t.nodes[id]
		out = append(out, TreeNode{
			Column:   n.ColumnName,
			Value:    n.Value,
			Children: t.dump(n.children),
			Leaf:     t.LeafAttributes(id),
		})
	}
	return out
}
