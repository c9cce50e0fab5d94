package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func childValues(tree *Tree, ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, tree.Node(id).Value)
	}
	return out
}

func TestBuildTree_MultiValueCellFansOut(t *testing.T) {
	table, err := NewSpecTable(
		[]string{"분류", "종류", "타입", "사이즈", "비고"},
		[][]string{
			{"A", "B", "Z", "M8", "메모"},
			{"A", "B", "X\nY", "M10", ""},
		},
	)
	require.NoError(t, err)
	assert.Equal(t, "메모", table.Row(1).Complete(4))

	tree := BuildTree(table, []int{2, 3})
	assert.Equal(t, []string{"Z", "X", "Y"}, childValues(tree, tree.Roots()))

	for _, v := range []string{"X", "Y"} {
		id, ok := tree.Lookup(v, "M10")
		require.True(t, ok, v)
		assert.Equal(t, "메모", tree.LeafAttributes(id)["비고"])
	}
}

func TestBuildTree_SharedPrefix(t *testing.T) {
	table, err := NewSpecTable(
		[]string{"분류", "종류", "타입", "사이즈", "비고"},
		[][]string{
			{"A", "B", "X", "M10", "ten"},
			{"A", "B", "X", "M12", "twelve"},
		},
	)
	require.NoError(t, err)

	tree := BuildTree(table, []int{2, 3})
	require.Len(t, tree.Roots(), 1)

	x := tree.Roots()[0]
	assert.Equal(t, "X", tree.Node(x).Value)
	assert.Equal(t, []string{"M10", "M12"}, childValues(tree, tree.Children(x)))
}

func TestBuildTree_Levels(t *testing.T) {
	table := fixtureTable(t)

	tree := BuildTree(table, []int{8, 2, 3, 3, 4, 40, -1})
	assert.Equal(t, []int{colType, colMaterial, colSize}, tree.Levels(), "blank, duplicate and out of range columns are ignored")
	assert.Equal(t, 3, tree.Depth())
	assert.Equal(t, []int{colClass, colSeries, colNote, colPlating, colMarking, colUnused}, tree.LeafColumns())
	assert.Equal(t, KindFreeText, tree.LeafKind(colPlating))
}

func TestBuildTree_NoLevels(t *testing.T) {
	tree := BuildTree(fixtureTable(t), nil)
	assert.Equal(t, 0, tree.Len())
	assert.Empty(t, tree.Dump())
}

func TestBuildTree_Structure(t *testing.T) {
	tree := BuildTree(fixtureTable(t), []int{colType, colMaterial, colSize})

	assert.Equal(t, []string{"육각", "엘보"}, childValues(tree, tree.Roots()))

	sus, ok := tree.Lookup("육각", "SUS304")
	require.True(t, ok)
	assert.Equal(t, []string{"M10", "M12", "M8"}, childValues(tree, tree.Children(sus)))

	_, ok = tree.Lookup("육각", "PVC")
	assert.False(t, ok)
	_, ok = tree.Lookup()
	assert.False(t, ok)

	hex, _ := tree.Lookup("육각")
	assert.Nil(t, tree.LeafAttributes(hex), "only the deepest level carries leaf attributes")
}

func TestBuildTree_FirstRowWinsLeaf(t *testing.T) {
	tree := BuildTree(fixtureTable(t), []int{colType, colMaterial, colSize})

	// M10 under SUS304 is reached only by the first row, M8 by the nut row.
	m10, ok := tree.Lookup("육각", "SUS304", "M10")
	require.True(t, ok)
	attrs := tree.LeafAttributes(m10)
	assert.Equal(t, "볼트", attrs["시리즈"])
	assert.Equal(t, "표준", attrs["비고"])

	m8, ok := tree.Lookup("육각", "SUS304", "M8")
	require.True(t, ok)
	assert.Equal(t, "너트", tree.LeafAttributes(m8)["시리즈"])
}

func TestBuildTree_Idempotent(t *testing.T) {
	table := fixtureTable(t)
	levels := []int{colType, colMaterial, colSize}

	first := BuildTree(table, levels)
	second := BuildTree(table, levels)

	assert.Equal(t, first.Dump(), second.Dump())
	assert.Equal(t, first.Len(), second.Len())
}

func TestBuildTree_EveryRowReachable(t *testing.T) {
	table := fixtureTable(t)
	levels := []int{colType, colMaterial, colSize}
	tree := BuildTree(table, levels)

	for i := 0; i < table.Len(); i++ {
		row := table.Row(i)
		// Multi-valued cells must be reachable for each of their atoms.
		chains := [][]string{{}}
		for _, col := range levels {
			var next [][]string
			for _, prefix := range chains {
				for _, a := range SplitAtoms(row.Complete(col)) {
					chain := append(append([]string{}, prefix...), a)
					next = append(next, chain)
				}
			}
			chains = next
		}
		for _, chain := range chains {
			_, ok := tree.Lookup(chain...)
			assert.True(t, ok, "row %d chain %v", i, chain)
		}
	}
}

func TestTree_Dump(t *testing.T) {
	tree := BuildTree(fixtureTable(t), []int{colType, colMaterial, colSize})

	dump := tree.Dump()
	require.Len(t, dump, 2)
	assert.Equal(t, "종류", dump[1].Column)
	assert.Equal(t, "엘보", dump[1].Value)
	require.Len(t, dump[1].Children, 1)
	leaf := dump[1].Children[0].Children[0]
	assert.Equal(t, "25A", leaf.Value)
	assert.Equal(t, "피팅", leaf.Leaf["시리즈"])
	assert.Empty(t, leaf.Children)
}
