package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	catalog := fixtureExporter(t).Catalog()
	require.Len(t, catalog, 2)

	assert.Equal(t, "배관류", catalog[0].Name)
	assert.Equal(t, []SeriesInfo{{Name: "피팅", Code: "FT", Rows: 1}}, catalog[0].Series)

	assert.Equal(t, "체결류", catalog[1].Name)
	assert.Equal(t, []SeriesInfo{
		{Name: "너트", Code: "NT", Rows: 1},
		{Name: "볼트", Code: "BT", Rows: 2},
	}, catalog[1].Series)
}

func TestClassificationOf(t *testing.T) {
	e := fixtureExporter(t)

	assert.Equal(t, "체결류", e.ClassificationOf("볼트"))
	assert.Equal(t, "배관류", e.ClassificationOf("피팅"))
	assert.Equal(t, "", e.ClassificationOf("없음"))
}

func TestHasSeries(t *testing.T) {
	e := fixtureExporter(t)
	assert.True(t, e.HasSeries("너트"))
	assert.False(t, e.HasSeries("없음"))
}

func TestStandardTypes(t *testing.T) {
	table, err := NewSpecTable(
		[]string{"시리즈", "규격(표준번호)"},
		[][]string{
			{"볼트", "KS B 1002:2016"},
			{"너트", "KS B 1012"},
			{"와셔", "JIS B 1256"},
			{"핀", ""},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"JIS", "KS"}, StandardTypes(table, 1))
	assert.Equal(t, []string{"KS B 1002:2016", "KS B 1012"}, StandardsByType(table, 1, "KS"))
	assert.Empty(t, StandardsByType(table, 1, "ISO"))
}
