package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabase_ColumnsFor(t *testing.T) {
	db := Database{
		Name:   "blog",
		Tables: []string{"posts", "tags"},
		Columns: map[string][]Column{
			"posts": {{Name: "id", DType: "INT"}, {Name: "title", DType: "VARCHAR(255)"}},
		},
	}

	assert.Len(t, db.ColumnsFor("posts"), 2)
	assert.True(t, db.HasColumns("posts"))

	cols := db.ColumnsFor("tags")
	require.NotNil(t, cols)
	assert.Empty(t, cols)
	assert.False(t, db.HasColumns("tags"))
	assert.Equal(t, 0, db.ColumnCount("tags"))
}

func TestDatabase_ColumnsForNilMap(t *testing.T) {
	db := Database{Tables: []string{"users"}}

	assert.NotNil(t, db.ColumnsFor("users"))
	assert.Equal(t, 0, db.ColumnCount("users"))
	assert.Equal(t, 1, db.TableCount())
}

func TestDatabase_DisplayName(t *testing.T) {
	assert.Equal(t, "shop", Database{Name: "shop"}.DisplayName(0))
	assert.Equal(t, "Database 3", Database{}.DisplayName(2))
}

func TestResult_TotalTables(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   int
	}{
		{name: "empty", result: nil, want: 0},
		{name: "single", result: Result{{Tables: []string{"a", "b"}}}, want: 2},
		{name: "multiple", result: Result{{Tables: []string{"a"}}, {Tables: []string{"b", "c", "d"}}}, want: 4},
		{name: "no tables", result: Result{{Name: "x"}}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.result.TotalTables())
		})
	}
}

func TestResult_DecodeBackendShape(t *testing.T) {
	payload := `[{"name":"library","tables":["books","authors"],"columns":{"books":[{"name":"id","dtype":"INT"}],"authors":[]}}]`

	var r Result
	require.NoError(t, json.Unmarshal([]byte(payload), &r))
	require.Len(t, r, 1)
	assert.Equal(t, "library", r[0].Name)
	assert.Equal(t, []string{"books", "authors"}, r[0].Tables)
	assert.Equal(t, "INT", r[0].ColumnsFor("books")[0].DType)
	assert.True(t, r[0].HasColumns("authors"))
	assert.Empty(t, r[0].ColumnsFor("authors"))
}
