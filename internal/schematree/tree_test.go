package schematree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/leapstack-labs/asksql/internal/schema"
	"github.com/leapstack-labs/asksql/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() schema.Result {
	return schema.Result{
		{
			Name:   "blog",
			Tables: []string{"posts", "users", "tags"},
			Columns: map[string][]schema.Column{
				"posts": {{Name: "id", DType: "INT"}, {Name: "title", DType: "VARCHAR(255)"}, {Name: "body", DType: "TEXT"}},
				"users": {{Name: "id", DType: "INT"}, {Name: "email", DType: "VARCHAR(255)"}},
			},
		},
		{
			Name:   "shop",
			Tables: []string{"orders"},
			Columns: map[string][]schema.Column{
				"orders": {{Name: "id", DType: "INT"}},
			},
		},
	}
}

func countKind(rows []Row, kind RowKind) int {
	n := 0
	for _, r := range rows {
		if r.Kind == kind {
			n++
		}
	}
	return n
}

func TestModel_EmptyRendersPlaceholder(t *testing.T) {
	for _, result := range []schema.Result{nil, {}} {
		m := New(result)

		assert.True(t, m.Empty())
		assert.Empty(t, m.Rows())

		view := m.View(theme.Plain(), true)
		assert.Contains(t, view, Placeholder)
		assert.NotContains(t, view, "▸")
		assert.NotContains(t, view, "▾")
	}
}

func TestModel_InitiallyCollapsed(t *testing.T) {
	m := New(sampleResult())

	rows := m.Rows()
	assert.Len(t, rows, 2)
	assert.Equal(t, 2, countKind(rows, KindDatabase))
	_, open := m.OpenDatabase()
	assert.False(t, open)
}

func TestModel_OpenDatabaseThenTableShowsColumns(t *testing.T) {
	result := sampleResult()
	m := New(result)

	m.ToggleDatabase(0)
	rows := m.Rows()
	assert.Equal(t, len(result[0].Tables), countKind(rows, KindTable))
	assert.Equal(t, 0, countKind(rows, KindColumn))

	m.ToggleTable(0, 0)
	rows = m.Rows()
	assert.Equal(t, 3, countKind(rows, KindColumn))

	view := m.View(theme.Plain(), false)
	for _, col := range result[0].ColumnsFor("posts") {
		assert.Contains(t, view, col.Name)
		assert.Contains(t, view, col.DType)
	}
	assert.Contains(t, view, "3 tables")
	assert.Contains(t, view, "3 cols")
	assert.Contains(t, view, "2 cols")
	assert.Contains(t, view, "0 cols")
	assert.Contains(t, view, "Column Name")
	assert.Contains(t, view, "Data Type")
}

func TestModel_OneOpenTablePerDatabase(t *testing.T) {
	m := New(sampleResult())
	m.ToggleDatabase(0)

	m.ToggleTable(0, 0)
	m.ToggleTable(0, 1)

	open, ok := m.OpenTable(0)
	require.True(t, ok)
	assert.Equal(t, 1, open)

	var cols []string
	result := m.Result()
	for _, r := range m.Rows() {
		if r.Kind == KindColumn {
			assert.Equal(t, 1, r.Table, "only the second table's columns are shown")
			cols = append(cols, result[r.DB].ColumnsFor(result[r.DB].Tables[r.Table])[r.Column].Name)
		}
	}
	assert.Equal(t, []string{"id", "email"}, cols)
}

func TestModel_TablesInDifferentDatabasesAreIndependent(t *testing.T) {
	m := New(sampleResult())

	m.ToggleDatabase(0)
	m.ToggleTable(0, 1)
	m.ToggleDatabase(1)
	m.ToggleTable(1, 0)

	first, ok := m.OpenTable(0)
	require.True(t, ok)
	assert.Equal(t, 1, first)

	second, ok := m.OpenTable(1)
	require.True(t, ok)
	assert.Equal(t, 0, second)

	// Only one database is expanded, so only its columns render.
	for _, r := range m.Rows() {
		if r.Kind != KindDatabase {
			assert.Equal(t, 1, r.DB)
		}
	}

	// Reopening the first database brings its table back open.
	m.ToggleDatabase(0)
	assert.Equal(t, 2, countKind(m.Rows(), KindColumn))
}

func TestModel_CollapseHidesDescendants(t *testing.T) {
	m := New(sampleResult())
	m.ToggleDatabase(0)
	m.ToggleTable(0, 0)
	require.Equal(t, 3, countKind(m.Rows(), KindColumn))

	m.ToggleDatabase(0)
	rows := m.Rows()
	assert.Equal(t, 0, countKind(rows, KindTable))
	assert.Equal(t, 0, countKind(rows, KindColumn))

	m.ToggleDatabase(0)
	m.ToggleTable(0, 0)
	_, ok := m.OpenTable(0)
	assert.False(t, ok, "toggling the open table collapses it")
}

func TestModel_TableWithoutColumnsRendersNoRows(t *testing.T) {
	m := New(sampleResult())
	m.ToggleDatabase(0)
	m.ToggleTable(0, 2) // tags has no column entry

	assert.Equal(t, 0, countKind(m.Rows(), KindColumn))
	assert.Contains(t, m.View(theme.Plain(), false), "(no columns)")
}

func TestModel_Selection(t *testing.T) {
	var got []Selection
	m := New(sampleResult(), WithOnSelect(func(s Selection) { got = append(got, s) }))

	m.ToggleDatabase(0)
	m.ToggleTable(0, 1)
	m.SelectColumn(0, 1, 1)

	require.Len(t, got, 3)
	assert.Equal(t, "blog", got[0].Database.Name)
	assert.Equal(t, "", got[0].Table)
	assert.Nil(t, got[0].Column)

	assert.Equal(t, "users", got[1].Table)
	assert.Nil(t, got[1].Column)

	require.NotNil(t, got[2].Column)
	assert.Equal(t, "email", got[2].Column.Name)
	assert.Equal(t, "users", got[2].Table)
}

func TestModel_SelectionWithoutCallback(t *testing.T) {
	m := New(sampleResult())
	assert.NotPanics(t, func() {
		m.ToggleDatabase(0)
		m.ToggleTable(0, 0)
		m.SelectColumn(0, 0, 0)
	})
}

func TestModel_OutOfRangeIsIgnored(t *testing.T) {
	m := New(sampleResult())
	m.ToggleDatabase(5)
	m.ToggleTable(0, 9)
	m.SelectColumn(1, 0, 4)
	m.ToggleDatabase(-1)

	_, ok := m.OpenDatabase()
	assert.False(t, ok)
	_, ok = m.OpenTable(0)
	assert.False(t, ok)
}

func TestModel_KeyboardNavigation(t *testing.T) {
	var got []Selection
	m := New(sampleResult(), WithOnSelect(func(s Selection) { got = append(got, s) }))

	m.MoveUp()
	assert.Equal(t, 0, m.Cursor())

	m.Activate() // open blog
	m.MoveDown() // posts
	m.Activate() // open posts
	m.MoveDown() // id
	m.MoveDown() // title
	m.Activate() // select title

	require.Len(t, got, 3)
	require.NotNil(t, got[2].Column)
	assert.Equal(t, "title", got[2].Column.Name)

	for i := 0; i < 20; i++ {
		m.MoveDown()
	}
	assert.Equal(t, len(m.Rows())-1, m.Cursor())

	// Collapsing clamps the cursor into the visible rows.
	m.ToggleDatabase(0)
	assert.Less(t, m.Cursor(), len(m.Rows()))
}

func TestModel_SetResultResetsState(t *testing.T) {
	m := New(sampleResult())
	m.ToggleDatabase(1)
	m.ToggleTable(1, 0)

	m.SetResult(schema.Result{{Name: "new", Tables: []string{"a"}}})

	_, ok := m.OpenDatabase()
	assert.False(t, ok)
	_, ok = m.OpenTable(1)
	assert.False(t, ok)
	assert.Equal(t, 0, m.Cursor())
}

func TestModel_HeaderTotals(t *testing.T) {
	m := New(sampleResult())
	assert.Equal(t, "Database Structure  4 tables", m.Header())
}

func TestModel_UnnamedDatabase(t *testing.T) {
	m := New(schema.Result{{Tables: []string{"t"}}})
	assert.Contains(t, m.View(theme.Plain(), false), "Database 1")
}

func TestSelection_Path(t *testing.T) {
	col := schema.Column{Name: "title", DType: "TEXT"}
	tests := []struct {
		name string
		sel  Selection
		want string
	}{
		{name: "database", sel: Selection{Database: schema.Database{Name: "blog"}}, want: "blog"},
		{name: "unnamed database", sel: Selection{DBIndex: 1, Table: "posts"}, want: "Database 2 › posts"},
		{name: "column", sel: Selection{Database: schema.Database{Name: "blog"}, Table: "posts", Column: &col}, want: "blog › posts › title (TEXT)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.Path())
		})
	}
}

func TestRenderPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPlain(&buf, sampleResult()))

	out := buf.String()
	for _, want := range []string{"blog (3 tables)", "posts (3 cols)", "VARCHAR(255)", "shop (1 tables)", "orders (1 cols)", "Total"} {
		assert.Contains(t, out, want)
	}

	buf.Reset()
	require.NoError(t, RenderPlain(&buf, nil))
	assert.Equal(t, Placeholder, strings.TrimSpace(buf.String()))
}
