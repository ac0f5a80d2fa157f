// Package schematree is the view-model of the collapsible
// database → table → column browser.
//
// Expansion state is keyed by index: at most one database is open, and each
// database remembers at most one open table. Collapsing a database does not
// clear the open table recorded for it; collapsed parents simply stop
// producing rows for their children.
package schematree

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/asksql/internal/schema"
)

// none marks "nothing open".
const none = -1

// Selection is what the user picked. Table is empty for a database
// selection and Column is nil unless a column was picked.
type Selection struct {
	DBIndex  int
	Database schema.Database
	Table    string
	Column   *schema.Column
}

// Path formats the selection as "db › table › column (TYPE)", naming an
// unnamed database by its position.
func (s Selection) Path() string {
	parts := []string{s.Database.DisplayName(s.DBIndex)}
	if s.Table != "" {
		parts = append(parts, s.Table)
	}
	if s.Column != nil {
		parts = append(parts, fmt.Sprintf("%s (%s)", s.Column.Name, s.Column.DType))
	}
	return strings.Join(parts, " › ")
}

// RowKind identifies the node a visible row stands for.
type RowKind int

// Row kinds.
const (
	KindDatabase RowKind = iota
	KindTable
	KindColumn
)

// Row is one visible, selectable line of the tree.
type Row struct {
	Kind   RowKind
	DB     int
	Table  int
	Column int
}

// Model holds the expansion, cursor and selection state for one result.
type Model struct {
	result    schema.Result
	openDB    int
	openTable map[int]int
	cursor    int
	onSelect  func(Selection)
}

// Option configures a Model.
type Option func(*Model)

// WithOnSelect registers the selection callback.
func WithOnSelect(fn func(Selection)) Option {
	return func(m *Model) {
		m.onSelect = fn
	}
}

// New creates a fully collapsed tree over result.
func New(result schema.Result, opts ...Option) *Model {
	m := &Model{}
	for _, opt := range opts {
		opt(m)
	}
	m.SetResult(result)
	return m
}

// SetResult replaces the rendered result wholesale and collapses the tree,
// since the old indices no longer describe the new nodes.
func (m *Model) SetResult(result schema.Result) {
	m.result = result
	m.openDB = none
	m.openTable = make(map[int]int)
	m.cursor = 0
}

// Result returns the rendered result.
func (m *Model) Result() schema.Result {
	return m.result
}

// Empty reports whether there is nothing to render.
func (m *Model) Empty() bool {
	return m.result.Empty()
}

// OpenDatabase returns the index of the expanded database.
func (m *Model) OpenDatabase() (int, bool) {
	return m.openDB, m.openDB != none
}

// OpenTable returns the open table index recorded for database db.
func (m *Model) OpenTable(db int) (int, bool) {
	t, ok := m.openTable[db]
	if !ok || t == none {
		return none, false
	}
	return t, true
}

// ToggleDatabase expands database i, collapsing any other, or collapses it
// when already open. The database is reported as selected.
func (m *Model) ToggleDatabase(i int) {
	if !m.validDB(i) {
		return
	}
	if m.openDB == i {
		m.openDB = none
	} else {
		m.openDB = i
	}
	m.clampCursor()
	m.emit(Selection{DBIndex: i, Database: m.result[i]})
}

// ToggleTable expands table t of database db, collapsing the table that was
// open in that database, or collapses it when already open. Other databases
// keep their open table.
func (m *Model) ToggleTable(db, t int) {
	if !m.validTable(db, t) {
		return
	}
	if cur, ok := m.openTable[db]; ok && cur == t {
		m.openTable[db] = none
	} else {
		m.openTable[db] = t
	}
	m.clampCursor()
	d := m.result[db]
	m.emit(Selection{DBIndex: db, Database: d, Table: d.Tables[t]})
}

// SelectColumn reports column c of table t in database db as selected.
func (m *Model) SelectColumn(db, t, c int) {
	if !m.validTable(db, t) {
		return
	}
	d := m.result[db]
	cols := d.ColumnsFor(d.Tables[t])
	if c < 0 || c >= len(cols) {
		return
	}
	col := cols[c]
	m.emit(Selection{DBIndex: db, Database: d, Table: d.Tables[t], Column: &col})
}

// Rows returns the currently visible rows in display order.
func (m *Model) Rows() []Row {
	var rows []Row
	for i, db := range m.result {
		rows = append(rows, Row{Kind: KindDatabase, DB: i, Table: none, Column: none})
		if m.openDB != i {
			continue
		}
		open, hasOpen := m.OpenTable(i)
		for t, table := range db.Tables {
			rows = append(rows, Row{Kind: KindTable, DB: i, Table: t, Column: none})
			if !hasOpen || open != t {
				continue
			}
			for c := range db.ColumnsFor(table) {
				rows = append(rows, Row{Kind: KindColumn, DB: i, Table: t, Column: c})
			}
		}
	}
	return rows
}

// Cursor returns the index of the highlighted row.
func (m *Model) Cursor() int {
	return m.cursor
}

// CursorRow returns the highlighted row.
func (m *Model) CursorRow() (Row, bool) {
	rows := m.Rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return Row{}, false
	}
	return rows[m.cursor], true
}

// MoveUp moves the cursor one row up.
func (m *Model) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// MoveDown moves the cursor one row down.
func (m *Model) MoveDown() {
	if m.cursor < len(m.Rows())-1 {
		m.cursor++
	}
}

// Activate acts on the highlighted row as a click would.
func (m *Model) Activate() {
	row, ok := m.CursorRow()
	if !ok {
		return
	}
	switch row.Kind {
	case KindDatabase:
		m.ToggleDatabase(row.DB)
	case KindTable:
		m.ToggleTable(row.DB, row.Table)
	case KindColumn:
		m.SelectColumn(row.DB, row.Table, row.Column)
	}
}

func (m *Model) emit(sel Selection) {
	if m.onSelect != nil {
		m.onSelect(sel)
	}
}

func (m *Model) clampCursor() {
	n := len(m.Rows())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) validDB(i int) bool {
	return i >= 0 && i < len(m.result)
}

func (m *Model) validTable(db, t int) bool {
	return m.validDB(db) && t >= 0 && t < len(m.result[db].Tables)
}
