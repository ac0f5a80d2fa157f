package schematree

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/asksql/internal/schema"
	"github.com/leapstack-labs/asksql/internal/theme"
)

// Placeholder is rendered when there are no databases.
const Placeholder = "No database structure available"

// Header returns the tree title with the total table count.
func (m *Model) Header() string {
	if m.Empty() {
		return "Database Structure"
	}
	return fmt.Sprintf("Database Structure  %d tables", m.result.TotalTables())
}

// View renders the visible rows with s. The highlighted row is drawn with
// the cursor style when focused is true.
func (m *Model) View(s theme.Styles, focused bool) string {
	var b strings.Builder
	b.WriteString(s.Title.Render(m.Header()))
	b.WriteString("\n")

	if m.Empty() {
		b.WriteString(s.Muted.Render("  " + Placeholder))
		return b.String()
	}

	for idx, row := range m.Rows() {
		line := m.renderRow(s, row)
		if focused && idx == m.cursor {
			line = s.Cursor.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
		if row.Kind == KindTable {
			if extra := m.columnHeader(s, row); extra != "" {
				b.WriteString(extra)
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderRow(s theme.Styles, row Row) string {
	db := m.result[row.DB]
	switch row.Kind {
	case KindDatabase:
		return fmt.Sprintf("%s %s  %s",
			chevron(m.openDB == row.DB),
			s.Database.Render(db.DisplayName(row.DB)),
			s.Badge.Render(fmt.Sprintf("%d tables", db.TableCount())),
		)
	case KindTable:
		table := db.Tables[row.Table]
		open, ok := m.OpenTable(row.DB)
		return fmt.Sprintf("    %s %s  %s",
			chevron(ok && open == row.Table),
			s.Table.Render(table),
			s.Badge.Render(fmt.Sprintf("%d cols", db.ColumnCount(table))),
		)
	case KindColumn:
		table := db.Tables[row.Table]
		cols := db.ColumnsFor(table)
		col := cols[row.Column]
		return fmt.Sprintf("        %s  %s",
			s.Column.Render(pad(col.Name, nameWidth(cols))),
			s.DType.Render(col.DType),
		)
	}
	return ""
}

// columnHeader returns the heading printed under an open table, or a note
// when the table has no recorded columns.
func (m *Model) columnHeader(s theme.Styles, row Row) string {
	open, ok := m.OpenTable(row.DB)
	if !ok || open != row.Table {
		return ""
	}
	db := m.result[row.DB]
	cols := db.ColumnsFor(db.Tables[row.Table])
	if len(cols) == 0 {
		return s.Muted.Render("        (no columns)")
	}
	return s.Muted.Render(fmt.Sprintf("        %s  %s", pad("Column Name", nameWidth(cols)), "Data Type"))
}

func chevron(open bool) string {
	if open {
		return "▾"
	}
	return "▸"
}

func nameWidth(cols []schema.Column) int {
	w := len([]rune("Column Name"))
	for _, c := range cols {
		if n := len([]rune(c.Name)); n > w {
			w = n
		}
	}
	return w
}

func pad(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
