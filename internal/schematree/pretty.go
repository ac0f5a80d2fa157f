package schematree

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/asksql/internal/schema"
)

// RenderPlain writes result as a fully expanded tree followed by a summary
// table. Used by non-interactive commands.
func RenderPlain(w io.Writer, result schema.Result) error {
	if result.Empty() {
		_, err := fmt.Fprintln(w, Placeholder)
		return err
	}

	l := list.NewWriter()
	l.SetStyle(list.StyleConnectedRounded)
	for i, db := range result {
		l.AppendItem(fmt.Sprintf("%s (%d tables)", db.DisplayName(i), db.TableCount()))
		l.Indent()
		for _, tableName := range db.Tables {
			l.AppendItem(fmt.Sprintf("%s (%d cols)", tableName, db.ColumnCount(tableName)))
			cols := db.ColumnsFor(tableName)
			if len(cols) > 0 {
				l.Indent()
				width := nameWidth(cols)
				for _, col := range cols {
					l.AppendItem(strings.TrimRight(pad(col.Name, width)+"  "+col.DType, " "))
				}
				l.UnIndent()
			}
		}
		l.UnIndent()
	}

	if _, err := fmt.Fprintln(w, "Database Structure"); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, l.Render()); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Database", "Tables", "Columns"})
	totalCols := 0
	for i, db := range result {
		cols := 0
		for _, tableName := range db.Tables {
			cols += db.ColumnCount(tableName)
		}
		totalCols += cols
		t.AppendRow(table.Row{db.DisplayName(i), db.TableCount(), cols})
	}
	t.AppendFooter(table.Row{"Total", result.TotalTables(), totalCols})
	t.Render()
	return nil
}
