package components

import (
	"context"
	"fmt"

	"github.com/a-h/templ"
	"github.com/leapstack-labs/asksql/internal/schema"
	"github.com/leapstack-labs/asksql/internal/schematree"
)

// Tree renders the visible rows of t. Database and table rows post their
// toggle, column rows post a selection.
func Tree(t *schematree.Model, sel *schematree.Selection) templ.Component {
	return component(func(_ context.Context, h *htmlWriter) {
		h.raw(`<div`)
		h.attr("id", IDTree)
		h.raw(`><h2>`)
		h.text(t.Header())
		h.raw(`</h2>`)

		if t.Empty() {
			h.raw(`<p class="muted">`)
			h.text(schematree.Placeholder)
			h.raw(`</p></div>`)
			return
		}

		result := t.Result()
		openDB, dbOpen := t.OpenDatabase()

		h.raw(`<ul class="tree">`)
		for _, row := range t.Rows() {
			db := result[row.DB]
			switch row.Kind {
			case schematree.KindDatabase:
				open := dbOpen && openDB == row.DB
				h.raw(`<li class="database"><button`)
				h.attr("data-on:click", fmt.Sprintf("@post('/tree/db/%d')", row.DB))
				h.attr("aria-expanded", fmt.Sprint(open))
				h.raw(`>`, chevron(open), " ")
				h.text(db.DisplayName(row.DB))
				h.raw(`<span class="badge">`)
				h.text(fmt.Sprintf("%d tables", db.TableCount()))
				h.raw(`</span></button></li>`)

			case schematree.KindTable:
				table := db.Tables[row.Table]
				openTable, ok := t.OpenTable(row.DB)
				open := ok && openTable == row.Table
				h.raw(`<li class="table"><button`)
				h.attr("data-on:click", fmt.Sprintf("@post('/tree/table/%d/%d')", row.DB, row.Table))
				h.attr("aria-expanded", fmt.Sprint(open))
				h.raw(`>`, chevron(open), " ")
				h.text(table)
				h.raw(`<span class="badge">`)
				h.text(fmt.Sprintf("%d cols", db.ColumnCount(table)))
				h.raw(`</span></button></li>`)
				if open {
					columnsHeader(h, db.ColumnsFor(table))
				}

			case schematree.KindColumn:
				table := db.Tables[row.Table]
				col := db.ColumnsFor(table)[row.Column]
				h.raw(`<li class="column`)
				if selected(sel, row.DB, table, col.Name) {
					h.raw(` selected`)
				}
				h.raw(`"><button`)
				h.attr("data-on:click", fmt.Sprintf("@post('/tree/column/%d/%d/%d')", row.DB, row.Table, row.Column))
				h.raw(`>`)
				h.text(col.Name)
				h.raw(`<span class="badge">`)
				h.text(col.DType)
				h.raw(`</span></button></li>`)
			}
		}
		h.raw(`</ul>`)

		if sel != nil {
			h.raw(`<p class="muted" id="selection">Selected: `)
			h.text(SelectionPath(sel))
			h.raw(`</p>`)
		}
		h.raw(`</div>`)
	})
}

// SelectionPath formats sel as "db › table › column (TYPE)".
func SelectionPath(sel *schematree.Selection) string {
	return sel.Path()
}

func columnsHeader(h *htmlWriter, cols []schema.Column) {
	h.raw(`<li class="columns-header">`)
	if len(cols) == 0 {
		h.raw(`(no columns)`)
	} else {
		h.raw(`Column Name · Data Type`)
	}
	h.raw(`</li>`)
}

func selected(sel *schematree.Selection, db int, table, column string) bool {
	return sel != nil && sel.Column != nil &&
		sel.DBIndex == db && sel.Table == table && sel.Column.Name == column
}

func chevron(open bool) string {
	if open {
		return "▾"
	}
	return "▸"
}
