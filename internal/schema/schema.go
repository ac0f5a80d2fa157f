// Package schema defines the generated database structure returned by the
// AskSQL backend.
package schema

import "fmt"

// Column is a single column of a generated table.
type Column struct {
	Name  string `json:"name"`
	DType string `json:"dtype"`
}

// Database is one generated database: its ordered table names and the
// columns recorded for each table.
type Database struct {
	Name    string              `json:"name"`
	Tables  []string            `json:"tables"`
	Columns map[string][]Column `json:"columns,omitempty"`
}

// Result is the full structure produced for one prompt.
type Result []Database

// DisplayName returns the database name, or "Database <n>" (1-based) when the
// backend did not extract one.
func (d Database) DisplayName(index int) string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("Database %d", index+1)
}

// TableCount returns the number of tables in the database.
func (d Database) TableCount() int {
	return len(d.Tables)
}

// ColumnsFor returns the columns recorded for table. A table without an
// entry yields an empty slice.
func (d Database) ColumnsFor(table string) []Column {
	cols, ok := d.Columns[table]
	if !ok || cols == nil {
		return []Column{}
	}
	return cols
}

// HasColumns reports whether the backend recorded a column list for table.
func (d Database) HasColumns(table string) bool {
	_, ok := d.Columns[table]
	return ok
}

// ColumnCount returns the number of columns recorded for table.
func (d Database) ColumnCount(table string) int {
	return len(d.Columns[table])
}

// TotalTables sums the table counts of every database in the result.
func (r Result) TotalTables() int {
	total := 0
	for _, db := range r {
		total += db.TableCount()
	}
	return total
}

// Empty reports whether the result holds no databases.
func (r Result) Empty() bool {
	return len(r) == 0
}
