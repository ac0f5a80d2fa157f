// Package dbfile downloads the generated database file and reads its
// structure back into the schema model.
package dbfile

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/asksql/internal/schema"

	// sqlite driver for reading generated database files.
	_ "modernc.org/sqlite"
)

// DefaultFileName matches the attachment name the backend sends.
const DefaultFileName = "generated_schema.db"

// Downloader streams a generated file from the backend.
type Downloader interface {
	Download(ctx context.Context, path string, w io.Writer) (int64, error)
}

// Download saves the backend file at remotePath to dest. A partially
// written file is removed on failure.
func Download(ctx context.Context, d Downloader, remotePath, dest string) (int64, error) {
	if remotePath == "" {
		return 0, fmt.Errorf("no database file to download")
	}
	if dest == "" {
		dest = DefaultFileName
	}
	if dir := filepath.Dir(dest); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return 0, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dest, err)
	}

	n, err := d.Download(ctx, remotePath, f)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return 0, err
	}
	return n, nil
}

// Inspect opens the SQLite file at path read-only and returns its tables and
// columns as a schema.Database named after the file.
func Inspect(ctx context.Context, path string) (schema.Database, error) {
	if _, err := os.Stat(path); err != nil {
		return schema.Database{}, fmt.Errorf("database file not found: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return schema.Database{}, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	return inspectDB(ctx, db, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// inspectDB reads the tables of db, in creation order, and their columns.
func inspectDB(ctx context.Context, db *sql.DB, name string) (schema.Database, error) {
	tables, err := listTables(ctx, db)
	if err != nil {
		return schema.Database{}, err
	}

	out := schema.Database{
		Name:    name,
		Tables:  tables,
		Columns: make(map[string][]schema.Column, len(tables)),
	}
	for _, table := range tables {
		cols, err := tableColumns(ctx, db, table)
		if err != nil {
			return schema.Database{}, err
		}
		out.Columns[table] = cols
	}
	return out, nil
}

func listTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		AND name NOT LIKE 'sqlite_%'
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tables := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func tableColumns(ctx context.Context, db *sql.DB, table string) ([]schema.Column, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols := []schema.Column{}
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, schema.Column{Name: name, DType: colType})
	}
	return cols, rows.Err()
}

// quoteIdent quotes name as an SQL identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
