// Package export implements the database-to-directory direction of the
// codec (§4.7).
package export

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/k0kubun/sqligit/record"
	"github.com/k0kubun/sqligit/schema"
	"github.com/k0kubun/sqligit/sqligiterr"
	"github.com/k0kubun/sqligit/util"
	"github.com/k0kubun/sqligit/value"
)

// flushThreshold is the number of records a bucket accumulates in memory
// before it is written out. Raising it trades memory for fewer, larger
// rewrites; it must never change record ordering within a file (§9).
const flushThreshold = 1024

// Export reads dbPath and writes the git-friendly representation to
// outputDir, replacing any existing contents there (§4.7).
func Export(dbPath, outputDir string) error {
	db, err := schema.OpenReadOnly(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	sch, err := schema.Extract(db)
	if err != nil {
		return err
	}

	if err := resetOutputDir(outputDir); err != nil {
		return err
	}

	if len(sch.Tables) == 0 {
		slog.Info("schema has no tables, writing empty marker")
		return writeFile(filepath.Join(outputDir, ".empty"), nil)
	}

	for _, table := range sch.Tables {
		if err := exportTable(db, outputDir, table); err != nil {
			return err
		}
	}

	return writeViewFile(outputDir, sch.Views)
}

func resetOutputDir(dir string) error {
	if _, err := os.Stat(dir); err == nil {
		if err := os.RemoveAll(dir); err != nil {
			return sqligiterr.Filesystem("remove existing output directory", dir, err)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return sqligiterr.Filesystem("create output directory", dir, err)
	}
	return nil
}

func exportTable(db *sql.DB, outputDir string, table schema.Table) error {
	slog.Info("exporting table", "table", table.Name)

	rows, err := db.Query(recordSelectStatement(table))
	if err != nil {
		return sqligiterr.Database("select rows from "+table.Name, err)
	}
	defer rows.Close()

	tableDir := filepath.Join(outputDir, table.EscapedName)
	buckets := map[uint64][]record.Record{}
	scanTargets := make([]any, len(table.Columns))
	scanValues := make([]any, len(table.Columns))
	for i := range scanTargets {
		scanTargets[i] = &scanValues[i]
	}

	total := 0
	distinctIDs := map[record.ID]bool{}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return sqligiterr.Database("scan row of "+table.Name, err)
		}

		fields := make([]record.Field, len(table.Columns))
		hashInput := make([]value.Value, 0, 1)
		for i, col := range table.Columns {
			v := sqlValueToValue(scanValues[i])
			fields[i] = record.Field{Name: col, Value: v}
			if !table.HasPrimaryKey() || col == table.PrimaryKey {
				hashInput = append(hashInput, v)
			}
		}

		id := record.Hash(hashInput)
		total++
		distinctIDs[id] = true
		rec := record.Record{ID: id, Fields: fields}

		prefix := id.Prefix()
		buckets[prefix] = append(buckets[prefix], rec)
		if len(buckets[prefix]) >= flushThreshold {
			if err := flushBucket(tableDir, prefix, buckets[prefix]); err != nil {
				return err
			}
			delete(buckets, prefix)
		}
	}
	if err := rows.Err(); err != nil {
		return sqligiterr.Database("iterate rows of "+table.Name, err)
	}

	for prefix, pending := range util.CanonicalMapIterOrdered(buckets) {
		if err := flushBucket(tableDir, prefix, pending); err != nil {
			return err
		}
	}

	if len(distinctIDs) < total {
		slog.Warn("table has colliding record identifiers; rows were merged", "table", table.Name, "rows", total, "distinct_ids", len(distinctIDs))
	}

	return writeSchemaFiles(tableDir, table)
}

// flushBucket merges newRecords into whatever is already on disk for this
// bucket, re-sorts, and rewrites the whole file (§4.7.d).
func flushBucket(tableDir string, prefix uint64, newRecords []record.Record) error {
	if err := os.MkdirAll(tableDir, 0o755); err != nil {
		return sqligiterr.Filesystem("create table directory", tableDir, err)
	}

	path := filepath.Join(tableDir, bucketFileName(prefix))
	slog.Debug("flushing bucket", "path", path, "new_records", len(newRecords))

	var existing []record.Record
	if data, err := os.ReadFile(path); err == nil {
		existing, err = record.Decode(path, data)
		if err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return sqligiterr.Filesystem("read existing bucket", path, err)
	}

	merged := append(existing, newRecords...)
	record.SortByID(merged)

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return sqligiterr.Filesystem("remove stale bucket before rewrite", path, err)
	}
	return writeFile(path, record.Encode(merged))
}

func writeSchemaFiles(tableDir string, table schema.Table) error {
	if err := os.MkdirAll(tableDir, 0o755); err != nil {
		return sqligiterr.Filesystem("create table directory", tableDir, err)
	}
	if err := overwriteFile(filepath.Join(tableDir, "table.sql"), []byte(table.CreateTableSQL)); err != nil {
		return err
	}
	if err := overwriteFile(filepath.Join(tableDir, "index.sql"), []byte(table.CreateIndexSQL)); err != nil {
		return err
	}
	return overwriteFile(filepath.Join(tableDir, "trigger.sql"), []byte(table.CreateTriggerSQL))
}

func writeViewFile(outputDir string, views []schema.View) error {
	content := ""
	for i, v := range views {
		if i > 0 {
			content += "\n\n"
		}
		content += v.SQL
	}
	return writeFile(filepath.Join(outputDir, "view.sql"), []byte(content))
}

// writeFile creates a new file, failing if one already exists, relying on
// the pre-step recursive delete. Bucket files, view.sql and .empty are
// written through it; the per-table schema files are not (see
// overwriteFile).
func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return sqligiterr.Filesystem("create", path, err)
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return sqligiterr.Filesystem("write", path, err)
	}
	return nil
}

// overwriteFile creates or truncates path; unlike writeFile it does not
// fail when the file already exists. writeSchemaFiles uses it for
// table.sql/index.sql/trigger.sql.
func overwriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return sqligiterr.Filesystem("write", path, err)
	}
	return nil
}

func bucketFileName(prefix uint64) string {
	s := []byte("000")
	for i := 2; i >= 0; i-- {
		s[i] = byte('0' + prefix%8)
		prefix /= 8
	}
	return string(s)
}

// recordSelectStatement builds the row cursor query (§4.7.a): column
// names double-quoted with '"' doubled, table name single-quoted with
// "'" doubled.
func recordSelectStatement(table schema.Table) string {
	quoted := util.TransformSlice(table.Columns, func(c string) string {
		return `"` + escapeDoubleQuotes(c) + `"`
	})
	return `SELECT ` + strings.Join(quoted, ", ") + ` FROM '` + escapeSingleQuotes(table.Name) + `';`
}

func escapeDoubleQuotes(s string) string { return strings.ReplaceAll(s, `"`, `""`) }
func escapeSingleQuotes(s string) string { return strings.ReplaceAll(s, `'`, `''`) }

func sqlValueToValue(v any) value.Value {
	switch t := v.(type) {
	case nil:
		return value.OfNull()
	case int64:
		return value.OfInteger(t)
	case float64:
		return value.OfReal(t)
	case string:
		return value.OfText(t)
	case []byte:
		return value.OfBlob(append([]byte(nil), t...))
	default:
		return value.OfNull()
	}
}

// EscapeTableName applies the same single-quote doubling rule used in
// recordSelectStatement; the importer uses it when building its INSERT
// statement so both directions quote table names identically.
func EscapeTableName(name string) string { return escapeSingleQuotes(name) }
