// Package importer implements the directory-to-database direction of the
// codec (§4.8).
package importer

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/k0kubun/sqligit/export"
	"github.com/k0kubun/sqligit/record"
	"github.com/k0kubun/sqligit/schema"
	"github.com/k0kubun/sqligit/sqligiterr"
	"github.com/k0kubun/sqligit/util"
	"github.com/k0kubun/sqligit/value"
)

// Import reads inputDir (in the exporter's format) and writes a fresh
// SQLite database to dbPath, replacing any existing file there (§4.8).
func Import(inputDir, dbPath string) error {
	if _, err := os.Stat(dbPath); err == nil {
		if err := os.Remove(dbPath); err != nil {
			return sqligiterr.Filesystem("remove existing database", dbPath, err)
		}
	}

	db, err := schema.OpenReadWrite(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return sqligiterr.Filesystem("read input directory", inputDir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue // .empty, view.sql
		}
		if err := importTable(db, filepath.Join(inputDir, entry.Name())); err != nil {
			return err
		}
	}

	return replayViews(db, inputDir)
}

func importTable(db *sql.DB, tableDir string) error {
	tableSQLPath := filepath.Join(tableDir, "table.sql")
	tableSQL, err := os.ReadFile(tableSQLPath)
	if err != nil {
		return sqligiterr.Filesystem("read", tableSQLPath, err)
	}

	if _, err := db.Exec(string(tableSQL)); err != nil {
		return sqligiterr.Database("execute table.sql from "+tableDir, err)
	}

	table, err := schema.ExtractSingleTable(string(tableSQL))
	if err != nil {
		return err
	}
	slog.Info("importing table", "table", table.Name)

	if err := insertRows(db, tableDir, table); err != nil {
		return err
	}

	if err := replayBatch(db, filepath.Join(tableDir, "index.sql")); err != nil {
		return err
	}
	return replayBatch(db, filepath.Join(tableDir, "trigger.sql"))
}

func insertRows(db *sql.DB, tableDir string, table schema.Table) error {
	tx, err := db.Begin()
	if err != nil {
		return sqligiterr.Database("begin transaction for "+table.Name, err)
	}

	stmt, err := tx.Prepare(insertStatement(table))
	if err != nil {
		tx.Rollback()
		return sqligiterr.Database("prepare insert for "+table.Name, err)
	}

	if err := insertBucketFiles(stmt, tableDir, table); err != nil {
		stmt.Close()
		tx.Rollback()
		return err
	}

	if err := stmt.Close(); err != nil {
		tx.Rollback()
		return sqligiterr.Database("close prepared insert for "+table.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return sqligiterr.Database("commit rows for "+table.Name, err)
	}
	return nil
}

func insertBucketFiles(stmt *sql.Stmt, tableDir string, table schema.Table) error {
	entries, err := os.ReadDir(tableDir)
	if err != nil {
		return sqligiterr.Filesystem("read table directory", tableDir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || len(entry.Name()) != 3 {
			continue
		}

		path := filepath.Join(tableDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return sqligiterr.Filesystem("read", path, err)
		}

		records, err := record.Decode(path, data)
		if err != nil {
			return err
		}

		slog.Debug("inserting bucket", "path", path, "records", len(records))
		for _, r := range records {
			args := make([]any, len(r.Fields))
			for i, f := range r.Fields {
				args[i] = valueToDriverArg(f.Value)
			}
			if _, err := stmt.Exec(args...); err != nil {
				return sqligiterr.Database(fmt.Sprintf("insert record %016x into %s", uint64(r.ID), table.Name), err)
			}
		}
	}
	return nil
}

func replayBatch(db *sql.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return sqligiterr.Filesystem("read", path, err)
	}
	sqlText := strings.TrimSpace(string(data))
	if sqlText == "" {
		return nil
	}
	if _, err := db.Exec(sqlText); err != nil {
		return sqligiterr.Database("replay "+path, err)
	}
	return nil
}

// replayViews executes view.sql after every table has been created, since
// a view may reference any table (§4.8 step 3).
func replayViews(db *sql.DB, inputDir string) error {
	return replayBatch(db, filepath.Join(inputDir, "view.sql"))
}

// insertStatement mirrors recordSelectStatement's quoting convention:
// double quotes around column names, single quotes around the table name.
func insertStatement(table schema.Table) string {
	cols := util.TransformSlice(table.Columns, func(c string) string {
		return `"` + strings.ReplaceAll(c, `"`, `""`) + `"`
	})
	placeholders := util.TransformSlice(table.Columns, func(_ string) string {
		return "?"
	})
	tableName := "'" + export.EscapeTableName(table.Name) + "'"
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", tableName, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
}

// valueToDriverArg converts a decoded Value back into the plain Go type
// database/sql expects as a bind argument, the mirror of export's
// sqlValueToValue.
func valueToDriverArg(v value.Value) any {
	switch v.Kind {
	case value.Null:
		return nil
	case value.Integer:
		return v.Integer
	case value.Real:
		return v.Real
	case value.Text:
		return v.Text
	case value.Blob:
		return v.Blob
	default:
		return nil
	}
}
