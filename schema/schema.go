// Package schema extracts a SQLite database's table/view/index/trigger
// definitions by querying the engine itself (§4.6), rather than parsing SQL.
package schema

import "strings"

// Table is one SQLite table as reported by pragma_table_list/pragma_table_info
// plus its verbatim DDL from sqlite_master.
type Table struct {
	Name        string
	EscapedName string
	Columns     []string

	// PrimaryKey is the first column pragma_table_info marks pk != 0, or ""
	// if the table has no declared primary key. A composite primary key
	// degrades to its first column here; record identity is then hashed
	// from that one column alone (see record.Hash's caller in export), so
	// rows sharing its value get the same identifier and are merged into
	// one record.
	PrimaryKey string

	CreateTableSQL   string
	CreateIndexSQL   string
	CreateTriggerSQL string
}

// HasPrimaryKey reports whether the table declared at least one primary
// key column.
func (t Table) HasPrimaryKey() bool {
	return t.PrimaryKey != ""
}

// View is one SQLite view: its name and verbatim CREATE VIEW statement.
type View struct {
	Name string
	SQL  string
}

// Database is the full extracted schema: every ordinary table in name
// order, and every view in name order.
type Database struct {
	Tables []Table
	Views  []View
}

func ensureTrailingSemicolon(sql string) string {
	trimmed := strings.TrimRight(sql, " \t\n\r")
	if strings.HasSuffix(trimmed, ";") {
		return trimmed
	}
	return trimmed + ";"
}

// isSqliteSequenceTable reports whether name/columns match the internal
// bookkeeping table SQLite creates for AUTOINCREMENT columns. It carries
// its own CREATE TABLE statement but is not meaningful user data.
func isSqliteSequenceTable(name string, columns []string) bool {
	if name != "sqlite_sequence" {
		return false
	}
	return len(columns) == 2 && columns[0] == "name" && columns[1] == "seq"
}
