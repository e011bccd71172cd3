package schema

import (
	"database/sql"
	"sort"

	"github.com/k0kubun/sqligit/pathsafe"
	"github.com/k0kubun/sqligit/sqligiterr"
	"github.com/k0kubun/sqligit/util"
)

// tableKind classifies one entry of pragma_table_list.
type tableKind string

const (
	kindTable   tableKind = "table"
	kindView    tableKind = "view"
	kindShadow  tableKind = "shadow"
	kindVirtual tableKind = "virtual"
)

// Extract walks a live (or in-memory) SQLite connection and builds the
// Database it describes, per §4.6.
func Extract(db *sql.DB) (Database, error) {
	candidates, shadows, err := listTables(db)
	if err != nil {
		return Database{}, err
	}

	tables := make(map[string]*Table, len(candidates))
	for _, name := range candidates {
		columns, pk, err := tableColumns(db, name)
		if err != nil {
			return Database{}, err
		}
		tables[name] = &Table{
			Name:        name,
			EscapedName: pathsafe.Escape(name),
			Columns:     columns,
			PrimaryKey:  pk,
		}
	}

	views, err := attachCreateScripts(db, tables, shadows)
	if err != nil {
		return Database{}, err
	}

	result := Database{}
	for name, t := range tables {
		if t.CreateTableSQL == "" {
			// Engine-internal table with no stored SQL (e.g. sqlite_master
			// itself, were it ever to appear as a candidate).
			continue
		}
		if isSqliteSequenceTable(name, t.Columns) {
			continue
		}
		result.Tables = append(result.Tables, *t)
	}

	sort.Slice(result.Tables, func(i, j int) bool { return result.Tables[i].Name < result.Tables[j].Name })
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	result.Views = views

	return result, nil
}

// listTables enumerates pragma_table_list, returning candidate table names
// (type "table" or "virtual") and the set of shadow-table names to
// suppress (§4.6 step 1).
func listTables(db *sql.DB) (candidates []string, shadows map[string]bool, err error) {
	rows, err := db.Query(`SELECT name, type FROM pragma_table_list;`)
	if err != nil {
		return nil, nil, sqligiterr.Database("enumerate pragma_table_list", err)
	}
	defer rows.Close()

	shadows = map[string]bool{}
	for rows.Next() {
		var name string
		var kind tableKind
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, nil, sqligiterr.Database("scan pragma_table_list row", err)
		}

		switch kind {
		case kindTable, kindVirtual:
			candidates = append(candidates, name)
		case kindShadow:
			shadows[name] = true
		case kindView:
			// handled via the sqlite_master pass below
		default:
			return nil, nil, sqligiterr.EdgeCase("object %q has unrecognized classification %q", name, kind)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, sqligiterr.Database("iterate pragma_table_list", err)
	}
	return candidates, shadows, nil
}

// tableColumns returns a table's columns in declaration order and the name
// of its first primary-key column, if any (§4.6 step 2).
func tableColumns(db *sql.DB, table string) (columns []string, primaryKey string, err error) {
	rows, err := db.Query(`SELECT name, pk FROM pragma_table_info(?);`, table)
	if err != nil {
		return nil, "", sqligiterr.Database("enumerate columns of "+table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var pk int
		if err := rows.Scan(&name, &pk); err != nil {
			return nil, "", sqligiterr.Database("scan column of "+table, err)
		}
		if pk != 0 && primaryKey == "" {
			primaryKey = name
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, "", sqligiterr.Database("iterate columns of "+table, err)
	}
	return columns, primaryKey, nil
}

type catalogEntry struct {
	kind   string
	name   string
	owner  string
	sql    string
	hasSQL bool
}

// attachCreateScripts enumerates the schema catalog, fills in each table's
// CreateTableSQL/CreateIndexSQL/CreateTriggerSQL, and returns the views
// (§4.6 steps 3-4).
func attachCreateScripts(db *sql.DB, tables map[string]*Table, shadows map[string]bool) ([]View, error) {
	rows, err := db.Query(`SELECT type, name, tbl_name, sql FROM sqlite_master;`)
	if err != nil {
		return nil, sqligiterr.Database("enumerate sqlite_master", err)
	}
	defer rows.Close()

	byOwner := map[string][]catalogEntry{}
	var views []View

	for rows.Next() {
		var kind, name, owner string
		var sqlText sql.NullString
		if err := rows.Scan(&kind, &name, &owner, &sqlText); err != nil {
			return nil, sqligiterr.Database("scan sqlite_master row", err)
		}
		if !sqlText.Valid {
			continue // auto-generated index, no SQL to preserve
		}
		if shadows[owner] {
			continue // owned by a virtual table's shadow storage
		}

		switch kind {
		case "view":
			views = append(views, View{Name: name, SQL: ensureTrailingSemicolon(sqlText.String)})
		case "table", "index", "trigger":
			byOwner[owner] = append(byOwner[owner], catalogEntry{kind: kind, name: name, owner: owner, sql: sqlText.String, hasSQL: true})
		default:
			return nil, sqligiterr.EdgeCase("schema catalog entry %q has unrecognized type %q", name, kind)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, sqligiterr.Database("iterate sqlite_master", err)
	}

	for owner, entries := range util.CanonicalMapIter(byOwner) {
		table, ok := tables[owner]
		if !ok {
			return nil, sqligiterr.EdgeCase("schema catalog has entries owned by table %q, which is not in the table list", owner)
		}

		var createTable []catalogEntry
		var indexes, triggers []catalogEntry
		for _, e := range entries {
			switch e.kind {
			case "table":
				createTable = append(createTable, e)
			case "index":
				indexes = append(indexes, e)
			case "trigger":
				triggers = append(triggers, e)
			}
		}

		if len(createTable) != 1 {
			return nil, sqligiterr.EdgeCase("table %q has %d CREATE TABLE statements, expected exactly 1", owner, len(createTable))
		}

		table.CreateTableSQL = ensureTrailingSemicolon(createTable[0].sql)
		table.CreateIndexSQL = joinStatements(indexes)
		table.CreateTriggerSQL = joinStatements(triggers)
	}

	return views, nil
}

func joinStatements(entries []catalogEntry) string {
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	out := ""
	for i, e := range entries {
		if i > 0 {
			out += "\n\n"
		}
		out += ensureTrailingSemicolon(e.sql)
	}
	return out
}

// ExtractSingleTable re-parses a single CREATE TABLE statement against a
// throwaway in-memory connection and returns the one table it declares
// (§4.6 reuse note, §4.8 step b). Exactly one table must result.
func ExtractSingleTable(createTableSQL string) (Table, error) {
	db, err := OpenMemory()
	if err != nil {
		return Table{}, err
	}
	defer db.Close()

	if _, err := db.Exec(createTableSQL); err != nil {
		return Table{}, sqligiterr.Database("execute table.sql against in-memory connection", err)
	}

	got, err := Extract(db)
	if err != nil {
		return Table{}, err
	}
	if len(got.Tables) != 1 {
		return Table{}, sqligiterr.Corrupted("table.sql", "expected exactly 1 CREATE TABLE statement, got %d", len(got.Tables))
	}
	return got.Tables[0], nil
}
