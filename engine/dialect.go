package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect renders the SQL for a single flat document table:
//
//	id        TEXT PRIMARY KEY
//	embedding <blob> NULL
//	payload   <blob> NOT NULL
type Dialect struct {
	// Name is the configuration name ("postgres" or "sqlite").
	Name string
	// BlobType is the column type used for binary data.
	BlobType string
	// Numbered reports whether bind parameters are $1, $2, ... rather than ?.
	Numbered bool
}

var (
	Postgres = Dialect{Name: "postgres", BlobType: "BYTEA", Numbered: true}
	SQLite   = Dialect{Name: "sqlite", BlobType: "BLOB"}
)

// ByName returns the dialect registered under name.
func ByName(name string) (Dialect, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "postgres", "postgresql", "pgx":
		return Postgres, true
	case "sqlite", "sqlite3":
		return SQLite, true
	}
	return Dialect{}, false
}

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidTable reports whether table is a plain (optionally schema qualified)
// identifier. Table names are interpolated into SQL, so anything else is
// rejected.
func ValidTable(table string) bool {
	return len(table) <= 127 && identifier.MatchString(table)
}

func (d Dialect) bind(i int) string {
	if d.Numbered {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// CreateTable returns the idempotent DDL for table.
func (d Dialect) CreateTable(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id        TEXT PRIMARY KEY,
    embedding %s,
    payload   %s NOT NULL
)`, table, d.BlobType, d.BlobType)
}

// Upsert returns the insert-or-replace statement keyed on id. Conflict
// resolution happens in the database, so concurrent writers from other
// processes still end with one row per id.
func (d Dialect) Upsert(table string) string {
	return fmt.Sprintf(`INSERT INTO %s(id, embedding, payload)
VALUES (%s, %s, %s)
ON CONFLICT(id) DO UPDATE SET
  embedding = excluded.embedding,
  payload = excluded.payload`, table, d.bind(1), d.bind(2), d.bind(3))
}

// Lookup returns the point query for a single id.
func (d Dialect) Lookup(table string) string {
	return fmt.Sprintf(`SELECT embedding, payload FROM %s WHERE id = %s`, table, d.bind(1))
}

// Count returns the row count query.
func (d Dialect) Count(table string) string {
	return fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)
}
