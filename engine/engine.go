package engine

import (
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./db.sqlite". For in-memory
// databases, pass ":memory:".
func Open(dsn string) (*sql.DB, error) { return sql.Open("sqlite", dsn) }

// OpenPostgres opens a PostgreSQL database through pgx. The DSN is parsed
// eagerly so malformed connection strings fail here rather than on first use;
// no connection is made.
func OpenPostgres(dsn string) (*sql.DB, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("engine: invalid postgres dsn: %w", err)
	}
	return stdlib.OpenDB(*cfg), nil
}

// OpenDialect opens dsn with the driver backing d.
func OpenDialect(d Dialect, dsn string) (*sql.DB, error) {
	switch d.Name {
	case Postgres.Name:
		return OpenPostgres(dsn)
	case SQLite.Name:
		return Open(dsn)
	}
	return nil, fmt.Errorf("engine: unsupported dialect %q", d.Name)
}
