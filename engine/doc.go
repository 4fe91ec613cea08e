// Package engine opens the SQL databases docstore runs on and renders the
// per-dialect statements for the document table. PostgreSQL is served by the
// pgx driver and SQLite by the pure-Go modernc.org/sqlite driver; both are
// reached through database/sql so the rest of the module is dialect-agnostic.
package engine
