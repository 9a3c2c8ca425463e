// Package sqlite provides SQLite-based storage implementations for tesisdb
// services: the record table, the materia taxonomy, the checkpoint ledger,
// the rollup summaries, and the FTS5 shadow index kept in sync with the
// record table by triggers.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection, creates the schema if needed, and
// rebuilds the full-text index if it is empty while the record table is not.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases so presentation-layer reads
	// can proceed while an ingestion pass writes.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Enable foreign key constraints
	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	// The shadow index is derived state: rebuildable from the record table
	// at any time, and rebuilt here before any queries are served.
	if err := db.populateFTSIfNeeded(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to rebuild full-text index: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction. Multi-statement mutations run inside one so
// a failure rolls back the whole mutation and concurrent readers never
// observe a record without its full-text entry or association rows.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables, indexes, the FTS5 shadow index,
// and its maintenance triggers if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS tesis (
			ius TEXT PRIMARY KEY,
			id TEXT,
			rubro TEXT,
			clave_tesis TEXT,
			localizacion TEXT,
			sala TEXT,
			epoca TEXT,
			instancia TEXT,
			fuente TEXT,
			tipo_tesis INTEGER,
			tipo_jurisprudencia INTEGER,
			tipo_jurisprudencia_texto TEXT,
			precedentes TEXT,
			ejecutorias TEXT,
			votos TEXT,
			volumen TEXT,
			tomo TEXT,
			pagina TEXT,
			mes TEXT,
			anio TEXT,
			epoca_config TEXT,
			tipo_tesis_config TEXT,
			fecha_extraccion TEXT,
			fecha_actualizacion TEXT,
			descargado TEXT DEFAULT 'No',
			ubicacion TEXT,
			UNIQUE(ius)
		);

		CREATE TABLE IF NOT EXISTS materia (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nombre TEXT UNIQUE NOT NULL
		);

		CREATE TABLE IF NOT EXISTS tesis_materia (
			tesis_ius TEXT NOT NULL,
			materia_id INTEGER NOT NULL,
			PRIMARY KEY (tesis_ius, materia_id),
			FOREIGN KEY (tesis_ius) REFERENCES tesis(ius) ON DELETE CASCADE,
			FOREIGN KEY (materia_id) REFERENCES materia(id) ON DELETE CASCADE
		);

		CREATE TABLE IF NOT EXISTS control_extracciones (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			epoca TEXT,
			tipo_tesis TEXT,
			pagina INTEGER,
			total_tesis INTEGER DEFAULT 0,
			fecha_inicio TEXT,
			fecha_fin TEXT,
			estado TEXT DEFAULT 'pendiente',
			hash_config TEXT,
			UNIQUE(epoca, tipo_tesis, pagina)
		);

		CREATE TABLE IF NOT EXISTS resumen_epoca (
			epoca TEXT PRIMARY KEY,
			cantidad INTEGER DEFAULT 0,
			fecha_actualizacion TEXT
		);

		CREATE TABLE IF NOT EXISTS resumen_tipo_tesis (
			tipo_tesis TEXT PRIMARY KEY,
			cantidad INTEGER DEFAULT 0,
			fecha_actualizacion TEXT
		);

		CREATE TABLE IF NOT EXISTS resumen_sala (
			sala TEXT PRIMARY KEY,
			cantidad INTEGER DEFAULT 0,
			fecha_actualizacion TEXT
		);

		CREATE TABLE IF NOT EXISTS resumen_tipo_jurisprudencia (
			tipo_jurisprudencia TEXT PRIMARY KEY,
			cantidad INTEGER DEFAULT 0,
			fecha_actualizacion TEXT
		);

		CREATE TABLE IF NOT EXISTS resumen_materia (
			materia TEXT PRIMARY KEY,
			cantidad INTEGER DEFAULT 0,
			fecha_actualizacion TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_tesis_descargado ON tesis(descargado);
		CREATE INDEX IF NOT EXISTS idx_tesis_epoca_config ON tesis(epoca_config);
		CREATE INDEX IF NOT EXISTS idx_tesis_fecha_ius ON tesis(fecha_actualizacion DESC, ius DESC);
		CREATE INDEX IF NOT EXISTS idx_tesis_clave_tesis ON tesis(clave_tesis);
		CREATE INDEX IF NOT EXISTS idx_tesis_materia_tesis_ius ON tesis_materia(tesis_ius);
		CREATE INDEX IF NOT EXISTS idx_tesis_materia_materia_id ON tesis_materia(materia_id);
		CREATE INDEX IF NOT EXISTS idx_materia_nombre ON materia(nombre);

		CREATE VIRTUAL TABLE IF NOT EXISTS tesis_fts USING fts5(
			ius,
			rubro,
			clave_tesis,
			epoca_config,
			content=tesis,
			content_rowid=rowid,
			tokenize = 'unicode61 remove_diacritics 2'
		);

		CREATE TRIGGER IF NOT EXISTS tesis_ai AFTER INSERT ON tesis BEGIN
			INSERT INTO tesis_fts(rowid, ius, rubro, clave_tesis, epoca_config)
			VALUES (new.rowid, new.ius, new.rubro, new.clave_tesis, new.epoca_config);
		END;

		CREATE TRIGGER IF NOT EXISTS tesis_au AFTER UPDATE ON tesis BEGIN
			INSERT INTO tesis_fts(tesis_fts, rowid, ius, rubro, clave_tesis, epoca_config)
			VALUES ('delete', old.rowid, old.ius, old.rubro, old.clave_tesis, old.epoca_config);
			INSERT INTO tesis_fts(rowid, ius, rubro, clave_tesis, epoca_config)
			VALUES (new.rowid, new.ius, new.rubro, new.clave_tesis, new.epoca_config);
		END;

		CREATE TRIGGER IF NOT EXISTS tesis_ad AFTER DELETE ON tesis BEGIN
			INSERT INTO tesis_fts(tesis_fts, rowid, ius, rubro, clave_tesis, epoca_config)
			VALUES ('delete', old.rowid, old.ius, old.rubro, old.clave_tesis, old.epoca_config);
		END;
	`

	_, err := db.db.Exec(schema)
	return err
}

// populateFTSIfNeeded rebuilds the shadow index from the record table when
// the index is empty but the table is not (e.g., a database created before
// the index existed, or written by a tool that bypassed the triggers).
func (db *DB) populateFTSIfNeeded() error {
	var indexed int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM tesis_fts").Scan(&indexed); err != nil {
		return err
	}
	if indexed > 0 {
		return nil
	}

	_, err := db.db.Exec(`
		INSERT INTO tesis_fts(rowid, ius, rubro, clave_tesis, epoca_config)
		SELECT rowid, ius, rubro, clave_tesis, epoca_config FROM tesis
	`)
	return err
}
