package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/tesisdb"
	"github.com/fwojciec/tesisdb/sqlite"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("creates schema on first open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		// Verify tables exist by querying them
		ctx := context.Background()
		for _, table := range []string{
			"tesis", "materia", "tesis_materia", "control_extracciones",
			"resumen_epoca", "resumen_tipo_tesis", "resumen_sala",
			"resumen_tipo_jurisprudencia", "resumen_materia", "tesis_fts",
		} {
			var count int
			err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count)
			require.NoError(t, err, "table %s should exist", table)
		}
	})

	t.Run("returns error for invalid path", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/db.sqlite")
		err := db.Open()
		require.Error(t, err)
	})

	t.Run("enables WAL mode for file-based databases", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/test.db"
		db := sqlite.NewDB(dbPath)
		err := db.Open()
		require.NoError(t, err)
		defer db.Close()

		ctx := context.Background()
		var journalMode string
		err = db.QueryRowContext(ctx, "PRAGMA journal_mode").Scan(&journalMode)
		require.NoError(t, err)
		require.Equal(t, "wal", journalMode)
	})

	t.Run("rebuilds full-text index when empty on open", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/test.db"
		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())

		ctx := context.Background()
		svc := sqlite.NewTesisService(db)
		_, err := svc.UpsertTesis(ctx, &tesisdb.Tesis{
			IUS:   "2000001",
			Rubro: "AMPARO DIRECTO EN REVISIÓN",
		})
		require.NoError(t, err)

		// Empty the shadow index behind the triggers' back.
		_, err = db.ExecContext(ctx, "INSERT INTO tesis_fts(tesis_fts) VALUES('delete-all')")
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db = sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		defer db.Close()

		svc = sqlite.NewTesisService(db)
		results, _, err := svc.SearchTesis(ctx, tesisdb.TesisFilter{Texto: "amparo", Limit: 10})
		require.NoError(t, err)
		require.Len(t, results, 1)
	})
}
