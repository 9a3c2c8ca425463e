package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/tesisdb"
	"github.com/fwojciec/tesisdb/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckpointService_MarkPageDone(t *testing.T) {
	t.Parallel()

	t.Run("marks a page completed", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewCheckpointService(db)
		ctx := context.Background()

		done, err := svc.IsPageDone(ctx, "11va Epoca", "Jurisprudencia", 0)
		require.NoError(t, err)
		assert.False(t, done)

		require.NoError(t, svc.MarkPageDone(ctx, "11va Epoca", "Jurisprudencia", 0, 50))

		done, err = svc.IsPageDone(ctx, "11va Epoca", "Jurisprudencia", 0)
		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("repeated marking keeps a single ledger entry", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewCheckpointService(db)
		ctx := context.Background()

		require.NoError(t, svc.MarkPageDone(ctx, "11va Epoca", "Jurisprudencia", 0, 50))
		require.NoError(t, svc.MarkPageDone(ctx, "11va Epoca", "Jurisprudencia", 0, 50))

		var count int
		err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM control_extracciones").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("pages are independent per epoca and tipo", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewCheckpointService(db)
		ctx := context.Background()

		require.NoError(t, svc.MarkPageDone(ctx, "11va Epoca", "Jurisprudencia", 0, 50))

		done, err := svc.IsPageDone(ctx, "11va Epoca", "Jurisprudencia", 1)
		require.NoError(t, err)
		assert.False(t, done)

		done, err = svc.IsPageDone(ctx, "11va Epoca", "Aislada", 0)
		require.NoError(t, err)
		assert.False(t, done)

		done, err = svc.IsPageDone(ctx, "10ma Epoca", "Jurisprudencia", 0)
		require.NoError(t, err)
		assert.False(t, done)
	})
}

func TestCheckpointService_ClearCheckpoints(t *testing.T) {
	t.Parallel()

	seedLedger := func(t *testing.T) (*sqlite.CheckpointService, context.Context) {
		t.Helper()
		db := setupTestDB(t)
		svc := sqlite.NewCheckpointService(db)
		ctx := context.Background()
		require.NoError(t, svc.MarkPageDone(ctx, "11va Epoca", "Jurisprudencia", 0, 50))
		require.NoError(t, svc.MarkPageDone(ctx, "11va Epoca", "Aislada", 0, 50))
		require.NoError(t, svc.MarkPageDone(ctx, "10ma Epoca", "Jurisprudencia", 0, 50))
		return svc, ctx
	}

	t.Run("zero scope clears everything", func(t *testing.T) {
		t.Parallel()

		svc, ctx := seedLedger(t)
		cleared, err := svc.ClearCheckpoints(ctx, tesisdb.CheckpointScope{})
		require.NoError(t, err)
		assert.Equal(t, 3, cleared)
	})

	t.Run("epoca scope clears one epoca", func(t *testing.T) {
		t.Parallel()

		svc, ctx := seedLedger(t)
		cleared, err := svc.ClearCheckpoints(ctx, tesisdb.CheckpointScope{Epoca: "11va Epoca"})
		require.NoError(t, err)
		assert.Equal(t, 2, cleared)

		done, err := svc.IsPageDone(ctx, "10ma Epoca", "Jurisprudencia", 0)
		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("epoca and tipo scope clears one pair", func(t *testing.T) {
		t.Parallel()

		svc, ctx := seedLedger(t)
		cleared, err := svc.ClearCheckpoints(ctx, tesisdb.CheckpointScope{
			Epoca:     "11va Epoca",
			TipoTesis: "Aislada",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, cleared)

		done, err := svc.IsPageDone(ctx, "11va Epoca", "Jurisprudencia", 0)
		require.NoError(t, err)
		assert.True(t, done)
	})
}
