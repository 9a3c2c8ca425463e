package sqlite_test

import (
	"context"
	"testing"

	"github.com/fwojciec/tesisdb"
	"github.com/fwojciec/tesisdb/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryService_RefreshSummaries(t *testing.T) {
	t.Parallel()

	t.Run("rollup counts match the base table", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		tesisSvc := sqlite.NewTesisService(db)
		svc := sqlite.NewSummaryService(db)
		ctx := context.Background()

		seedTesis(t, tesisSvc, "2000001", "PRIMERA", "11va Epoca")
		seedTesis(t, tesisSvc, "2000002", "SEGUNDA", "11va Epoca")
		seedTesis(t, tesisSvc, "2000003", "TERCERA", "10ma Epoca")
		require.NoError(t, tesisSvc.UpdateTesisDetails(ctx, "2000001", tesisdb.TesisDetailsUpdate{
			Materias: []string{"Penal", "Constitucional"},
		}))
		require.NoError(t, tesisSvc.UpdateTesisDetails(ctx, "2000002", tesisdb.TesisDetailsUpdate{
			Materias: []string{"Penal"},
		}))

		require.NoError(t, svc.RefreshSummaries(ctx))

		epocas, err := svc.Summaries(ctx, tesisdb.DimensionEpoca)
		require.NoError(t, err)
		require.Len(t, epocas, 2)
		assert.Equal(t, "10ma Epoca", epocas[0].Valor)
		assert.Equal(t, 1, epocas[0].Cantidad)
		assert.Equal(t, "11va Epoca", epocas[1].Valor)
		assert.Equal(t, 2, epocas[1].Cantidad)
		assert.False(t, epocas[0].FechaActualizacion.IsZero())

		materias, err := svc.Summaries(ctx, tesisdb.DimensionMateria)
		require.NoError(t, err)
		require.Len(t, materias, 2)
		assert.Equal(t, "Constitucional", materias[0].Valor)
		assert.Equal(t, 1, materias[0].Cantidad)
		assert.Equal(t, "Penal", materias[1].Valor)
		assert.Equal(t, 2, materias[1].Cantidad)
	})

	t.Run("refresh replaces stale rollups", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		tesisSvc := sqlite.NewTesisService(db)
		svc := sqlite.NewSummaryService(db)
		ctx := context.Background()

		seedTesis(t, tesisSvc, "2000001", "PRIMERA", "11va Epoca")
		require.NoError(t, svc.RefreshSummaries(ctx))

		_, err := db.ExecContext(ctx, "DELETE FROM tesis WHERE ius = '2000001'")
		require.NoError(t, err)
		seedTesis(t, tesisSvc, "2000002", "SEGUNDA", "10ma Epoca")
		require.NoError(t, svc.RefreshSummaries(ctx))

		epocas, err := svc.Summaries(ctx, tesisdb.DimensionEpoca)
		require.NoError(t, err)
		require.Len(t, epocas, 1)
		assert.Equal(t, "10ma Epoca", epocas[0].Valor)
	})

	t.Run("unknown dimension returns EINVALID", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSummaryService(db)

		_, err := svc.Summaries(context.Background(), tesisdb.Dimension("bogus"))
		require.Error(t, err)
		assert.Equal(t, tesisdb.EINVALID, tesisdb.ErrorCode(err))
	})
}

func TestSummaryService_StoreStats(t *testing.T) {
	t.Parallel()

	t.Run("computes totals from the base tables", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		tesisSvc := sqlite.NewTesisService(db)
		checkpointSvc := sqlite.NewCheckpointService(db)
		svc := sqlite.NewSummaryService(db)
		ctx := context.Background()

		seedTesis(t, tesisSvc, "2000001", "PRIMERA", "11va Epoca")
		seedTesis(t, tesisSvc, "2000002", "SEGUNDA", "11va Epoca")
		seedTesis(t, tesisSvc, "2000003", "TERCERA", "10ma Epoca")
		require.NoError(t, tesisSvc.MarkDownloaded(ctx, "2000001", "/data/tesis_2000001.pdf"))
		require.NoError(t, tesisSvc.UpdateTesisDetails(ctx, "2000001", tesisdb.TesisDetailsUpdate{
			Materias: []string{"Penal"},
		}))
		require.NoError(t, checkpointSvc.MarkPageDone(ctx, "11va Epoca", "Jurisprudencia", 0, 2))
		require.NoError(t, checkpointSvc.MarkPageDone(ctx, "10ma Epoca", "Jurisprudencia", 0, 1))

		stats, err := svc.StoreStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalTesis)
		assert.Equal(t, 1, stats.Descargadas)
		assert.Equal(t, map[string]int{"11va Epoca": 2, "10ma Epoca": 1}, stats.PorEpoca)
		assert.Equal(t, 2, stats.PaginasProcesadas)
		require.Len(t, stats.MateriasComunes, 1)
		assert.Equal(t, "Penal", stats.MateriasComunes[0].Valor)
		assert.False(t, stats.UltimaActualizacion.IsZero())
	})

	t.Run("empty store yields zero stats", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewSummaryService(db)

		stats, err := svc.StoreStats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, stats.TotalTesis)
		assert.Empty(t, stats.PorEpoca)
		assert.True(t, stats.UltimaActualizacion.IsZero())
	})
}
