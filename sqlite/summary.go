package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/tesisdb"
)

// Compile-time interface verification.
var _ tesisdb.SummaryService = (*SummaryService)(nil)

// SummaryService implements tesisdb.SummaryService using SQLite.
type SummaryService struct {
	db *DB
}

// NewSummaryService creates a new SummaryService.
func NewSummaryService(db *DB) *SummaryService {
	return &SummaryService{db: db}
}

// summarySource maps each dimension to its rollup table, value column, and
// the SELECT that derives the rollup from the base tables.
type summarySource struct {
	table  string
	column string
	source string
}

func summarySources() map[tesisdb.Dimension]summarySource {
	return map[tesisdb.Dimension]summarySource{
		tesisdb.DimensionEpoca: {
			table:  "resumen_epoca",
			column: "epoca",
			source: `SELECT epoca_config AS valor, COUNT(*) AS cantidad FROM tesis
				WHERE epoca_config IS NOT NULL AND epoca_config != ''
				GROUP BY epoca_config`,
		},
		tesisdb.DimensionTipoTesis: {
			table:  "resumen_tipo_tesis",
			column: "tipo_tesis",
			source: `SELECT tipo_tesis_config AS valor, COUNT(*) AS cantidad FROM tesis
				WHERE tipo_tesis_config IS NOT NULL AND tipo_tesis_config != ''
				GROUP BY tipo_tesis_config`,
		},
		tesisdb.DimensionSala: {
			table:  "resumen_sala",
			column: "sala",
			source: `SELECT sala AS valor, COUNT(*) AS cantidad FROM tesis
				WHERE sala IS NOT NULL AND sala != ''
				GROUP BY sala`,
		},
		tesisdb.DimensionTipoJurisprudencia: {
			table:  "resumen_tipo_jurisprudencia",
			column: "tipo_jurisprudencia",
			source: `SELECT tipo_jurisprudencia_texto AS valor, COUNT(*) AS cantidad FROM tesis
				WHERE tipo_jurisprudencia_texto IS NOT NULL AND tipo_jurisprudencia_texto != ''
				GROUP BY tipo_jurisprudencia_texto`,
		},
		tesisdb.DimensionMateria: {
			table:  "resumen_materia",
			column: "materia",
			source: `SELECT m.nombre AS valor, COUNT(*) AS cantidad FROM tesis_materia tm
				JOIN materia m ON tm.materia_id = m.id
				GROUP BY m.nombre`,
		},
	}
}

// RefreshSummaries rebuilds every rollup table from the base tables inside
// a single transaction, so readers never observe a partially refreshed set.
func (s *SummaryService) RefreshSummaries(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := formatTimestamp(time.Now())
	for _, dim := range tesisdb.Dimensions() {
		src := summarySources()[dim]
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+src.table); err != nil {
			return err
		}
		query := "INSERT INTO " + src.table + " (" + src.column + ", cantidad, fecha_actualizacion) " +
			"SELECT valor, cantidad, ? FROM (" + src.source + ")"
		if _, err := tx.ExecContext(ctx, query, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Summaries returns the rollup rows for one dimension, ordered by value.
func (s *SummaryService) Summaries(ctx context.Context, dim tesisdb.Dimension) ([]*tesisdb.SummaryRow, error) {
	src, ok := summarySources()[dim]
	if !ok {
		return nil, tesisdb.Errorf(tesisdb.EINVALID, "unknown summary dimension %q", dim)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+src.column+", cantidad, fecha_actualizacion FROM "+src.table+" ORDER BY "+src.column)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*tesisdb.SummaryRow
	for rows.Next() {
		var row tesisdb.SummaryRow
		var fecha sql.NullString
		if err := rows.Scan(&row.Valor, &row.Cantidad, &fecha); err != nil {
			return nil, err
		}
		if row.FechaActualizacion, err = parseTimestamp(fecha.String, "fecha_actualizacion"); err != nil {
			return nil, err
		}
		summaries = append(summaries, &row)
	}
	return summaries, rows.Err()
}

// StoreStats computes store-wide statistics directly from the base tables.
func (s *SummaryService) StoreStats(ctx context.Context) (*tesisdb.Stats, error) {
	stats := &tesisdb.Stats{
		PorEpoca:     make(map[string]int),
		PorTipoTesis: make(map[string]int),
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tesis").Scan(&stats.TotalTesis); err != nil {
		return nil, err
	}
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM tesis WHERE descargado = 'Sí'").Scan(&stats.Descargadas); err != nil {
		return nil, err
	}

	if err := s.countInto(ctx, stats.PorEpoca, `
		SELECT epoca_config, COUNT(*) FROM tesis
		WHERE epoca_config IS NOT NULL AND epoca_config != ''
		GROUP BY epoca_config
	`); err != nil {
		return nil, err
	}
	if err := s.countInto(ctx, stats.PorTipoTesis, `
		SELECT tipo_tesis_config, COUNT(*) FROM tesis
		WHERE tipo_tesis_config IS NOT NULL AND tipo_tesis_config != ''
		GROUP BY tipo_tesis_config
	`); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT m.nombre, COUNT(*) AS cantidad
		FROM tesis_materia tm
		JOIN materia m ON tm.materia_id = m.id
		GROUP BY m.nombre
		ORDER BY cantidad DESC, m.nombre
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var row tesisdb.SummaryRow
		if err := rows.Scan(&row.Valor, &row.Cantidad); err != nil {
			return nil, err
		}
		stats.MateriasComunes = append(stats.MateriasComunes, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var ultima sql.NullString
	if err := s.db.QueryRowContext(ctx,
		"SELECT MAX(fecha_actualizacion) FROM tesis").Scan(&ultima); err != nil {
		return nil, err
	}
	if stats.UltimaActualizacion, err = parseTimestamp(ultima.String, "fecha_actualizacion"); err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM control_extracciones WHERE estado = ?
	`, tesisdb.CheckpointCompleted).Scan(&stats.PaginasProcesadas); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *SummaryService) countInto(ctx context.Context, dest map[string]int, query string) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var valor string
		var cantidad int
		if err := rows.Scan(&valor, &cantidad); err != nil {
			return err
		}
		dest[valor] = cantidad
	}
	return rows.Err()
}
