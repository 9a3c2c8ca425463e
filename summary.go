package tesisdb

import (
	"context"
	"time"
)

// Dimension names a rollup grouping. Each dimension has its own summary
// table holding one row per distinct value.
type Dimension string

// Rollup dimensions.
const (
	DimensionEpoca              Dimension = "epoca"
	DimensionTipoTesis          Dimension = "tipo_tesis"
	DimensionSala               Dimension = "sala"
	DimensionTipoJurisprudencia Dimension = "tipo_jurisprudencia"
	DimensionMateria            Dimension = "materia"
)

// Dimensions lists all rollup dimensions.
func Dimensions() []Dimension {
	return []Dimension{
		DimensionEpoca,
		DimensionTipoTesis,
		DimensionSala,
		DimensionTipoJurisprudencia,
		DimensionMateria,
	}
}

// SummaryRow is one precomputed per-dimension count.
type SummaryRow struct {
	Valor              string    `json:"valor"`
	Cantidad           int       `json:"cantidad"`
	FechaActualizacion time.Time `json:"fechaActualizacion"`
}

// Stats aggregates store-wide statistics for reporting.
type Stats struct {
	TotalTesis          int            `json:"totalTesis"`
	Descargadas         int            `json:"descargadas"`
	PorEpoca            map[string]int `json:"porEpoca"`
	PorTipoTesis        map[string]int `json:"porTipoTesis"`
	MateriasComunes     []SummaryRow   `json:"materiasComunes"`
	UltimaActualizacion time.Time      `json:"ultimaActualizacion"`
	PaginasProcesadas   int            `json:"paginasProcesadas"`
}

// SummaryService maintains the rollup tables: fully derived state,
// recomputed in bulk after an ingestion pass rather than incrementally.
type SummaryService interface {
	// RefreshSummaries recomputes every rollup table from the base table
	// inside a single transaction.
	RefreshSummaries(ctx context.Context) error

	// Summaries returns the rollup rows for one dimension, ordered by value.
	Summaries(ctx context.Context, dim Dimension) ([]*SummaryRow, error)

	// StoreStats computes store-wide statistics directly from the base
	// tables (not from the rollups, which may be stale between refreshes).
	StoreStats(ctx context.Context) (*Stats, error)
}
