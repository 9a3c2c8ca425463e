// Package extract implements the ingestion pipeline: a resumable,
// checkpointed walk over the catalog's (query set, thesis type)
// cross-product that upserts every record and enriches it with a detail
// fetch.
package extract

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/fwojciec/tesisdb"
	"github.com/fwojciec/tesisdb/scjn"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Defaults for pipeline pacing and paging. The item delay bounds the detail
// request rate against the catalog; the page delay spaces out the heavier
// search requests.
const (
	DefaultPageSize  = 50
	DefaultMaxPages  = 1000
	DefaultItemDelay = 300 * time.Millisecond
	DefaultPageDelay = 500 * time.Millisecond
)

// Progress describes the pipeline's position, passed to the progress
// callback before each page fetch.
type Progress struct {
	Epoca              string
	TipoTesis          string
	Pagina             int
	MaxPaginas         int
	Combinacion        int
	TotalCombinaciones int
}

// ProgressFunc receives progress updates. Returning false cancels the whole
// pass, not just the current page.
type ProgressFunc func(p Progress) bool

// UnitStats aggregates counts for one (query set, thesis type) unit.
type UnitStats struct {
	Epoca                string `json:"epoca"`
	TipoTesis            string `json:"tipoTesis"`
	TesisNuevas          int    `json:"tesisNuevas"`
	TesisExistentes      int    `json:"tesisExistentes"`
	DetallesActualizados int    `json:"detallesActualizados"`
	DetallesFallidos     int    `json:"detallesFallidos"`
	PaginasProcesadas    int    `json:"paginasProcesadas"`
	PaginasOmitidas      int    `json:"paginasOmitidas"`
	Error                bool   `json:"error"`
}

// RunStats aggregates a whole pass.
type RunStats struct {
	RunID                string      `json:"runId"`
	Units                []UnitStats `json:"units"`
	TesisNuevas          int         `json:"tesisNuevas"`
	TesisExistentes      int         `json:"tesisExistentes"`
	DetallesActualizados int         `json:"detallesActualizados"`
	DetallesFallidos     int         `json:"detallesFallidos"`
	PaginasProcesadas    int         `json:"paginasProcesadas"`
	PaginasOmitidas      int         `json:"paginasOmitidas"`
	Interrupted          bool        `json:"interrupted"`
}

func (s *RunStats) addUnit(u UnitStats) {
	s.Units = append(s.Units, u)
	s.TesisNuevas += u.TesisNuevas
	s.TesisExistentes += u.TesisExistentes
	s.DetallesActualizados += u.DetallesActualizados
	s.DetallesFallidos += u.DetallesFallidos
	s.PaginasProcesadas += u.PaginasProcesadas
	s.PaginasOmitidas += u.PaginasOmitidas
}

// RunOptions configures one pass.
type RunOptions struct {
	// Force clears the whole checkpoint ledger before starting, so every
	// page is re-fetched.
	Force bool

	// Progress, when set, is invoked before each page fetch. Returning
	// false stops the pass.
	Progress ProgressFunc
}

// Extractor walks the catalog and feeds the record store. One Extractor
// runs at most one pass at a time.
type Extractor struct {
	catalog     tesisdb.CatalogClient
	tesis       tesisdb.TesisService
	checkpoints tesisdb.CheckpointService
	summaries   tesisdb.SummaryService

	// QuerySets and Tipos define the cross-product to walk. Default to the
	// compiled-in configurations.
	QuerySets []tesisdb.QuerySet
	Tipos     []tesisdb.TipoTesis

	// PageSize is the catalog page size. MaxPages caps pages per unit;
	// 0 means no cap.
	PageSize int
	MaxPages int

	// ItemLimiter paces detail fetches, PageLimiter paces page fetches.
	ItemLimiter *rate.Limiter
	PageLimiter *rate.Limiter

	logger  *slog.Logger
	running atomic.Bool
}

// NewExtractor creates an Extractor with default pacing, paging, and query
// configurations.
func NewExtractor(catalog tesisdb.CatalogClient, tesis tesisdb.TesisService, checkpoints tesisdb.CheckpointService, summaries tesisdb.SummaryService, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		catalog:     catalog,
		tesis:       tesis,
		checkpoints: checkpoints,
		summaries:   summaries,
		QuerySets:   tesisdb.DefaultQuerySets(),
		Tipos:       tesisdb.DefaultTiposTesis(),
		PageSize:    DefaultPageSize,
		MaxPages:    DefaultMaxPages,
		ItemLimiter: rate.NewLimiter(rate.Every(DefaultItemDelay), 1),
		PageLimiter: rate.NewLimiter(rate.Every(DefaultPageDelay), 1),
		logger:      logger,
	}
}

// Run executes one full pass over the cross-product. It refuses to start
// while another pass is active (ECONFLICT). The returned stats are always
// populated, including on cancellation; cancellation is reported through
// RunStats.Interrupted rather than as an error. Only catastrophic store
// failures return an error, alongside the partial stats.
func (e *Extractor) Run(ctx context.Context, opts RunOptions) (*RunStats, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, tesisdb.Errorf(tesisdb.ECONFLICT, "an extraction pass is already running")
	}
	defer e.running.Store(false)

	stats := &RunStats{RunID: uuid.NewString()}
	logger := e.logger.With("run_id", stats.RunID)

	if opts.Force {
		cleared, err := e.checkpoints.ClearCheckpoints(ctx, tesisdb.CheckpointScope{})
		if err != nil {
			return stats, err
		}
		logger.Info("cleared checkpoint ledger for forced pass", "cleared", cleared)
	}

	total := len(e.QuerySets) * len(e.Tipos)
	n := 0
	for _, qs := range e.QuerySets {
		for _, tipo := range e.Tipos {
			n++
			unit, stopped, err := e.runUnit(ctx, logger, qs, tipo, opts.Progress, n, total)
			stats.addUnit(unit)
			if err != nil {
				stats.Interrupted = true
				e.refreshSummaries(ctx, logger)
				return stats, err
			}
			if stopped {
				stats.Interrupted = true
				e.refreshSummaries(ctx, logger)
				return stats, nil
			}
		}
	}

	e.refreshSummaries(ctx, logger)
	return stats, nil
}

// runUnit pages through one (query set, thesis type) unit until end of
// data, the page cap, or cancellation. stopped reports cancellation (via
// context or progress callback); err reports a store failure that should
// abort the whole pass.
func (e *Extractor) runUnit(ctx context.Context, logger *slog.Logger, qs tesisdb.QuerySet, tipo tesisdb.TipoTesis, progress ProgressFunc, combinacion, total int) (UnitStats, bool, error) {
	unit := UnitStats{Epoca: qs.EpocaConfig, TipoTesis: tipo.Config}
	query := tesisdb.SearchQuery{
		IDEpoca:    qs.IDEpoca,
		Instancias: qs.Instancias,
		TipoTesis:  tipo.IDs,
		Label:      qs.Label,
	}

	for pagina := 0; ; pagina++ {
		if ctx.Err() != nil {
			return unit, true, nil
		}
		if e.MaxPages > 0 && pagina >= e.MaxPages {
			return unit, false, nil
		}

		done, err := e.checkpoints.IsPageDone(ctx, qs.EpocaConfig, tipo.Config, pagina)
		if err != nil {
			unit.Error = true
			return unit, false, err
		}
		if done {
			unit.PaginasOmitidas++
			continue
		}

		if progress != nil && !progress(Progress{
			Epoca:              qs.EpocaConfig,
			TipoTesis:          tipo.Config,
			Pagina:             pagina,
			MaxPaginas:         e.MaxPages,
			Combinacion:        combinacion,
			TotalCombinaciones: total,
		}) {
			return unit, true, nil
		}

		page, err := e.catalog.SearchPage(ctx, query, pagina, e.PageSize)
		if err != nil {
			if ctx.Err() != nil {
				return unit, true, nil
			}
			// Treated as end of data for this unit, not a pass failure.
			logger.Warn("page fetch failed, ending unit",
				"epoca", qs.EpocaConfig, "tipo", tipo.Config, "pagina", pagina, "error", err)
			return unit, false, nil
		}
		if len(page.Documents) == 0 {
			return unit, false, nil
		}

		stopped, err := e.processPage(ctx, logger, page.Documents, qs, tipo, &unit)
		if err != nil {
			unit.Error = true
			return unit, false, err
		}
		if stopped {
			return unit, true, nil
		}

		if err := e.checkpoints.MarkPageDone(ctx, qs.EpocaConfig, tipo.Config, pagina, len(page.Documents)); err != nil {
			logger.Error("failed to record checkpoint",
				"epoca", qs.EpocaConfig, "tipo", tipo.Config, "pagina", pagina, "error", err)
			unit.Error = true
			return unit, false, nil
		}
		unit.PaginasProcesadas++

		// The reported page count ends the unit without fetching the
		// guaranteed-empty page past it; the empty-page check above stays
		// as the fallback when the catalog reports no count.
		if page.TotalPages > 0 && pagina >= page.TotalPages-1 {
			return unit, false, nil
		}

		if err := e.PageLimiter.Wait(ctx); err != nil {
			return unit, true, nil
		}
	}
}

// processPage upserts and enriches every item on a page. The page is only
// checkpointed by the caller after this returns cleanly, so a crash
// mid-page re-fetches the whole page on the next pass.
func (e *Extractor) processPage(ctx context.Context, logger *slog.Logger, docs []tesisdb.CatalogDocument, qs tesisdb.QuerySet, tipo tesisdb.TipoTesis, unit *UnitStats) (bool, error) {
	for _, doc := range docs {
		if ctx.Err() != nil {
			return true, nil
		}

		tesis := scjn.NormalizeDocument(doc, qs.EpocaConfig, tipo.Config)
		created, err := e.tesis.UpsertTesis(ctx, tesis)
		if err != nil {
			if tesisdb.ErrorCode(err) == tesisdb.EINVALID || tesisdb.ErrorCode(err) == tesisdb.ECONFLICT {
				logger.Warn("skipping item", "ius", tesis.IUS, "error", err)
				continue
			}
			return false, err
		}
		if created {
			unit.TesisNuevas++
		} else {
			unit.TesisExistentes++
		}

		upd, ok := e.fetchEnrichment(ctx, logger, tesis.IUS, doc)
		if ok {
			unit.DetallesActualizados++
		} else {
			unit.DetallesFallidos++
		}
		if err := e.tesis.UpdateTesisDetails(ctx, tesis.IUS, upd); err != nil {
			logger.Warn("failed to apply enrichment", "ius", tesis.IUS, "error", err)
			unit.Error = true
		}

		if err := e.ItemLimiter.Wait(ctx); err != nil {
			return true, nil
		}
	}
	return false, nil
}

// fetchEnrichment fetches the detail payload for one record, falling back
// to the enrichment fields embedded in the summary payload when the detail
// endpoint fails. Every record gets a best-effort enrichment either way.
func (e *Extractor) fetchEnrichment(ctx context.Context, logger *slog.Logger, ius string, doc tesisdb.CatalogDocument) (tesisdb.TesisDetailsUpdate, bool) {
	detail, err := e.catalog.FetchDetail(ctx, ius)
	if err != nil {
		logger.Debug("detail fetch failed, using summary payload", "ius", ius, "error", err)
		return scjn.FallbackUpdate(doc), false
	}
	return scjn.DetailUpdate(detail), true
}

func (e *Extractor) refreshSummaries(ctx context.Context, logger *slog.Logger) {
	// Rollups run even after cancellation so summaries reflect whatever was
	// ingested. A fresh context covers the case where the caller's is
	// already done.
	refreshCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		refreshCtx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
	}
	if err := e.summaries.RefreshSummaries(refreshCtx); err != nil {
		logger.Error("failed to refresh summaries", "error", err)
	}
}
