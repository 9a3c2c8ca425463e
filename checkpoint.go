package tesisdb

import "context"

// CheckpointCompleted is the ledger state of a fully processed page. A page
// of one (época, tipo) query is the smallest resumable unit of crawl work;
// uniqueness on (epoca, tipo_tesis, pagina) makes re-registration
// idempotent.
const CheckpointCompleted = "completada"

// CheckpointScope selects checkpoints for clearing. The zero value selects
// everything; setting Epoca narrows to one época; setting both narrows to
// one (época, tipo) pair. TipoTesis without Epoca is invalid.
type CheckpointScope struct {
	Epoca     string `json:"epoca"`
	TipoTesis string `json:"tipoTesis"`
}

// CheckpointService is the ledger that makes crawl passes resumable. A page
// marked completed is never re-fetched unless explicitly cleared.
type CheckpointService interface {
	// IsPageDone reports whether the page is marked completed.
	IsPageDone(ctx context.Context, epoca, tipoTesis string, pagina int) (bool, error)

	// MarkPageDone registers the page as completed with its item count.
	// Safe to repeat.
	MarkPageDone(ctx context.Context, epoca, tipoTesis string, pagina, totalTesis int) error

	// ClearCheckpoints removes the ledger entries matching scope and
	// returns the number removed.
	ClearCheckpoints(ctx context.Context, scope CheckpointScope) (int, error)
}
