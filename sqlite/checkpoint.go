package sqlite

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/tesisdb"
)

// Compile-time interface verification.
var _ tesisdb.CheckpointService = (*CheckpointService)(nil)

// CheckpointService implements tesisdb.CheckpointService using SQLite.
type CheckpointService struct {
	db *DB
}

// NewCheckpointService creates a new CheckpointService.
func NewCheckpointService(db *DB) *CheckpointService {
	return &CheckpointService{db: db}
}

// IsPageDone reports whether the page has a completed ledger entry.
func (s *CheckpointService) IsPageDone(ctx context.Context, epoca, tipoTesis string, pagina int) (bool, error) {
	var estado string
	err := s.db.QueryRowContext(ctx, `
		SELECT estado FROM control_extracciones
		WHERE epoca = ? AND tipo_tesis = ? AND pagina = ?
	`, epoca, tipoTesis, pagina).Scan(&estado)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return estado == tesisdb.CheckpointCompleted, nil
}

// MarkPageDone records a completed ledger entry for the page, replacing any
// previous entry for the same unit of work.
func (s *CheckpointService) MarkPageDone(ctx context.Context, epoca, tipoTesis string, pagina, totalTesis int) error {
	now := formatTimestamp(time.Now())
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO control_extracciones
			(epoca, tipo_tesis, pagina, total_tesis, estado, hash_config, fecha_inicio, fecha_fin)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, epoca, tipoTesis, pagina, totalTesis, tesisdb.CheckpointCompleted,
		hashConfig(epoca, tipoTesis), now, now)
	return err
}

// ClearCheckpoints deletes ledger entries matching the scope. A zero scope
// clears the whole ledger.
func (s *CheckpointService) ClearCheckpoints(ctx context.Context, scope tesisdb.CheckpointScope) (int, error) {
	query := "DELETE FROM control_extracciones"
	var conds []string
	var args []any
	if scope.Epoca != "" {
		conds = append(conds, "epoca = ?")
		args = append(args, scope.Epoca)
	}
	if scope.TipoTesis != "" {
		conds = append(conds, "tipo_tesis = ?")
		args = append(args, scope.TipoTesis)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(rows), nil
}

// hashConfig fingerprints the query configuration a page was extracted
// under, so ledger entries from a changed configuration are identifiable.
func hashConfig(epoca, tipoTesis string) string {
	return strconv.FormatUint(xxhash.Sum64String(epoca+"\x00"+tipoTesis), 16)
}
