package mock

import (
	"context"

	"github.com/fwojciec/tesisdb"
)

var _ tesisdb.CheckpointService = (*CheckpointService)(nil)

// CheckpointService is a mock implementation of tesisdb.CheckpointService.
type CheckpointService struct {
	IsPageDoneFn       func(ctx context.Context, epoca, tipoTesis string, pagina int) (bool, error)
	MarkPageDoneFn     func(ctx context.Context, epoca, tipoTesis string, pagina, totalTesis int) error
	ClearCheckpointsFn func(ctx context.Context, scope tesisdb.CheckpointScope) (int, error)
}

func (s *CheckpointService) IsPageDone(ctx context.Context, epoca, tipoTesis string, pagina int) (bool, error) {
	return s.IsPageDoneFn(ctx, epoca, tipoTesis, pagina)
}

func (s *CheckpointService) MarkPageDone(ctx context.Context, epoca, tipoTesis string, pagina, totalTesis int) error {
	return s.MarkPageDoneFn(ctx, epoca, tipoTesis, pagina, totalTesis)
}

func (s *CheckpointService) ClearCheckpoints(ctx context.Context, scope tesisdb.CheckpointScope) (int, error) {
	return s.ClearCheckpointsFn(ctx, scope)
}
