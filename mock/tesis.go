package mock

import (
	"context"

	"github.com/fwojciec/tesisdb"
)

var _ tesisdb.TesisService = (*TesisService)(nil)

// TesisService is a mock implementation of tesisdb.TesisService.
type TesisService struct {
	UpsertTesisFn        func(ctx context.Context, tesis *tesisdb.Tesis) (bool, error)
	TesisExistsFn        func(ctx context.Context, ius string) (bool, error)
	FindTesisByIUSFn     func(ctx context.Context, ius string) (*tesisdb.Tesis, error)
	UpdateTesisDetailsFn func(ctx context.Context, ius string, upd tesisdb.TesisDetailsUpdate) error
	MarkDownloadedFn     func(ctx context.Context, ius, ubicacion string) error
	DownloadStatusFn     func(ctx context.Context, ius string) (bool, string, error)
	FindPendingFn        func(ctx context.Context, limit int, includeFailed bool) ([]*tesisdb.PendingTesis, error)
	SearchTesisFn        func(ctx context.Context, filter tesisdb.TesisFilter) ([]*tesisdb.TesisSummary, *tesisdb.Cursor, error)
	CountTesisFn         func(ctx context.Context, filter tesisdb.TesisFilter) (int, error)
	EpocasFn             func(ctx context.Context) ([]string, error)
	MateriasFn           func(ctx context.Context) ([]string, error)
}

func (s *TesisService) UpsertTesis(ctx context.Context, tesis *tesisdb.Tesis) (bool, error) {
	return s.UpsertTesisFn(ctx, tesis)
}

func (s *TesisService) TesisExists(ctx context.Context, ius string) (bool, error) {
	return s.TesisExistsFn(ctx, ius)
}

func (s *TesisService) FindTesisByIUS(ctx context.Context, ius string) (*tesisdb.Tesis, error) {
	return s.FindTesisByIUSFn(ctx, ius)
}

func (s *TesisService) UpdateTesisDetails(ctx context.Context, ius string, upd tesisdb.TesisDetailsUpdate) error {
	return s.UpdateTesisDetailsFn(ctx, ius, upd)
}

func (s *TesisService) MarkDownloaded(ctx context.Context, ius, ubicacion string) error {
	return s.MarkDownloadedFn(ctx, ius, ubicacion)
}

func (s *TesisService) DownloadStatus(ctx context.Context, ius string) (bool, string, error) {
	return s.DownloadStatusFn(ctx, ius)
}

func (s *TesisService) FindPending(ctx context.Context, limit int, includeFailed bool) ([]*tesisdb.PendingTesis, error) {
	return s.FindPendingFn(ctx, limit, includeFailed)
}

func (s *TesisService) SearchTesis(ctx context.Context, filter tesisdb.TesisFilter) ([]*tesisdb.TesisSummary, *tesisdb.Cursor, error) {
	return s.SearchTesisFn(ctx, filter)
}

func (s *TesisService) CountTesis(ctx context.Context, filter tesisdb.TesisFilter) (int, error) {
	return s.CountTesisFn(ctx, filter)
}

func (s *TesisService) Epocas(ctx context.Context) ([]string, error) {
	return s.EpocasFn(ctx)
}

func (s *TesisService) Materias(ctx context.Context) ([]string, error) {
	return s.MateriasFn(ctx)
}
