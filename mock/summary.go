package mock

import (
	"context"

	"github.com/fwojciec/tesisdb"
)

var _ tesisdb.SummaryService = (*SummaryService)(nil)

// SummaryService is a mock implementation of tesisdb.SummaryService.
type SummaryService struct {
	RefreshSummariesFn func(ctx context.Context) error
	SummariesFn        func(ctx context.Context, dim tesisdb.Dimension) ([]*tesisdb.SummaryRow, error)
	StoreStatsFn       func(ctx context.Context) (*tesisdb.Stats, error)
}

func (s *SummaryService) RefreshSummaries(ctx context.Context) error {
	return s.RefreshSummariesFn(ctx)
}

func (s *SummaryService) Summaries(ctx context.Context, dim tesisdb.Dimension) ([]*tesisdb.SummaryRow, error) {
	return s.SummariesFn(ctx, dim)
}

func (s *SummaryService) StoreStats(ctx context.Context) (*tesisdb.Stats, error) {
	return s.StoreStatsFn(ctx)
}
