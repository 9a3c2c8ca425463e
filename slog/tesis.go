package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/tesisdb"
)

// Ensure LoggingTesisService implements tesisdb.TesisService.
var _ tesisdb.TesisService = (*LoggingTesisService)(nil)

// LoggingTesisService wraps a TesisService with logging on the mutation and
// search paths. Cheap lookups delegate without logging.
type LoggingTesisService struct {
	next   tesisdb.TesisService
	logger *slog.Logger
}

// NewLoggingTesisService creates a new LoggingTesisService.
func NewLoggingTesisService(next tesisdb.TesisService, logger *slog.Logger) *LoggingTesisService {
	return &LoggingTesisService{next: next, logger: logger}
}

// UpsertTesis delegates and logs the mutation outcome.
func (s *LoggingTesisService) UpsertTesis(ctx context.Context, tesis *tesisdb.Tesis) (bool, error) {
	created, err := s.next.UpsertTesis(ctx, tesis)
	if err != nil {
		s.logger.Error("upsert tesis", "ius", tesis.IUS, "err", err)
		return false, err
	}
	s.logger.Debug("upsert tesis", "ius", tesis.IUS, "created", created)
	return created, nil
}

// TesisExists delegates to the wrapped service.
func (s *LoggingTesisService) TesisExists(ctx context.Context, ius string) (bool, error) {
	return s.next.TesisExists(ctx, ius)
}

// FindTesisByIUS delegates to the wrapped service.
func (s *LoggingTesisService) FindTesisByIUS(ctx context.Context, ius string) (*tesisdb.Tesis, error) {
	return s.next.FindTesisByIUS(ctx, ius)
}

// UpdateTesisDetails delegates and logs failures.
func (s *LoggingTesisService) UpdateTesisDetails(ctx context.Context, ius string, upd tesisdb.TesisDetailsUpdate) error {
	if err := s.next.UpdateTesisDetails(ctx, ius, upd); err != nil {
		s.logger.Error("update tesis details", "ius", ius, "err", err)
		return err
	}
	return nil
}

// MarkDownloaded delegates and logs the recorded location.
func (s *LoggingTesisService) MarkDownloaded(ctx context.Context, ius, ubicacion string) error {
	if err := s.next.MarkDownloaded(ctx, ius, ubicacion); err != nil {
		s.logger.Error("mark downloaded", "ius", ius, "err", err)
		return err
	}
	s.logger.Debug("mark downloaded", "ius", ius, "ubicacion", ubicacion)
	return nil
}

// DownloadStatus delegates to the wrapped service.
func (s *LoggingTesisService) DownloadStatus(ctx context.Context, ius string) (bool, string, error) {
	return s.next.DownloadStatus(ctx, ius)
}

// FindPending delegates to the wrapped service.
func (s *LoggingTesisService) FindPending(ctx context.Context, limit int, includeFailed bool) ([]*tesisdb.PendingTesis, error) {
	return s.next.FindPending(ctx, limit, includeFailed)
}

// SearchTesis delegates and logs the query shape, result size, and duration.
func (s *LoggingTesisService) SearchTesis(ctx context.Context, filter tesisdb.TesisFilter) ([]*tesisdb.TesisSummary, *tesisdb.Cursor, error) {
	begin := time.Now()
	results, cursor, err := s.next.SearchTesis(ctx, filter)
	if err != nil {
		s.logger.Error("search tesis", "texto", filter.Texto, "err", err)
		return nil, nil, err
	}
	s.logger.Debug("search tesis",
		"texto", filter.Texto,
		"epoca", filter.Epoca,
		"materia", filter.Materia,
		"results", len(results),
		"duration", time.Since(begin),
	)
	return results, cursor, nil
}

// CountTesis delegates to the wrapped service.
func (s *LoggingTesisService) CountTesis(ctx context.Context, filter tesisdb.TesisFilter) (int, error) {
	return s.next.CountTesis(ctx, filter)
}

// Epocas delegates to the wrapped service.
func (s *LoggingTesisService) Epocas(ctx context.Context) ([]string, error) {
	return s.next.Epocas(ctx)
}

// Materias delegates to the wrapped service.
func (s *LoggingTesisService) Materias(ctx context.Context) ([]string, error) {
	return s.next.Materias(ctx)
}
