// Package download implements the artifact download manager: idempotent,
// self-healing placement of each record's PDF at a deterministic local
// path, with the store kept in agreement with the filesystem.
package download

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/tesisdb"
)

// Defaults for batch downloads.
const (
	DefaultBaseDir = "tesis_descargadas"
	DefaultDelay   = time.Second
	DefaultRetries = 3
)

// ProgressFunc receives batch progress: items completed so far, the batch
// total, and the id currently being processed.
type ProgressFunc func(done, total int, ius string)

// BatchOptions configures DownloadAllPending.
type BatchOptions struct {
	// Limit caps the worklist size; 0 means everything pending.
	Limit int

	// Delay is the pause between items and the base for the per-item retry
	// backoff. Defaults to DefaultDelay.
	Delay time.Duration

	// Retries is the attempt cap per item. Defaults to DefaultRetries.
	Retries int

	// IncludeFailed widens the worklist to records whose download status
	// was never initialized.
	IncludeFailed bool

	// Progress, when set, is invoked before each item.
	Progress ProgressFunc
}

// BatchStats reports a batch outcome. Skipped counts items satisfied
// without a network fetch (already on disk or already recorded).
type BatchStats struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Total     int `json:"total"`
}

// Manager downloads artifacts and reconciles the store's download state
// with the filesystem. One Manager runs at most one batch at a time.
type Manager struct {
	catalog tesisdb.CatalogClient
	tesis   tesisdb.TesisService

	// BaseDir is the root of the artifact tree. Each record lands in
	// <BaseDir>/<época folder>/tesis_<ius>.pdf.
	BaseDir string

	// QuerySets provide the época-to-folder mapping. Default to the
	// compiled-in configurations.
	QuerySets []tesisdb.QuerySet

	logger  *slog.Logger
	running atomic.Bool
}

// NewManager creates a Manager with the default base directory and query
// configurations.
func NewManager(catalog tesisdb.CatalogClient, tesis tesisdb.TesisService, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		catalog:   catalog,
		tesis:     tesis,
		BaseDir:   DefaultBaseDir,
		QuerySets: tesisdb.DefaultQuerySets(),
		logger:    logger,
	}
}

// ArtifactPath returns the deterministic location for a record's artifact.
// Recomputable without any lookup, which is what makes reconciliation
// against the filesystem possible.
func (m *Manager) ArtifactPath(ius, epocaConfig string) string {
	return filepath.Join(m.BaseDir, m.folderForEpoca(epocaConfig), "tesis_"+ius+".pdf")
}

// folderForEpoca maps a record's época label to one of the fixed folder
// names. Unrecognized labels keep their own folder rather than failing.
func (m *Manager) folderForEpoca(epocaConfig string) string {
	for _, qs := range m.QuerySets {
		if strings.Contains(epocaConfig, qs.EpocaConfig) {
			return qs.Carpeta
		}
	}
	return epocaConfig
}

// DownloadOne guarantees the record's artifact exists at its deterministic
// path and that the store records that path. Safe to repeat. fetched
// reports whether a network fetch was needed; reconciliation against the
// filesystem resolves the other cases:
//
//  1. store says downloaded and the recorded path exists: done;
//  2. the deterministic path exists (recorded path stale, or a prior run's
//     status update was lost): re-point the store, no fetch;
//  3. otherwise fetch, write, and mark; a failed fetch leaves the store
//     and filesystem untouched.
func (m *Manager) DownloadOne(ctx context.Context, ius, epocaConfig string) (path string, fetched bool, err error) {
	downloaded, ubicacion, err := m.tesis.DownloadStatus(ctx, ius)
	if err != nil {
		return "", false, err
	}

	if downloaded && ubicacion != "" && fileExists(ubicacion) {
		return ubicacion, false, nil
	}

	expected := m.ArtifactPath(ius, epocaConfig)
	if fileExists(expected) {
		if err := m.tesis.MarkDownloaded(ctx, ius, expected); err != nil {
			return "", false, err
		}
		m.logger.Debug("reconciled artifact state from disk", "ius", ius, "path", expected)
		return expected, false, nil
	}

	data, err := m.catalog.FetchArtifact(ctx, ius)
	if err != nil {
		return "", true, err
	}
	if err := os.MkdirAll(filepath.Dir(expected), 0o755); err != nil {
		return "", true, err
	}
	if err := os.WriteFile(expected, data, 0o644); err != nil {
		return "", true, err
	}
	if err := m.tesis.MarkDownloaded(ctx, ius, expected); err != nil {
		return "", true, err
	}
	return expected, true, nil
}

// DownloadAllPending walks the pending worklist and downloads each item
// with bounded retries. It refuses to start while another batch is active
// (ECONFLICT). Cancellation between items or between retry attempts stops
// the batch early; already-recorded successes stay recorded. Stats are
// always returned, also on early stop.
func (m *Manager) DownloadAllPending(ctx context.Context, opts BatchOptions) (*BatchStats, error) {
	if !m.running.CompareAndSwap(false, true) {
		return nil, tesisdb.Errorf(tesisdb.ECONFLICT, "a download batch is already running")
	}
	defer m.running.Store(false)

	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Retries <= 0 {
		opts.Retries = DefaultRetries
	}

	pending, err := m.tesis.FindPending(ctx, opts.Limit, opts.IncludeFailed)
	if err != nil {
		return nil, err
	}

	stats := &BatchStats{Total: len(pending)}
	for i, item := range pending {
		if ctx.Err() != nil {
			return stats, nil
		}
		if opts.Progress != nil {
			opts.Progress(i, stats.Total, item.IUS)
		}

		fetched, ok := m.downloadWithRetries(ctx, item.IUS, item.EpocaConfig, opts)
		switch {
		case ok && fetched:
			stats.Succeeded++
		case ok:
			stats.Skipped++
		default:
			stats.Failed++
		}

		if sleep(ctx, opts.Delay) != nil {
			return stats, nil
		}
	}
	return stats, nil
}

// downloadWithRetries attempts one item up to opts.Retries times, doubling
// the backoff after each failed attempt.
func (m *Manager) downloadWithRetries(ctx context.Context, ius, epocaConfig string, opts BatchOptions) (fetched, ok bool) {
	backoff := opts.Delay
	for attempt := 0; attempt < opts.Retries; attempt++ {
		if ctx.Err() != nil {
			return false, false
		}

		path, f, err := m.DownloadOne(ctx, ius, epocaConfig)
		if err == nil {
			m.logger.Debug("artifact resolved", "ius", ius, "path", path, "fetched", f)
			return f, true
		}

		m.logger.Warn("artifact download failed",
			"ius", ius, "attempt", attempt+1, "retries", opts.Retries, "error", err)
		if attempt < opts.Retries-1 {
			backoff *= 2
			if sleep(ctx, backoff) != nil {
				return false, false
			}
		}
	}
	return false, false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
