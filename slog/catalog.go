// Package slog provides logging decorators around the domain interfaces.
// Components take the plain interface; wiring decides whether a logged
// variant is injected.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/tesisdb"
)

// Ensure LoggingCatalogClient implements tesisdb.CatalogClient.
var _ tesisdb.CatalogClient = (*LoggingCatalogClient)(nil)

// LoggingCatalogClient wraps a CatalogClient with request logging: every
// network round trip gets an entry with its duration and outcome.
type LoggingCatalogClient struct {
	next   tesisdb.CatalogClient
	logger *slog.Logger
}

// NewLoggingCatalogClient creates a new LoggingCatalogClient.
func NewLoggingCatalogClient(next tesisdb.CatalogClient, logger *slog.Logger) *LoggingCatalogClient {
	return &LoggingCatalogClient{next: next, logger: logger}
}

// SearchPage delegates to the wrapped client and logs the page fetch.
func (c *LoggingCatalogClient) SearchPage(ctx context.Context, q tesisdb.SearchQuery, page, size int) (*tesisdb.SearchPage, error) {
	begin := time.Now()
	result, err := c.next.SearchPage(ctx, q, page, size)
	if err != nil {
		c.logger.Error("catalog search",
			"label", q.Label,
			"page", page,
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	c.logger.Info("catalog search",
		"label", q.Label,
		"page", page,
		"documents", len(result.Documents),
		"total_pages", result.TotalPages,
		"duration", time.Since(begin),
	)
	return result, nil
}

// FetchDetail delegates to the wrapped client and logs the detail fetch.
func (c *LoggingCatalogClient) FetchDetail(ctx context.Context, ius string) (*tesisdb.TesisDetail, error) {
	begin := time.Now()
	detail, err := c.next.FetchDetail(ctx, ius)
	if err != nil {
		c.logger.Debug("catalog detail",
			"ius", ius,
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	c.logger.Debug("catalog detail",
		"ius", ius,
		"materias", len(detail.Materias),
		"duration", time.Since(begin),
	)
	return detail, nil
}

// FetchArtifact delegates to the wrapped client and logs the download.
func (c *LoggingCatalogClient) FetchArtifact(ctx context.Context, ius string) ([]byte, error) {
	begin := time.Now()
	data, err := c.next.FetchArtifact(ctx, ius)
	if err != nil {
		c.logger.Error("artifact fetch",
			"ius", ius,
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	c.logger.Info("artifact fetch",
		"ius", ius,
		"bytes", len(data),
		"duration", time.Since(begin),
	)
	return data, nil
}
