package mock

import (
	"context"

	"github.com/fwojciec/tesisdb"
)

var _ tesisdb.CatalogClient = (*CatalogClient)(nil)

// CatalogClient is a mock implementation of tesisdb.CatalogClient.
type CatalogClient struct {
	SearchPageFn    func(ctx context.Context, q tesisdb.SearchQuery, page, size int) (*tesisdb.SearchPage, error)
	FetchDetailFn   func(ctx context.Context, ius string) (*tesisdb.TesisDetail, error)
	FetchArtifactFn func(ctx context.Context, ius string) ([]byte, error)
}

func (c *CatalogClient) SearchPage(ctx context.Context, q tesisdb.SearchQuery, page, size int) (*tesisdb.SearchPage, error) {
	return c.SearchPageFn(ctx, q, page, size)
}

func (c *CatalogClient) FetchDetail(ctx context.Context, ius string) (*tesisdb.TesisDetail, error) {
	return c.FetchDetailFn(ctx, ius)
}

func (c *CatalogClient) FetchArtifact(ctx context.Context, ius string) ([]byte, error) {
	return c.FetchArtifactFn(ctx, ius)
}
