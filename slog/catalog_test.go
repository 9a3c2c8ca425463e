package slog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/tesisdb"
	"github.com/fwojciec/tesisdb/mock"
	tesislog "github.com/fwojciec/tesisdb/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingCatalogClient_SearchPage(t *testing.T) {
	t.Parallel()

	t.Run("logs page fetch with document count and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.CatalogClient{
			SearchPageFn: func(ctx context.Context, q tesisdb.SearchQuery, page, size int) (*tesisdb.SearchPage, error) {
				return &tesisdb.SearchPage{
					Documents:  []tesisdb.CatalogDocument{{IUS: 1}, {IUS: 2}},
					TotalPages: 7,
				}, nil
			},
		}

		client := tesislog.NewLoggingCatalogClient(inner, logger)
		page, err := client.SearchPage(context.Background(), tesisdb.SearchQuery{Label: "11a."}, 3, 50)

		require.NoError(t, err)
		assert.Len(t, page.Documents, 2)
		output := buf.String()
		assert.Contains(t, output, "catalog search")
		assert.Contains(t, output, "page=3")
		assert.Contains(t, output, "documents=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.CatalogClient{
			SearchPageFn: func(ctx context.Context, q tesisdb.SearchQuery, page, size int) (*tesisdb.SearchPage, error) {
				return nil, tesisdb.Errorf(tesisdb.EUNAVAILABLE, "catalog search returned HTTP 503")
			},
		}

		client := tesislog.NewLoggingCatalogClient(inner, logger)
		_, err := client.SearchPage(context.Background(), tesisdb.SearchQuery{}, 0, 50)

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "catalog search")
		assert.Contains(t, output, "HTTP 503")
	})
}

func TestLoggingCatalogClient_FetchArtifact(t *testing.T) {
	t.Parallel()

	t.Run("logs byte count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.CatalogClient{
			FetchArtifactFn: func(ctx context.Context, ius string) ([]byte, error) {
				return []byte("%PDF-1.7 fake"), nil
			},
		}

		client := tesislog.NewLoggingCatalogClient(inner, logger)
		data, err := client.FetchArtifact(context.Background(), "2029936")

		require.NoError(t, err)
		assert.Len(t, data, 13)
		output := buf.String()
		assert.Contains(t, output, "artifact fetch")
		assert.Contains(t, output, "ius=2029936")
		assert.Contains(t, output, "bytes=13")
	})
}

func TestLoggingTesisService_UpsertTesis(t *testing.T) {
	t.Parallel()

	t.Run("delegates and reports created flag", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.TesisService{
			UpsertTesisFn: func(ctx context.Context, tesis *tesisdb.Tesis) (bool, error) {
				return true, nil
			},
		}

		svc := tesislog.NewLoggingTesisService(inner, logger)
		created, err := svc.UpsertTesis(context.Background(), &tesisdb.Tesis{IUS: "1"})

		require.NoError(t, err)
		assert.True(t, created)
		assert.Contains(t, buf.String(), "created=true")
	})
}
