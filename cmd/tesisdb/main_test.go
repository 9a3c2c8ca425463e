package main_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/tesisdb"
	main "github.com/fwojciec/tesisdb/cmd/tesisdb"
	"github.com/fwojciec/tesisdb/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMain(t *testing.T) (*main.Main, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "test.db")
	m.ConfigPath = ""
	return m, &bytes.Buffer{}, &bytes.Buffer{}
}

func TestMain_Run_HelpShowsKongOutput(t *testing.T) {
	t.Parallel()

	m, stdout, stderr := newTestMain(t)

	err := m.Run(context.Background(), []string{"--help"}, stdout, stderr)
	require.NoError(t, err)

	helpOutput := stdout.String()
	expectedCommands := []string{"extract", "download", "search", "stats", "clear-checkpoints"}
	for _, cmd := range expectedCommands {
		assert.Contains(t, helpOutput, cmd, "Help should mention %s command", cmd)
	}
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "Flags:")
}

func TestMain_Run_NoCommandIsAnError(t *testing.T) {
	t.Parallel()

	m, stdout, stderr := newTestMain(t)

	err := m.Run(context.Background(), nil, stdout, stderr)
	require.Error(t, err)
	assert.Contains(t, stdout.String(), "Usage:")
}

func TestMain_Run_StatsOnEmptyDatabase(t *testing.T) {
	t.Parallel()

	m, stdout, stderr := newTestMain(t)
	defer m.Close()

	err := m.Run(context.Background(), []string{"stats"}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Records:    0")
}

func TestMain_Run_SearchOnEmptyDatabase(t *testing.T) {
	t.Parallel()

	m, stdout, stderr := newTestMain(t)
	defer m.Close()

	err := m.Run(context.Background(), []string{"search", "amparo"}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "No matches.")
}

func TestMain_Run_ClearCheckpointsRequiresForce(t *testing.T) {
	t.Parallel()

	m, stdout, stderr := newTestMain(t)
	defer m.Close()

	err := m.Run(context.Background(), []string{"clear-checkpoints"}, stdout, stderr)
	require.Error(t, err)
	assert.Equal(t, tesisdb.EINVALID, tesisdb.ErrorCode(err))

	stdout.Reset()
	err = m.Run(context.Background(), []string{"clear-checkpoints", "--force"}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Removed 0 checkpoints")
}

func TestMain_Run_ExtractIngestsCatalog(t *testing.T) {
	t.Parallel()

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
query_sets:
  - nombre: 11va_epoca
    id_epoca: ["200"]
    instancias: ["6"]
    label: "11a. Época - Todas las Instancias"
    epoca_config: "11va Epoca"
    carpeta: "11va Epoca"
`), 0o644))

	var nextIUS atomic.Int64
	catalog := &mock.CatalogClient{
		SearchPageFn: func(ctx context.Context, q tesisdb.SearchQuery, page, size int) (*tesisdb.SearchPage, error) {
			if page > 0 {
				return &tesisdb.SearchPage{TotalPages: 1}, nil
			}
			ius := 2029900 + nextIUS.Add(1)
			return &tesisdb.SearchPage{
				TotalPages: 1,
				Documents: []tesisdb.CatalogDocument{{
					IUS:        ius,
					Rubro:      "AMPARO DIRECTO. PROCEDENCIA.",
					ClaveTesis: fmt.Sprintf("1a./J. %d/2024", ius),
				}},
			}, nil
		},
		FetchDetailFn: func(ctx context.Context, ius string) (*tesisdb.TesisDetail, error) {
			return &tesisdb.TesisDetail{
				IUS:         ius,
				Precedentes: "Amparo directo 123/2024.",
				Materias:    []string{"Constitucional"},
			}, nil
		},
	}

	m, stdout, stderr := newTestMain(t)
	m.ConfigPath = configPath
	m.Catalog = catalog

	err := m.Run(context.Background(), []string{"extract"}, stdout, stderr)
	require.NoError(t, err)

	// One record per tipo tesis (jurisprudencia and aislada).
	assert.Contains(t, stdout.String(), "2 new, 0 updated")

	// A fresh process over the same database sees the ingested records.
	m2 := main.NewMain()
	m2.DBPath = m.DBPath
	m2.ConfigPath = ""
	stdout2 := &bytes.Buffer{}
	err = m2.Run(context.Background(), []string{"stats"}, stdout2, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, stdout2.String(), "Records:    2")
	assert.Contains(t, stdout2.String(), "Constitucional")

	// Checkpoints clear by the labels the crawl records: the época label
	// from the query set and the tipo label, not the config-file keys.
	m3 := main.NewMain()
	m3.DBPath = m.DBPath
	m3.ConfigPath = ""
	stdout3 := &bytes.Buffer{}
	err = m3.Run(context.Background(),
		[]string{"clear-checkpoints", "--epoca", "11va Epoca", "--tipo", "Jurisprudencia", "--force"},
		stdout3, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, stdout3.String(), "Removed 1 checkpoints")

	stdout3.Reset()
	err = m3.Run(context.Background(),
		[]string{"clear-checkpoints", "--epoca", "11va Epoca", "--force"},
		stdout3, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, stdout3.String(), "Removed 1 checkpoints")
}
