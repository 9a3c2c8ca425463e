package yaml_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/tesisdb"
	"github.com/fwojciec/tesisdb/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadQuerySets(t *testing.T) {
	t.Parallel()

	t.Run("empty path returns defaults", func(t *testing.T) {
		t.Parallel()

		querySets, tipos, err := yaml.LoadQuerySets("")
		require.NoError(t, err)
		assert.Equal(t, tesisdb.DefaultQuerySets(), querySets)
		assert.Equal(t, tesisdb.DefaultTiposTesis(), tipos)
	})

	t.Run("loads query sets from a file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
query_sets:
  - nombre: 11va_epoca
    id_epoca: ["200"]
    instancias: ["6", "1"]
    label: "11a. Época - Todas las Instancias"
    epoca_config: "11va Epoca"
    carpeta: "11va Epoca"
`)

		querySets, tipos, err := yaml.LoadQuerySets(path)
		require.NoError(t, err)
		require.Len(t, querySets, 1)
		assert.Equal(t, "11va_epoca", querySets[0].Nombre)
		assert.Equal(t, []string{"200"}, querySets[0].IDEpoca)
		assert.Equal(t, []string{"6", "1"}, querySets[0].Instancias)
		assert.Equal(t, "11va Epoca", querySets[0].EpocaConfig)
		assert.Equal(t, tesisdb.DefaultTiposTesis(), tipos, "omitted section falls back")
	})

	t.Run("loads tipos tesis from a file", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
tipos_tesis:
  - nombre: jurisprudencia
    ids: ["1"]
    config: Jurisprudencia
`)

		querySets, tipos, err := yaml.LoadQuerySets(path)
		require.NoError(t, err)
		assert.Equal(t, tesisdb.DefaultQuerySets(), querySets)
		require.Len(t, tipos, 1)
		assert.Equal(t, "jurisprudencia", tipos[0].Nombre)
		assert.Equal(t, []string{"1"}, tipos[0].IDs)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		t.Parallel()

		_, _, err := yaml.LoadQuerySets(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("malformed yaml is EINVALID", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, "query_sets: [\n")
		_, _, err := yaml.LoadQuerySets(path)
		require.Error(t, err)
		assert.Equal(t, tesisdb.EINVALID, tesisdb.ErrorCode(err))
	})

	t.Run("rejects duplicate nombres", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
query_sets:
  - nombre: epoca
    id_epoca: ["200"]
    instancias: ["6"]
    epoca_config: "11va Epoca"
  - nombre: epoca
    id_epoca: ["210"]
    instancias: ["6"]
    epoca_config: "12va Epoca"
`)

		_, _, err := yaml.LoadQuerySets(path)
		require.Error(t, err)
		assert.Equal(t, tesisdb.EINVALID, tesisdb.ErrorCode(err))
	})

	t.Run("rejects a query set without classifier ids", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
query_sets:
  - nombre: epoca
    instancias: ["6"]
    epoca_config: "11va Epoca"
`)

		_, _, err := yaml.LoadQuerySets(path)
		require.Error(t, err)
		assert.Equal(t, tesisdb.EINVALID, tesisdb.ErrorCode(err))
	})
}
