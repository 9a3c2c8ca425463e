// Package yaml loads crawl configuration overrides from YAML files. The
// compiled-in query sets cover the catalog's four épocas; a file is only
// needed to narrow a crawl or to follow a catalog classifier change
// without a rebuild.
package yaml

import (
	"fmt"
	"os"

	"github.com/fwojciec/tesisdb"
	"gopkg.in/yaml.v3"
)

type configFile struct {
	QuerySets  []tesisdb.QuerySet  `yaml:"query_sets"`
	TiposTesis []tesisdb.TipoTesis `yaml:"tipos_tesis"`
}

// LoadQuerySets reads query sets and thesis types from the file at path.
// An empty path returns the compiled-in defaults, as does any section the
// file omits. A file that is present but unreadable or invalid is an
// error rather than a silent fallback.
func LoadQuerySets(path string) ([]tesisdb.QuerySet, []tesisdb.TipoTesis, error) {
	if path == "" {
		return tesisdb.DefaultQuerySets(), tesisdb.DefaultTiposTesis(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg configFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, nil, tesisdb.Errorf(tesisdb.EINVALID, "parsing config %s: %v", path, err)
	}

	if cfg.QuerySets == nil {
		cfg.QuerySets = tesisdb.DefaultQuerySets()
	}
	if cfg.TiposTesis == nil {
		cfg.TiposTesis = tesisdb.DefaultTiposTesis()
	}

	if err := validate(cfg); err != nil {
		return nil, nil, err
	}
	return cfg.QuerySets, cfg.TiposTesis, nil
}

func validate(cfg configFile) error {
	seen := make(map[string]bool)
	for i, qs := range cfg.QuerySets {
		if qs.Nombre == "" {
			return tesisdb.Errorf(tesisdb.EINVALID, "query set %d has no nombre", i)
		}
		if seen[qs.Nombre] {
			return tesisdb.Errorf(tesisdb.EINVALID, "duplicate query set nombre %q", qs.Nombre)
		}
		seen[qs.Nombre] = true
		if len(qs.IDEpoca) == 0 {
			return tesisdb.Errorf(tesisdb.EINVALID, "query set %q has no id_epoca", qs.Nombre)
		}
		if len(qs.Instancias) == 0 {
			return tesisdb.Errorf(tesisdb.EINVALID, "query set %q has no instancias", qs.Nombre)
		}
		if qs.EpocaConfig == "" {
			return tesisdb.Errorf(tesisdb.EINVALID, "query set %q has no epoca_config", qs.Nombre)
		}
	}

	seen = make(map[string]bool)
	for i, tipo := range cfg.TiposTesis {
		if tipo.Nombre == "" {
			return tesisdb.Errorf(tesisdb.EINVALID, "tipo tesis %d has no nombre", i)
		}
		if seen[tipo.Nombre] {
			return tesisdb.Errorf(tesisdb.EINVALID, "duplicate tipo tesis nombre %q", tipo.Nombre)
		}
		seen[tipo.Nombre] = true
		if len(tipo.IDs) == 0 {
			return tesisdb.Errorf(tesisdb.EINVALID, "tipo tesis %q has no ids", tipo.Nombre)
		}
	}
	return nil
}
