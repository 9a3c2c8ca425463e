package tesisdb

// QuerySet is one crawlable configuration of the catalog: an época with the
// instancia ids that existed during it. The crawl walks the cross-product
// of query sets and thesis types.
type QuerySet struct {
	// Nombre names the set in configuration files, e.g. "9na_epoca".
	Nombre string `json:"nombre" yaml:"nombre"`

	// IDEpoca and Instancias are the catalog's classifier values.
	IDEpoca    []string `json:"idEpoca" yaml:"id_epoca"`
	Instancias []string `json:"instancias" yaml:"instancias"`

	// Label is the catalog's display label sent with each search.
	Label string `json:"label" yaml:"label"`

	// EpocaConfig is the record-facing label, e.g. "9na Epoca". It is
	// stored on every record, used as the época rollup dimension, and
	// recorded as the época key in the checkpoint ledger, so renaming it
	// orphans the set's checkpoints.
	EpocaConfig string `json:"epocaConfig" yaml:"epoca_config"`

	// Carpeta is the artifact subfolder for records of this época.
	Carpeta string `json:"carpeta" yaml:"carpeta"`
}

// TipoTesis is one thesis-type classifier value set ("jurisprudencia" or
// "aislada" in the default configuration).
type TipoTesis struct {
	// Nombre names the type in configuration files.
	Nombre string `json:"nombre" yaml:"nombre"`

	// IDs are the catalog's idTipoTesis classifier values.
	IDs []string `json:"ids" yaml:"ids"`

	// Config is the record-facing tipo_tesis_config label, e.g.
	// "Jurisprudencia". It is also the tipo key in the checkpoint ledger.
	Config string `json:"config" yaml:"config"`
}

// DefaultQuerySets returns the built-in épocas: the 9th through 12th, each
// with the instancias active during it.
func DefaultQuerySets() []QuerySet {
	return []QuerySet{
		{
			Nombre:      "9na_epoca",
			IDEpoca:     []string{"5"},
			Instancias:  []string{"6", "1", "2", "7"},
			Label:       "9a. Época - Todas las Instancias",
			EpocaConfig: "9na Epoca",
			Carpeta:     "9na Epoca",
		},
		{
			Nombre:      "10ma_epoca",
			IDEpoca:     []string{"100"},
			Instancias:  []string{"6", "1", "2", "50", "7"},
			Label:       "10a. Época - Todas las Instancias",
			EpocaConfig: "10ma Epoca",
			Carpeta:     "10ma Epoca",
		},
		{
			Nombre:      "11va_epoca",
			IDEpoca:     []string{"200"},
			Instancias:  []string{"6", "1", "2", "60", "50", "7"},
			Label:       "11a. Época - Todas las Instancias",
			EpocaConfig: "11va Epoca",
			Carpeta:     "11va Epoca",
		},
		{
			Nombre:      "12va_epoca",
			IDEpoca:     []string{"210"},
			Instancias:  []string{"6", "0", "60", "7", "70", "80"},
			Label:       "12a. Época - Todas las Instancias",
			EpocaConfig: "12va Epoca",
			Carpeta:     "12va Epoca",
		},
	}
}

// DefaultTiposTesis returns the built-in thesis types.
func DefaultTiposTesis() []TipoTesis {
	return []TipoTesis{
		{Nombre: "jurisprudencia", IDs: []string{"1"}, Config: "Jurisprudencia"},
		{Nombre: "aislada", IDs: []string{"0"}, Config: "Aislada"},
	}
}
