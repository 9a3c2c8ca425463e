package tesisdb

import "context"

// SearchQuery carries the fixed classifier filters for one paginated
// catalog search: one query set's época and instancia ids crossed with one
// thesis-type id list.
type SearchQuery struct {
	IDEpoca    []string `json:"idEpoca"`
	Instancias []string `json:"instancias"`
	TipoTesis  []string `json:"tipoTesis"`
	Label      string   `json:"label"`
}

// CatalogDocument is the raw per-item summary payload returned by the
// catalog's search endpoint, before any normalization. Ejecutorias and
// Votos are opaque values the catalog does not document; they are carried
// through and flattened to display strings at the normalization boundary.
type CatalogDocument struct {
	IUS                int64    `json:"ius"`
	ID                 string   `json:"id"`
	Rubro              string   `json:"rubro"`
	ClaveTesis         string   `json:"claveTesis"`
	Localizacion       string   `json:"localizacion"`
	Sala               string   `json:"sala"`
	EpocaAbr           string   `json:"epocaAbr"`
	InstanciaAbr       string   `json:"instanciaAbr"`
	Fuente             string   `json:"fuente"`
	TipoTesis          int      `json:"tipoTesis"`
	TipoJurisprudencia int      `json:"tipoJurisprudencia"`
	Materias           []string `json:"materias"`
	Precedentes        string   `json:"precedentes"`
	Ejecutorias        []any    `json:"ejecutorias"`
	Votos              []any    `json:"votos"`
}

// SearchPage is one page of catalog search results. The catalog reports an
// empty Documents list past the last page rather than an error.
type SearchPage struct {
	Documents  []CatalogDocument `json:"documents"`
	TotalPages int               `json:"totalPage"`
}

// TesisDetail is the enrichment payload from the catalog's per-item detail
// endpoint, normalized to stable field types (the raw endpoint returns
// materias as either a string or a list, and pagina as either a string or
// a number).
type TesisDetail struct {
	IUS         string   `json:"ius"`
	Precedentes string   `json:"precedentes"`
	Materias    []string `json:"materias"`
	Ejecutorias []any    `json:"ejecutorias"`
	Votos       []any    `json:"votos"`
	Volumen     string   `json:"volumen"`
	Tomo        string   `json:"tomo"`
	Pagina      string   `json:"pagina"`
}

// CatalogClient issues requests against the remote catalog. It is
// stateless and performs no retries of its own; callers own pacing and
// retry policy.
type CatalogClient interface {
	// SearchPage fetches one page of search results. Page numbering starts
	// at 0.
	SearchPage(ctx context.Context, q SearchQuery, page, size int) (*SearchPage, error)

	// FetchDetail fetches the enrichment payload for one record.
	// Returns ENOTFOUND if the record is unknown to the catalog.
	FetchDetail(ctx context.Context, ius string) (*TesisDetail, error)

	// FetchArtifact fetches the record's binary artifact (PDF).
	FetchArtifact(ctx context.Context, ius string) ([]byte, error)
}
