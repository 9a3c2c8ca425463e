package tesisdb

import (
	"context"
	"time"
)

// TimeLayout is the canonical storage layout for timestamps. Lexicographic
// order of formatted values equals chronological order, which the keyset
// cursor in SearchTesis depends on.
const TimeLayout = "2006-01-02 15:04:05"

// Tesis represents one legal-thesis record keyed by its IUS number, the
// globally unique identifier assigned by the catalog.
type Tesis struct {
	IUS                     string    `json:"ius"`
	DocID                   string    `json:"docId"`
	Rubro                   string    `json:"rubro"`
	ClaveTesis              string    `json:"claveTesis"`
	Localizacion            string    `json:"localizacion"`
	Sala                    string    `json:"sala"`
	Epoca                   string    `json:"epoca"`
	Instancia               string    `json:"instancia"`
	Fuente                  string    `json:"fuente"`
	TipoTesis               int       `json:"tipoTesis"`
	TipoJurisprudencia      int       `json:"tipoJurisprudencia"`
	TipoJurisprudenciaTexto string    `json:"tipoJurisprudenciaTexto"`
	Precedentes             string    `json:"precedentes"`
	Ejecutorias             string    `json:"ejecutorias"`
	Votos                   string    `json:"votos"`
	Volumen                 string    `json:"volumen"`
	Tomo                    string    `json:"tomo"`
	Pagina                  string    `json:"pagina"`
	Mes                     string    `json:"mes"`
	Anio                    string    `json:"anio"`
	EpocaConfig             string    `json:"epocaConfig"`
	TipoTesisConfig         string    `json:"tipoTesisConfig"`
	FechaExtraccion         time.Time `json:"fechaExtraccion"`
	FechaActualizacion      time.Time `json:"fechaActualizacion"`
	Descargado              bool      `json:"descargado"`
	Ubicacion               string    `json:"ubicacion"`
	Materias                []string  `json:"materias,omitempty"`
}

// Validate returns an error if the tesis contains invalid fields.
func (t *Tesis) Validate() error {
	if t.IUS == "" {
		return Errorf(EINVALID, "tesis IUS required")
	}
	return nil
}

// TesisDetailsUpdate carries enrichment fields from the catalog's detail
// endpoint. Merge policy: an empty string (or empty Materias slice) means
// "not supplied" and the stored value is kept; a non-empty value replaces
// the stored one. A non-empty Materias list replaces the full association
// set for the record. Once set, a field can therefore never be cleared.
type TesisDetailsUpdate struct {
	Precedentes string   `json:"precedentes"`
	Ejecutorias string   `json:"ejecutorias"`
	Votos       string   `json:"votos"`
	Volumen     string   `json:"volumen"`
	Materias    []string `json:"materias"`
}

// TesisSummary is the list-projection of a record returned by SearchTesis.
type TesisSummary struct {
	IUS                string    `json:"ius"`
	EpocaConfig        string    `json:"epocaConfig"`
	Rubro              string    `json:"rubro"`
	ClaveTesis         string    `json:"claveTesis"`
	Descargado         bool      `json:"descargado"`
	FechaActualizacion time.Time `json:"fechaActualizacion"`
	Materias           []string  `json:"materias,omitempty"`
}

// PendingTesis identifies a record whose artifact has not been downloaded.
type PendingTesis struct {
	IUS         string `json:"ius"`
	EpocaConfig string `json:"epocaConfig"`
	Rubro       string `json:"rubro"`
	ClaveTesis  string `json:"claveTesis"`
}

// Cursor is a keyset-pagination position: the (fecha_actualizacion, ius)
// pair of the last row returned. The next page's predicate is
// (fecha_actualizacion, ius) < (cursor) in descending order, so pagination
// stays stable while new rows are inserted concurrently.
//
// FechaActualizacion carries the stored string form (TimeLayout) so the
// comparison in SQL is exact, with no round-trip through time.Time.
type Cursor struct {
	FechaActualizacion string `json:"fechaActualizacion"`
	IUS                string `json:"ius"`
}

// TesisFilter represents a filter for SearchTesis and CountTesis. Both must
// build identical predicates so that displayed totals never drift from
// delivered pages.
type TesisFilter struct {
	// Materia filters to records associated with the named taxonomy term.
	Materia string `json:"materia"`

	// Epoca filters on the record's query-set label (epoca_config).
	Epoca string `json:"epoca"`

	// Texto is a free-text query against the full-text index. Whitespace
	// separates tokens; double-quoted phrases match as a unit; bare tokens
	// match by prefix.
	Texto string `json:"texto"`

	// Limit caps the page size. Required for SearchTesis.
	Limit int `json:"limit"`

	// After resumes after a previously returned cursor. For CountTesis it
	// counts the rows remaining strictly after that position.
	After *Cursor `json:"after"`
}

// TesisService represents the record store: the only component that touches
// persistent record state directly. Implementations must keep the full-text
// shadow index transactionally consistent with every base-table mutation.
type TesisService interface {
	// UpsertTesis inserts a new record or updates the mutable fields of an
	// existing one. Reports whether the record was created. An update never
	// clears the download status or artifact location.
	UpsertTesis(ctx context.Context, tesis *Tesis) (created bool, err error)

	// TesisExists reports whether a record with the given IUS exists.
	TesisExists(ctx context.Context, ius string) (bool, error)

	// FindTesisByIUS retrieves a record with its flattened materia list.
	// Returns ENOTFOUND if the record does not exist.
	FindTesisByIUS(ctx context.Context, ius string) (*Tesis, error)

	// UpdateTesisDetails merges enrichment fields into an existing record
	// per the TesisDetailsUpdate policy and bumps fecha_actualizacion.
	UpdateTesisDetails(ctx context.Context, ius string, upd TesisDetailsUpdate) error

	// MarkDownloaded records the artifact location for a record.
	MarkDownloaded(ctx context.Context, ius, ubicacion string) error

	// DownloadStatus returns the download flag and recorded location.
	DownloadStatus(ctx context.Context, ius string) (downloaded bool, ubicacion string, err error)

	// FindPending lists records awaiting artifact download, ordered by IUS.
	// A limit of 0 means no limit. includeFailed widens the worklist to
	// records whose status was never initialized.
	FindPending(ctx context.Context, limit int, includeFailed bool) ([]*PendingTesis, error)

	// SearchTesis returns one page of records ordered by
	// (fecha_actualizacion, ius) descending, and the cursor of the last
	// row when a further page may exist.
	SearchTesis(ctx context.Context, filter TesisFilter) ([]*TesisSummary, *Cursor, error)

	// CountTesis counts the records matching the filter, using predicates
	// identical to SearchTesis.
	CountTesis(ctx context.Context, filter TesisFilter) (int, error)

	// Epocas lists the distinct epoca_config values present in the store.
	Epocas(ctx context.Context) ([]string, error)

	// Materias lists all taxonomy term names, ordered by name.
	Materias(ctx context.Context) ([]string, error)
}
