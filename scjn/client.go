// Package scjn implements tesisdb.CatalogClient against the SCJN thesis
// microservice (sjf2.scjn.gob.mx). The client is stateless: pacing and
// retry policy belong to the callers.
package scjn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fwojciec/tesisdb"
)

const (
	// DefaultBaseURL is the public thesis microservice endpoint.
	DefaultBaseURL = "https://sjf2.scjn.gob.mx/services/sjftesismicroservice/api/public/tesis"

	// DefaultHostName is passed through to the service, which uses it to
	// build absolute links inside payloads.
	DefaultHostName = "https://sjf2.scjn.gob.mx"

	// DefaultTimeout is the default timeout for catalog requests.
	DefaultTimeout = 30 * time.Second

	appID     = "SJFAPP2020"
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// Ensure Client implements tesisdb.CatalogClient at compile time.
var _ tesisdb.CatalogClient = (*Client)(nil)

// Client issues requests against the SCJN catalog service.
type Client struct {
	client   *http.Client
	baseURL  string
	hostName string
	timeout  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the catalog endpoint. Used by tests to point the
// client at a local server.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHostName overrides the hostName passthrough parameter.
func WithHostName(h string) Option {
	return func(c *Client) {
		c.hostName = h
	}
}

// WithTimeout sets the timeout for catalog requests.
// Defaults to DefaultTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a new catalog client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		hostName: DefaultHostName,
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Timeout: c.timeout,
	}

	return c
}

// classifier is one fixed filter in the search payload. The service
// requires the full object shape even for invisible filters.
type classifier struct {
	Name        string   `json:"name"`
	Value       []string `json:"value"`
	AllSelected bool     `json:"allSelected"`
	Visible     bool     `json:"visible"`
	IsMatrix    bool     `json:"isMatrix"`
}

type searchPayload struct {
	Classifiers      []classifier `json:"classifiers"`
	SearchTerms      []string     `json:"searchTerms"`
	BFacet           bool         `json:"bFacet"`
	IUS              []string     `json:"ius"`
	IDApp            string       `json:"idApp"`
	LBSearch         []string     `json:"lbSearch"`
	FilterExpression string       `json:"filterExpression"`
}

// SearchPage fetches one page of search results. Page numbering starts at 0.
func (c *Client) SearchPage(ctx context.Context, q tesisdb.SearchQuery, page, size int) (*tesisdb.SearchPage, error) {
	payload := searchPayload{
		Classifiers: []classifier{
			{Name: "idEpoca", Value: q.IDEpoca},
			{Name: "numInstancia", Value: q.Instancias},
			{Name: "idTipoTesis", Value: q.TipoTesis},
			{Name: "tipoDocumento", Value: []string{"1"}},
		},
		SearchTerms: []string{},
		BFacet:      true,
		IUS:         []string{},
		IDApp:       appID,
		LBSearch:    []string{q.Label},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s?page=%d&size=%d", c.baseURL, page, size)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, tesisdb.Errorf(tesisdb.EUNAVAILABLE, "catalog search returned HTTP %d", resp.StatusCode)
	}

	var raw struct {
		Documents  []rawDocument `json:"documents"`
		TotalPages int           `json:"totalPage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode search page: %w", err)
	}

	result := &tesisdb.SearchPage{TotalPages: raw.TotalPages}
	for _, doc := range raw.Documents {
		result.Documents = append(result.Documents, doc.toDomain())
	}
	return result, nil
}

// FetchDetail fetches the enrichment payload for one record. Records
// published in the weekly gazette live behind isSemanal=true, so a 404 on
// the plain URL gets one retry with that flag before giving up.
func (c *Client) FetchDetail(ctx context.Context, ius string) (*tesisdb.TesisDetail, error) {
	detail, status, err := c.fetchDetailOnce(ctx, ius, false)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		detail, status, err = c.fetchDetailOnce(ctx, ius, true)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case status == http.StatusOK:
		return detail, nil
	case status == http.StatusNotFound:
		return nil, tesisdb.Errorf(tesisdb.ENOTFOUND, "tesis %q not found in catalog", ius)
	default:
		return nil, tesisdb.Errorf(tesisdb.EUNAVAILABLE, "catalog detail returned HTTP %d", status)
	}
}

func (c *Client) fetchDetailOnce(ctx context.Context, ius string, semanal bool) (*tesisdb.TesisDetail, int, error) {
	reqURL := fmt.Sprintf("%s/%s?hostName=%s", c.baseURL, url.PathEscape(ius), url.QueryEscape(c.hostName))
	if semanal {
		reqURL = fmt.Sprintf("%s/%s?isSemanal=true&hostName=%s", c.baseURL, url.PathEscape(ius), url.QueryEscape(c.hostName))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var raw rawDetail
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, 0, fmt.Errorf("failed to decode detail for %s: %w", ius, err)
	}
	return raw.toDomain(), resp.StatusCode, nil
}

// FetchArtifact fetches the record's PDF from the report endpoint.
func (c *Client) FetchArtifact(ctx context.Context, ius string) ([]byte, error) {
	params := url.Values{
		"nameDocto":    {"Tesis"},
		"hostName":     {c.hostName},
		"soloParrafos": {"false"},
		"appSource":    {appID},
	}
	reqURL := fmt.Sprintf("%s/reporte/%s?%s", c.baseURL, url.PathEscape(ius), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/pdf,*/*")
	req.Header.Set("Referer", c.hostName+"/")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, tesisdb.Errorf(tesisdb.ENOTFOUND, "artifact for tesis %q not found", ius)
	case resp.StatusCode != http.StatusOK:
		return nil, tesisdb.Errorf(tesisdb.EUNAVAILABLE, "artifact download returned HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// rawDocument is the wire shape of one search result. Several fields are
// loosely typed on the wire (materias arrives as a string or a list), so
// decoding goes through json.RawMessage before conversion to the domain
// type.
type rawDocument struct {
	IUS                int64           `json:"ius"`
	ID                 string          `json:"id"`
	Rubro              string          `json:"rubro"`
	ClaveTesis         string          `json:"claveTesis"`
	Localizacion       string          `json:"localizacion"`
	Sala               string          `json:"sala"`
	EpocaAbr           string          `json:"epocaAbr"`
	InstanciaAbr       string          `json:"instanciaAbr"`
	Fuente             string          `json:"fuente"`
	TipoTesis          int             `json:"tipoTesis"`
	TipoJurisprudencia int             `json:"tipoJurisprudencia"`
	Materias           json.RawMessage `json:"materias"`
	Precedentes        string          `json:"precedentes"`
	Ejecutorias        []any           `json:"ejecutorias"`
	Votos              []any           `json:"votos"`
}

func (d rawDocument) toDomain() tesisdb.CatalogDocument {
	return tesisdb.CatalogDocument{
		IUS:                d.IUS,
		ID:                 d.ID,
		Rubro:              d.Rubro,
		ClaveTesis:         d.ClaveTesis,
		Localizacion:       d.Localizacion,
		Sala:               d.Sala,
		EpocaAbr:           d.EpocaAbr,
		InstanciaAbr:       d.InstanciaAbr,
		Fuente:             d.Fuente,
		TipoTesis:          d.TipoTesis,
		TipoJurisprudencia: d.TipoJurisprudencia,
		Materias:           decodeMaterias(d.Materias),
		Precedentes:        d.Precedentes,
		Ejecutorias:        d.Ejecutorias,
		Votos:              d.Votos,
	}
}

// rawDetail is the wire shape of the detail endpoint.
type rawDetail struct {
	IUS         json.RawMessage `json:"ius"`
	Precedentes string          `json:"precedentes"`
	Materias    json.RawMessage `json:"materias"`
	Ejecutorias []any           `json:"ejecutorias"`
	Votos       []any           `json:"votos"`
	Volumen     string          `json:"volumen"`
	Tomo        json.RawMessage `json:"tomo"`
	Pagina      json.RawMessage `json:"pagina"`
}

func (d rawDetail) toDomain() *tesisdb.TesisDetail {
	tomo := decodeScalar(d.Tomo)
	if tomo == "" {
		// Newer épocas report "Libro N, ..." in volumen instead of a tomo.
		tomo = TomoFromVolumen(d.Volumen)
	}
	return &tesisdb.TesisDetail{
		IUS:         decodeScalar(d.IUS),
		Precedentes: d.Precedentes,
		Materias:    decodeMaterias(d.Materias),
		Ejecutorias: d.Ejecutorias,
		Votos:       d.Votos,
		Volumen:     d.Volumen,
		Tomo:        tomo,
		Pagina:      decodeScalar(d.Pagina),
	}
}

// decodeMaterias accepts a JSON list of strings, a single comma-separated
// string, or null.
func decodeMaterias(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return splitCommaList(single)
	}
	return nil
}

// decodeScalar accepts a JSON string or number and returns its string form.
func decodeScalar(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

func formatIUS(ius int64) string {
	return strconv.FormatInt(ius, 10)
}
