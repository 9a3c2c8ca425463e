package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/tesisdb"
	lru "github.com/hashicorp/golang-lru/v2"
)

// materiaCacheSize bounds the materia name→id cache. The real taxonomy has
// a few dozen terms; the bound only matters for pathological inputs.
const materiaCacheSize = 1024

// Compile-time interface verification.
var _ tesisdb.TesisService = (*TesisService)(nil)

// TesisService implements tesisdb.TesisService using SQLite.
type TesisService struct {
	db       *DB
	materias *lru.Cache[string, int64]
}

// NewTesisService creates a new TesisService.
func NewTesisService(db *DB) *TesisService {
	cache, _ := lru.New[string, int64](materiaCacheSize)
	return &TesisService{db: db, materias: cache}
}

// UpsertTesis inserts a new record or updates the mutable fields of an
// existing one. The update path leaves the download status, artifact
// location, extraction timestamp, and enrichment fields untouched.
func (s *TesisService) UpsertTesis(ctx context.Context, tesis *tesisdb.Tesis) (bool, error) {
	if err := tesis.Validate(); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	tesis.FechaActualizacion = now
	if tesis.FechaExtraccion.IsZero() {
		tesis.FechaExtraccion = now
	}

	exists, err := s.TesisExists(ctx, tesis.IUS)
	if err != nil {
		return false, err
	}

	if exists {
		_, err := s.db.ExecContext(ctx, `
			UPDATE tesis SET
				rubro = ?,
				clave_tesis = ?,
				localizacion = ?,
				sala = ?,
				epoca = ?,
				instancia = ?,
				fuente = ?,
				tipo_tesis = ?,
				tipo_jurisprudencia = ?,
				tipo_jurisprudencia_texto = ?,
				epoca_config = ?,
				tipo_tesis_config = ?,
				tomo = ?,
				pagina = ?,
				mes = ?,
				anio = ?,
				fecha_actualizacion = ?,
				descargado = COALESCE(descargado, 'No'),
				ubicacion = COALESCE(ubicacion, '')
			WHERE ius = ?
		`, tesis.Rubro, tesis.ClaveTesis, tesis.Localizacion, tesis.Sala, tesis.Epoca,
			tesis.Instancia, tesis.Fuente, tesis.TipoTesis, tesis.TipoJurisprudencia,
			tesis.TipoJurisprudenciaTexto, tesis.EpocaConfig, tesis.TipoTesisConfig,
			tesis.Tomo, tesis.Pagina, tesis.Mes, tesis.Anio,
			formatTimestamp(tesis.FechaActualizacion), tesis.IUS)
		return false, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tesis (
			ius, id, rubro, clave_tesis, localizacion, sala, epoca,
			instancia, fuente, tipo_tesis, tipo_jurisprudencia,
			tipo_jurisprudencia_texto, epoca_config, tipo_tesis_config,
			tomo, pagina, mes, anio, fecha_extraccion, fecha_actualizacion,
			descargado, ubicacion
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 'No', '')
	`, tesis.IUS, tesis.DocID, tesis.Rubro, tesis.ClaveTesis, tesis.Localizacion,
		tesis.Sala, tesis.Epoca, tesis.Instancia, tesis.Fuente, tesis.TipoTesis,
		tesis.TipoJurisprudencia, tesis.TipoJurisprudenciaTexto, tesis.EpocaConfig,
		tesis.TipoTesisConfig, tesis.Tomo, tesis.Pagina, tesis.Mes, tesis.Anio,
		formatTimestamp(tesis.FechaExtraccion), formatTimestamp(tesis.FechaActualizacion))
	if err != nil {
		return false, err
	}
	return true, nil
}

// TesisExists reports whether a record with the given IUS exists.
func (s *TesisService) TesisExists(ctx context.Context, ius string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM tesis WHERE ius = ?", ius).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindTesisByIUS retrieves a record with its flattened materia list.
func (s *TesisService) FindTesisByIUS(ctx context.Context, ius string) (*tesisdb.Tesis, error) {
	var t tesisdb.Tesis
	var descargado string
	var fechaExtraccion, fechaActualizacion sql.NullString
	var materias sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT t.ius, t.id, t.rubro, t.clave_tesis, t.localizacion, t.sala,
		       t.epoca, t.instancia, t.fuente, t.tipo_tesis, t.tipo_jurisprudencia,
		       t.tipo_jurisprudencia_texto, t.precedentes, t.ejecutorias, t.votos,
		       t.volumen, t.tomo, t.pagina, t.mes, t.anio, t.epoca_config,
		       t.tipo_tesis_config, t.fecha_extraccion, t.fecha_actualizacion,
		       t.descargado, t.ubicacion,
		       (SELECT GROUP_CONCAT(m.nombre, ', ')
		        FROM tesis_materia tm
		        JOIN materia m ON tm.materia_id = m.id
		        WHERE tm.tesis_ius = t.ius) AS materias
		FROM tesis t
		WHERE t.ius = ?
	`, ius).Scan(&t.IUS, &t.DocID, nullStr(&t.Rubro), nullStr(&t.ClaveTesis),
		nullStr(&t.Localizacion), nullStr(&t.Sala), nullStr(&t.Epoca),
		nullStr(&t.Instancia), nullStr(&t.Fuente), &t.TipoTesis, &t.TipoJurisprudencia,
		nullStr(&t.TipoJurisprudenciaTexto), nullStr(&t.Precedentes),
		nullStr(&t.Ejecutorias), nullStr(&t.Votos), nullStr(&t.Volumen),
		nullStr(&t.Tomo), nullStr(&t.Pagina), nullStr(&t.Mes), nullStr(&t.Anio),
		nullStr(&t.EpocaConfig), nullStr(&t.TipoTesisConfig),
		&fechaExtraccion, &fechaActualizacion, &descargado, nullStr(&t.Ubicacion),
		&materias)

	if err == sql.ErrNoRows {
		return nil, tesisdb.Errorf(tesisdb.ENOTFOUND, "tesis %q not found", ius)
	}
	if err != nil {
		return nil, err
	}

	t.Descargado = descargado == "Sí"
	t.Materias = splitMaterias(materias.String)
	if t.FechaExtraccion, err = parseTimestamp(fechaExtraccion.String, "fecha_extraccion"); err != nil {
		return nil, err
	}
	if t.FechaActualizacion, err = parseTimestamp(fechaActualizacion.String, "fecha_actualizacion"); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTesisDetails merges enrichment fields into an existing record and
// replaces its materia association set when the update carries one. The
// whole mutation runs in a single transaction.
func (s *TesisService) UpdateTesisDetails(ctx context.Context, ius string, upd tesisdb.TesisDetailsUpdate) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// NULLIF turns an unsupplied (empty) value into NULL so COALESCE keeps
	// the stored one: the documented first-writer-wins merge.
	result, err := tx.ExecContext(ctx, `
		UPDATE tesis SET
			precedentes = COALESCE(NULLIF(?, ''), precedentes),
			ejecutorias = COALESCE(NULLIF(?, ''), ejecutorias),
			votos = COALESCE(NULLIF(?, ''), votos),
			volumen = COALESCE(NULLIF(?, ''), volumen),
			fecha_actualizacion = ?
		WHERE ius = ?
	`, upd.Precedentes, upd.Ejecutorias, upd.Votos, upd.Volumen,
		formatTimestamp(time.Now()), ius)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return tesisdb.Errorf(tesisdb.ENOTFOUND, "tesis %q not found", ius)
	}

	// Cache additions are deferred until after commit so a rollback never
	// leaves ids of uncommitted rows in the cache.
	var created map[string]int64
	if len(upd.Materias) > 0 {
		if created, err = s.replaceMaterias(ctx, tx, ius, upd.Materias); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	for nombre, id := range created {
		s.materias.Add(nombre, id)
	}
	return nil
}

// replaceMaterias deletes the record's association rows and reinserts one
// per named term, creating unknown terms. Returns the ids of terms created
// by this call.
func (s *TesisService) replaceMaterias(ctx context.Context, tx *sql.Tx, ius string, nombres []string) (map[string]int64, error) {
	if _, err := tx.ExecContext(ctx, "DELETE FROM tesis_materia WHERE tesis_ius = ?", ius); err != nil {
		return nil, err
	}

	created := make(map[string]int64)
	for _, nombre := range nombres {
		nombre = strings.TrimSpace(nombre)
		if nombre == "" {
			continue
		}

		id, ok := s.materias.Get(nombre)
		if !ok {
			var err error
			id, err = materiaID(ctx, tx, nombre)
			if err != nil {
				return nil, err
			}
			created[nombre] = id
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO tesis_materia (tesis_ius, materia_id)
			VALUES (?, ?)
		`, ius, id); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// materiaID returns the id of the named term, inserting it if unknown.
func materiaID(ctx context.Context, tx *sql.Tx, nombre string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, "SELECT id FROM materia WHERE nombre = ?", nombre).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, "INSERT INTO materia (nombre) VALUES (?)", nombre)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// MarkDownloaded records the artifact location for a record.
func (s *TesisService) MarkDownloaded(ctx context.Context, ius, ubicacion string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tesis
		SET descargado = 'Sí', ubicacion = ?, fecha_actualizacion = ?
		WHERE ius = ?
	`, ubicacion, formatTimestamp(time.Now()), ius)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return tesisdb.Errorf(tesisdb.ENOTFOUND, "tesis %q not found", ius)
	}
	return nil
}

// DownloadStatus returns the download flag and recorded artifact location.
func (s *TesisService) DownloadStatus(ctx context.Context, ius string) (bool, string, error) {
	var descargado, ubicacion sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT descargado, ubicacion FROM tesis WHERE ius = ?", ius,
	).Scan(&descargado, &ubicacion)
	if err == sql.ErrNoRows {
		return false, "", tesisdb.Errorf(tesisdb.ENOTFOUND, "tesis %q not found", ius)
	}
	if err != nil {
		return false, "", err
	}
	return descargado.String == "Sí", ubicacion.String, nil
}

// FindPending lists records awaiting artifact download, ordered by IUS.
func (s *TesisService) FindPending(ctx context.Context, limit int, includeFailed bool) ([]*tesisdb.PendingTesis, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT ius, epoca_config, rubro, clave_tesis FROM tesis WHERE descargado = 'No'")
	if includeFailed {
		query.WriteString(" OR descargado IS NULL")
	}
	query.WriteString(" ORDER BY ius")
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pending []*tesisdb.PendingTesis
	for rows.Next() {
		var p tesisdb.PendingTesis
		if err := rows.Scan(&p.IUS, nullStr(&p.EpocaConfig), nullStr(&p.Rubro), nullStr(&p.ClaveTesis)); err != nil {
			return nil, err
		}
		pending = append(pending, &p)
	}
	return pending, rows.Err()
}

// SearchTesis returns one page of records ordered by
// (fecha_actualizacion, ius) descending, and the keyset cursor of the last
// row when the page is full.
func (s *TesisService) SearchTesis(ctx context.Context, filter tesisdb.TesisFilter) ([]*tesisdb.TesisSummary, *tesisdb.Cursor, error) {
	if filter.Limit <= 0 {
		return nil, nil, tesisdb.Errorf(tesisdb.EINVALID, "search limit required")
	}

	var query strings.Builder
	query.WriteString(`
		SELECT t.ius, t.epoca_config, t.rubro, t.clave_tesis, t.descargado,
		       t.fecha_actualizacion,
		       (SELECT GROUP_CONCAT(m.nombre, ', ')
		        FROM tesis_materia tm
		        JOIN materia m ON tm.materia_id = m.id
		        WHERE tm.tesis_ius = t.ius) AS materias
		FROM tesis t
	`)

	where, args := appendFilter(&query, filter)
	if len(where) > 0 {
		query.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	query.WriteString(" ORDER BY t.fecha_actualizacion DESC, t.ius DESC LIMIT ?")
	args = append(args, filter.Limit)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var summaries []*tesisdb.TesisSummary
	var lastFecha string
	for rows.Next() {
		var sum tesisdb.TesisSummary
		var descargado, fecha string
		var materias sql.NullString
		if err := rows.Scan(&sum.IUS, nullStr(&sum.EpocaConfig), nullStr(&sum.Rubro),
			nullStr(&sum.ClaveTesis), &descargado, &fecha, &materias); err != nil {
			return nil, nil, err
		}
		sum.Descargado = descargado == "Sí"
		sum.Materias = splitMaterias(materias.String)
		if sum.FechaActualizacion, err = parseTimestamp(fecha, "fecha_actualizacion"); err != nil {
			return nil, nil, err
		}
		lastFecha = fecha
		summaries = append(summaries, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	// A partial page means there is nothing past it; only a full page gets
	// a cursor.
	var next *tesisdb.Cursor
	if len(summaries) == filter.Limit {
		next = &tesisdb.Cursor{
			FechaActualizacion: lastFecha,
			IUS:                summaries[len(summaries)-1].IUS,
		}
	}
	return summaries, next, nil
}

// CountTesis counts records matching the filter using predicates identical
// to SearchTesis. With a cursor it counts the rows remaining strictly after
// that position.
func (s *TesisService) CountTesis(ctx context.Context, filter tesisdb.TesisFilter) (int, error) {
	var query strings.Builder
	query.WriteString("SELECT COUNT(*) FROM tesis t")

	where, args := appendFilter(&query, filter)
	if len(where) > 0 {
		query.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query.String(), args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// appendFilter writes the filter's JOIN clause (if full-text search is in
// play) to query and returns the WHERE conditions with their arguments.
// SearchTesis and CountTesis share it so totals can never drift from pages.
func appendFilter(query *strings.Builder, filter tesisdb.TesisFilter) ([]string, []any) {
	var where []string
	var args []any

	if match := BuildMatchQuery(filter.Texto); match != "" {
		query.WriteString(" INNER JOIN tesis_fts ON t.rowid = tesis_fts.rowid")
		where = append(where, "tesis_fts MATCH ?")
		args = append(args, match)
	}
	if filter.Epoca != "" {
		where = append(where, "t.epoca_config = ?")
		args = append(args, filter.Epoca)
	}
	if filter.Materia != "" {
		where = append(where,
			"EXISTS (SELECT 1 FROM tesis_materia tm JOIN materia m ON tm.materia_id = m.id "+
				"WHERE tm.tesis_ius = t.ius AND m.nombre = ?)")
		args = append(args, filter.Materia)
	}
	if filter.After != nil {
		where = append(where, "(t.fecha_actualizacion, t.ius) < (?, ?)")
		args = append(args, filter.After.FechaActualizacion, filter.After.IUS)
	}
	return where, args
}

// Epocas lists the distinct epoca_config values present in the store.
func (s *TesisService) Epocas(ctx context.Context) ([]string, error) {
	return s.stringColumn(ctx, `
		SELECT DISTINCT epoca_config
		FROM tesis
		WHERE epoca_config IS NOT NULL AND epoca_config != ''
		ORDER BY epoca_config
	`)
}

// Materias lists all taxonomy term names, ordered by name.
func (s *TesisService) Materias(ctx context.Context) ([]string, error) {
	return s.stringColumn(ctx, "SELECT nombre FROM materia ORDER BY nombre")
}

func (s *TesisService) stringColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// nullStr adapts a plain string field to scanning of nullable columns,
// mapping NULL to "".
func nullStr(s *string) *nullString {
	return &nullString{s: s}
}

type nullString struct{ s *string }

func (n *nullString) Scan(value any) error {
	if value == nil {
		*n.s = ""
		return nil
	}
	switch v := value.(type) {
	case string:
		*n.s = v
	case []byte:
		*n.s = string(v)
	default:
		return fmt.Errorf("cannot scan %T into string", value)
	}
	return nil
}
