package scjn

import (
	"fmt"
	"strings"

	"github.com/fwojciec/tesisdb"
)

// NormalizeDocument converts one raw search result into a record ready for
// the store, tagged with the query-set labels it was extracted under. The
// positional fields (tomo, página, mes, año) come from parsing the
// free-form localización string.
func NormalizeDocument(doc tesisdb.CatalogDocument, epocaConfig, tipoTesisConfig string) *tesisdb.Tesis {
	loc := ParseLocalizacion(doc.Localizacion)
	return &tesisdb.Tesis{
		IUS:                     formatIUS(doc.IUS),
		DocID:                   doc.ID,
		Rubro:                   CleanHTML(doc.Rubro),
		ClaveTesis:              strings.TrimSpace(doc.ClaveTesis),
		Localizacion:            strings.TrimSpace(doc.Localizacion),
		Sala:                    strings.TrimSpace(doc.Sala),
		Epoca:                   strings.TrimSpace(doc.EpocaAbr),
		Instancia:               strings.TrimSpace(doc.InstanciaAbr),
		Fuente:                  strings.TrimSpace(doc.Fuente),
		TipoTesis:               doc.TipoTesis,
		TipoJurisprudencia:      doc.TipoJurisprudencia,
		TipoJurisprudenciaTexto: TipoJurisprudenciaTexto(doc.TipoJurisprudencia),
		EpocaConfig:             epocaConfig,
		TipoTesisConfig:         tipoTesisConfig,
		Tomo:                    loc.Tomo,
		Pagina:                  loc.Pagina,
		Mes:                     loc.Mes,
		Anio:                    loc.Anio,
	}
}

// DetailUpdate converts a detail payload into the enrichment update applied
// to the stored record.
func DetailUpdate(detail *tesisdb.TesisDetail) tesisdb.TesisDetailsUpdate {
	return tesisdb.TesisDetailsUpdate{
		Precedentes: CleanHTML(detail.Precedentes),
		Ejecutorias: joinAny(detail.Ejecutorias),
		Votos:       joinAny(detail.Votos),
		Volumen:     detail.Volumen,
		Materias:    detail.Materias,
	}
}

// FallbackUpdate builds an enrichment update from the search result itself,
// for records whose detail fetch failed. The summary payload carries a
// subset of the detail fields; populating from it beats leaving the record
// bare.
func FallbackUpdate(doc tesisdb.CatalogDocument) tesisdb.TesisDetailsUpdate {
	return tesisdb.TesisDetailsUpdate{
		Precedentes: CleanHTML(doc.Precedentes),
		Ejecutorias: joinAny(doc.Ejecutorias),
		Votos:       joinAny(doc.Votos),
		Materias:    doc.Materias,
	}
}

// joinAny flattens the catalog's undocumented opaque list values to a
// display string.
func joinAny(values []any) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, ", ")
}
