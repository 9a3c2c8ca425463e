package scjn

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	brRe         = regexp.MustCompile(`(?i)<br\s*/?>`)
	pOpenRe      = regexp.MustCompile(`(?i)<p[^>]*>`)
	pCloseRe     = regexp.MustCompile(`(?i)</p>`)
	blankLinesRe = regexp.MustCompile(`\n\s*\n`)

	tomoRe    = regexp.MustCompile(`(?i)Tomo\s+([^,;]+)`)
	paginaRe  = regexp.MustCompile(`[Pp]ág\.?\s*(\d+)`)
	mesAnioRe = regexp.MustCompile(`([A-Za-zÁÉÍÓÚáéíóúñÑ]+)\s+de\s+(\d{4})`)
	anioRe    = regexp.MustCompile(`(\d{4})`)
	libroRe   = regexp.MustCompile(`Libro\s+(\d+)`)
)

// CleanHTML converts the catalog's HTML field values (rubro, precedentes)
// to plain text: br and paragraph boundaries become newlines, remaining
// markup is stripped, entities are decoded, and runs of blank lines
// collapse to one.
func CleanHTML(text string) string {
	if text == "" {
		return text
	}

	text = brRe.ReplaceAllString(text, "\n")
	text = pOpenRe.ReplaceAllString(text, "")
	text = pCloseRe.ReplaceAllString(text, "\n\n")

	// goquery strips the remaining tags and decodes entities.
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		text = doc.Text()
	}

	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Localizacion holds the positional fields parsed out of a record's
// free-form localización string.
type Localizacion struct {
	Tomo   string
	Pagina string
	Mes    string
	Anio   string
}

// ParseLocalizacion extracts tomo, página, month, and year from strings
// like "Tomo XXII, Agosto de 2005; Pág. 52". Fields that don't appear stay
// empty; a bare year is still captured when the "Mes de Año" form is
// absent.
func ParseLocalizacion(localizacion string) Localizacion {
	var l Localizacion
	if localizacion == "" {
		return l
	}

	if m := tomoRe.FindStringSubmatch(localizacion); m != nil {
		l.Tomo = strings.TrimSpace(m[1])
	}
	if m := paginaRe.FindStringSubmatch(localizacion); m != nil {
		l.Pagina = m[1]
	}
	if m := mesAnioRe.FindStringSubmatch(localizacion); m != nil {
		l.Mes = m[1]
		l.Anio = m[2]
	} else if m := anioRe.FindStringSubmatch(localizacion); m != nil {
		l.Anio = m[1]
	}
	return l
}

// TomoFromVolumen recovers a tomo number from volumen strings like
// "Libro 35, Octubre de 2016" for records whose localización lacks one.
func TomoFromVolumen(volumen string) string {
	if m := libroRe.FindStringSubmatch(volumen); m != nil {
		return m[1]
	}
	return ""
}

// tipoJurisprudenciaTextos maps the catalog's numeric jurisprudence-type
// codes to display labels.
var tipoJurisprudenciaTextos = map[int]string{
	1: "Por reiteración",
	2: "Por contradicción",
	3: "Por sustitución",
	4: "Por acción de inconstitucionalidad",
	5: "Por controversia constitucional",
	6: "Aislada",
}

// TipoJurisprudenciaTexto returns the display label for a numeric
// jurisprudence-type code.
func TipoJurisprudenciaTexto(tipo int) string {
	if texto, ok := tipoJurisprudenciaTextos[tipo]; ok {
		return texto
	}
	return fmt.Sprintf("Desconocido (%d)", tipo)
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
