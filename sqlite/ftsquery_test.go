package sqlite_test

import (
	"testing"

	"github.com/fwojciec/tesisdb/sqlite"
	"github.com/stretchr/testify/assert"
)

func TestBuildMatchQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		texto string
		want  string
	}{
		{"empty input", "", ""},
		{"whitespace only", "   \t\n", ""},
		{"single token gets prefix wildcard", "amparo", `"amparo"*`},
		{"multiple tokens", "amparo directo", `"amparo"* "directo"*`},
		{"quoted phrase matches verbatim", `"derechos humanos"`, `"derechos humanos"`},
		{"phrase and bare token mix", `"prueba ilícita" exclusión`, `"prueba ilícita" "exclusión"*`},
		{"special characters are neutralized", "1a./J. NOT col:x", `"1a./J."* "NOT"* "col:x"*`},
		{"quote inside a word starts a phrase", `o"reilly`, `"o"* "reilly"`},
		{"unterminated quote runs to end", `amparo "directo en`, `"amparo"* "directo en"`},
		{"empty phrase is dropped", `"" amparo`, `"amparo"*`},
		{"collapses extra whitespace", "  amparo   directo  ", `"amparo"* "directo"*`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sqlite.BuildMatchQuery(tt.texto))
		})
	}
}
