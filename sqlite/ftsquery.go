package sqlite

import "strings"

// BuildMatchQuery converts free-form user text into an FTS5 MATCH
// expression. Input is split on whitespace; a double-quoted span is kept
// together as one phrase token. Every token is emitted as an FTS5 string
// literal (embedded quotes doubled) so index-special characters like -, *,
// or : cannot alter the query structure. Bare tokens get a trailing *, so a
// partial word matches any indexed term that starts with it; quoted phrases
// match exactly and in order.
//
// Pure function, independent of the store, so the escaping rules are
// testable in isolation.
func BuildMatchQuery(texto string) string {
	texto = strings.TrimSpace(texto)
	if texto == "" {
		return ""
	}

	var tokens []string
	for _, part := range splitQuoted(texto) {
		if part.phrase {
			tokens = append(tokens, quoteFTS(part.text))
		} else {
			tokens = append(tokens, quoteFTS(part.text)+"*")
		}
	}
	return strings.Join(tokens, " ")
}

type queryPart struct {
	text   string
	phrase bool
}

// splitQuoted splits text on whitespace, treating "double quoted" spans as
// single phrase parts. An unterminated quote runs to the end of the input.
func splitQuoted(text string) []queryPart {
	var parts []queryPart
	i := 0
	for i < len(text) {
		switch {
		case text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r':
			i++
		case text[i] == '"':
			end := strings.IndexByte(text[i+1:], '"')
			if end < 0 {
				end = len(text) - i - 1
			}
			if phrase := strings.TrimSpace(text[i+1 : i+1+end]); phrase != "" {
				parts = append(parts, queryPart{text: phrase, phrase: true})
			}
			i += end + 2
		default:
			end := strings.IndexAny(text[i:], " \t\n\r\"")
			if end < 0 {
				end = len(text) - i
			}
			parts = append(parts, queryPart{text: text[i : i+end]})
			i += end
		}
	}
	return parts
}

// quoteFTS wraps a token in an FTS5 string literal, doubling embedded
// double quotes.
func quoteFTS(token string) string {
	return `"` + strings.ReplaceAll(token, `"`, `""`) + `"`
}
