package sqlite

import (
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/tesisdb"
)

// formatTimestamp renders a timestamp in the canonical storage layout.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(tesisdb.TimeLayout)
}

// parseTimestamp parses a stored timestamp string.
// Returns an error with the field name if parsing fails.
func parseTimestamp(value, fieldName string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(tesisdb.TimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", fieldName, err)
	}
	return t, nil
}

// splitMaterias splits a GROUP_CONCAT materia list back into names.
func splitMaterias(concat string) []string {
	if concat == "" {
		return nil
	}
	parts := strings.Split(concat, ", ")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}
