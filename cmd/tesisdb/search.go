package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fwojciec/tesisdb"
	"golang.org/x/sync/errgroup"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	filter := tesisdb.TesisFilter{
		Materia: c.Materia,
		Epoca:   c.Epoca,
		Texto:   c.Texto,
		Limit:   c.Limit,
	}
	if c.After != "" {
		cursor, err := parseCursor(c.After)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", tesisdb.ErrorMessage(err))
			return err
		}
		filter.After = cursor
	}

	// The page and the total come from independent queries with identical
	// predicates, so fetch them concurrently.
	var (
		rows  []*tesisdb.TesisSummary
		next  *tesisdb.Cursor
		total int
	)
	g, gctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		var err error
		rows, next, err = deps.Tesis.SearchTesis(gctx, filter)
		return err
	})
	g.Go(func() error {
		countFilter := filter
		countFilter.After = nil
		var err error
		total, err = deps.Tesis.CountTesis(gctx, countFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", tesisdb.ErrorMessage(err))
		return err
	}

	if len(rows) == 0 {
		fmt.Fprintln(deps.Stdout, "No matches.")
		return nil
	}

	for _, row := range rows {
		mark := " "
		if row.Descargado {
			mark = "✓"
		}
		fmt.Fprintf(deps.Stdout, "%s %-9s %-11s %s  %s\n",
			mark, row.IUS, row.EpocaConfig, row.ClaveTesis, truncate(row.Rubro, 80))
	}

	fmt.Fprintf(deps.Stdout, "\n%d of %s matches\n", len(rows), humanize.Comma(int64(total)))
	if next != nil {
		fmt.Fprintf(deps.Stdout, "Next page: --after %q\n", formatCursor(next))
	}
	return nil
}

// Cursor tokens are "<fecha_actualizacion>|<ius>"; the fecha keeps its
// stored form so the token round-trips exactly.
func formatCursor(c *tesisdb.Cursor) string {
	return c.FechaActualizacion + "|" + c.IUS
}

func parseCursor(token string) (*tesisdb.Cursor, error) {
	i := strings.LastIndex(token, "|")
	if i < 1 || i == len(token)-1 {
		return nil, tesisdb.Errorf(tesisdb.EINVALID, "malformed cursor %q", token)
	}
	return &tesisdb.Cursor{FechaActualizacion: token[:i], IUS: token[i+1:]}, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
