package main

import (
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/fwojciec/tesisdb"
)

// Run executes the stats command.
func (c *StatsCmd) Run(deps *Dependencies) error {
	stats, err := deps.Summaries.StoreStats(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", tesisdb.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Records:    %s (%s with artifacts)\n",
		humanize.Comma(int64(stats.TotalTesis)), humanize.Comma(int64(stats.Descargadas)))
	fmt.Fprintf(deps.Stdout, "Pages done: %s\n", humanize.Comma(int64(stats.PaginasProcesadas)))
	if !stats.UltimaActualizacion.IsZero() {
		fmt.Fprintf(deps.Stdout, "Updated:    %s (%s)\n",
			stats.UltimaActualizacion.Format(tesisdb.TimeLayout),
			humanize.Time(stats.UltimaActualizacion))
	}

	printCounts(deps, "By época", stats.PorEpoca)
	printCounts(deps, "By tipo", stats.PorTipoTesis)

	if len(stats.MateriasComunes) > 0 {
		fmt.Fprintf(deps.Stdout, "\nTop materias:\n")
		for _, row := range stats.MateriasComunes {
			fmt.Fprintf(deps.Stdout, "  %8s  %s\n", humanize.Comma(int64(row.Cantidad)), row.Valor)
		}
	}
	return nil
}

func printCounts(deps *Dependencies, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(deps.Stdout, "\n%s:\n", title)
	for _, k := range keys {
		fmt.Fprintf(deps.Stdout, "  %8s  %s\n", humanize.Comma(int64(counts[k])), k)
	}
}
