package main

import (
	"fmt"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/fwojciec/tesisdb"
	"github.com/fwojciec/tesisdb/download"
	"github.com/fwojciec/tesisdb/extract"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	deps.Extractor.PageSize = c.PageSize
	deps.Extractor.MaxPages = c.MaxPages

	var bar *pb.ProgressBar
	progress := func(p extract.Progress) bool {
		if p.Pagina == 0 {
			if bar != nil {
				bar.Finish()
			}
			fmt.Fprintf(deps.Stderr, "==> %s / %s (%d/%d)\n",
				p.Epoca, p.TipoTesis, p.Combinacion, p.TotalCombinaciones)
			bar = pb.New(p.MaxPaginas)
			bar.SetWriter(deps.Stderr)
			bar.Start()
		}
		if bar != nil {
			bar.SetCurrent(int64(p.Pagina))
		}
		return true
	}

	stats, err := deps.Extractor.Run(deps.Ctx, extract.RunOptions{
		Force:    c.Force,
		Progress: progress,
	})
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", tesisdb.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Run %s:\n", stats.RunID)
	fmt.Fprintf(deps.Stdout, "  %s new, %s updated\n",
		humanize.Comma(int64(stats.TesisNuevas)), humanize.Comma(int64(stats.TesisExistentes)))
	fmt.Fprintf(deps.Stdout, "  %s pages processed, %s already done\n",
		humanize.Comma(int64(stats.PaginasProcesadas)), humanize.Comma(int64(stats.PaginasOmitidas)))
	if stats.DetallesFallidos > 0 {
		fmt.Fprintf(deps.Stdout, "  %s detail fetches failed (summary data kept)\n",
			humanize.Comma(int64(stats.DetallesFallidos)))
	}
	if stats.Interrupted {
		fmt.Fprintln(deps.Stdout, "  interrupted; completed pages are checkpointed and will not be re-fetched")
		return nil
	}

	if c.Download {
		return runDownloadBatch(deps, download.BatchOptions{Retries: download.DefaultRetries})
	}
	return nil
}
