package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/tesisdb"
	"github.com/fwojciec/tesisdb/download"
	"github.com/fwojciec/tesisdb/extract"
	"github.com/fwojciec/tesisdb/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *slog.Logger
	DB          *sqlite.DB
	Tesis       tesisdb.TesisService
	Checkpoints tesisdb.CheckpointService
	Summaries   tesisdb.SummaryService
	Extractor   *extract.Extractor
	Downloader  *download.Manager
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Enable debug logging"`
	DB      string `help:"Database path" env:"TESISDB_DB"`
	Config  string `help:"Query-set configuration file (YAML)" env:"TESISDB_CONFIG"`

	Extract          ExtractCmd          `cmd:"" help:"Crawl the catalog into the local database"`
	Download         DownloadCmd         `cmd:"" help:"Download PDF artifacts for pending records"`
	Search           SearchCmd           `cmd:"" help:"Search indexed records"`
	Stats            StatsCmd            `cmd:"" help:"Show database statistics"`
	ClearCheckpoints ClearCheckpointsCmd `cmd:"" name:"clear-checkpoints" help:"Remove crawl checkpoints so pages are re-fetched"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	PageSize int  `default:"50" help:"Catalog page size"`
	MaxPages int  `default:"1000" help:"Page cap per (época, tipo) combination"`
	Force    bool `short:"f" help:"Clear all checkpoints and re-crawl everything"`
	Download bool `short:"d" help:"Download pending artifacts after the crawl"`
}

// DownloadCmd is the "download" subcommand.
type DownloadCmd struct {
	Limit         int           `help:"Cap the number of records to download (0 = all pending)"`
	Delay         time.Duration `default:"1s" help:"Pause between downloads"`
	Retries       int           `default:"3" help:"Attempts per record"`
	IncludeFailed bool          `help:"Also retry records whose status was never initialized"`
	Dir           string        `default:"tesis_descargadas" help:"Artifact directory"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Texto   string `arg:"" optional:"" help:"Full-text query (quoted phrases match as a unit)"`
	Materia string `short:"m" help:"Filter by materia"`
	Epoca   string `short:"e" help:"Filter by época"`
	Limit   int    `short:"n" default:"20" help:"Page size"`
	After   string `help:"Resume after a cursor from a previous page"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct{}

// ClearCheckpointsCmd is the "clear-checkpoints" subcommand.
type ClearCheckpointsCmd struct {
	Epoca string `help:"Narrow to one época label, e.g. \"11va Epoca\""`
	Tipo  string `help:"Narrow to one tipo label, e.g. \"Jurisprudencia\" (requires --epoca)"`
	Force bool   `help:"Confirm removal"`
}
