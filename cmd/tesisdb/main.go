package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/tesisdb"
	"github.com/fwojciec/tesisdb/download"
	"github.com/fwojciec/tesisdb/extract"
	"github.com/fwojciec/tesisdb/scjn"
	tesislog "github.com/fwojciec/tesisdb/slog"
	"github.com/fwojciec/tesisdb/sqlite"
	"github.com/fwojciec/tesisdb/yaml"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// Optional query-set configuration file.
	ConfigPath string

	// SQLite database used by the SQLite service implementations.
	DB *sqlite.DB

	// Catalog overrides the remote catalog client for end-to-end testing.
	Catalog tesisdb.CatalogClient

	// Services for end-to-end testing.
	TesisService      tesisdb.TesisService
	CheckpointService tesisdb.CheckpointService
	SummaryService    tesisdb.SummaryService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     defaultDBPath(),
		ConfigPath: os.Getenv("TESISDB_CONFIG"),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("tesisdb"),
		kong.Description("Crawl, index, and search the SCJN thesis catalog."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'tesisdb --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Logs go to stderr so command output stays pipeable. Info and below
	// stay silent unless asked for.
	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	if cli.Config != "" {
		m.ConfigPath = cli.Config
	}
	querySets, tipos, err := yaml.LoadQuerySets(m.ConfigPath)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set TESISDB_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies.
	m.TesisService = tesislog.NewLoggingTesisService(sqlite.NewTesisService(m.DB), logger)
	m.CheckpointService = sqlite.NewCheckpointService(m.DB)
	m.SummaryService = sqlite.NewSummaryService(m.DB)
	if m.Catalog == nil {
		m.Catalog = tesislog.NewLoggingCatalogClient(scjn.NewClient(), logger)
	}
	deps.DB = m.DB
	deps.Tesis = m.TesisService
	deps.Checkpoints = m.CheckpointService
	deps.Summaries = m.SummaryService

	// Wire command-specific dependencies based on command.
	if cmd == "extract" {
		deps.Extractor = extract.NewExtractor(m.Catalog, m.TesisService, m.CheckpointService, m.SummaryService, logger)
		deps.Extractor.QuerySets = querySets
		deps.Extractor.Tipos = tipos
	}
	if cmd == "extract" || cmd == "download" {
		deps.Downloader = download.NewManager(m.Catalog, m.TesisService, logger)
		deps.Downloader.QuerySets = querySets
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("TESISDB_DB"); path != "" {
		return path
	}
	return "tesis_scjn.db"
}
