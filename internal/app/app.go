package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ciricc/sweepbench/internal/config"
	"github.com/ciricc/sweepbench/internal/export"
	"github.com/ciricc/sweepbench/internal/extract"
	"github.com/ciricc/sweepbench/internal/hostinfo"
	"github.com/ciricc/sweepbench/internal/report"
	"github.com/ciricc/sweepbench/internal/store"
	"github.com/ciricc/sweepbench/internal/sweep"
	"github.com/ciricc/sweepbench/internal/toolchain"
	"github.com/google/uuid"
)

// Application wires one validated configuration into the three batch
// stages. Each stage reads only the artifacts written by the one before it.
type Application struct {
	Config config.Config
	Logger *slog.Logger

	store     *store.FileStore
	extractor *extract.Extractor
}

func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

func New(cfg config.Config, logger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mode, err := extract.ParseMode(cfg.Extract.Mode)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		store:     store.NewFileStore(cfg.Paths.Dataset),
		extractor: extract.New(extract.WithMode(mode)),
	}, nil
}

// RunSweep builds and runs every configured sweep point and overwrites the
// dataset once the whole sweep has finished.
func (a *Application) RunSweep(ctx context.Context) (int, error) {
	driver, err := a.newDriver(ctx)
	if err != nil {
		return 0, err
	}

	records, err := driver.Run(ctx, a.Config.Sweep.Values)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	if err := a.store.Save(records); err != nil {
		return 0, fmt.Errorf("save dataset: %w", err)
	}

	a.Logger.InfoContext(ctx, "dataset saved", "path", a.store.Path(), "records", len(records))
	return len(records), nil
}

// Export writes the tabular export from the persisted dataset.
func (a *Application) Export(ctx context.Context) (int, error) {
	return export.New(a.store, a.Config.Paths.Table, export.WithLogger(a.Logger)).Export(ctx)
}

// Report renders the report document from the tabular export.
func (a *Application) Report(ctx context.Context) (int, error) {
	g := report.New(
		a.Config.Paths.Table,
		a.Config.Paths.Report,
		report.WithSciThreshold(a.Config.Report.SciThreshold),
		report.WithLogger(a.Logger),
	)

	return g.Generate(ctx)
}

// All runs sweep, export and report in order, stopping at the first error.
func (a *Application) All(ctx context.Context) error {
	if _, err := a.RunSweep(ctx); err != nil {
		return err
	}
	if _, err := a.Export(ctx); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if _, err := a.Report(ctx); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	return nil
}

func (a *Application) newDriver(ctx context.Context) (*sweep.Driver, error) {
	cfg := a.Config
	sweepID := uuid.NewString()
	log := a.Logger.With("sweep_id", sweepID)

	log.InfoContext(ctx, "host", hostinfo.Detect(ctx).LogAttrs()...)

	builder := newBuilder(cfg, log)

	runner, err := toolchain.NewBinaryRunner(
		cfg.Run.Command,
		toolchain.WithRunWorkDir(cfg.Build.WorkDir),
		toolchain.WithEchoOutput(cfg.Run.EchoOutput),
		toolchain.WithRunnerLogger(log),
	)
	if err != nil {
		return nil, err
	}

	cleaner := toolchain.NewPathCleaner(cfg.Build.WorkDir, cfg.Cleanup.Paths...)

	return sweep.NewDriver(builder, runner, cleaner, a.extractor,
		sweep.WithLogger(a.Logger),
		sweep.WithSweepID(sweepID),
	), nil
}

func newBuilder(cfg config.Config, log *slog.Logger) *toolchain.CompilerBuilder {
	return toolchain.NewCompilerBuilder(
		toolchain.WithWorkDir(cfg.Build.WorkDir),
		toolchain.WithCompiler(cfg.Build.Compiler),
		toolchain.WithSources(cfg.Build.Sources...),
		toolchain.WithLibraries(cfg.Build.Libraries...),
		toolchain.WithOutput(cfg.Build.Output),
		toolchain.WithRangeDefines(cfg.Build.RangeDefines...),
		toolchain.WithAutomationDefine(cfg.Build.AutomationDefine),
		toolchain.WithBuilderLogger(log),
	)
}
