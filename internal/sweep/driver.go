package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ciricc/sweepbench/internal/extract"
	"github.com/ciricc/sweepbench/internal/store"
	"github.com/ciricc/sweepbench/internal/toolchain"
	"github.com/ciricc/sweepbench/pkg/benchreport"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var ErrNoParameters = errors.New("sweep has no parameters")

// Driver runs the build-run-extract cycle for every sweep parameter,
// strictly one point at a time.
type Driver struct {
	builder   toolchain.Builder
	runner    toolchain.Runner
	cleaner   toolchain.Cleaner
	extractor *extract.Extractor
	logger    *slog.Logger
}

func NewDriver(
	builder toolchain.Builder,
	runner toolchain.Runner,
	cleaner toolchain.Cleaner,
	extractor *extract.Extractor,
	opts ...DriverOpt,
) *Driver {
	o := DriverOpts{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.SweepID == "" {
		o.SweepID = uuid.NewString()
	}

	logger := o.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Driver{
		builder:   builder,
		runner:    runner,
		cleaner:   cleaner,
		extractor: extractor,
		logger:    logger.With("sweep_id", o.SweepID),
	}
}

// Run sweeps params in order and returns one record per successfully built
// point. A failed build drops its point; the sweep carries on. A run that
// exits abnormally still has its captured output extracted.
func (d *Driver) Run(ctx context.Context, params []int) ([]benchreport.Record, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	dataset := store.NewDataset()
	started := time.Now()
	d.logger.InfoContext(ctx, "sweep started", "points", len(params), "extract_mode", d.extractor.Mode())

	for i, param := range params {
		rec, ok := d.point(ctx, i, len(params), param)
		if !ok {
			continue
		}
		rec = dataset.Append(rec)
		d.logger.InfoContext(ctx, "sweep point recorded", "input_range", param, "run", rec.RunID)
	}

	d.logger.InfoContext(ctx, "sweep finished",
		"recorded", dataset.Len(),
		"skipped", len(params)-dataset.Len(),
		"elapsed", time.Since(started).Round(time.Millisecond),
	)

	return dataset.Records(), nil
}

func (d *Driver) point(ctx context.Context, index, total, param int) (benchreport.Record, bool) {
	log := d.logger.With("input_range", param, "index", index+1, "total", total)
	log.InfoContext(ctx, "sweep point started")

	if err := d.cleaner.Clean(ctx); err != nil {
		log.WarnContext(ctx, "cleanup failed", "error", err)
	}

	buildStart := time.Now()
	if err := d.builder.Build(ctx, param); err != nil {
		attrs := []any{"error", err}
		var buildErr *toolchain.BuildError
		if errors.As(err, &buildErr) && buildErr.Diagnostic != "" {
			attrs = append(attrs, "diagnostic", buildErr.Diagnostic)
		}
		log.ErrorContext(ctx, "build failed, skipping point", attrs...)
		return benchreport.Record{}, false
	}
	buildElapsed := time.Since(buildStart)

	runStart := time.Now()
	output, err := d.runner.Run(ctx)
	if err != nil {
		log.WarnContext(ctx, "run exited abnormally, extracting captured output", "error", err, "output_bytes", len(output))
	}
	log.DebugContext(ctx, "point timings",
		"build", buildElapsed.Round(time.Millisecond),
		"run", time.Since(runStart).Round(time.Millisecond),
	)

	ex := d.extractor.Extract(output, param)
	if len(ex.Missing) > 0 {
		log.DebugContext(ctx, "metrics not found in output", "missing", ex.Missing)
	}
	if ex.PositionalFallback {
		log.WarnContext(ctx, "results assigned by line order; emit @bench result tags to make them order independent")
	}

	return ex.Record, true
}

func validateParams(params []int) error {
	if len(params) == 0 {
		return ErrNoParameters
	}
	if bad := lo.Filter(params, func(p int, _ int) bool { return p <= 0 }); len(bad) > 0 {
		return fmt.Errorf("sweep parameters must be positive, got %v", bad)
	}

	return nil
}
