package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/ciricc/sweepbench/internal/store"
	"github.com/ciricc/sweepbench/pkg/benchreport"
	"github.com/samber/lo"
)

// Header is the fixed column set of the tabular export.
var Header = []string{
	"Input Range",
	"Setup (s)",
	"DB Conversion (s)",
	"Post Processing (s)",
	"Search Time (s)",
}

// Row is the flattened view of a record. Absent metrics become zero.
type Row struct {
	InputRange     int
	Setup          float64
	DBConversion   float64
	PostProcessing float64
	SearchTime     float64
}

// RowFromRecord flattens rec. The search time is the mean of both variant
// durations when both are present and positive, else the precomputed
// average, else zero.
func RowFromRecord(rec benchreport.Record) Row {
	return Row{
		InputRange:     rec.InputRange,
		Setup:          lo.FromPtr(rec.SetupTime),
		DBConversion:   lo.FromPtr(rec.DBConversionTime),
		PostProcessing: lo.FromPtr(rec.PostProcessingTime),
		SearchTime:     searchTime(rec),
	}
}

func searchTime(rec benchreport.Record) float64 {
	var a, b float64
	if rec.Search.VariantA != nil {
		a = rec.Search.VariantA.TimeSeconds
	}
	if rec.Search.VariantB != nil {
		b = rec.Search.VariantB.TimeSeconds
	}
	if a > 0 && b > 0 {
		return (a + b) / 2
	}

	return lo.FromPtr(rec.AvgSearchTime)
}

// Strings renders the row in header order.
func (r Row) Strings() []string {
	return []string{
		strconv.Itoa(r.InputRange),
		formatFloat(r.Setup),
		formatFloat(r.DBConversion),
		formatFloat(r.PostProcessing),
		formatFloat(r.SearchTime),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type ExporterOpts struct {
	Logger *slog.Logger
}

type ExporterOpt func(opts *ExporterOpts)

func WithLogger(l *slog.Logger) ExporterOpt {
	return func(opts *ExporterOpts) { opts.Logger = l }
}

// Exporter writes the tabular view of a persisted dataset.
type Exporter struct {
	loader store.Loader
	path   string
	logger *slog.Logger
}

func New(loader store.Loader, tablePath string, opts ...ExporterOpt) *Exporter {
	o := ExporterOpts{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Exporter{loader: loader, path: tablePath, logger: o.Logger}
}

// Export loads the dataset and overwrites the table file. It returns the
// number of data rows written. When the dataset is missing it returns an
// error wrapping benchreport.ErrMissingInput and writes nothing.
func (e *Exporter) Export(ctx context.Context) (int, error) {
	records, err := e.loader.Load()
	if err != nil {
		return 0, fmt.Errorf("load dataset: %w", err)
	}

	rows := lo.Map(records, func(rec benchreport.Record, _ int) Row { return RowFromRecord(rec) })

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(r.Strings()); err != nil {
			return 0, fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("flush csv: %w", err)
	}

	if err := store.WriteFileAtomic(e.path, buf.Bytes()); err != nil {
		return 0, err
	}

	e.logger.InfoContext(ctx, "table exported", "path", e.path, "rows", len(rows))
	return len(rows), nil
}
