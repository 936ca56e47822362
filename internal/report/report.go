package report

import (
	"bytes"
	"context"
	"embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/template"

	"github.com/ciricc/sweepbench/internal/store"
	"github.com/ciricc/sweepbench/pkg/benchreport"
)

// DefaultSciThreshold is the magnitude below which non-zero values are
// rendered in scientific notation.
const DefaultSciThreshold = 0.001

//go:embed templates/table.tex.tmpl
var templatesFS embed.FS

var tableTemplate = template.Must(
	template.New("table.tex.tmpl").Delims("<<", ">>").ParseFS(templatesFS, "templates/table.tex.tmpl"),
)

// Row is one rendered table line. Search and post-processing appear in
// the opposite order to the tabular export; the report layout depends on it.
type Row struct {
	InputRange     string
	Setup          string
	DBConversion   string
	Search         string
	PostProcessing string
}

type GeneratorOpts struct {
	SciThreshold float64
	Logger       *slog.Logger
}

type GeneratorOpt func(opts *GeneratorOpts)

func WithSciThreshold(v float64) GeneratorOpt {
	return func(opts *GeneratorOpts) { opts.SciThreshold = v }
}

func WithLogger(l *slog.Logger) GeneratorOpt {
	return func(opts *GeneratorOpts) { opts.Logger = l }
}

// Generator renders the tabular export into a LaTeX document.
type Generator struct {
	tablePath  string
	reportPath string
	threshold  float64
	logger     *slog.Logger
}

func New(tablePath, reportPath string, opts ...GeneratorOpt) *Generator {
	o := GeneratorOpts{SciThreshold: DefaultSciThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Generator{
		tablePath:  tablePath,
		reportPath: reportPath,
		threshold:  o.SciThreshold,
		logger:     o.Logger,
	}
}

// FormatCell renders a numeric cell: non-zero values below threshold as
// %.2e, everything else as %.4f. Text that is not a number is returned as is.
func FormatCell(s string, threshold float64) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return s
	}
	if v > 0 && v < threshold {
		return fmt.Sprintf("%.2e", v)
	}

	return fmt.Sprintf("%.4f", v)
}

// RowFromCells builds a report row from one table line. The input range is
// passed through unformatted; missing trailing cells render empty.
func (g *Generator) RowFromCells(cells []string) Row {
	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	num := func(i int) string { return FormatCell(cell(i), g.threshold) }

	return Row{
		InputRange:     cell(0),
		Setup:          num(1),
		DBConversion:   num(2),
		PostProcessing: num(3),
		Search:         num(4),
	}
}

// Generate reads the table and overwrites the report. It returns the number
// of rows rendered. A missing table yields an error wrapping
// benchreport.ErrMissingInput and no report file.
func (g *Generator) Generate(ctx context.Context) (int, error) {
	f, err := os.Open(g.tablePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", benchreport.ErrMissingInput, g.tablePath)
		}
		return 0, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	rows, err := g.readRows(f)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, struct{ Rows []Row }{rows}); err != nil {
		return 0, fmt.Errorf("render report: %w", err)
	}
	if err := store.WriteFileAtomic(g.reportPath, buf.Bytes()); err != nil {
		return 0, err
	}

	g.logger.InfoContext(ctx, "report generated", "path", g.reportPath, "rows", len(rows))
	return len(rows), nil
}

func (g *Generator) readRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var rows []Row
	header := true
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read table %s: %w", g.tablePath, err)
		}
		if header {
			header = false
			continue
		}
		rows = append(rows, g.RowFromCells(cells))
	}

	return rows, nil
}
