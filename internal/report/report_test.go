package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ciricc/sweepbench/pkg/benchreport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCell(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.00005", "5.00e-05"},
		{"2.3386e-05", "2.34e-05"},
		{"1.25", "1.2500"},
		{"0", "0.0000"},
		{"0.001", "0.0010"},
		{"12.345678", "12.3457"},
		{"-0.00001", "-0.0000"},
		{"n/a", "n/a"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCell(tt.in, DefaultSciThreshold))
		})
	}
}

func TestRowFromCells_SwapsSearchAndPostProcessing(t *testing.T) {
	g := New("", "")

	row := g.RowFromCells([]string{"100", "1.25", "0.5", "3", "0.0002"})

	assert.Equal(t, Row{
		InputRange:     "100",
		Setup:          "1.2500",
		DBConversion:   "0.5000",
		PostProcessing: "3.0000",
		Search:         "2.00e-04",
	}, row)
}

func TestRowFromCells_ShortRow(t *testing.T) {
	row := New("", "").RowFromCells([]string{"7", "1"})

	assert.Equal(t, Row{InputRange: "7", Setup: "1.0000"}, row)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "performance_data.csv")
	reportPath := filepath.Join(dir, "latex_table", "table.tex")
	require.NoError(t, os.WriteFile(tablePath, []byte(
		"Input Range,Setup (s),DB Conversion (s),Post Processing (s),Search Time (s)\n"+
			"10,1.25,0.5,3,0.00005\n"+
			"25,oops,0,0,0\n"), 0o644))

	n, err := New(tablePath, reportPath).Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	doc := string(raw)

	assert.True(t, strings.HasPrefix(doc, `\documentclass{article}`))
	assert.Contains(t, doc, "        10 & 1.2500 & 0.5000 & 5.00e-05 & 3.0000 \\\\ \n        \\hline\n")
	assert.Contains(t, doc, "        25 & oops & 0.0000 & 0.0000 & 0.0000 \\\\ \n        \\hline\n")
	assert.True(t, strings.HasSuffix(doc, "    \\end{tabular}\n\\end{table}\n\n\\end{document}\n"))
	assert.Equal(t, 2, strings.Count(doc, " \\\\ \n        \\hline\n"), "one line per row")
	assert.Contains(t, doc, "{\\textbf{Post-Proc. (sec)}} \\\\\n        \\hline\n")
}

func TestGenerate_CustomThreshold(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "t.csv")
	reportPath := filepath.Join(dir, "r.tex")
	require.NoError(t, os.WriteFile(tablePath, []byte("h1,h2,h3,h4,h5\n1,0.05,0,0,0\n"), 0o644))

	_, err := New(tablePath, reportPath, WithSciThreshold(0.1)).Generate(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "1 & 5.00e-02 & ")
}

func TestGenerate_MissingTable(t *testing.T) {
	dir := t.TempDir()
	reportPath := filepath.Join(dir, "latex_table", "table.tex")

	_, err := New(filepath.Join(dir, "missing.csv"), reportPath).Generate(context.Background())

	assert.ErrorIs(t, err, benchreport.ErrMissingInput)
	assert.NoFileExists(t, reportPath)
	assert.NoDirExists(t, filepath.Dir(reportPath))
}
