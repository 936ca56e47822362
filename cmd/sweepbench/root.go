package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ciricc/sweepbench/internal/app"
	"github.com/ciricc/sweepbench/internal/config"
	"github.com/spf13/cobra"
)

// rootOptions holds the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
	values     []int
	dataset    string
	table      string
	report     string
	workDir    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "sweepbench",
		Short: "Sweep a size parameter over an external benchmark and report the timings",
		Long: `sweepbench rebuilds an external program once per sweep value, runs it,
scrapes the timings it prints and stores them as a JSON dataset. The dataset
can then be exported to CSV and rendered into a LaTeX table.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "sweepbench.yaml", "path to YAML config (defaults are used if the default file does not exist)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	pf.IntSliceVar(&opts.values, "values", nil, "override sweep values, e.g. --values 10,100,1000")
	pf.StringVar(&opts.dataset, "dataset", "", "override dataset path")
	pf.StringVar(&opts.table, "table", "", "override table path")
	pf.StringVar(&opts.report, "report", "", "override report path")
	pf.StringVar(&opts.workDir, "workdir", "", "override build and run working directory")

	cmd.AddCommand(
		newRunCmd(opts),
		newExportCmd(opts),
		newReportCmd(opts),
		newAllCmd(opts),
		newHostInfoCmd(),
	)

	return cmd
}

// loadConfig reads the config file and applies flag overrides. Only the
// default config path may be absent; an explicit --config must exist.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	path := o.configPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if len(o.values) > 0 {
		cfg.Sweep.Values = o.values
	}
	if o.dataset != "" {
		cfg.Paths.Dataset = o.dataset
	}
	if o.table != "" {
		cfg.Paths.Table = o.table
	}
	if o.report != "" {
		cfg.Paths.Report = o.report
	}
	if o.workDir != "" {
		cfg.Build.WorkDir = o.workDir
	}

	return cfg, nil
}

func (o *rootOptions) newApp(cmd *cobra.Command) (*app.Application, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	return app.New(cfg, app.NewLogger(cmd.ErrOrStderr(), o.verbose))
}
