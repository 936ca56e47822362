package sweep

import "log/slog"

type DriverOpts struct {
	Logger  *slog.Logger
	SweepID string
}

type DriverOpt func(opts *DriverOpts)

func WithLogger(l *slog.Logger) DriverOpt {
	return func(opts *DriverOpts) { opts.Logger = l }
}

// WithSweepID tags every log line of the sweep with id.
func WithSweepID(id string) DriverOpt {
	return func(opts *DriverOpts) { opts.SweepID = id }
}
