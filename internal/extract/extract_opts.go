package extract

import "fmt"

type Mode string

const (
	// ModeAuto prefers tagged lines and falls back to the positional
	// result scheme when no tagged result line is present.
	ModeAuto Mode = "auto"
	// ModeTagged reads search and result values from tagged lines only.
	ModeTagged Mode = "tagged"
	// ModePositional is the legacy scheme: results by occurrence order.
	ModePositional Mode = "positional"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeAuto, ModeTagged, ModePositional:
		return m, nil
	case "":
		return ModeAuto, nil
	default:
		return "", fmt.Errorf("unknown extract mode %q", s)
	}
}

type ExtractorOpts struct {
	Mode Mode
}

type ExtractorOpt func(opts *ExtractorOpts)

func WithMode(m Mode) ExtractorOpt {
	return func(opts *ExtractorOpts) { opts.Mode = m }
}

func buildOpts(defaultOpts ExtractorOpts, opts ...ExtractorOpt) ExtractorOpts {
	o := defaultOpts
	for _, opt := range opts {
		opt(&o)
	}

	return o
}
