package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Sweep struct {
		Values []int `yaml:"values" validate:"required,min=1,dive,gt=0"`
	} `yaml:"sweep"`

	Build struct {
		WorkDir          string   `yaml:"workdir"`
		Compiler         string   `yaml:"compiler" validate:"required"`
		Sources          []string `yaml:"sources"`
		Libraries        []string `yaml:"libraries"`
		Output           string   `yaml:"output" validate:"required"`
		RangeDefines     []string `yaml:"range_defines" validate:"required,min=1,dive,required"`
		AutomationDefine string   `yaml:"automation_define"`
	} `yaml:"build"`

	Run struct {
		Command    []string `yaml:"command" validate:"required,min=1,dive,required"`
		EchoOutput bool     `yaml:"echo_output"`
	} `yaml:"run"`

	Cleanup struct {
		Paths []string `yaml:"paths"`
	} `yaml:"cleanup"`

	Extract struct {
		Mode string `yaml:"mode" validate:"omitempty,oneof=auto tagged positional"`
	} `yaml:"extract"`

	Paths struct {
		Dataset string `yaml:"dataset" validate:"required"`
		Table   string `yaml:"table" validate:"required"`
		Report  string `yaml:"report" validate:"required"`
	} `yaml:"paths"`

	Report struct {
		SciThreshold float64 `yaml:"sci_threshold" validate:"gte=0"`
	} `yaml:"report"`
}

// DefaultSweepValues is the historical sweep from 10 to 10M.
var DefaultSweepValues = []int{
	10, 25, 50, 75, 100, 250, 500, 750,
	1000, 2500, 5000, 7500, 10000, 25000, 50000, 75000,
	100000, 250000, 500000, 750000, 1000000, 2500000, 5000000, 7500000, 10000000,
}

// Default returns the configuration used when no file is given.
func Default() Config {
	var c Config
	c.Sweep.Values = append([]int(nil), DefaultSweepValues...)

	c.Build.WorkDir = "."
	c.Build.Compiler = "g++"
	c.Build.Sources = []string{
		"queen.cpp",
		"./FAST/Search.cpp",
		"./FAST/Update.cpp",
		"./FAST/Setup.cpp",
		"./FAST/Utilities.cpp",
	}
	c.Build.Libraries = []string{"cryptopp", "rocksdb"}
	c.Build.Output = "queen_bench"
	c.Build.RangeDefines = []string{"RANGE", "index_range"}
	c.Build.AutomationDefine = "AUTOMATED_SEARCH"

	c.Run.Command = []string{"./queen_bench"}

	c.Cleanup.Paths = []string{"Sigma_map1", "Server_map2"}

	c.Extract.Mode = "auto"

	c.Paths.Dataset = "visual/data.json"
	c.Paths.Table = "performance_data.csv"
	c.Paths.Report = "latex_table/table.tex"

	c.Report.SciThreshold = 0.001

	return c
}

// Load reads path over the defaults. An empty path yields the defaults.
// The result is not validated.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}

	return c, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration before any stage runs.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]error, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("invalid config: %w", errors.Join(msgs...))
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
