package pipeline

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/YuminosukeSato/sensorbench/pkg/errors"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// SENSORBENCH_TEST_FRACTION=0.3.
const EnvPrefix = "SENSORBENCH_"

// Config holds every knob of the benchmark pipeline. Precedence when loaded
// through Load: defaults < config file < environment < flags.
type Config struct {
	// Input is the path of the CSV file to benchmark.
	Input string `koanf:"input"`
	// Label names the class column of the input.
	Label string `koanf:"label"`

	TestFraction float64 `koanf:"test_fraction"`
	Seed         uint64  `koanf:"seed"`

	// CorrelationThreshold gates feature selection; SelectionMode is either
	// "target" or "inter-feature".
	CorrelationThreshold float64 `koanf:"correlation_threshold"`
	SelectionMode        string  `koanf:"selection_mode"`

	Folds   int `koanf:"folds"`
	Workers int `koanf:"workers"`

	MaxIter int     `koanf:"max_iter"`
	Tol     float64 `koanf:"tol"`

	LogLevel string `koanf:"log_level"`

	// HeatmapDir, when set, receives one confusion-matrix PNG per kernel
	// family.
	HeatmapDir string `koanf:"heatmap_dir"`
}

// ApplyDefaults fills zero values with the benchmark defaults.
func (c *Config) ApplyDefaults() {
	if c.TestFraction == 0 {
		c.TestFraction = 0.2
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	if c.CorrelationThreshold == 0 {
		c.CorrelationThreshold = 0.5
	}
	if c.SelectionMode == "" {
		c.SelectionMode = "target"
	}
	if c.Folds == 0 {
		c.Folds = 5
	}
	if c.MaxIter == 0 {
		c.MaxIter = 500
	}
	if c.Tol == 0 {
		c.Tol = 1e-4
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports configuration errors that no default can paper over.
func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.NewValueError("config", "input path is required")
	}
	if c.Label == "" {
		return errors.NewValueError("config", "label column is required")
	}
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		return errors.NewValueError("config", "test_fraction must be in (0, 1)")
	}
	if c.Folds < 2 {
		return errors.NewValueError("config", "folds must be at least 2")
	}
	switch c.SelectionMode {
	case "target", "inter-feature":
	default:
		return errors.NewValueError("config", "selection_mode must be \"target\" or \"inter-feature\"")
	}
	return nil
}

// Load layers the configuration: a YAML file (optional), SENSORBENCH_*
// environment variables, then explicitly set flags on top. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, errors.Wrapf(err, "config file %s", cfgFile)
		}
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", cfgFile)
		}
	}

	// SENSORBENCH_TEST_FRACTION -> test_fraction
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, errors.Wrap(err, "loading environment overrides")
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errors.Wrap(err, "loading flag overrides")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, "decoding config")
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}
