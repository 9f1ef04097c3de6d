package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{Input: "data.csv", Label: "label"}
	cfg.ApplyDefaults()

	require.Equal(t, 0.2, cfg.TestFraction)
	require.Equal(t, uint64(42), cfg.Seed)
	require.Equal(t, 0.5, cfg.CorrelationThreshold)
	require.Equal(t, "target", cfg.SelectionMode)
	require.Equal(t, 5, cfg.Folds)
	require.NoError(t, cfg.Validate())
}

func TestLoadLayersFileEnvAndFlags(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "sensorbench.yaml")
	yaml := "input: data.csv\nlabel: activity\ntest_fraction: 0.3\nfolds: 10\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	t.Setenv("SENSORBENCH_FOLDS", "3")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Float64("test-fraction", 0.2, "")
	require.NoError(t, flags.Set("test-fraction", "0.25"))

	cfg, err := Load(cfgPath, flags)
	require.NoError(t, err)

	require.Equal(t, "data.csv", cfg.Input)
	require.Equal(t, "activity", cfg.Label)
	// Env beats file, flags beat env.
	require.Equal(t, 3, cfg.Folds)
	require.Equal(t, 0.25, cfg.TestFraction)
	// Untouched keys fall back to defaults.
	require.Equal(t, uint64(42), cfg.Seed)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	require.Error(t, err)
}

func TestLoadNoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	require.Equal(t, 0.2, cfg.TestFraction)
	require.Equal(t, "target", cfg.SelectionMode)
}
