package cma

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aldor007/shark-old"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cma.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
lambda: 12
mu: 4
weighting: linear
parallel: 3
seed: 7
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, Config{
		Lambda:       12,
		Mu:           4,
		Weighting:    Linear,
		MaxCondition: DefaultMaxCondition,
		Parallel:     3,
		Seed:         7,
	}, cfg)

	s := New(cfg.Options()...)
	require.NoError(t, s.Init(sphereProblem(5), make([]float64, 5), 1))
	require.Equal(t, 12, s.Params().Lambda)
	require.Equal(t, 4, s.Params().Mu)
	require.Equal(t, Linear, s.Params().Weighting)
	require.Equal(t, shark.ParallelEvaler{Limit: 3}, s.ev)
	require.NoError(t, s.Run())
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := map[string]string{
		"weighting": "weighting: cubic\n",
		"lambda":    "lambda: 1\n",
		"mu":        "lambda: 6\nmu: 7\n",
		"condition": "max_condition: -1\n",
	}
	for name, body := range tests {
		_, err := LoadConfig(writeConfig(t, body))
		require.ErrorIs(t, err, ErrInvalidArgument, name)
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Weighting = Equal
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.Contains(t, string(data), "weighting: equal")

	var got Config
	require.NoError(t, yaml.Unmarshal(data, &got))
	require.Equal(t, cfg, got)
}

func TestConfigSeedReproducible(t *testing.T) {
	run := func() []float64 {
		s := New(DefaultConfig().Options()...)
		require.NoError(t, s.Init(sphereProblem(3), []float64{1, 1, 1}, 1))
		for i := 0; i < 10; i++ {
			require.NoError(t, s.Run())
		}
		return s.Mean()
	}
	require.Equal(t, run(), run())
}
