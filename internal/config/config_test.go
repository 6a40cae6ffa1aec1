package config

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestBuildDefaults(t *testing.T) {
	cfg, err := NewBuilder().WithLookup(envMap(nil)).WithEnvConfig().Build()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestBuildPrecedence(t *testing.T) {
	env := envMap(map[string]string{
		EnvColours:       "8",
		EnvSeed:          "42",
		EnvMaxIterations: "100",
		EnvWorkers:       "2",
		EnvFormat:        " JSON ",
	})

	t.Run("environment over defaults", func(t *testing.T) {
		cfg, err := NewBuilder().WithLookup(env).WithEnvConfig().Build()
		require.NoError(t, err)
		assert.Equal(t, Config{Colours: 8, Seed: 42, MaxIterations: 100, Workers: 2, Format: FormatJSON}, cfg)
	})

	t.Run("changed flags over environment", func(t *testing.T) {
		fs := newFlagSet(t, "-c", "3", "--seed", "7", "--format", "css")
		cfg, err := NewBuilder().WithLookup(env).WithEnvConfig().WithFlags(fs).Build()
		require.NoError(t, err)
		assert.Equal(t, Config{Colours: 3, Seed: 7, MaxIterations: 100, Workers: 2, Format: FormatCSS}, cfg)
	})

	t.Run("unchanged flags keep environment", func(t *testing.T) {
		fs := newFlagSet(t)
		cfg, err := NewBuilder().WithLookup(env).WithEnvConfig().WithFlags(fs).Build()
		require.NoError(t, err)
		assert.Equal(t, 8, cfg.Colours)
	})

	t.Run("environment ignored unless requested", func(t *testing.T) {
		cfg, err := NewBuilder().WithLookup(env).Build()
		require.NoError(t, err)
		assert.Equal(t, DefaultColours, cfg.Colours)
	})
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{name: "non-numeric colours", env: map[string]string{EnvColours: "many"}},
		{name: "negative seed", env: map[string]string{EnvSeed: "-1"}},
		{name: "zero colours", args: []string{"--colours", "0"}},
		{name: "too many colours", args: []string{"--colours", "257"}},
		{name: "negative iterations", args: []string{"--max-iterations", "-1"}},
		{name: "zero workers", args: []string{"--workers", "0"}},
		{name: "unknown format", args: []string{"--format", "yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBuilder().
				WithLookup(envMap(tt.env)).
				WithEnvConfig().
				WithFlags(newFlagSet(t, tt.args...)).
				Build()
			assert.Error(t, err)
		})
	}
}

func TestExtractorConfig(t *testing.T) {
	cfg := Config{Colours: 4, Seed: 9, MaxIterations: 50, Workers: 3, Format: FormatHex}
	ec := cfg.ExtractorConfig(nil)
	assert.Equal(t, 4, ec.ColorCount)
	assert.Equal(t, uint64(9), ec.Seed)
	assert.Equal(t, 50, ec.MaxIterations)
	assert.Equal(t, 3, ec.Workers)
}
