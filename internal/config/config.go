// Package config resolves extraction settings from defaults, environment
// variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/swatch/internal/colour"
)

// Environment variables consulted by WithEnvConfig.
const (
	EnvColours       = "SWATCH_COLOURS"
	EnvSeed          = "SWATCH_SEED"
	EnvMaxIterations = "SWATCH_MAX_ITERATIONS"
	EnvWorkers       = "SWATCH_WORKERS"
	EnvFormat        = "SWATCH_FORMAT"
)

// Flag names registered by BindFlags.
const (
	FlagColours       = "colours"
	FlagSeed          = "seed"
	FlagMaxIterations = "max-iterations"
	FlagWorkers       = "workers"
	FlagFormat        = "format"
)

// DefaultColours is the palette size used when nothing else is configured.
const DefaultColours = 5

// Output formats.
const (
	FormatHex   = "hex"
	FormatRGB   = "rgb"
	FormatCSS   = "css"
	FormatJSON  = "json"
	FormatTable = "table"
)

// Formats returns the supported output formats.
func Formats() []string {
	return []string{FormatHex, FormatRGB, FormatCSS, FormatJSON, FormatTable}
}

// Config holds the settings for one extraction.
type Config struct {
	// Colours is the number of dominant colours (k) to extract.
	Colours int

	// Seed makes centroid seeding reproducible. Zero picks a fresh seed per run.
	Seed uint64

	// MaxIterations caps k-means. Zero runs until convergence.
	MaxIterations int

	// Workers is the number of goroutines used for the assignment step.
	Workers int

	// Format is the output format.
	Format string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Colours:       DefaultColours,
		Seed:          0,
		MaxIterations: 0,
		Workers:       1,
		Format:        FormatHex,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Colours < 1 {
		return fmt.Errorf("colour count must be at least 1, got %d", c.Colours)
	}
	if c.Colours > colour.MaxColorCount {
		return fmt.Errorf("colour count too large: %d (maximum: %d)", c.Colours, colour.MaxColorCount)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max iterations cannot be negative, got %d", c.MaxIterations)
	}
	if c.Workers < 1 || c.Workers > 4*runtime.NumCPU() {
		return fmt.Errorf("workers must be between 1 and %d, got %d", 4*runtime.NumCPU(), c.Workers)
	}
	if !slices.Contains(Formats(), c.Format) {
		return fmt.Errorf("unsupported format: %s (supported: %s)", c.Format, strings.Join(Formats(), ", "))
	}
	return nil
}

// ExtractorConfig converts c into the colour package's extractor settings.
func (c Config) ExtractorConfig(logger hclog.Logger) colour.ExtractorConfig {
	return colour.ExtractorConfig{
		Algorithm:     colour.AlgorithmKMeans,
		ColorCount:    c.Colours,
		Seed:          c.Seed,
		MaxIterations: c.MaxIterations,
		Workers:       c.Workers,
		Logger:        logger,
	}
}

// BindFlags registers the extraction flags on fs with the built-in defaults.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.IntP(FlagColours, "c", d.Colours, fmt.Sprintf("number of colours to extract (1-%d)", colour.MaxColorCount))
	fs.Uint64(FlagSeed, d.Seed, "random seed for centroid selection (0 = random)")
	fs.Int(FlagMaxIterations, d.MaxIterations, "stop k-means after this many iterations (0 = until converged)")
	fs.Int(FlagWorkers, d.Workers, "goroutines used to assign pixels to clusters")
	fs.StringP(FlagFormat, "f", d.Format, "output format ("+strings.Join(Formats(), ", ")+")")
}

// Builder layers configuration sources: base config, then environment,
// then explicitly set flags.
type Builder struct {
	config Config
	useEnv bool
	lookup func(string) (string, bool)
	flags  *pflag.FlagSet
}

// NewBuilder creates a Builder starting from Default.
func NewBuilder() *Builder {
	return &Builder{
		config: Default(),
		lookup: os.LookupEnv,
	}
}

// WithEnvConfig applies the SWATCH_* environment variables.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithLookup overrides the environment lookup, mainly for tests.
func (b *Builder) WithLookup(lookup func(string) (string, bool)) *Builder {
	b.lookup = lookup
	return b
}

// WithFlags applies flags from fs that were set on the command line.
// Flags override environment variables.
func (b *Builder) WithFlags(fs *pflag.FlagSet) *Builder {
	b.flags = fs
	return b
}

// Build resolves and validates the configuration.
func (b *Builder) Build() (Config, error) {
	config := b.config

	if b.useEnv {
		if err := b.applyEnv(&config); err != nil {
			return Config{}, err
		}
	}
	if b.flags != nil {
		if err := applyFlags(b.flags, &config); err != nil {
			return Config{}, err
		}
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func (b *Builder) applyEnv(config *Config) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{EnvColours, &config.Colours},
		{EnvMaxIterations, &config.MaxIterations},
		{EnvWorkers, &config.Workers},
	}
	for _, v := range ints {
		raw, ok := b.lookup(v.name)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", v.name, raw, err)
		}
		*v.dst = n
	}

	if raw, ok := b.lookup(EnvSeed); ok && strings.TrimSpace(raw) != "" {
		seed, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSeed, raw, err)
		}
		config.Seed = seed
	}
	if raw, ok := b.lookup(EnvFormat); ok && strings.TrimSpace(raw) != "" {
		config.Format = strings.ToLower(strings.TrimSpace(raw))
	}
	return nil
}

func applyFlags(fs *pflag.FlagSet, config *Config) error {
	var err error
	if fs.Changed(FlagColours) {
		if config.Colours, err = fs.GetInt(FlagColours); err != nil {
			return err
		}
	}
	if fs.Changed(FlagSeed) {
		if config.Seed, err = fs.GetUint64(FlagSeed); err != nil {
			return err
		}
	}
	if fs.Changed(FlagMaxIterations) {
		if config.MaxIterations, err = fs.GetInt(FlagMaxIterations); err != nil {
			return err
		}
	}
	if fs.Changed(FlagWorkers) {
		if config.Workers, err = fs.GetInt(FlagWorkers); err != nil {
			return err
		}
	}
	if fs.Changed(FlagFormat) {
		if config.Format, err = fs.GetString(FlagFormat); err != nil {
			return err
		}
	}
	return nil
}
