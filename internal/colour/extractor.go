package colour

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/hashicorp/go-hclog"
)

// Extractor defines the interface for color extraction algorithms.
type Extractor interface {
	// Extract extracts a color palette from an image.
	// The count parameter specifies the number of colors to extract.
	Extract(ctx context.Context, img image.Image, count int) (*Palette, error)
}

// Algorithm represents the color extraction algorithm type.
type Algorithm string

// AlgorithmKMeans uses k-means clustering for color extraction.
const AlgorithmKMeans Algorithm = "kmeans"

// MaxColorCount bounds the palette size accepted from user input.
const MaxColorCount = 256

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmKMeans}
}

// ExtractorConfig holds configuration for color extraction.
type ExtractorConfig struct {
	Algorithm     Algorithm
	ColorCount    int    // used when Extract is called with count <= 0
	Seed          uint64 // zero selects the process-wide generator
	MaxIterations int    // zero runs until convergence
	Workers       int
	Logger        hclog.Logger
}

// NewExtractor creates a new Extractor from cfg.
// Returns an error if the algorithm is not recognized.
func NewExtractor(cfg ExtractorConfig) (Extractor, error) {
	switch cfg.Algorithm {
	case AlgorithmKMeans, "":
		return NewKMeansExtractor(cfg), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", cfg.Algorithm, ValidAlgorithms())
	}
}

// KMeansExtractor turns an image into a palette by flattening its pixels
// and clustering them.
type KMeansExtractor struct {
	clusterer    *Clusterer
	defaultCount int
	logger       hclog.Logger
}

// NewKMeansExtractor creates a KMeansExtractor configured from cfg.
func NewKMeansExtractor(cfg ExtractorConfig) *KMeansExtractor {
	logger := cfg.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	opts := []Option{
		WithMaxIterations(cfg.MaxIterations),
		WithWorkers(cfg.Workers),
		WithLogger(logger.Named("kmeans")),
	}
	if cfg.Seed != 0 {
		opts = append(opts, WithRandomSource(&lockedSource{src: NewRandomSource(cfg.Seed)}))
	}

	return &KMeansExtractor{
		clusterer:    NewClusterer(opts...),
		defaultCount: cfg.ColorCount,
		logger:       logger,
	}
}

// Extract extracts count dominant colours from img, or the configured
// ColorCount when count <= 0. Weights reflect the share of pixels in each
// cluster. If the iteration cap stops the run
// early the palette is still returned, along with ErrNotConverged.
func (e *KMeansExtractor) Extract(ctx context.Context, img image.Image, count int) (*Palette, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	if count <= 0 {
		count = e.defaultCount
	}

	samples, err := ExtractPixels(PixelBuffer(img))
	if err != nil {
		return nil, err
	}
	e.logger.Debug("extracted samples", "samples", len(samples), "bounds", img.Bounds().String())

	res, err := e.clusterer.Run(ctx, samples, count)
	if res == nil {
		return nil, err
	}
	if err != nil && !errors.Is(err, ErrNotConverged) {
		return nil, err
	}

	return NewPaletteWithWeights(res.Centroids, res.Weights()), err
}
