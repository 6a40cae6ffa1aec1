package colour

import (
	"context"
	"fmt"
	"math"
	"slices"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
)

// emptyClusterCentroid is the centroid given to a cluster that attracted no
// samples in an iteration. It is not carried over from the previous
// iteration and the cluster is not re-seeded.
var emptyClusterCentroid = RGB{R: 0, G: 0, B: 0}

// minSamplesPerWorker keeps tiny inputs on a single goroutine.
const minSamplesPerWorker = 1024

// Clusterer partitions colour samples into k clusters with Lloyd's
// algorithm and returns the cluster centroids as the dominant colours.
//
// Centroids are rounded to whole channel values every iteration and the
// loop stops when an iteration reproduces the previous centroids exactly.
// Rounding keeps the state space finite, which is what guarantees that the
// exact comparison terminates.
type Clusterer struct {
	rand          RandomSource
	maxIterations int
	workers       int
	logger        hclog.Logger
}

// Option configures a Clusterer.
type Option func(*Clusterer)

// WithRandomSource sets the source used to pick the initial centroids.
func WithRandomSource(src RandomSource) Option {
	return func(c *Clusterer) {
		if src != nil {
			c.rand = src
		}
	}
}

// WithSeed is shorthand for WithRandomSource(NewRandomSource(seed)).
func WithSeed(seed uint64) Option {
	return WithRandomSource(NewRandomSource(seed))
}

// WithMaxIterations caps the number of iterations. Zero, the default, means
// run until the centroids stop changing. When the cap is hit, the current
// centroids are returned together with ErrNotConverged.
func WithMaxIterations(n int) Option {
	return func(c *Clusterer) {
		if n >= 0 {
			c.maxIterations = n
		}
	}
}

// WithWorkers splits the assignment step across n goroutines. Partial sums
// are merged by integer addition so the result does not depend on n.
func WithWorkers(n int) Option {
	return func(c *Clusterer) {
		if n >= 1 {
			c.workers = n
		}
	}
}

// WithLogger sets the logger used for per-iteration trace output.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Clusterer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClusterer creates a Clusterer. Without options it draws from the
// process-wide random generator, runs unbounded and single-threaded.
func NewClusterer(opts ...Option) *Clusterer {
	c := &Clusterer{
		rand:    globalSource{},
		workers: 1,
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of a clustering run.
type Result struct {
	// Centroids holds exactly k colours.
	Centroids []RGB

	// Counts holds the number of samples assigned to each centroid in the
	// final partition. An empty cluster has a count of zero.
	Counts []int

	// Iterations is the number of assignment/update rounds performed.
	Iterations int
}

// Weights returns each cluster's share of the samples.
func (r *Result) Weights() []float64 {
	total := 0
	for _, n := range r.Counts {
		total += n
	}
	weights := make([]float64, len(r.Counts))
	if total == 0 {
		return weights
	}
	for i, n := range r.Counts {
		weights[i] = float64(n) / float64(total)
	}
	return weights
}

// Cluster runs k-means with a process-wide random source, or src when
// non-nil, and returns the k centroids.
func Cluster(samples []RGB, k int, src RandomSource) ([]RGB, error) {
	return NewClusterer(WithRandomSource(src)).Cluster(samples, k)
}

// Cluster returns the k centroids found for samples.
func (c *Clusterer) Cluster(samples []RGB, k int) ([]RGB, error) {
	res, err := c.Run(context.Background(), samples, k)
	if res == nil {
		return nil, err
	}
	return res.Centroids, err
}

// Run clusters samples into k groups. Initial centroids are k independent
// uniform draws, with replacement, from samples. Duplicate draws are kept.
func (c *Clusterer) Run(ctx context.Context, samples []RGB, k int) (*Result, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if k < 1 || k > len(samples) {
		return nil, fmt.Errorf("%w: k=%d must be between 1 and %d", ErrInvalidK, k, len(samples))
	}

	initial := make([]RGB, k)
	for i := range initial {
		initial[i] = samples[c.rand.IntN(len(samples))]
	}
	c.logger.Debug("seeded centroids", "k", k, "samples", len(samples))

	return c.iterate(ctx, samples, initial)
}

// RunFrom clusters samples starting from the given centroids instead of
// random draws. len(initial) is k.
func (c *Clusterer) RunFrom(ctx context.Context, samples []RGB, initial []RGB) (*Result, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	if len(initial) < 1 || len(initial) > len(samples) {
		return nil, fmt.Errorf("%w: k=%d must be between 1 and %d", ErrInvalidK, len(initial), len(samples))
	}
	return c.iterate(ctx, samples, slices.Clone(initial))
}

// clusterSum accumulates the members of one cluster.
type clusterSum struct {
	r, g, b uint64
	count   int
}

func (s *clusterSum) add(c RGB) {
	s.r += uint64(c.R)
	s.g += uint64(c.G)
	s.b += uint64(c.B)
	s.count++
}

func (s *clusterSum) merge(o clusterSum) {
	s.r += o.r
	s.g += o.g
	s.b += o.b
	s.count += o.count
}

// mean returns the per-channel mean rounded half away from zero.
func (s *clusterSum) mean() RGB {
	n := float64(s.count)
	return RGB{
		R: uint8(math.Round(float64(s.r) / n)),
		G: uint8(math.Round(float64(s.g) / n)),
		B: uint8(math.Round(float64(s.b) / n)),
	}
}

func (c *Clusterer) iterate(ctx context.Context, samples []RGB, centroids []RGB) (*Result, error) {
	k := len(centroids)
	sums := make([]clusterSum, k)
	next := make([]RGB, k)
	partials := c.partitions(len(samples), k)

	for iter := 1; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("k-means interrupted after %d iterations: %w", iter-1, err)
		}

		if err := c.assign(ctx, samples, centroids, sums, partials); err != nil {
			return nil, fmt.Errorf("k-means interrupted after %d iterations: %w", iter-1, err)
		}

		empty := 0
		for i := range sums {
			if sums[i].count == 0 {
				next[i] = emptyClusterCentroid
				empty++
				continue
			}
			next[i] = sums[i].mean()
		}

		moved := 0
		for i := range next {
			if next[i] != centroids[i] {
				moved++
			}
		}
		centroids, next = next, centroids

		c.logger.Trace("k-means iteration", "iteration", iter, "moved", moved, "empty", empty)

		if moved == 0 {
			c.logger.Debug("k-means converged", "iterations", iter, "k", k, "empty", empty)
			return newResult(centroids, sums, iter), nil
		}
		if c.maxIterations > 0 && iter >= c.maxIterations {
			c.logger.Warn("k-means stopped at iteration cap", "iterations", iter, "moved", moved)
			return newResult(centroids, sums, iter), fmt.Errorf("%w after %d iterations", ErrNotConverged, iter)
		}
	}
}

func newResult(centroids []RGB, sums []clusterSum, iterations int) *Result {
	counts := make([]int, len(sums))
	for i := range sums {
		counts[i] = sums[i].count
	}
	return &Result{
		Centroids:  slices.Clone(centroids),
		Counts:     counts,
		Iterations: iterations,
	}
}

// partitions allocates one reusable bucket array per worker chunk.
// It returns nil when the assignment step should stay on one goroutine.
func (c *Clusterer) partitions(n, k int) [][]clusterSum {
	workers := min(c.workers, n/minSamplesPerWorker)
	if workers < 2 {
		return nil
	}
	partials := make([][]clusterSum, workers)
	for i := range partials {
		partials[i] = make([]clusterSum, k)
	}
	return partials
}

// assign rebuilds sums from scratch with every sample placed in the bucket
// of its nearest centroid.
func (c *Clusterer) assign(ctx context.Context, samples, centroids []RGB, sums []clusterSum, partials [][]clusterSum) error {
	if partials == nil {
		assignRange(samples, centroids, sums)
		return nil
	}

	chunk := (len(samples) + len(partials) - 1) / len(partials)
	g, ctx := errgroup.WithContext(ctx)
	for w := range partials {
		lo := min(w*chunk, len(samples))
		hi := min(lo+chunk, len(samples))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			assignRange(samples[lo:hi], centroids, partials[w])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	clear(sums)
	for _, partial := range partials {
		for i := range partial {
			sums[i].merge(partial[i])
		}
	}
	return nil
}

func assignRange(samples, centroids []RGB, sums []clusterSum) {
	clear(sums)
	for _, s := range samples {
		sums[nearest(s, centroids)].add(s)
	}
}

// nearest returns the index of the closest centroid. Ties go to the lowest index.
func nearest(s RGB, centroids []RGB) int {
	best := 0
	bestDist := math.Inf(1)
	for i, c := range centroids {
		if d := s.Distance(c); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
