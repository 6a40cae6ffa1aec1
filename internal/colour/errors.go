package colour

import "errors"

var (
	// ErrNoSamples is returned when clustering is asked to run on an empty sample set.
	ErrNoSamples = errors.New("no colour samples")

	// ErrInvalidK is returned when the cluster count is not in [1, len(samples)].
	ErrInvalidK = errors.New("invalid cluster count")

	// ErrMalformedBuffer is returned when a pixel buffer is not a whole number of RGBA groups.
	ErrMalformedBuffer = errors.New("pixel buffer length is not a multiple of 4")

	// ErrNotConverged is returned alongside the last centroid set when a
	// configured iteration cap is reached before the centroids settle.
	ErrNotConverged = errors.New("k-means did not converge")
)
