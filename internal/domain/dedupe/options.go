// Package dedupe remembers the results of already-applied requests so that a
// retried request is answered from memory instead of being applied twice.
package dedupe

// Option applies a configuration option to an in-memory cache.
type Option func(*settings)

type settings struct {
	maxSize int
}

// WithMaxSize sets how many request ids are remembered.
// If maxSize > 0 the oldest entry is evicted once the cache is full.
// If maxSize <= 0 the cache is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(s *settings) {
		s.maxSize = maxSize
	}
}
