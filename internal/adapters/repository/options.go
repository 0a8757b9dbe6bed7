package repository

import "time"

// Option applies a configuration option to Open.
type Option func(*settings)

type settings struct {
	driver      string
	path        string
	natsURL     string
	natsBucket  string
	natsTimeout time.Duration
	maxRetries  int
}

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverNATS   = "nats"
)

const (
	defaultBucket      = "dutyrota"
	defaultNATSTimeout = 5 * time.Second
	defaultMaxRetries  = 3
)

// WithDriver selects the backend. Defaults to DriverMemory.
func WithDriver(driver string) Option {
	return func(s *settings) {
		if driver != "" {
			s.driver = driver
		}
	}
}

// WithPath sets the file or database path used by the file and sqlite drivers.
func WithPath(path string) Option {
	return func(s *settings) {
		s.path = path
	}
}

// WithNATS sets the server URL and KV bucket used by the nats driver.
func WithNATS(url, bucket string) Option {
	return func(s *settings) {
		s.natsURL = url
		if bucket != "" {
			s.natsBucket = bucket
		}
	}
}

// WithNATSTimeout bounds connecting to NATS.
func WithNATSTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.natsTimeout = d
		}
	}
}
