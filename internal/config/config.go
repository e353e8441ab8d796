// Package config defines the CLI's flag surface, mirroring the teacher's
// Config struct and parseFlags function (cmd/s3_server/main.go) but
// scoped to the options spec.md §6 lists for the migration CLI.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

// Config holds every flag the migration CLI accepts.
type Config struct {
	Namespace              string        // destination namespace DID
	FetcherBaseURL         string        // legacy part-fetcher base URL
	DestinationBaseURL     string        // destination-client base URL
	DelegationPath         string        // opaque capability proof file
	LogPath                string        // optional outcome log path
	ExpectedRegisterStatus string        // optional; empty means accept any
	Concurrency            int           // k
	PutConcurrency         int           // auxiliary cap on outstanding PUTs; 0 = unlimited
	LogLevel               string
	MetricsEnabled         bool
	MetricsPort            int
	ShutdownTimeout        time.Duration
}

// Parse parses args (excluding the program name) into a Config, applying
// the same defaults-then-flag.Parse shape as the teacher's parseFlags.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	cfg := &Config{}

	fs.StringVar(&cfg.Namespace, "namespace", "", "Destination namespace DID (required)")
	fs.StringVar(&cfg.FetcherBaseURL, "fetcher-url", "", "Legacy part-fetcher base URL (required)")
	fs.StringVar(&cfg.DestinationBaseURL, "destination-url", "", "Destination capability-invocation base URL (required)")
	fs.StringVar(&cfg.DelegationPath, "proof", "", "Path to a JSON array of opaque delegation proofs (required)")
	fs.StringVar(&cfg.LogPath, "log", "", "Optional path to write NDJSON outcome log")
	fs.StringVar(&cfg.ExpectedRegisterStatus, "expected-register-status", "", "Optional expected register-part status; empty accepts done or upload")
	fs.IntVar(&cfg.Concurrency, "concurrency", 1, "Maximum number of parts migrated concurrently (k)")
	fs.IntVar(&cfg.PutConcurrency, "put-concurrency", 0, "Optional cap on concurrent destination PUTs (0 = unlimited)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.BoolVar(&cfg.MetricsEnabled, "metrics-enabled", false, "Enable the Prometheus metrics server")
	fs.IntVar(&cfg.MetricsPort, "metrics-port", 9091, "Metrics server port")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", 30*time.Second, "Accepted but not applied: after an interrupt the CLI waits for in-flight work to drain with no time limit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("-namespace is required")
	}
	if c.FetcherBaseURL == "" {
		return fmt.Errorf("-fetcher-url is required")
	}
	if c.DestinationBaseURL == "" {
		return fmt.Errorf("-destination-url is required")
	}
	if c.DelegationPath == "" {
		return fmt.Errorf("-proof is required")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("-concurrency must be >= 1, got %d", c.Concurrency)
	}
	return nil
}

// OpenLog opens the outcome log file for append, creating it if
// necessary, when LogPath is set. Returns nil, nil when no log path is
// configured.
func (c *Config) OpenLog() (*os.File, error) {
	if c.LogPath == "" {
		return nil, nil
	}
	return os.OpenFile(c.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}
