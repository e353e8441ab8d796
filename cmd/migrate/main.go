// Command migrate is the thin CLI wrapper around the migration pipeline
// (package migrate). Argument parsing, interactive prompts, and the
// legacy-service list/pagination clients are explicitly out of scope per
// spec.md §1; this wrapper only does enough wiring to drive the core
// from stdin and report outcomes, mirroring the teacher's main.go
// (flag parsing, structured logging, signal-based graceful shutdown).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/storacha/migrate-to-w3up/destination"
	"github.com/storacha/migrate-to-w3up/httpclient"
	"github.com/storacha/migrate-to-w3up/internal/config"
	"github.com/storacha/migrate-to-w3up/internal/logging"
	"github.com/storacha/migrate-to-w3up/metrics"
	"github.com/storacha/migrate-to-w3up/migrate"
	"github.com/storacha/migrate-to-w3up/outcome"
	"github.com/storacha/migrate-to-w3up/ratelimit"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stderr))
}

func run(args []string, stdin *os.File, stderr *os.File) int {
	cfg, err := config.Parse(args)
	if err != nil {
		fmt.Fprintln(stderr, "migrate:", err)
		return 2
	}

	log := logging.New(stderr, logging.ParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auth, err := destination.LoadDelegationSet(cfg.DelegationPath)
	if err != nil {
		log.Error("failed to load delegation proofs", "error", err)
		return 2
	}

	logFile, err := cfg.OpenLog()
	if err != nil {
		log.Error("failed to open outcome log", "error", err)
		return 2
	}
	if logFile != nil {
		defer logFile.Close()
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsPort, log.With("metrics")); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}

	limiter := ratelimit.New(cfg.PutConcurrency)

	var recorder migrate.MetricsRecorder
	if m != nil {
		recorder = m
	}

	src := outcome.NewStdinSource(stdin, -1)
	opts := migrate.Options{
		Concurrency:            cfg.Concurrency,
		Namespace:              cfg.Namespace,
		Auth:                   auth,
		Fetcher:                httpclient.NewFetcher(cfg.FetcherBaseURL, nil),
		Dest:                   destination.New(cfg.DestinationBaseURL, nil),
		Putter:                 httpclient.NewPutter(nil, limiter),
		Log:                    log.With("migrate"),
		ExpectedRegisterStatus: cfg.ExpectedRegisterStatus,
		Metrics:                recorder,
	}

	var logWriter io.Writer
	if logFile != nil {
		logWriter = logFile
	}
	writer := outcome.New(logWriter, stderr)

	anyFailure := false
	for o := range migrate.Run(ctx, src, opts) {
		success, err := writer.Write(o)
		if err != nil {
			log.Error("failed to write outcome", "error", err)
		}
		if m != nil {
			m.RecordUploadOutcome(success)
		}
		if !success {
			anyFailure = true
		}
	}

	if anyFailure {
		return 1
	}
	return 0
}
