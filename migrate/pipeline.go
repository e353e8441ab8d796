package migrate

import (
	"context"

	"github.com/storacha/migrate-to-w3up/internal/logging"
)

// Options configures a migration run.
type Options struct {
	// Concurrency is k, the maximum number of parts migrated at once.
	// Must be >= 1; values < 1 are coerced to 1.
	Concurrency int
	// Namespace is the destination authority/namespace every invocation
	// is scoped to.
	Namespace string
	Auth      Authorization
	Fetcher   PartFetcher
	Dest      DestinationClient
	Putter    Putter
	Log       logging.Printer
	// ExpectedRegisterStatus, when set, is the only register-part
	// Ok.Status this run accepts; see PartMigratorDeps.
	ExpectedRegisterStatus string
	// Metrics is optional; nil disables instrumentation.
	Metrics MetricsRecorder
}

// nopLogger is used when Options.Log is left nil.
type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Run wires Fan-out -> PartMigrator(k) -> Assembler -> Binder -> merger
// and returns the resulting outcome stream. Exactly one Outcome is sent
// per Upload produced by src, unless ctx is cancelled first. The
// returned channel is closed once src is exhausted and every in-flight
// upload has resolved, or once ctx is cancelled and all in-flight work
// has drained.
func Run(ctx context.Context, src Source, opts Options) <-chan Outcome {
	log := opts.Log
	if log == nil {
		log = nopLogger{}
	}

	parts := fanOut(ctx, src, log)
	results := partMigrator(ctx, parts, opts.Concurrency, PartMigratorDeps{
		Fetcher:                opts.Fetcher,
		Dest:                   opts.Dest,
		Putter:                 opts.Putter,
		Auth:                   opts.Auth,
		With:                   opts.Namespace,
		ExpectedRegisterStatus: opts.ExpectedRegisterStatus,
		Metrics:                opts.Metrics,
	}, log)
	ready, assemblyFailures := assemble(results, log)
	bound := bind(ctx, ready, opts.Dest, opts.Auth, opts.Namespace, log)

	return mergeOutcomes(bound, assemblyFailures)
}

// Drain reads every outcome from ch, invoking fn for each, until ch is
// closed. It is a convenience for callers that do not need to interleave
// outcome handling with other work.
func Drain(ch <-chan Outcome, fn func(Outcome)) {
	for o := range ch {
		fn(o)
	}
}
