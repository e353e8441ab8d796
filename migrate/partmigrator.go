package migrate

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/storacha/migrate-to-w3up/internal/logging"
)

// PartMigratorDeps are the collaborators PartMigrator needs to turn a
// FetchablePart into a PartOutcome.
type PartMigratorDeps struct {
	Fetcher PartFetcher
	Dest    DestinationClient
	Putter  Putter
	Auth    Authorization
	With    string // destination namespace
	// ExpectedRegisterStatus, when set, is the only register-part Ok.Status
	// this migration accepts; any other status (including "done" or
	// "upload") is treated as CauseProtocol. Empty means accept either
	// "done" or "upload", per spec.md §6's default.
	ExpectedRegisterStatus string
	// Metrics is optional; nil disables instrumentation.
	Metrics MetricsRecorder
}

// migratePart runs the per-part algorithm from spec.md §4.2. It never
// returns an error to the caller: every failure is isolated into a
// PartFailure so one bad part cannot poison the pipeline.
func migratePart(ctx context.Context, deps PartMigratorDeps, fp FetchablePart, log logging.Printer) (result PartOutcome) {
	var finishMetrics func(cause string)
	if deps.Metrics != nil {
		finishMetrics = deps.Metrics.PartStarted()
	}
	defer func() {
		if finishMetrics == nil {
			return
		}
		cause := ""
		if failure, ok := result.(PartFailure); ok {
			cause = string(failure.Cause.Kind)
		}
		finishMetrics(cause)
	}()

	defer func() {
		if r := recover(); r != nil {
			log.Error("part migration panicked", "part", fp.PartCID, "panic", r)
			result = PartFailure{
				Upload:  fp.Upload,
				PartCID: fp.PartCID,
				Cause:   Cause{Kind: CauseProtocol, Message: fmt.Sprintf("panic: %v", r)},
			}
		}
	}()

	if ctx.Err() != nil {
		return PartFailure{Upload: fp.Upload, PartCID: fp.PartCID, Cause: Cause{Kind: CauseCancelled}}
	}

	// stepCause reports a failed remote step as Cancelled when ctx was
	// cancelled while the step was in flight, and as kind otherwise.
	stepCause := func(kind CauseKind, err error) Cause {
		if ctx.Err() != nil {
			return newCause(CauseCancelled, err)
		}
		return newCause(kind, err)
	}

	resp, err := deps.Fetcher.Fetch(ctx, fp.PartCID)
	if err != nil {
		return PartFailure{Upload: fp.Upload, PartCID: fp.PartCID, Cause: stepCause(CauseBadFetch, err)}
	}
	body := resp.Body
	closeBody := func() {
		if body != nil {
			body.Close()
		}
	}

	contentLength, err := parseContentLength(resp.Header)
	if err != nil {
		closeBody()
		return PartFailure{Upload: fp.Upload, PartCID: fp.PartCID, Cause: newCause(CauseBadFetch, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		closeBody()
		return PartFailure{
			Upload:  fp.Upload,
			PartCID: fp.PartCID,
			Cause:   Cause{Kind: CauseBadFetch, Message: fmt.Sprintf("fetch returned status %d", resp.StatusCode)},
		}
	}

	receipt, err := deps.Dest.Invoke(ctx, Invocation{
		Can:  "register-part",
		With: deps.With,
		Args: map[string]any{"link": fp.PartCID, "size": contentLength},
		Auth: deps.Auth,
	})
	if err != nil {
		closeBody()
		return PartFailure{Upload: fp.Upload, PartCID: fp.PartCID, Cause: stepCause(CauseRegister, err)}
	}
	if receipt.Ok == nil {
		closeBody()
		return PartFailure{Upload: fp.Upload, PartCID: fp.PartCID, Cause: registerFailureCause(&receipt)}
	}
	if deps.ExpectedRegisterStatus != "" && receipt.Ok.Status != deps.ExpectedRegisterStatus {
		closeBody()
		return PartFailure{
			Upload:  fp.Upload,
			PartCID: fp.PartCID,
			Cause: Cause{
				Kind:    CauseProtocol,
				Message: fmt.Sprintf("register-part returned status %q, expected %q", receipt.Ok.Status, deps.ExpectedRegisterStatus),
			},
		}
	}

	switch receipt.Ok.Status {
	case "done":
		closeBody()
		return PartSuccess{Upload: fp.Upload, PartCID: fp.PartCID, RegisterReceipt: receipt}

	case "upload":
		defer closeBody()
		status, err := deps.Putter.Put(ctx, receipt.Ok.URL, receipt.Ok.Headers, contentLength, body)
		if err != nil {
			return PartFailure{Upload: fp.Upload, PartCID: fp.PartCID, Cause: stepCause(CauseCopy, err)}
		}
		if status < 200 || status >= 300 {
			return PartFailure{
				Upload:  fp.Upload,
				PartCID: fp.PartCID,
				Cause:   Cause{Kind: CauseCopy, Message: fmt.Sprintf("copy returned status %d", status)},
			}
		}
		if deps.Metrics != nil {
			deps.Metrics.RecordBytesCopied(contentLength)
		}
		s := status
		return PartSuccess{Upload: fp.Upload, PartCID: fp.PartCID, RegisterReceipt: receipt, CopyResponseStatus: &s}

	default:
		closeBody()
		return PartFailure{
			Upload:  fp.Upload,
			PartCID: fp.PartCID,
			Cause:   Cause{Kind: CauseProtocol, Message: fmt.Sprintf("unexpected register-part status %q", receipt.Ok.Status)},
		}
	}
}

func parseContentLength(header map[string][]string) (int64, error) {
	values := header["Content-Length"]
	if len(values) == 0 {
		values = header["content-length"]
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("missing content-length")
	}
	n, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid content-length %q: %w", values[0], err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("non-positive content-length %d", n)
	}
	return n, nil
}

// partMigrator runs up to k workers pulling from in and emitting
// PartOutcomes onto out, in arbitrary completion order. The channel
// hand-off between fanOut and partMigrator is unbuffered, so at any
// instant at most k parts are being processed and at most one more is
// in transit from the Fan-out goroutine — the k+1 look-ahead bound from
// spec.md §4.2.
func partMigrator(ctx context.Context, in <-chan FetchablePart, k int, deps PartMigratorDeps, log logging.Printer) <-chan PartOutcome {
	if k < 1 {
		k = 1
	}

	out := make(chan PartOutcome)
	var wg sync.WaitGroup
	wg.Add(k)

	for i := 0; i < k; i++ {
		go func(worker int) {
			defer wg.Done()
			for fp := range in {
				result := migratePart(ctx, deps, fp, log)
				switch r := result.(type) {
				case PartFailure:
					log.Warn("part failed", "part", fp.PartCID, "upload", fp.Upload.CID, "cause", r.Cause.Error())
				case PartSuccess:
					log.Debug("part migrated", "part", fp.PartCID, "upload", fp.Upload.CID)
				}

				select {
				case out <- result:
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}
