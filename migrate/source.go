package migrate

import (
	"context"
	"io"
)

// Source produces a finite sequence of Uploads. Next returns (Upload{},
// false, nil) once the sequence is exhausted. Implementations retain
// ownership of each Upload until it is returned from Next.
type Source interface {
	// Next blocks until the next Upload is available, ctx is done, or the
	// sequence is exhausted.
	Next(ctx context.Context) (Upload, bool, error)
	// Len optionally reports the total number of uploads, when known in
	// advance (e.g. from a prior count query). ok is false when unknown.
	Len() (n int, ok bool)
}

// PartFetcherResponse is an HTTP-like response to a part fetch: headers,
// status, and a streaming body the caller must close.
type PartFetcherResponse struct {
	StatusCode int
	Header     map[string][]string
	Body       io.ReadCloser
}

// PartFetcher retrieves the bytes of a part by its CID from the legacy
// storage service.
type PartFetcher interface {
	Fetch(ctx context.Context, partCID string) (*PartFetcherResponse, error)
}

// Authorization is an opaque list of delegations proving the caller may
// invoke register-part and register-upload against the destination
// namespace. The core never inspects its contents.
type Authorization interface {
	// Proofs returns the opaque delegation blobs to attach to an
	// invocation; the concrete encoding is owned by the destination
	// client, not by the core.
	Proofs() []string
}

// Invocation is the opaque, destination-bound capability invocation the
// core asks the DestinationClient to execute. Can is one of
// "register-part" or "register-upload".
type Invocation struct {
	Can  string
	With string // destination namespace
	Args map[string]any
	Auth Authorization
}

// DestinationClient issues signed capability invocations against the
// destination storage service and returns a Receipt.
type DestinationClient interface {
	Invoke(ctx context.Context, inv Invocation) (Receipt, error)
}

// Putter performs the byte pass-through PUT to a destination-chosen
// upload URL, following redirects, streaming body without buffering it
// whole. It is split out from DestinationClient because it talks plain
// HTTP, not the invocation transport.
type Putter interface {
	Put(ctx context.Context, url string, headers map[string]string, contentLength int64, body io.Reader) (statusCode int, err error)
}

// MetricsRecorder is the optional instrumentation hook PartMigrator calls
// into around each part's migration. *metrics.Metrics satisfies this
// without either package importing the other; leaving it nil disables
// instrumentation entirely.
type MetricsRecorder interface {
	// PartStarted marks the start of one part's migration; the returned
	// func must be called exactly once with the terminal cause ("" on
	// success) when the part finishes.
	PartStarted() (finish func(cause string))
	// RecordBytesCopied adds n to the running total of bytes streamed to
	// destination-issued upload URLs.
	RecordBytesCopied(n int64)
}
