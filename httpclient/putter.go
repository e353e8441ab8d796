package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/storacha/migrate-to-w3up/ratelimit"
)

// Putter streams a part's body to a destination-issued presigned upload
// URL via HTTP PUT. The body is never buffered whole: it is attached
// directly as the request body, the way spec.md §9's "streaming HTTP
// body pass-through" design note requires.
type Putter struct {
	Client  *http.Client
	Limiter *ratelimit.Limiter // optional; nil means unlimited
}

// NewPutter returns a Putter using http.DefaultClient unless client is
// provided. limiter may be nil.
func NewPutter(client *http.Client, limiter *ratelimit.Limiter) *Putter {
	if client == nil {
		client = http.DefaultClient
	}
	return &Putter{Client: client, Limiter: limiter}
}

// Put issues PUT url with the given headers and streams body as the
// request, following redirects (the default http.Client behavior). It
// returns the response status code.
func (p *Putter) Put(ctx context.Context, url string, headers map[string]string, contentLength int64, body io.Reader) (int, error) {
	release, err := p.Limiter.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire put slot: %w", err)
	}
	defer release()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return 0, fmt.Errorf("build put request: %w", err)
	}
	req.ContentLength = contentLength

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("put: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
