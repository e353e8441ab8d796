// Package httpclient implements the two HTTP-facing collaborators the
// core pipeline depends on through interfaces: a PartFetcher that reads
// part bytes from the legacy storage service, and a Putter that streams
// those bytes onward to a destination-issued presigned URL. Grounded on
// the plain net/http.Client PUT-with-streaming-body idiom from
// kelindar-s3's uploader, without any of that package's S3-specific
// SigV4 signing or multipart bookkeeping.
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/storacha/migrate-to-w3up/migrate"
)

// Fetcher retrieves part bytes from the legacy storage service over
// plain HTTP, addressing each part by CID relative to a base URL.
type Fetcher struct {
	BaseURL string
	Client  *http.Client
}

// NewFetcher returns a Fetcher using http.DefaultClient unless client is
// provided.
func NewFetcher(baseURL string, client *http.Client) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{BaseURL: baseURL, Client: client}
}

// Fetch issues GET {BaseURL}/{partCID} and returns the response as a
// PartFetcherResponse. The caller owns the returned body and must close
// it.
func (f *Fetcher) Fetch(ctx context.Context, partCID string) (*migrate.PartFetcherResponse, error) {
	u, err := url.JoinPath(f.BaseURL, partCID)
	if err != nil {
		return nil, fmt.Errorf("build fetch url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch part %s: %w", partCID, err)
	}

	return &migrate.PartFetcherResponse{
		StatusCode: resp.StatusCode,
		Header:     map[string][]string(resp.Header),
		Body:       resp.Body,
	}, nil
}
