package resourcecache

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetcher loads the raw bytes behind an address. Implementations must honor
// the passed context for cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, address string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, address string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, address string) ([]byte, error) {
	return f(ctx, address)
}

// HTTPFetcher retrieves resources over HTTP(S). A nil Client falls back to
// http.DefaultClient.
type HTTPFetcher struct {
	Client *http.Client
}

func (h *HTTPFetcher) Fetch(ctx context.Context, address string) ([]byte, error) {
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, fmt.Errorf("resourcecache: build request for %q: %w", address, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("resourcecache: fetch %q: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("resourcecache: fetch %q: unexpected status %s", address, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("resourcecache: read body of %q: %w", address, err)
	}
	return data, nil
}
