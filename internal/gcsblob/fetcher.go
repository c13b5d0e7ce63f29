// Package gcsblob fetches resources from Google Cloud Storage for
// gs://bucket/object addresses, the form product photo references take in
// catalog documents.
package gcsblob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

const scheme = "gs://"

// Fetcher implements resourcecache.Fetcher over a GCS client.
type Fetcher struct {
	client *storage.Client
}

// New wraps an initialized storage client.
func New(client *storage.Client) *Fetcher {
	return &Fetcher{client: client}
}

// ParseAddress splits a gs://bucket/object address.
func ParseAddress(address string) (bucket, object string, err error) {
	if !strings.HasPrefix(address, scheme) {
		return "", "", fmt.Errorf("gcsblob: address %q lacks %s scheme", address, scheme)
	}
	rest := strings.TrimPrefix(address, scheme)
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gcsblob: malformed address %q", address)
	}
	return bucket, object, nil
}

// Fetch downloads the object behind a gs:// address.
func (f *Fetcher) Fetch(ctx context.Context, address string) ([]byte, error) {
	bucket, object, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	r, err := f.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("gcsblob: %s: object not found", address)
		}
		return nil, fmt.Errorf("gcsblob: open %s: %w", address, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcsblob: read %s: %w", address, err)
	}
	return data, nil
}
