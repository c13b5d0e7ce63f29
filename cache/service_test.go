package cache

import (
	"context"
	"errors"
	"testing"
)

// staticService returns a fixed value for every key, standing in for a
// cache whose entry was written by a caller of another type.
type staticService struct {
	value any
	err   error
}

func (s *staticService) GetOrFetch(ctx context.Context, key string, fetchFn func(ctx context.Context) (any, error)) (any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.value, nil
}

func (s *staticService) Delete(context.Context, string) error         { return nil }
func (s *staticService) DeleteByPrefix(context.Context, string) error { return nil }

func TestGetOrFetch_ReturnsTypedValue(t *testing.T) {
	svc := &staticService{value: "cached"}

	got, err := GetOrFetch(context.Background(), svc, "k", func(ctx context.Context) (string, error) {
		return "fetched", nil
	})
	if err != nil {
		t.Fatalf("GetOrFetch: %v", err)
	}
	if got != "cached" {
		t.Fatalf("GetOrFetch = %q, want cached", got)
	}
}

func TestGetOrFetch_WrongTypeFailsLoud(t *testing.T) {
	svc := &staticService{value: 42}

	_, err := GetOrFetch(context.Background(), svc, "k", func(ctx context.Context) (string, error) {
		return "fetched", nil
	})
	if !errors.Is(err, ErrUnexpectedType) {
		t.Fatalf("err = %v, want ErrUnexpectedType", err)
	}
}

func TestGetOrFetch_PropagatesServiceError(t *testing.T) {
	want := errors.New("backend down")
	svc := &staticService{err: want}

	_, err := GetOrFetch(context.Background(), svc, "k", func(ctx context.Context) (string, error) {
		return "", nil
	})
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want the service error", err)
	}
}
