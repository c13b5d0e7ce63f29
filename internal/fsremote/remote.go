// Package fsremote implements the document remote on Cloud Firestore.
// Collection arguments are slash-separated Firestore paths, so nested
// collections like carts/{uid}/items address naturally. gRPC status codes
// map onto the store's error taxonomy: NotFound becomes the absence
// sentinel, availability codes wrap as transient so the retry policy can
// act on them.
package fsremote

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/iraklijanashvili/Ecommerce-sub000/docstore"
)

// Remote is a docstore.Remote backed by a Firestore client.
type Remote struct {
	client *firestore.Client
}

// New wraps an initialized Firestore client.
func New(client *firestore.Client) *Remote {
	return &Remote{client: client}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", docstore.ErrNotFound, err)
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %v", docstore.ErrNotAuthenticated, err)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return &docstore.TransientError{Err: err}
	default:
		return err
	}
}

func (r *Remote) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	snap, err := r.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return docstore.Document{}, mapErr(err)
	}
	return docstore.Document{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (r *Remote) Query(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	it := r.client.Collection(collection).Where(field, "==", value).Documents(ctx)
	return drain(it)
}

func (r *Remote) All(ctx context.Context, collection string) ([]docstore.Document, error) {
	it := r.client.Collection(collection).Documents(ctx)
	return drain(it)
}

func drain(it *firestore.DocumentIterator) ([]docstore.Document, error) {
	defer it.Stop()
	var out []docstore.Document
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			return out, nil
		}
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, docstore.Document{ID: snap.Ref.ID, Data: snap.Data()})
	}
}

func (r *Remote) Set(ctx context.Context, collection, id string, data map[string]any) (string, error) {
	col := r.client.Collection(collection)
	ref := col.Doc(id)
	if id == "" {
		ref = col.NewDoc()
	}
	if _, err := ref.Set(ctx, data); err != nil {
		return "", mapErr(err)
	}
	return ref.ID, nil
}

func (r *Remote) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := r.client.Collection(collection).Doc(id).Update(ctx, updates(fields))
	return mapErr(err)
}

func (r *Remote) Delete(ctx context.Context, collection, id string) error {
	_, err := r.client.Collection(collection).Doc(id).Delete(ctx)
	return mapErr(err)
}

func updates(fields map[string]any) []firestore.Update {
	out := make([]firestore.Update, 0, len(fields))
	for k, v := range fields {
		out = append(out, firestore.Update{Path: k, Value: v})
	}
	return out
}

// ApplyBatch commits all mutations in one Firestore WriteBatch. The commit
// is atomic; a failure means nothing was written, so this adapter never
// produces a PartialBatchError.
func (r *Remote) ApplyBatch(ctx context.Context, mutations []docstore.Mutation) error {
	batch := r.client.Batch()
	for _, m := range mutations {
		col := r.client.Collection(m.Collection)
		ref := col.Doc(m.ID)
		if m.ID == "" {
			ref = col.NewDoc()
		}
		switch m.Kind {
		case docstore.MutationSet:
			batch.Set(ref, m.Data)
		case docstore.MutationUpdate:
			batch.Update(ref, updates(m.Fields))
		case docstore.MutationDelete:
			batch.Delete(ref)
		}
	}
	_, err := batch.Commit(ctx)
	return mapErr(err)
}

// Subscribe opens a Firestore snapshot listener on collection. Every
// change delivers the full current document set, latest-wins when the
// consumer lags.
func (r *Remote) Subscribe(ctx context.Context, collection string) (docstore.RemoteSubscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	s := &subscription{
		ch:     make(chan []docstore.Document, 1),
		cancel: cancel,
	}
	it := r.client.Collection(collection).Snapshots(subCtx)
	go s.run(it)
	return s, nil
}

type subscription struct {
	ch     chan []docstore.Document
	cancel context.CancelFunc

	stopOnce sync.Once
	mu       sync.Mutex
	err      error
}

func (s *subscription) Snapshots() <-chan []docstore.Document { return s.ch }

func (s *subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *subscription) Stop() {
	s.stopOnce.Do(s.cancel)
}

func (s *subscription) run(it *firestore.QuerySnapshotIterator) {
	defer close(s.ch)
	defer it.Stop()
	for {
		qs, err := it.Next()
		if err != nil {
			// Stop cancels the listener context; that termination is
			// orderly, not an error.
			if status.Code(err) != codes.Canceled {
				s.mu.Lock()
				s.err = mapErr(err)
				s.mu.Unlock()
			}
			return
		}
		docs, err := drain(qs.Documents)
		if err != nil {
			s.mu.Lock()
			s.err = err
			s.mu.Unlock()
			s.Stop()
			return
		}
		s.deliver(docs)
	}
}

func (s *subscription) deliver(docs []docstore.Document) {
	select {
	case s.ch <- docs:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- docs:
		default:
		}
	}
}
