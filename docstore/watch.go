package docstore

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Watch is one live, typed view of a collection. Every remote change
// delivers the full decoded document set as one snapshot, in arrival order.
// If a consumer lags, intermediate snapshots are dropped in favor of the
// latest one; consumers always converge on current state.
//
// A Watch has a single consumer. The Snapshots channel closes when the watch
// terminates; Err reports why. Owners must call Stop on teardown or the
// remote registration leaks.
type Watch[T any] struct {
	snapshots chan []T
	stopOnce  sync.Once
	stop      func()

	mu  sync.Mutex
	err error
}

// ObserveCollection opens exactly one live subscription against collection
// and decodes every remote snapshot with codec. A document that fails to
// decode terminates the watch with a DecodeError; snapshots feed derived
// aggregates, and silently dropping a document would corrupt them.
func ObserveCollection[T any](ctx context.Context, s *Store, codec Codec[T], collection string) (*Watch[T], error) {
	sub, err := s.remote.Subscribe(ctx, collection)
	if err != nil {
		return nil, err
	}

	w := &Watch[T]{
		snapshots: make(chan []T, 1),
		stop:      sub.Stop,
	}
	go w.run(sub, codec, collection, s.log)
	return w, nil
}

// Snapshots returns the stream of decoded collection snapshots.
func (w *Watch[T]) Snapshots() <-chan []T { return w.snapshots }

// Err returns the terminal error, if any, once Snapshots has closed.
func (w *Watch[T]) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Stop cancels the remote registration. Safe to call more than once; the
// Snapshots channel closes shortly after.
func (w *Watch[T]) Stop() {
	w.stopOnce.Do(w.stop)
}

func (w *Watch[T]) run(sub RemoteSubscription, codec Codec[T], collection string, log *zap.Logger) {
	defer close(w.snapshots)

	for docs := range sub.Snapshots() {
		out := make([]T, 0, len(docs))
		decodeFailed := false
		for _, doc := range docs {
			v, err := codec.Decode(doc)
			if err != nil {
				w.setErr(&DecodeError{Collection: collection, ID: doc.ID, Err: err})
				log.Error("subscription snapshot decode failed, terminating watch",
					zap.String("collection", collection),
					zap.String("id", doc.ID),
					zap.Error(err))
				w.Stop()
				decodeFailed = true
				break
			}
			out = append(out, v)
		}
		if decodeFailed {
			// Drain the remote channel so Stop can complete, then exit.
			for range sub.Snapshots() {
			}
			return
		}
		w.publish(out)
	}
	w.setErr(sub.Err())
}

// publish delivers latest-wins: a stale undelivered snapshot is replaced
// rather than queued behind the new one.
func (w *Watch[T]) publish(snapshot []T) {
	for {
		select {
		case w.snapshots <- snapshot:
			return
		default:
			select {
			case <-w.snapshots:
			default:
			}
		}
	}
}

func (w *Watch[T]) setErr(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
	}
}
