package docstore

import "context"

// MutationKind discriminates the mutations a batch can carry.
type MutationKind int

const (
	MutationSet MutationKind = iota
	MutationUpdate
	MutationDelete
)

// Mutation is one write queued in a batch. Data is used by set mutations,
// Fields by update mutations. A set with an empty ID asks the store to
// assign one.
type Mutation struct {
	Kind       MutationKind
	Collection string
	ID         string
	Data       map[string]any
	Fields     map[string]any
}

// Remote is the transport contract the store is built against: a document
// database exposing get/query/set/delete/batch/subscribe over named
// collections. Adapters map their transport's failures onto the package's
// error taxonomy: absence becomes ErrNotFound, availability problems wrap
// into TransientError.
type Remote interface {
	// Get returns a single document, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Query returns the documents whose field equals value.
	Query(ctx context.Context, collection, field string, value any) ([]Document, error)

	// All returns every document in a collection.
	All(ctx context.Context, collection string) ([]Document, error)

	// Set writes a full document. An empty id asks the store to assign one;
	// the assigned (or echoed) id is returned.
	Set(ctx context.Context, collection, id string, data map[string]any) (string, error)

	// UpdateFields merges the given fields into an existing document, or
	// returns ErrNotFound.
	UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes a document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error

	// ApplyBatch commits the mutations atomically when the transport
	// supports it. A transport without atomic batches serializes the writes
	// and reports what committed via PartialBatchError.
	ApplyBatch(ctx context.Context, mutations []Mutation) error

	// Subscribe opens a live registration against a collection. Every
	// change anywhere in the collection delivers the full current document
	// set. The registration stays open until Stop.
	Subscribe(ctx context.Context, collection string) (RemoteSubscription, error)
}

// RemoteSubscription is one live registration. Snapshots is closed when the
// subscription terminates; Err reports the terminal error, if any, after
// the channel closes.
type RemoteSubscription interface {
	Snapshots() <-chan []Document
	Err() error
	Stop()
}
