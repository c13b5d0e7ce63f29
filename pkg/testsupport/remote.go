// Package testsupport provides shared test doubles and fixtures for the
// storefront data core: a call-counting in-memory Remote with deterministic
// subscriptions, and fixture constructors for catalog and cart data.
package testsupport

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/iraklijanashvili/Ecommerce-sub000/docstore"
)

// FakeRemote is an in-memory docstore.Remote. It counts calls per method so
// tests can assert cache behavior (a cache hit issues no remote call), lets
// tests inject per-method failures, and publishes collection snapshots to
// live subscriptions after every mutation, mimicking a push-based store.
type FakeRemote struct {
	mu          sync.Mutex
	collections map[string]*fakeCollection
	calls       map[string]int
	failures    map[string]*injectedFailure
	subs        map[string][]*FakeSubscription

	// PartialBatchAfter, when > 0, makes ApplyBatch commit that many
	// mutations and fail the rest, reporting a PartialBatchError.
	PartialBatchAfter int
}

type fakeCollection struct {
	docs  map[string]map[string]any
	order []string
}

type injectedFailure struct {
	err       error
	remaining int // -1 means always
}

// NewFakeRemote creates an empty remote.
func NewFakeRemote() *FakeRemote {
	return &FakeRemote{
		collections: make(map[string]*fakeCollection),
		calls:       make(map[string]int),
		failures:    make(map[string]*injectedFailure),
		subs:        make(map[string][]*FakeSubscription),
	}
}

// Seed inserts a document without counting a call or notifying subscribers.
func (r *FakeRemote) Seed(collection, id string, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertLocked(collection, id, data)
}

// Calls reports how many times the named method ran.
func (r *FakeRemote) Calls(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[method]
}

// FailWith makes every future call of method return err.
func (r *FakeRemote) FailWith(method string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[method] = &injectedFailure{err: err, remaining: -1}
}

// FailTimes makes the next n calls of method return err, then succeed.
func (r *FakeRemote) FailTimes(method string, n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[method] = &injectedFailure{err: err, remaining: n}
}

func (r *FakeRemote) begin(method string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[method]++
	f := r.failures[method]
	if f == nil {
		return nil
	}
	if f.remaining == 0 {
		return nil
	}
	if f.remaining > 0 {
		f.remaining--
	}
	return f.err
}

func (r *FakeRemote) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := r.begin("Get"); err != nil {
		return docstore.Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	col := r.collections[collection]
	if col == nil {
		return docstore.Document{}, docstore.ErrNotFound
	}
	data, ok := col.docs[id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{ID: id, Data: cloneData(data)}, nil
}

func (r *FakeRemote) Query(ctx context.Context, collection, field string, value any) ([]docstore.Document, error) {
	if err := r.begin("Query"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []docstore.Document
	for _, doc := range r.snapshotLocked(collection) {
		if doc.Data[field] == value {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (r *FakeRemote) All(ctx context.Context, collection string) ([]docstore.Document, error) {
	if err := r.begin("All"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(collection), nil
}

func (r *FakeRemote) Set(ctx context.Context, collection, id string, data map[string]any) (string, error) {
	if err := r.begin("Set"); err != nil {
		return "", err
	}
	r.mu.Lock()
	if id == "" {
		id = uuid.NewString()
	}
	r.upsertLocked(collection, id, data)
	r.mu.Unlock()
	r.publish(collection)
	return id, nil
}

func (r *FakeRemote) UpdateFields(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := r.begin("UpdateFields"); err != nil {
		return err
	}
	r.mu.Lock()
	col := r.collections[collection]
	if col == nil || col.docs[id] == nil {
		r.mu.Unlock()
		return docstore.ErrNotFound
	}
	for k, v := range fields {
		col.docs[id][k] = v
	}
	r.mu.Unlock()
	r.publish(collection)
	return nil
}

func (r *FakeRemote) Delete(ctx context.Context, collection, id string) error {
	if err := r.begin("Delete"); err != nil {
		return err
	}
	r.mu.Lock()
	r.deleteLocked(collection, id)
	r.mu.Unlock()
	r.publish(collection)
	return nil
}

func (r *FakeRemote) ApplyBatch(ctx context.Context, mutations []docstore.Mutation) error {
	if err := r.begin("ApplyBatch"); err != nil {
		return err
	}

	r.mu.Lock()
	limit := r.PartialBatchAfter
	touched := make(map[string]struct{})
	var failures []docstore.BatchFailure
	for i, m := range mutations {
		if limit > 0 && i >= limit {
			failures = append(failures, docstore.BatchFailure{
				Mutation: m,
				Err:      errors.New("testsupport: mutation rejected"),
			})
			continue
		}
		r.applyLocked(m)
		touched[m.Collection] = struct{}{}
	}
	r.mu.Unlock()

	for c := range touched {
		r.publish(c)
	}
	if len(failures) > 0 {
		return &docstore.PartialBatchError{
			Applied:  len(mutations) - len(failures),
			Failures: failures,
		}
	}
	return nil
}

func (r *FakeRemote) applyLocked(m docstore.Mutation) {
	switch m.Kind {
	case docstore.MutationSet:
		id := m.ID
		if id == "" {
			id = uuid.NewString()
		}
		r.upsertLocked(m.Collection, id, m.Data)
	case docstore.MutationUpdate:
		if col := r.collections[m.Collection]; col != nil && col.docs[m.ID] != nil {
			for k, v := range m.Fields {
				col.docs[m.ID][k] = v
			}
		}
	case docstore.MutationDelete:
		r.deleteLocked(m.Collection, m.ID)
	}
}

func (r *FakeRemote) Subscribe(ctx context.Context, collection string) (docstore.RemoteSubscription, error) {
	if err := r.begin("Subscribe"); err != nil {
		return nil, err
	}
	sub := &FakeSubscription{
		remote:     r,
		collection: collection,
		ch:         make(chan []docstore.Document, 16),
	}
	r.mu.Lock()
	r.subs[collection] = append(r.subs[collection], sub)
	initial := r.snapshotLocked(collection)
	r.mu.Unlock()

	// Push-based stores deliver the current contents on registration.
	sub.deliver(initial)
	return sub, nil
}

// ActiveSubscriptions reports how many registrations for collection are
// still open; tests use it to verify teardown releases the registration.
func (r *FakeRemote) ActiveSubscriptions(collection string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, sub := range r.subs[collection] {
		if !sub.stopped {
			n++
		}
	}
	return n
}

// FailSubscriptions terminates every open registration for collection with err.
func (r *FakeRemote) FailSubscriptions(collection string, err error) {
	r.mu.Lock()
	subs := append([]*FakeSubscription(nil), r.subs[collection]...)
	r.mu.Unlock()
	for _, sub := range subs {
		sub.fail(err)
	}
}

func (r *FakeRemote) publish(collection string) {
	r.mu.Lock()
	subs := append([]*FakeSubscription(nil), r.subs[collection]...)
	snapshot := r.snapshotLocked(collection)
	r.mu.Unlock()
	for _, sub := range subs {
		sub.deliver(snapshot)
	}
}

func (r *FakeRemote) upsertLocked(collection, id string, data map[string]any) {
	col := r.collections[collection]
	if col == nil {
		col = &fakeCollection{docs: make(map[string]map[string]any)}
		r.collections[collection] = col
	}
	if _, exists := col.docs[id]; !exists {
		col.order = append(col.order, id)
	}
	col.docs[id] = cloneData(data)
}

func (r *FakeRemote) deleteLocked(collection, id string) {
	col := r.collections[collection]
	if col == nil {
		return
	}
	if _, exists := col.docs[id]; !exists {
		return
	}
	delete(col.docs, id)
	for i, existing := range col.order {
		if existing == id {
			col.order = append(col.order[:i], col.order[i+1:]...)
			break
		}
	}
}

// snapshotLocked returns the collection contents in arrival order.
func (r *FakeRemote) snapshotLocked(collection string) []docstore.Document {
	col := r.collections[collection]
	if col == nil {
		return nil
	}
	out := make([]docstore.Document, 0, len(col.order))
	for _, id := range col.order {
		out = append(out, docstore.Document{ID: id, Data: cloneData(col.docs[id])})
	}
	return out
}

func cloneData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// FakeSubscription is one live registration against a FakeRemote collection.
type FakeSubscription struct {
	remote     *FakeRemote
	collection string
	ch         chan []docstore.Document

	mu      sync.Mutex
	stopped bool
	err     error
}

func (s *FakeSubscription) Snapshots() <-chan []docstore.Document { return s.ch }

func (s *FakeSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *FakeSubscription) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	close(s.ch)
}

func (s *FakeSubscription) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	s.err = err
	close(s.ch)
}

func (s *FakeSubscription) deliver(snapshot []docstore.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	select {
	case s.ch <- snapshot:
	default:
		// Slow consumer; drop the oldest queued snapshot so delivery
		// converges on current state instead of blocking the remote.
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- snapshot:
		default:
		}
	}
}

// Push re-publishes the current contents of collection to its subscribers,
// for tests that need a change notification without a mutation.
func (r *FakeRemote) Push(collection string) {
	r.publish(collection)
}

// PushDocuments publishes an arbitrary snapshot, bypassing stored state.
// Used to inject malformed documents into a live subscription.
func (r *FakeRemote) PushDocuments(collection string, docs []docstore.Document) {
	r.mu.Lock()
	subs := append([]*FakeSubscription(nil), r.subs[collection]...)
	r.mu.Unlock()
	for _, sub := range subs {
		sub.deliver(docs)
	}
}

// String implements fmt.Stringer for debugging test failures.
func (r *FakeRemote) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fmt.Sprintf("FakeRemote{collections: %d, calls: %v}", len(r.collections), r.calls)
}
