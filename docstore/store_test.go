package docstore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iraklijanashvili/Ecommerce-sub000/docstore"
	"github.com/iraklijanashvili/Ecommerce-sub000/internal/cacheinfra"
	"github.com/iraklijanashvili/Ecommerce-sub000/pkg/testsupport"
	"github.com/iraklijanashvili/Ecommerce-sub000/retry"
)

type product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

var productCodec = docstore.JSONCodec[product]{}

func newStore(remote *testsupport.FakeRemote) *docstore.Store {
	return docstore.New(remote, cacheinfra.NewMemoryStore(), docstore.Config{
		Retry: retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond},
	})
}

func TestFetchDocument_CachesWithinTTL(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	remote.Seed("products", "p1", testsupport.ProductDoc("Lamp", 10, "home"))
	store := newStore(remote)
	ctx := context.Background()

	got, err := docstore.FetchDocument(ctx, store, productCodec, "products", "p1")
	if err != nil {
		t.Fatalf("FetchDocument: %v", err)
	}
	if got.Price != 10 || got.ID != "p1" {
		t.Fatalf("unexpected product: %+v", got)
	}

	// The remote changes underneath; within the TTL the original value is
	// still served, with no second remote call.
	remote.Seed("products", "p1", testsupport.ProductDoc("Lamp", 25, "home"))
	again, err := docstore.FetchDocument(ctx, store, productCodec, "products", "p1")
	if err != nil {
		t.Fatalf("FetchDocument (cached): %v", err)
	}
	if again.Price != 10 {
		t.Errorf("expected cached price 10, got %v", again.Price)
	}
	if calls := remote.Calls("Get"); calls != 1 {
		t.Errorf("expected 1 remote get, got %d", calls)
	}
}

func TestFetchDocument_NotFoundNotRetried(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	store := newStore(remote)

	_, err := docstore.FetchDocument(context.Background(), store, productCodec, "products", "missing")
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls := remote.Calls("Get"); calls != 1 {
		t.Errorf("not-found must not retry, got %d calls", calls)
	}
}

func TestFetchDocument_RetriesTransientFailures(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	remote.Seed("products", "p1", testsupport.ProductDoc("Lamp", 10, "home"))
	remote.FailTimes("Get", 2, &docstore.TransientError{Err: errors.New("unavailable")})
	store := newStore(remote)

	got, err := docstore.FetchDocument(context.Background(), store, productCodec, "products", "p1")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got.Price != 10 {
		t.Errorf("unexpected product: %+v", got)
	}
	if calls := remote.Calls("Get"); calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestFetchDocument_ExhaustionPropagatesLastError(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	want := &docstore.TransientError{Err: errors.New("still down")}
	remote.FailWith("Get", want)
	store := newStore(remote)

	_, err := docstore.FetchDocument(context.Background(), store, productCodec, "products", "p1")
	if !docstore.IsTransient(err) {
		t.Fatalf("expected transient error after exhaustion, got %v", err)
	}
	if calls := remote.Calls("Get"); calls != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", calls)
	}
}

func TestFetchDocument_DecodeFailureNotCached(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	remote.Seed("products", "p1", map[string]any{"price": "not a number"})
	store := newStore(remote)
	ctx := context.Background()

	_, err := docstore.FetchDocument(ctx, store, productCodec, "products", "p1")
	var de *docstore.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DecodeError, got %v", err)
	}

	// The malformed payload must not have been cached.
	_, _ = docstore.FetchDocument(ctx, store, productCodec, "products", "p1")
	if calls := remote.Calls("Get"); calls != 2 {
		t.Errorf("expected a fresh remote call after decode failure, got %d", calls)
	}
}

func TestFetchDocuments_QueryKeyedCaching(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	remote.Seed("products", "p1", testsupport.ProductDoc("Lamp", 10, "home"))
	remote.Seed("products", "p2", testsupport.ProductDoc("Mug", 5, "kitchen"))
	remote.Seed("products", "p3", testsupport.ProductDoc("Rug", 30, "home"))
	store := newStore(remote)
	ctx := context.Background()

	home, err := docstore.FetchDocuments(ctx, store, productCodec, "products", "category", "home")
	if err != nil {
		t.Fatalf("FetchDocuments: %v", err)
	}
	if len(home) != 2 {
		t.Fatalf("expected 2 home products, got %d", len(home))
	}

	// Same filter: served from cache.
	if _, err := docstore.FetchDocuments(ctx, store, productCodec, "products", "category", "home"); err != nil {
		t.Fatal(err)
	}
	if calls := remote.Calls("Query"); calls != 1 {
		t.Errorf("expected 1 remote query for repeated filter, got %d", calls)
	}

	// Different filter value: distinct key, fresh query.
	kitchen, err := docstore.FetchDocuments(ctx, store, productCodec, "products", "category", "kitchen")
	if err != nil {
		t.Fatal(err)
	}
	if len(kitchen) != 1 || kitchen[0].Name != "Mug" {
		t.Fatalf("unexpected kitchen products: %+v", kitchen)
	}
	if calls := remote.Calls("Query"); calls != 2 {
		t.Errorf("expected 2 remote queries for distinct filters, got %d", calls)
	}
}

func TestSaveDocument_WriteThrough(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	store := newStore(remote)
	ctx := context.Background()

	id, err := docstore.SaveDocument(ctx, store, productCodec, "products", "", product{Name: "Lamp", Price: 10})
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}
	if id == "" {
		t.Fatal("expected a store-assigned id")
	}

	got, err := docstore.FetchDocument(ctx, store, productCodec, "products", id)
	if err != nil {
		t.Fatalf("FetchDocument after save: %v", err)
	}
	if got.Name != "Lamp" || got.ID != id {
		t.Errorf("unexpected fetched product: %+v", got)
	}
	if calls := remote.Calls("Get"); calls != 0 {
		t.Errorf("write-through must serve the read from cache, got %d remote gets", calls)
	}
}

func TestSaveDocument_InvalidatesQueryResults(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	remote.Seed("products", "p1", testsupport.ProductDoc("Lamp", 10, "home"))
	store := newStore(remote)
	ctx := context.Background()

	if _, err := docstore.FetchDocuments(ctx, store, productCodec, "products", "category", "home"); err != nil {
		t.Fatal(err)
	}

	if _, err := docstore.SaveDocument(ctx, store, productCodec, "products", "p9", product{Name: "Rug", Price: 30, Category: "home"}); err != nil {
		t.Fatal(err)
	}

	home, err := docstore.FetchDocuments(ctx, store, productCodec, "products", "category", "home")
	if err != nil {
		t.Fatal(err)
	}
	if len(home) != 2 {
		t.Errorf("expected the save to invalidate the cached query, got %d products", len(home))
	}
	if calls := remote.Calls("Query"); calls != 2 {
		t.Errorf("expected a fresh query after save, got %d", calls)
	}
}

func TestUpdateDocument_InvalidatesOnSuccess(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	remote.Seed("products", "p1", testsupport.ProductDoc("Lamp", 10, "home"))
	store := newStore(remote)
	ctx := context.Background()

	if _, err := docstore.FetchDocument(ctx, store, productCodec, "products", "p1"); err != nil {
		t.Fatal(err)
	}
	getsBefore := remote.Calls("Get")

	if err := store.UpdateDocument(ctx, "products", "p1", map[string]any{"price": 12.5}); err != nil {
		t.Fatalf("UpdateDocument: %v", err)
	}

	got, err := docstore.FetchDocument(ctx, store, productCodec, "products", "p1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Price != 12.5 {
		t.Errorf("expected the merged price after refetch, got %v", got.Price)
	}
	// The existence check plus the forced refetch both hit the remote.
	if calls := remote.Calls("Get"); calls != getsBefore+2 {
		t.Errorf("expected invalidation to force a refetch, gets went %d -> %d", getsBefore, calls)
	}
}

func TestUpdateDocument_MissingDocumentFails(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	store := newStore(remote)

	err := store.UpdateDocument(context.Background(), "products", "ghost", map[string]any{"price": 1.0})
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if calls := remote.Calls("UpdateFields"); calls != 0 {
		t.Errorf("update must not run without an existence check pass, got %d calls", calls)
	}
}

func TestDeleteDocument_InvalidatesAfterRemoteSuccess(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	remote.Seed("products", "p1", testsupport.ProductDoc("Lamp", 10, "home"))
	store := newStore(remote)
	ctx := context.Background()

	if _, err := docstore.FetchDocument(ctx, store, productCodec, "products", "p1"); err != nil {
		t.Fatal(err)
	}

	if err := store.DeleteDocument(ctx, "products", "p1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}

	_, err := docstore.FetchDocument(ctx, store, productCodec, "products", "p1")
	if !errors.Is(err, docstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteDocument_RemoteFailureKeepsCache(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	remote.Seed("products", "p1", testsupport.ProductDoc("Lamp", 10, "home"))
	store := newStore(remote)
	ctx := context.Background()

	if _, err := docstore.FetchDocument(ctx, store, productCodec, "products", "p1"); err != nil {
		t.Fatal(err)
	}
	getsBefore := remote.Calls("Get")

	remote.FailWith("Delete", errors.New("unavailable"))
	if err := store.DeleteDocument(ctx, "products", "p1"); err == nil {
		t.Fatal("expected delete failure to propagate")
	}

	// Cache invalidation must not have happened before remote success.
	if _, err := docstore.FetchDocument(ctx, store, productCodec, "products", "p1"); err != nil {
		t.Fatal(err)
	}
	if calls := remote.Calls("Get"); calls != getsBefore {
		t.Errorf("failed delete must leave the cached entry, gets went %d -> %d", getsBefore, calls)
	}
}

func TestDeleteCollection(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	store := newStore(remote)
	ctx := context.Background()

	// Empty collection is a no-op, not an error, and issues no batch.
	if err := store.DeleteCollection(ctx, "wishlists"); err != nil {
		t.Fatalf("DeleteCollection on empty collection: %v", err)
	}
	if calls := remote.Calls("ApplyBatch"); calls != 0 {
		t.Errorf("empty collection must not commit a batch, got %d", calls)
	}

	remote.Seed("wishlists", "w1", map[string]any{"ownerId": "u1"})
	remote.Seed("wishlists", "w2", map[string]any{"ownerId": "u2"})
	if err := store.DeleteCollection(ctx, "wishlists"); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}

	remaining, err := remote.All(ctx, "wishlists")
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("expected empty collection, %d documents remain", len(remaining))
	}
	if calls := remote.Calls("ApplyBatch"); calls != 1 {
		t.Errorf("expected one atomic batch, got %d", calls)
	}
}

func TestPerformBatch_CommitsAllMutations(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	remote.Seed("orders", "o1", map[string]any{"status": "pending"})
	store := newStore(remote)
	ctx := context.Background()

	err := store.PerformBatch(ctx, func(b *docstore.Batch) error {
		b.Update("orders", "o1", map[string]any{"status": "paid"})
		b.Set("receipts", "r1", map[string]any{"orderId": "o1"})
		b.Delete("carts", "u1")
		return nil
	})
	if err != nil {
		t.Fatalf("PerformBatch: %v", err)
	}

	doc, err := remote.Get(ctx, "orders", "o1")
	if err != nil {
		t.Fatal(err)
	}
	if doc.Data["status"] != "paid" {
		t.Errorf("expected batched update to commit, got %v", doc.Data["status"])
	}
	if _, err := remote.Get(ctx, "receipts", "r1"); err != nil {
		t.Errorf("expected batched set to commit: %v", err)
	}
}

func TestPerformBatch_BodyErrorAbandonsBatch(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	store := newStore(remote)

	boom := errors.New("validation failed")
	err := store.PerformBatch(context.Background(), func(b *docstore.Batch) error {
		b.Set("receipts", "r1", map[string]any{"orderId": "o1"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected body error back, got %v", err)
	}
	if calls := remote.Calls("ApplyBatch"); calls != 0 {
		t.Errorf("abandoned batch must not touch the remote, got %d commits", calls)
	}
}

func TestPerformBatch_PartialFailureSurfaced(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	remote.PartialBatchAfter = 1
	store := newStore(remote)

	err := store.PerformBatch(context.Background(), func(b *docstore.Batch) error {
		b.Set("receipts", "r1", map[string]any{"orderId": "o1"})
		b.Set("receipts", "r2", map[string]any{"orderId": "o2"})
		return nil
	})

	var partial *docstore.PartialBatchError
	if !errors.As(err, &partial) {
		t.Fatalf("expected PartialBatchError, got %v", err)
	}
	if partial.Applied != 1 || len(partial.Failures) != 1 {
		t.Errorf("unexpected partial report: applied=%d failures=%d", partial.Applied, len(partial.Failures))
	}
}
