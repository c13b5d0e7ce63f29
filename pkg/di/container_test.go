package di_test

import (
	"context"
	"testing"
	"time"

	"github.com/iraklijanashvili/Ecommerce-sub000/cart"
	"github.com/iraklijanashvili/Ecommerce-sub000/catalog"
	"github.com/iraklijanashvili/Ecommerce-sub000/docstore"
	"github.com/iraklijanashvili/Ecommerce-sub000/internal/identity"
	"github.com/iraklijanashvili/Ecommerce-sub000/pkg/di"
	"github.com/iraklijanashvili/Ecommerce-sub000/pkg/testsupport"
	"github.com/iraklijanashvili/Ecommerce-sub000/resourcecache"
	"github.com/iraklijanashvili/Ecommerce-sub000/retry"
)

func newContainer(t *testing.T, remote *testsupport.FakeRemote, session *identity.Static) *di.Container {
	t.Helper()
	cfg := di.DefaultConfig()
	cfg.Documents.Retry = retry.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond}
	cfg.Catalog.EarlyRefresh = nil
	c, err := di.NewContainer(remote, session, cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestContainerProvidesSingletons(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	c := newContainer(t, remote, identity.NewStatic("user-1"))

	if c.DocumentStore() == nil || c.DocumentCache() == nil {
		t.Fatal("document layer not wired")
	}
	if c.Catalog() == nil || c.CatalogService() == nil || c.KeySerializer() == nil {
		t.Fatal("catalog layer not wired")
	}
	if c.Resources() == nil || c.Logger() == nil {
		t.Fatal("resources or logger not wired")
	}
	if c.DocumentStore() != c.DocumentStore() {
		t.Fatal("DocumentStore is not a singleton")
	}
}

func TestContainerDocumentAndCatalogFlow(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	remote.Seed(catalog.ProductsCollection, "p1", testsupport.ProductDoc("Lamp", 30, "home"))
	c := newContainer(t, remote, identity.NewStatic("user-1"))
	ctx := context.Background()

	// Catalog reads go through the read-through cache: one remote call no
	// matter how many lookups.
	for i := 0; i < 3; i++ {
		p, err := c.Catalog().Product(ctx, "p1")
		if err != nil {
			t.Fatalf("Product: %v", err)
		}
		if p.Name != "Lamp" {
			t.Fatalf("Product = %+v", p)
		}
	}
	if calls := remote.Calls("Get"); calls != 1 {
		t.Fatalf("Get calls = %d, want 1", calls)
	}

	// Façade reads share the same remote but their own cache.
	type productRow struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	row, err := docstore.FetchDocument(ctx, c.DocumentStore(), docstore.JSONCodec[productRow]{}, catalog.ProductsCollection, "p1")
	if err != nil {
		t.Fatalf("FetchDocument: %v", err)
	}
	if row.Price != 30 {
		t.Fatalf("FetchDocument = %+v", row)
	}
	if calls := remote.Calls("Get"); calls != 2 {
		t.Fatalf("Get calls = %d, want 2", calls)
	}
}

func TestContainerCartFlow(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	session := identity.NewStatic("user-1")
	c := newContainer(t, remote, session)

	repo, err := c.NewCartRepository()
	if err != nil {
		t.Fatalf("NewCartRepository: %v", err)
	}
	t.Cleanup(repo.Stop)
	if err := repo.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ch, cancel := repo.Observe()
	defer cancel()

	p := repo.AddItem(context.Background(), cart.Item{ProductID: "p1", UnitPrice: 10, Quantity: 2})
	ctx, cancelWait := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancelWait()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if len(s.Items) == 1 && s.TotalPrice == 20 && s.TotalQuantity == 2 {
				return
			}
		case <-deadline:
			t.Fatal("cart snapshot never arrived")
		}
	}
}

func TestContainerResourceCache(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	cfg := di.DefaultConfig()
	cfg.Catalog.EarlyRefresh = nil
	cfg.Resources = resourcecache.DefaultConfig(resourcecache.FetcherFunc(
		func(ctx context.Context, address string) ([]byte, error) {
			return []byte("img:" + address), nil
		}))
	c, err := di.NewContainer(remote, identity.NewStatic(""), cfg)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	t.Cleanup(c.Close)

	data, ok := c.Resources().Load(context.Background(), "gs://photos/p1.png")
	if !ok || string(data) != "img:gs://photos/p1.png" {
		t.Fatalf("Load = %q, %v", data, ok)
	}
}
