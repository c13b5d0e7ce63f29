package cart

import (
	"context"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"

	"github.com/iraklijanashvili/Ecommerce-sub000/docstore"
	"github.com/iraklijanashvili/Ecommerce-sub000/internal/identity"
)

// Config wires a cart repository.
type Config struct {
	// Store is the document façade the cart reads and writes through.
	Store *docstore.Store

	// Principals resolves whose cart this is.
	Principals identity.Provider

	// Logger records asynchronous mutation failures and subscription
	// teardown. Nil disables.
	Logger *zap.Logger
}

// Validate checks the configuration values.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Store, validation.Required),
		validation.Field(&c.Principals, validation.Required),
	)
}

// Repository keeps the current principal's cart live. Start opens the one
// collection subscription; every remote change recomputes the snapshot and
// fans it out to observers. Safe for concurrent use.
type Repository struct {
	store      *docstore.Store
	principals identity.Provider
	codec      docstore.JSONCodec[Item]
	log        *zap.Logger

	// lifecycle serializes Start and Stop so two racing Starts cannot both
	// open a subscription and leak the loser's registration.
	lifecycle sync.Mutex

	mu        sync.Mutex
	watch     *docstore.Watch[Item]
	current   Snapshot
	observers map[int]chan Snapshot
	nextObs   int
}

// New creates a cart repository. Call Start to begin observing.
func New(cfg Config) (*Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{
		store:      cfg.Store,
		principals: cfg.Principals,
		log:        log,
		observers:  make(map[int]chan Snapshot),
	}, nil
}

// Start binds the repository to the current principal's item collection and
// opens its live subscription. Calling Start again, after a sign-in change
// for instance, tears down the previous subscription first. With nobody
// signed in the cart is simply empty; that is a state, not an error.
func (r *Repository) Start(ctx context.Context) error {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.mu.Lock()
	if r.watch != nil {
		r.watch.Stop()
		r.watch = nil
	}
	r.mu.Unlock()

	principal, ok := r.principals.CurrentPrincipal()
	if !ok {
		r.publish(Snapshot{})
		return nil
	}

	w, err := docstore.ObserveCollection[Item](ctx, r.store, r.codec, ItemsCollection(principal))
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.watch = w
	r.mu.Unlock()

	go r.consume(w)
	return nil
}

// Stop cancels the live subscription. Observer registrations stay valid and
// are released through their own cancel functions.
func (r *Repository) Stop() {
	r.lifecycle.Lock()
	defer r.lifecycle.Unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.watch != nil {
		r.watch.Stop()
		r.watch = nil
	}
}

func (r *Repository) consume(w *docstore.Watch[Item]) {
	for items := range w.Snapshots() {
		r.publish(Aggregate(items))
	}
	if err := w.Err(); err != nil {
		r.log.Error("cart subscription terminated", zap.Error(err))
	}
}

// Current returns the latest derived snapshot.
func (r *Repository) Current() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Observe registers a snapshot consumer. The channel immediately carries
// the current snapshot and then every change, latest-wins when the consumer
// lags. The returned cancel function releases the registration and closes
// the channel.
func (r *Repository) Observe() (<-chan Snapshot, func()) {
	r.mu.Lock()
	ch := make(chan Snapshot, 1)
	ch <- r.current
	id := r.nextObs
	r.nextObs++
	r.observers[id] = ch
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if ch, ok := r.observers[id]; ok {
			delete(r.observers, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (r *Repository) publish(s Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = s
	for _, ch := range r.observers {
		select {
		case ch <- s:
		default:
			// Replace the undelivered snapshot with the newer one.
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}

// AddItem stores item in the principal's cart. An empty item.ID asks the
// store to assign one. The write is asynchronous; the new item arrives
// through the subscription once it lands.
func (r *Repository) AddItem(ctx context.Context, item Item) *Pending {
	principal, ok := r.principals.CurrentPrincipal()
	if !ok {
		return r.reject("add item")
	}
	item.OwnerID = principal
	return r.dispatch(ctx, "add item", item.ProductID, func(ctx context.Context) error {
		_, err := docstore.SaveDocument(ctx, r.store, r.codec, ItemsCollection(principal), item.ID, item)
		return err
	})
}

// RemoveItem deletes the cart line itemID asynchronously.
func (r *Repository) RemoveItem(ctx context.Context, itemID string) *Pending {
	principal, ok := r.principals.CurrentPrincipal()
	if !ok {
		return r.reject("remove item")
	}
	return r.dispatch(ctx, "remove item", itemID, func(ctx context.Context) error {
		return r.store.DeleteDocument(ctx, ItemsCollection(principal), itemID)
	})
}

// UpdateQuantity sets the quantity of the cart line itemID. A quantity of
// zero or less removes the line instead; a cart never shows an empty row.
func (r *Repository) UpdateQuantity(ctx context.Context, itemID string, quantity int) *Pending {
	if quantity <= 0 {
		return r.RemoveItem(ctx, itemID)
	}
	principal, ok := r.principals.CurrentPrincipal()
	if !ok {
		return r.reject("update quantity")
	}
	return r.dispatch(ctx, "update quantity", itemID, func(ctx context.Context) error {
		return r.store.UpdateDocument(ctx, ItemsCollection(principal), itemID, map[string]any{
			"quantity": quantity,
		})
	})
}

// dispatch runs one mutation off the caller's goroutine. The caller's ctx
// carries values only; cancelling it must not abandon a write already
// handed off.
func (r *Repository) dispatch(ctx context.Context, op, subject string, fn func(context.Context) error) *Pending {
	p := newPending()
	detached := context.WithoutCancel(ctx)
	go func() {
		err := fn(detached)
		if err != nil {
			r.log.Error("cart mutation failed",
				zap.String("op", op),
				zap.String("subject", subject),
				zap.Error(err))
		}
		p.complete(err)
	}()
	return p
}

func (r *Repository) reject(op string) *Pending {
	r.log.Warn("cart mutation without principal", zap.String("op", op))
	p := newPending()
	p.complete(docstore.ErrNotAuthenticated)
	return p
}
