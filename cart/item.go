// Package cart keeps a signed-in user's shopping cart live. A Repository
// holds one subscription to the user's item collection, recomputes the
// price and quantity totals from every full snapshot, and fans the derived
// state out to any number of observers. Mutations are asynchronous: they
// return a Pending handle the caller may await or discard.
package cart

import "fmt"

// Item is one line in a cart: a product reference plus the quantity and
// the unit price captured when it was added.
type Item struct {
	ID        string  `json:"id"`
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	OwnerID   string  `json:"ownerId"`
}

// Snapshot is the cart's full derived state at one point in time. Totals
// are recomputed from Items on every change, never incrementally adjusted,
// so they cannot drift from the items they summarize.
type Snapshot struct {
	Items         []Item
	TotalPrice    float64
	TotalQuantity int
}

// Aggregate derives a Snapshot from a full item set.
func Aggregate(items []Item) Snapshot {
	s := Snapshot{Items: items}
	for _, it := range items {
		s.TotalPrice += it.UnitPrice * float64(it.Quantity)
		s.TotalQuantity += it.Quantity
	}
	return s
}

// ItemsCollection returns the path of owner's cart item collection.
func ItemsCollection(owner string) string {
	return fmt.Sprintf("carts/%s/items", owner)
}
