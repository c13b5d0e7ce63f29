package docstore_test

import (
	"context"
	"testing"

	"github.com/iraklijanashvili/Ecommerce-sub000/docstore"
	"github.com/iraklijanashvili/Ecommerce-sub000/pkg/testsupport"
)

func TestJSONCodec_EncodeDropsEmptyID(t *testing.T) {
	data, err := productCodec.Encode(product{Name: "Lamp", Price: 10})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if id, ok := data["id"]; ok {
		t.Fatalf("unsaved value encoded an id field: %v", id)
	}

	data, err = productCodec.Encode(product{ID: "p1", Name: "Lamp"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if data["id"] != "p1" {
		t.Fatalf("saved value lost its id: %v", data["id"])
	}
}

func TestJSONCodec_DecodeAppliesAssignedIDOverEmpty(t *testing.T) {
	// The payload of a document saved before it had an identifier may still
	// carry an empty id field; the store-assigned one must win on decode.
	got, err := productCodec.Decode(docstore.Document{
		ID:   "p7",
		Data: map[string]any{"id": "", "name": "Lamp", "price": float64(10)},
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.ID != "p7" {
		t.Fatalf("ID = %q, want p7", got.ID)
	}

	got, err = productCodec.Decode(docstore.Document{
		ID:   "p7",
		Data: map[string]any{"id": "explicit", "name": "Lamp"},
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.ID != "explicit" {
		t.Fatalf("ID = %q, want the payload's own id", got.ID)
	}
}

func TestSaveDocument_AssignedIDSurvivesRemoteRoundTrip(t *testing.T) {
	remote := testsupport.NewFakeRemote()
	store := newStore(remote)
	ctx := context.Background()

	id, err := docstore.SaveDocument(ctx, store, productCodec, "products", "", product{Name: "Lamp", Price: 10})
	if err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	// A second store with a cold cache decodes the value from the remote
	// payload, the same path subscriptions take.
	fresh := newStore(remote)
	got, err := docstore.FetchDocument(ctx, fresh, productCodec, "products", id)
	if err != nil {
		t.Fatalf("FetchDocument: %v", err)
	}
	if got.ID != id {
		t.Fatalf("fetched ID = %q, want store-assigned %q", got.ID, id)
	}
	if calls := remote.Calls("Get"); calls != 1 {
		t.Fatalf("Get calls = %d, want 1", calls)
	}
}
