package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestKVStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore()

	type order struct {
		ID        string    `json:"id"`
		OrderDate time.Time `json:"order_date"`
	}
	in := []order{{ID: "o1", OrderDate: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}}

	if err := store.Put(ctx, "orders", in); err != nil {
		t.Fatalf("Put: %v", err)
	}
	doc, err := store.Get(ctx, "orders")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	var out []order
	if err := json.Unmarshal(doc, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(out) != 1 || !out[0].OrderDate.Equal(in[0].OrderDate) {
		t.Errorf("round trip = %+v", out)
	}
}

func TestKVStoreMissingAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewKVStore()

	doc, err := store.Get(ctx, "nothing")
	if err != nil || doc != nil {
		t.Errorf("Get missing = %v, %v; want nil, nil", doc, err)
	}

	if err := store.Put(ctx, "k", map[string]string{"a": "b"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if doc, _ := store.Get(ctx, "k"); doc != nil {
		t.Error("document survived delete")
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting absent key: %v", err)
	}
}
