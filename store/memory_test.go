package store

import (
	"context"
	"testing"
	"time"

	"github.com/rushteam/newsrec/core"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	if _, err := ms.Get(ctx, "missing"); !core.IsStoreNotFound(err) {
		t.Fatalf("get missing key: err = %v, want not-found", err)
	}

	if err := ms.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := ms.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("get = %q, want %q", got, "v")
	}

	if err := ms.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := ms.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("get after delete: err = %v, want not-found", err)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	if err := ms.Set(ctx, "ephemeral", []byte("v"), 1); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := ms.Get(ctx, "ephemeral"); err != nil {
		t.Fatalf("get before expiry: %v", err)
	}

	time.Sleep(1100 * time.Millisecond)
	if _, err := ms.Get(ctx, "ephemeral"); !core.IsStoreNotFound(err) {
		t.Errorf("get after expiry: err = %v, want not-found", err)
	}
}

func TestMemoryStoreBatch(t *testing.T) {
	ms := NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()

	kvs := map[string][]byte{
		"a": []byte("1"),
		"b": []byte("2"),
	}
	if err := ms.BatchSet(ctx, kvs); err != nil {
		t.Fatalf("batch set: %v", err)
	}

	got, err := ms.BatchGet(ctx, []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("batch get: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("batch get returned %d entries, want 2", len(got))
	}
	if string(got["a"]) != "1" || string(got["b"]) != "2" {
		t.Errorf("batch get = %v", got)
	}
}
