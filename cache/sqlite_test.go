package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	if err := store.Set(ctx, "rag:query:aaaa", []byte(`{"answer":"ja"}`), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := store.Get(ctx, "rag:query:aaaa")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"answer":"ja"}` {
		t.Errorf("Get = %q", got)
	}

	// Overwrite replaces the value.
	if err := store.Set(ctx, "rag:query:aaaa", []byte("v2"), time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err = store.Get(ctx, "rag:query:aaaa")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Errorf("Get after overwrite = %q, want %q", got, "v2")
	}
}

func TestSQLiteStoreMissAndExpiry(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	if _, err := store.Get(ctx, "rag:query:absent"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(absent) = %v, want ErrNotFound", err)
	}

	// Expiry granularity is one second; use a negative TTL boundary by
	// writing an entry that is already at its deadline.
	if err := store.Set(ctx, "rag:query:short", []byte("v"), time.Second); err != nil {
		t.Fatal(err)
	}
	time.Sleep(1100 * time.Millisecond)

	if _, err := store.Get(ctx, "rag:query:short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreZeroTTLNoOp(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	if err := store.Set(ctx, "rag:query:never", []byte("v"), 0); err != nil {
		t.Fatalf("Set with zero TTL: %v", err)
	}
	if _, err := store.Get(ctx, "rag:query:never"); !errors.Is(err, ErrNotFound) {
		t.Errorf("zero-TTL Set should not store; Get = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreSetRejectsInvalidKey(t *testing.T) {
	store := newTestSQLiteStore(t)

	err := store.Set(context.Background(), "", []byte("v"), time.Minute)
	if !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Set(empty key) = %v, want ErrInvalidKey", err)
	}
}

func TestSQLiteStoreDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	if err := store.Set(ctx, "rag:query:del", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := store.Delete(ctx, "rag:query:del"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete(ctx, "rag:query:del"); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestSQLiteStoreKeysPrefix(t *testing.T) {
	ctx := context.Background()
	store := newTestSQLiteStore(t)

	for _, k := range []string{"rag:query:b", "rag:query:a", "other:key"} {
		if err := store.Set(ctx, k, []byte("v"), time.Minute); err != nil {
			t.Fatal(err)
		}
	}

	keys, err := store.Keys(ctx, "rag:query:")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"rag:query:a", "rag:query:b"}
	if len(keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
