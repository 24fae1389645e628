// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

func setupBadgerStore(t *testing.T) *BadgerStore {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("failed to open in-memory badger: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return NewBadgerStoreFromDB(db)
}

func TestBadgerStore_SetGetDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := setupBadgerStore(t)

	if err := store.Set(ctx, "recommendations:1:abc", []byte(`{"items":[]}`), time.Hour); err != nil {
		t.Fatalf("Set error = %v", err)
	}

	got, found, err := store.Get(ctx, "recommendations:1:abc")
	if err != nil || !found {
		t.Fatalf("Get = found %v, err %v", found, err)
	}
	if string(got) != `{"items":[]}` {
		t.Errorf("Get = %q", got)
	}

	if err := store.Delete(ctx, "recommendations:1:abc"); err != nil {
		t.Fatalf("Delete error = %v", err)
	}
	if _, found, _ := store.Get(ctx, "recommendations:1:abc"); found {
		t.Error("expected key to be deleted")
	}
	if err := store.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(never-set) error = %v, want nil", err)
	}
}

func TestBadgerStore_MissingKey(t *testing.T) {
	t.Parallel()
	store := setupBadgerStore(t)

	got, found, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get(missing) error = %v, want nil", err)
	}
	if found || got != nil {
		t.Errorf("Get(missing) = %q, %v; want nil, false", got, found)
	}
}

func TestBadgerStore_DeleteMatching(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := setupBadgerStore(t)

	for _, k := range []string{
		"behavior:7:a",
		"behavior:7:b",
		"behavior:70:c",
		"language_profile:7:d",
	} {
		if err := store.Set(ctx, k, []byte("v"), time.Hour); err != nil {
			t.Fatalf("Set(%s) error = %v", k, err)
		}
	}

	removed, err := store.DeleteMatching(ctx, "behavior:7:")
	if err != nil {
		t.Fatalf("DeleteMatching error = %v", err)
	}
	if removed != 2 {
		t.Errorf("DeleteMatching removed %d, want 2", removed)
	}
	for _, k := range []string{"behavior:70:c", "language_profile:7:d"} {
		if _, found, _ := store.Get(ctx, k); !found {
			t.Errorf("expected %q to survive", k)
		}
	}

	removed, err = store.DeleteMatching(ctx, "nothing:")
	if err != nil || removed != 0 {
		t.Errorf("DeleteMatching(nothing) = %d, %v; want 0, nil", removed, err)
	}
}

func TestBadgerStore_OpenInMemory(t *testing.T) {
	t.Parallel()

	store, err := OpenBadgerStore("")
	if err != nil {
		t.Fatalf("OpenBadgerStore error = %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if err := store.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set error = %v", err)
	}
	if _, found, _ := store.Get(ctx, "k"); !found {
		t.Error("expected key without TTL to be stored")
	}
}
