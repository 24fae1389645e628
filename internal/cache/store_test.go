// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "default is memory", cfg: Config{}},
		{name: "memory", cfg: Config{Backend: BackendMemory, Capacity: 10, DefaultTTL: time.Minute}},
		{name: "badger in-memory", cfg: Config{Backend: BackendBadger}},
		{name: "redis without address", cfg: Config{Backend: BackendRedis}, wantErr: true},
		{name: "unknown backend", cfg: Config{Backend: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store, err := Open(context.Background(), tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if store != nil {
				_ = store.Close()
			}
		})
	}
}

func TestEscapeGlob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"recommendations:42:", "recommendations:42:"},
		{"weird*key?", `weird\*key\?`},
		{"[set]", `\[set\]`},
		{`back\slash`, `back\\slash`},
	}
	for _, tt := range tests {
		if got := escapeGlob(tt.in); got != tt.want {
			t.Errorf("escapeGlob(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestRedisStore_Integration runs against a live Redis when REDIS_ADDR is set.
func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping redis integration test")
	}

	ctx := context.Background()
	store, err := OpenRedisStore(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0, "shelfwise-test:")
	if err != nil {
		t.Fatalf("OpenRedisStore error = %v", err)
	}
	defer func() { _ = store.Close() }()

	_, _ = store.DeleteMatching(ctx, "")

	_ = store.Set(ctx, "recommendations:1:a", []byte("x"), time.Minute)
	_ = store.Set(ctx, "recommendations:1:b", []byte("y"), time.Minute)
	_ = store.Set(ctx, "recommendations:2:c", []byte("z"), time.Minute)

	got, found, err := store.Get(ctx, "recommendations:1:a")
	if err != nil || !found || string(got) != "x" {
		t.Fatalf("Get = %q, %v, %v", got, found, err)
	}

	removed, err := store.DeleteMatching(ctx, "recommendations:1:")
	if err != nil {
		t.Fatalf("DeleteMatching error = %v", err)
	}
	if removed != 2 {
		t.Errorf("DeleteMatching removed %d, want 2", removed)
	}
	if _, found, _ := store.Get(ctx, "recommendations:2:c"); !found {
		t.Error("expected user 2 entry to survive")
	}
	_, _ = store.DeleteMatching(ctx, "")
}
