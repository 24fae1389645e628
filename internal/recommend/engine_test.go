// Shelfwise - Book Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfwise

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestEngine(t *testing.T, cfg *Config, deps Dependencies) *Engine {
	t.Helper()
	if deps.Now == nil {
		deps.Now = func() time.Time { return fixedNow }
	}
	e, err := NewEngine(cfg, deps, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func twoProviderConfig() *Config {
	cfg := DefaultConfig()
	cfg.Weights = Weights{History: 0.5, Category: 0.5}
	return cfg
}

func itemIDs(items []Recommendation) []int64 {
	ids := make([]int64, len(items))
	for i := range items {
		ids[i] = items[i].Book.ID
	}
	return ids
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(nil, Dependencies{Catalog: &memCatalog{}}, zerolog.Nop()); err == nil {
		t.Error("expected error without shelf store")
	}
	if _, err := NewEngine(nil, Dependencies{Shelves: newMemShelves()}, zerolog.Nop()); err == nil {
		t.Error("expected error without catalog")
	}

	bad := DefaultConfig()
	bad.Limits.Oversample = 0
	if _, err := NewEngine(bad, Dependencies{Shelves: newMemShelves(), Catalog: &memCatalog{}}, zerolog.Nop()); err == nil {
		t.Error("expected invalid config error")
	}
}

func TestSlotSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		limit  int
		weight float64
		want   int
	}{
		{20, 0.25, 5},
		{20, 0.15, 3},
		{20, 0.20, 4},
		{10, 0.33, 4},
		{3, 0.2, 1},
		{10, 0, 1},
	}
	for _, tt := range tests {
		if got := SlotSize(tt.limit, tt.weight); got != tt.want {
			t.Errorf("SlotSize(%d, %v) = %d, want %d", tt.limit, tt.weight, got, tt.want)
		}
	}
}

func TestEngine_ColdStartFallbackIsNonEmpty(t *testing.T) {
	t.Parallel()

	cat := &memCatalog{books: rangeBooks(1, 5, "Fantasy")}
	e := newTestEngine(t, nil, Dependencies{Shelves: newMemShelves(), Catalog: cat})

	resp, err := e.Recommend(context.Background(), Request{UserID: 1, Limit: 3})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(resp.Items) != 3 {
		t.Errorf("len = %d, want 3", len(resp.Items))
	}
	if !resp.Metadata.Fallback {
		t.Error("expected fallback metadata")
	}
	for _, it := range resp.Items {
		if it.Source != SourceFallback {
			t.Errorf("source = %s, want fallback", it.Source)
		}
	}

	// Bounded by catalog size.
	resp, err = e.Recommend(context.Background(), Request{UserID: 1, Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 5 {
		t.Errorf("len = %d, want whole catalog of 5", len(resp.Items))
	}
}

func TestEngine_SlotAllocationAndOrder(t *testing.T) {
	t.Parallel()

	cat := &memCatalog{books: append(rangeBooks(1, 5, "Fantasy"), rangeBooks(11, 15, "Mystery")...)}
	e := newTestEngine(t, twoProviderConfig(), Dependencies{Shelves: newMemShelves(), Catalog: cat})
	e.RegisterProvider(&stubProvider{name: ProviderHistory, books: rangeBooks(1, 5, "Fantasy")})
	e.RegisterProvider(&stubProvider{name: ProviderCategory, books: rangeBooks(11, 15, "Mystery")})

	resp, err := e.Recommend(context.Background(), Request{UserID: 1, Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := itemIDs(resp.Items), []int64{1, 2, 11, 12}; !equalIDs(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
	if resp.Items[0].Source != SourceHistory || resp.Items[2].Source != SourceCategory {
		t.Errorf("sources = %s, %s", resp.Items[0].Source, resp.Items[2].Source)
	}
	if resp.Metadata.Fallback {
		t.Error("unexpected fallback")
	}
}

func TestEngine_DeduplicatesAcrossProviders(t *testing.T) {
	t.Parallel()

	books := rangeBooks(1, 20, "Fantasy")
	cat := &memCatalog{books: books}
	e := newTestEngine(t, twoProviderConfig(), Dependencies{Shelves: newMemShelves(), Catalog: cat})
	e.RegisterProvider(&stubProvider{name: ProviderHistory, books: []Book{books[0], books[1], books[2]}})
	e.RegisterProvider(&stubProvider{name: ProviderCategory, books: []Book{books[0], books[1], books[12], books[13]}})

	resp, err := e.Recommend(context.Background(), Request{UserID: 1, Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := itemIDs(resp.Items), []int64{1, 2, 13, 14}; !equalIDs(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
}

func TestEngine_ExclusionCompleteness(t *testing.T) {
	t.Parallel()

	books := rangeBooks(1, 10, "Fantasy")
	shelves := newMemShelves()
	shelves.add(7, 1, ShelfFavorite, fixedNow)
	shelves.add(7, 2, ShelfAbandoned, fixedNow)
	shelves.add(7, 3, ShelfWantToRead, fixedNow)

	e := newTestEngine(t, nil, Dependencies{Shelves: shelves, Catalog: &memCatalog{books: books}})
	// Misbehaving provider that ignores exclusions.
	e.RegisterProvider(&stubProvider{name: ProviderHistory, books: books})
	e.RegisterProvider(&stubProvider{name: ProviderCategory, books: books})

	ctx := context.Background()
	check := func(op string, got []Book) {
		t.Helper()
		if len(got) == 0 {
			t.Errorf("%s returned no books", op)
		}
		for i := range got {
			if got[i].ID >= 1 && got[i].ID <= 3 {
				t.Errorf("%s returned shelved book %d", op, got[i].ID)
			}
		}
	}

	resp, err := e.Recommend(ctx, Request{UserID: 7, Limit: 6})
	if err != nil {
		t.Fatal(err)
	}
	check("Recommend", resp.Books())

	mixed, err := e.RecommendMixed(ctx, 7, 6)
	if err != nil {
		t.Fatal(err)
	}
	check("RecommendMixed", mixed.Local)

	shelf, err := e.PersonalizedShelf(ctx, 7, 6)
	if err != nil {
		t.Fatal(err)
	}
	check("PersonalizedShelf", shelf.Highlights)
	for genre, group := range shelf.ByGenre {
		check("PersonalizedShelf/"+genre, group)
	}
}

func TestEngine_ProviderFailureContainment(t *testing.T) {
	t.Parallel()

	books := rangeBooks(1, 10, "Fantasy")
	obs := &countingObserver{}
	e := newTestEngine(t, nil, Dependencies{Shelves: newMemShelves(), Catalog: &memCatalog{books: books}, Observer: obs})
	e.RegisterProvider(&stubProvider{name: ProviderHistory, panics: true})
	e.RegisterProvider(&stubProvider{name: ProviderCategory, err: errors.New("boom")})
	e.RegisterProvider(&stubProvider{name: ProviderSimilarity, books: books})

	resp, err := e.Recommend(context.Background(), Request{UserID: 1, Limit: 10})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.Metadata.Fallback {
		t.Error("provider failures must not trigger the fallback")
	}
	// similarity weight 0.20 of 10 gives two slots.
	if got, want := itemIDs(resp.Items), []int64{1, 2}; !equalIDs(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
	if got := obs.providerErrs.Load(); got != 2 {
		t.Errorf("provider errors observed = %d, want 2", got)
	}
}

func TestEngine_ProviderTimeout(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Limits.ProviderTimeout = 50 * time.Millisecond
	books := rangeBooks(1, 10, "Fantasy")
	e := newTestEngine(t, cfg, Dependencies{Shelves: newMemShelves(), Catalog: &memCatalog{books: books}})
	e.RegisterProvider(&stubProvider{name: ProviderHistory, books: books, delay: 5 * time.Second})
	e.RegisterProvider(&stubProvider{name: ProviderCategory, books: books})

	start := time.Now()
	resp, err := e.Recommend(context.Background(), Request{UserID: 1, Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("request took %v, provider deadline not enforced", elapsed)
	}
	if len(resp.Items) == 0 {
		t.Fatal("expected results from the fast provider")
	}
	for _, it := range resp.Items {
		if it.Source != SourceCategory {
			t.Errorf("source = %s, want category", it.Source)
		}
	}
}

func TestEngine_ExternalCandidatesFirst(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Weights = Weights{History: 1}
	external := &stubExternal{books: []Book{
		{Title: "Remote One", ExternalID: "x1", Temporary: true},
		{Title: "Remote Two", ExternalID: "x2", Temporary: true},
	}}
	books := rangeBooks(1, 5, "Fantasy")
	e := newTestEngine(t, cfg, Dependencies{Shelves: newMemShelves(), Catalog: &memCatalog{books: books}, External: external})
	e.RegisterProvider(&stubProvider{name: ProviderHistory, books: books})

	resp, err := e.Recommend(context.Background(), Request{UserID: 1, Limit: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("len = %d, want 3", len(resp.Items))
	}
	if !resp.Items[0].Book.Temporary || !resp.Items[1].Book.Temporary || resp.Items[2].Book.Temporary {
		t.Errorf("expected two external then one local item, got %+v", resp.Items)
	}
	if resp.Metadata.ExternalCount != 2 {
		t.Errorf("ExternalCount = %d, want 2", resp.Metadata.ExternalCount)
	}

	mixed, err := e.RecommendMixed(context.Background(), 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !mixed.HasExternal || len(mixed.External) != 2 || len(mixed.Local) != 1 || mixed.Total != 3 {
		t.Errorf("mixed = %+v", mixed)
	}
}

func TestEngine_ExternalFailureIsSoft(t *testing.T) {
	t.Parallel()

	books := rangeBooks(1, 5, "Fantasy")
	e := newTestEngine(t, twoProviderConfig(), Dependencies{
		Shelves:  newMemShelves(),
		Catalog:  &memCatalog{books: books},
		External: &stubExternal{err: errors.New("timeout")},
	})
	e.RegisterProvider(&stubProvider{name: ProviderHistory, books: books})

	resp, err := e.Recommend(context.Background(), Request{UserID: 1, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Metadata.ExternalCount != 0 || len(resp.Items) == 0 {
		t.Errorf("unexpected response %+v", resp.Metadata)
	}
}

func TestEngine_CacheHitAndInvalidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	books := rangeBooks(1, 20, "Fantasy")
	shelves := newMemShelves()
	shelves.add(1, 20, ShelfRead, fixedNow)
	store := newMemCache()
	provider := &stubProvider{name: ProviderHistory, books: books}

	e := newTestEngine(t, twoProviderConfig(), Dependencies{Shelves: shelves, Catalog: &memCatalog{books: books}, Cache: store})
	e.RegisterProvider(provider)

	first, err := e.Recommend(ctx, Request{UserID: 1, Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if first.Metadata.CacheHit {
		t.Error("first request cannot be a cache hit")
	}

	second, err := e.Recommend(ctx, Request{UserID: 1, Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Metadata.CacheHit {
		t.Error("second request should hit the cache")
	}
	if !equalIDs(itemIDs(first.Items), itemIDs(second.Items)) {
		t.Errorf("cached order %v differs from computed %v", itemIDs(second.Items), itemIDs(first.Items))
	}
	if got := provider.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}

	inv := NewInvalidator(store, zerolog.Nop(), nil)
	if removed := inv.Invalidate(ctx, 1, EventBookAdded); removed == 0 {
		t.Error("book_added removed nothing")
	}
	if n := store.keys(UserPrefix(NamespaceRecommendations, 1)); n != 0 {
		t.Errorf("%d recommendation keys survived book_added", n)
	}

	third, err := e.Recommend(ctx, Request{UserID: 1, Limit: 4})
	if err != nil {
		t.Fatal(err)
	}
	if third.Metadata.CacheHit {
		t.Error("request after invalidation should recompute")
	}
	if got := provider.calls.Load(); got != 2 {
		t.Errorf("provider calls = %d, want 2", got)
	}

	m := e.GetMetrics()
	if m.Requests != 3 || m.CacheHits != 1 || m.CacheMisses != 2 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestEngine_ShelfMoveRefreshesCachedProfiles(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	books := []Book{
		{ID: 1, Title: "One", Language: "en"},
		{ID: 2, Title: "Two", Language: "en"},
		{ID: 3, Title: "Three", Language: "en"},
		{ID: 4, Title: "Quatro", Language: "pt"},
	}
	shelves := newMemShelves()
	for id := int64(1); id <= 3; id++ {
		shelves.add(1, id, ShelfReading, fixedNow)
	}
	shelves.add(1, 4, ShelfRead, fixedNow)
	store := newMemCache()
	e := newTestEngine(t, DefaultConfig(), Dependencies{Shelves: shelves, Catalog: &memCatalog{books: books}, Cache: store})

	warm, err := e.loadUserContext(ctx, 1, zerolog.Nop())
	if err != nil {
		t.Fatalf("loadUserContext() error = %v", err)
	}
	if got := warm.Language.ExcludedLanguages(e.config.Language); len(got) != 0 {
		t.Fatalf("warm profile excludes %v, want none", got)
	}
	if n := store.keys(UserPrefix(NamespaceLanguageProfile, 1)); n != 1 {
		t.Fatalf("%d cached language profiles, want 1", n)
	}

	for id := int64(1); id <= 3; id++ {
		shelves.move(1, id, ShelfAbandoned)
	}
	NewInvalidator(store, zerolog.Nop(), nil).Invalidate(ctx, 1, EventShelfChanged)

	uc, err := e.loadUserContext(ctx, 1, zerolog.Nop())
	if err != nil {
		t.Fatalf("loadUserContext() error = %v", err)
	}
	excluded := uc.Language.ExcludedLanguages(e.config.Language)
	if len(excluded) != 1 || excluded[0] != "en" {
		t.Errorf("profile after moving to abandoned excludes %v, want [en]", excluded)
	}
	if got := uc.Language.Weights.Get("en"); got != 0 {
		t.Errorf("en weight after abandoning = %v, want 0", got)
	}
}

func TestEngine_CacheStoreFailureIsAMiss(t *testing.T) {
	t.Parallel()

	books := rangeBooks(1, 10, "Fantasy")
	store := newMemCache()
	store.fail = true
	e := newTestEngine(t, twoProviderConfig(), Dependencies{Shelves: newMemShelves(), Catalog: &memCatalog{books: books}, Cache: store})
	e.RegisterProvider(&stubProvider{name: ProviderHistory, books: books})

	for i := 0; i < 2; i++ {
		resp, err := e.Recommend(context.Background(), Request{UserID: 1, Limit: 2})
		if err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
		if resp.Metadata.CacheHit || len(resp.Items) != 1 {
			t.Errorf("run %d: cache hit %v, %d items", i, resp.Metadata.CacheHit, len(resp.Items))
		}
	}
}

func TestEngine_PipelineFailureServesPopularFallback(t *testing.T) {
	t.Parallel()

	shelves := newMemShelves()
	shelves.add(3, 1, ShelfRead, fixedNow)
	shelves.add(3, 2, ShelfReading, fixedNow)
	cat := &memCatalog{books: rangeBooks(1, 10, "Fantasy"), failIDLookups: true}
	e := newTestEngine(t, nil, Dependencies{Shelves: shelves, Catalog: cat})
	e.RegisterProvider(&stubProvider{name: ProviderHistory, books: cat.books})

	resp, err := e.Recommend(context.Background(), Request{UserID: 3, Limit: 3})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !resp.Metadata.Fallback {
		t.Error("expected fallback")
	}
	if got, want := itemIDs(resp.Items), []int64{3, 4, 5}; !equalIDs(got, want) {
		t.Errorf("ids = %v, want %v", got, want)
	}
	if e.GetMetrics().Errors != 1 {
		t.Errorf("errors = %d, want 1", e.GetMetrics().Errors)
	}
}

func TestEngine_ShelfStoreDownReturnsError(t *testing.T) {
	t.Parallel()

	shelves := newMemShelves()
	shelves.fail = true
	e := newTestEngine(t, nil, Dependencies{Shelves: shelves, Catalog: &memCatalog{books: rangeBooks(1, 3, "Fantasy")}})

	if _, err := e.Recommend(context.Background(), Request{UserID: 1}); err == nil {
		t.Error("expected error when the fallback cannot resolve exclusions")
	}
}

func TestEngine_PrepareRequest(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, nil, Dependencies{Shelves: newMemShelves(), Catalog: &memCatalog{}})

	req := e.prepareRequest(Request{UserID: 1})
	if req.Limit != 20 {
		t.Errorf("default limit = %d, want 20", req.Limit)
	}
	if req.RequestID == "" {
		t.Error("request id not generated")
	}
	if req = e.prepareRequest(Request{UserID: 1, Limit: 1000, RequestID: "r"}); req.Limit != 100 || req.RequestID != "r" {
		t.Errorf("prepared = %+v", req)
	}
}

func TestEngine_ObserverSeesRequests(t *testing.T) {
	t.Parallel()

	obs := &countingObserver{}
	e := newTestEngine(t, nil, Dependencies{Shelves: newMemShelves(), Catalog: &memCatalog{books: rangeBooks(1, 3, "Fantasy")}, Observer: obs})
	if _, err := e.PersonalizedShelf(context.Background(), 1, 5); err != nil {
		t.Fatal(err)
	}
	if obs.requests.Load() != 1 {
		t.Errorf("requests observed = %d, want 1", obs.requests.Load())
	}
}
