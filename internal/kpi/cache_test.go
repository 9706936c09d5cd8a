package kpi

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewCacheWithClient(rdb, 5*time.Minute), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	period, _ := ResolvePeriod(TimeframeMonth, time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC))
	snap := &Snapshot{Period: period, TimesheetHours: 12.5}
	snap.Chat.Total = 42

	key := cacheKey(period)
	if _, ok := cache.Get(ctx, key); ok {
		t.Fatal("hit before set")
	}

	cache.Set(ctx, key, snap)
	got, ok := cache.Get(ctx, key)
	if !ok {
		t.Fatal("miss after set")
	}
	if got.Chat.Total != 42 || got.TimesheetHours != 12.5 {
		t.Errorf("cached snapshot = %+v", got)
	}
	if got.Period.Label != period.Label {
		t.Errorf("period label = %q", got.Period.Label)
	}
}

func TestCacheExpiry(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	period, _ := ResolvePeriod(TimeframeWeek, time.Now())
	cache.Set(ctx, cacheKey(period), &Snapshot{Period: period})

	mr.FastForward(6 * time.Minute)
	if _, ok := cache.Get(ctx, cacheKey(period)); ok {
		t.Error("entry survived past TTL")
	}
}

func TestCacheFlush(t *testing.T) {
	cache, _ := setupCache(t)
	ctx := context.Background()

	for _, tf := range []Timeframe{TimeframeWeek, TimeframeMonth, TimeframeYear} {
		period, _ := ResolvePeriod(tf, time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC))
		cache.Set(ctx, cacheKey(period), &Snapshot{Period: period})
	}

	cache.Flush(ctx)

	for _, tf := range []Timeframe{TimeframeWeek, TimeframeMonth, TimeframeYear} {
		period, _ := ResolvePeriod(tf, time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC))
		if _, ok := cache.Get(ctx, cacheKey(period)); ok {
			t.Errorf("%s snapshot survived flush", tf)
		}
	}
}

func TestCacheCorruptEntry(t *testing.T) {
	cache, mr := setupCache(t)
	ctx := context.Background()

	period, _ := ResolvePeriod(TimeframeMonth, time.Now())
	key := cacheKey(period)
	mr.Set(key, "not json")

	if _, ok := cache.Get(ctx, key); ok {
		t.Error("corrupt entry returned as hit")
	}
}

func TestServiceUsesCache(t *testing.T) {
	cache, _ := setupCache(t)
	reader := &fakeReader{}
	svc := NewService(reader, cache)
	ctx := context.Background()
	anchor := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)

	first, err := svc.Dashboard(ctx, TimeframeMonth, anchor)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	// Second call comes from the cache: same generation timestamp.
	second, err := svc.Dashboard(ctx, TimeframeMonth, anchor)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if !first.GeneratedAt.Equal(second.GeneratedAt) {
		t.Error("second call recomputed instead of hitting the cache")
	}

	svc.Invalidate(ctx)
	if _, ok := cache.Get(ctx, cacheKey(first.Period)); ok {
		t.Error("snapshot survived invalidation")
	}
}
