package cache

import (
	"testing"
	"time"

	"traffic-analytics/internal/domain"
)

func TestMonthCache_HitWithinTTL(t *testing.T) {
	c := New(time.Hour)
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	key := Key{Dataset: "historical_metro", Month: "March"}
	records := []domain.Record{{Region: "Downtown", Volume: 100}}
	c.Put(key, records)

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Expected a cache hit")
	}
	if len(got) != 1 || got[0].Region != "Downtown" {
		t.Errorf("Cached records wrong: %+v", got)
	}
}

func TestMonthCache_ExpiresAfterTTL(t *testing.T) {
	c := New(time.Hour)
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	key := Key{Dataset: "historical_metro", Month: "March"}
	c.Put(key, []domain.Record{{Volume: 100}})

	now = now.Add(time.Hour + time.Second)
	if _, ok := c.Get(key); ok {
		t.Error("Expected the entry to expire after the TTL")
	}
}

func TestMonthCache_MissForUnknownKey(t *testing.T) {
	c := New(time.Hour)
	if _, ok := c.Get(Key{Dataset: "x", Month: "January"}); ok {
		t.Error("Expected a miss for an unknown key")
	}
}

func TestMonthCache_KeysAreIndependent(t *testing.T) {
	c := New(time.Hour)
	c.Put(Key{Dataset: "a", Month: "January"}, []domain.Record{{Volume: 1}})

	if _, ok := c.Get(Key{Dataset: "a", Month: "February"}); ok {
		t.Error("Different months must not share entries")
	}
	if _, ok := c.Get(Key{Dataset: "b", Month: "January"}); ok {
		t.Error("Different datasets must not share entries")
	}
}

func TestMonthCache_Invalidate(t *testing.T) {
	c := New(time.Hour)
	key := Key{Dataset: "a", Month: "January"}
	c.Put(key, []domain.Record{{Volume: 1}})
	c.Invalidate(key)
	if _, ok := c.Get(key); ok {
		t.Error("Expected a miss after invalidation")
	}
}

func TestMonthCache_DisabledByZeroTTL(t *testing.T) {
	c := New(0)
	key := Key{Dataset: "a", Month: "January"}
	c.Put(key, []domain.Record{{Volume: 1}})
	if _, ok := c.Get(key); ok {
		t.Error("A zero TTL must disable caching")
	}
}
