package cache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(time.Minute)
	if _, ok := c.Get("menu:1"); ok {
		t.Fatal("empty cache should miss")
	}
	c.Set("menu:1", "value")
	got, ok := c.Get("menu:1")
	if !ok || got.(string) != "value" {
		t.Fatalf("got %v %v, want value true", got, ok)
	}
}

func TestExpiry(t *testing.T) {
	c := New(5 * time.Minute)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	c.SetNow(func() time.Time { return now })

	c.Set("menu:1", "value")
	now = base.Add(4 * time.Minute)
	if _, ok := c.Get("menu:1"); !ok {
		t.Fatal("entry expired early")
	}
	now = base.Add(6 * time.Minute)
	if _, ok := c.Get("menu:1"); ok {
		t.Fatal("entry should have expired")
	}
	// Expired entries are evicted on read.
	if len(c.entries) != 0 {
		t.Fatalf("expired entry left behind: %v", c.entries)
	}
}

func TestDelete(t *testing.T) {
	c := New(time.Minute)
	c.Set("menu:1", 1)
	c.Delete("menu:1")
	if _, ok := c.Get("menu:1"); ok {
		t.Fatal("deleted entry should miss")
	}
}

func TestDeletePrefix(t *testing.T) {
	c := New(time.Minute)
	c.Set("menu:1", 1)
	c.Set("menu:2", 2)
	c.Set("orders:1", 3)

	c.DeletePrefix("menu:")
	if _, ok := c.Get("menu:1"); ok {
		t.Fatal("menu:1 should be gone")
	}
	if _, ok := c.Get("menu:2"); ok {
		t.Fatal("menu:2 should be gone")
	}
	if _, ok := c.Get("orders:1"); !ok {
		t.Fatal("orders:1 should survive")
	}
}
