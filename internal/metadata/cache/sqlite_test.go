package cache

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestCache(t *testing.T) *SQLiteCache {
	t.Helper()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheRoundTrip(t *testing.T) {
	c := openTestCache(t)

	if _, found := c.Get("missing"); found {
		t.Error("expected miss for unknown key")
	}

	payload := []byte(`{"id":27205}`)
	if err := c.Set("tmdb:movie:27205", payload, time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, found := c.Get("tmdb:movie:27205")
	if !found {
		t.Fatal("expected hit after Set")
	}
	if string(data) != string(payload) {
		t.Errorf("got %q, want %q", data, payload)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := openTestCache(t)

	if err := c.Set("short-lived", []byte("x"), -time.Second); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, found := c.Get("short-lived"); found {
		t.Error("expected expired entry to miss")
	}
}

func TestCacheOverwriteAndClear(t *testing.T) {
	c := openTestCache(t)

	if err := c.Set("k", []byte("old"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := c.Set("k", []byte("new"), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, found := c.Get("k")
	if !found || string(data) != "new" {
		t.Errorf("expected overwritten value, got %q (found=%v)", data, found)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, found := c.Get("k"); found {
		t.Error("expected miss after Clear")
	}
}
