package cache

import (
	"os"
	"testing"
	"time"
)

type release struct {
	Version string `json:"version"`
}

func TestSetGet(t *testing.T) {
	c, err := NewAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.Set("octo/clock", release{Version: "1.2.0"}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	var got release
	if !c.Get("octo/clock", time.Hour, &got) {
		t.Fatal("expected a cache hit")
	}
	if got.Version != "1.2.0" {
		t.Errorf("Version = %q, want 1.2.0", got.Version)
	}

	if c.Get("missing", time.Hour, &got) {
		t.Error("expected a miss for an unknown key")
	}
}

func TestGetExpired(t *testing.T) {
	c, err := NewAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	start := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return start }
	if err := c.Set("k", release{Version: "1"}); err != nil {
		t.Fatal(err)
	}

	var got release
	c.now = func() time.Time { return start.Add(59 * time.Minute) }
	if !c.Get("k", time.Hour, &got) {
		t.Error("entry should still be fresh")
	}

	c.now = func() time.Time { return start.Add(61 * time.Minute) }
	if c.Get("k", time.Hour, &got) {
		t.Error("entry should have expired")
	}
}

func TestGetCorrupt(t *testing.T) {
	c, err := NewAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(c.path("old"), []byte(`{"value": {}, "cachedAt": "2024-03-04T12:00:00Z", "version": 0}`), 0600); err != nil {
		t.Fatal(err)
	}

	var got release
	if c.Get("k", time.Hour, &got) {
		t.Error("corrupt entry should miss")
	}
	if c.Get("old", 100000*time.Hour, &got) {
		t.Error("entry from another version should miss")
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	c, err := NewAt(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b"} {
		if err := c.Set(k, release{}); err != nil {
			t.Fatal(err)
		}
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
}
