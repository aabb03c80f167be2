package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestKey_IsStableAndSafe(t *testing.T) {
	a := Key("phonebook", "xyz")
	b := Key("phonebook", "xyz")
	if a != b {
		t.Fatalf("Key not stable: %q vs %q", a, b)
	}
	if a == Key("phonebook", "xyZ") {
		t.Error("different parts must give different keys")
	}
	if !strings.HasPrefix(a, "casework:v1:phonebook:") {
		t.Errorf("unexpected key prefix: %q", a)
	}
	if strings.ContainsAny(a, "/\\") {
		t.Errorf("key must not contain path separators: %q", a)
	}
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}
	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Fatalf("Get = %q, %v; want v, true", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Delete")
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set("casework:v1:phonebook:abc", []byte("data"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, ok := c.Get("casework:v1:phonebook:abc"); !ok || string(got) != "data" {
		t.Fatalf("Get before expiry = %q, %v", got, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("casework:v1:phonebook:abc"); ok {
		t.Error("expected miss after TTL")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expired file should be removed, found %d entries", len(entries))
	}
}

func TestDiskCache_CorruptFileIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)

	if err := os.WriteFile(filepath.Join(dir, "bad.cache"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("bad"); ok {
		t.Error("corrupt entry must be a miss")
	}
	if err := c.Delete("never-written"); err != nil {
		t.Errorf("Delete of missing entry: %v", err)
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()
	writer := NewLayeredCache(time.Minute, dir, time.Hour)
	if err := SetJSON(writer, "k", []string{"Maxyz"}, 0); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	// A fresh process only shares the disk layer
	reader := NewLayeredCache(time.Minute, dir, time.Hour)
	var names []string
	if !GetJSON(reader, "k", &names) {
		t.Fatal("expected disk hit")
	}
	if len(names) != 1 || names[0] != "Maxyz" {
		t.Errorf("decoded %v", names)
	}
	if _, ok := reader.memory.Get("k"); !ok {
		t.Error("disk hit should be promoted to memory")
	}
}
