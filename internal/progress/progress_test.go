package progress

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestSetMembership(t *testing.T) {
	t.Parallel()

	set := NewSet()

	if set.Contains("abc") {
		t.Error("empty set Contains(abc) = true")
	}

	set.Add("abc")
	set.Add("abc") // idempotent
	set.Add("xyz")

	if !set.Contains("abc") {
		t.Error("Contains(abc) = false after Add")
	}

	if got := set.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestSortedOrder(t *testing.T) {
	t.Parallel()

	set := NewSet()
	set.Add("zzz")
	set.Add("aaa")
	set.Add("mmm")

	want := []string{"aaa", "mmm", "zzz"}

	for i, id := range set.Sorted() {
		if id != want[i] {
			t.Errorf("Sorted()[%d] = %q, want %q", i, id, want[i])
		}
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress.json")

	set := NewSet()
	set.Add("vid02")
	set.Add("vid01")

	if err := set.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded := Load(slog.Default(), path)

	if loaded.Len() != 2 || !loaded.Contains("vid01") || !loaded.Contains("vid02") {
		t.Errorf("loaded set = %v, want [vid01 vid02]", loaded.Sorted())
	}
}

func TestSaveShape(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress.json")

	set := NewSet()
	set.Add("bbb")
	set.Add("aaa")

	if err := set.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read progress file: %v", err)
	}

	var shape struct {
		ProcessedVideoIDs []string `json:"processed_video_ids"`
		Count             int      `json:"count"`
	}

	if err := json.Unmarshal(data, &shape); err != nil {
		t.Fatalf("unmarshal progress file: %v", err)
	}

	if shape.Count != 2 {
		t.Errorf("count = %d, want 2", shape.Count)
	}

	if len(shape.ProcessedVideoIDs) != 2 || shape.ProcessedVideoIDs[0] != "aaa" || shape.ProcessedVideoIDs[1] != "bbb" {
		t.Errorf("processed_video_ids = %v, want sorted [aaa bbb]", shape.ProcessedVideoIDs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	set := Load(slog.Default(), filepath.Join(t.TempDir(), "nope.json"))

	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for missing file", set.Len())
	}
}

func TestLoadCorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	set := Load(slog.Default(), path)

	if set.Len() != 0 {
		t.Errorf("Len() = %d, want 0 for corrupt file", set.Len())
	}
}
