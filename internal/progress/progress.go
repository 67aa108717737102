// Package progress persists the set of already-processed video IDs.
package progress

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
)

const filePerm = 0o644

// fileShape is the persisted progress file layout.
type fileShape struct {
	ProcessedVideoIDs []string `json:"processed_video_ids"`
	Count             int      `json:"count"`
}

// Set is the append-only set of processed video identifiers. Once an
// identifier is added it is never removed; membership gates re-processing.
type Set struct {
	ids map[string]struct{}
}

// NewSet creates an empty progress set.
func NewSet() *Set {
	return &Set{ids: make(map[string]struct{})}
}

// Load reads the progress file. A missing or unreadable file yields an
// empty set with a logged warning, never an error: losing progress only
// costs re-fetching.
func Load(log *slog.Logger, path string) *Set {
	set := NewSet()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("progress file unreadable, starting fresh",
				slog.String("path", path), slog.Any("error", err))
		}

		return set
	}

	var shape fileShape
	if err := json.Unmarshal(data, &shape); err != nil {
		log.Warn("progress file corrupt, starting fresh",
			slog.String("path", path), slog.Any("error", err))

		return set
	}

	for _, id := range shape.ProcessedVideoIDs {
		set.ids[id] = struct{}{}
	}

	return set
}

// Contains reports whether id has been processed.
func (s *Set) Contains(id string) bool {
	_, ok := s.ids[id]

	return ok
}

// Add marks id as processed.
func (s *Set) Add(id string) {
	s.ids[id] = struct{}{}
}

// Len returns the number of processed identifiers.
func (s *Set) Len() int {
	return len(s.ids)
}

// Sorted returns the identifiers in lexicographic order.
func (s *Set) Sorted() []string {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

// Save writes the progress file as a sorted list plus count.
func (s *Set) Save(path string) error {
	data, err := json.MarshalIndent(fileShape{
		ProcessedVideoIDs: s.Sorted(),
		Count:             s.Len(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}

	return nil
}
