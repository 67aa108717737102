// Package sequence loads the master sequence of video identifiers.
package sequence

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"ytharvest/internal/errs"

	"github.com/ulikunitz/xz"
)

// Load reads the master sequence file, a mapping from timestamp-string
// keys to ordered lists of video identifiers, and flattens it: timestamps
// in ascending sort order, identifiers within a timestamp in listed
// order. Files with a .xz suffix are decompressed transparently.
// A missing file is fatal for the run.
func Load(log *slog.Logger, path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", path, errs.ErrSequenceNotFound)
		}

		return nil, fmt.Errorf("open sequence: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file

	if strings.HasSuffix(path, ".xz") {
		xzReader, err := xz.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("create xz reader: %w", err)
		}

		reader = xzReader
	}

	var groups map[string][]string
	if err := json.NewDecoder(reader).Decode(&groups); err != nil {
		return nil, fmt.Errorf("decode sequence: %w", err)
	}

	timestamps := make([]string, 0, len(groups))
	for timestamp := range groups {
		timestamps = append(timestamps, timestamp)
	}

	sort.Strings(timestamps)

	var videoIDs []string
	for _, timestamp := range timestamps {
		videoIDs = append(videoIDs, groups[timestamp]...)
	}

	log.Info("sequence loaded",
		slog.String("path", path),
		slog.Int("video_count", len(videoIDs)))

	return videoIDs, nil
}
