package fetch

import (
	"encoding/json"
	"os"
	"regexp"
	"strings"
)

var reWhitespace = regexp.MustCompile(`\s+`)

// json3Doc is the subset of the json3 timed-text format we consume:
// a list of timed events, each holding text segments.
type json3Doc struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// ParseJSON3 extracts the text segments from a json3 timed-text document,
// concatenates them and collapses whitespace runs to single spaces.
// Malformed input yields an empty string.
func ParseJSON3(data []byte) string {
	var doc json3Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return ""
	}

	chunks := make([]string, 0, len(doc.Events))

	for _, event := range doc.Events {
		var sb strings.Builder
		for _, seg := range event.Segs {
			sb.WriteString(seg.UTF8)
		}

		if sb.Len() > 0 {
			chunks = append(chunks, sb.String())
		}
	}

	text := strings.Join(chunks, " ")

	return strings.TrimSpace(reWhitespace.ReplaceAllString(text, " "))
}

// ParseJSON3File reads and parses one timed-text file. Unreadable files
// yield an empty string, matching ParseJSON3 on malformed input.
func ParseJSON3File(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return ParseJSON3(data)
}
