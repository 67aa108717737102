// Package urls provides utility functions for working with video URLs.
package urls

import (
	"net/url"
	"strings"
)

const watchBase = "https://www.youtube.com/watch?v="

// WatchURL returns the canonical watch page URL for a video identifier.
func WatchURL(videoID string) string {
	return watchBase + videoID
}

// Normalize trims spaces, parses and returns the URL in string format.
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)

	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	return u.String()
}
