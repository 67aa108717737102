// Package extractor defines the external video-extraction capability and
// its yt-dlp backed implementation.
package extractor

import (
	"context"
	"fmt"

	"ytharvest/internal/entity"
)

// Kind mirrors the extraction library's error families.
type Kind string

// Extraction error families.
const (
	KindExtractor   Kind = "ExtractorError"
	KindDownload    Kind = "DownloadError"
	KindUnsupported Kind = "UnsupportedError"
)

// Error is a typed extraction error. Keeping the kind and the raw message
// together gives error classification a single structured seam, so the
// keyword tables can be swapped out if the extraction library changes.
type Error struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Format is one raw format descriptor from the metadata record.
type Format struct {
	FormatID   string   `json:"format_id"`
	FormatNote string   `json:"format_note"`
	Ext        string   `json:"ext"`
	Resolution string   `json:"resolution"`
	FPS        *float64 `json:"fps"`
	Vcodec     string   `json:"vcodec"`
	Acodec     string   `json:"acodec"`
	VideoExt   string   `json:"video_ext"`
	AudioExt   string   `json:"audio_ext"`
	Format     string   `json:"format"`
}

// Info is the metadata record returned by the primary extraction call.
type Info struct {
	ID         string             `json:"id"`
	WebpageURL string             `json:"webpage_url"`
	AgeLimit   *int               `json:"age_limit"`
	Duration   *float64           `json:"duration"`
	Chapters   []entity.Chapter   `json:"chapters"`
	Formats    []Format           `json:"formats"`
	Thumbnails []entity.Thumbnail `json:"thumbnails"`
}

// SubtitleRequest describes one subtitle-only extraction call.
type SubtitleRequest struct {
	URL        string
	Languages  []string
	Manual     bool // manual subtitles when true, automatic captions otherwise
	CookieFile string
	DestDir    string
}

// SubtitleResult carries side-channel observations from a subtitle call.
type SubtitleResult struct {
	// SawRateLimit is set when a rate-limit signal was observed in the
	// extraction library's output during the call.
	SawRateLimit bool
}

// Extractor is the opaque extraction capability. Implementations return a
// metadata record or a typed error; subtitle downloads write timed-text
// files into the request's destination directory as a side effect.
type Extractor interface {
	ExtractInfo(ctx context.Context, url, cookieFile string) (*Info, error)
	DownloadSubtitles(ctx context.Context, req SubtitleRequest) (SubtitleResult, error)
}
