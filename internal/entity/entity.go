// Package entity defines the core entities used in the application.
package entity

import (
	"log/slog"
)

// Format is the persisted shape of one full (audio+video) format descriptor.
type Format struct {
	Vcodec     string   `json:"vcodec"`
	Acodec     string   `json:"acodec"`
	FormatID   string   `json:"format_id"`
	FPS        *float64 `json:"fps"`
	Ext        string   `json:"ext"`
	VideoExt   string   `json:"video_ext"`
	AudioExt   string   `json:"audio_ext"`
	Resolution string   `json:"resolution"`
	Format     string   `json:"format"`
}

// Thumbnail is one thumbnail descriptor as reported by the extractor.
type Thumbnail struct {
	ID         string `json:"id,omitempty"`
	URL        string `json:"url"`
	Preference *int   `json:"preference,omitempty"`
}

// Chapter is one chapter marker as reported by the extractor.
type Chapter struct {
	StartTime *float64 `json:"start_time"`
	EndTime   *float64 `json:"end_time"`
	Title     string   `json:"title"`
}

// CaptionTiming holds per-language caption timing diagnostics.
type CaptionTiming struct {
	ManualSeconds float64 `json:"manual_seconds"`
	AutoSeconds   float64 `json:"auto_seconds"`
	Chosen        string  `json:"chosen"`
}

// Timings holds timing diagnostics for one video fetch.
// All values are wall-clock seconds rounded to 3 decimals.
type Timings struct {
	ExtractInfoSeconds   float64                  `json:"extract_info_seconds"`
	CaptionsSecondsTotal float64                  `json:"captions_seconds_total"`
	CaptionsPerLang      map[string]CaptionTiming `json:"captions_per_lang"`
	TotalSeconds         float64                  `json:"total_seconds"`
}

// VideoRecord is the persisted result for one video identifier. A record is
// either fully populated or not persisted at all; no partial record is ever
// written to a shard.
type VideoRecord struct {
	WebpageURL        string            `json:"webpage_url"`
	AgeLimit          *int              `json:"age_limit"`
	Subtitles         map[string]string `json:"subtitles"`
	AutomaticCaptions map[string]string `json:"automatic_captions"`
	Chapters          []Chapter         `json:"chapters"`
	Formats           []Format          `json:"formats"`
	Thumbnails        []Thumbnail       `json:"thumbnails_ytdlp"`
	DurationSeconds   *int              `json:"duration_seconds,omitempty"`
	Timings           Timings           `json:"timings_ytdlp"`
}

// LogValue implements the slog.LogValuer interface for structured logging.
func (r VideoRecord) LogValue() slog.Value {
	duration := 0
	if r.DurationSeconds != nil {
		duration = *r.DurationSeconds
	}

	return slog.GroupValue(
		slog.String("webpage_url", r.WebpageURL),
		slog.Int("duration_seconds", duration),
		slog.Int("formats", len(r.Formats)),
		slog.Int("thumbnails", len(r.Thumbnails)),
		slog.Int("automatic_captions", len(r.AutomaticCaptions)),
		slog.Float64("extract_info_seconds", r.Timings.ExtractInfoSeconds),
		slog.Float64("captions_seconds_total", r.Timings.CaptionsSecondsTotal),
		slog.Float64("total_seconds", r.Timings.TotalSeconds),
	)
}
