// Package fetch implements the resilient single-video fetch pipeline:
// primary metadata extraction with retry over cookie rotation, a throttled
// caption sub-call, and projection of the raw metadata into the persisted
// record shape.
package fetch

import (
	"context"
	"log/slog"
	"os"
	"time"

	"ytharvest/internal/config"
	"ytharvest/internal/cookiemgr"
	"ytharvest/internal/entity"
	"ytharvest/internal/extractor"
	"ytharvest/internal/observability"
	"ytharvest/pkg/maths"
	"ytharvest/pkg/urls"
)

// maxFullFormats is how many trailing full (audio+video) formats are kept.
const maxFullFormats = 2

const chosenAuto = "auto"

// Pipeline orchestrates one video's full fetch.
type Pipeline struct {
	log      *slog.Logger
	cfg      *config.Config
	ext      extractor.Extractor
	cookies  *cookiemgr.Manager
	captions *CaptionFetcher
	metrics  *observability.Metrics
}

// NewPipeline creates a fetch pipeline.
func NewPipeline(log *slog.Logger,
	cfg *config.Config,
	ext extractor.Extractor,
	cookies *cookiemgr.Manager,
	captions *CaptionFetcher,
	metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		log:      log.With(slog.String("package", "fetch")),
		cfg:      cfg,
		ext:      ext,
		cookies:  cookies,
		captions: captions,
		metrics:  metrics,
	}
}

// Fetch resolves one video URL into a fully populated VideoRecord, or nil
// when the video degrades to a definitive empty result. Each attempt uses
// the rotator's current cookie; only timeout and blocked errors rotate and
// retry, bounded by the cookie-set size.
func (p *Pipeline) Fetch(ctx context.Context, videoURL string) *entity.VideoRecord {
	log := p.log.With(slog.String("url", videoURL))

	totalStart := time.Now()
	maxAttempts := max(1, p.cookies.Count())

	for attempt := range maxAttempts {
		cookie := p.cookies.Current()

		extractStart := time.Now()
		info, err := p.ext.ExtractInfo(ctx, videoURL, cookie)
		extractSeconds := maths.RoundSeconds(time.Since(extractStart))

		if err == nil {
			if info == nil {
				log.Warn("no info found for video")
				p.metrics.RecordExtract("empty")

				return nil
			}

			p.metrics.RecordExtract("ok")

			return p.assemble(ctx, videoURL, info, extractSeconds, totalStart)
		}

		p.metrics.RecordExtract("error")

		class := Classify(err, p.cookies.IsBlockedError)

		log.Warn("extract info failed",
			slog.Any("error", err),
			slog.String("class", class.String()),
			slog.Int("attempt", attempt))

		switch class {
		case ClassUnavailable:
			// Definitively gone: no retry, no rotation.
			return nil
		case ClassTimeout, ClassBlocked:
			if attempt < maxAttempts-1 {
				if next := p.cookies.RotateNext(); next != "" {
					p.metrics.RecordCookieRotation()

					continue
				}
			}
		}

		if attempt == maxAttempts-1 {
			log.Error("error fetching video", slog.Any("error", err))
		}

		return nil
	}

	return nil
}

// assemble runs the caption sub-call and projects the raw metadata record
// into the persisted shape. The caption scratch directory is removed even
// when the caption fetch fails.
func (p *Pipeline) assemble(ctx context.Context,
	videoURL string,
	info *extractor.Info,
	extractSeconds float64,
	totalStart time.Time) *entity.VideoRecord {
	record := &entity.VideoRecord{
		WebpageURL:        info.WebpageURL,
		AgeLimit:          info.AgeLimit,
		Subtitles:         map[string]string{},
		AutomaticCaptions: map[string]string{},
	}

	timings := entity.Timings{
		ExtractInfoSeconds: extractSeconds,
		CaptionsPerLang:    make(map[string]entity.CaptionTiming, len(p.cfg.Harvest.CaptionLangs)),
	}

	captionsStart := time.Now()

	// Throttle before the caption sub-call to reduce request burstiness.
	if p.cfg.Harvest.SubsDelay > 0 {
		time.Sleep(p.cfg.Harvest.SubsDelay)
	}

	captionURL := urls.Normalize(info.WebpageURL)
	if captionURL == "" {
		captionURL = videoURL
	}

	captions := p.captions.Fetch(ctx, captionURL, p.cfg.Harvest.CaptionLangs, false, p.cookies.Current())
	defer cleanupPaths(captions.ScratchDir)

	if captions.SawRateLimit {
		p.log.Warn("rate limit signal during caption fetch", slog.String("url", captionURL))
		p.metrics.RecordRateLimitSignal()
	}

	for _, lang := range p.cfg.Harvest.CaptionLangs {
		chosen := ""

		if text := captions.Texts[lang]; text != "" {
			chosen = chosenAuto
			record.AutomaticCaptions[lang] = text
		}

		timings.CaptionsPerLang[lang] = entity.CaptionTiming{
			ManualSeconds: 0,
			AutoSeconds:   captions.Elapsed,
			Chosen:        chosen,
		}
	}

	timings.CaptionsSecondsTotal = maths.RoundSeconds(time.Since(captionsStart))

	record.Chapters = info.Chapters
	record.Formats = projectFormats(info.Formats)
	record.Thumbnails = projectThumbnails(info.Thumbnails)

	if info.Duration != nil && *info.Duration != 0 {
		duration := int(*info.Duration)
		record.DurationSeconds = &duration
	}

	timings.TotalSeconds = maths.RoundSeconds(time.Since(totalStart))
	record.Timings = timings

	p.metrics.ObserveFetchDuration(timings.TotalSeconds)

	return record
}

// projectFormats keeps full (audio+video) formats only, excludes
// storyboards, and returns the trailing maxFullFormats in source order.
func projectFormats(formats []extractor.Format) []entity.Format {
	full := make([]entity.Format, 0, len(formats))

	for _, format := range formats {
		if format.FormatNote == "storyboard" {
			continue
		}

		if !hasCodec(format.Vcodec) || !hasCodec(format.Acodec) {
			continue
		}

		full = append(full, entity.Format{
			Vcodec:     format.Vcodec,
			Acodec:     format.Acodec,
			FormatID:   orNone(format.FormatID),
			FPS:        format.FPS,
			Ext:        orNone(format.Ext),
			VideoExt:   orNone(format.VideoExt),
			AudioExt:   orNone(format.AudioExt),
			Resolution: orNone(format.Resolution),
			Format:     orNone(format.Format),
		})
	}

	if len(full) > maxFullFormats {
		full = full[len(full)-maxFullFormats:]
	}

	return full
}

// projectThumbnails keeps every thumbnail with preference exactly -1, in
// original relative order.
func projectThumbnails(thumbnails []entity.Thumbnail) []entity.Thumbnail {
	kept := make([]entity.Thumbnail, 0, len(thumbnails))

	for _, thumb := range thumbnails {
		if thumb.Preference != nil && *thumb.Preference == -1 {
			kept = append(kept, thumb)
		}
	}

	return kept
}

func hasCodec(codec string) bool {
	return codec != "" && codec != "none"
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}

	return s
}

// cleanupPaths removes the given paths, ignoring errors.
func cleanupPaths(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}

		_ = os.RemoveAll(path)
	}
}
