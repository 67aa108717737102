package fetch

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"ytharvest/internal/consts"
	"ytharvest/internal/extractor"
	"ytharvest/pkg/maths"

	"github.com/google/uuid"
)

// CaptionResult is the outcome of one subtitle-only fetch.
type CaptionResult struct {
	// Texts maps language code to flat whitespace-normalized caption text
	// for the languages that produced a timed-text file.
	Texts map[string]string
	// ScratchDir is the temporary directory the call wrote into. The
	// caller owns its deletion.
	ScratchDir string
	// Elapsed is the wall time of the network call in seconds, rounded
	// to 3 decimals.
	Elapsed float64
	// SawRateLimit is set when a rate-limit signal was observed during
	// the call.
	SawRateLimit bool
}

// CaptionFetcher invokes the extraction capability in subtitle-only mode.
// It is stateless; retry policy belongs to the caller.
type CaptionFetcher struct {
	log     *slog.Logger
	ext     extractor.Extractor
	tmpRoot string
}

// NewCaptionFetcher creates a caption fetcher writing scratch directories
// under tmpRoot.
func NewCaptionFetcher(log *slog.Logger, ext extractor.Extractor, tmpRoot string) *CaptionFetcher {
	return &CaptionFetcher{
		log:     log.With(slog.String("package", "fetch")),
		ext:     ext,
		tmpRoot: tmpRoot,
	}
}

// Fetch downloads captions for the given languages into a fresh scratch
// directory and parses each per-language timed-text file into flat text.
// Download errors are swallowed: whatever files exist are parsed,
// typically none. The returned scratch directory must be removed by the
// caller even when Texts is empty.
func (c *CaptionFetcher) Fetch(ctx context.Context,
	url string,
	languages []string,
	manual bool,
	cookieFile string) CaptionResult {
	scratch := filepath.Join(c.tmpRoot, ".subs-"+uuid.NewString())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		c.log.Warn("create caption scratch dir", slog.Any("error", err))

		return CaptionResult{Texts: map[string]string{}, ScratchDir: scratch}
	}

	// Pre-request jitter to desynchronize repeated caption calls.
	time.Sleep(consts.JitterMin + rand.N(consts.JitterMax-consts.JitterMin))

	start := time.Now()

	res, err := c.ext.DownloadSubtitles(ctx, extractor.SubtitleRequest{
		URL:        url,
		Languages:  languages,
		Manual:     manual,
		CookieFile: cookieFile,
		DestDir:    scratch,
	})
	if err != nil {
		c.log.Debug("subtitle download failed", slog.String("url", url), slog.Any("error", err))
	}

	texts := make(map[string]string, len(languages))

	for _, lang := range languages {
		matches, err := filepath.Glob(filepath.Join(scratch, "*."+lang+".json3"))
		if err != nil || len(matches) == 0 {
			continue
		}

		texts[lang] = ParseJSON3File(matches[0])
	}

	return CaptionResult{
		Texts:        texts,
		ScratchDir:   scratch,
		Elapsed:      maths.RoundSeconds(time.Since(start)),
		SawRateLimit: res.SawRateLimit,
	}
}
