package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"ytharvest/internal/consts"

	"github.com/lrstanley/go-ytdlp"
)

// outputTemplate names subtitle files by video id; yt-dlp appends the
// language code and subtitle format, producing "<id>.<lang>.json3".
const outputTemplate = "%(id)s"

// YTdlp implements Extractor on top of the yt-dlp binary.
type YTdlp struct {
	log *slog.Logger
}

// NewYTdlp creates a yt-dlp backed extractor.
func NewYTdlp(log *slog.Logger) *YTdlp {
	return &YTdlp{
		log: log.With(slog.String("package", "extractor")),
	}
}

// Install makes sure the yt-dlp binary is available, downloading it if
// needed. It may take some time on first run.
func Install(ctx context.Context) {
	ytdlp.MustInstall(ctx, nil)
}

// ExtractInfo runs the primary metadata extraction for one video. It
// returns (nil, nil) when the extractor produced no metadata record.
func (y *YTdlp) ExtractInfo(ctx context.Context, url, cookieFile string) (*Info, error) {
	command := ytdlp.New().
		Quiet().
		NoWarnings().
		NoPlaylist().
		SkipDownload().
		DumpSingleJSON()

	if cookieFile != "" {
		command = command.Cookies(cookieFile)
	}

	res, err := command.Run(ctx, url)
	if err != nil {
		return nil, wrapRunError(res, err)
	}

	stdout := strings.TrimSpace(res.Stdout)
	if stdout == "" {
		return nil, nil
	}

	var info Info
	if err := json.Unmarshal([]byte(stdout), &info); err != nil {
		return nil, fmt.Errorf("parse extracted info: %w", err)
	}

	return &info, nil
}

// DownloadSubtitles runs a subtitle-only extraction writing json3 files
// into req.DestDir. Retry policy is owned by the caller: the call uses a
// short socket timeout and zero internal retries.
func (y *YTdlp) DownloadSubtitles(ctx context.Context, req SubtitleRequest) (SubtitleResult, error) {
	command := ytdlp.New().
		Quiet().
		NoWarnings().
		SkipDownload().
		SubFormat("json3").
		SubLangs(strings.Join(req.Languages, ",")).
		SocketTimeout(consts.CaptionSocketTimeout).
		Retries("0").
		Output(filepath.Join(req.DestDir, outputTemplate))

	if req.Manual {
		command = command.WriteSubs()
	} else {
		command = command.WriteAutoSubs()
	}

	if req.CookieFile != "" {
		command = command.Cookies(req.CookieFile)
	}

	res, err := command.Run(ctx, req.URL)
	result := SubtitleResult{SawRateLimit: sawRateLimit(res)}

	if err != nil {
		return result, wrapRunError(res, err)
	}

	return result, nil
}

// wrapRunError converts a yt-dlp run failure into a typed Error carrying
// the combined stderr output as its message.
func wrapRunError(res *ytdlp.Result, err error) error {
	msg := err.Error()
	if res != nil && res.Stderr != "" {
		msg = msg + ": " + res.Stderr
	}

	kind := KindDownload
	if strings.Contains(strings.ToLower(msg), "unsupported url") {
		kind = KindUnsupported
	}

	return &Error{Kind: kind, Message: msg}
}

// sawRateLimit scans the run output for a rate-limit signal.
func sawRateLimit(res *ytdlp.Result) bool {
	if res == nil {
		return false
	}

	if containsRateLimit(res.Stderr) || containsRateLimit(res.Stdout) {
		return true
	}

	for _, line := range res.OutputLogs {
		if containsRateLimit(line.Line) {
			return true
		}
	}

	return false
}

func containsRateLimit(s string) bool {
	return strings.Contains(s, "429") || strings.Contains(s, "Too Many Requests")
}
