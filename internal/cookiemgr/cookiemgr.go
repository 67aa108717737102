// Package cookiemgr provides cookie-file rotation for extraction requests.
// It owns an ordered set of cookie files and classifies blocking errors.
package cookiemgr

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"ytharvest/internal/config"
	"ytharvest/internal/consts"
	"ytharvest/internal/extractor"
)

// blockIndicators are the message fragments that mark an extraction error
// as a block or rate limit when the error belongs to an extraction family.
var blockIndicators = []string{
	"429", // Too Many Requests
	"403", // Forbidden
	"blocked",
	"rate limit",
	"too many requests",
	"unable to extract",
	"private video",
	"video unavailable",
	"sign in to confirm your age",
	"http error",
	"unable to download",
	"extractor error",
}

// blockedHTTPCodes are the status codes treated as blocking when they
// appear anywhere in an error message.
var blockedHTTPCodes = map[string]bool{
	"429": true,
	"403": true,
	"503": true,
}

var reHTTPCode = regexp.MustCompile(`\d{3}`)

// Manager rotates over an ordered, immutable set of cookie files.
// The cursor is only advanced from the single fetch loop, so no locking
// is needed.
type Manager struct {
	log *slog.Logger
	cfg *config.Config

	files   []string
	current int
}

// New creates a cookie manager and loads the cookie files from the
// configured directory. An empty or missing directory is not an error;
// the manager then operates in no-cookie mode.
func New(log *slog.Logger, cfg *config.Config) *Manager {
	mgr := &Manager{
		log: log.With(slog.String("package", "cookiemgr")),
		cfg: cfg,
	}

	mgr.load()

	if len(mgr.files) == 0 {
		mgr.log.Warn("no cookie files found, proceeding without cookies",
			slog.String("dir", cfg.Dir.Cookies))
	} else {
		mgr.log.Info("cookie files loaded", slog.Int("cookie_count", len(mgr.files)))
	}

	return mgr
}

// load scans the cookies directory for files with the cookie suffix and
// sorts them lexicographically. The resulting sequence is immutable.
func (m *Manager) load() {
	entries, err := os.ReadDir(m.cfg.Dir.Cookies)
	if err != nil {
		m.log.Warn("cookies directory not readable", slog.Any("error", err))

		return
	}

	files := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), consts.CookieSuffix) {
			continue
		}

		files = append(files, filepath.Join(m.cfg.Dir.Cookies, entry.Name()))
	}

	sort.Strings(files)

	m.files = files
}

// Count returns the number of loaded cookie files.
func (m *Manager) Count() int {
	return len(m.files)
}

// Current returns the cookie file at the cursor, or empty string if the
// set is empty. It never advances the cursor.
func (m *Manager) Current() string {
	if len(m.files) == 0 {
		return ""
	}

	return m.files[m.current]
}

// RotateNext advances the cursor cyclically and returns the new current
// cookie file. Returns empty string if the set is empty.
func (m *Manager) RotateNext() string {
	if len(m.files) == 0 {
		return ""
	}

	m.current = (m.current + 1) % len(m.files)
	cookie := m.files[m.current]

	m.log.Info("rotated to next cookie",
		slog.String("cookie", filepath.Base(cookie)),
		slog.Int("position", m.current+1),
		slog.Int("cookie_count", len(m.files)))

	return cookie
}

// IsBlockedError reports whether err looks like a block or rate limit.
// The check is a heuristic pattern match over the error message: either
// the error belongs to an extraction error family and carries a known
// block indicator, or the first 3-digit number in the message is a
// blocking HTTP status code.
func (m *Manager) IsBlockedError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())

	var extErr *extractor.Error
	if errors.As(err, &extErr) {
		for _, indicator := range blockIndicators {
			if strings.Contains(msg, indicator) {
				return true
			}
		}
	}

	if code := reHTTPCode.FindString(msg); code != "" && blockedHTTPCodes[code] {
		return true
	}

	return false
}
