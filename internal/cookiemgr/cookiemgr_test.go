package cookiemgr

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"ytharvest/internal/config"
	"ytharvest/internal/extractor"
)

// newTestManager creates a manager over a temp cookies directory holding
// the given file names.
func newTestManager(t *testing.T, names ...string) *Manager {
	t.Helper()

	dir := t.TempDir()

	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("# Netscape HTTP Cookie File\n"), 0o644); err != nil {
			t.Fatalf("write cookie file: %v", err)
		}
	}

	cfg := &config.Config{}
	cfg.Dir.Cookies = dir

	return New(slog.Default(), cfg)
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		files     []string
		wantCount int
	}{
		{
			name:      "empty directory",
			files:     nil,
			wantCount: 0,
		},
		{
			name:      "single cookie",
			files:     []string{"account1.txt"},
			wantCount: 1,
		},
		{
			name:      "non-cookie files ignored",
			files:     []string{"account1.txt", "readme.md", "account2.txt"},
			wantCount: 2,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mgr := newTestManager(t, tc.files...)

			if got := mgr.Count(); got != tc.wantCount {
				t.Errorf("Count() = %d, want %d", got, tc.wantCount)
			}
		})
	}
}

func TestLoadOrder(t *testing.T) {
	t.Parallel()

	// Written out of order; load must sort lexicographically.
	mgr := newTestManager(t, "c.txt", "a.txt", "b.txt")

	want := []string{"a.txt", "b.txt", "c.txt"}

	for i, name := range want {
		if got := filepath.Base(mgr.files[i]); got != name {
			t.Errorf("files[%d] = %q, want %q", i, got, name)
		}
	}
}

func TestRotateNextCyclic(t *testing.T) {
	t.Parallel()

	for _, count := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("size_%d", count), func(t *testing.T) {
			t.Parallel()

			names := make([]string, count)
			for i := range count {
				names[i] = fmt.Sprintf("cookie%02d.txt", i)
			}

			mgr := newTestManager(t, names...)
			original := mgr.Current()

			for range count {
				mgr.RotateNext()
			}

			if got := mgr.Current(); got != original {
				t.Errorf("after %d rotations Current() = %q, want %q", count, got, original)
			}
		})
	}
}

func TestEmptySet(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t)

	if got := mgr.Current(); got != "" {
		t.Errorf("Current() = %q, want empty", got)
	}

	if got := mgr.RotateNext(); got != "" {
		t.Errorf("RotateNext() = %q, want empty", got)
	}
}

func TestRotateNextAdvances(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t, "a.txt", "b.txt")

	first := mgr.Current()
	second := mgr.RotateNext()

	if first == second {
		t.Errorf("RotateNext() did not advance: %q", second)
	}

	if got := mgr.Current(); got != second {
		t.Errorf("Current() = %q, want %q", got, second)
	}
}

func TestIsBlockedError(t *testing.T) {
	t.Parallel()

	mgr := newTestManager(t)

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "429 anywhere in message",
			err:  errors.New("got unexpected response 429 from upstream"),
			want: true,
		},
		{
			name: "403 numeric code",
			err:  errors.New("HTTP Error 403: Forbidden"),
			want: true,
		},
		{
			name: "503 numeric code",
			err:  errors.New("service returned 503"),
			want: true,
		},
		{
			name: "404 is not blocking",
			err:  errors.New("HTTP Error 404: Not Found"),
			want: false,
		},
		{
			name: "extraction error with keyword",
			err:  &extractor.Error{Kind: extractor.KindDownload, Message: "unable to extract player response"},
			want: true,
		},
		{
			name: "extraction error with rate limit keyword",
			err:  &extractor.Error{Kind: extractor.KindExtractor, Message: "rate limit exceeded, slow down"},
			want: true,
		},
		{
			name: "keyword without extraction family or code",
			err:  errors.New("rate limit exceeded"),
			want: false,
		},
		{
			name: "plain error",
			err:  errors.New("something else went wrong"),
			want: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := mgr.IsBlockedError(tc.err); got != tc.want {
				t.Errorf("IsBlockedError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
