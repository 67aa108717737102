package fetch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseJSON3(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data string
		want string
	}{
		{
			name: "single event single segment",
			data: `{"events":[{"segs":[{"utf8":"hello world"}]}]}`,
			want: "hello world",
		},
		{
			name: "segments concatenated, events joined by space",
			data: `{"events":[{"segs":[{"utf8":"hel"},{"utf8":"lo"}]},{"segs":[{"utf8":"world"}]}]}`,
			want: "hello world",
		},
		{
			name: "whitespace runs collapsed",
			data: `{"events":[{"segs":[{"utf8":"one\n two"}]},{"segs":[{"utf8":"  three\t"}]}]}`,
			want: "one two three",
		},
		{
			name: "events without segments skipped",
			data: `{"events":[{"segs":[]},{"segs":[{"utf8":"text"}]},{}]}`,
			want: "text",
		},
		{
			name: "whitespace-only document",
			data: `{"events":[{"segs":[{"utf8":" \n "}]}]}`,
			want: "",
		},
		{
			name: "empty document",
			data: `{}`,
			want: "",
		},
		{
			name: "malformed json",
			data: `{"events":[`,
			want: "",
		},
		{
			name: "not json at all",
			data: `<html>429 Too Many Requests</html>`,
			want: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := ParseJSON3([]byte(tc.data)); got != tc.want {
				t.Errorf("ParseJSON3() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseJSON3File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "abc.en.json3")

	if err := os.WriteFile(path, []byte(`{"events":[{"segs":[{"utf8":"from file"}]}]}`), 0o644); err != nil {
		t.Fatalf("write timed-text file: %v", err)
	}

	if got := ParseJSON3File(path); got != "from file" {
		t.Errorf("ParseJSON3File() = %q, want %q", got, "from file")
	}

	if got := ParseJSON3File(filepath.Join(dir, "missing.json3")); got != "" {
		t.Errorf("ParseJSON3File(missing) = %q, want empty", got)
	}
}
