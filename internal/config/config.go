// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	App     App
	Harvest Harvest
	Dir     Dir
	Hub     Hub
	HTTP    HTTP
}

// App holds application-wide configuration.
type App struct {
	LogLevel string `env:"YTHARVEST_APP_LOG_LEVEL" envDefault:"info"`
}

// Harvest holds batch-processing configuration.
type Harvest struct {
	// SubsDelay is the throttle sleep before each caption sub-call.
	SubsDelay time.Duration `env:"YTHARVEST_SUBS_DELAY" envDefault:"500ms"`
	// CaptionLangs are the subtitle language codes fetched per video.
	CaptionLangs []string `env:"YTHARVEST_CAPTION_LANGS" envDefault:"en,ru"`
	// BatchSize is how many videos are processed between checkpoint saves.
	BatchSize int `env:"YTHARVEST_BATCH_SIZE" envDefault:"20"`
	// ShardSize is the maximum number of video entries per shard file.
	ShardSize int `env:"YTHARVEST_SHARD_SIZE" envDefault:"500"`
	// UploadMinInterval gates remote uploads of the same artifact.
	UploadMinInterval time.Duration `env:"YTHARVEST_UPLOAD_MIN_INTERVAL" envDefault:"150s"`
}

// Dir holds file and directory paths.
type Dir struct {
	// Cookies must contain Netscape-format cookie files, one per account.
	// see: https://github.com/yt-dlp/yt-dlp/wiki/FAQ#how-do-i-pass-cookies-to-yt-dlp
	Cookies string `env:"YTHARVEST_DIR_COOKIES" envDefault:"./cookies"`
	// Tmp holds the active shard and caption scratch directories.
	Tmp string `env:"YTHARVEST_DIR_TMP" envDefault:"./tmp_dir"`
	// Sequence is the master sequence file. A trailing .xz is decompressed transparently.
	Sequence string `env:"YTHARVEST_SEQUENCE_PATH" envDefault:"./sequence.json"`
	// Progress is the local progress file.
	Progress string `env:"YTHARVEST_PROGRESS_PATH" envDefault:"./progress.json"`
}

// SetAbsPaths converts all paths to absolute paths.
func (d *Dir) SetAbsPaths() error {
	var err error
	if d.Cookies, err = filepath.Abs(d.Cookies); err != nil {
		return fmt.Errorf("cookies: %w", err)
	}

	if d.Tmp, err = filepath.Abs(d.Tmp); err != nil {
		return fmt.Errorf("tmp: %w", err)
	}

	if d.Sequence, err = filepath.Abs(d.Sequence); err != nil {
		return fmt.Errorf("sequence: %w", err)
	}

	if d.Progress, err = filepath.Abs(d.Progress); err != nil {
		return fmt.Errorf("progress: %w", err)
	}

	return nil
}

// Hub holds remote dataset store configuration.
type Hub struct {
	// Repo is the dataset repository id, e.g. "user/yt_dlp". Empty disables uploads.
	Repo     string `env:"YTHARVEST_HUB_REPO"     envDefault:""`
	Token    string `env:"YTHARVEST_HUB_TOKEN"    envDefault:""`
	Endpoint string `env:"YTHARVEST_HUB_ENDPOINT" envDefault:"https://huggingface.co"`
}

// Enabled reports whether a remote repository is configured.
func (h Hub) Enabled() bool {
	return h.Repo != ""
}

// HTTP holds the optional metrics endpoint configuration.
type HTTP struct {
	// MetricsAddr serves Prometheus metrics when non-empty, e.g. ":9090".
	MetricsAddr     string        `env:"YTHARVEST_HTTP_METRICS_ADDR"     envDefault:""`
	ShutdownTimeout time.Duration `env:"YTHARVEST_HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// New loads configuration from environment variables.
func New() (*Config, error) {
	cfg := &Config{}

	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	err = cfg.Dir.SetAbsPaths()
	if err != nil {
		return nil, fmt.Errorf("set absolute paths: %w", err)
	}

	return cfg, nil
}
