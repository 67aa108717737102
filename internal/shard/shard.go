// Package shard manages the size-bounded JSON shard files holding video
// records, including date-stamped naming, reuse of the latest remote
// shard, and time-gated uploads.
package shard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"ytharvest/internal/config"
	"ytharvest/internal/consts"
	"ytharvest/internal/entity"
	"ytharvest/internal/hub"
	"ytharvest/internal/observability"
)

const filePerm = 0o644

// Metadata is the shard's bookkeeping entry, excluded from video counts.
type Metadata struct {
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// Shard is one bounded-size mapping from video identifier to record.
type Shard struct {
	Path     string
	Metadata Metadata

	entries map[string]*entity.VideoRecord
}

// Name returns the shard's file name.
func (s *Shard) Name() string {
	return filepath.Base(s.Path)
}

// Count returns the number of video entries, excluding metadata.
func (s *Shard) Count() int {
	return len(s.entries)
}

// Set stores a record under the given video identifier.
func (s *Shard) Set(videoID string, record *entity.VideoRecord) {
	s.entries[videoID] = record
}

// Get returns the record stored under the given video identifier.
func (s *Shard) Get(videoID string) *entity.VideoRecord {
	return s.entries[videoID]
}

// Manager owns the active shard lifecycle: acquisition, local saves,
// gated uploads and rollover.
type Manager struct {
	log     *slog.Logger
	cfg     *config.Config
	store   hub.Store // nil when the remote store is disabled
	gate    *hub.Gate
	metrics *observability.Metrics
}

// NewManager creates a shard manager. store may be nil.
func NewManager(log *slog.Logger,
	cfg *config.Config,
	store hub.Store,
	gate *hub.Gate,
	metrics *observability.Metrics) *Manager {
	return &Manager{
		log:     log.With(slog.String("package", "shard")),
		cfg:     cfg,
		store:   store,
		gate:    gate,
		metrics: metrics,
	}
}

// Acquire returns the active shard. When a remote store is configured,
// the most recent shard is reused if it holds fewer than ShardSize
// entries; a full one is uploaded and evicted locally. Otherwise a fresh
// date-stamped shard is opened. Remote failures degrade to a fresh shard
// with a logged warning.
func (m *Manager) Acquire(ctx context.Context) *Shard {
	var remote []string

	if m.store != nil {
		files, err := m.store.ListFiles(ctx)
		if err != nil {
			m.log.Warn("list repo files", slog.Any("error", err))
		} else {
			remote = files

			if reused := m.reuseLatest(ctx, remote); reused != nil {
				m.log.Info("reusing latest shard",
					slog.String("shard", reused.Name()),
					slog.Int("video_count", reused.Count()))

				return reused
			}
		}
	}

	path := m.nextPath(remote)
	sh := load(m.log, path)

	m.log.Info("using data file", slog.String("shard", sh.Name()))

	return sh
}

// reuseLatest resolves the most recent shard by name and returns it when
// it has room. A local copy always wins over the remote one: uploads are
// gated, so the local file may hold entries the repository has not seen
// yet, and overwriting it with a stale download would lose them. Full
// shards are force-uploaded and removed locally. Returns nil when no
// reusable shard exists or a remote operation fails.
func (m *Manager) reuseLatest(ctx context.Context, files []string) *Shard {
	shardFiles := make([]string, 0, len(files))

	for _, file := range files {
		if strings.HasPrefix(file, consts.ShardPrefix) && strings.HasSuffix(file, consts.ShardSuffix) {
			shardFiles = append(shardFiles, file)
		}
	}

	if len(shardFiles) == 0 {
		return nil
	}

	sort.Strings(shardFiles)
	last := shardFiles[len(shardFiles)-1]

	localPath := filepath.Join(m.cfg.Dir.Tmp, last)

	if _, err := os.Stat(localPath); err != nil {
		if localPath, err = m.store.DownloadFile(ctx, last, m.cfg.Dir.Tmp); err != nil {
			m.log.Warn("download shard", slog.String("shard", last), slog.Any("error", err))

			return nil
		}
	}

	sh := load(m.log, localPath)
	if sh.Count() < m.cfg.Harvest.ShardSize {
		return sh
	}

	// The latest shard is already full: push the authoritative copy back,
	// bypassing the upload gate, and evict it locally.
	if err := m.store.UploadFile(ctx, localPath, last); err != nil {
		m.log.Warn("upload full shard", slog.String("shard", last), slog.Any("error", err))
		m.metrics.RecordUpload(last, "error")
	} else {
		m.metrics.RecordUpload(last, "ok")
	}

	if err := os.Remove(localPath); err != nil {
		m.log.Warn("remove full shard", slog.String("shard", last), slog.Any("error", err))
	}

	return nil
}

// nextPath returns the first unused date-stamped shard path, appending a
// numeric suffix on collision. Names already present in the repository
// count as used even when no local file exists: they belong to evicted
// full shards, and reusing one would overwrite it on the next upload.
func (m *Manager) nextPath(remote []string) string {
	taken := make(map[string]bool, len(remote))
	for _, name := range remote {
		taken[name] = true
	}

	date := time.Now().Format(time.DateOnly)

	for counter := 1; ; counter++ {
		name := consts.ShardPrefix + date + consts.ShardSuffix
		if counter > 1 {
			name = fmt.Sprintf("%s%s_%d%s", consts.ShardPrefix, date, counter, consts.ShardSuffix)
		}

		if taken[name] {
			continue
		}

		path := filepath.Join(m.cfg.Dir.Tmp, name)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
	}
}

// Save persists the shard locally and uploads it when the upload gate
// allows. Remote failures are logged and swallowed; the local save is
// authoritative.
func (m *Manager) Save(ctx context.Context, s *Shard) error {
	s.Metadata.UpdatedAt = time.Now().Format(time.RFC3339)

	payload := make(map[string]any, s.Count()+1)
	for id, record := range s.entries {
		payload[id] = record
	}

	payload["_metadata"] = s.Metadata

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal shard: %w", err)
	}

	if err := os.WriteFile(s.Path, data, filePerm); err != nil {
		return fmt.Errorf("write shard: %w", err)
	}

	m.metrics.SetShardEntries(s.Count())

	if m.store == nil || !m.gate.Allow(s.Name()) {
		m.log.Debug("shard saved locally, upload gated", slog.String("shard", s.Name()))

		return nil
	}

	if err := m.store.UploadFile(ctx, s.Path, s.Name()); err != nil {
		m.log.Warn("upload shard", slog.String("shard", s.Name()), slog.Any("error", err))
		m.metrics.RecordUpload(s.Name(), "error")

		return nil
	}

	m.metrics.RecordUpload(s.Name(), "ok")

	return nil
}

// load reads a shard file. A missing or corrupt file yields a fresh shard
// with creation metadata; corruption is logged.
func load(log *slog.Logger, path string) *Shard {
	sh := &Shard{
		Path:     path,
		Metadata: Metadata{CreatedAt: time.Now().Format(time.RFC3339)},
		entries:  make(map[string]*entity.VideoRecord),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("shard file unreadable, starting fresh",
				slog.String("path", path), slog.Any("error", err))
		}

		return sh
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Warn("shard file corrupt, starting fresh",
			slog.String("path", path), slog.Any("error", err))

		return sh
	}

	if meta, ok := raw["_metadata"]; ok {
		_ = json.Unmarshal(meta, &sh.Metadata)
	}

	for id, msg := range raw {
		if id == "_metadata" {
			continue
		}

		var record entity.VideoRecord
		if err := json.Unmarshal(msg, &record); err != nil {
			log.Warn("skipping malformed shard entry", slog.String("video_id", id))

			continue
		}

		sh.entries[id] = &record
	}

	return sh
}
