// Package processor runs the resumable batch-processing loop: it plans
// the pending queue from the master sequence and the progress set, fetches
// videos strictly one at a time, checkpoints at a fixed cadence and rolls
// the active shard when full.
package processor

import (
	"context"
	"fmt"
	"log/slog"

	"ytharvest/internal/config"
	"ytharvest/internal/consts"
	"ytharvest/internal/entity"
	"ytharvest/internal/hub"
	"ytharvest/internal/observability"
	"ytharvest/internal/progress"
	"ytharvest/internal/sequence"
	"ytharvest/internal/shard"
	"ytharvest/pkg/urls"
)

// Fetcher resolves one video URL into a record, or nil for a definitive
// empty result.
type Fetcher interface {
	Fetch(ctx context.Context, videoURL string) *entity.VideoRecord
}

// Processor owns the progress set and the active shard for one run.
type Processor struct {
	log     *slog.Logger
	cfg     *config.Config
	fetcher Fetcher
	shards  *shard.Manager
	store   hub.Store // nil when the remote store is disabled
	gate    *hub.Gate
	metrics *observability.Metrics
}

// New creates a batch processor. store may be nil.
func New(log *slog.Logger,
	cfg *config.Config,
	fetcher Fetcher,
	shards *shard.Manager,
	store hub.Store,
	gate *hub.Gate,
	metrics *observability.Metrics) *Processor {
	return &Processor{
		log:     log.With(slog.String("package", "processor")),
		cfg:     cfg,
		fetcher: fetcher,
		shards:  shards,
		store:   store,
		gate:    gate,
		metrics: metrics,
	}
}

// Run processes the currently pending backlog once. It returns an error
// only when the master sequence cannot be loaded or the context is
// cancelled; per-video failures degrade to empty results and are still
// marked processed.
func (p *Processor) Run(ctx context.Context) error {
	prog := progress.Load(p.log, p.cfg.Dir.Progress)
	p.log.Info("progress loaded", slog.Int("processed", prog.Len()))
	p.metrics.SetProcessedVideos(prog.Len())

	active := p.shards.Acquire(ctx)

	allIDs, err := sequence.Load(p.log, p.cfg.Dir.Sequence)
	if err != nil {
		return fmt.Errorf("load sequence: %w", err)
	}

	pending := make([]string, 0, len(allIDs))

	for _, videoID := range allIDs {
		if !prog.Contains(videoID) {
			pending = append(pending, videoID)
		}
	}

	if len(pending) == 0 {
		p.log.Info("no new videos to process",
			slog.Int("sequence_total", len(allIDs)),
			slog.Int("processed", prog.Len()))

		return nil
	}

	p.log.Info("found new videos to process", slog.Int("pending", len(pending)))

	processed := 0

	for i, videoID := range pending {
		select {
		case <-ctx.Done():
			p.log.Warn("shutting down mid-batch", slog.Any("error", ctx.Err()))
			p.finish(ctx, prog, active)

			return ctx.Err()
		default:
		}

		p.log.Info("processing video",
			slog.String("video_id", videoID),
			slog.Int("position", i+1),
			slog.Int("pending", len(pending)))

		record := p.fetcher.Fetch(ctx, urls.WatchURL(videoID))

		// A nil record during shutdown is an aborted fetch, not a
		// definitive empty result: leave the video unprocessed so the
		// next run retries it.
		if record == nil && ctx.Err() != nil {
			p.log.Warn("shutting down mid-fetch", slog.String("video_id", videoID))
			p.finish(ctx, prog, active)

			return ctx.Err()
		}

		if record != nil {
			active.Set(videoID, record)
			p.metrics.RecordVideoProcessed("ok")
			p.log.Info("video fetched", slog.String("video_id", videoID), "record", record)
		} else {
			p.metrics.RecordVideoProcessed("empty")
			p.log.Info("video empty", slog.String("video_id", videoID))
		}

		prog.Add(videoID)
		processed++
		p.metrics.SetProcessedVideos(prog.Len())

		checkpointed := processed%p.cfg.Harvest.BatchSize == 0
		if checkpointed {
			p.saveProgress(ctx, prog)
			p.saveShard(ctx, active)
		}

		if active.Count() >= p.cfg.Harvest.ShardSize {
			if !checkpointed {
				p.saveShard(ctx, active)
			}

			p.metrics.RecordShardRollover()

			active = p.shards.Acquire(ctx)
			p.log.Info("switched to new data file", slog.String("shard", active.Name()))
		}
	}

	p.finish(ctx, prog, active)

	return nil
}

// finish performs the final saves: the active shard when it holds any
// entries, and the progress set. Both remain subject to the upload gate.
func (p *Processor) finish(ctx context.Context, prog *progress.Set, active *shard.Shard) {
	if active.Count() > 0 {
		p.saveShard(ctx, active)
	}

	p.saveProgress(ctx, prog)
}

func (p *Processor) saveShard(ctx context.Context, active *shard.Shard) {
	if err := p.shards.Save(ctx, active); err != nil {
		p.log.Warn("save shard",
			slog.String("shard", active.Name()), slog.Any("error", err))

		return
	}

	p.log.Info("data file saved",
		slog.String("shard", active.Name()),
		slog.Int("video_count", active.Count()))
}

func (p *Processor) saveProgress(ctx context.Context, prog *progress.Set) {
	if err := prog.Save(p.cfg.Dir.Progress); err != nil {
		p.log.Warn("save progress", slog.Any("error", err))

		return
	}

	p.log.Info("progress saved", slog.Int("count", prog.Len()))

	if p.store == nil || !p.gate.Allow(consts.ProgressFilename) {
		return
	}

	if err := p.store.UploadFile(ctx, p.cfg.Dir.Progress, consts.ProgressFilename); err != nil {
		p.log.Warn("upload progress", slog.Any("error", err))
		p.metrics.RecordUpload(consts.ProgressFilename, "error")

		return
	}

	p.metrics.RecordUpload(consts.ProgressFilename, "ok")
}
