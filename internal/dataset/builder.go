package dataset

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"trajconv/internal/episode"
	"trajconv/internal/logging"
	"trajconv/internal/manifest"
	"trajconv/internal/runlock"
)

// InfoFileName is the dataset descriptor written next to the shards.
const InfoFileName = "dataset_info.json"

// Source supplies the builder with a schema, the trajectory paths for each
// split, and a way to turn one path into an episode. Process must be safe
// for concurrent calls.
type Source interface {
	Schema() Schema
	Tasks(split Split) []string
	Process(ctx context.Context, path string) (*episode.Episode, error)
}

// Builder converts every discovered trajectory into sharded output.
type Builder struct {
	OutputDir   string
	Workers     int
	ChunkSize   int
	JPEGQuality int
	// WriteVal controls whether the val split is materialized. The split is
	// always counted and recorded in the manifest.
	WriteVal bool
	Store    *manifest.Store
	Logger   *slog.Logger
}

// RunStats summarizes a completed run.
type RunStats struct {
	RunID     string
	Succeeded int
	Failed    int
	Duration  time.Duration
	Splits    map[Split]SplitStats
}

// Info is the dataset_info.json document.
type Info struct {
	Schema      Schema               `json:"schema"`
	Splits      map[Split]SplitStats `json:"splits"`
	RunID       string               `json:"run_id"`
	GeneratedAt time.Time            `json:"generated_at"`
}

type taskResult struct {
	path    string
	split   Split
	episode *episode.Episode
	err     error
}

// Run drives the full conversion: lock the output directory, fan the
// source's tasks across workers, collect episodes into shards, and record
// every attempt in the manifest. Individual trajectory failures are
// recorded and skipped; Run fails only on infrastructure errors.
func (b *Builder) Run(ctx context.Context, src Source) (RunStats, error) {
	logger := logging.WithComponent(b.Logger, "builder")

	schema := src.Schema()
	if err := schema.Validate(); err != nil {
		return RunStats{}, err
	}

	lock, err := runlock.Acquire(b.OutputDir)
	if err != nil {
		return RunStats{}, err
	}
	defer func() { _ = lock.Release() }()

	trainTasks := src.Tasks(SplitTrain)
	valTasks := src.Tasks(SplitVal)

	runID := uuid.NewString()
	if err := b.Store.StartRun(ctx, runID, len(trainTasks), len(valTasks)); err != nil {
		return RunStats{}, err
	}

	splits := []Split{SplitTrain}
	if b.WriteVal {
		splits = append(splits, SplitVal)
	} else if len(valTasks) > 0 {
		logger.Info("skipping val split",
			logging.Int("trajectories", len(valTasks)))
	}

	started := time.Now()
	stats := RunStats{RunID: runID, Splits: make(map[Split]SplitStats)}
	for _, split := range splits {
		tasks := trainTasks
		if split == SplitVal {
			tasks = valTasks
		}
		splitStats, succeeded, failed, err := b.runSplit(ctx, logger, src, runID, split, tasks)
		if err != nil {
			return RunStats{}, err
		}
		stats.Splits[split] = splitStats
		stats.Succeeded += succeeded
		stats.Failed += failed
	}
	stats.Duration = time.Since(started)

	if err := b.Store.FinishRun(ctx, runID, stats.Succeeded, stats.Failed); err != nil {
		return RunStats{}, err
	}
	if err := b.writeInfo(schema, runID, stats.Splits); err != nil {
		return RunStats{}, err
	}

	logger.Info("conversion finished",
		logging.String("run_id", runID),
		logging.Int("succeeded", stats.Succeeded),
		logging.Int("failed", stats.Failed),
		logging.Duration("duration", stats.Duration.Round(time.Millisecond)))
	return stats, nil
}

func (b *Builder) runSplit(ctx context.Context, logger *slog.Logger, src Source, runID string, split Split, tasks []string) (SplitStats, int, int, error) {
	schema := src.Schema()
	writer, err := NewShardWriter(b.OutputDir, schema.Name, split, b.ChunkSize, b.JPEGQuality)
	if err != nil {
		return SplitStats{}, 0, 0, err
	}

	logger.Info("writing split",
		logging.String("split", string(split)),
		logging.Int("trajectories", len(tasks)),
		logging.Int("workers", b.workerCount()))

	paths := make(chan string)
	results := make(chan taskResult)

	var wg sync.WaitGroup
	for i := 0; i < b.workerCount(); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				ep, err := src.Process(ctx, path)
				results <- taskResult{path: path, split: split, episode: ep, err: err}
			}
		}()
	}

	go func() {
		defer close(paths)
		for _, path := range tasks {
			select {
			case paths <- path:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	// An infrastructure error (writer or store) stops collection, but the
	// channel must still be drained so workers blocked on sends can exit.
	var succeeded, failed int
	var collectErr error
	for result := range results {
		if collectErr != nil {
			continue
		}
		if result.err != nil {
			failed++
			logger.Warn("trajectory failed",
				logging.String("path", result.path),
				logging.Error(result.err))
			if err := b.Store.RecordEpisode(ctx, manifest.Record{
				RunID:        runID,
				Key:          result.path,
				Split:        string(split),
				Status:       manifest.StatusFailed,
				ErrorMessage: result.err.Error(),
			}); err != nil {
				collectErr = err
			}
			continue
		}

		shard, err := writer.Append(result.episode)
		if err != nil {
			collectErr = err
			continue
		}
		succeeded++
		if err := b.Store.RecordEpisode(ctx, manifest.Record{
			RunID:       runID,
			Key:         result.episode.Key,
			Split:       string(split),
			Status:      manifest.StatusCompleted,
			Steps:       len(result.episode.Steps),
			HasLanguage: result.episode.Metadata.HasLanguage,
			Shard:       shard,
		}); err != nil {
			collectErr = err
		}
	}
	if collectErr != nil {
		return SplitStats{}, 0, 0, collectErr
	}

	if err := ctx.Err(); err != nil {
		return SplitStats{}, 0, 0, fmt.Errorf("conversion interrupted: %w", err)
	}

	splitStats, err := writer.Finalize()
	if err != nil {
		return SplitStats{}, 0, 0, err
	}
	return splitStats, succeeded, failed, nil
}

func (b *Builder) workerCount() int {
	if b.Workers < 1 {
		return 1
	}
	return b.Workers
}

func (b *Builder) writeInfo(schema Schema, runID string, splits map[Split]SplitStats) error {
	info := Info{
		Schema:      schema,
		Splits:      splits,
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
	}
	payload, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", InfoFileName, err)
	}
	path := filepath.Join(b.OutputDir, InfoFileName)
	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", InfoFileName, err)
	}
	return nil
}
