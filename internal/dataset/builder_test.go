package dataset_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"trajconv/internal/config"
	"trajconv/internal/dataset"
	"trajconv/internal/episode"
	"trajconv/internal/manifest"
	"trajconv/internal/runlock"
	"trajconv/internal/testsupport"
)

type fakeSource struct {
	schema dataset.Schema
	train  []string
	val    []string
	failOn map[string]error
	steps  int
	calls  atomic.Int64
}

func (f *fakeSource) Schema() dataset.Schema { return f.schema }

func (f *fakeSource) Tasks(split dataset.Split) []string {
	if split == dataset.SplitVal {
		return f.val
	}
	return f.train
}

func (f *fakeSource) Process(_ context.Context, path string) (*episode.Episode, error) {
	f.calls.Add(1)
	if err := f.failOn[path]; err != nil {
		return nil, err
	}
	return testEpisode(path, f.steps), nil
}

func newBuilder(t *testing.T) (*dataset.Builder, *manifest.Store) {
	t.Helper()
	dir := t.TempDir()
	store, err := manifest.Open(dir)
	if err != nil {
		t.Fatalf("open manifest: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return &dataset.Builder{
		OutputDir:   dir,
		Workers:     2,
		ChunkSize:   4,
		JPEGQuality: 90,
		Store:       store,
		Logger:      testsupport.NewLogger(t),
	}, store
}

func TestBuilderRun(t *testing.T) {
	builder, store := newBuilder(t)
	src := &fakeSource{
		schema: dataset.NewSchema(config.Default().Dataset),
		train:  []string{"/data/t0", "/data/t1", "/data/t2", "/data/t3", "/data/t4"},
		val:    []string{"/data/v0", "/data/v1"},
		steps:  2,
	}

	stats, err := builder.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Succeeded != 5 || stats.Failed != 0 {
		t.Fatalf("stats = %d/%d, want 5 succeeded 0 failed", stats.Succeeded, stats.Failed)
	}

	// Val split is counted but not materialized by default.
	train := stats.Splits[dataset.SplitTrain]
	if train.Episodes != 5 || train.Steps != 10 {
		t.Errorf("train split = %+v, want 5 episodes 10 steps", train)
	}
	if _, ok := stats.Splits[dataset.SplitVal]; ok {
		t.Error("val split materialized without WriteVal")
	}
	if len(train.Shards) != 2 {
		t.Errorf("got %d shards, want 2 with chunk size 4", len(train.Shards))
	}

	run, err := store.LatestRun(context.Background())
	if err != nil || run == nil {
		t.Fatalf("LatestRun: %v, %v", run, err)
	}
	if run.ID != stats.RunID {
		t.Errorf("manifest run %q, stats run %q", run.ID, stats.RunID)
	}
	if run.TrainTotal != 5 || run.ValTotal != 2 {
		t.Errorf("run totals = %d/%d, want 5/2", run.TrainTotal, run.ValTotal)
	}
	if run.Succeeded != 5 || run.Failed != 0 {
		t.Errorf("run outcome = %d/%d, want 5/0", run.Succeeded, run.Failed)
	}
	if run.FinishedAt.IsZero() {
		t.Error("run not stamped finished")
	}

	records, err := store.ListEpisodes(context.Background(), run.ID)
	if err != nil {
		t.Fatalf("ListEpisodes: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("manifest holds %d records, want 5", len(records))
	}
	for _, rec := range records {
		if rec.Status != manifest.StatusCompleted || rec.Shard == "" || rec.Steps != 2 {
			t.Errorf("record = %+v", rec)
		}
	}

	// Every manifest record must name the shard file that holds its episode,
	// including records written right after a chunk rotation.
	located := map[string]string{}
	for _, shard := range train.Shards {
		for _, ep := range readShard(t, filepath.Join(builder.OutputDir, shard.Name)) {
			located[ep.Key] = shard.Name
		}
	}
	for _, rec := range records {
		if located[rec.Key] != rec.Shard {
			t.Errorf("record %s names shard %q but episode is in %q", rec.Key, rec.Shard, located[rec.Key])
		}
	}
}

func TestBuilderRunIsolatesFailures(t *testing.T) {
	builder, store := newBuilder(t)
	src := &fakeSource{
		schema: dataset.NewSchema(config.Default().Dataset),
		train:  []string{"/data/t0", "/data/t1", "/data/t2"},
		failOn: map[string]error{"/data/t1": errors.New("video stream is corrupt")},
		steps:  1,
	}

	stats, err := builder.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Succeeded != 2 || stats.Failed != 1 {
		t.Fatalf("stats = %d/%d, want 2 succeeded 1 failed", stats.Succeeded, stats.Failed)
	}

	failed, err := store.FailedEpisodes(context.Background(), stats.RunID)
	if err != nil {
		t.Fatalf("FailedEpisodes: %v", err)
	}
	if len(failed) != 1 || failed[0].Key != "/data/t1" {
		t.Fatalf("failed records = %+v", failed)
	}
	if !strings.Contains(failed[0].ErrorMessage, "corrupt") {
		t.Errorf("error message = %q", failed[0].ErrorMessage)
	}
}

func TestBuilderRunWritesVal(t *testing.T) {
	builder, _ := newBuilder(t)
	builder.WriteVal = true
	src := &fakeSource{
		schema: dataset.NewSchema(config.Default().Dataset),
		train:  []string{"/data/t0"},
		val:    []string{"/data/v0", "/data/v1"},
		steps:  1,
	}

	stats, err := builder.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	val, ok := stats.Splits[dataset.SplitVal]
	if !ok || val.Episodes != 2 {
		t.Fatalf("val split = %+v, want 2 episodes", val)
	}
	for _, shard := range val.Shards {
		if _, err := os.Stat(filepath.Join(builder.OutputDir, shard.Name)); err != nil {
			t.Errorf("val shard missing: %v", err)
		}
	}
}

func TestBuilderWritesDatasetInfo(t *testing.T) {
	builder, _ := newBuilder(t)
	src := &fakeSource{
		schema: dataset.NewSchema(config.Default().Dataset),
		train:  []string{"/data/t0", "/data/t1"},
		steps:  1,
	}

	stats, err := builder.Run(context.Background(), src)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	payload, err := os.ReadFile(filepath.Join(builder.OutputDir, dataset.InfoFileName))
	if err != nil {
		t.Fatalf("read %s: %v", dataset.InfoFileName, err)
	}
	var info dataset.Info
	if err := json.Unmarshal(payload, &info); err != nil {
		t.Fatalf("decode %s: %v", dataset.InfoFileName, err)
	}
	if info.RunID != stats.RunID {
		t.Errorf("info run = %q, want %q", info.RunID, stats.RunID)
	}
	if info.Schema.Name != "soar_dataset" {
		t.Errorf("info schema name = %q", info.Schema.Name)
	}
	if info.Splits[dataset.SplitTrain].Episodes != 2 {
		t.Errorf("info train split = %+v", info.Splits[dataset.SplitTrain])
	}
	if info.GeneratedAt.IsZero() {
		t.Error("generated_at not stamped")
	}
}

func TestBuilderRunRefusesLockedOutput(t *testing.T) {
	builder, _ := newBuilder(t)
	lock, err := runlock.Acquire(builder.OutputDir)
	if err != nil {
		t.Fatalf("pre-acquire lock: %v", err)
	}
	defer lock.Release()

	src := &fakeSource{schema: dataset.NewSchema(config.Default().Dataset)}
	if _, err := builder.Run(context.Background(), src); !errors.Is(err, runlock.ErrHeld) {
		t.Fatalf("expected ErrHeld, got %v", err)
	}
}

func TestBuilderRunFinishesWorkersOnStoreError(t *testing.T) {
	builder, _ := newBuilder(t)
	builder.Workers = 4
	// Duplicate keys trip the manifest's (run_id, key) unique index partway
	// through collection. The remaining tasks must still be consumed so the
	// workers are not stranded on channel sends.
	src := &fakeSource{
		schema: dataset.NewSchema(config.Default().Dataset),
		train:  []string{"/data/t0", "/data/t0", "/data/t0", "/data/t0", "/data/t0", "/data/t0"},
		steps:  1,
	}

	if _, err := builder.Run(context.Background(), src); err == nil {
		t.Fatal("expected error from duplicate episode keys")
	}
	if got := src.calls.Load(); got != int64(len(src.train)) {
		t.Fatalf("processed %d trajectories, want %d", got, len(src.train))
	}
}

func TestBuilderRejectsInvalidSchema(t *testing.T) {
	builder, _ := newBuilder(t)
	src := &fakeSource{schema: dataset.Schema{}}
	if _, err := builder.Run(context.Background(), src); err == nil {
		t.Fatal("expected schema validation error")
	}
}
