package convert_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"trajconv/internal/convert"
	"trajconv/internal/dataset"
	"trajconv/internal/episode"
	"trajconv/internal/media/frames"
	"trajconv/internal/testsupport"
)

func TestConverterDiscoversAndProcesses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Discovery.Depth = 3
	cfg.Discovery.TrainProportion = 0.5

	stub := testsupport.FrameStub{StepsByDir: map[string]int{}}
	for _, name := range []string{"traj0", "traj1", "traj2", "traj3"} {
		dir := filepath.Join(cfg.Paths.ManualDir, "lab", "session1", name)
		testsupport.WriteTrajectory(t, dir, testsupport.TrajectorySpec{Steps: 2, Instruction: "open the drawer"})
		stub.StepsByDir[dir] = 2
	}

	conv, err := convert.New(cfg, stub, testsupport.NewLogger(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	train := conv.Tasks(dataset.SplitTrain)
	val := conv.Tasks(dataset.SplitVal)
	if len(train) != 2 || len(val) != 2 {
		t.Fatalf("splits = %d/%d, want 2/2 at proportion 0.5", len(train), len(val))
	}
	if conv.Splits().Total() != 4 {
		t.Fatalf("total = %d, want 4", conv.Splits().Total())
	}

	ep, err := conv.Process(context.Background(), train[0])
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if ep.Key != train[0] || len(ep.Steps) != 2 {
		t.Fatalf("episode = key %q with %d steps", ep.Key, len(ep.Steps))
	}
	if !ep.Metadata.HasLanguage || ep.Steps[0].LanguageInstruction != "open the drawer" {
		t.Errorf("instruction not carried: %+v", ep.Metadata)
	}
}

func TestConverterSchemaFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Discovery.Depth = 1
	cfg.Dataset.Name = "bench_dataset"

	conv, err := convert.New(cfg, testsupport.FrameStub{}, testsupport.NewLogger(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := conv.Schema().Name; got != "bench_dataset" {
		t.Fatalf("schema name = %q", got)
	}
}

func TestConverterProcessFailurePropagates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Discovery.Depth = 1

	decodeErr := errors.New("moov atom not found")
	conv, err := convert.New(cfg, testsupport.FrameStub{Err: decodeErr}, testsupport.NewLogger(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := conv.Process(context.Background(), "/missing/traj0"); !errors.Is(err, decodeErr) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

// stalledFrames blocks until the context expires, modeling a hung decoder.
type stalledFrames struct{}

func (stalledFrames) Decode(ctx context.Context, _ string) ([]frames.Frame, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestConverterProcessTimeout(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Discovery.Depth = 1
	cfg.Builder.DecodeTimeoutSeconds = 1

	dir := filepath.Join(cfg.Paths.ManualDir, "traj0")
	testsupport.WriteTrajectory(t, dir, testsupport.TrajectorySpec{Steps: 1})

	conv, err := convert.New(cfg, stalledFrames{}, testsupport.NewLogger(t))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := conv.Process(context.Background(), dir); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

var _ dataset.Source = (*convert.Converter)(nil)

var _ episode.FrameSource = stalledFrames{}
