package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"trajconv/internal/episode"
	"trajconv/internal/media/frames"
)

// TrajectorySpec describes a synthetic trajectory folder.
type TrajectorySpec struct {
	// Steps drives the row count of both array files unless overridden.
	Steps int
	// Instruction, when non-empty, is written to language_text.txt.
	Instruction string
	// StateRows/ActionRows override the row counts to build mismatched
	// fixtures. Zero means "use Steps".
	StateRows  int
	ActionRows int
}

// WriteTrajectory creates dir and fills it with eef_poses.npy, actions.npy,
// and an optional instruction file. Values are deterministic so assertions
// can recompute them: state[i][j] = i + j/10, action[i][j] = -(i) - j/10.
func WriteTrajectory(t testing.TB, dir string, spec TrajectorySpec) {
	t.Helper()

	if spec.StateRows == 0 {
		spec.StateRows = spec.Steps
	}
	if spec.ActionRows == 0 {
		spec.ActionRows = spec.Steps
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}

	writeMatrix(t, filepath.Join(dir, episode.StateFileName), spec.StateRows, func(i, j int) float64 {
		return float64(i) + float64(j)/10
	})
	writeMatrix(t, filepath.Join(dir, episode.ActionFileName), spec.ActionRows, func(i, j int) float64 {
		return -float64(i) - float64(j)/10
	})

	if spec.Instruction != "" {
		path := filepath.Join(dir, episode.InstructionFileName)
		if err := os.WriteFile(path, []byte(spec.Instruction+"\n"), 0o644); err != nil {
			t.Fatalf("write instruction: %v", err)
		}
	}
}

func writeMatrix(t testing.TB, path string, rows int, value func(i, j int) float64) {
	t.Helper()

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()

	if rows == 0 {
		if err := npyio.Write(file, []float64{}); err != nil {
			t.Fatalf("write empty npy %s: %v", path, err)
		}
		return
	}

	const cols = 7
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[i*cols+j] = value(i, j)
		}
	}
	if err := npyio.Write(file, mat.NewDense(rows, cols, data)); err != nil {
		t.Fatalf("write npy %s: %v", path, err)
	}
}

// FrameStub satisfies episode.FrameSource without spawning ffmpeg. Each
// frame is filled with its own index so ordering is observable.
type FrameStub struct {
	StepsByDir map[string]int
	Width      int
	Height     int
	Err        error
}

// Decode implements episode.FrameSource.
func (s FrameStub) Decode(_ context.Context, dir string) ([]frames.Frame, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	width, height := s.Width, s.Height
	if width <= 0 {
		width = 4
	}
	if height <= 0 {
		height = 4
	}
	count := s.StepsByDir[dir]
	decoded := make([]frames.Frame, 0, count)
	for i := 0; i < count; i++ {
		pix := make([]byte, width*height*3)
		for j := range pix {
			pix[j] = byte(i)
		}
		decoded = append(decoded, frames.Frame{Width: width, Height: height, Pix: pix})
	}
	return decoded, nil
}
