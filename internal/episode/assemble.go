package episode

import (
	"context"
	"log/slog"
	"path/filepath"

	"trajconv/internal/logging"
	"trajconv/internal/media/frames"
	"trajconv/internal/npy"
)

// FrameSource decodes every frame of a trajectory video in order.
type FrameSource interface {
	Decode(ctx context.Context, dir string) ([]frames.Frame, error)
}

// Assembler builds episodes from trajectory folders. It is stateless and
// safe for concurrent use; every invocation opens and closes its own
// decoder and file handles.
type Assembler struct {
	Frames FrameSource
	Logger *slog.Logger
}

// Assemble converts the trajectory at dir into an episode. Any missing
// required input or count mismatch fails the trajectory as a whole.
func (a Assembler) Assemble(ctx context.Context, dir string) (*Episode, error) {
	logger := logging.WithComponent(a.Logger, "assemble")

	decoded, err := a.Frames.Decode(ctx, dir)
	if err != nil {
		return nil, err
	}

	states, err := npy.LoadMatrix(filepath.Join(dir, StateFileName))
	if err != nil {
		return nil, err
	}
	actions, err := npy.LoadMatrix(filepath.Join(dir, ActionFileName))
	if err != nil {
		return nil, err
	}

	instruction, err := LoadInstruction(dir)
	if err != nil {
		return nil, err
	}

	if len(decoded) != states.Rows || states.Rows != actions.Rows {
		return nil, &ConsistencyError{
			Path:    dir,
			Frames:  len(decoded),
			States:  states.Rows,
			Actions: actions.Rows,
		}
	}

	steps := make([]Step, 0, actions.Rows)
	for i := 0; i < actions.Rows; i++ {
		steps = append(steps, Step{
			Observation: Observation{
				Image: decoded[i],
				State: states.Row(i),
			},
			Action:              actions.Row(i),
			IsFirst:             i == 0,
			IsLast:              i == actions.Rows-1,
			LanguageInstruction: instruction,
		})
	}

	logger.Debug("episode assembled",
		logging.String("path", dir),
		logging.Int("steps", len(steps)),
		logging.Bool("has_language", instruction != ""),
	)

	return &Episode{
		Key:   dir,
		Steps: steps,
		Metadata: Metadata{
			FilePath:    dir,
			HasLanguage: instruction != "",
		},
	}, nil
}
