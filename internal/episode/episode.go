package episode

import (
	"fmt"

	"trajconv/internal/media/frames"
)

// Required file names inside a trajectory folder.
const (
	StateFileName       = "eef_poses.npy"
	ActionFileName      = "actions.npy"
	InstructionFileName = "language_text.txt"
)

// Observation pairs the camera frame with the end-effector state for one
// timestep.
type Observation struct {
	// Image is the main camera RGB frame, stored as decoded.
	Image frames.Frame
	// State is the end-effector state: 3x XYZ, 3x roll-pitch-yaw, 1x gripper.
	State []float32
}

// Step is a single timestep record within an episode.
type Step struct {
	Observation Observation
	// Action is the commanded robot action: 3x XYZ delta, 3x roll-pitch-yaw
	// delta, 1x gripper absolute.
	Action              []float32
	IsFirst             bool
	IsLast              bool
	LanguageInstruction string
}

// Metadata describes a whole trajectory.
type Metadata struct {
	FilePath    string
	HasLanguage bool
}

// Episode is the ordered step sequence for one trajectory. Key is the
// trajectory path and identifies the episode to the dataset writer.
type Episode struct {
	Key      string
	Steps    []Step
	Metadata Metadata
}

// ConsistencyError reports a frame/state/action count mismatch for a
// trajectory.
type ConsistencyError struct {
	Path    string
	Frames  int
	States  int
	Actions int
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("episode: length mismatch in %s: %d frames, %d states, %d actions",
		e.Path, e.Frames, e.States, e.Actions)
}
