package dataset

import (
	"fmt"

	"trajconv/internal/config"
)

// Split names a dataset partition.
type Split string

const (
	SplitTrain Split = "train"
	SplitVal   Split = "val"
)

// Feature dtypes.
const (
	DTypeUint8   = "uint8"
	DTypeFloat32 = "float32"
	DTypeBool    = "bool"
	DTypeString  = "string"
)

// Feature declares one field of a step or metadata record.
type Feature struct {
	Name     string `json:"name"`
	DType    string `json:"dtype"`
	Shape    []int  `json:"shape,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Doc      string `json:"doc,omitempty"`
}

// Schema declares the full record layout of the emitted dataset.
type Schema struct {
	Name            string    `json:"name"`
	Version         string    `json:"version"`
	Steps           []Feature `json:"steps"`
	EpisodeMetadata []Feature `json:"episode_metadata"`
}

// NewSchema builds the fixed step/metadata schema with geometry and vector
// widths taken from config.
func NewSchema(cfg config.Dataset) Schema {
	return Schema{
		Name:    cfg.Name,
		Version: cfg.Version,
		Steps: []Feature{
			{
				Name:     "observation/image_0",
				DType:    DTypeUint8,
				Shape:    []int{cfg.ImageHeight, cfg.ImageWidth, 3},
				Encoding: "jpeg",
				Doc:      "Main camera RGB observation (fixed position).",
			},
			{
				Name:  "observation/state",
				DType: DTypeFloat32,
				Shape: []int{cfg.StateDim},
				Doc:   "Robot end effector state, consists of [3x XYZ, 3x roll-pitch-yaw, 1x gripper]",
			},
			{
				Name:  "action",
				DType: DTypeFloat32,
				Shape: []int{cfg.ActionDim},
				Doc:   "Robot action, consists of [3x XYZ delta, 3x roll-pitch-yaw delta, 1x gripper absolute].",
			},
			{
				Name:  "is_first",
				DType: DTypeBool,
				Doc:   "True on first step of the episode.",
			},
			{
				Name:  "is_last",
				DType: DTypeBool,
				Doc:   "True on last step of the episode.",
			},
			{
				Name:  "language_instruction",
				DType: DTypeString,
				Doc:   "Language Instruction.",
			},
		},
		EpisodeMetadata: []Feature{
			{
				Name:  "file_path",
				DType: DTypeString,
				Doc:   "Path to the original data file.",
			},
			{
				Name:  "has_language",
				DType: DTypeBool,
				Doc:   "True if language exists in observation, otherwise empty string.",
			},
		},
	}
}

// Validate checks the schema declares every required field.
func (s Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema: name must be set")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("schema: no step features declared")
	}
	for _, feature := range append(append([]Feature{}, s.Steps...), s.EpisodeMetadata...) {
		if feature.Name == "" || feature.DType == "" {
			return fmt.Errorf("schema: feature missing name or dtype: %+v", feature)
		}
	}
	return nil
}
