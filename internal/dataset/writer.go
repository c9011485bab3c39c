package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"

	"trajconv/internal/episode"
)

// ShardInfo describes one finalized shard file.
type ShardInfo struct {
	Name     string `json:"name"`
	Episodes int    `json:"episodes"`
	Steps    int    `json:"steps"`
}

// SplitStats summarizes a written split.
type SplitStats struct {
	Episodes int         `json:"episodes"`
	Steps    int         `json:"steps"`
	Shards   []ShardInfo `json:"shards"`
}

// ShardWriter appends episodes to JSONL shard files, rotating after
// chunkSize episodes. Not safe for concurrent use; the builder funnels all
// writes through one goroutine.
type ShardWriter struct {
	dir         string
	name        string
	split       Split
	chunkSize   int
	jpegQuality int

	file    *os.File
	enc     *json.Encoder
	current ShardInfo
	stats   SplitStats
}

// NewShardWriter creates a writer for one split. Shards are named
// <name>-<split>.<index>.jsonl inside dir.
func NewShardWriter(dir, name string, split Split, chunkSize, jpegQuality int) (*ShardWriter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("shard writer: chunk size must be positive, got %d", chunkSize)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("shard writer: ensure directory: %w", err)
	}
	return &ShardWriter{
		dir:         dir,
		name:        name,
		split:       split,
		chunkSize:   chunkSize,
		jpegQuality: jpegQuality,
	}, nil
}

// Append serializes one episode and returns the name of the shard it was
// written to, rotating first when the open shard is full.
func (w *ShardWriter) Append(ep *episode.Episode) (string, error) {
	if err := w.ensureShard(); err != nil {
		return "", err
	}

	record, err := w.encodeEpisode(ep)
	if err != nil {
		return "", err
	}
	if err := w.enc.Encode(record); err != nil {
		return "", fmt.Errorf("shard writer: append %s: %w", ep.Key, err)
	}

	w.current.Episodes++
	w.current.Steps += len(ep.Steps)
	w.stats.Episodes++
	w.stats.Steps += len(ep.Steps)
	return w.current.Name, nil
}

// Finalize closes the open shard and returns split statistics.
func (w *ShardWriter) Finalize() (SplitStats, error) {
	if err := w.closeShard(); err != nil {
		return SplitStats{}, err
	}
	return w.stats, nil
}

func (w *ShardWriter) ensureShard() error {
	if w.file != nil && w.current.Episodes < w.chunkSize {
		return nil
	}
	if err := w.closeShard(); err != nil {
		return err
	}

	name := w.shardName(len(w.stats.Shards))
	path := filepath.Join(w.dir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("shard writer: open %s: %w", path, err)
	}
	w.file = file
	w.enc = json.NewEncoder(file)
	w.current = ShardInfo{Name: name}
	return nil
}

func (w *ShardWriter) closeShard() error {
	if w.file == nil {
		return nil
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("shard writer: close %s: %w", w.current.Name, err)
	}
	w.stats.Shards = append(w.stats.Shards, w.current)
	w.file = nil
	w.enc = nil
	w.current = ShardInfo{}
	return nil
}

func (w *ShardWriter) shardName(index int) string {
	return fmt.Sprintf("%s-%s.%05d.jsonl", w.name, w.split, index)
}

type episodeRecord struct {
	Key             string         `json:"key"`
	EpisodeMetadata metadataRecord `json:"episode_metadata"`
	Steps           []stepRecord   `json:"steps"`
}

type metadataRecord struct {
	FilePath    string `json:"file_path"`
	HasLanguage bool   `json:"has_language"`
}

type stepRecord struct {
	Observation         observationRecord `json:"observation"`
	Action              []float32         `json:"action"`
	IsFirst             bool              `json:"is_first"`
	IsLast              bool              `json:"is_last"`
	LanguageInstruction string            `json:"language_instruction"`
}

type observationRecord struct {
	// Image0 is JPEG bytes; encoding/json emits them base64-encoded.
	Image0 []byte    `json:"image_0"`
	State  []float32 `json:"state"`
}

func (w *ShardWriter) encodeEpisode(ep *episode.Episode) (episodeRecord, error) {
	steps := make([]stepRecord, 0, len(ep.Steps))
	for i, step := range ep.Steps {
		compressed, err := w.encodeFrame(step)
		if err != nil {
			return episodeRecord{}, fmt.Errorf("shard writer: encode frame %d of %s: %w", i, ep.Key, err)
		}
		steps = append(steps, stepRecord{
			Observation: observationRecord{
				Image0: compressed,
				State:  step.Observation.State,
			},
			Action:              step.Action,
			IsFirst:             step.IsFirst,
			IsLast:              step.IsLast,
			LanguageInstruction: step.LanguageInstruction,
		})
	}
	return episodeRecord{
		Key: ep.Key,
		EpisodeMetadata: metadataRecord{
			FilePath:    ep.Metadata.FilePath,
			HasLanguage: ep.Metadata.HasLanguage,
		},
		Steps: steps,
	}, nil
}

func (w *ShardWriter) encodeFrame(step episode.Step) ([]byte, error) {
	var buf bytes.Buffer
	quality := w.jpegQuality
	if quality <= 0 {
		quality = jpeg.DefaultQuality
	}
	if err := jpeg.Encode(&buf, step.Observation.Image, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
