package discover

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"trajconv/internal/logging"
)

// Locator finds trajectory directories beneath a manual download root.
type Locator struct {
	// ManualDir is the root of the raw trajectory tree.
	ManualDir string
	// Depth is the number of directory levels between ManualDir and each
	// trajectory folder, inclusive of the trajectory folder itself.
	Depth int
	// Prefix selects trajectory folders by name (immediate children only).
	Prefix string
	// TrainProportion is the per-directory fraction assigned to train.
	TrainProportion float64

	Logger *slog.Logger
}

// Splits holds ordered trajectory paths partitioned by dataset split.
type Splits struct {
	Train []string
	Val   []string
}

// Total returns the combined number of located trajectories.
func (s Splits) Total() int {
	return len(s.Train) + len(s.Val)
}

// Locate walks the manual directory and returns the discovered trajectory
// paths. Within each parent directory the first floor(n*TrainProportion)
// matches go to train and the remainder to val, preserving glob order.
func (l Locator) Locate() (Splits, error) {
	if l.Depth < 1 {
		return Splits{}, fmt.Errorf("discover: depth must be at least 1, got %d", l.Depth)
	}
	logger := logging.WithComponent(l.Logger, "discover")

	parents, err := l.parentDirs()
	if err != nil {
		return Splits{}, err
	}

	var splits Splits
	for _, parent := range parents {
		pattern := filepath.Join(parent, l.Prefix+"*")
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return Splits{}, fmt.Errorf("discover: glob %q: %w", pattern, err)
		}
		trajectories := keepDirs(matches)
		if len(trajectories) == 0 {
			logger.Warn("no trajectories found", logging.String("search_path", pattern))
			continue
		}

		cut := int(float64(len(trajectories)) * l.TrainProportion)
		splits.Train = append(splits.Train, trajectories[:cut]...)
		splits.Val = append(splits.Val, trajectories[cut:]...)
	}

	logger.Info("discovery complete",
		logging.Int("train", len(splits.Train)),
		logging.Int("val", len(splits.Val)),
	)
	return splits, nil
}

// parentDirs expands one wildcard per intermediate level and returns the
// directories that may contain trajectory folders.
func (l Locator) parentDirs() ([]string, error) {
	levels := make([]string, 0, l.Depth)
	levels = append(levels, l.ManualDir)
	for i := 0; i < l.Depth-1; i++ {
		levels = append(levels, "*")
	}
	pattern := filepath.Join(levels...)

	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("discover: glob %q: %w", pattern, err)
	}
	return keepDirs(matches), nil
}

func keepDirs(paths []string) []string {
	dirs := paths[:0]
	for _, path := range paths {
		if strings.HasPrefix(filepath.Base(path), ".") {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		dirs = append(dirs, path)
	}
	return dirs
}
