package convert

import (
	"context"
	"log/slog"
	"time"

	"trajconv/internal/config"
	"trajconv/internal/dataset"
	"trajconv/internal/discover"
	"trajconv/internal/episode"
)

// Converter implements dataset.Source over a manual trajectory tree.
type Converter struct {
	schema    dataset.Schema
	splits    discover.Splits
	assembler episode.Assembler
	timeout   time.Duration
}

// New locates every trajectory beneath the configured manual directory and
// returns a source ready for the builder. frameSource is the video decoder;
// production callers pass frames.Decoder.
func New(cfg *config.Config, frameSource episode.FrameSource, logger *slog.Logger) (*Converter, error) {
	locator := discover.Locator{
		ManualDir:       cfg.Paths.ManualDir,
		Depth:           cfg.Discovery.Depth,
		Prefix:          cfg.Discovery.TrajPrefix,
		TrainProportion: cfg.Discovery.TrainProportion,
		Logger:          logger,
	}
	splits, err := locator.Locate()
	if err != nil {
		return nil, err
	}

	return &Converter{
		schema: dataset.NewSchema(cfg.Dataset),
		splits: splits,
		assembler: episode.Assembler{
			Frames: frameSource,
			Logger: logger,
		},
		timeout: cfg.DecodeTimeout(),
	}, nil
}

// Schema implements dataset.Source.
func (c *Converter) Schema() dataset.Schema {
	return c.schema
}

// Tasks implements dataset.Source.
func (c *Converter) Tasks(split dataset.Split) []string {
	if split == dataset.SplitVal {
		return c.splits.Val
	}
	return c.splits.Train
}

// Splits returns the discovery result backing Tasks.
func (c *Converter) Splits() discover.Splits {
	return c.splits
}

// Process implements dataset.Source. Each trajectory gets its own decode
// deadline so one stuck decoder cannot stall the whole run.
func (c *Converter) Process(ctx context.Context, path string) (*episode.Episode, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.assembler.Assemble(ctx, path)
}
