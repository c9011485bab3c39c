package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"trajconv/internal/convert"
	"trajconv/internal/dataset"
	"trajconv/internal/logging"
	"trajconv/internal/manifest"
	"trajconv/internal/media/frames"
	"trajconv/internal/preflight"
	"trajconv/internal/textutil"
)

const convertLogName = "convert.log"

func newConvertCommand(cmdCtx *commandContext) *cobra.Command {
	var writeVal bool
	var workersFlag int
	var skipPreflight bool

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert every discovered trajectory into the output dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()

			if !skipPreflight {
				if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
					fmt.Fprintln(stdout, renderPreflight(failed))
					return fmt.Errorf("preflight failed: %d check(s) did not pass", len(failed))
				}
			}

			logFile, err := logging.OpenLogFile(cfg.Paths.LogDir, convertLogName)
			if err != nil {
				return err
			}
			defer logFile.Close()

			logger, err := newLogger(cfg, io.MultiWriter(os.Stderr, logFile))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			decoder := frames.Decoder{
				FFmpeg:  cfg.FFmpegBinary(),
				FFprobe: cfg.FFprobeBinary(),
			}
			conv, err := convert.New(cfg, decoder, logger)
			if err != nil {
				return err
			}
			if conv.Splits().Total() == 0 {
				fmt.Fprintf(stdout, "No trajectories found under %s\n", cfg.Paths.ManualDir)
				return nil
			}

			store, err := manifest.Open(cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			defer store.Close()

			workers := cfg.Builder.Workers
			if workersFlag > 0 {
				workers = workersFlag
			}
			builder := &dataset.Builder{
				OutputDir:   cfg.Paths.OutputDir,
				Workers:     workers,
				ChunkSize:   cfg.Builder.ChunkSize,
				JPEGQuality: cfg.Dataset.JPEGQuality,
				WriteVal:    writeVal,
				Store:       store,
				Logger:      logger,
			}

			stats, err := builder.Run(ctx, conv)
			if err != nil {
				return err
			}

			fmt.Fprintln(stdout, renderRunSummary(cfg.Dataset.Name, stats))
			if stats.Failed > 0 {
				fmt.Fprintf(stdout, "\n%d trajectory(ies) failed; run `trajconv episodes --failed` for details\n", stats.Failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&writeVal, "write-val", false, "Also materialize the val split (always counted, not written by default)")
	cmd.Flags().IntVar(&workersFlag, "workers", 0, "Override the configured worker count")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "Skip environment checks before converting")
	return cmd
}

func renderRunSummary(datasetName string, stats dataset.RunStats) string {
	rows := [][]string{
		{"Dataset", textutil.DisplayName(datasetName)},
		{"Run ID", stats.RunID},
		{"Succeeded", strconv.Itoa(stats.Succeeded)},
		{"Failed", strconv.Itoa(stats.Failed)},
		{"Duration", stats.Duration.Round(time.Millisecond).String()},
	}
	for _, split := range []dataset.Split{dataset.SplitTrain, dataset.SplitVal} {
		splitStats, ok := stats.Splits[split]
		if !ok {
			continue
		}
		label := textutil.DisplayName(string(split))
		rows = append(rows,
			[]string{label + " episodes", humanize.Comma(int64(splitStats.Episodes))},
			[]string{label + " steps", humanize.Comma(int64(splitStats.Steps))},
			[]string{label + " shards", strconv.Itoa(len(splitStats.Shards))},
		)
	}
	return renderTable([]string{"Field", "Value"}, rows)
}
