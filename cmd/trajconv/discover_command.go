package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trajconv/internal/discover"
)

func newDiscoverCommand(cmdCtx *commandContext) *cobra.Command {
	var listPaths bool

	cmd := &cobra.Command{
		Use:   "discover",
		Short: "Locate trajectory folders and show the train/val split",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			locator := discover.Locator{
				ManualDir:       cfg.Paths.ManualDir,
				Depth:           cfg.Discovery.Depth,
				Prefix:          cfg.Discovery.TrajPrefix,
				TrainProportion: cfg.Discovery.TrainProportion,
				Logger:          logger,
			}
			splits, err := locator.Locate()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			rows := [][]string{
				{"train", strconv.Itoa(len(splits.Train))},
				{"val", strconv.Itoa(len(splits.Val))},
				{"total", strconv.Itoa(splits.Total())},
			}
			fmt.Fprintln(stdout, renderTable([]string{"Split", "Trajectories"}, rows, 1))

			if listPaths {
				for _, path := range splits.Train {
					fmt.Fprintf(stdout, "train\t%s\n", path)
				}
				for _, path := range splits.Val {
					fmt.Fprintf(stdout, "val\t%s\n", path)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&listPaths, "list", false, "List every discovered trajectory path")
	return cmd
}
