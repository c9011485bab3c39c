package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"trajconv/internal/manifest"
)

func newEpisodesCommand(cmdCtx *commandContext) *cobra.Command {
	var failedOnly bool
	var runID string

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List episode outcomes recorded for a conversion run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := manifest.Open(cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			defer store.Close()

			stdout := cmd.OutOrStdout()
			if runID == "" {
				run, err := store.LatestRun(cmd.Context())
				if err != nil {
					return err
				}
				if run == nil {
					fmt.Fprintln(stdout, "No conversion runs recorded yet")
					return nil
				}
				runID = run.ID
			}

			var records []manifest.Record
			if failedOnly {
				records, err = store.FailedEpisodes(cmd.Context(), runID)
			} else {
				records, err = store.ListEpisodes(cmd.Context(), runID)
			}
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintf(stdout, "No episodes recorded for run %s\n", runID)
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				detail := rec.Shard
				if rec.Status == manifest.StatusFailed {
					detail = rec.ErrorMessage
				}
				rows = append(rows, []string{
					rec.Key,
					rec.Split,
					rec.Status,
					strconv.Itoa(rec.Steps),
					yesNo(rec.HasLanguage),
					detail,
				})
			}
			fmt.Fprintln(stdout, renderTable(
				[]string{"Trajectory", "Split", "Status", "Steps", "Lang", "Shard / Error"},
				rows,
				3,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Only show failed trajectories")
	cmd.Flags().StringVar(&runID, "run", "", "Run ID to inspect (defaults to the latest run)")
	return cmd
}
