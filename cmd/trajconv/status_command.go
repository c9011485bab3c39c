package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"trajconv/internal/manifest"
	"trajconv/internal/preflight"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check the environment and show the latest conversion run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()

			results := preflight.RunAll(cfg)
			fmt.Fprintln(stdout, renderPreflight(results))

			run, err := latestRun(cmd.Context(), cfg.Paths.OutputDir)
			if err != nil {
				return err
			}
			if run == nil {
				fmt.Fprintln(stdout, "\nNo conversion runs recorded yet")
				if failed := preflight.Failed(results); len(failed) > 0 {
					return fmt.Errorf("%d preflight check(s) failed", len(failed))
				}
				return nil
			}

			rows := [][]string{
				{"Run ID", run.ID},
				{"Started", run.StartedAt.Local().Format(time.RFC1123)},
				{"Discovered", fmt.Sprintf("%d train, %d val", run.TrainTotal, run.ValTotal)},
				{"Succeeded", strconv.Itoa(run.Succeeded)},
				{"Failed", strconv.Itoa(run.Failed)},
			}
			if run.FinishedAt.IsZero() {
				rows = append(rows, []string{"Finished", "in progress or interrupted"})
			} else {
				rows = append(rows, []string{"Finished", run.FinishedAt.Local().Format(time.RFC1123)})
			}
			fmt.Fprintln(stdout)
			fmt.Fprintln(stdout, renderTable([]string{"Latest Run", "Value"}, rows))

			if failed := preflight.Failed(results); len(failed) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}
			return nil
		},
	}
}

// latestRun reads the manifest in the output directory. A manifest with no
// runs yields nil; it just means nothing has been converted yet.
func latestRun(ctx context.Context, outputDir string) (*manifest.Run, error) {
	store, err := manifest.Open(outputDir)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.LatestRun(ctx)
}

func renderPreflight(results []preflight.Result) string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		status := "ok"
		if !result.Passed {
			status = "FAIL"
		}
		rows = append(rows, []string{result.Name, status, result.Detail})
	}
	return renderTable([]string{"Check", "Status", "Detail"}, rows)
}
