package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/technode/hiring-cli/internal/pipeline"
)

var (
	runFresh        bool
	runFromSnapshot string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one collection pass over the latest hiring thread",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		summary, err := env.Pipeline.Run(ctx, pipeline.RunOptions{
			SnapshotPath: runFromSnapshot,
			Fresh:        runFresh,
		})
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

func init() {
	runCmd.Flags().BoolVar(&runFresh, "fresh", false, "clear the dataset before merging (full overwrite)")
	runCmd.Flags().StringVar(&runFromSnapshot, "from-snapshot", "", "replay a raw snapshot file instead of fetching live")
	rootCmd.AddCommand(runCmd)
}
