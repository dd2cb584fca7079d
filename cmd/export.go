package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/technode/hiring-cli/internal/dataset"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full dataset to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := dataset.Load(cfg.Dataset.Path)
		if err != nil {
			return err
		}

		if err := table.ExportXLSX(exportOut); err != nil {
			return err
		}

		zap.L().Info("dataset exported",
			zap.String("out", exportOut),
			zap.Int("records", table.Len()),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "jobs.xlsx", "output XLSX path")
	rootCmd.AddCommand(exportCmd)
}
