package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/technode/hiring-cli/internal/dashboard"
	"github.com/technode/hiring-cli/internal/dataset"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only teaser dashboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		table, err := dataset.Load(cfg.Dataset.Path)
		if err != nil {
			return err
		}

		zap.L().Info("dashboard: dataset loaded",
			zap.String("path", cfg.Dataset.Path),
			zap.Int("records", table.Len()),
		)

		dashCfg := cfg.Dashboard
		if servePort > 0 {
			dashCfg.Port = servePort
		}

		teaser := dashboard.NewTeaser(table.Records(), dashCfg.TeaserRows, dashCfg.MaskContacts)
		srv := dashboard.NewServer(dashCfg, teaser)
		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
