package cli

import (
	"context"

	"macromate/internal/app"
	"macromate/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch macros from the helpdesk once and exit",
	Run:   runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) {
	cfg := config.Load()
	if err := config.InitLogger(cfg); err != nil {
		logrus.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := logrus.StandardLogger()

	ctx := context.Background()
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to build application: %v", err)
	}
	defer application.Close()

	if application.Sync == nil {
		logger.Fatal("Macro sync is not configured; set the Zendesk credentials")
	}
	if err := application.Sync.Run(ctx); err != nil {
		logger.Fatalf("Macro sync failed: %v", err)
	}
}
