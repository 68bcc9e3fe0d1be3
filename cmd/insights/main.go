// cmd/insights/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/javajoker/shopinsights/internal/config"
	"github.com/javajoker/shopinsights/internal/database"
	"github.com/javajoker/shopinsights/internal/utils"
)

var debug bool

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "insights",
		Short:         "Collect structured insights from Shopify storefronts",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(analyzeCmd())
	root.AddCommand(brandsCmd())
	root.AddCommand(migrateCmd())
	return root
}

// bootstrap loads configuration and opens a migrated database.
func bootstrap() (*config.Config, *logrus.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := utils.NewLogger(cfg.Logging, cfg.Environment)
	logger.SetOutput(os.Stderr)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialize database: %w", err)
	}
	if err := database.RunMigrations(db); err != nil {
		database.Close(db)
		return nil, nil, nil, fmt.Errorf("run migrations: %w", err)
	}
	return cfg, logger, db, nil
}
