// cmd/insights/migrate.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javajoker/shopinsights/internal/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)

			logger.Info("migrations applied")
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
