// cmd/insights/analyze.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javajoker/shopinsights/internal/database"
	"github.com/javajoker/shopinsights/internal/services"
)

func analyzeCmd() *cobra.Command {
	var (
		competitors bool
		summary     bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [url]",
		Short: "Analyze one storefront and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)

			brandService, err := services.NewAnalysisStack(db, cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			req := &services.AnalyzeRequest{
				WebsiteURL:         args[0],
				IncludeCompetitors: competitors,
			}
			if cmd.Flags().Changed("summary") {
				req.IncludeSummary = &summary
			}

			result, err := brandService.AnalyzeBrand(ctx, req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if result.Failed() {
				return fmt.Errorf("storefront %s could not be fetched", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&competitors, "competitors", false, "discover and analyze competitor storefronts")
	cmd.Flags().BoolVar(&summary, "summary", false, "request an LLM summary (defaults to on when an API key is set)")
	return cmd
}
