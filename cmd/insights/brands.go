// cmd/insights/brands.go
package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/javajoker/shopinsights/internal/database"
	"github.com/javajoker/shopinsights/internal/models"
	"github.com/javajoker/shopinsights/internal/repository"
	"github.com/javajoker/shopinsights/internal/utils"
)

func brandsCmd() *cobra.Command {
	var (
		page   int
		limit  int
		search string
	)

	cmd := &cobra.Command{
		Use:   "brands",
		Short: "List analyzed brands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer database.Close(db)

			params := utils.NormalizePagination(utils.PaginationParams{
				Page:   page,
				Limit:  limit,
				Search: search,
			})
			brands, total, err := repository.NewBrandRepository(db).List(cmd.Context(), params)
			if err != nil {
				return err
			}

			renderBrands(cmd, brands, total, params)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "brands per page")
	cmd.Flags().StringVar(&search, "search", "", "filter by name or domain")
	return cmd
}

func renderBrands(cmd *cobra.Command, brands []models.Brand, total int64, params utils.PaginationParams) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "Domain", "Name", "Shopify", "Status", "Last scraped"})
	for _, b := range brands {
		last := "-"
		if b.LastScraped != nil {
			last = b.LastScraped.Format("2006-01-02 15:04")
		}
		t.AppendRow(table.Row{b.ID, b.Domain, b.Name, b.IsShopifyStore, b.ScrapingStatus, last})
	}
	pages := utils.CreatePaginationResult(nil, total, params)
	t.AppendFooter(table.Row{"", "", "", "", "total", total})
	t.AppendFooter(table.Row{"", "", "", "", "page", fmt.Sprintf("%d/%d", pages.Page, pages.TotalPages)})

	t.Render()
}
