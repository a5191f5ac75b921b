package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkovalev83/ozon-scrap/internal/export"
	"github.com/dkovalev83/ozon-scrap/internal/ozon"
	"github.com/dkovalev83/ozon-scrap/internal/ui"
)

var pageCmd = &cobra.Command{
	Use:   "page [seller id or URL]",
	Short: "Fetch one page of a seller's catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runPage,
}

func init() {
	pageCmd.Flags().Int("page", 1, "Page number")
	pageCmd.Flags().String("format", "json", "Output format: json, table")
	pageCmd.Flags().Bool("save", false, "Export the page document to the output directory")
	rootCmd.AddCommand(pageCmd)
}

func runPage(cmd *cobra.Command, args []string) error {
	sellerRef := args[0]
	page, _ := cmd.Flags().GetInt("page")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	crawler, err := newCrawler()
	if err != nil {
		return err
	}

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Fetching page %d for %s...", page, sellerRef))
	ctx := ozon.WithProgress(context.Background(), spin.Update)
	result, err := crawler.FetchPage(ctx, sellerRef, page)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("fetch page: %w", err)
	}

	if save {
		path, err := export.WritePage(cfg.OutputDir, result.Metadata["seller_id"], result)
		if err != nil {
			return fmt.Errorf("export page: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %s\n", path)
	}

	switch format {
	case "table":
		printProductsTable(result.Products)
		fmt.Fprintf(os.Stdout, "\nPage %d of %d (%d items total)\n",
			result.Pagination.CurrentPage, result.Pagination.TotalPages, result.Pagination.TotalItems)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result)
	}
	return nil
}
