package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkovalev83/ozon-scrap/internal/export"
	"github.com/dkovalev83/ozon-scrap/internal/models"
	"github.com/dkovalev83/ozon-scrap/internal/ozon"
	"github.com/dkovalev83/ozon-scrap/internal/ui"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [seller id or URL]",
	Short: "Crawl a seller's whole catalog, page by page",
	Args:  cobra.ExactArgs(1),
	RunE:  runCrawl,
}

func init() {
	crawlCmd.Flags().String("format", "json", "Output format: json, table")
	crawlCmd.Flags().Bool("save", true, "Export per-page and aggregate documents")
	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	sellerRef := args[0]
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")

	crawler, err := newCrawler()
	if err != nil {
		return err
	}

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Crawling catalog of %s...", sellerRef))
	ctx := ozon.WithProgress(context.Background(), spin.Update)
	pages, err := crawler.FetchAllPages(ctx, sellerRef)
	if err != nil {
		spin.Stop()
		return fmt.Errorf("crawl failed: %w", err)
	}
	total := 0
	for _, page := range pages {
		total += len(page.Products)
	}
	spin.Done(fmt.Sprintf("Fetched %d pages, %d products", len(pages), total))

	sellerID := pages[0].Metadata["seller_id"]
	if save {
		for _, page := range pages {
			if _, err := export.WritePage(cfg.OutputDir, sellerID, page); err != nil {
				return fmt.Errorf("export page %d: %w", page.Pagination.CurrentPage, err)
			}
		}
		path, err := export.WriteCatalog(cfg.OutputDir, sellerID, pages)
		if err != nil {
			return fmt.Errorf("export catalog: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %s (%d pages)\n", path, len(pages))
	}

	switch format {
	case "table":
		var all []models.Product
		for _, page := range pages {
			all = append(all, page.Products...)
		}
		printProductsTable(all)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(pages)
	}
	return nil
}
