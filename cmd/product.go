package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dkovalev83/ozon-scrap/internal/ozon"
	"github.com/dkovalev83/ozon-scrap/internal/ui"
)

var productCmd = &cobra.Command{
	Use:   "product [product id]",
	Short: "Fetch detailed information for one product",
	Args:  cobra.ExactArgs(1),
	RunE:  runProduct,
}

func init() {
	productCmd.Flags().String("format", "json", "Output format: json, table")
	rootCmd.AddCommand(productCmd)
}

func runProduct(cmd *cobra.Command, args []string) error {
	id := args[0]
	format, _ := cmd.Flags().GetString("format")

	crawler, err := newCrawler()
	if err != nil {
		return err
	}

	spin := ui.NewSpinner()
	spin.Start(fmt.Sprintf("Fetching product %s...", id))
	ctx := ozon.WithProgress(context.Background(), spin.Update)
	details, err := crawler.FetchProduct(ctx, id)
	spin.Stop()
	if err != nil {
		return fmt.Errorf("fetch product: %w", err)
	}

	switch format {
	case "table":
		printDetails(details)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(details)
	}
	return nil
}
