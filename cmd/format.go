package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/dkovalev83/ozon-scrap/internal/models"
)

// printProductsTable prints products in a human-friendly card layout.
func printProductsTable(products []models.Product) {
	for i, p := range products {
		if i > 0 {
			fmt.Fprintln(os.Stdout)
		}
		fmt.Fprintf(os.Stdout, " %d. %s\n", i+1, p.Name)

		// Price line with optional struck-through original and discount
		priceLine := "    Price: " + formatPrice(p.Price.Final.StringFixed(2))
		if p.Price.Discount != nil && p.Price.DiscountPercent != nil {
			priceLine += fmt.Sprintf("  (was %s, -%d%%)",
				formatPrice(p.Price.Original.StringFixed(2)), *p.Price.DiscountPercent)
		}
		if p.Price.CardPrice != nil {
			priceLine += "  |  Card: " + formatPrice(p.Price.CardPrice.StringFixed(2))
		}
		fmt.Fprintln(os.Stdout, priceLine)

		if p.Rating > 0 || p.ReviewsCount > 0 {
			fmt.Fprintf(os.Stdout, "    Rating: %.1f (%d reviews)\n", p.Rating, p.ReviewsCount)
		}
		if p.Category != "" {
			fmt.Fprintf(os.Stdout, "    Category: %s\n", p.Category)
		}
		if p.URL != "" {
			fmt.Fprintf(os.Stdout, "    %s\n", p.URL)
		}
	}
}

// printDetails prints one enriched product.
func printDetails(d *models.ProductDetails) {
	printProductsTable([]models.Product{d.Product})
	if d.Brand != "" {
		fmt.Fprintf(os.Stdout, "    Brand: %s\n", d.Brand)
	}
	if d.Seller.Name != "" {
		fmt.Fprintf(os.Stdout, "    Seller: %s (id %s)\n", d.Seller.Name, d.Seller.ID)
	}
	if len(d.Characteristics) > 0 {
		fmt.Fprintln(os.Stdout, "    Characteristics:")
		for _, c := range d.Characteristics {
			fmt.Fprintf(os.Stdout, "      %s: %s\n", c.Name, c.Value)
		}
	}
	if d.Description != "" {
		fmt.Fprintf(os.Stdout, "    %s\n", truncate(d.Description, 400))
	}
}

// formatPrice renders "1234.56" as "1 234.56 ₽", trimming empty cents.
func formatPrice(s string) string {
	s = strings.TrimSuffix(s, ".00")
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) > 3 {
		var parts []string
		for len(intPart) > 3 {
			parts = append([]string{intPart[len(intPart)-3:]}, parts...)
			intPart = intPart[:len(intPart)-3]
		}
		parts = append([]string{intPart}, parts...)
		intPart = strings.Join(parts, " ")
	}
	if hasFrac {
		return intPart + "." + frac + " ₽"
	}
	return intPart + " ₽"
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
