package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Price holds the normalized price facts for a product. Discount and
// DiscountPercent are always derived from Original/Final, never taken
// from source text.
type Price struct {
	Original        decimal.Decimal  `json:"original"`
	Final           decimal.Decimal  `json:"final"`
	Discount        *decimal.Decimal `json:"discount,omitempty"`
	DiscountPercent *int             `json:"discount_percent,omitempty"`
	CardPrice       *decimal.Decimal `json:"card_price,omitempty"`
}

// NewPrice builds a Price from observed original/final values and derives
// the discount fields. When only one price was observed, pass it as both.
func NewPrice(original, final decimal.Decimal) Price {
	p := Price{Original: original, Final: final}
	if original.GreaterThan(final) {
		d := original.Sub(final)
		p.Discount = &d
		if original.IsPositive() {
			pct := int(d.Mul(decimal.NewFromInt(100)).Div(original).Round(0).IntPart())
			p.DiscountPercent = &pct
		}
	}
	return p
}

// ZeroPrice is the defaulted price for fragments that could not be parsed.
func ZeroPrice() Price {
	return Price{Original: decimal.Zero, Final: decimal.Zero}
}

// Product is the lightweight listing view of a catalog item.
type Product struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	Category     string   `json:"category,omitempty"`
	Price        Price    `json:"price"`
	Quantity     int      `json:"quantity"`
	Rating       float64  `json:"rating"`
	ReviewsCount int      `json:"reviews_count"`
	Images       []string `json:"images,omitempty"`
}

// Seller identifies the storefront merchant owning a product.
type Seller struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Logo string `json:"logo,omitempty"`
	Link string `json:"link,omitempty"`
}

// Characteristic is a single name/value attribute. Duplicate names are
// allowed; order follows the source document.
type Characteristic struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductDetails is the enriched detail view of a single product.
type ProductDetails struct {
	Product
	Brand           string           `json:"brand,omitempty"`
	Seller          Seller           `json:"seller"`
	Characteristics []Characteristic `json:"characteristics"`
	Description     string           `json:"description"`
	ParsedAt        time.Time        `json:"parsed_at"`
}

// Pagination describes a listing page's position within the catalog.
// CurrentPage is caller-supplied context: the upstream does not echo the
// requested page back, so it always equals the page the caller asked for.
type Pagination struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	ItemsPerPage int `json:"items_per_page"`
	TotalItems   int `json:"total_items"`
}

// PageResult is one fetched listing page plus its crawl metadata.
type PageResult struct {
	Pagination Pagination        `json:"pagination"`
	Products   []Product         `json:"products"`
	Metadata   map[string]string `json:"metadata"`
}
