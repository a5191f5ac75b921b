package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dkovalev83/ozon-scrap/internal/models"
)

// PageDocument is the on-disk form of a single fetched page.
type PageDocument struct {
	SellerID    string            `json:"seller_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Pagination  models.Pagination `json:"pagination"`
	Products    []models.Product  `json:"products"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// CatalogDocument aggregates a full crawl into one file.
type CatalogDocument struct {
	SellerID      string           `json:"seller_id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	TotalPages    int              `json:"total_pages"`
	FetchedPages  int              `json:"fetched_pages"`
	TotalProducts int              `json:"total_products"`
	Products      []models.Product `json:"products"`
}

// WritePage serializes one page result to seller_<id>_page_<n>.json and
// returns the file path.
func WritePage(dir, sellerID string, res *models.PageResult) (string, error) {
	doc := PageDocument{
		SellerID:    sellerID,
		GeneratedAt: time.Now().UTC(),
		Pagination:  res.Pagination,
		Products:    res.Products,
		Metadata:    res.Metadata,
	}
	name := fmt.Sprintf("seller_%s_page_%d.json", sellerID, res.Pagination.CurrentPage)
	return write(dir, name, doc)
}

// WriteCatalog serializes a full crawl to seller_<id>_all_products.json and
// returns the file path.
func WriteCatalog(dir, sellerID string, pages []*models.PageResult) (string, error) {
	doc := CatalogDocument{
		SellerID:     sellerID,
		GeneratedAt:  time.Now().UTC(),
		FetchedPages: len(pages),
	}
	for _, page := range pages {
		doc.Products = append(doc.Products, page.Products...)
		if page.Pagination.TotalPages > doc.TotalPages {
			doc.TotalPages = page.Pagination.TotalPages
		}
	}
	doc.TotalProducts = len(doc.Products)

	name := fmt.Sprintf("seller_%s_all_products.json", sellerID)
	return write(dir, name, doc)
}

// ReadPage parses a previously exported page document.
func ReadPage(path string) (*PageDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc PageDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse page document %s: %w", path, err)
	}
	return &doc, nil
}

func write(dir, name string, doc any) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
