package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/dkovalev83/ozon-scrap/internal/models"
)

func samplePage(page, totalPages int, ids ...string) *models.PageResult {
	res := &models.PageResult{
		Pagination: models.Pagination{
			CurrentPage:  page,
			TotalPages:   totalPages,
			ItemsPerPage: 12,
			TotalItems:   totalPages * 12,
		},
		Metadata: map[string]string{"seller_id": "778899"},
	}
	for _, id := range ids {
		res.Products = append(res.Products, models.Product{
			ID:    id,
			Name:  "Товар " + id,
			URL:   "https://www.ozon.ru/product/" + id + "/",
			Price: models.NewPrice(decimal.NewFromInt(1500), decimal.RequireFromString("1234.56")),
		})
	}
	return res
}

func TestWritePageRoundTrip(t *testing.T) {
	dir := t.TempDir()
	res := samplePage(2, 4, "111", "222")

	path, err := WritePage(dir, "778899", res)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "seller_778899_page_2.json"), path)

	doc, err := ReadPage(path)
	require.NoError(t, err)
	require.Equal(t, "778899", doc.SellerID)
	require.Equal(t, res.Pagination, doc.Pagination)
	require.Len(t, doc.Products, 2)
	require.Equal(t, "111", doc.Products[0].ID)
	require.Equal(t, "222", doc.Products[1].ID)
	require.True(t, doc.Products[0].Price.Final.Equal(decimal.RequireFromString("1234.56")))
	require.NotNil(t, doc.Products[0].Price.Discount, "derived discount survives the round trip")
	require.Equal(t, "778899", doc.Metadata["seller_id"])
	require.False(t, doc.GeneratedAt.IsZero())
}

func TestWriteCatalog(t *testing.T) {
	dir := t.TempDir()
	pages := []*models.PageResult{
		samplePage(1, 3, "111", "222"),
		samplePage(3, 3, "333"),
	}

	path, err := WriteCatalog(dir, "778899", pages)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "seller_778899_all_products.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc CatalogDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, 3, doc.TotalPages)
	require.Equal(t, 2, doc.FetchedPages)
	require.Equal(t, 3, doc.TotalProducts)
	require.Len(t, doc.Products, 3)
	require.Equal(t, []string{"111", "222", "333"}, []string{doc.Products[0].ID, doc.Products[1].ID, doc.Products[2].ID})
}

func TestReadPageErrors(t *testing.T) {
	_, err := ReadPage(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o644))
	_, err = ReadPage(bad)
	require.Error(t, err)
}

func TestWritePageCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	_, err := WritePage(dir, "778899", samplePage(1, 1, "111"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "seller_778899_page_1.json"))
	require.NoError(t, err)
}
