package ozon

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dkovalev83/ozon-scrap/internal/models"
)

const (
	// Listing pages carry a fixed tile count regardless of how many tiles
	// actually survived extraction.
	itemsPerPage = 12

	// Label icons identifying rating and review-count chips inside a tile.
	ratingIcon  = "ic_s_star_filled_compact"
	reviewsIcon = "ic_s_dialog_filled_compact"

	// Fallback label when the category facility is absent or nothing matches.
	defaultCategory = "uncategorized"
)

// ErrPagination means the listing page carried no usable catalog totals.
// Fatal for a crawl: without a total page count it cannot terminate.
var ErrPagination = errors.New("pagination data missing")

// sharedDoc is the string-encoded "shared" sub-document carrying catalog
// totals. It is the one load-bearing fragment of a listing page.
type sharedDoc struct {
	Catalog struct {
		TotalFound int `json:"totalFound"`
		TotalPages int `json:"totalPages"`
	} `json:"catalog"`
}

// tile is one entry of the search-results widget. Field shapes follow the
// upstream's tile renderer; everything here is best-effort.
type tile struct {
	SKUID  string `json:"skuId"`
	Action struct {
		Link string `json:"link"`
	} `json:"action"`
	MainState   []tileState `json:"mainState"`
	MultiButton struct {
		OzonButton struct {
			AddToCartButtonWithQuantity struct {
				MaxItems int `json:"maxItems"`
			} `json:"addToCartButtonWithQuantity"`
		} `json:"ozonButton"`
	} `json:"multiButton"`
	TileImage struct {
		Items []struct {
			Image struct {
				Link string `json:"link"`
			} `json:"image"`
		} `json:"items"`
	} `json:"tileImage"`
}

type tileState struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Atom struct {
		Type     string `json:"type"`
		TextAtom struct {
			Text string `json:"text"`
		} `json:"textAtom"`
		PriceV2   json.RawMessage `json:"priceV2"`
		LabelList struct {
			Items []struct {
				Title string `json:"title"`
				Icon  struct {
					Image string `json:"image"`
				} `json:"icon"`
			} `json:"items"`
		} `json:"labelList"`
	} `json:"atom"`
}

type categoryFilter struct {
	Sections []struct {
		Filters []struct {
			Categories []struct {
				Title string `json:"title"`
				URL   string `json:"url"`
			} `json:"categories"`
		} `json:"filters"`
	} `json:"sections"`
}

type categoryEntry struct {
	title string
	url   string
}

// ExtractPage pulls pagination plus the ordered product list out of a raw
// listing response. Pagination is the only hard requirement: without a total
// page count the crawl cannot terminate. A missing results widget yields an
// empty product list, not an error.
func ExtractPage(data []byte, page int, log zerolog.Logger) (models.Pagination, []models.Product, error) {
	resp, err := parseResponse(data)
	if err != nil {
		return models.Pagination{}, nil, err
	}

	pagination, err := extractPagination(resp, page)
	if err != nil {
		return models.Pagination{}, nil, err
	}

	w := newWidgets(resp.WidgetStates, log)
	products := extractProducts(w, log)
	return pagination, products, nil
}

func extractPagination(resp *response, page int) (models.Pagination, error) {
	shared, ok := decodeFragment(resp.Shared)
	if !ok {
		return models.Pagination{}, fmt.Errorf("%w: shared sub-document missing or malformed", ErrPagination)
	}
	var doc sharedDoc
	if err := json.Unmarshal(shared, &doc); err != nil {
		return models.Pagination{}, fmt.Errorf("%w: parse shared catalog: %v", ErrPagination, err)
	}
	return models.Pagination{
		CurrentPage:  page,
		TotalPages:   doc.Catalog.TotalPages,
		ItemsPerPage: itemsPerPage,
		TotalItems:   doc.Catalog.TotalFound,
	}, nil
}

func extractProducts(w *Widgets, log zerolog.Logger) []models.Product {
	raw, ok := w.Locate("searchResultsV2", "searchResultsV3")
	if !ok {
		log.Warn().Msg("search results widget not found, returning empty product list")
		return nil
	}

	// Items are decoded one by one so a broken tile cannot take down its
	// neighbors.
	var widget struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(raw, &widget); err != nil {
		log.Warn().Err(err).Msg("search results widget has unexpected shape")
		return nil
	}

	categories := extractCategories(w)

	products := make([]models.Product, 0, len(widget.Items))
	for i, item := range widget.Items {
		var t tile
		if err := json.Unmarshal(item, &t); err != nil {
			log.Warn().Int("index", i).Err(err).Msg("skipping malformed tile")
			continue
		}
		p, ok := extractTile(t)
		if !ok {
			// No title means the entry is a banner or filler, not a product.
			log.Debug().Int("index", i).Msg("dropping titleless tile")
			continue
		}
		p.Category = matchCategory(p.URL, categories)
		products = append(products, p)
	}
	return products
}

// extractTile builds one Product from a tile. Returns false only for tiles
// without a title; every other missing sub-field defaults.
func extractTile(t tile) (models.Product, bool) {
	var (
		title    string
		priceRaw json.RawMessage
		rating   float64
		reviews  int
	)
	for _, state := range t.MainState {
		switch {
		case state.Type == "atom" && state.ID == "name":
			title = state.Atom.TextAtom.Text
		case state.Type == "atom" && state.ID == "atom":
			priceRaw = state.Atom.PriceV2
		case state.Atom.Type == "labelList":
			for _, label := range state.Atom.LabelList.Items {
				switch label.Icon.Image {
				case ratingIcon:
					rating = parseRating(label.Title)
				case reviewsIcon:
					reviews = parseDigits(label.Title)
				}
			}
		}
	}
	if title == "" {
		return models.Product{}, false
	}

	url := t.Action.Link
	if url == "" && t.SKUID != "" {
		url = "https://www.ozon.ru/product/" + t.SKUID + "/"
	}

	var images []string
	for _, img := range t.TileImage.Items {
		if img.Image.Link != "" {
			images = append(images, img.Image.Link)
		}
	}

	return models.Product{
		ID:           t.SKUID,
		Name:         cleanText(title),
		URL:          url,
		Price:        NormalizePrice(priceRaw),
		Quantity:     t.MultiButton.OzonButton.AddToCartButtonWithQuantity.MaxItems,
		Rating:       rating,
		ReviewsCount: reviews,
		Images:       images,
	}, true
}

func extractCategories(w *Widgets) []categoryEntry {
	var filter categoryFilter
	if !w.LocateInto(&filter, "filtersDesktop", "categoryFilter") {
		return nil
	}
	var entries []categoryEntry
	for _, section := range filter.Sections {
		for _, f := range section.Filters {
			for _, c := range f.Categories {
				if c.Title != "" && c.URL != "" {
					entries = append(entries, categoryEntry{title: c.Title, url: c.URL})
				}
			}
		}
	}
	return entries
}

// matchCategory resolves a product's category by URL-substring containment
// against the page's category filter list.
func matchCategory(productURL string, categories []categoryEntry) string {
	for _, c := range categories {
		if strings.Contains(productURL, c.url) {
			return c.title
		}
	}
	return defaultCategory
}

// parseRating reads a rating label like "4.8" or "4,8", clamped to [0, 5].
func parseRating(text string) float64 {
	s := strings.ReplaceAll(strings.TrimSpace(text), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return clampRating(v)
}

// clampRating bounds a rating to [0, 5]; the model never carries values
// outside that range no matter what the source widget claims.
func clampRating(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}

// parseDigits extracts the integer from free-form text like "1 274 отзыва".
func parseDigits(text string) int {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}
