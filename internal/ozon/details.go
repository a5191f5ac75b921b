package ozon

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dkovalev83/ozon-scrap/internal/models"
)

// Widget key candidates per concern. Older responses used different key
// names for the same region, so each concern carries its historical aliases
// in priority order.
var (
	galleryKeys     = []string{"webGallery"}
	priceKeys       = []string{"webPrice", "webSalePrice"}
	scoreKeys       = []string{"webSingleProductScore", "webReviewProductScore"}
	sellerKeys      = []string{"webCurrentSeller", "webSeller"}
	breadcrumbKeys  = []string{"breadCrumbs"}
	charKeys        = []string{"webCharacteristics"}
	shortCharKeys   = []string{"webShortCharacteristics"}
	descriptionKeys = []string{"webDescription"}
	aspectsKeys     = []string{"webAspects"}
	headingKeys     = []string{"webProductHeading"}
	addToCartKeys   = []string{"webAddToCart"}
	brandKeys       = []string{"webBrand"}
)

// ExtractDetails builds a ProductDetails from a raw product response. Every
// field degrades independently to its zero value; the function fails only
// when the response itself cannot be parsed at the top level.
func ExtractDetails(data []byte, id string, log zerolog.Logger) (*models.ProductDetails, error) {
	resp, err := parseResponse(data)
	if err != nil {
		return nil, err
	}
	return extractDetails(resp, id, log), nil
}

func extractDetails(resp *response, id string, log zerolog.Logger) *models.ProductDetails {
	w := newWidgets(resp.WidgetStates, log)
	schema := extractSchemaProduct(resp, log)

	d := &models.ProductDetails{
		Product: models.Product{
			ID:    id,
			URL:   "https://www.ozon.ru/product/" + id + "/",
			Price: models.ZeroPrice(),
		},
		ParsedAt: time.Now().UTC(),
	}

	d.Name = extractName(w, schema)
	if priceRaw, ok := w.Locate(priceKeys...); ok {
		d.Price = NormalizePrice(priceRaw)
	}
	d.Rating, d.ReviewsCount = extractScore(w, schema)
	d.Images = extractGallery(w, schema)
	d.Quantity = extractQuantity(w)
	d.Seller = extractSeller(w)
	d.Category = extractBreadcrumbs(w)
	d.Characteristics = extractCharacteristics(w, schema, log)
	d.Brand = extractBrand(w, schema, d.Characteristics)

	d.Description = extractDescription(w, log)
	if d.Description == "" {
		log.Warn().Str("id", id).Msg("no description found in any tier")
	}
	return d
}

// extractName prefers the aspects widget's variant flagged active, then the
// product heading.
func extractName(w *Widgets, schema *schemaProduct) string {
	var aspects struct {
		Aspects []struct {
			Variants []struct {
				Active bool `json:"active"`
				Data   struct {
					Title string `json:"title"`
				} `json:"data"`
			} `json:"variants"`
		} `json:"aspects"`
	}
	if w.LocateInto(&aspects, aspectsKeys...) {
		for _, aspect := range aspects.Aspects {
			for _, variant := range aspect.Variants {
				if variant.Active && variant.Data.Title != "" {
					return cleanText(variant.Data.Title)
				}
			}
		}
	}

	var heading struct {
		Title string `json:"title"`
	}
	if w.LocateInto(&heading, headingKeys...) && heading.Title != "" {
		return cleanText(heading.Title)
	}
	if schema != nil && schema.Name != "" {
		return cleanText(schema.Name)
	}
	return ""
}

func extractScore(w *Widgets, schema *schemaProduct) (float64, int) {
	var score struct {
		TotalScore   json.Number     `json:"totalScore"`
		Score        json.Number     `json:"score"`
		ReviewsCount json.RawMessage `json:"reviewsCount"`
	}
	if w.LocateInto(&score, scoreKeys...) {
		rating := numberValue(score.TotalScore)
		if rating == 0 {
			rating = numberValue(score.Score)
		}
		return clampRating(rating), flexibleInt(score.ReviewsCount)
	}
	return clampRating(schema.rating()), schema.reviewCount()
}

func extractGallery(w *Widgets, schema *schemaProduct) []string {
	var gallery struct {
		Images []struct {
			Src string `json:"src"`
		} `json:"images"`
		CoverImage string `json:"coverImage"`
	}
	if w.LocateInto(&gallery, galleryKeys...) {
		var images []string
		if gallery.CoverImage != "" {
			images = append(images, gallery.CoverImage)
		}
		for _, img := range gallery.Images {
			if img.Src != "" && img.Src != gallery.CoverImage {
				images = append(images, img.Src)
			}
		}
		if len(images) > 0 {
			return images
		}
	}
	return schema.images()
}

func extractQuantity(w *Widgets) int {
	var cart struct {
		MaxItems int `json:"maxItems"`
	}
	if w.LocateInto(&cart, addToCartKeys...) {
		return cart.MaxItems
	}
	return 0
}

func extractSeller(w *Widgets) models.Seller {
	var seller struct {
		ID           json.Number `json:"id"`
		Name         string      `json:"name"`
		LogoImageURL string      `json:"logoImageUrl"`
		Link         string      `json:"link"`
	}
	if !w.LocateInto(&seller, sellerKeys...) {
		return models.Seller{}
	}
	return models.Seller{
		ID:   seller.ID.String(),
		Name: cleanText(seller.Name),
		Logo: seller.LogoImageURL,
		Link: seller.Link,
	}
}

func extractBreadcrumbs(w *Widgets) string {
	var crumbs struct {
		Breadcrumbs []struct {
			Text string `json:"text"`
		} `json:"breadcrumbs"`
	}
	if !w.LocateInto(&crumbs, breadcrumbKeys...) {
		return ""
	}
	var parts []string
	for _, crumb := range crumbs.Breadcrumbs {
		if crumb.Text != "" {
			parts = append(parts, cleanText(crumb.Text))
		}
	}
	return strings.Join(parts, " / ")
}

func extractBrand(w *Widgets, schema *schemaProduct, chars []models.Characteristic) string {
	var brand struct {
		Name string `json:"name"`
	}
	if w.LocateInto(&brand, brandKeys...) && brand.Name != "" {
		return cleanText(brand.Name)
	}
	if name := schema.brandName(); name != "" {
		return cleanText(name)
	}
	for _, c := range chars {
		switch strings.ToLower(c.Name) {
		case "бренд", "brand":
			return c.Value
		}
	}
	return ""
}

// characteristicsTier is one strategy for recovering the attribute list.
// Tiers are pure functions tried in order; the first non-empty result wins,
// and a tier's internal parse problems just mean it produced nothing.
type characteristicsTier struct {
	name string
	fn   func(w *Widgets, schema *schemaProduct) []models.Characteristic
}

var characteristicsTiers = []characteristicsTier{
	{name: "short-characteristics", fn: shortCharacteristics},
	{name: "full-characteristics", fn: fullCharacteristics},
	{name: "structured-data", fn: schemaCharacteristics},
}

func extractCharacteristics(w *Widgets, schema *schemaProduct, log zerolog.Logger) []models.Characteristic {
	for _, tier := range characteristicsTiers {
		if chars := tier.fn(w, schema); len(chars) > 0 {
			log.Debug().Str("tier", tier.name).Int("count", len(chars)).Msg("characteristics resolved")
			return chars
		}
	}
	return nil
}

// shortCharacteristics reads the short-characteristics widget. Two
// historical encodings exist: a rich text-run list (title.textRs / values)
// and a flat name/value/unit triple. Both may appear per entry.
func shortCharacteristics(w *Widgets, _ *schemaProduct) []models.Characteristic {
	var widget struct {
		Characteristics []struct {
			Title struct {
				TextRs []struct {
					Content string `json:"content"`
				} `json:"textRs"`
			} `json:"title"`
			Values []struct {
				Text string `json:"text"`
			} `json:"values"`
			Name  string `json:"name"`
			Value string `json:"value"`
			Unit  string `json:"unit"`
		} `json:"characteristics"`
	}
	if !w.LocateInto(&widget, shortCharKeys...) {
		return nil
	}
	var out []models.Characteristic
	for _, entry := range widget.Characteristics {
		var name string
		for _, run := range entry.Title.TextRs {
			name += run.Content
		}
		name = cleanText(name)

		var value string
		if len(entry.Values) > 0 {
			var vals []string
			for _, v := range entry.Values {
				if v.Text != "" {
					vals = append(vals, v.Text)
				}
			}
			value = cleanText(strings.Join(vals, ", "))
		}

		// Flat encoding fallback per entry.
		if name == "" && entry.Name != "" {
			name = cleanText(entry.Name)
			value = cleanText(strings.TrimSpace(entry.Value + " " + entry.Unit))
		}
		if name != "" && value != "" {
			out = append(out, models.Characteristic{Name: name, Value: value})
		}
	}
	return out
}

// fullCharacteristics reads the grouped characteristics widget, taking only
// each group's "short" sub-group.
func fullCharacteristics(w *Widgets, _ *schemaProduct) []models.Characteristic {
	var widget struct {
		Characteristics []struct {
			Short []struct {
				Name   string `json:"name"`
				Values []struct {
					Text string `json:"text"`
				} `json:"values"`
			} `json:"short"`
		} `json:"characteristics"`
	}
	if !w.LocateInto(&widget, charKeys...) {
		return nil
	}
	var out []models.Characteristic
	for _, group := range widget.Characteristics {
		for _, entry := range group.Short {
			var vals []string
			for _, v := range entry.Values {
				if v.Text != "" {
					vals = append(vals, v.Text)
				}
			}
			if entry.Name != "" && len(vals) > 0 {
				out = append(out, models.Characteristic{
					Name:  cleanText(entry.Name),
					Value: cleanText(strings.Join(vals, ", ")),
				})
			}
		}
	}
	return out
}

func schemaCharacteristics(_ *Widgets, schema *schemaProduct) []models.Characteristic {
	return schema.characteristics()
}

// descriptionWidget carries up to three encodings of the product
// description, newest first.
type descriptionWidget struct {
	RichAnnotationJSON json.RawMessage `json:"richAnnotationJson"`
	RichAnnotation     string          `json:"richAnnotation"`
	Content            []struct {
		Content string `json:"content"`
	} `json:"content"`
}

// extractDescription resolves the description through its tier chain:
// structured content tree, then raw HTML, then the legacy flat list.
func extractDescription(w *Widgets, log zerolog.Logger) string {
	var widget descriptionWidget
	if !w.LocateInto(&widget, descriptionKeys...) {
		return ""
	}

	if len(widget.RichAnnotationJSON) > 0 {
		if text := cleanText(richContentText(widget.RichAnnotationJSON)); text != "" {
			return text
		}
		log.Debug().Msg("rich description tree produced no text")
	}
	if widget.RichAnnotation != "" {
		if text := cleanText(stripHTML(widget.RichAnnotation)); text != "" {
			return text
		}
	}
	var parts []string
	for _, block := range widget.Content {
		if block.Content != "" {
			parts = append(parts, block.Content)
		}
	}
	return cleanText(strings.Join(parts, " "))
}

func numberValue(n json.Number) float64 {
	v, err := n.Float64()
	if err != nil {
		return 0
	}
	return v
}

// flexibleInt reads an int that may arrive as a number or as decorated text
// ("1 274 отзыва").
func flexibleInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseDigits(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f)
	}
	return 0
}
