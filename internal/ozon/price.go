package ozon

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/dkovalev83/ozon-scrap/internal/models"
)

// chipFragment is the listing-tile price shape: a list of price "chips"
// where chip 0 is the current price text and chip 1, when present, is the
// struck-through original.
type chipFragment struct {
	Price []struct {
		Text string `json:"text"`
	} `json:"price"`
	CardPrice string `json:"cardPrice"`
}

// flatFragment is the product-page price shape with named text fields.
type flatFragment struct {
	Price         string `json:"price"`
	OriginalPrice string `json:"originalPrice"`
	CardPrice     string `json:"cardPrice"`
}

// NormalizePrice converts either known price fragment shape into price
// facts. It never fails: an unrecognized or malformed fragment yields the
// zero price, since price extraction must not abort the surrounding product.
func NormalizePrice(raw json.RawMessage) models.Price {
	if len(raw) == 0 {
		return models.ZeroPrice()
	}

	var chips chipFragment
	if err := json.Unmarshal(raw, &chips); err == nil && len(chips.Price) > 0 {
		final := cleanNumber(chips.Price[0].Text)
		original := final
		if len(chips.Price) > 1 {
			if v := cleanNumber(chips.Price[1].Text); v.IsPositive() {
				original = v
			}
		}
		p := models.NewPrice(original, final)
		if card := cleanNumber(chips.CardPrice); card.IsPositive() {
			p.CardPrice = &card
		}
		return p
	}

	var flat flatFragment
	if err := json.Unmarshal(raw, &flat); err == nil && flat.Price != "" {
		return NormalizePriceTexts(flat.Price, flat.OriginalPrice, flat.CardPrice)
	}

	return models.ZeroPrice()
}

// NormalizePriceTexts builds price facts from already-separated price texts.
// Empty originalText means only one price was observed (original == final).
func NormalizePriceTexts(finalText, originalText, cardText string) models.Price {
	final := cleanNumber(finalText)
	original := final
	if v := cleanNumber(originalText); v.IsPositive() {
		original = v
	}
	p := models.NewPrice(original, final)
	if card := cleanNumber(cardText); card.IsPositive() {
		p.CardPrice = &card
	}
	return p
}

// cleanNumber reduces locale-formatted price text ("1 234,56 ₽") to a
// decimal. Commas are decimal separators; when several dots remain, all but
// the last are thousands separators. Unparsable text yields zero.
func cleanNumber(text string) decimal.Decimal {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',', r == '.':
			b.WriteByte('.')
		}
	}
	s := b.String()
	if n := strings.Count(s, "."); n > 1 {
		s = strings.Replace(s, ".", "", n-1)
	}
	if s == "" || s == "." {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
