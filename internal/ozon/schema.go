package ozon

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dkovalev83/ozon-scrap/internal/models"
)

// schemaProduct is the schema.org Product block embedded in the response's
// seo scripts. It is a fallback source only: primary widgets win whenever
// they are present.
type schemaProduct struct {
	Type            string          `json:"@type"`
	Name            string          `json:"name"`
	Brand           json.RawMessage `json:"brand"`
	Image           json.RawMessage `json:"image"`
	Description     string          `json:"description"`
	AggregateRating *struct {
		RatingValue json.Number `json:"ratingValue"`
		ReviewCount json.Number `json:"reviewCount"`
	} `json:"aggregateRating"`

	// extra keeps the full object so additional*-prefixed properties can be
	// recovered without a fixed schema.
	extra map[string]json.RawMessage
}

type seoBlock struct {
	Script []struct {
		Type      string `json:"type"`
		InnerHTML string `json:"innerHTML"`
	} `json:"script"`
}

// extractSchemaProduct scans the seo scripts for a schema.org Product block.
// Returns nil when none parses; the block is optional by contract.
func extractSchemaProduct(resp *response, log zerolog.Logger) *schemaProduct {
	if len(resp.SEO) == 0 {
		return nil
	}
	raw, ok := decodeFragment(resp.SEO)
	if !ok {
		return nil
	}
	var seo seoBlock
	if err := json.Unmarshal(raw, &seo); err != nil {
		log.Debug().Err(err).Msg("seo block has unexpected shape")
		return nil
	}
	for _, script := range seo.Script {
		var p schemaProduct
		if err := json.Unmarshal([]byte(script.InnerHTML), &p); err != nil {
			continue
		}
		if p.Type != "Product" {
			continue
		}
		// Second pass keeps the raw keys for additional* properties.
		var extra map[string]json.RawMessage
		if err := json.Unmarshal([]byte(script.InnerHTML), &extra); err == nil {
			p.extra = extra
		}
		return &p
	}
	return nil
}

func (p *schemaProduct) images() []string {
	if p == nil || len(p.Image) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(p.Image, &single); err == nil && single != "" {
		return []string{single}
	}
	var many []string
	if err := json.Unmarshal(p.Image, &many); err == nil {
		return many
	}
	return nil
}

func (p *schemaProduct) brandName() string {
	if p == nil || len(p.Brand) == 0 {
		return ""
	}
	var name string
	if err := json.Unmarshal(p.Brand, &name); err == nil {
		return name
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(p.Brand, &obj); err == nil {
		return obj.Name
	}
	return ""
}

func (p *schemaProduct) rating() float64 {
	if p == nil || p.AggregateRating == nil {
		return 0
	}
	v, err := p.AggregateRating.RatingValue.Float64()
	if err != nil {
		return 0
	}
	return v
}

func (p *schemaProduct) reviewCount() int {
	if p == nil || p.AggregateRating == nil {
		return 0
	}
	v, err := p.AggregateRating.ReviewCount.Int64()
	if err != nil {
		return 0
	}
	return int(v)
}

// characteristics recovers attributes from additional*-prefixed properties:
// either a schema.org PropertyValue list or plain scalar fields.
func (p *schemaProduct) characteristics() []models.Characteristic {
	if p == nil || p.extra == nil {
		return nil
	}
	keys := make([]string, 0, len(p.extra))
	for k := range p.extra {
		if strings.HasPrefix(k, "additional") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []models.Characteristic
	for _, key := range keys {
		raw := p.extra[key]

		var props []struct {
			Name  string          `json:"name"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &props); err == nil {
			for _, prop := range props {
				if v := scalarText(prop.Value); prop.Name != "" && v != "" {
					out = append(out, models.Characteristic{Name: prop.Name, Value: v})
				}
			}
			continue
		}

		if v := scalarText(raw); v != "" {
			out = append(out, models.Characteristic{Name: strings.TrimPrefix(key, "additional"), Value: v})
		}
	}
	return out
}

// scalarText renders a JSON scalar as text; objects and arrays yield "".
func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return "true"
		}
		return "false"
	}
	return ""
}
