// Package catalog holds the storefront product model and media resolution.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Media type values.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// PlaceholderImage is returned when a product has no usable media.
const PlaceholderImage = "/placeholder.png"

// Media is one image or video entry.
type Media struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"` // "image" (default when empty) or "video"
}

// IsImage reports whether the entry is an image. Entries without a type are images.
func (m Media) IsImage() bool {
	return m.Type == "" || m.Type == MediaTypeImage
}

// IsVideo reports whether the entry is a video.
func (m Media) IsVideo() bool {
	return m.Type == MediaTypeVideo
}

// UnmarshalJSON accepts either {"url": ..., "type": ...} or a bare URL string.
func (m *Media) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var url string
		if err := json.Unmarshal(data, &url); err != nil {
			return err
		}
		*m = Media{URL: url}
		return nil
	}

	type plain Media
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*m = Media(p)
	return nil
}

// Variant is a purchasable variant of a product (e.g. a fabric or a cut).
type Variant struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Price float64 `json:"price,omitempty"`
}

// Product is a catalog entry as served by the storefront API.
type Product struct {
	ID            string    `json:"id,omitempty"`
	AltID         string    `json:"_id,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	Price         float64   `json:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty"`
	Stock         int       `json:"stock,omitempty"`
	Sizes         []string  `json:"sizes,omitempty"`
	ColorNames    []string  `json:"colors,omitempty"`
	Variants      []Variant `json:"variants,omitempty"`
	Featured      bool      `json:"featured,omitempty"`

	// Legacy single image and flat image list.
	Image  string  `json:"image,omitempty"`
	Images []Media `json:"images,omitempty"`

	// Media is either a LegacyMediaList or a PerColorMedia; nil when absent.
	Media MediaSet `json:"-"`
}

// Identifier returns the product id, falling back to the alternate id field.
func (p *Product) Identifier() string {
	if p.ID != "" {
		return p.ID
	}
	return p.AltID
}

// Matches reports whether id equals either identifier field.
func (p *Product) Matches(id string) bool {
	return id != "" && (p.ID == id || p.AltID == id)
}

// IsOnSale reports whether an original price above the current price is set.
func (p *Product) IsOnSale() bool {
	return p.OriginalPrice != nil && *p.OriginalPrice > p.Price
}

// InStock reports whether the product can be ordered.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// VariantByID returns the variant with the given id, or nil.
func (p *Product) VariantByID(id string) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i]
		}
	}
	return nil
}

// PriceFor returns the variant price when the variant defines one, else the product price.
func (p *Product) PriceFor(variantID string) float64 {
	if v := p.VariantByID(variantID); v != nil && v.Price > 0 {
		return v.Price
	}
	return p.Price
}

// Colors lists declared colors followed by any color that only appears in media.
func (p *Product) Colors() []string {
	seen := make(map[string]bool)
	var colors []string
	for _, c := range p.ColorNames {
		if !seen[c] {
			seen[c] = true
			colors = append(colors, c)
		}
	}
	if pc, ok := p.Media.(*PerColorMedia); ok {
		for _, c := range pc.Colors {
			if !seen[c] {
				seen[c] = true
				colors = append(colors, c)
			}
		}
	}
	return colors
}

type productJSON Product

type productWire struct {
	*productJSON
	Media json.RawMessage `json:"media,omitempty"`
}

// UnmarshalJSON decodes the product and resolves the shape of the media field once.
func (p *Product) UnmarshalJSON(data []byte) error {
	wire := productWire{productJSON: (*productJSON)(p)}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	set, err := decodeMediaSet(wire.Media)
	if err != nil {
		return fmt.Errorf("decoding media: %w", err)
	}
	p.Media = set
	return nil
}

// MarshalJSON encodes the media set back into its original shape.
func (p Product) MarshalJSON() ([]byte, error) {
	wire := productWire{productJSON: (*productJSON)(&p)}
	if p.Media != nil {
		raw, err := json.Marshal(p.Media)
		if err != nil {
			return nil, err
		}
		wire.Media = raw
	}
	return json.Marshal(wire)
}

func decodeMediaSet(raw json.RawMessage) (MediaSet, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch raw[0] {
	case '[':
		var list LegacyMediaList
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, err
		}
		return list, nil
	case '{':
		var pc PerColorMedia
		if err := json.Unmarshal(raw, &pc); err != nil {
			return nil, err
		}
		return &pc, nil
	}
	return nil, fmt.Errorf("unexpected media shape %q", strings.TrimSpace(string(raw[:1])))
}
