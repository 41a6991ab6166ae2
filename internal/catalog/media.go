package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MediaSet is the media attached to a product: either a LegacyMediaList or a
// *PerColorMedia.
type MediaSet interface {
	mediaSet()
}

// LegacyMediaList is a flat ordered list of media not keyed by color.
type LegacyMediaList []Media

func (LegacyMediaList) mediaSet() {}

// PerColorMedia maps a color name to its ordered media list. Colors keeps the
// order in which colors were declared; lookups must not rely on it meaning anything.
type PerColorMedia struct {
	Colors  []string
	ByColor map[string][]Media
}

func (*PerColorMedia) mediaSet() {}

// NewPerColorMedia builds a PerColorMedia from ordered color names and their lists.
func NewPerColorMedia(colors []string, byColor map[string][]Media) *PerColorMedia {
	pc := &PerColorMedia{ByColor: make(map[string][]Media, len(byColor))}
	for _, c := range colors {
		if list, ok := byColor[c]; ok {
			pc.Add(c, list)
		}
	}
	// Colors missing from the ordered names are appended in map order.
	for c, list := range byColor {
		if _, ok := pc.ByColor[c]; !ok {
			pc.Add(c, list)
		}
	}
	return pc
}

// Add appends media for a color, registering the color on first use.
func (pc *PerColorMedia) Add(color string, media []Media) {
	if pc.ByColor == nil {
		pc.ByColor = make(map[string][]Media)
	}
	if _, ok := pc.ByColor[color]; !ok {
		pc.Colors = append(pc.Colors, color)
	}
	pc.ByColor[color] = append(pc.ByColor[color], media...)
}

// MarshalJSON encodes the mapping as a JSON object in declaration order.
func (pc *PerColorMedia) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range pc.Colors {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(pc.ByColor[c])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the order of its keys.
func (pc *PerColorMedia) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("per-color media must be a JSON object")
	}

	*pc = PerColorMedia{ByColor: make(map[string][]Media)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		color, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", tok)
		}
		var list []Media
		if err := dec.Decode(&list); err != nil {
			return fmt.Errorf("color %q: %w", color, err)
		}
		pc.Add(color, list)
	}
	_, err = dec.Token()
	return err
}
