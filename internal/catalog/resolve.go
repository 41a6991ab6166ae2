package catalog

// ResolveImage returns a single representative image URL for a product.
//
// A preferred color's first image wins, then the first image of any color, then the
// legacy single image, then the first image of the flat legacy list, then the first
// legacy entry of any type, then PlaceholderImage.
func ResolveImage(p *Product, preferredColor string) string {
	if p == nil {
		return PlaceholderImage
	}

	if pc, ok := p.Media.(*PerColorMedia); ok && pc != nil {
		if preferredColor != "" {
			if url, ok := firstImage(pc.ByColor[preferredColor]); ok {
				return url
			}
		}
		for _, color := range pc.Colors {
			if url, ok := firstImage(pc.ByColor[color]); ok {
				return url
			}
		}
	}

	if p.Image != "" {
		return p.Image
	}

	legacy := legacyList(p)
	if url, ok := firstImage(legacy); ok {
		return url
	}
	for _, m := range legacy {
		if m.URL != "" {
			return m.URL
		}
	}
	return PlaceholderImage
}

// ResolveVideo returns the first video URL, preferring the given color.
func ResolveVideo(p *Product, preferredColor string) (string, bool) {
	if p == nil {
		return "", false
	}
	if pc, ok := p.Media.(*PerColorMedia); ok && pc != nil {
		if preferredColor != "" {
			if url, ok := firstVideo(pc.ByColor[preferredColor]); ok {
				return url, true
			}
		}
		for _, color := range pc.Colors {
			if url, ok := firstVideo(pc.ByColor[color]); ok {
				return url, true
			}
		}
	}
	return firstVideo(legacyList(p))
}

// legacyList is the flat list form: a list-shaped media field followed by images.
func legacyList(p *Product) []Media {
	list, _ := p.Media.(LegacyMediaList)
	if len(list) == 0 {
		return p.Images
	}
	if len(p.Images) == 0 {
		return list
	}
	merged := make([]Media, 0, len(list)+len(p.Images))
	merged = append(merged, list...)
	return append(merged, p.Images...)
}

func firstImage(list []Media) (string, bool) {
	for _, m := range list {
		if m.IsImage() && m.URL != "" {
			return m.URL, true
		}
	}
	return "", false
}

func firstVideo(list []Media) (string, bool) {
	for _, m := range list {
		if m.IsVideo() && m.URL != "" {
			return m.URL, true
		}
	}
	return "", false
}
