package badge

import "strings"

// Theme selects a rendering strategy. Unknown names fall back to Simple.
type Theme string

const (
	Simple Theme = "simple"
	Dark   Theme = "dark"
	Digits Theme = "3d-num"
)

func ParseTheme(value string) Theme {
	switch theme := Theme(strings.ToLower(strings.TrimSpace(value))); theme {
	case Simple, Dark, Digits:
		return theme
	default:
		return Simple
	}
}

func (t Theme) String() string {
	return string(t)
}

type palette struct {
	Background string
	Accent     string
	Panel      string
	Text       string
}

var palettes = map[Theme]palette{
	Simple: {
		Background: "#111827",
		Accent:     "#10B981",
		Panel:      "rgba(15,23,42,0.9)",
		Text:       "#F9FAFB",
	},
	Dark: {
		Background: "#030712",
		Accent:     "#374151",
		Panel:      "#111827",
		Text:       "#E5E7EB",
	},
}

func paletteFor(theme Theme) palette {
	if p, ok := palettes[theme]; ok {
		return p
	}

	return palettes[Simple]
}
