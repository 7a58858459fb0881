package ui

import (
	"github.com/BurntSushi/toml"
)

// Theme holds the resolved color palette as hex strings.
type Theme struct {
	Foreground string `toml:"foreground"`
	Accent     string `toml:"accent"`
	Highlight  string `toml:"highlight"`
	Dim        string `toml:"dim"`
	Red        string `toml:"red"`
	Green      string `toml:"green"`
	Yellow     string `toml:"yellow"`
	Blue       string `toml:"blue"`
	Border     string `toml:"border"`
	Header     string `toml:"header"`
}

// T is the active palette.
var T = DefaultTheme()

// DefaultTheme returns the built-in palette.
func DefaultTheme() Theme {
	return Theme{
		Foreground: "#e5e7eb",
		Accent:     "#8b5cf6",
		Highlight:  "#facc15",
		Dim:        "#6b7280",
		Red:        "#ef4444",
		Green:      "#22c55e",
		Yellow:     "#eab308",
		Blue:       "#3b82f6",
		Border:     "#374151",
		Header:     "#f9fafb",
	}
}

// LoadTheme reads a palette file (keys as in Theme's toml tags) over the
// defaults. A missing or broken file yields the defaults.
func LoadTheme(path string) Theme {
	t := DefaultTheme()
	if path == "" {
		return t
	}
	var file Theme
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return t
	}
	merge(&t.Foreground, file.Foreground)
	merge(&t.Accent, file.Accent)
	merge(&t.Highlight, file.Highlight)
	merge(&t.Dim, file.Dim)
	merge(&t.Red, file.Red)
	merge(&t.Green, file.Green)
	merge(&t.Yellow, file.Yellow)
	merge(&t.Blue, file.Blue)
	merge(&t.Border, file.Border)
	merge(&t.Header, file.Header)
	return t
}

func merge(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
