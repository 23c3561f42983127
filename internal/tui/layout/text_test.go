package layout_test

import (
	"testing"

	"github.com/nikbrunner/bmboard/internal/tui/layout"
	"gotest.tools/v3/assert"
)

func TestWidth(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"plain", "hello", 5},
		{"styled", "\x1b[1mhello\x1b[0m", 5},
		{"wide runes", "こんにちは", 10},
		{"empty", "", 0},
		{"only escapes", "\x1b[1m\x1b[0m", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, layout.Width(tt.input), tt.want)
		})
	}
}

func TestStrip(t *testing.T) {
	assert.Equal(t, layout.Strip("normal \x1b[1;4mbold\x1b[0m \x1b[31mred\x1b[0m"), "normal bold red")
}

func TestFit(t *testing.T) {
	cfg := layout.DefaultConfig().Text

	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "GitHub", 10, "GitHub"},
		{"exact", "GitHub", 6, "GitHub"},
		{"truncated", "Development", 8, "Devel..."},
		{"wide runes", "こんにちは", 7, "こん..."},
		{"room for ellipsis only", "Development", 3, "..."},
		{"narrower than ellipsis", "Development", 2, ".."},
		{"zero width", "Development", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, layout.Fit(tt.input, tt.width, cfg), tt.want)
		})
	}
}

func TestFit_KeepsStyles(t *testing.T) {
	cfg := layout.DefaultConfig().Text
	styled := "\x1b[1mDevelopment\x1b[0m"

	got := layout.Fit(styled, 8, cfg)

	assert.Equal(t, layout.Strip(got), "Devel...")
	assert.Equal(t, layout.Width(got), 8)
	assert.Assert(t, got != layout.Strip(got), "escape codes were dropped")
}

func TestLabel(t *testing.T) {
	cfg := layout.DefaultConfig().Text

	tests := []struct {
		name   string
		prefix string
		text   string
		width  int
		want   string
	}{
		{"fits", "* ", "Dev", 10, "* Dev"},
		{"shortens text", "* ", "Development", 10, "* Devel..."},
		{"no room after prefix", "* ", "Development", 4, "*..."},
		{"empty prefix", "", "Development", 6, "Dev..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, layout.Label(tt.prefix, tt.text, tt.width, cfg), tt.want)
		})
	}
}
