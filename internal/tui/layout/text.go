package layout

import "github.com/charmbracelet/x/ansi"

// Width returns the number of terminal cells s occupies, ignoring escape codes.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// Strip removes escape codes from s.
func Strip(s string) string {
	return ansi.Strip(s)
}

// Fit truncates s to width cells, ending in the configured ellipsis.
// Styled text keeps its escape codes. Text that already fits is returned as-is.
func Fit(s string, width int, cfg TextConfig) string {
	if width <= 0 {
		return ""
	}
	if Width(s) <= width {
		return s
	}
	if Width(cfg.Ellipsis) >= width {
		return ansi.Truncate(cfg.Ellipsis, width, "")
	}
	return ansi.Truncate(s, width, cfg.Ellipsis)
}

// Label fits prefix+text into width, shortening text before prefix.
// Example: Label("* ", "Development", 10, cfg) -> "* Devel..."
func Label(prefix, text string, width int, cfg TextConfig) string {
	room := width - Width(prefix)
	if room <= Width(cfg.Ellipsis) {
		return Fit(prefix+text, width, cfg)
	}
	return prefix + Fit(text, room, cfg)
}
