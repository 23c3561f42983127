package layout

// LayoutConfig holds all layout-related configuration values.
type LayoutConfig struct {
	Board BoardConfig
	Modal ModalConfig
	Input InputConfig
	Text  TextConfig
}

// BoardConfig holds board dimension configuration.
type BoardConfig struct {
	// HeightReduction is subtracted from terminal height for board content.
	// Accounts for: title (1) + blank (1) + status line (1) + help bar (1) = 4
	HeightReduction int

	// MinHeight is the minimum board height.
	MinHeight int

	// ContentPadding is subtracted from terminal width for row rendering.
	ContentPadding int

	// GroupIndent is the extra indent of categories inside a tab group.
	GroupIndent int
}

// ModalConfig holds modal dialog configuration.
type ModalConfig struct {
	// WidthPercent is the modal width as percentage of terminal width.
	WidthPercent int

	// MinWidth is the minimum modal width in characters.
	MinWidth int

	// MaxWidth is the maximum modal width in characters.
	MaxWidth int

	// SearchMaxVisible: max results shown in the search overlay.
	SearchMaxVisible int
}

// InputConfig holds text input configuration.
type InputConfig struct {
	NameCharLimit   int
	TitleCharLimit  int
	URLCharLimit    int
	SearchCharLimit int

	Width int
}

// TextConfig holds text truncation configuration.
type TextConfig struct {
	// Ellipsis is the string used to indicate truncation.
	Ellipsis string
}

// DefaultConfig returns the default layout configuration.
func DefaultConfig() LayoutConfig {
	return LayoutConfig{
		Board: BoardConfig{
			HeightReduction: 4,
			MinHeight:       5,
			ContentPadding:  4,
			GroupIndent:     2,
		},
		Modal: ModalConfig{
			WidthPercent:     50,
			MinWidth:         40,
			MaxWidth:         80,
			SearchMaxVisible: 10,
		},
		Input: InputConfig{
			NameCharLimit:   60,
			TitleCharLimit:  100,
			URLCharLimit:    500,
			SearchCharLimit: 100,
			Width:           40,
		},
		Text: TextConfig{
			Ellipsis: "...",
		},
	}
}
