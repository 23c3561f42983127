package layout

// CalculateBoardHeight computes the number of board lines that fit.
// Returns at least MinHeight.
func CalculateBoardHeight(terminalHeight int, cfg BoardConfig) int {
	return max(terminalHeight-cfg.HeightReduction, cfg.MinHeight)
}

// CalculateContentWidth computes the width available for row content.
func CalculateContentWidth(terminalWidth int, cfg BoardConfig) int {
	return max(terminalWidth-cfg.ContentPadding, 1)
}

// CalculateScrollOffset returns the scroll offset that keeps line visible,
// moving the current offset as little as possible.
func CalculateScrollOffset(offset, line, total, viewportHeight int) int {
	if total <= viewportHeight {
		return 0
	}

	if line < offset {
		offset = line
	}
	if line >= offset+viewportHeight {
		offset = line - viewportHeight + 1
	}

	return max(0, min(offset, total-viewportHeight))
}

// CalculateVisibleListItems returns the window [start, end) of a list of
// total items that shows at most maxVisible of them and includes selected.
func CalculateVisibleListItems(maxVisible, selected, total int) (start, end int) {
	start = CalculateScrollOffset(0, selected, total, maxVisible)
	return start, min(start+maxVisible, total)
}
