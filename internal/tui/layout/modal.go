package layout

// CalculateModalWidth sizes a modal to WidthPercent of the terminal, within
// MinWidth and MaxWidth, leaving a two-cell margin on each side.
func CalculateModalWidth(terminalWidth int, cfg ModalConfig) int {
	width := min(max(terminalWidth*cfg.WidthPercent/100, cfg.MinWidth), cfg.MaxWidth)
	return max(min(width, terminalWidth-4), 1)
}
