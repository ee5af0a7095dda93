package ui

import "github.com/charmbracelet/lipgloss"

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	grayFg  = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	dimFg   = lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#3C3C3C"}
	errorFg = lipgloss.AdaptiveColor{Light: "#D7005F", Dark: "#FF5F87"}

	titleStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Background(darkGreen).
			Padding(0, 1).
			Render

	lampOffStyle = lipgloss.NewStyle().
			Foreground(dimFg).
			Render

	notationStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Render

	historyStyle = lipgloss.NewStyle().
			Foreground(grayFg).
			Render

	statusStyle = lipgloss.NewStyle().
			Foreground(grayFg).
			Italic(true).
			Render

	errorStyle = lipgloss.NewStyle().
			Foreground(errorFg).
			Render
)

func lampOnStyle(color string) func(...string) string {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(color)).
		Bold(true).
		Render
}
