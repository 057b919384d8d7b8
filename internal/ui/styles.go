package ui

import "github.com/charmbracelet/lipgloss"

// Color palette.
const (
	ColorTeal     = "37"  // Primary accent: titles, selection
	ColorTealDim  = "30"  // References and links
	ColorWhite    = "255" // Headers, important text
	ColorGray     = "245" // Secondary text, labels
	ColorDarkGray = "238" // Box borders, separators
	ColorAmber    = "214" // Variable names
	ColorRed      = "196" // Errors
	ColorYellow   = "220" // Warnings
)

// Styles holds all UI styles for terminal rendering.
type Styles struct {
	// Text styles
	Header    lipgloss.Style
	Title     lipgloss.Style
	Reference lipgloss.Style
	Variable  lipgloss.Style
	Keyword   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Dim       lipgloss.Style
	Label     lipgloss.Style
	Selected  lipgloss.Style

	// Panel/layout styles
	Border lipgloss.Style
	Panel  lipgloss.Style
}

// DefaultStyles returns styled components for color terminals.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorWhite)),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorTeal)),
		Reference: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorTealDim)),
		Variable:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAmber)),
		Keyword:   lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color(ColorGray)),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Label:     lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Selected:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorTeal)),

		Border: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorDarkGray)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(ColorDarkGray)).
			Padding(0, 1),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle(),
		Title:     lipgloss.NewStyle(),
		Reference: lipgloss.NewStyle(),
		Variable:  lipgloss.NewStyle(),
		Keyword:   lipgloss.NewStyle(),
		Warning:   lipgloss.NewStyle(),
		Error:     lipgloss.NewStyle(),
		Dim:       lipgloss.NewStyle(),
		Label:     lipgloss.NewStyle(),
		Selected:  lipgloss.NewStyle(),
		Border:    lipgloss.NewStyle(),
		Panel:     lipgloss.NewStyle(),
	}
}

// GetStyles returns the appropriate styles based on color preference.
func GetStyles(noColor bool) Styles {
	if noColor {
		return NoColorStyles()
	}
	return DefaultStyles()
}
