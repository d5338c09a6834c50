package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// plain disables borders and colors for piped output.
var plain bool

// UsePlainStyles strips every style down to unstyled text and turns boxes
// off. Call it once at startup when stdout is not a terminal.
func UsePlainStyles() {
	plain = true
	none := lipgloss.NewStyle()
	StyleGreen, StyleYellow, StyleRed, StyleBlue = none, none, none, none
	StylePurple, StyleDim, StyleFg, StyleHeader, StyleBold = none, none, none, none, none
}

// RiskIndicator returns a colored due-date risk label such as "● CRITICAL".
func RiskIndicator(risk domain.RiskLevel) string {
	switch risk {
	case domain.RiskCritical:
		return StyleRed.Render("● CRITICAL")
	case domain.RiskAtRisk:
		return StyleYellow.Render("● AT RISK")
	case domain.RiskOnTrack:
		return StyleGreen.Render("● ON TRACK")
	default:
		return StyleDim.Render("--")
	}
}

// WorkItemStatusPill returns a colored status indicator for work item status.
func WorkItemStatusPill(status domain.WorkItemStatus) string {
	switch status {
	case domain.WorkItemTodo:
		return StyleBlue.Render("○ Todo")
	case domain.WorkItemInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.WorkItemDone:
		return StyleDim.Render("✔ Done")
	default:
		return StyleDim.Render(string(status))
	}
}

// KindBadge renders the two-letter dependency kind.
func KindBadge(kind domain.DependencyType) string {
	if kind == domain.FinishToStart {
		return StyleBlue.Render(kind.Short())
	}
	return StylePurple.Render(kind.Short())
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", len(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
