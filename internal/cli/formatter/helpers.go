package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/planwright/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderBox wraps content in a rounded-border box with an optional title.
// In plain mode the title becomes a header line and the border is dropped.
func RenderBox(title string, content string) string {
	if plain {
		if title == "" {
			return content
		}
		return Header(title) + "\n" + content
	}

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// RenderBar renders a utilization bar like [████░░░░]  45%. Values above
// 100% fill the bar and are shown as-is; the bar turns red past 90%.
func RenderBar(pct float64, width int) string {
	if width < 2 {
		width = 2
	}
	frac := pct / 100
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(frac * float64(width))
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	style := StyleGreen
	switch {
	case pct > 90:
		style = StyleRed
	case pct > 70:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct)
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// FormatHours renders hours compactly: "8h", "2.5h", or "--" when unset.
func FormatHours(h *float64) string {
	if h == nil {
		return Dim("--")
	}
	return strconv.FormatFloat(*h, 'f', -1, 64) + "h"
}

// FormatDate renders a calendar day as YYYY-MM-DD with its weekday.
func FormatDate(t time.Time) string {
	return t.Format("Mon ") + domain.DateKey(t)
}

// OptionalDate renders a date or "--".
func OptionalDate(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return domain.DateKey(*t)
}
