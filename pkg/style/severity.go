package style

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"

	"modfuse/pkg/types"
)

// SeverityStyle returns the lipgloss style for a conflict severity.
func SeverityStyle(s types.ConflictSeverity) lipgloss.Style {
	switch s {
	case types.SeverityCritical:
		return ErrorStyle
	case types.SeverityHigh:
		return WarningStyle
	case types.SeverityMedium:
		return InfoStyle
	default:
		return MutedStyle
	}
}

// SeverityBadge returns an uppercase pterm-styled badge for a
// severity, used in conflict listings.
func SeverityBadge(s types.ConflictSeverity) string {
	label := strings.ToUpper(s.String())
	switch s {
	case types.SeverityCritical:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite, pterm.Bold).Sprint(label)
	case types.SeverityHigh:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack).Sprint(label)
	case types.SeverityMedium:
		return pterm.NewStyle(pterm.FgCyan).Sprint(label)
	default:
		return pterm.NewStyle(pterm.FgGray).Sprint(label)
	}
}

// Bold renders the string bold via pterm.
func Bold(s string) string { return pterm.Bold.Sprint(s) }

// Italic renders the string italic via pterm.
func Italic(s string) string { return pterm.Italic.Sprint(s) }

// Underline renders the string underlined via pterm.
func Underline(s string) string { return pterm.Underscore.Sprint(s) }
