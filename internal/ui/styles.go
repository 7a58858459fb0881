package ui

import (
	"charm.land/lipgloss/v2"

	"github.com/masquevpn/panel/internal/notice"
)

var (
	StyleHeader    lipgloss.Style
	StyleOnline    lipgloss.Style
	StyleOffline   lipgloss.Style
	StyleDim       lipgloss.Style
	StyleAccent    lipgloss.Style
	StyleError     lipgloss.Style
	StyleWarning   lipgloss.Style
	StyleSuccess   lipgloss.Style
	StyleHighlight lipgloss.Style
	StyleBorder    lipgloss.Style
	StyleFocused   lipgloss.Style

	StyleMenuPanel    lipgloss.Style
	StyleMenuSelected lipgloss.Style
)

func init() { Apply(T) }

// Apply makes t the active palette and rebuilds every style.
func Apply(t Theme) {
	T = t
	StyleHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Header))
	StyleOnline = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Green))
	StyleOffline = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Dim))
	StyleDim = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Dim))
	StyleAccent = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent))
	StyleError = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Red))
	StyleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Yellow))
	StyleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color(t.Green))
	StyleHighlight = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Highlight))
	StyleBorder = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color(t.Border)).
		PaddingLeft(1)
	StyleFocused = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(t.Accent))

	StyleMenuPanel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(t.Border)).
		PaddingLeft(1).
		PaddingRight(1)
	StyleMenuSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(t.Header)).
		Background(lipgloss.Color(t.Accent))
}

// StatusIcon renders a client's connection state.
func StatusIcon(online bool) string {
	if online {
		return StyleOnline.Render("●")
	}
	return StyleOffline.Render("○")
}

// StatusText is StatusIcon's label.
func StatusText(online bool) string {
	if online {
		return StyleOnline.Render("online")
	}
	return StyleOffline.Render("offline")
}

// NoticeStyle picks the style for a notice severity.
func NoticeStyle(s notice.Severity) lipgloss.Style {
	switch s {
	case notice.SeverityError:
		return StyleError
	case notice.SeverityWarning:
		return StyleWarning
	case notice.SeveritySuccess:
		return StyleSuccess
	default:
		return StyleAccent
	}
}
