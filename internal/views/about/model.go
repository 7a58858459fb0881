// Package about is the scrollable about screen: connection details, key
// reference and the history of notices raised this run.
package about

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/viewport"

	"github.com/masquevpn/panel/internal/notice"
	"github.com/masquevpn/panel/internal/ui"
)

// Info is the static part of the screen.
type Info struct {
	App        string
	Version    string
	Server     string
	ConfigPath string
	User       string
}

// Entry is one line of notice history.
type Entry struct {
	At     time.Time
	Notice notice.Notice
}

// Model is the about screen.
type Model struct {
	viewport viewport.Model
	info     Info
	history  []Entry
	width    int
	height   int
}

// New creates the about screen.
func New() Model {
	return Model{viewport: viewport.New(viewport.WithWidth(80), viewport.WithHeight(24))}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.SetWidth(w - 2)
	m.viewport.SetHeight(h)
}

// SetInfo replaces the static details.
func (m *Model) SetInfo(info Info) {
	m.info = info
	m.render()
}

// SetHistory replaces the notice history, newest last.
func (m *Model) SetHistory(h []Entry) {
	atBottom := m.viewport.AtBottom()
	m.history = h
	m.render()
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// Update handles scrolling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the screen.
func (m Model) View() string {
	return m.viewport.View()
}

func (m *Model) render() {
	var b strings.Builder
	b.WriteString(ui.StyleAccent.Render(m.info.App) + "  " + ui.StyleDim.Render(m.info.Version) + "\n")
	b.WriteString(ui.StyleDim.Render("server:  ") + m.info.Server + "\n")
	if m.info.ConfigPath != "" {
		b.WriteString(ui.StyleDim.Render("config:  ") + m.info.ConfigPath + "\n")
	}
	if m.info.User != "" {
		b.WriteString(ui.StyleDim.Render("user:    ") + m.info.User + "\n")
	}
	b.WriteString(ui.StyleDim.Render("────────────────────────────────────────") + "\n\n")

	b.WriteString(ui.StyleHeader.Render("Keys") + "\n")
	b.WriteString(keyHelp)
	b.WriteString("\n" + ui.StyleHeader.Render("Notices") + "\n")
	if len(m.history) == 0 {
		b.WriteString(ui.StyleDim.Render("(none yet)"))
	}
	for _, e := range m.history {
		b.WriteString(ui.StyleDim.Render(e.At.Format("15:04:05")) + " ")
		b.WriteString(ui.NoticeStyle(e.Notice.Severity).Render(e.Notice.Severity.String()) + " ")
		b.WriteString(e.Notice.Message + "\n")
	}
	m.viewport.SetContent(b.String())
}

const keyHelp = `  1 / 2 / 3       clients / settings / about
  tab             next screen
  n               new client
  d               download selected client
  x               delete selected client
  r               refresh now
  g               generate CA (when missing)
  L               log out
  ?               help
  q, ctrl+c       quit
`
