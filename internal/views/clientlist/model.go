// Package clientlist renders the managed client table and its detail pane.
package clientlist

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/table"
	"charm.land/bubbles/v2/viewport"
	"charm.land/lipgloss/v2"

	"github.com/masquevpn/panel/internal/backend"
	"github.com/masquevpn/panel/internal/clients"
	"github.com/masquevpn/panel/internal/ui"
)

const (
	detailWidthFrac = 0.35
	minDetailWidth  = 28
)

// Model is the client list screen.
type Model struct {
	table   table.Model
	detail  viewport.Model
	view    clients.View
	width   int
	height  int
	focused bool
}

// New creates the client list.
func New() Model {
	cols := []table.Column{
		{Title: " ", Width: 2},
		{Title: "client", Width: 24},
		{Title: "created", Width: 19},
		{Title: "status", Width: 8},
		{Title: " ", Width: 5},
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	m := Model{
		table:   t,
		detail:  viewport.New(viewport.WithWidth(40), viewport.WithHeight(10)),
		focused: true,
	}
	m.RefreshStyles()
	return m
}

// RefreshStyles reapplies theme colors (called on theme change).
func (m *Model) RefreshStyles() {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		BorderBottom(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(ui.T.Border))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color(ui.T.Accent)).
		Bold(true)
	m.table.SetStyles(s)
	m.SetView(m.view)
}

// SetView replaces the rows with the synchronizer's latest view.
func (m *Model) SetView(v clients.View) {
	m.view = v
	rows := make([]table.Row, len(v.Clients))
	for i, c := range v.Clients {
		id, mark := c.ID, ""
		if v.Highlighted(c.ID) {
			id = ui.StyleHighlight.Render(c.ID)
			mark = ui.StyleHighlight.Render("new")
		}
		status := "offline"
		if c.Online {
			status = "online"
		}
		rows[i] = table.Row{ui.StatusIcon(c.Online), id, c.CreatedAt.Display(), status, mark}
	}
	m.table.SetRows(rows)
	if n := len(rows); n > 0 && m.table.Cursor() >= n {
		m.table.SetCursor(n - 1)
	}
	m.detail.SetContent(m.renderDetail())
}

// Selected returns the client under the cursor.
func (m *Model) Selected() (backend.ManagedClient, bool) {
	idx := m.table.Cursor()
	if idx >= 0 && idx < len(m.view.Clients) {
		return m.view.Clients[idx], true
	}
	return backend.ManagedClient{}, false
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	detailW := m.detailWidth()
	m.table.SetWidth(w - detailW - 3)
	m.table.SetHeight(h)
	m.detail.SetWidth(detailW)
	m.detail.SetHeight(h)
}

// Focus sets focus on the table.
func (m *Model) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes focus from the table.
func (m *Model) Blur() {
	m.focused = false
	m.table.Blur()
}

// Update handles messages for the list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	prev := m.table.Cursor()
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.table.Cursor() != prev {
		m.detail.SetContent(m.renderDetail())
	}
	return m, cmd
}

// View renders the table with the detail pane beside it.
func (m Model) View() string {
	var list string
	switch {
	case !m.view.Loaded:
		list = ui.StyleDim.Render(" loading clients...")
	case len(m.view.Clients) == 0:
		list = ui.StyleDim.Render(" no clients yet, press n to create one")
	default:
		list = m.table.View()
	}
	detail := ui.StyleBorder.
		Width(m.detailWidth()).
		Height(m.height).
		Render(m.detail.View())
	return lipgloss.JoinHorizontal(lipgloss.Top, list, detail)
}

func (m *Model) detailWidth() int {
	dw := int(float64(m.width) * detailWidthFrac)
	if dw < minDetailWidth {
		dw = minDetailWidth
	}
	return dw
}

func (m *Model) renderDetail() string {
	c, ok := m.Selected()
	if !ok {
		return ui.StyleDim.Render("No client selected")
	}
	var b strings.Builder
	b.WriteString(ui.StyleAccent.Render("Client: ") + c.ID + "\n")
	b.WriteString(ui.StyleDim.Render("Created: ") + c.CreatedAt.Display() + "\n")
	b.WriteString(ui.StyleDim.Render("Status:  ") + ui.StatusText(c.Online) + "\n")
	if m.view.Highlighted(c.ID) {
		b.WriteString("\n" + ui.StyleHighlight.Render("just created") + "\n")
	}
	b.WriteString("\n" + ui.StyleDim.Render(fmt.Sprintf("d download  │  x delete  (%d total)", len(m.view.Clients))))
	return b.String()
}
