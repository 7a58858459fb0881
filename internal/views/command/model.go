// Package command is the ":" command line of the panel, with a completion
// menu over commands and client ids.
package command

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/textinput"

	"github.com/masquevpn/panel/internal/ui"
)

const maxMenuRows = 10

// ExecuteMsg is sent when a command line is submitted.
type ExecuteMsg struct {
	Args []string
}

// Model is the command line + completion menu.
type Model struct {
	input     textinput.Model
	completer *Completer
	focused   bool
	width     int

	candidates []Candidate
	selected   int // index into candidates, -1 = none
}

// New creates a new command model.
func New() Model {
	ti := textinput.New()
	ti.Prompt = ": "
	ti.Placeholder = "type a command, tab completes"
	ti.CharLimit = 256

	return Model{
		input:     ti,
		completer: NewCompleter(),
		selected:  -1,
	}
}

// SetSize updates dimensions.
func (m *Model) SetSize(w int) {
	m.width = w
	m.input.SetWidth(w - 4)
}

// SetClientIDs updates completion for client ids.
func (m *Model) SetClientIDs(ids []string) {
	m.completer.SetClientIDs(ids)
}

// Focus activates the command line and shows every command.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	m.input.SetValue("")
	m.updateCandidates()
	return m.input.Focus()
}

// Blur deactivates the command line.
func (m *Model) Blur() {
	m.focused = false
	m.candidates = nil
	m.selected = -1
	m.input.Blur()
}

// Focused returns whether the command line has focus.
func (m *Model) Focused() bool {
	return m.focused
}

// Update handles keys while focused. Enter on a complete line closes the
// command line and emits ExecuteMsg; esc just closes it.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	key := keyMsg.String()

	if len(m.candidates) > 0 {
		switch key {
		case "down":
			m.selected = (m.selected + 1) % len(m.candidates)
			return m, nil
		case "up":
			m.selected--
			if m.selected < 0 {
				m.selected = len(m.candidates) - 1
			}
			return m, nil
		case "tab":
			m.acceptCandidate(max(m.selected, 0))
			m.updateCandidates()
			return m, nil
		}
	}

	switch key {
	case "enter":
		if m.selected >= 0 && m.selected < len(m.candidates) {
			m.acceptCandidate(m.selected)
			m.updateCandidates()
			return m, nil
		}
		args := strings.Fields(m.input.Value())
		m.Blur()
		if len(args) == 0 {
			return m, nil
		}
		return m, func() tea.Msg { return ExecuteMsg{Args: args} }

	case "esc":
		m.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.updateCandidates()
	return m, cmd
}

func (m *Model) acceptCandidate(idx int) {
	if idx < 0 || idx >= len(m.candidates) {
		return
	}
	c := m.candidates[idx]
	val := m.input.Value()
	parts := strings.Fields(val)

	if strings.HasSuffix(val, " ") || len(parts) == 0 {
		m.input.SetValue(val + c.Value + " ")
	} else {
		parts[len(parts)-1] = c.Value
		m.input.SetValue(strings.Join(parts, " ") + " ")
	}
	m.input.CursorEnd()
	m.selected = -1
}

func (m *Model) updateCandidates() {
	m.candidates = m.completer.Complete(m.input.Value())
	m.selected = -1
}

// Height is the number of lines View occupies.
func (m Model) Height() int {
	if !m.focused {
		return 0
	}
	if len(m.candidates) == 0 {
		return 1
	}
	return min(len(m.candidates), maxMenuRows) + 3 // border + input line
}

// View renders the completion menu above the input line.
func (m Model) View() string {
	if !m.focused {
		return ""
	}
	var b strings.Builder
	if len(m.candidates) > 0 {
		b.WriteString(m.renderCandidates())
		b.WriteByte('\n')
	}
	b.WriteString(m.input.View())
	return b.String()
}

func (m *Model) renderCandidates() string {
	maxValue := 0
	for _, c := range m.candidates {
		maxValue = max(maxValue, len(c.Value))
	}

	shown := m.candidates
	if len(shown) > maxMenuRows {
		shown = shown[:maxMenuRows]
	}

	var rows strings.Builder
	for i, c := range shown {
		if i > 0 {
			rows.WriteByte('\n')
		}
		value := fmt.Sprintf("%-*s", maxValue, c.Value)
		desc := ""
		if c.Desc != "" {
			desc = "  " + c.Desc
		}
		if i == m.selected {
			rows.WriteString(ui.StyleMenuSelected.Render(value + desc))
		} else {
			rows.WriteString(value + ui.StyleDim.Render(desc))
		}
	}

	return ui.StyleMenuPanel.Width(max(m.width-4, 40)).Render(rows.String())
}
