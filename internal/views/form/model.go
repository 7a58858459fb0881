// Package form is a vertical stack of labelled text inputs with a submit
// action, shared by the login, create-client and settings screens.
package form

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/bubbles/v2/textinput"

	"github.com/masquevpn/panel/internal/ui"
)

// Field describes one input.
type Field struct {
	Label       string
	Placeholder string
	Secret      bool
	CharLimit   int
}

// SubmitMsg is sent when enter is pressed on the last field.
type SubmitMsg struct {
	Form   string
	Values []string
}

// CancelMsg is sent on esc.
type CancelMsg struct {
	Form string
}

// Model is a form.
type Model struct {
	name     string
	title    string
	labels   []string
	inputs   []textinput.Model
	cursor   int
	disabled bool
	err      string
	width    int
}

// New builds a form named name; the name is echoed in SubmitMsg.
func New(name, title string, fields ...Field) Model {
	m := Model{name: name, title: title}
	for _, f := range fields {
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = f.Placeholder
		ti.CharLimit = 256
		if f.CharLimit > 0 {
			ti.CharLimit = f.CharLimit
		}
		if f.Secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		}
		m.labels = append(m.labels, f.Label)
		m.inputs = append(m.inputs, ti)
	}
	return m
}

// Name returns the form's name.
func (m *Model) Name() string { return m.name }

// SetSize updates the input width.
func (m *Model) SetSize(w, _ int) {
	m.width = w
	for i := range m.inputs {
		m.inputs[i].SetWidth(w - 20)
	}
}

// SetValues fills the inputs in order.
func (m *Model) SetValues(values ...string) {
	for i, v := range values {
		if i < len(m.inputs) {
			m.inputs[i].SetValue(v)
		}
	}
}

// Values returns the current input values.
func (m *Model) Values() []string {
	out := make([]string, len(m.inputs))
	for i := range m.inputs {
		out[i] = m.inputs[i].Value()
	}
	return out
}

// Reset clears every input and the error line.
func (m *Model) Reset() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
	}
	m.err = ""
	m.disabled = false
}

// SetBusy disables submission while a request is in flight.
func (m *Model) SetBusy(busy bool) { m.disabled = busy }

// Busy reports whether the form is waiting on a request.
func (m *Model) Busy() bool { return m.disabled }

// SetError shows msg under the form and re-enables it.
func (m *Model) SetError(msg string) {
	m.err = msg
	m.disabled = false
}

// Focus focuses the first input.
func (m *Model) Focus() tea.Cmd {
	m.cursor = 0
	return m.focusCursor()
}

// Blur unfocuses every input.
func (m *Model) Blur() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
}

func (m *Model) focusCursor() tea.Cmd {
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.cursor {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

// Update handles navigation and typing.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "esc":
			name := m.name
			return m, func() tea.Msg { return CancelMsg{Form: name} }
		case "tab", "down":
			m.cursor = (m.cursor + 1) % len(m.inputs)
			return m, m.focusCursor()
		case "shift+tab", "up":
			m.cursor = (m.cursor - 1 + len(m.inputs)) % len(m.inputs)
			return m, m.focusCursor()
		case "enter":
			if m.cursor < len(m.inputs)-1 {
				m.cursor++
				return m, m.focusCursor()
			}
			if m.disabled {
				return m, nil
			}
			m.disabled = true
			m.err = ""
			name, values := m.name, m.Values()
			return m, func() tea.Msg { return SubmitMsg{Form: name, Values: values} }
		}
	}

	var cmd tea.Cmd
	m.inputs[m.cursor], cmd = m.inputs[m.cursor].Update(msg)
	return m, cmd
}

// View renders the form.
func (m Model) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(ui.StyleHeader.Render(m.title))
		b.WriteString("\n\n")
	}
	for i := range m.inputs {
		label := ui.StyleDim.Render(padRight(m.labels[i], 16))
		if i == m.cursor {
			label = ui.StyleFocused.Render(padRight(m.labels[i], 16))
		}
		b.WriteString("  " + label + m.inputs[i].View() + "\n")
	}
	b.WriteByte('\n')
	switch {
	case m.disabled:
		b.WriteString("  " + ui.StyleDim.Render("working..."))
	case m.err != "":
		b.WriteString("  " + ui.StyleError.Render(m.err))
	default:
		b.WriteString("  " + ui.StyleDim.Render("enter next/submit  │  tab move  │  esc cancel"))
	}
	return b.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
