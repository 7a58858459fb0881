package command

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/google/go-cmp/cmp"
)

func values(cs []Candidate) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.Value)
	}
	return out
}

func TestComplete(t *testing.T) {
	c := NewCompleter()
	c.SetClientIDs([]string{"client-a", "client-b", "other"})

	tests := []struct {
		input string
		want  []string
	}{
		{"d", []string{"delete", "download"}},
		{"go", []string{"goto"}},
		{"goto ", []string{"clients", "settings", "about"}},
		{"goto s", []string{"settings"}},
		{"delete ", []string{"client-a", "client-b", "other"}},
		{"download cl", []string{"client-a", "client-b"}},
		{"delete client-a ", nil},
		{"refresh ", nil},
		{"bogus ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, values(c.Complete(tt.input))); diff != "" {
				t.Errorf("Complete(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestTabCompletesAndEnterExecutes(t *testing.T) {
	m := New()
	m.SetClientIDs([]string{"client-a"})
	m.Focus()

	for _, r := range "del" {
		m, _ = m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if got := m.input.Value(); got != "delete client-a " {
		t.Fatalf("input = %q, want completed command", got)
	}

	m, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if m.Focused() {
		t.Error("command line still focused after enter")
	}
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	msg, ok := cmd().(ExecuteMsg)
	if !ok {
		t.Fatalf("msg = %#v, want ExecuteMsg", msg)
	}
	if diff := cmp.Diff([]string{"delete", "client-a"}, msg.Args); diff != "" {
		t.Errorf("Args mismatch (-want +got):\n%s", diff)
	}
}

func TestEscCloses(t *testing.T) {
	m := New()
	m.Focus()
	m, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.Focused() || cmd != nil {
		t.Errorf("esc left focused=%v cmd=%v", m.Focused(), cmd)
	}
	if m.View() != "" {
		t.Error("closed command line still renders")
	}
}
