package form

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/google/go-cmp/cmp"
)

func press(m Model, code rune) (Model, tea.Msg) {
	m, cmd := m.Update(tea.KeyPressMsg{Code: code})
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestEnterAdvancesThenSubmits(t *testing.T) {
	m := New("login", "Sign in", Field{Label: "Username"}, Field{Label: "Password", Secret: true})
	m.Focus()
	m.SetValues("admin", "hunter2")

	m, _ = press(m, tea.KeyEnter)
	if m.cursor != 1 {
		t.Fatalf("cursor = %d after first enter, want 1", m.cursor)
	}
	m, msg := press(m, tea.KeyEnter)
	want := SubmitMsg{Form: "login", Values: []string{"admin", "hunter2"}}
	if diff := cmp.Diff(want, msg); diff != "" {
		t.Errorf("submit mismatch (-want +got):\n%s", diff)
	}
	if !m.Busy() {
		t.Error("form not busy after submit")
	}

	// A second enter while busy must not resubmit.
	if _, msg := press(m, tea.KeyEnter); msg != nil {
		t.Errorf("busy form produced %#v", msg)
	}

	m.SetError("invalid username or password")
	if m.Busy() {
		t.Error("SetError did not re-enable the form")
	}
}

func TestEscCancels(t *testing.T) {
	m := New("create", "", Field{Label: "Server address"})
	m.Focus()
	_, msg := press(m, tea.KeyEscape)
	if diff := cmp.Diff(CancelMsg{Form: "create"}, msg); diff != "" {
		t.Errorf("cancel mismatch (-want +got):\n%s", diff)
	}
}

func TestTabWraps(t *testing.T) {
	m := New("f", "", Field{Label: "a"}, Field{Label: "b"}, Field{Label: "c"})
	m.Focus()
	for _, want := range []int{1, 2, 0} {
		m, _ = press(m, tea.KeyTab)
		if m.cursor != want {
			t.Fatalf("cursor = %d, want %d", m.cursor, want)
		}
	}
}
