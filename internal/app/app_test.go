package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/masquevpn/panel/internal/auth"
	"github.com/masquevpn/panel/internal/backend"
	"github.com/masquevpn/panel/internal/clients"
	"github.com/masquevpn/panel/internal/notice"
	"github.com/masquevpn/panel/internal/paneltest"
	"github.com/masquevpn/panel/internal/router"
	"github.com/masquevpn/panel/internal/views/form"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

// newTestModel wires a model against a fake server with one client and a
// logged-in session. The bridge has no sender, so callbacks are dropped.
func newTestModel(t *testing.T) (model, *paneltest.Server) {
	t.Helper()
	srv := paneltest.New(t)
	srv.AddClient("client-a", true)

	cfg := backend.DefaultConfig(AppName)
	cfg.Server.URL = srv.URL()
	cfg.General.StateDir = t.TempDir()
	cfg.General.DownloadDir = t.TempDir()

	ctx := context.Background()
	d, err := wire(ctx, Options{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, &bridge{})
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	t.Cleanup(func() {
		d.sync.Stop()
		d.sync.Wait()
	})
	if err := d.store.Login(ctx, paneltest.Username, paneltest.Password); err != nil {
		t.Fatalf("Login: %v", err)
	}

	m := newModel(d)
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, srv
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(model)
}

func updateCmd(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func onClients(t *testing.T, m model) model {
	t.Helper()
	m = update(t, m, NavigatedMsg{Location: router.To(router.Clients)})
	return update(t, m, ViewChangedMsg{View: clients.View{
		Clients: []backend.ManagedClient{{ID: "client-a", Online: true}},
		Loaded:  true,
	}})
}

func TestNoticeExpires(t *testing.T) {
	m, _ := newTestModel(t)
	n := notice.Warning(notice.SessionExpired)

	m, cmd := updateCmd(t, m, NoticeMsg{Notice: n})
	if cmd == nil {
		t.Fatal("NoticeMsg returned no expiry tick")
	}
	if len(m.notices) != 1 {
		t.Fatalf("notices = %d, want 1", len(m.notices))
	}
	if !strings.Contains(m.View().Content, notice.SessionExpired) {
		t.Error("view does not show the notice")
	}

	m = update(t, m, NoticeExpiredMsg{ID: "someone-else"})
	if len(m.notices) != 1 {
		t.Fatalf("unrelated expiry removed a notice")
	}
	m = update(t, m, NoticeExpiredMsg{ID: n.ID.String()})
	if len(m.notices) != 0 {
		t.Errorf("notices = %d after expiry, want 0", len(m.notices))
	}
	if len(m.history) != 1 {
		t.Errorf("history = %d, want the expired notice kept", len(m.history))
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, srv := newTestModel(t)
	m = onClients(t, m)

	m = update(t, m, keyPress('x'))
	if m.confirm != "client-a" {
		t.Fatalf("confirm = %q, want client-a", m.confirm)
	}
	if !strings.Contains(m.View().Content, clients.DeletePrompt("client-a")) {
		t.Error("footer does not show the delete prompt")
	}

	m, cmd := updateCmd(t, m, keyPress('n'))
	if m.confirm != "" || cmd != nil {
		t.Fatalf("declining left confirm=%q cmd=%v", m.confirm, cmd)
	}
	if n := srv.Calls("/api/delete_client"); n != 0 {
		t.Fatalf("declined delete reached the server %d times", n)
	}

	m = update(t, m, keyPress('x'))
	_, cmd = updateCmd(t, m, keyPress('y'))
	if cmd == nil {
		t.Fatal("confirming returned no command")
	}
	msg, ok := cmd().(DeleteResultMsg)
	if !ok || msg.Err != nil || msg.ID != "client-a" {
		t.Fatalf("delete result = %+v", msg)
	}
	if ids := srv.ClientIDs(); len(ids) != 0 {
		t.Errorf("server still holds %v", ids)
	}
}

func TestCreateFormOpensPrefilledAndCancels(t *testing.T) {
	m, _ := newTestModel(t)
	m = onClients(t, m)

	m = update(t, m, keyPress('n'))
	if !m.creating {
		t.Fatal("n did not open the create form")
	}
	if got := m.createForm.Values()[2]; got != "1413" {
		t.Errorf("MTU prefill = %q, want 1413", got)
	}

	m, cmd := updateCmd(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("esc returned no command")
	}
	m = update(t, m, cmd())
	if m.creating {
		t.Error("create form still open after cancel")
	}
}

func TestCreateSubmitRejectsBadMTU(t *testing.T) {
	m, srv := newTestModel(t)
	m = onClients(t, m)
	m = update(t, m, keyPress('n'))

	m, cmd := updateCmd(t, m, form.SubmitMsg{Form: formCreate, Values: []string{"vpn.example.com:443", "vpn", "12", ""}})
	if cmd == nil {
		t.Fatal("submit returned no command")
	}
	res := cmd().(CreateResultMsg)
	if !errors.Is(res.Err, clients.ErrInvalidMTU) {
		t.Fatalf("Err = %v, want ErrInvalidMTU", res.Err)
	}
	m = update(t, m, res)
	if !m.creating {
		t.Error("form closed on a validation error")
	}
	if !strings.Contains(m.View().Content, clients.ErrInvalidMTU.Error()) {
		t.Error("form does not show the validation error")
	}
	if n := srv.Calls("/api/gen_client"); n != 0 {
		t.Errorf("invalid params reached the server %d times", n)
	}
}

func TestNavigatedSwitchesScreen(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, NavigatedMsg{Location: router.To(router.Login)})
	if !strings.Contains(m.View().Content, "Sign in to") {
		t.Error("login screen not rendered")
	}

	m = update(t, m, NavigatedMsg{Location: router.To(router.About)})
	if m.loc.Name != router.About {
		t.Errorf("loc = %q, want about", m.loc.Name)
	}
	if !strings.Contains(m.View().Content, "Notices") {
		t.Error("about screen not rendered")
	}
}

func TestLoginSubmitFollowsRedirect(t *testing.T) {
	m, _ := newTestModel(t)
	ctx := context.Background()
	m.store.Logout(ctx)
	m.router.Navigate(router.To(router.Settings))
	cur := m.router.Current()
	if cur.Name != router.Login || cur.Redirect != "/settings" {
		t.Fatalf("router at %+v, want login with redirect", cur)
	}
	m = update(t, m, NavigatedMsg{Location: cur})

	_, cmd := updateCmd(t, m, form.SubmitMsg{Form: formLogin, Values: []string{"admin", "wrong"}})
	res := cmd().(LoginResultMsg)
	if res.Err == nil {
		t.Fatal("wrong password accepted")
	}
	m = update(t, m, res)
	if !strings.Contains(m.View().Content, "invalid username or password") {
		t.Error("login form does not show the reason")
	}

	_, cmd = updateCmd(t, m, form.SubmitMsg{Form: formLogin, Values: []string{" admin ", paneltest.Password}})
	if res := cmd().(LoginResultMsg); res.Err != nil {
		t.Fatalf("login: %v", res.Err)
	}
	if got := m.router.Current(); got.Name != router.Settings {
		t.Errorf("after login router at %+v, want settings", got)
	}
	if !m.store.Authenticated() {
		t.Error("store not authenticated after login")
	}
}

func TestSessionLossReevaluatesGuard(t *testing.T) {
	m, _ := newTestModel(t)
	m.router.Navigate(router.To(router.Clients))
	m = update(t, m, NavigatedMsg{Location: router.To(router.Clients)})

	m.store.Logout(context.Background())
	_, cmd := updateCmd(t, m, SessionChangedMsg{Session: auth.Session{}})
	if cmd == nil {
		t.Fatal("losing the session on a protected screen returned no command")
	}
	cmd()
	if got := m.router.Current(); got.Name != router.Login {
		t.Errorf("router at %+v, want login", got)
	}

	m = update(t, m, NavigatedMsg{Location: router.To(router.Login)})
	if _, cmd := updateCmd(t, m, SessionChangedMsg{Session: auth.Session{}}); cmd != nil {
		t.Error("session change on the login screen re-ran the guard")
	}
}

func TestDownloadedNotices(t *testing.T) {
	m, _ := newTestModel(t)

	m = update(t, m, DownloadedMsg{ID: "a", Path: "/tmp/a.client.toml"})
	m = update(t, m, DownloadedMsg{ID: "b", Err: &backend.Error{Kind: backend.KindServer, Message: "boom"}})
	m = update(t, m, DownloadedMsg{ID: "c", Err: errors.New("disk full")})

	var got []string
	for _, n := range m.notices {
		got = append(got, n.Severity.String()+": "+n.Message)
	}
	want := []string{"success: Saved /tmp/a.client.toml", "error: Download failed: disk full"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("notices = %q, want %q", got, want)
	}
}

func TestBridge(t *testing.T) {
	var b bridge
	b.Notify(notice.Info("dropped"))

	rec := &recordingSender{}
	b.sender = rec
	b.Notify(notice.Info("hello"))
	b.ViewChanged(clients.View{Loaded: true})
	b.Downloaded("a", "/tmp/a", nil)

	if len(rec.msgs) != 3 {
		t.Fatalf("sent %d messages, want 3", len(rec.msgs))
	}
	if n, ok := rec.msgs[0].(NoticeMsg); !ok || n.Notice.Message != "hello" {
		t.Errorf("first message = %#v", rec.msgs[0])
	}
	if _, ok := rec.msgs[1].(ViewChangedMsg); !ok {
		t.Errorf("second message = %#v", rec.msgs[1])
	}
	if d, ok := rec.msgs[2].(DownloadedMsg); !ok || d.Path != "/tmp/a" {
		t.Errorf("third message = %#v", rec.msgs[2])
	}
}

func typeLine(t *testing.T, m model, line string) (model, tea.Cmd) {
	t.Helper()
	m = update(t, m, keyPress(':'))
	if !m.cmdline.Focused() {
		t.Fatal(": did not open the command line")
	}
	for _, r := range line {
		m = update(t, m, keyPress(r))
	}
	return updateCmd(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
}

func TestCommandLine(t *testing.T) {
	m, srv := newTestModel(t)
	m = onClients(t, m)

	m, cmd := typeLine(t, m, "delete client-a")
	if m.cmdline.Focused() {
		t.Fatal("command line still open after enter")
	}
	m = update(t, m, cmd())
	if m.confirm != "client-a" {
		t.Fatalf("confirm = %q, want the delete prompt for client-a", m.confirm)
	}
	m = update(t, m, keyPress('n'))
	if n := srv.Calls("/api/delete_client"); n != 0 {
		t.Fatalf("command line skipped the prompt, %d deletes", n)
	}

	m, cmd = typeLine(t, m, "frobnicate")
	m = update(t, m, cmd())
	last := m.notices[len(m.notices)-1]
	if last.Severity != notice.SeverityError || !strings.Contains(last.Message, "frobnicate") {
		t.Errorf("notice = %+v, want unknown command error", last)
	}

	m, cmd = typeLine(t, m, "ca status")
	_, cmd = updateCmd(t, m, cmd())
	res := cmd().(CAStatusMsg)
	if !res.Report || res.Err != nil {
		t.Fatalf("ca status result = %+v", res)
	}
	m = update(t, m, res)
	if last := m.notices[len(m.notices)-1]; !strings.Contains(last.Message, "CA") {
		t.Errorf("notice = %q, want the CA state", last.Message)
	}
}
