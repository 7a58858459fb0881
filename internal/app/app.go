package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/masquevpn/panel/internal/auth"
	"github.com/masquevpn/panel/internal/backend"
	"github.com/masquevpn/panel/internal/clients"
	"github.com/masquevpn/panel/internal/notice"
	"github.com/masquevpn/panel/internal/router"
	"github.com/masquevpn/panel/internal/telemetry"
	"github.com/masquevpn/panel/internal/ui"
	"github.com/masquevpn/panel/internal/views/about"
	"github.com/masquevpn/panel/internal/views/clientlist"
	"github.com/masquevpn/panel/internal/views/command"
	"github.com/masquevpn/panel/internal/views/form"
)

const (
	AppName = "masque-panel"

	maxVisibleNotices = 3
	maxHistory        = 100
)

// AppVersion is set at build time.
var AppVersion = "dev"

const (
	formLogin    = "login"
	formCreate   = "create"
	formSettings = "settings"
)

// Options are what the CLI hands the TUI.
type Options struct {
	Config        backend.Config
	Logger        *slog.Logger
	Redact        *telemetry.RedactHandler
	Metrics       *telemetry.Metrics
	ClientOptions []backend.Option
}

// deps are the long-lived collaborators shared by every copy of the model.
type deps struct {
	ctx    context.Context
	cfg    backend.Config
	logger *slog.Logger
	redact *telemetry.RedactHandler
	client *backend.Client
	store  *auth.Store
	router *router.Router
	sync   *clients.Synchronizer
	bridge *bridge
}

// Run starts the TUI application.
func Run(ctx context.Context, opts Options) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ui.Apply(ui.LoadTheme(opts.Config.UI.Theme))

	d, err := wire(ctx, opts, &bridge{})
	if err != nil {
		return err
	}
	defer d.sync.Stop()

	m := newModel(d)
	p := tea.NewProgram(m, tea.WithContext(ctx))
	d.bridge.sender = p

	if path := opts.Config.Path(); path != "" {
		w, err := backend.NewWatcher(AppName, path, p, opts.Logger)
		if err != nil {
			opts.Logger.Warn("config watcher disabled", "error", err)
		} else {
			defer w.Close()
		}
	}

	if addr := opts.Config.General.MetricsAddr; addr != "" && opts.Metrics != nil {
		go func() {
			if err := opts.Metrics.Serve(ctx, addr, opts.Logger); err != nil {
				opts.Logger.Error("metrics server", "error", err)
			}
		}()
	}

	_, err = p.Run()
	return err
}

// wire builds the client, session store, router, interceptor and
// synchronizer, all reporting to b.
func wire(ctx context.Context, opts Options, b *bridge) (*deps, error) {
	cfg := opts.Config
	copts := append([]backend.Option{}, opts.ClientOptions...)
	copts = append(copts,
		backend.WithTimeout(cfg.Server.Timeout.Duration),
		backend.WithLogger(opts.Logger),
	)
	client, err := backend.NewClient(cfg.Server.URL, copts...)
	if err != nil {
		return nil, err
	}
	if opts.Metrics != nil {
		client.Use(opts.Metrics.Middleware())
	}

	store := auth.NewStore(client, opts.Logger)
	rt := router.New(store)
	client.Use(auth.NewInterceptor(store, rt, b, opts.Logger).Middleware())

	store.OnChange(func(s auth.Session) { b.send(SessionChangedMsg{Session: s}) })
	rt.OnChange(func(loc router.Location) { b.send(NavigatedMsg{Location: loc}) })

	sync := clients.New(client, clients.Options{
		PollInterval:    cfg.UI.PollInterval.Duration,
		HighlightWindow: cfg.UI.HighlightWindow.Duration,
		DownloadDir:     cfg.General.DownloadDir,
		Logger:          opts.Logger,
		Listener:        b,
	})

	return &deps{
		ctx:    ctx,
		cfg:    cfg,
		logger: opts.Logger,
		redact: opts.Redact,
		client: client,
		store:  store,
		router: rt,
		sync:   sync,
		bridge: b,
	}, nil
}

// model is the root application model.
type model struct {
	*deps

	width    int
	height   int
	ready    bool
	showHelp bool
	keys     KeyMap
	help     help.Model

	loc       router.Location
	session   auth.Session
	view      clients.View
	caMissing bool
	creating  bool
	confirm   string // client id awaiting delete confirmation

	notices []notice.Notice
	history []about.Entry

	loginForm    form.Model
	createForm   form.Model
	settingsForm form.Model
	clientsView  clientlist.Model
	aboutView    about.Model
	cmdline      command.Model
}

func newModel(d *deps) model {
	return model{
		deps: d,
		keys: DefaultKeyMap(),
		help: help.New(),
		loginForm: form.New(formLogin, "Sign in to "+d.cfg.Server.URL,
			form.Field{Label: "Username", Placeholder: "admin"},
			form.Field{Label: "Password", Secret: true},
		),
		createForm: form.New(formCreate, "New client",
			form.Field{Label: "Server address", Placeholder: "vpn.example.com:443"},
			form.Field{Label: "Server name", Placeholder: "vpn.example.com"},
			form.Field{Label: "MTU", Placeholder: strconv.Itoa(backend.DefaultMTU), CharLimit: 5},
			form.Field{Label: "Interface", Placeholder: "optional tun name"},
		),
		settingsForm: form.New(formSettings, "Server defaults",
			form.Field{Label: "Server address"},
			form.Field{Label: "Server name"},
			form.Field{Label: "MTU", CharLimit: 5},
		),
		clientsView: clientlist.New(),
		aboutView:   about.New(),
		cmdline:     command.New(),
	}
}

func (m model) Init() tea.Cmd {
	return m.checkAuth()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layoutViews()
		return m, nil

	case NavigatedMsg:
		return m.enter(msg.Location)

	case SessionChangedMsg:
		m.session = msg.Session
		m.refreshAbout()
		if !msg.Session.Authenticated {
			if r, ok := router.Lookup(m.loc.Name); ok && r.Requirement == router.RequiresAuth {
				return m, m.reevaluate()
			}
		}
		return m, nil

	case ViewChangedMsg:
		m.view = msg.View
		m.clientsView.SetView(msg.View)
		ids := make([]string, 0, len(msg.View.Clients))
		for _, c := range msg.View.Clients {
			ids = append(ids, c.ID)
		}
		m.cmdline.SetClientIDs(ids)
		return m, nil

	case NoticeMsg:
		return m, m.addNotice(msg.Notice)

	case NoticeExpiredMsg:
		kept := m.notices[:0:0]
		for _, n := range m.notices {
			if n.ID.String() != msg.ID {
				kept = append(kept, n)
			}
		}
		m.notices = kept
		return m, nil

	case DownloadedMsg:
		if msg.Err == nil {
			return m, m.addNotice(notice.Success("Saved " + msg.Path))
		}
		if _, ok := backend.AsError(msg.Err); !ok {
			return m, m.addNotice(notice.Error("Download failed: " + msg.Err.Error()))
		}
		return m, nil

	case LoginResultMsg:
		if msg.Err != nil {
			m.loginForm.SetError(loginReason(msg.Err))
			return m, nil
		}
		m.loginForm.Reset()
		return m, nil

	case CreateResultMsg:
		if msg.Err != nil {
			m.createForm.SetError(createReason(msg.Err))
			if errors.Is(msg.Err, clients.ErrGenerationFailed) {
				return m, m.addNotice(notice.Error(msg.Err.Error()))
			}
			return m, nil
		}
		m.closeCreateForm()
		return m, m.addNotice(notice.Success(fmt.Sprintf("Client %s created, downloading its configuration", msg.ID)))

	case DeleteResultMsg:
		if msg.Err != nil {
			return m, nil
		}
		return m, m.addNotice(notice.Success("Deleted client " + msg.ID))

	case CAStatusMsg:
		if msg.Err != nil {
			return m, nil
		}
		m.caMissing = !msg.Status.Exists
		switch {
		case !msg.Report:
		case msg.Status.Exists:
			return m, m.addNotice(notice.Info("CA present on the server"))
		default:
			return m, m.addNotice(notice.Info("No CA on the server yet"))
		}
		return m, nil

	case CAGeneratedMsg:
		if msg.Err != nil {
			return m, nil
		}
		m.caMissing = false
		return m, m.addNotice(notice.Success("CA and server certificate generated"))

	case ServerConfigLoadedMsg:
		if msg.Err == nil {
			m.settingsForm.SetValues(msg.Config.ServerAddr, msg.Config.ServerName, strconv.Itoa(msg.Config.MTU))
		}
		return m, nil

	case ServerConfigSavedMsg:
		if msg.Err != nil {
			m.settingsForm.SetError(createReason(msg.Err))
			return m, nil
		}
		m.settingsForm.SetError("")
		return m, m.addNotice(notice.Success("Server defaults saved"))

	case backend.ConfigChangedMsg:
		return m.applyConfig(msg)

	case form.SubmitMsg:
		return m.submit(msg)

	case command.ExecuteMsg:
		return m.execute(msg.Args)

	case form.CancelMsg:
		switch msg.Form {
		case formCreate:
			m.closeCreateForm()
		case formSettings:
			return m, m.navigate(router.To(router.Clients))
		}
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveView(msg)
}

func (m model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch {
	case m.cmdline.Focused():
		var cmd tea.Cmd
		m.cmdline, cmd = m.cmdline.Update(msg)
		return m, cmd

	case m.loc.Name == router.Login:
		var cmd tea.Cmd
		m.loginForm, cmd = m.loginForm.Update(msg)
		return m, cmd

	case m.creating:
		var cmd tea.Cmd
		m.createForm, cmd = m.createForm.Update(msg)
		return m, cmd

	case m.confirm != "":
		id := m.confirm
		m.confirm = ""
		if key.Matches(msg, m.keys.Confirm) {
			return m, m.deleteClient(id)
		}
		return m, nil

	case m.loc.Name == router.Settings:
		var cmd tea.Cmd
		m.settingsForm, cmd = m.settingsForm.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m, m.navigate(router.To(nextScreen(m.loc.Name)))
	case key.Matches(msg, m.keys.Clients):
		return m, m.navigate(router.To(router.Clients))
	case key.Matches(msg, m.keys.Settings):
		return m, m.navigate(router.To(router.Settings))
	case key.Matches(msg, m.keys.About):
		return m, m.navigate(router.To(router.About))
	case key.Matches(msg, m.keys.Logout):
		return m, m.logout()
	case key.Matches(msg, m.keys.Command):
		m.clientsView.Blur()
		return m, m.cmdline.Focus()
	}

	if m.loc.Name == router.Clients {
		selected, ok := m.clientsView.Selected()
		switch {
		case key.Matches(msg, m.keys.New):
			return m, m.openCreateForm()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.refresh()
		case key.Matches(msg, m.keys.GenCA) && m.caMissing:
			return m, m.generateCA()
		case key.Matches(msg, m.keys.Download) && ok:
			return m, m.download(selected.ID)
		case key.Matches(msg, m.keys.Delete) && ok:
			m.confirm = selected.ID
			return m, nil
		}
	}

	return m.updateActiveView(msg)
}

func (m model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.loc.Name {
	case router.Login:
		m.loginForm, cmd = m.loginForm.Update(msg)
	case router.Clients:
		if m.creating {
			m.createForm, cmd = m.createForm.Update(msg)
		} else {
			m.clientsView, cmd = m.clientsView.Update(msg)
		}
	case router.Settings:
		m.settingsForm, cmd = m.settingsForm.Update(msg)
	case router.About:
		m.aboutView, cmd = m.aboutView.Update(msg)
	}
	return m, cmd
}

// enter switches screens after the router settled on loc.
func (m model) enter(loc router.Location) (tea.Model, tea.Cmd) {
	prev := m.loc
	m.loc = loc
	m.confirm = ""

	var cmds []tea.Cmd
	if prev.Name == router.Clients && loc.Name != router.Clients {
		m.sync.Stop()
		m.closeCreateForm()
	}

	switch loc.Name {
	case router.Login:
		m.loginForm.Reset()
		cmds = append(cmds, m.loginForm.Focus())
	case router.Clients:
		m.clientsView.Focus()
		if prev.Name != router.Clients {
			m.sync.Start(m.ctx)
			cmds = append(cmds, m.checkCA())
		}
	case router.Settings:
		cmds = append(cmds, m.settingsForm.Focus(), m.loadServerConfig())
	case router.About:
		m.refreshAbout()
	}
	return m, tea.Batch(cmds...)
}

func (m model) submit(msg form.SubmitMsg) (tea.Model, tea.Cmd) {
	switch msg.Form {
	case formLogin:
		return m, m.login(msg.Values[0], msg.Values[1])

	case formCreate:
		p := backend.CreateParams{
			ServerAddr: msg.Values[0],
			ServerName: msg.Values[1],
			MTU:        msg.Values[2],
			TunName:    msg.Values[3],
		}
		return m, m.createClient(p)

	case formSettings:
		mtu, err := strconv.Atoi(strings.TrimSpace(msg.Values[2]))
		if err != nil {
			m.settingsForm.SetError(clients.ErrInvalidMTU.Error())
			return m, nil
		}
		return m, m.saveServerConfig(backend.ServerConfig{
			ServerAddr: strings.TrimSpace(msg.Values[0]),
			ServerName: strings.TrimSpace(msg.Values[1]),
			MTU:        mtu,
		})
	}
	return m, nil
}

// execute runs a line typed on the command line.
func (m model) execute(args []string) (tea.Model, tea.Cmd) {
	if m.loc.Name == router.Clients && !m.creating {
		m.clientsView.Focus()
	}
	name, rest := args[0], args[1:]
	arg := ""
	if len(rest) > 0 {
		arg = rest[0]
	}

	switch name {
	case "goto":
		switch arg {
		case router.Clients, router.Settings, router.About:
			return m, m.navigate(router.To(arg))
		}
		return m, m.addNotice(notice.Warning("goto needs one of clients, settings, about"))
	case "refresh":
		return m, m.refresh()
	case "new":
		if m.loc.Name != router.Clients {
			return m, m.addNotice(notice.Warning("new works on the clients screen"))
		}
		return m, m.openCreateForm()
	case "delete", "download":
		if arg == "" {
			return m, m.addNotice(notice.Warning(name + " needs a client id"))
		}
		if name == "download" {
			return m, m.download(arg)
		}
		if m.loc.Name != router.Clients {
			return m, m.addNotice(notice.Warning("delete works on the clients screen"))
		}
		m.confirm = arg
		return m, nil
	case "ca":
		switch arg {
		case "", "status":
			return m, m.reportCA()
		case "generate":
			return m, m.generateCA()
		}
		return m, m.addNotice(notice.Warning("ca needs status or generate"))
	case "logout":
		return m, m.logout()
	case "help":
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case "quit":
		return m, tea.Quit
	}
	return m, m.addNotice(notice.Error("Unknown command: " + name))
}

func (m model) applyConfig(msg backend.ConfigChangedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m, m.addNotice(notice.Error(msg.Err.Error()))
	}
	cfg := msg.Config
	ui.Apply(ui.LoadTheme(cfg.UI.Theme))
	m.clientsView.RefreshStyles()
	m.sync.SetPollInterval(m.ctx, cfg.UI.PollInterval.Duration)

	var cmd tea.Cmd
	if cfg.Server.URL != m.cfg.Server.URL {
		cmd = m.addNotice(notice.Info("Server URL changes take effect after a restart"))
	}
	m.deps.cfg.UI = cfg.UI
	return m, cmd
}

func (m *model) addNotice(n notice.Notice) tea.Cmd {
	m.notices = append(m.notices, n)
	m.history = append(m.history, about.Entry{At: time.Now(), Notice: n})
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
	m.aboutView.SetHistory(m.history)
	id := n.ID.String()
	return tea.Tick(n.TTL, func(time.Time) tea.Msg {
		return NoticeExpiredMsg{ID: id}
	})
}

func (m *model) openCreateForm() tea.Cmd {
	last := backend.ReadLastClient(m.cfg.General.StateDir)
	m.createForm.Reset()
	m.createForm.SetValues(last.ServerAddr, last.ServerName, last.MTU, last.TunName)
	m.creating = true
	m.clientsView.Blur()
	return m.createForm.Focus()
}

func (m *model) closeCreateForm() {
	if !m.creating {
		return
	}
	m.creating = false
	m.createForm.Blur()
	m.clientsView.Focus()
}

func (m *model) refreshAbout() {
	m.aboutView.SetInfo(about.Info{
		App:        AppName,
		Version:    AppVersion,
		Server:     m.cfg.Server.URL,
		ConfigPath: m.cfg.Path(),
		User:       m.session.Username,
	})
}

func nextScreen(current string) string {
	switch current {
	case router.Clients:
		return router.Settings
	case router.Settings:
		return router.About
	default:
		return router.Clients
	}
}

func loginReason(err error) string {
	if e, ok := backend.AsError(err); ok {
		return e.Reason()
	}
	return err.Error()
}

func createReason(err error) string {
	if errors.Is(err, backend.ErrMTURange) {
		return clients.ErrInvalidMTU.Error()
	}
	return loginReason(err)
}

func (m model) View() tea.View {
	var v tea.View
	v.AltScreen = true

	if !m.ready {
		v.SetContent("Loading...")
		return v
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')

	switch {
	case m.loc.Name == "":
		b.WriteString(ui.StyleDim.Render(" checking session..."))
	case m.loc.Name == router.Login:
		b.WriteString(m.loginForm.View())
	case m.loc.Name == router.Clients && m.creating:
		b.WriteString(m.createForm.View())
	case m.loc.Name == router.Clients:
		if m.caMissing {
			b.WriteString(ui.StyleWarning.Render(" No CA on the server yet. Press g to generate it before creating clients."))
			b.WriteByte('\n')
		}
		b.WriteString(m.clientsView.View())
	case m.loc.Name == router.Settings:
		b.WriteString(m.settingsForm.View())
	case m.loc.Name == router.About:
		b.WriteString(m.aboutView.View())
	}

	b.WriteByte('\n')
	b.WriteString(m.renderNotices())
	if m.cmdline.Focused() {
		b.WriteString(m.cmdline.View())
	} else {
		b.WriteString(m.renderFooter())
	}

	v.SetContent(b.String())
	return v
}

func (m *model) renderHeader() string {
	title := ui.StyleHeader.Render(fmt.Sprintf(" %s ", AppName))
	server := ui.StyleDim.Render(m.cfg.Server.URL)

	user := ui.StyleOffline.Render("○ signed out")
	if m.session.Authenticated {
		user = ui.StyleOnline.Render("● " + m.session.Username)
	}

	var tabs []string
	for _, name := range []string{router.Clients, router.Settings, router.About} {
		if name == m.loc.Name {
			tabs = append(tabs, ui.StyleFocused.Render(name))
		} else {
			tabs = append(tabs, ui.StyleDim.Render(name))
		}
	}

	sep := ui.StyleDim.Render("   ")
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		title, sep, server, sep, user, sep, strings.Join(tabs, " "),
	)
	bar := strings.Repeat("━", max(m.width, 1))
	return header + "\n" + ui.StyleDim.Render(bar)
}

func (m *model) renderNotices() string {
	start := max(len(m.notices)-maxVisibleNotices, 0)
	var b strings.Builder
	for _, n := range m.notices[start:] {
		b.WriteString(" " + ui.NoticeStyle(n.Severity).Render(n.Message) + "\n")
	}
	return b.String()
}

func (m *model) renderFooter() string {
	if m.confirm != "" {
		return ui.StyleWarning.Render(" " + clients.DeletePrompt(m.confirm) + " [y/N]")
	}
	switch {
	case m.loc.Name == router.Login:
		return ui.StyleDim.Render(" enter sign in  │  ctrl+c quit")
	case m.creating, m.loc.Name == router.Settings:
		return ui.StyleDim.Render(" enter next/submit  │  esc back  │  ctrl+c quit")
	}
	return " " + m.help.View(m.keys)
}

func (m *model) layoutViews() {
	viewHeight := m.height - 4 - maxVisibleNotices
	if viewHeight < 5 {
		viewHeight = 5
	}
	m.help.SetWidth(m.width)
	m.loginForm.SetSize(m.width, viewHeight)
	m.createForm.SetSize(m.width, viewHeight)
	m.settingsForm.SetSize(m.width, viewHeight)
	m.clientsView.SetSize(m.width, viewHeight)
	m.aboutView.SetSize(m.width, viewHeight)
	m.cmdline.SetSize(m.width)
}

// --- Commands ---

// The commands below run off the event loop. Router and store callbacks fire
// from inside them and reach the model through the bridge.

func (m *model) checkAuth() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		d.store.CheckAuthStatus(d.ctx)
		d.router.Navigate(router.To(router.Landing))
		return nil
	}
}

func (m *model) navigate(to router.Location) tea.Cmd {
	rt := m.router
	return func() tea.Msg {
		rt.Navigate(to)
		return nil
	}
}

func (m *model) reevaluate() tea.Cmd {
	rt := m.router
	return func() tea.Msg {
		rt.Reevaluate()
		return nil
	}
}

func (m *model) login(username, password string) tea.Cmd {
	d, from := m.deps, m.loc
	if d.redact != nil {
		d.redact.AddSecret(password)
	}
	return func() tea.Msg {
		if err := d.store.Login(d.ctx, strings.TrimSpace(username), password); err != nil {
			return LoginResultMsg{Err: err}
		}
		d.router.Navigate(router.AfterLogin(from))
		return LoginResultMsg{}
	}
}

func (m *model) logout() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		d.store.Logout(d.ctx)
		return nil
	}
}

func (m *model) refresh() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		_ = d.sync.Refresh(d.ctx)
		return nil
	}
}

func (m *model) createClient(p backend.CreateParams) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		if err := backend.WriteLastClient(d.cfg.General.StateDir, p); err != nil {
			d.logger.Warn("remember create form", "error", err)
		}
		id, err := d.sync.Create(d.ctx, p)
		return CreateResultMsg{ID: id, Err: err}
	}
}

func (m *model) deleteClient(id string) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		// The operator already answered the prompt in the footer.
		err := d.sync.Delete(d.ctx, id, func(string) bool { return true })
		return DeleteResultMsg{ID: id, Err: err}
	}
}

func (m *model) download(id string) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		path, err := d.sync.Download(d.ctx, id)
		return DownloadedMsg{ID: id, Path: path, Err: err}
	}
}

func (m *model) checkCA() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		status, err := d.client.CAStatus(d.ctx)
		return CAStatusMsg{Status: status, Err: err}
	}
}

func (m *model) reportCA() tea.Cmd {
	check := m.checkCA()
	return func() tea.Msg {
		msg := check().(CAStatusMsg)
		msg.Report = true
		return msg
	}
}

func (m *model) generateCA() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		return CAGeneratedMsg{Err: d.client.GenerateCA(d.ctx)}
	}
}

func (m *model) loadServerConfig() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		cfg, err := d.client.GetServerConfig(d.ctx)
		return ServerConfigLoadedMsg{Config: cfg, Err: err}
	}
}

func (m *model) saveServerConfig(cfg backend.ServerConfig) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		return ServerConfigSavedMsg{Err: d.client.SetServerConfig(d.ctx, cfg)}
	}
}
