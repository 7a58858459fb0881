package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"charm.land/lipgloss/v2"
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"golang.org/x/net/publicsuffix"

	"github.com/masquevpn/panel/internal/app"
	"github.com/masquevpn/panel/internal/auth"
	"github.com/masquevpn/panel/internal/backend"
	"github.com/masquevpn/panel/internal/clients"
	"github.com/masquevpn/panel/internal/notice"
	"github.com/masquevpn/panel/internal/router"
	"github.com/masquevpn/panel/internal/telemetry"
	"github.com/masquevpn/panel/internal/ui"
)

var errNotLoggedIn = fmt.Errorf("not logged in; run `%s login` first", app.AppName)

// session is what every subcommand runs against: one client, one auth store
// and one router, just like the TUI.
type session struct {
	cfg    backend.Config
	logger *slog.Logger
	redact *telemetry.RedactHandler
	base   *url.URL
	jar    http.CookieJar
	client *backend.Client
	store  *auth.Store
	router *router.Router
	stdout io.Writer
	stderr io.Writer

	notifyMu sync.Mutex
	notified atomic.Bool
}

func (g *globals) loadConfig() (backend.Config, error) {
	path := g.configPath
	if path == "" {
		path = backend.DefaultConfigPath(app.AppName)
	}
	cfg, err := backend.ReadConfigFile(app.AppName, path)
	if err != nil {
		return cfg, err
	}
	if g.server != "" {
		cfg.Server.URL = strings.TrimRight(g.server, "/")
	}
	return cfg, nil
}

func (g *globals) logger(cfg backend.Config, w io.Writer) (*slog.Logger, *telemetry.RedactHandler) {
	level, err := telemetry.ParseLevel(cfg.General.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	switch {
	case g.verbose:
		level = slog.LevelDebug
	case level < slog.LevelWarn:
		level = slog.LevelWarn
	}
	return telemetry.NewLogger(w, level)
}

// open loads config, restores the saved session cookie and wires the client.
func (g *globals) open(cmd *cobra.Command) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, redact := g.logger(cfg, cmd.ErrOrStderr())

	base, jar, err := loadJar(cfg.General.StateDir, cfg.Server.URL)
	if err != nil {
		return nil, err
	}
	for _, c := range jar.Cookies(base) {
		redact.AddSecret(c.Value)
	}

	client, err := backend.NewClient(cfg.Server.URL,
		backend.WithHTTPClient(&http.Client{Jar: jar}),
		backend.WithTimeout(cfg.Server.Timeout.Duration),
		backend.WithLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		logger: logger,
		redact: redact,
		base:   base,
		jar:    jar,
		client: client,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}
	s.store = auth.NewStore(client, logger)
	s.router = router.New(s.store)
	client.Use(auth.NewInterceptor(s.store, s.router, notice.NotifierFunc(s.notify), logger).Middleware())
	return s, nil
}

// run opens a session, calls fn and saves or drops the session cookie
// depending on how fn left the store.
func (g *globals) run(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := g.open(cmd)
	if err != nil {
		return err
	}
	err = fn(cmd.Context(), s)
	if cerr := s.close(); cerr != nil {
		s.logger.Warn("save session", "error", cerr)
	}
	if err != nil && s.notified.Load() {
		return &reportedError{err: err}
	}
	return err
}

func (s *session) notify(n notice.Notice) {
	s.notified.Store(true)
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	label := ui.NoticeStyle(n.Severity).Render(n.Severity.String())
	lipgloss.Fprintln(s.stderr, label+": "+n.Message)
}

// enter restores the session from the cookie and routes to name, failing
// when the guard sends us to the login screen instead.
func (s *session) enter(ctx context.Context, name string) error {
	s.store.CheckAuthStatus(ctx)
	loc, err := s.router.Push(router.To(name))
	if err != nil {
		return err
	}
	if loc.Name != name {
		s.logger.Debug("route guard redirected", "to", loc.FullPath())
		return errNotLoggedIn
	}
	return nil
}

func (s *session) synchronizer(l clients.Listener) *clients.Synchronizer {
	return clients.New(s.client, clients.Options{
		DownloadDir: s.cfg.General.DownloadDir,
		Logger:      s.logger,
		Listener:    l,
	})
}

func (s *session) close() error {
	if !s.store.Authenticated() {
		return clearJar(s.cfg.General.StateDir)
	}
	return saveJar(s.cfg.General.StateDir, s.base, s.jar)
}

// --- session cookie persistence ---

type storedCookie struct {
	Name  string `toml:"name"`
	Value string `toml:"value"`
}

type sessionFile struct {
	Server  string         `toml:"server"`
	Cookies []storedCookie `toml:"cookie"`
}

func sessionPath(stateDir string) string {
	return filepath.Join(stateDir, "session.toml")
}

// loadJar returns a jar holding the cookies saved for serverURL, if any.
func loadJar(stateDir, serverURL string) (*url.URL, http.CookieJar, error) {
	base, err := url.Parse(serverURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse server url: %w", err)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, nil, fmt.Errorf("create cookie jar: %w", err)
	}

	var f sessionFile
	if _, err := toml.DecodeFile(sessionPath(stateDir), &f); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return base, jar, fmt.Errorf("read session: %w", err)
		}
		return base, jar, nil
	}
	if f.Server != serverURL {
		return base, jar, nil
	}
	cookies := make([]*http.Cookie, 0, len(f.Cookies))
	for _, c := range f.Cookies {
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	jar.SetCookies(base, cookies)
	return base, jar, nil
}

func saveJar(stateDir string, base *url.URL, jar http.CookieJar) error {
	cookies := jar.Cookies(base)
	if len(cookies) == 0 {
		return clearJar(stateDir)
	}
	f := sessionFile{Server: base.String()}
	for _, c := range cookies {
		f.Cookies = append(f.Cookies, storedCookie{Name: c.Name, Value: c.Value})
	}

	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		return err
	}
	out, err := os.OpenFile(sessionPath(stateDir), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(out).Encode(f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func clearJar(stateDir string) error {
	err := os.Remove(sessionPath(stateDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
