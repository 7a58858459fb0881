package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/masquevpn/panel/internal/backend"
	"github.com/masquevpn/panel/internal/notice"
	"github.com/masquevpn/panel/internal/paneltest"
	"github.com/masquevpn/panel/internal/router"
)

// recorder logs every collaborator call in order.
type recorder struct {
	mu      sync.Mutex
	events  []string
	current router.Location
	notices []notice.Notice
	store   *Store
}

func (r *recorder) log(ev string) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) Current() router.Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *recorder) Navigate(to router.Location) {
	state := "authenticated"
	if !r.store.Authenticated() {
		state = "unauthenticated"
	}
	r.log("navigate " + to.FullPath() + " while " + state)
	r.mu.Lock()
	r.current = to
	r.mu.Unlock()
}

func (r *recorder) Notify(n notice.Notice) {
	r.log("notify " + n.Severity.String())
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

func failing(err error) backend.Doer {
	return backend.DoerFunc(func(context.Context, *backend.Request) (*backend.Response, error) {
		return nil, err
	})
}

func TestUnauthorizedLogsOutBeforeRedirect(t *testing.T) {
	rec := &recorder{current: router.To(router.Settings)}
	api := &fakeAPI{onLogout: func() { rec.log("logout") }}
	store := NewStore(api, nil)
	rec.store = store
	store.LoginSuccess("alice")

	i := NewInterceptor(store, rec, rec, nil)
	doer := i.Middleware()(failing(&backend.Error{Kind: backend.KindUnauthorized, Endpoint: "list_clients"}))

	_, err := doer.Do(context.Background(), &backend.Request{Endpoint: "list_clients"})
	if !backend.IsUnauthorized(err) {
		t.Fatalf("error not passed through: %v", err)
	}

	want := []string{
		"logout",
		"navigate /login?redirect=%2Fsettings while unauthenticated",
		"notify warning",
	}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("event order mismatch (-want +got):\n%s", diff)
	}
	if rec.notices[0].Message != notice.SessionExpired {
		t.Errorf("notice = %q", rec.notices[0].Message)
	}
}

func TestUnauthorizedWhileLoggedOutSkipsLogout(t *testing.T) {
	rec := &recorder{current: router.To(router.Clients)}
	api := &fakeAPI{}
	store := NewStore(api, nil)
	rec.store = store

	NewInterceptor(store, rec, rec, nil).Handle(context.Background(), &backend.Error{Kind: backend.KindUnauthorized})
	if api.logouts != 0 {
		t.Errorf("logout called %d times while already logged out", api.logouts)
	}
	want := []string{"navigate /login?redirect=%2F while unauthenticated", "notify warning"}
	if diff := cmp.Diff(want, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestUnauthorizedOnLoginScreenDoesNotRedirect(t *testing.T) {
	rec := &recorder{current: router.To(router.Login)}
	store := NewStore(&fakeAPI{}, nil)
	rec.store = store

	NewInterceptor(store, rec, rec, nil).Handle(context.Background(), &backend.Error{Kind: backend.KindUnauthorized})
	if diff := cmp.Diff([]string{"notify warning"}, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestOtherFailuresOnlyNotify(t *testing.T) {
	for _, kind := range []backend.Kind{backend.KindServer, backend.KindNetwork, backend.KindClient} {
		t.Run(kind.String(), func(t *testing.T) {
			rec := &recorder{current: router.To(router.Clients)}
			api := &fakeAPI{}
			store := NewStore(api, nil)
			rec.store = store
			store.LoginSuccess("alice")

			NewInterceptor(store, rec, rec, nil).Handle(context.Background(), &backend.Error{Kind: kind, Message: "database unavailable"})

			if diff := cmp.Diff([]string{"notify error"}, rec.events); diff != "" {
				t.Errorf("events mismatch (-want +got):\n%s", diff)
			}
			if rec.notices[0].Message != "database unavailable" {
				t.Errorf("notice message = %q", rec.notices[0].Message)
			}
			if !store.Authenticated() || api.logouts != 0 {
				t.Error("non-auth failure touched the session")
			}
		})
	}
}

func TestQuietRequestsBypassInterceptor(t *testing.T) {
	rec := &recorder{current: router.To(router.Clients)}
	store := NewStore(&fakeAPI{}, nil)
	rec.store = store
	doer := NewInterceptor(store, rec, rec, nil).Middleware()(failing(&backend.Error{Kind: backend.KindUnauthorized}))

	_, _ = doer.Do(context.Background(), &backend.Request{Endpoint: "auth_check", Quiet: true})
	if len(rec.events) != 0 {
		t.Errorf("quiet failure produced %v", rec.events)
	}
}

func TestUnclassifiedErrorNotifies(t *testing.T) {
	rec := &recorder{}
	store := NewStore(&fakeAPI{}, nil)
	rec.store = store
	NewInterceptor(store, rec, rec, nil).Handle(context.Background(), errors.New("plain"))
	if diff := cmp.Diff([]string{"notify error"}, rec.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestExpiredSessionEndToEnd(t *testing.T) {
	srv := paneltest.New(t)
	client, err := backend.NewClient(srv.URL())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store := NewStore(client, nil)
	nav := router.New(store)
	var notices []notice.Notice
	client.Use(NewInterceptor(store, nav, notice.NotifierFunc(func(n notice.Notice) {
		notices = append(notices, n)
	}), nil).Middleware())

	ctx := context.Background()
	if err := store.Login(ctx, paneltest.Username, paneltest.Password); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if loc, _ := nav.Push(router.To(router.Settings)); loc.Name != router.Settings {
		t.Fatalf("Push(settings) = %+v", loc)
	}

	srv.ExpireSessions()
	if _, err := client.ListClients(ctx); !backend.IsUnauthorized(err) {
		t.Fatalf("ListClients after expiry: %v", err)
	}

	if store.Authenticated() {
		t.Error("store still authenticated")
	}
	want := router.Location{Name: router.Login, Path: "/login", Redirect: "/settings"}
	if diff := cmp.Diff(want, nav.Current()); diff != "" {
		t.Errorf("location mismatch (-want +got):\n%s", diff)
	}
	if len(notices) != 1 || notices[0].Severity != notice.SeverityWarning {
		t.Errorf("notices = %+v, want one warning", notices)
	}
	if n := srv.Calls("/api/logout"); n != 1 {
		t.Errorf("logout calls = %d, want 1", n)
	}
}

func TestCheckAuthStatusNeverRedirects(t *testing.T) {
	srv := paneltest.New(t)
	client, err := backend.NewClient(srv.URL())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store := NewStore(client, nil)
	rec := &recorder{current: router.To(router.Clients), store: store}
	client.Use(NewInterceptor(store, rec, rec, nil).Middleware())

	srv.Fail("/api/auth/check", 401, "not logged in")
	if got := store.CheckAuthStatus(context.Background()); got.Authenticated {
		t.Errorf("CheckAuthStatus = %+v", got)
	}
	if len(rec.events) != 0 {
		t.Errorf("auth check triggered %v", rec.events)
	}
}

func TestUndecodableSuccessBodyNotifies(t *testing.T) {
	srv := paneltest.New(t)
	client, err := backend.NewClient(srv.URL())
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	store := NewStore(client, nil)
	rec := &recorder{current: router.To(router.Clients), store: store}
	client.Use(NewInterceptor(store, rec, rec, nil).Middleware())

	ctx := context.Background()
	if err := store.Login(ctx, paneltest.Username, paneltest.Password); err != nil {
		t.Fatalf("Login: %v", err)
	}
	srv.Fail("/api/clients", 200, "<html>proxy login</html>")

	_, err = client.ListClients(ctx)
	if got := backend.KindOf(err); got != backend.KindServer {
		t.Fatalf("KindOf = %v, want %v", got, backend.KindServer)
	}
	if len(rec.notices) != 1 {
		t.Fatalf("notices = %+v, want one", rec.notices)
	}
	if n := rec.notices[0]; n.Severity != notice.SeverityError || n.Message != "invalid response from server" {
		t.Errorf("notice = %+v", n)
	}
	if !store.Authenticated() {
		t.Error("a bad body dropped the session")
	}
}
