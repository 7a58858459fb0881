package router

import (
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeAuth struct{ on atomic.Bool }

func (f *fakeAuth) Authenticated() bool { return f.on.Load() }

func TestGuard(t *testing.T) {
	settings, _ := Lookup(Settings)
	login, _ := Lookup(Login)
	none := Route{Name: "public", Path: "/public"}

	tests := []struct {
		name   string
		route  Route
		path   string
		authed bool
		want   Decision
	}{
		{"auth route, guest", settings, "/settings", false,
			Decision{Redirect: Location{Name: Login, Path: "/login", Redirect: "/settings"}}},
		{"auth route, authenticated", settings, "/settings", true, Decision{Allowed: true}},
		{"guest route, authenticated", login, "/login", true,
			Decision{Redirect: Location{Name: Clients, Path: "/"}}},
		{"guest route, guest", login, "/login", false, Decision{Allowed: true}},
		{"open route, guest", none, "/public", false, Decision{Allowed: true}},
		{"open route, authenticated", none, "/public", true, Decision{Allowed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Guard(tt.route, tt.path, tt.authed)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Guard mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPushReevaluatesEveryTime(t *testing.T) {
	auth := &fakeAuth{}
	r := New(auth)

	var seen []string
	r.OnChange(func(l Location) { seen = append(seen, l.FullPath()) })

	got, err := r.Push(To(Settings))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if got.Name != Login || got.Redirect != "/settings" {
		t.Errorf("guest Push(settings) = %+v, want login with redirect", got)
	}

	auth.on.Store(true)
	if got, _ := r.Push(To(Settings)); got.Name != Settings {
		t.Errorf("authenticated Push(settings) = %+v", got)
	}

	auth.on.Store(false)
	if got := r.Reevaluate(); got.Name != Login || got.Redirect != "/settings" {
		t.Errorf("Reevaluate after logout = %+v", got)
	}

	want := []string{"/login?redirect=%2Fsettings", "/settings", "/login?redirect=%2Fsettings"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("navigations mismatch (-want +got):\n%s", diff)
	}
}

func TestPushUnknownRoute(t *testing.T) {
	r := New(&fakeAuth{})
	if _, err := r.Push(Location{Name: "nope"}); err == nil {
		t.Fatal("Push(nope) succeeded")
	}
	if cur := r.Current(); cur.Name != "" {
		t.Errorf("Current() = %+v after failed push", cur)
	}
}

func TestParseAndAfterLogin(t *testing.T) {
	loc, err := Parse("/login?redirect=%2Fsettings")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if loc.Name != Login || loc.Redirect != "/settings" {
		t.Errorf("Parse = %+v", loc)
	}
	if got := AfterLogin(loc); got.Name != Settings {
		t.Errorf("AfterLogin = %+v, want settings", got)
	}
	if got := AfterLogin(To(Login)); got.Name != Landing {
		t.Errorf("AfterLogin without redirect = %+v, want landing", got)
	}
	if got := AfterLogin(Location{Name: Login, Redirect: "/login"}); got.Name != Landing {
		t.Errorf("AfterLogin looping to login = %+v, want landing", got)
	}
	if _, err := Parse("/missing"); err == nil {
		t.Error("Parse(/missing) succeeded")
	}
}
