package auth

import (
	"context"
	"log/slog"

	"github.com/masquevpn/panel/internal/backend"
	"github.com/masquevpn/panel/internal/notice"
	"github.com/masquevpn/panel/internal/router"
)

// Navigator moves the UI between screens.
type Navigator interface {
	Current() router.Location
	Navigate(to router.Location)
}

// Interceptor turns transport failures into session, navigation and notice
// effects. Install it once with Client.Use(i.Middleware()).
type Interceptor struct {
	store    *Store
	nav      Navigator
	notifier notice.Notifier
	logger   *slog.Logger
}

// NewInterceptor wires the interceptor to its collaborators.
func NewInterceptor(store *Store, nav Navigator, notifier notice.Notifier, logger *slog.Logger) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interceptor{store: store, nav: nav, notifier: notifier, logger: logger}
}

// Middleware returns the transport middleware. Quiet requests pass through.
func (i *Interceptor) Middleware() backend.Middleware {
	return func(next backend.Doer) backend.Doer {
		return backend.DoerFunc(func(ctx context.Context, req *backend.Request) (*backend.Response, error) {
			resp, err := next.Do(ctx, req)
			if err != nil && !req.Quiet {
				i.Handle(ctx, err)
			}
			return resp, err
		})
	}
}

// Handle reacts to one classified failure.
func (i *Interceptor) Handle(ctx context.Context, err error) {
	e, ok := backend.AsError(err)
	if !ok {
		i.notifier.Notify(notice.Error(err.Error()))
		return
	}
	if e.Kind != backend.KindUnauthorized {
		i.notifier.Notify(notice.Error(e.Message))
		return
	}

	if i.store.Authenticated() {
		i.logger.Info("session rejected by server, logging out", "endpoint", e.Endpoint)
		i.store.Logout(context.WithoutCancel(ctx))
	}
	if cur := i.nav.Current(); cur.Name != router.Login {
		login := router.To(router.Login)
		if cur.Name != "" {
			login.Redirect = cur.FullPath()
		}
		i.nav.Navigate(login)
	}
	i.notifier.Notify(notice.Warning(notice.SessionExpired))
}
