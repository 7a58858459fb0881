package app

import (
	"github.com/masquevpn/panel/internal/auth"
	"github.com/masquevpn/panel/internal/backend"
	"github.com/masquevpn/panel/internal/clients"
	"github.com/masquevpn/panel/internal/notice"
	"github.com/masquevpn/panel/internal/router"
)

// NavigatedMsg is sent after the router settled on a location.
type NavigatedMsg struct {
	Location router.Location
}

// SessionChangedMsg is sent when the auth store transitions.
type SessionChangedMsg struct {
	Session auth.Session
}

// ViewChangedMsg carries a new client list view.
type ViewChangedMsg struct {
	View clients.View
}

// DownloadedMsg is sent when a configuration artifact was saved (or not).
type DownloadedMsg struct {
	ID   string
	Path string
	Err  error
}

// NoticeMsg raises a toast.
type NoticeMsg struct {
	Notice notice.Notice
}

// NoticeExpiredMsg removes a toast after its TTL.
type NoticeExpiredMsg struct {
	ID string
}

// LoginResultMsg is sent when a login attempt completes.
type LoginResultMsg struct {
	Err error
}

// CreateResultMsg is sent when a create-client attempt completes.
type CreateResultMsg struct {
	ID  string
	Err error
}

// DeleteResultMsg is sent when a delete completes.
type DeleteResultMsg struct {
	ID  string
	Err error
}

// CAStatusMsg reports whether the server has a CA.
type CAStatusMsg struct {
	Status backend.CAStatus
	Err    error
	Report bool // asked for on the command line
}

// CAGeneratedMsg is sent when CA generation completes.
type CAGeneratedMsg struct {
	Err error
}

// ServerConfigLoadedMsg carries the server's default profile.
type ServerConfigLoadedMsg struct {
	Config backend.ServerConfig
	Err    error
}

// ServerConfigSavedMsg is sent when the settings form was stored.
type ServerConfigSavedMsg struct {
	Err error
}
