package app

import (
	tea "charm.land/bubbletea/v2"

	"github.com/masquevpn/panel/internal/backend"
	"github.com/masquevpn/panel/internal/clients"
	"github.com/masquevpn/panel/internal/notice"
)

// bridge turns callbacks from background goroutines into program messages.
// It must never be called from inside Update: Send blocks until the event
// loop reads it.
type bridge struct {
	sender backend.Sender
}

func (b *bridge) send(msg tea.Msg) {
	if b.sender != nil {
		b.sender.Send(msg)
	}
}

// Notify implements notice.Notifier.
func (b *bridge) Notify(n notice.Notice) { b.send(NoticeMsg{Notice: n}) }

// ViewChanged implements clients.Listener.
func (b *bridge) ViewChanged(v clients.View) { b.send(ViewChangedMsg{View: v}) }

// Downloaded implements clients.Listener.
func (b *bridge) Downloaded(id, path string, err error) {
	b.send(DownloadedMsg{ID: id, Path: path, Err: err})
}
