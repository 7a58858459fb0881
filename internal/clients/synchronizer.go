// Package clients keeps a local list of managed VPN clients in step with the
// server by polling, and runs the create, delete and download operations.
package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/masquevpn/panel/internal/backend"
)

var (
	ErrIncompleteParams = errors.New("server address, server name and MTU are required")
	ErrInvalidMTU       = fmt.Errorf("MTU must be a number between %d and %d", backend.MinMTU, backend.MaxMTU)
	ErrGenerationFailed = errors.New("client generation failed")
	ErrNotConfirmed     = errors.New("deletion not confirmed")
)

// Defaults for Options.
const (
	DefaultPollInterval    = 5 * time.Second
	DefaultHighlightWindow = 3 * time.Second
)

// API is the part of the admin API the synchronizer uses.
type API interface {
	ListClients(ctx context.Context) ([]backend.ManagedClient, error)
	CreateClient(ctx context.Context, p backend.CreateParams) (string, error)
	DeleteClient(ctx context.Context, id string) error
	DownloadClient(ctx context.Context, id string) (backend.Artifact, error)
}

// View is a snapshot of the rendered list.
type View struct {
	Clients        []backend.ManagedClient
	Highlight      string
	HighlightUntil time.Time
	Loaded         bool
}

// Highlighted reports whether id is the highlighted client.
func (v View) Highlighted(id string) bool {
	return id != "" && v.Highlight == id
}

// Listener is told about view changes and finished downloads. Calls come
// from background goroutines.
type Listener interface {
	ViewChanged(v View)
	Downloaded(id, path string, err error)
}

// Options configures a Synchronizer. Zero values pick the defaults.
type Options struct {
	PollInterval    time.Duration
	HighlightWindow time.Duration
	DownloadDir     string
	Clock           clock.WithTickerAndDelayedExecution
	Logger          *slog.Logger
	Listener        Listener
}

// Synchronizer owns the client list view.
type Synchronizer struct {
	api         API
	clock       clock.WithTickerAndDelayedExecution
	window      time.Duration
	downloadDir string
	logger      *slog.Logger
	listener    Listener

	mu       sync.Mutex
	view     View
	interval time.Duration
	active   bool
	gen      uint64 // bumped by Stop; refreshes from an older generation are dropped
	stop     chan struct{}
	hlSeq    uint64
	hlTimer  clock.Timer
	applied  uint64

	notifyMu sync.Mutex
	notified uint64

	wg sync.WaitGroup
}

// New returns a stopped synchronizer with an empty view.
func New(api API, opts Options) *Synchronizer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.HighlightWindow <= 0 {
		opts.HighlightWindow = DefaultHighlightWindow
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.DownloadDir == "" {
		opts.DownloadDir = "."
	}
	return &Synchronizer{
		api:         api,
		clock:       opts.Clock,
		window:      opts.HighlightWindow,
		downloadDir: opts.DownloadDir,
		logger:      opts.Logger,
		listener:    opts.Listener,
		interval:    opts.PollInterval,
	}
}

// Start refreshes once and then every poll interval until Stop or ctx ends.
// Each tick refreshes in its own goroutine so a hung request never holds up
// the next tick.
func (s *Synchronizer) Start(ctx context.Context) {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	stop := make(chan struct{})
	s.stop = stop
	interval := s.interval
	s.mu.Unlock()

	ticker := s.clock.NewTicker(interval)
	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		s.refreshInBackground(ctx)
	}()
	go func() {
		defer s.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C():
				s.wg.Add(1)
				go func() {
					defer s.wg.Done()
					s.refreshInBackground(ctx)
				}()
			}
		}
	}()
}

// Stop ends polling. Requests still in flight are not cancelled; their
// results are dropped when they arrive. A pending highlight clear still runs.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	s.gen++
	close(s.stop)
	s.stop = nil
}

// Wait blocks until background refreshes and downloads have finished.
// Call it after Stop.
func (s *Synchronizer) Wait() {
	s.wg.Wait()
}

// SetPollInterval changes the period, restarting the ticker when running.
func (s *Synchronizer) SetPollInterval(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	changed := s.interval != d
	s.interval = d
	active := s.active
	s.mu.Unlock()
	if changed && active {
		s.Stop()
		s.Start(ctx)
	}
}

// Snapshot returns a copy of the view. A highlight past its expiry is never
// reported, even if the scheduled clear has not run yet.
func (s *Synchronizer) Snapshot() View {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(now)
}

// snapshotLocked copies the view, dropping a highlight that expired by now.
// A zero now skips the check.
func (s *Synchronizer) snapshotLocked(now time.Time) View {
	v := s.view
	v.Clients = append([]backend.ManagedClient(nil), s.view.Clients...)
	if v.Highlight != "" && !now.IsZero() && !now.Before(v.HighlightUntil) {
		v.Highlight, v.HighlightUntil = "", time.Time{}
	}
	return v
}

// Refresh fetches the list and replaces the view with it. On failure the view
// is left alone; the transport's interceptor has already reacted.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	s.mu.Lock()
	gen := s.gen
	s.mu.Unlock()

	list, err := s.api.ListClients(ctx)
	if err != nil {
		return err
	}
	now := s.clock.Now()

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("dropping client list from a stopped view")
		return nil
	}
	s.view.Clients = append([]backend.ManagedClient(nil), list...)
	s.view.Loaded = true
	s.applied++
	seq, v := s.applied, s.snapshotLocked(now)
	s.mu.Unlock()

	s.publish(seq, v)
	return nil
}

func (s *Synchronizer) refreshInBackground(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Debug("poll failed", "error", err)
	}
}

// Create validates p, asks the server for a new client, highlights it,
// refreshes the list and downloads its configuration in the background.
func (s *Synchronizer) Create(ctx context.Context, p backend.CreateParams) (string, error) {
	p, err := ValidateParams(p)
	if err != nil {
		return "", err
	}
	id, err := s.api.CreateClient(ctx, p)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrGenerationFailed
	}

	s.highlight(id)
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refresh after create failed", "client_id", id, "error", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		path, err := s.Download(context.WithoutCancel(ctx), id)
		if err != nil {
			s.logger.Warn("download after create failed", "client_id", id, "error", err)
		}
		if s.listener != nil {
			s.listener.Downloaded(id, path, err)
		}
	}()
	return id, nil
}

// ValidateParams trims the form and checks it before anything is sent.
func ValidateParams(p backend.CreateParams) (backend.CreateParams, error) {
	p.ServerAddr = strings.TrimSpace(p.ServerAddr)
	p.ServerName = strings.TrimSpace(p.ServerName)
	p.MTU = strings.TrimSpace(p.MTU)
	p.TunName = strings.TrimSpace(p.TunName)
	if p.ServerAddr == "" || p.ServerName == "" || p.MTU == "" {
		return p, ErrIncompleteParams
	}
	mtu, err := strconv.Atoi(p.MTU)
	if err != nil || mtu < backend.MinMTU || mtu > backend.MaxMTU {
		return p, ErrInvalidMTU
	}
	return p, nil
}

func (s *Synchronizer) highlight(id string) {
	now := s.clock.Now()
	until := now.Add(s.window)

	s.mu.Lock()
	s.hlSeq++
	seq := s.hlSeq
	old := s.hlTimer
	s.hlTimer = nil
	s.view.Highlight = id
	s.view.HighlightUntil = until
	s.applied++
	applied, v := s.applied, s.snapshotLocked(now)
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	s.publish(applied, v)

	// The callback may run under the clock's own lock (fake clocks do
	// that), so it must not call back into the clock.
	t := s.clock.AfterFunc(s.window, func() { s.clearHighlight(seq) })
	s.mu.Lock()
	if s.hlSeq == seq {
		s.hlTimer = t
	}
	s.mu.Unlock()
}

func (s *Synchronizer) clearHighlight(seq uint64) {
	s.mu.Lock()
	if s.hlSeq != seq || s.view.Highlight == "" {
		s.mu.Unlock()
		return
	}
	s.view.Highlight = ""
	s.view.HighlightUntil = time.Time{}
	s.hlTimer = nil
	s.applied++
	applied, v := s.applied, s.snapshotLocked(time.Time{})
	s.mu.Unlock()

	s.publish(applied, v)
}

// publish hands v to the listener unless a newer view was already delivered.
func (s *Synchronizer) publish(seq uint64, v View) {
	if s.listener == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq <= s.notified {
		return
	}
	s.notified = seq
	s.listener.ViewChanged(v)
}

// DeletePrompt is the confirmation question shown before deleting id.
func DeletePrompt(id string) string {
	return fmt.Sprintf("Delete client %s? Its configuration stops working immediately.", id)
}

// Delete removes id once confirm accepts DeletePrompt(id), then refreshes.
// Without confirmation nothing is sent.
func (s *Synchronizer) Delete(ctx context.Context, id string, confirm func(prompt string) bool) error {
	if confirm == nil || !confirm(DeletePrompt(id)) {
		return ErrNotConfirmed
	}
	if err := s.api.DeleteClient(ctx, id); err != nil {
		return err
	}
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refresh after delete failed", "client_id", id, "error", err)
	}
	return nil
}

// Download fetches id's configuration and writes it to the download
// directory, returning the written path.
func (s *Synchronizer) Download(ctx context.Context, id string) (string, error) {
	art, err := s.api.DownloadClient(ctx, id)
	if err != nil {
		return "", err
	}
	return SaveArtifact(s.downloadDir, art)
}
