package backend

import (
	"log/slog"
	"os"
	"path/filepath"

	tea "charm.land/bubbletea/v2"
	"github.com/fsnotify/fsnotify"
)

// ConfigChangedMsg is sent when the config file is rewritten. Config holds
// the re-read settings; Err is set when the new file does not parse.
type ConfigChangedMsg struct {
	Config Config
	Err    error
}

// Sender can receive messages (matches *tea.Program).
type Sender interface {
	Send(msg tea.Msg)
}

// Watcher reloads config.toml via fsnotify.
type Watcher struct {
	w       *fsnotify.Watcher
	sender  Sender
	appName string
	path    string
	logger  *slog.Logger
}

// NewWatcher watches the directory holding path so that editors which
// replace the file (write to temp + rename) are caught too.
func NewWatcher(appName, path string, sender Sender, logger *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	watcher := &Watcher{
		w:       fw,
		sender:  sender,
		appName: appName,
		path:    path,
		logger:  logger,
	}
	go watcher.loop()
	return watcher, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.w.Close()
}

func (w *Watcher) loop() {
	target := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			cfg, err := ReadConfigFile(w.appName, w.path)
			w.sender.Send(ConfigChangedMsg{Config: cfg, Err: err})

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}
