package cli

import (
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/masquevpn/panel/internal/app"
	"github.com/masquevpn/panel/internal/backend"
	"github.com/masquevpn/panel/internal/telemetry"
)

func newTUICmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, g)
		},
	}
}

// runTUI starts the terminal UI. The screen belongs to bubbletea, so logs go
// to a file in the state directory.
func runTUI(cmd *cobra.Command, g *globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	logFile, err := telemetry.OpenLogFile(cfg.General.StateDir, app.AppName)
	if err != nil {
		return err
	}
	defer logFile.Close()
	level, err := telemetry.ParseLevel(cfg.General.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if g.verbose {
		level = slog.LevelDebug
	}
	logger, redact := telemetry.NewLogger(logFile, level)

	base, jar, err := loadJar(cfg.General.StateDir, cfg.Server.URL)
	if err != nil {
		return err
	}
	for _, c := range jar.Cookies(base) {
		redact.AddSecret(c.Value)
	}

	runErr := app.Run(cmd.Context(), app.Options{
		Config:        cfg,
		Logger:        logger,
		Redact:        redact,
		Metrics:       telemetry.NewMetrics(),
		ClientOptions: []backend.Option{backend.WithHTTPClient(&http.Client{Jar: jar})},
	})
	if err := saveJar(cfg.General.StateDir, base, jar); err != nil {
		logger.Warn("save session", "error", err)
	}
	return runErr
}
