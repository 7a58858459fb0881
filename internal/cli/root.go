// Package cli is the masque-panel command line. Without a subcommand it
// starts the terminal UI; the subcommands script the same admin API.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masquevpn/panel/internal/app"
)

// Global flags.
type globals struct {
	configPath string
	server     string
	verbose    bool
}

// Execute runs the command line with os.Args.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   app.AppName,
		Short: "Control panel for a MASQUE VPN server",
		Long: `masque-panel manages the clients of a MASQUE VPN server through its
admin API. Run it without arguments for the interactive terminal UI, or use
the subcommands from scripts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, g)
		},
	}

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "Path to config file")
	root.PersistentFlags().StringVar(&g.server, "server", "", "Admin API URL (overrides config)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log requests to stderr")

	root.AddCommand(newTUICmd(g))
	root.AddCommand(newLoginCmd(g))
	root.AddCommand(newLogoutCmd(g))
	root.AddCommand(newStatusCmd(g))
	root.AddCommand(newClientsCmd(g))
	root.AddCommand(newServerConfigCmd(g))
	root.AddCommand(newCACmd(g))
	root.AddCommand(newVersionCmd())

	return root
}

// reportedError marks an error the user has already been shown as a notice.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already printed as a notice, so main
// should exit without printing it again.
func Reported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", app.AppName, app.AppVersion)
		},
	}
}
