package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/masquevpn/panel/internal/backend"
	"github.com/masquevpn/panel/internal/router"
)

// PasswordEnv is read by login when --password-stdin is not given.
const PasswordEnv = "MASQUE_PANEL_PASSWORD"

func newLoginCmd(g *globals) *cobra.Command {
	var (
		username      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				s.store.CheckAuthStatus(ctx)
				loc, err := s.router.Push(router.To(router.Login))
				if err != nil {
					return err
				}
				if loc.Name != router.Login {
					fmt.Fprintf(s.stdout, "Already logged in as %s\n", s.store.Snapshot().Username)
					return nil
				}

				password, err := readPassword(cmd, passwordStdin)
				if err != nil {
					return err
				}
				s.redact.AddSecret(password)

				if err := s.store.Login(ctx, strings.TrimSpace(username), password); err != nil {
					if e, ok := backend.AsError(err); ok {
						return fmt.Errorf("login failed: %s", e.Reason())
					}
					return fmt.Errorf("login failed: %w", err)
				}
				for _, c := range s.jar.Cookies(s.base) {
					s.redact.AddSecret(c.Value)
				}
				s.router.Navigate(router.AfterLogin(loc))
				fmt.Fprintf(s.stdout, "Logged in to %s as %s\n", s.client.BaseURL(), s.store.Snapshot().Username)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "admin", "Admin username")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

// readPassword takes the password from stdin, the environment or an
// interactive prompt, in that order.
func readPassword(cmd *cobra.Command, fromStdin bool) (string, error) {
	if fromStdin {
		return readLine(cmd.InOrStdin())
	}
	if pw := os.Getenv(PasswordEnv); pw != "" {
		return pw, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password: use --password-stdin or set %s", PasswordEnv)
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				if !s.store.CheckAuthStatus(ctx).Authenticated {
					fmt.Fprintln(s.stdout, "Not logged in")
					return nil
				}
				s.store.Logout(ctx)
				fmt.Fprintln(s.stdout, "Logged out")
				return nil
			})
		},
	}
}

func newStatusCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the server and session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				fmt.Fprintf(s.stdout, "server:  %s\n", s.client.BaseURL())
				sess := s.store.CheckAuthStatus(ctx)
				if !sess.Authenticated {
					fmt.Fprintln(s.stdout, "session: not logged in")
					return nil
				}
				fmt.Fprintf(s.stdout, "session: logged in as %s\n", sess.Username)

				st, err := s.client.CAStatus(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.stdout, "ca:      %s\n", caState(st))
				return nil
			})
		},
	}
}

func caState(st backend.CAStatus) string {
	if st.Exists {
		return "present"
	}
	return "missing"
}
