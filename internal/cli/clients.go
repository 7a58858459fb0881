package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/masquevpn/panel/internal/backend"
	"github.com/masquevpn/panel/internal/clients"
	"github.com/masquevpn/panel/internal/router"
	"github.com/masquevpn/panel/internal/ui"
)

const maxParallelDownloads = 4

func newClientsCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clients",
		Aliases: []string{"client"},
		Short:   "Manage VPN clients",
	}
	cmd.AddCommand(newClientsListCmd(g))
	cmd.AddCommand(newClientsCreateCmd(g))
	cmd.AddCommand(newClientsDeleteCmd(g))
	cmd.AddCommand(newClientsDownloadCmd(g))
	return cmd
}

func newClientsListCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List clients",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.enter(ctx, router.Clients); err != nil {
					return err
				}
				syncer := s.synchronizer(nil)
				if err := syncer.Refresh(ctx); err != nil {
					return err
				}
				v := syncer.Snapshot()
				if len(v.Clients) == 0 {
					fmt.Fprintln(s.stdout, "No clients yet.")
					return nil
				}
				lipgloss.Fprintln(s.stdout, clientTable(v.Clients))
				return nil
			})
		},
	}
}

func clientTable(list []backend.ManagedClient) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(ui.StyleBorder).
		Headers("CLIENT", "CREATED", "STATUS")
	for _, c := range list {
		t.Row(c.ID, c.CreatedAt.Display(), ui.StatusText(c.Online))
	}
	return t.Render()
}

// downloadResult records the background download that follows a create.
type downloadResult struct {
	mu   sync.Mutex
	path string
	err  error
}

func (r *downloadResult) ViewChanged(clients.View) {}

func (r *downloadResult) Downloaded(id, path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.err = fmt.Errorf("download %s: %w", id, err)
		return
	}
	r.path = path
}

func newClientsCreateCmd(g *globals) *cobra.Command {
	var p backend.CreateParams

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a client and download its configuration",
		Long: `Generate a client and download its configuration. Flags that are not
given fall back to the values of the previous create.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.enter(ctx, router.Clients); err != nil {
					return err
				}

				params := backend.ReadLastClient(s.cfg.General.StateDir)
				flags := cmd.Flags()
				if flags.Changed("server-addr") {
					params.ServerAddr = p.ServerAddr
				}
				if flags.Changed("server-name") {
					params.ServerName = p.ServerName
				}
				if flags.Changed("mtu") {
					params.MTU = p.MTU
				}
				if flags.Changed("tun-name") {
					params.TunName = p.TunName
				}
				if err := backend.WriteLastClient(s.cfg.General.StateDir, params); err != nil {
					s.logger.Warn("remember create params", "error", err)
				}

				res := &downloadResult{}
				syncer := s.synchronizer(res)
				id, err := syncer.Create(ctx, params)
				if err != nil {
					return err
				}
				syncer.Wait()
				fmt.Fprintf(s.stdout, "Created client %s\n", id)

				res.mu.Lock()
				defer res.mu.Unlock()
				if res.err != nil {
					return res.err
				}
				fmt.Fprintf(s.stdout, "Saved %s\n", res.path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&p.ServerAddr, "server-addr", "", "Server address clients connect to (host:port)")
	cmd.Flags().StringVar(&p.ServerName, "server-name", "", "TLS server name")
	cmd.Flags().StringVar(&p.MTU, "mtu", "", fmt.Sprintf("Tunnel MTU (%d-%d)", backend.MinMTU, backend.MaxMTU))
	cmd.Flags().StringVar(&p.TunName, "tun-name", "", "Tunnel interface name")

	return cmd
}

func newClientsDeleteCmd(g *globals) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return g.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.enter(ctx, router.Clients); err != nil {
					return err
				}
				confirm := func(prompt string) bool {
					if yes {
						return true
					}
					fmt.Fprint(s.stdout, prompt+" [y/N] ")
					answer, err := readLine(cmd.InOrStdin())
					if err != nil {
						return false
					}
					answer = strings.ToLower(strings.TrimSpace(answer))
					return answer == "y" || answer == "yes"
				}

				err := s.synchronizer(nil).Delete(ctx, id, confirm)
				if errors.Is(err, clients.ErrNotConfirmed) {
					fmt.Fprintln(s.stdout, "Aborted")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(s.stdout, "Deleted client %s\n", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func newClientsDownloadCmd(g *globals) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download <id>...",
		Short: "Download client configurations",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.enter(ctx, router.Clients); err != nil {
					return err
				}
				if dir != "" {
					s.cfg.General.DownloadDir = dir
				}
				syncer := s.synchronizer(nil)

				paths := make([]string, len(args))
				// One failed id does not cancel the others.
				var eg errgroup.Group
				eg.SetLimit(maxParallelDownloads)
				for i, id := range args {
					eg.Go(func() error {
						path, err := syncer.Download(ctx, id)
						if err != nil {
							return fmt.Errorf("download %s: %w", id, err)
						}
						paths[i] = path
						return nil
					})
				}
				err := eg.Wait()
				for _, p := range paths {
					if p != "" {
						fmt.Fprintf(s.stdout, "Saved %s\n", p)
					}
				}
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to save into (overrides config)")

	return cmd
}
