package cli

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/masquevpn/panel/internal/router"
)

func newServerConfigCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server-config",
		Short: "Show or change the server's default client profile",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the server defaults as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.enter(ctx, router.Settings); err != nil {
					return err
				}
				cfg, err := s.client.GetServerConfig(ctx)
				if err != nil {
					return err
				}
				return toml.NewEncoder(s.stdout).Encode(struct {
					ServerAddr string `toml:"server_addr"`
					ServerName string `toml:"server_name"`
					MTU        int    `toml:"mtu"`
				}(cfg))
			})
		},
	})
	cmd.AddCommand(newServerConfigSetCmd(g))
	return cmd
}

func newServerConfigSetCmd(g *globals) *cobra.Command {
	var (
		addr string
		name string
		mtu  int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the server defaults; unset flags keep their value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.enter(ctx, router.Settings); err != nil {
					return err
				}
				cfg, err := s.client.GetServerConfig(ctx)
				if err != nil {
					return err
				}
				flags := cmd.Flags()
				if flags.Changed("server-addr") {
					cfg.ServerAddr = addr
				}
				if flags.Changed("server-name") {
					cfg.ServerName = name
				}
				if flags.Changed("mtu") {
					cfg.MTU = mtu
				}
				if err := s.client.SetServerConfig(ctx, cfg); err != nil {
					return err
				}
				fmt.Fprintln(s.stdout, "Server defaults saved")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&addr, "server-addr", "", "Default server address")
	cmd.Flags().StringVar(&name, "server-name", "", "Default TLS server name")
	cmd.Flags().IntVar(&mtu, "mtu", 0, "Default MTU")

	return cmd
}

func newCACmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ca",
		Short: "Inspect or generate the server's certificate authority",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Report whether the CA exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.enter(ctx, router.Clients); err != nil {
					return err
				}
				st, err := s.client.CAStatus(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(s.stdout, "ca: %s\n", caState(st))
				return nil
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Generate the CA and server certificate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.run(cmd, func(ctx context.Context, s *session) error {
				if err := s.enter(ctx, router.Clients); err != nil {
					return err
				}
				if err := s.client.GenerateCA(ctx); err != nil {
					return err
				}
				fmt.Fprintln(s.stdout, "CA and server certificate generated")
				return nil
			})
		},
	})
	return cmd
}
