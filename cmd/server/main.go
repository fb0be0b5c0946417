// Command reactivities-server serves an activity store over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nomis52/reactivities/server"
	serverconfig "github.com/nomis52/reactivities/server/config"
)

// Options holds the server command's flags.
type Options struct {
	ConfigPath string
	ListenAddr string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &Options{}

	cmd := &cobra.Command{
		Use:   "reactivities-server",
		Short: "Serve the activity store over HTTP",
		Long: `reactivities-server mirrors the activities API in memory and exposes the
store's state and operations as JSON, with live updates as server-sent events.`,
		Example: `  reactivities-server --config /etc/reactivities/server_config.yaml
  reactivities-server -c server_config.yaml --listen :9090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to server config file")
	cmd.Flags().StringVar(&opts.ListenAddr, "listen", "", "listen address (overrides config)")
	cmd.MarkFlagRequired("config")

	return cmd
}

func run(ctx context.Context, opts *Options) error {
	srvCfg, err := serverconfig.LoadConfig(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load server config: %w", err)
	}

	var srvOpts []server.Option
	if opts.ListenAddr != "" {
		srvOpts = append(srvOpts, server.WithListenAddr(opts.ListenAddr))
	}

	srv, err := server.New(srvCfg, srvOpts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			srv.Logger().Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return srv.Run(ctx)
}
