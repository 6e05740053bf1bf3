package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mirrorhost/scrcpy-engine/internal/bridge"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP/websocket bridge daemon",
	Long:  "Runs the device registry and session supervisor continuously, exposing them over HTTP for `stop`/`clipboard` (run against --addr) and any websocket event consumer. `devices` and `mirror` do not use the daemon; they run their own engine.",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go eng.registry.Run(ctx)
		go eng.runLifecycleGlue(ctx)

		initialIPs := eng.store.WirelessIPs()
		changes, err := eng.store.Watch(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: settings watch disabled: %v\n", err)
			changes = nil
		}
		if len(initialIPs) > 0 || changes != nil {
			go eng.registry.WatchWireless(ctx, initialIPs, changes)
		}

		srv := bridge.New(eng.registry, eng.supervisor)
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Run(listenAddr) }()

		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "127.0.0.1:8080", "bridge HTTP listen address")
	rootCmd.AddCommand(serveCmd)
}
