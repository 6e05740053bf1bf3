package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mirrorhost/scrcpy-engine/internal/launcher"
	"github.com/mirrorhost/scrcpy-engine/internal/session"
	"github.com/mirrorhost/scrcpy-engine/internal/settings"
)

var (
	maxSize int
	maxFPS  int
	bitrate int64
	audio   bool
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror [serial]",
	Short: "Launch and stream a device's scrcpy session until interrupted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		serial := args[0]
		eng, err := newEngine()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// mirror is a one-shot CLI, not the serve daemon, so nothing else
		// has primed the registry yet; Start now consults it for
		// DeviceUnknown (spec §7).
		if err := eng.registry.Poll(ctx); err != nil {
			return fmt.Errorf("polling devices: %w", err)
		}

		opts := launcher.DefaultOptions()
		if override, ok := eng.store.DeviceOptions(serial); ok {
			applyOverride(&opts, override)
		}
		if cmd.Flags().Changed("max-size") {
			opts.MaxSize = maxSize
		}
		if cmd.Flags().Changed("max-fps") {
			opts.MaxFPS = maxFPS
		}
		if cmd.Flags().Changed("bitrate") {
			opts.Bitrate = bitrate
		}
		if cmd.Flags().Changed("audio") {
			opts.Audio = audio
		}

		port, err := eng.supervisor.Start(ctx, serial, opts)
		if err != nil {
			return fmt.Errorf("starting %s: %w", serial, err)
		}
		fmt.Printf("mirroring %s on local port %d — press Ctrl+C to stop\n", serial, port)

		go func() {
			for ev := range eng.supervisor.Events() {
				logMirrorEvent(ev)
			}
		}()

		<-ctx.Done()
		eng.supervisor.Stop(context.Background(), serial)
		return nil
	},
}

func logMirrorEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventConnected:
		fmt.Printf("[%s] connected\n", ev.Serial)
	case session.EventMetadata:
		fmt.Printf("[%s] %dx%d\n", ev.Serial, ev.Metadata.Width, ev.Metadata.Height)
	case session.EventClipboard:
		fmt.Printf("[%s] clipboard: %s\n", ev.Serial, ev.Clipboard)
	case session.EventDisconnected:
		fmt.Printf("[%s] disconnected\n", ev.Serial)
	case session.EventError:
		fmt.Printf("[%s] error: %v\n", ev.Serial, ev.Err)
	}
}

func applyOverride(opts *launcher.Options, d settings.Device) {
	if d.MaxSize > 0 {
		opts.MaxSize = d.MaxSize
	}
	if d.MaxFPS > 0 {
		opts.MaxFPS = d.MaxFPS
	}
	if d.Bitrate > 0 {
		opts.Bitrate = int64(d.Bitrate)
	}
	opts.Audio = d.Audio
	if d.Codec != "" {
		opts.AudioCodec = d.Codec
	}
}

func init() {
	mirrorCmd.Flags().IntVar(&maxSize, "max-size", 0, "maximum dimension in pixels (0 = device default)")
	mirrorCmd.Flags().IntVar(&maxFPS, "max-fps", 60, "capture frame rate")
	mirrorCmd.Flags().Int64Var(&bitrate, "bitrate", 8_000_000, "video bitrate in bits/second")
	mirrorCmd.Flags().BoolVar(&audio, "audio", true, "request the audio stream")
	rootCmd.AddCommand(mirrorCmd)
}
