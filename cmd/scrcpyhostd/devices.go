package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List currently visible devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		if err := eng.registry.Poll(context.Background()); err != nil {
			return fmt.Errorf("polling devices: %w", err)
		}

		devices := eng.registry.List()
		if len(devices) == 0 {
			fmt.Println("No devices found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "SERIAL\tSTATE\tMODEL\tPRODUCT")
		for _, d := range devices {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Serial, d.State, d.Model, d.Product)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
