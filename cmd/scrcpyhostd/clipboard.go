package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clipboardCmd = &cobra.Command{
	Use:   "clipboard [serial]",
	Short: "Request the device clipboard on a session running under `scrcpyhostd serve`",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := postTo("/devices/" + args[0] + "/clipboard"); err != nil {
			return err
		}
		fmt.Println("requested; watch the event stream for the reply")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clipboardCmd)
}
