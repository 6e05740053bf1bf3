package main

import (
	"fmt"
	"net/http"
)

// addr is the bridge daemon's listen address, used by subcommands that talk
// to a running `serve` process rather than owning the engine themselves.
var addr string

func postTo(path string) error {
	resp, err := http.Post(fmt.Sprintf("http://%s%s", addr, path), "application/json", nil)
	if err != nil {
		return fmt.Errorf("contacting scrcpyhostd daemon at %s (is `scrcpyhostd serve` running?): %w", addr, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("daemon returned %s", resp.Status)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", "127.0.0.1:8080", "scrcpyhostd daemon address, for commands that talk to `serve`")
}
