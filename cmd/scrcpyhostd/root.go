package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mirrorhost/scrcpy-engine/internal/logging"
)

var (
	adbPath     string
	serverJar   string
	settingsDir string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "scrcpyhostd",
	Short: "Host-side device mirroring engine (adb + scrcpy-server)",
	Long:  "scrcpyhostd discovers Android devices over adb and launches/mirrors the on-device scrcpy server over a tunnel-forwarded socket triple (video, audio, control).",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().StringVar(&adbPath, "adb", "", "explicit path to the adb binary (overrides PATH/SDK discovery)")
	rootCmd.PersistentFlags().StringVar(&serverJar, "server-jar", "scrcpy-server.jar", "host-side path to the scrcpy-server.jar artifact to stage")
	rootCmd.PersistentFlags().StringVar(&settingsDir, "settings-dir", defaultSettingsDir(), "directory for persisted settings.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initLogging() {
	if verbose {
		logging.SetLevel(logging.LevelDebug)
	} else {
		logging.SetLevel(logging.LevelInfo)
	}
}

func defaultSettingsDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return dir + "/scrcpyhostd"
}
