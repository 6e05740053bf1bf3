package adb

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// LocateConfig carries the inputs to locate() beyond what the OS itself
// supplies: an explicit override and the app's per-user data directory,
// under which a bundled adb binary may have been installed by the
// (out-of-scope) installer component.
type LocateConfig struct {
	// ExplicitPath is an operator-configured override, e.g. from settings.
	ExplicitPath string
	// AppDataDir is the application's per-user data directory; a bundled
	// adb, if present, lives at <AppDataDir>/platform-tools/adb[.exe].
	AppDataDir string
}

// Locate resolves the adb binary to invoke, trying each candidate location
// in order and taking the first one that exists and is executable. The bare
// "adb" (resolved through PATH by the shell/exec machinery) is always
// accepted as the final fallback, even though its existence cannot be
// verified up front.
func Locate(cfg LocateConfig) (string, error) {
	candidates := make([]string, 0, 8)
	if cfg.ExplicitPath != "" {
		candidates = append(candidates, cfg.ExplicitPath)
	}
	if cfg.AppDataDir != "" {
		candidates = append(candidates, bundledPath(cfg.AppDataDir))
	}
	candidates = append(candidates, wellKnownSDKPaths()...)

	for _, c := range candidates {
		if isExecutableFile(c) {
			return c, nil
		}
	}

	// PATH fallback: accepted unconditionally, per spec.
	return "adb", nil
}

func bundledPath(appDataDir string) string {
	name := "adb"
	if runtime.GOOS == "windows" {
		name = "adb.exe"
	}
	return filepath.Join(appDataDir, "platform-tools", name)
}

func wellKnownSDKPaths() []string {
	home, _ := os.UserHomeDir()
	name := "adb"
	if runtime.GOOS == "windows" {
		name = "adb.exe"
	}
	var dirs []string
	switch runtime.GOOS {
	case "windows":
		dirs = []string{
			filepath.Join(os.Getenv("LOCALAPPDATA"), "Android", "Sdk", "platform-tools"),
			filepath.Join(home, "AppData", "Local", "Android", "Sdk", "platform-tools"),
		}
	case "darwin":
		dirs = []string{
			filepath.Join(home, "Library", "Android", "sdk", "platform-tools"),
			"/usr/local/share/android-sdk/platform-tools",
		}
	default: // linux and other unix-likes
		dirs = []string{
			filepath.Join(home, "Android", "Sdk", "platform-tools"),
			filepath.Join(home, ".android-sdk", "platform-tools"),
			"/opt/android-sdk/platform-tools",
		}
	}
	paths := make([]string, 0, len(dirs))
	for _, d := range dirs {
		paths = append(paths, filepath.Join(d, name))
	}
	return paths
}

func isExecutableFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode()&0o111 != 0
}

// resolvableOnPath reports whether name can be resolved via PATH, used only
// to make the PATH-fallback contract explicit in tests.
func resolvableOnPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
