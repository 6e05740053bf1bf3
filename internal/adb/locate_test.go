package adb

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocate_ExplicitPathTakesPriority(t *testing.T) {
	dir := t.TempDir()
	fake := filepath.Join(dir, "adb")
	require.NoError(t, os.WriteFile(fake, []byte("#!/bin/sh\n"), 0o755))

	got, err := Locate(LocateConfig{ExplicitPath: fake})
	require.NoError(t, err)
	require.Equal(t, fake, got)
}

func TestLocate_FallsBackToBundledWhenExplicitMissing(t *testing.T) {
	dir := t.TempDir()
	bundled := bundledPath(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(bundled), 0o755))
	require.NoError(t, os.WriteFile(bundled, []byte("#!/bin/sh\n"), 0o755))

	got, err := Locate(LocateConfig{ExplicitPath: filepath.Join(dir, "does-not-exist"), AppDataDir: dir})
	require.NoError(t, err)
	require.Equal(t, bundled, got)
}

func TestLocate_FallsBackToBarePathName(t *testing.T) {
	got, err := Locate(LocateConfig{})
	require.NoError(t, err)
	require.Equal(t, "adb", got)
}

func TestIsExecutableFile(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "adb")
	require.NoError(t, os.WriteFile(exe, []byte("x"), 0o755))
	require.True(t, isExecutableFile(exe))

	nonExe := filepath.Join(dir, "adb.txt")
	require.NoError(t, os.WriteFile(nonExe, []byte("x"), 0o644))
	require.False(t, isExecutableFile(nonExe))

	require.False(t, isExecutableFile(filepath.Join(dir, "missing")))
	require.False(t, isExecutableFile(dir)) // a directory is never executable-as-file
}

func TestResolvableOnPath_BarePathFallbackContract(t *testing.T) {
	// "adb" itself may or may not be installed in the test environment, but
	// the function must not panic and must agree with exec.LookPath.
	_, lookErr := exec.LookPath("adb")
	require.Equal(t, lookErr == nil, resolvableOnPath("adb"))
}
