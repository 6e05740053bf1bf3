// Package settings persists host-level engine configuration (SPEC_FULL
// A.3): known wireless device IPs, per-serial launch option overrides, and
// the preferred adb path. It is a thin YAML-backed Store with an optional
// fsnotify watch so external edits to the file take effect without a
// restart (SPEC_FULL C.5).
package settings

import (
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/mirrorhost/scrcpy-engine/internal/logging"
)

var log = logging.For("settings")

// Data is the full persisted document. Zero value is a valid empty store.
type Data struct {
	AdbPath       string            `yaml:"adb_path,omitempty"`
	WirelessIPs   []string          `yaml:"wireless_ips,omitempty"`
	DeviceOptions map[string]Device `yaml:"device_options,omitempty"`
}

// Device holds per-serial overrides layered on top of launcher.DefaultOptions.
// A zero MaxSize, MaxFPS, Bitrate or empty Codec keeps the default; Audio is
// always applied, so an entry that omits audio turns the audio stream off.
type Device struct {
	MaxSize int    `yaml:"max_size,omitempty"`
	MaxFPS  int    `yaml:"max_fps,omitempty"`
	Bitrate int    `yaml:"bitrate,omitempty"`
	Audio   bool   `yaml:"audio,omitempty"`
	Codec   string `yaml:"audio_codec,omitempty"`
}

// Store is a concurrency-safe, disk-backed settings document.
type Store struct {
	path string

	mu   sync.RWMutex
	data Data
}

// Open loads path if it exists, or starts from an empty Data otherwise.
// The parent directory is created if missing so the first write succeeds.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	s.data = d
	return s, nil
}

// All returns a copy of the current document.
func (s *Store) All() Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// WirelessIPs returns the known wireless device IPs.
func (s *Store) WirelessIPs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.data.WirelessIPs))
	copy(out, s.data.WirelessIPs)
	return out
}

// SetWirelessIPs replaces the known wireless device IPs and persists them.
func (s *Store) SetWirelessIPs(ips []string) error {
	s.mu.Lock()
	s.data.WirelessIPs = ips
	d := s.data
	s.mu.Unlock()
	return s.save(d)
}

// DeviceOptions returns the override for serial, if any.
func (s *Store) DeviceOptions(serial string) (Device, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data.DeviceOptions[serial]
	return d, ok
}

// SetDeviceOptions stores and persists an override for serial.
func (s *Store) SetDeviceOptions(serial string, dev Device) error {
	s.mu.Lock()
	if s.data.DeviceOptions == nil {
		s.data.DeviceOptions = make(map[string]Device)
	}
	s.data.DeviceOptions[serial] = dev
	d := s.data
	s.mu.Unlock()
	return s.save(d)
}

// reload re-reads the file, used by Watch on external edits.
func (s *Store) reload() error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return err
	}
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return err
	}
	s.mu.Lock()
	s.data = d
	s.mu.Unlock()
	return nil
}

func (s *Store) save(d Data) error {
	raw, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
