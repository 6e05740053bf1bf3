package launcher

// Options configures a single scrcpy server launch (spec §4.3 defaults
// table).
type Options struct {
	// Version is the scrcpy server protocol version string; it must match
	// the artifact bundled on the host.
	Version string
	Bitrate int64
	MaxSize int
	MaxFPS  int
	// Audio enables the audio stream; callers should disable it for
	// devices below Android 11.
	Audio      bool
	AudioCodec string // "raw", "aac" or "opus"
}

// DefaultOptions returns the spec §4.3 defaults table.
func DefaultOptions() Options {
	return Options{
		Version:    DefaultServerVersion,
		Bitrate:    8_000_000,
		MaxSize:    0,
		MaxFPS:     60,
		Audio:      true,
		AudioCodec: "raw",
	}
}
