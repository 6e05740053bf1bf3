package demux

// Codec ids recognized on the video handshake. The demuxer treats them as
// opaque values, passing them through to the consumer unchanged (spec
// §4.5); this table exists only so callers/tests have names for them.
const (
	CodecH264 uint32 = 0x68_32_36_34 // "h264"
	CodecH265 uint32 = 0x68_32_36_35 // "h265"
	CodecAV1  uint32 = 0x00_61_76_31 // "av1"
)

// audioCodecTags are the 3-byte prefixes the audio preamble scan looks for
// (spec §4.5's signature search). The scan reports the match at the earliest
// byte offset; the order of this list does not affect which match wins.
var audioCodecTags = [][]byte{
	[]byte("raw"),
	[]byte("aac"),
	[]byte("opu"),
}
