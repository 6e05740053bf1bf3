package registry

import (
	"regexp"
	"strings"
)

var lineRe = regexp.MustCompile(`^(\S+)\s+(\S+)`)

type parsedLine struct {
	Serial      string
	State       State
	Model       string
	Product     string
	TransportID string
}

// parseDevicesList implements spec §4.2 step 1: skip the header line, match
// serial/state on each remaining non-empty line, and harvest the optional
// model:/product:/transport_id: tokens. Underscores in model are replaced
// with spaces.
func parseDevicesList(output string) []parsedLine {
	lines := strings.Split(output, "\n")
	var out []parsedLine
	for i, line := range lines {
		if i == 0 {
			continue // header: "List of devices attached"
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		pl := parsedLine{Serial: m[1], State: State(m[2])}
		for _, tok := range strings.Fields(line) {
			switch {
			case strings.HasPrefix(tok, "model:"):
				pl.Model = strings.ReplaceAll(strings.TrimPrefix(tok, "model:"), "_", " ")
			case strings.HasPrefix(tok, "product:"):
				pl.Product = strings.TrimPrefix(tok, "product:")
			case strings.HasPrefix(tok, "transport_id:"):
				pl.TransportID = strings.TrimPrefix(tok, "transport_id:")
			}
		}
		out = append(out, pl)
	}
	return out
}

// IsWireless reports whether a serial identifies a wireless (TCP/IP) device
// rather than a USB one, per spec §4.2: serials containing ':' or '.' are
// wireless (an IP[:port] address).
func IsWireless(serial string) bool {
	return strings.ContainsAny(serial, ":.")
}
