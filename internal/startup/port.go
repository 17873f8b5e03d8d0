package startup

import (
	"strconv"
	"strings"
)

// DefaultPort is the listen port used when PORT is absent or unusable.
const DefaultPort = 8000

// portPlaceholder is what some platforms pass when they forget to expand the
// variable in a start command.
const portPlaceholder = "$PORT"

// ResolvePort turns the raw PORT value into a port number.  Unlike
// config.Resolve this never fails: the literal "$PORT" and empty input map to
// DefaultPort silently, anything else non-numeric maps to DefaultPort with
// fellBack set so the caller can warn.
func ResolvePort(raw string) (port int, fellBack bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == portPlaceholder {
		return DefaultPort, false
	}
	p, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultPort, true
	}
	return p, false
}
