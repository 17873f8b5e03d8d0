package config

import (
	"fmt"
	"strings"
)

// SplitList normalises a list-valued setting.  A string is split on commas;
// an already list-shaped value is accepted as is.  Either way each entry is
// trimmed and empty entries are dropped, preserving order.
func SplitList(v any) []string {
	var parts []string
	switch t := v.(type) {
	case nil:
		return []string{}
	case string:
		parts = strings.Split(t, ",")
	case []string:
		parts = t
	case []any:
		parts = make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, fmt.Sprint(e))
		}
	default:
		parts = []string{fmt.Sprint(t)}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
