// Package headers parses "Name: Value" header arguments
package headers

import (
	"fmt"
	"net/textproto"
	"strings"
)

// Parse converts header strings ("Key: Value") into a map keyed by the
// canonical header name. A later duplicate replaces an earlier one.
func Parse(h []string) (map[string]string, error) {
	m := make(map[string]string, len(h))
	for _, hdr := range h {
		name, value, ok := strings.Cut(hdr, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" || strings.ContainsAny(name, " \\t") {
			return nil, fmt.Errorf("invalid header %q (want \"Name: Value\")", hdr)
		}
		m[textproto.CanonicalMIMEHeaderKey(name)] = strings.TrimSpace(value)
	}
	return m, nil
}
