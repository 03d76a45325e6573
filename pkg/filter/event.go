package filter

import (
	"strings"
)

// Event is a structured log record the filter reads from and writes to.
// Paths use dotted ("http.client_ip") or bracket ("[http][client_ip]") syntax.
type Event interface {
	Get(path string) (any, bool)
	Set(path string, value any)
}

// MapEvent is an Event over decoded JSON.
type MapEvent map[string]any

func (e MapEvent) Get(path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return nil, false
	}
	var cur any = map[string]any(e)
	for _, p := range parts {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[p]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set stores value at path, creating intermediate objects and replacing
// non-object values in the way.
func (e MapEvent) Set(path string, value any) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return
	}
	m := map[string]any(e)
	for _, p := range parts[:len(parts)-1] {
		next, ok := asMap(m[p])
		if !ok {
			next = map[string]any{}
			m[p] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

func asMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case MapEvent:
		return t, true
	}
	return nil, false
}

// splitPath parses "[a][b]" and "a.b" into ["a", "b"].
func splitPath(path string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "[") {
		var parts []string
		for seg := range strings.SplitSeq(strings.Trim(path, "[]"), "][") {
			if seg != "" {
				parts = append(parts, seg)
			}
		}
		return parts
	}
	var parts []string
	for seg := range strings.SplitSeq(path, ".") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}
	return parts
}

// stringField returns the string at path, or "" when absent or not a string.
func stringField(ev Event, path string) string {
	if path == "" {
		return ""
	}
	v, ok := ev.Get(path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
