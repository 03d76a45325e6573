package accesswatch

import "slices"

// Record is a loosely typed API object (address, user agent, robot or
// reputation). The API adds fields over time, so only projections are typed.
type Record map[string]any

// Allow-lists applied when copying records into events.
var (
	AddressKeys = []string{"value", "hostname", "country_code", "flags"}
	RobotKeys   = []string{"id", "name", "url"}
)

// Project returns the entries whose key is in keys (all keys when keys is
// nil) and whose value is not empty. Returns nil when nothing is left.
func (r Record) Project(keys []string) Record {
	var out Record
	for k, v := range r {
		if keys != nil && !slices.Contains(keys, k) {
			continue
		}
		if isEmpty(v) {
			continue
		}
		if out == nil {
			out = make(Record, len(r))
		}
		out[k] = v
	}
	return out
}

// String returns the string value under key, or "".
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case Record:
		return len(t) == 0
	}
	return false
}

// Identity is the combined answer for an (address, user agent) pair.
type Identity struct {
	Type       string `json:"type,omitempty"`
	Address    Record `json:"address,omitempty"`
	UserAgent  Record `json:"user_agent,omitempty"`
	Robot      Record `json:"robot,omitempty"`
	Reputation Record `json:"reputation,omitempty"`
}
