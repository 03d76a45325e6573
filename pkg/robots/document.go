package robots

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the database document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromName picks the format from a file name extension.
// Unknown or missing extensions default to JSON.
func FormatFromName(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

type document struct {
	Robots   *[]robotEntry `json:"robots" yaml:"robots"`
	Patterns []Pattern     `json:"patterns" yaml:"patterns"`
}

type robotEntry struct {
	ID         *int        `json:"id" yaml:"id"`
	Name       string      `json:"name" yaml:"name"`
	Slug       string      `json:"url" yaml:"url"`
	Reputation string      `json:"reputation" yaml:"reputation"`
	IPs        []ipEntry   `json:"ips" yaml:"ips"`
	CIDRs      []cidrEntry `json:"cidrs" yaml:"cidrs"`
	UserAgents []string    `json:"uas" yaml:"uas"`
}

// ipEntry accepts either "addr" or ["addr"].
type ipEntry struct {
	value string
	bad   bool
}

func (e *ipEntry) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var list []string
		if err := json.Unmarshal(b, &list); err != nil || len(list) != 1 {
			e.bad, e.value = true, string(b)
			return nil
		}
		e.value = list[0]
		return nil
	}
	if err := json.Unmarshal(b, &e.value); err != nil {
		e.bad, e.value = true, string(b)
	}
	return nil
}

func (e *ipEntry) UnmarshalYAML(n *yaml.Node) error {
	switch {
	case n.Kind == yaml.ScalarNode:
		e.value = n.Value
	case n.Kind == yaml.SequenceNode && len(n.Content) == 1 && n.Content[0].Kind == yaml.ScalarNode:
		e.value = n.Content[0].Value
	default:
		e.bad = true
	}
	return nil
}

// cidrEntry is a [first-address, length] pair. The length may be a number or
// a decimal string, since IPv6 lengths overflow JSON numbers.
type cidrEntry struct {
	first  string
	length string
	bad    bool
}

func (e *cidrEntry) UnmarshalJSON(b []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(b, &parts); err != nil || len(parts) != 2 {
		e.bad, e.first = true, string(b)
		return nil
	}
	if err := json.Unmarshal(parts[0], &e.first); err != nil {
		e.bad, e.first = true, string(b)
		return nil
	}
	raw := bytes.TrimSpace(parts[1])
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &e.length); err != nil {
			e.bad = true
		}
		return nil
	}
	e.length = string(raw)
	return nil
}

func (e *cidrEntry) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.SequenceNode || len(n.Content) != 2 ||
		n.Content[0].Kind != yaml.ScalarNode || n.Content[1].Kind != yaml.ScalarNode {
		e.bad = true
		return nil
	}
	e.first, e.length = n.Content[0].Value, n.Content[1].Value
	return nil
}

func (e cidrEntry) String() string {
	if e.length == "" {
		return e.first
	}
	return e.first + "/" + e.length
}

func decodeDocument(r io.Reader, format Format) (document, error) {
	var doc document
	switch format {
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return doc, err
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			return doc, err
		}
	default:
		return doc, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if doc.Robots == nil {
		return doc, errors.New(`missing "robots" list`)
	}
	return doc, nil
}
