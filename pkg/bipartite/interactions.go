package bipartite

import (
	"bytes"
	"encoding/json"
	"io"
	"sort"

	mgerrors "github.com/matzehuels/moviegraph/pkg/errors"
)

// InteractionMap is an ordered mapping from source identifier to target identifiers.
// The zero value is an empty map ready to use.
type InteractionMap struct {
	keys    []string
	targets map[string][]string
}

// NewInteractionMap creates an empty map.
func NewInteractionMap() *InteractionMap {
	return &InteractionMap{targets: make(map[string][]string)}
}

// FromMap builds an InteractionMap from a Go map. Keys are sorted so the
// result does not depend on map iteration order.
func FromMap(src map[string][]string) *InteractionMap {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := NewInteractionMap()
	for _, k := range keys {
		m.Set(k, src[k])
	}
	return m
}

// Set replaces the targets of key. A new key is appended after existing keys;
// an existing key keeps its position.
func (m *InteractionMap) Set(key string, targets []string) {
	if m.targets == nil {
		m.targets = make(map[string][]string)
	}
	if _, ok := m.targets[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.targets[key] = append([]string(nil), targets...)
}

// Keys returns the source identifiers in insertion order.
func (m *InteractionMap) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Targets returns the targets of key in their original order.
func (m *InteractionMap) Targets(key string) []string {
	return m.targets[key]
}

// Len returns the number of keys.
func (m *InteractionMap) Len() int { return len(m.keys) }

// PairCount returns the number of (key, target) pairs, counting repeats.
func (m *InteractionMap) PairCount() int {
	n := 0
	for _, k := range m.keys {
		n += len(m.targets[k])
	}
	return n
}

// MarshalJSON encodes the map as a JSON object with keys in insertion order.
func (m *InteractionMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		targets := m.targets[k]
		if targets == nil {
			targets = []string{}
		}
		vals, err := json.Marshal(targets)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(vals)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decode reads a JSON object of string keys to string arrays from r.
//
// Anything else fails with an [mgerrors.ErrCodeMalformedInput] error:
// invalid JSON, an empty body, a top-level value that is not an object, a
// value that is not an array (including null), an array element that is not
// a string, or trailing data after the object. When a key is repeated the
// last list wins and the key keeps its first position.
func Decode(r io.Reader) (*InteractionMap, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, mgerrors.New(mgerrors.ErrCodeMalformedInput, "empty body")
	}
	if err != nil {
		return nil, malformed(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, mgerrors.New(mgerrors.ErrCodeMalformedInput, "expected a JSON object of string arrays")
	}

	m := NewInteractionMap()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, mgerrors.New(mgerrors.ErrCodeMalformedInput, "expected an object key")
		}
		targets, err := decodeTargets(dec, key)
		if err != nil {
			return nil, err
		}
		m.Set(key, targets)
	}

	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, mgerrors.New(mgerrors.ErrCodeMalformedInput, "unexpected data after JSON object")
	}
	return m, nil
}

func decodeTargets(dec *json.Decoder, key string) ([]string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, malformed(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, mgerrors.New(mgerrors.ErrCodeMalformedInput, "value for %q is not an array of strings", key)
	}

	targets := []string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}
		s, ok := tok.(string)
		if !ok {
			return nil, mgerrors.New(mgerrors.ErrCodeMalformedInput, "value for %q contains a non-string element", key)
		}
		targets = append(targets, s)
	}

	if _, err := dec.Token(); err != nil {
		return nil, malformed(err)
	}
	return targets, nil
}

func malformed(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return mgerrors.New(mgerrors.ErrCodeMalformedInput, "unexpected end of JSON input")
	}
	return mgerrors.Wrap(mgerrors.ErrCodeMalformedInput, err, "invalid JSON")
}
