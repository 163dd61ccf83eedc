package patch

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is a JSON object that remembers the order of its keys and keeps
// every value as the raw bytes it was parsed from. Values are never
// re-decoded, so numbers, string escapes, and nested structure survive a
// read-modify-write cycle exactly as they appeared in the source file.
type Document struct {
	keys   []string
	values map[string]json.RawMessage
}

// ParseDocument decodes data into a Document. The top-level JSON value must
// be an object; anything else is reported as ErrBadFormat.
func ParseDocument(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top-level value is %s, want an object", ErrBadFormat, tokenName(tok))
	}

	doc := &Document{values: make(map[string]json.RawMessage)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: object key is %s", ErrBadFormat, tokenName(keyTok))
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", ErrBadFormat, key, err)
		}
		// Duplicate keys keep their first position; the last value wins.
		if _, seen := doc.values[key]; !seen {
			doc.keys = append(doc.keys, key)
		}
		doc.values[key] = raw
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after top-level object", ErrBadFormat)
	}

	return doc, nil
}

// Len returns the number of top-level keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// Keys returns a copy of the document's keys in their original order.
func (d *Document) Keys() []string {
	keys := make([]string, len(d.keys))
	copy(keys, d.keys)
	return keys
}

// Has reports whether key is present at the top level.
func (d *Document) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Get returns a copy of the raw JSON value stored under key.
func (d *Document) Get(key string) (json.RawMessage, bool) {
	raw, ok := d.values[key]
	if !ok {
		return nil, false
	}
	return append(json.RawMessage(nil), raw...), true
}

// Set stores raw as the value for key. A key that is not already present is
// appended after the existing keys, preserving insertion order.
func (d *Document) Set(key string, raw json.RawMessage) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if !json.Valid(raw) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}

	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = append(json.RawMessage(nil), raw...)
	return nil
}

// MarshalJSON emits the object with keys in document order and raw values
// verbatim.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(d.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Encode serializes the document with two-space indentation. HTML escaping
// is disabled so string values keep their original bytes.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// tokenName describes a decoded JSON token for error messages.
func tokenName(tok json.Token) string {
	switch v := tok.(type) {
	case json.Delim:
		if v == '[' {
			return "an array"
		}
		return v.String()
	case string:
		return "a string"
	case float64, json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case nil:
		return "null"
	}
	return fmt.Sprintf("%T", tok)
}
