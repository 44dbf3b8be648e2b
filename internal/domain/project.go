package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

var projectKeys = []string{"name", "description", "languages", "stars"}

// Project is one showcased repository on the site's projects list.
// Name is its identity.
//
// A decoded project remembers its member order and keeps members it does not
// know in Extra, so encoding it again changes only what the caller changed.
type Project struct {
	Name        string
	Description string
	Languages   []string
	Stars       int

	// Extra holds the record's other members, written back verbatim.
	Extra map[string]json.RawMessage

	keys []string
}

// UnmarshalJSON decodes a project object member by member.
func (p *Project) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("project must be a JSON object, got %s", data)
	}

	var decoded Project
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		if !slices.Contains(decoded.keys, key) {
			decoded.keys = append(decoded.keys, key)
		}
		if err := decoded.set(key, raw); err != nil {
			return fmt.Errorf("project member %q: %w", key, err)
		}
	}
	*p = decoded
	return nil
}

func (p *Project) set(key string, raw json.RawMessage) error {
	switch key {
	case "name":
		return json.Unmarshal(raw, &p.Name)
	case "description":
		return json.Unmarshal(raw, &p.Description)
	case "languages":
		return json.Unmarshal(raw, &p.Languages)
	case "stars":
		return json.Unmarshal(raw, &p.Stars)
	}
	if p.Extra == nil {
		p.Extra = make(map[string]json.RawMessage)
	}
	p.Extra[key] = raw
	return nil
}

// MarshalJSON writes the members in their decoded order. A project built in
// code gets name, description, languages and stars, then its Extra members
// sorted by key. Stars is always written.
func (p Project) MarshalJSON() ([]byte, error) {
	keys := p.keys
	if keys == nil {
		keys = slices.Clone(projectKeys)
		extra := make([]string, 0, len(p.Extra))
		for key := range p.Extra {
			if !slices.Contains(projectKeys, key) {
				extra = append(extra, key)
			}
		}
		slices.Sort(extra)
		keys = append(keys, extra...)
	} else if !slices.Contains(keys, "stars") {
		keys = append(slices.Clip(keys), "stars")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		value, err := p.member(key)
		if err != nil {
			return nil, fmt.Errorf("project member %q: %w", key, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := encodeJSON(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p Project) member(key string) ([]byte, error) {
	switch key {
	case "name":
		return encodeJSON(p.Name)
	case "description":
		return encodeJSON(p.Description)
	case "languages":
		if p.Languages == nil && p.keys == nil {
			return []byte("[]"), nil
		}
		return encodeJSON(p.Languages)
	case "stars":
		return encodeJSON(p.Stars)
	}
	raw, ok := p.Extra[key]
	if !ok {
		return []byte("null"), nil
	}
	return raw, nil
}

// encodeJSON marshals v without HTML escaping.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
