/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Declaration is one property/value pair of a style.
type Declaration struct {
	Property string
	Value    string
}

// Style is an ordered mapping of CSS property names to values. It encodes as
// a JSON object whose keys keep their insertion order.
type Style []Declaration

// Get returns the value of prop.
func (s Style) Get(prop string) (string, bool) {
	for _, d := range s {
		if d.Property == prop {
			return d.Value, true
		}
	}
	return "", false
}

// Set replaces the value of prop in place or appends it.
func (s *Style) Set(prop, value string) {
	for i, d := range *s {
		if d.Property == prop {
			(*s)[i].Value = value
			return
		}
	}
	*s = append(*s, Declaration{Property: prop, Value: value})
}

// Delete removes prop if present.
func (s *Style) Delete(prop string) {
	out := (*s)[:0]
	for _, d := range *s {
		if d.Property != prop {
			out = append(out, d)
		}
	}
	*s = out
}

// Clone returns a copy of s.
func (s Style) Clone() Style {
	if s == nil {
		return nil
	}
	return append(Style(nil), s...)
}

// Merge returns s overlaid with o; properties of o win and keep the position
// they already had in s.
func (s Style) Merge(o Style) Style {
	out := s.Clone()
	for _, d := range o {
		out.Set(d.Property, d.Value)
	}
	return out
}

// String renders s as an inline style attribute value.
func (s Style) String() string {
	var b strings.Builder
	for i, d := range s {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d.Property)
		b.WriteString(": ")
		b.WriteString(d.Value)
		b.WriteByte(';')
	}
	return b.String()
}

// IsNoiseValue reports values that carry no presentation information.
func IsNoiseValue(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "initial", "auto", "none":
		return true
	}
	return false
}

// WithoutNoise returns s without declarations whose value is noise.
func (s Style) WithoutNoise() Style {
	out := make(Style, 0, len(s))
	for _, d := range s {
		if !IsNoiseValue(d.Value) {
			out = append(out, d)
		}
	}
	return out
}

// MarshalJSON encodes s as an object preserving declaration order.
func (s Style) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(d.Property)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(d.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping key order.
func (s *Style) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("style: expected object, got %v", tok)
	}
	out := Style{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("style: expected key, got %v", kt)
		}
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		out.Set(key, fmt.Sprint(valueOrEmpty(raw)))
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

func valueOrEmpty(v any) any {
	if v == nil {
		return ""
	}
	return v
}
