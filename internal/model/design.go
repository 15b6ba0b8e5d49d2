/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package model

// This file defines the serialisable shape of a page design. A Design is the
// only structure that is persisted, captured into history, or handed to
// observers; live editing state stays on the rendering surface.

import (
	"bytes"
	"encoding/json"
	"strings"
)

const (
	// CanvasID and CanvasType identify the root record of a Design.
	CanvasID   = "canvas"
	CanvasType = "canvas"
)

// Position is an absolute pixel offset from the canvas origin.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dimensions is the last measured rendered size of an element.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ComponentRecord describes one placed element. The canvas root uses the same
// shape with ID and Type both set to "canvas".
type ComponentRecord struct {
	ID             string            `json:"id"`
	Type           string            `json:"type"`
	Content        string            `json:"content,omitempty"`
	Position       Position          `json:"position"`
	Dimensions     Dimensions        `json:"dimensions"`
	Style          Style             `json:"style,omitempty"`
	InlineStyle    string            `json:"inlineStyle,omitempty"`
	Classes        []string          `json:"classes,omitempty"`
	DataAttributes map[string]string `json:"dataAttributes,omitempty"`
	ImageSrc       string            `json:"imageSrc,omitempty"`
	VideoSrc       string            `json:"videoSrc,omitempty"`
	Props          map[string]any    `json:"props,omitempty"`
}

// IsCanvas reports whether r is the root canvas record.
func (r ComponentRecord) IsCanvas() bool {
	return r.ID == CanvasID && r.Type == CanvasType
}

// HasClass reports whether the record carries the class token.
func (r ComponentRecord) HasClass(name string) bool {
	for _, c := range r.Classes {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy that shares no mutable state with r.
func (r ComponentRecord) Clone() ComponentRecord {
	out := r
	out.Style = r.Style.Clone()
	if r.Classes != nil {
		out.Classes = append([]string(nil), r.Classes...)
	}
	if r.DataAttributes != nil {
		out.DataAttributes = make(map[string]string, len(r.DataAttributes))
		for k, v := range r.DataAttributes {
			out.DataAttributes[k] = v
		}
	}
	if r.Props != nil {
		out.Props = cloneProps(r.Props)
	}
	return out
}

// Design is the ordered record list: an optional canvas record first, then
// one record per top-level component in DOM order.
type Design []ComponentRecord

// Clone returns an independently owned copy of d.
func (d Design) Clone() Design {
	if d == nil {
		return nil
	}
	out := make(Design, len(d))
	for i, r := range d {
		out[i] = r.Clone()
	}
	return out
}

// Canvas returns the root record and its index, or -1 when absent.
func (d Design) Canvas() (ComponentRecord, int) {
	for i, r := range d {
		if r.IsCanvas() {
			return r, i
		}
	}
	return ComponentRecord{}, -1
}

// Components returns the records that are not the canvas root.
func (d Design) Components() []ComponentRecord {
	out := make([]ComponentRecord, 0, len(d))
	for _, r := range d {
		if !r.IsCanvas() {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the record with the given id.
func (d Design) Find(id string) (ComponentRecord, bool) {
	for _, r := range d {
		if r.ID == id {
			return r, true
		}
	}
	return ComponentRecord{}, false
}

// Equal compares two designs by value. Nil and empty collections are
// considered equal, as are maps with the same entries in any order.
func (d Design) Equal(o Design) bool {
	if len(d) != len(o) {
		return false
	}
	a, errA := json.Marshal(d)
	b, errB := json.Marshal(o)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(a, b)
}

// Marshal encodes d in its persisted form.
func (d Design) Marshal() ([]byte, error) {
	if d == nil {
		d = Design{}
	}
	return json.Marshal(d)
}

// Unmarshal decodes a persisted design.
func Unmarshal(data []byte) (Design, error) {
	var d Design
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// TypeFromClass derives a component type from its leading class token:
// scope prefixes ("container1-"), a trailing digit run and a "-component"
// suffix are removed.
func TypeFromClass(class string) string {
	s := strings.TrimSuffix(class, "-component")
	for {
		i := strings.IndexByte(s, '-')
		if i <= 0 || !isScopeSegment(s[:i]) {
			break
		}
		s = s[i+1:]
	}
	s = strings.TrimRight(s, "0123456789")
	return strings.TrimSuffix(s, "-component")
}

// isScopeSegment matches "<letters><digits>", the shape of a container id.
func isScopeSegment(seg string) bool {
	j := len(seg)
	for j > 0 && seg[j-1] >= '0' && seg[j-1] <= '9' {
		j--
	}
	return j > 0 && j < len(seg)
}

func cloneProps(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneProps(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
