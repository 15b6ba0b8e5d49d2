/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package surface

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToHTML converts el into an html.Node tree. Descendants rejected by keep are
// omitted together with their subtree; keep may be nil.
func ToHTML(el *Element, keep func(*Element) bool) *html.Node {
	if el.IsText() {
		return &html.Node{Type: html.TextNode, Data: el.Text}
	}
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     el.Tag,
		DataAtom: atom.Lookup([]byte(el.Tag)),
		Attr:     el.Attrs(),
	}
	for _, c := range el.children {
		if keep != nil && !c.IsText() && !keep(c) {
			continue
		}
		n.AppendChild(ToHTML(c, keep))
	}
	return n
}

// FromHTML converts a parsed node into an Element tree. Comments, doctypes
// and other non-content nodes yield nil.
func FromHTML(n *html.Node) *Element {
	switch n.Type {
	case html.TextNode:
		return NewText(n.Data)
	case html.ElementNode:
		el := NewElement(n.Data)
		el.attrs = append([]html.Attribute(nil), n.Attr...)
		for i := range el.attrs {
			el.attrs[i].Namespace = ""
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if ce := FromHTML(c); ce != nil {
				ce.parent = el
				el.children = append(el.children, ce)
			}
		}
		return el
	default:
		return nil
	}
}

// ParseFragment parses markup in the context of a parent element with the
// given tag.
func ParseFragment(markup, contextTag string) ([]*Element, error) {
	if contextTag == "" {
		contextTag = "div"
	}
	ctx := &html.Node{Type: html.ElementNode, Data: contextTag, DataAtom: atom.Lookup([]byte(contextTag))}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if el := FromHTML(n); el != nil {
			out = append(out, el)
		}
	}
	return out, nil
}

// Render returns the outer markup of el.
func Render(el *Element, keep func(*Element) bool) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, ToHTML(el, keep)); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}

// InnerHTML returns the markup of el's children.
func InnerHTML(el *Element, keep func(*Element) bool) (string, error) {
	var buf bytes.Buffer
	for _, c := range el.children {
		if keep != nil && !c.IsText() && !keep(c) {
			continue
		}
		if err := html.Render(&buf, ToHTML(c, keep)); err != nil {
			return "", fmt.Errorf("render: %w", err)
		}
	}
	return buf.String(), nil
}

// SetInnerHTML replaces el's children with the parsed markup.
func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := ParseFragment(markup, e.Tag)
	if err != nil {
		return err
	}
	e.ClearChildren()
	for _, n := range nodes {
		e.AppendChild(n)
	}
	return nil
}
