/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package surface

import (
	"strings"

	"github.com/gorilla/css/scanner"

	"pagecomposer/internal/model"
)

// ParseInline tokenizes a style attribute into ordered declarations.
// Malformed trailing input is dropped; later duplicates replace earlier ones.
func ParseInline(s string) model.Style {
	var out model.Style
	if strings.TrimSpace(s) == "" {
		return out
	}
	var (
		prop    string
		val     strings.Builder
		inValue bool
		space   bool
	)
	flush := func() {
		v := strings.TrimSpace(val.String())
		if prop != "" && v != "" {
			out.Set(prop, v)
		}
		prop, inValue, space = "", false, false
		val.Reset()
	}
	sc := scanner.New(s)
	for {
		tok := sc.Next()
		switch tok.Type {
		case scanner.TokenEOF, scanner.TokenError:
			flush()
			return out
		case scanner.TokenComment:
			continue
		case scanner.TokenS:
			if inValue && val.Len() > 0 {
				space = true
			}
			continue
		case scanner.TokenChar:
			if tok.Value == ";" {
				flush()
				continue
			}
			if tok.Value == ":" && !inValue {
				inValue = prop != ""
				continue
			}
		}
		if !inValue {
			if tok.Type == scanner.TokenIdent && prop == "" {
				prop = strings.ToLower(tok.Value)
			}
			continue
		}
		if space && !closesGroup(tok) {
			val.WriteByte(' ')
		}
		space = false
		val.WriteString(tok.Value)
	}
}

func closesGroup(tok *scanner.Token) bool {
	return tok.Type == scanner.TokenChar && (tok.Value == ")" || tok.Value == ",")
}

// StripImportant removes a trailing !important marker.
func StripImportant(v string) string {
	v = strings.TrimSpace(v)
	if i := strings.LastIndex(v, "!"); i >= 0 && strings.EqualFold(strings.TrimSpace(v[i+1:]), "important") {
		return strings.TrimSpace(v[:i])
	}
	return v
}
