/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"strconv"
	"strings"

	"pagecomposer/internal/surface"
)

// GenerateUniqueID returns "{scope-}{typ}{N}" with N one above the largest
// suffix currently used for that prefix, either among the top-level components
// (scope empty) or inside the scope container. Calling it allocates nothing.
// An unresolvable scope yields N=1.
func (c *Canvas) GenerateUniqueID(typ, scope string) string {
	prefix := typ
	if scope != "" {
		prefix = scope + "-" + typ
		root, ok := c.Component(scope)
		if !ok {
			return prefix + "1"
		}
		n := maxSuffix(root.FindAll(func(e *surface.Element) bool { return e != root && !e.IsText() }), prefix)
		return prefix + strconv.Itoa(n+1)
	}
	return prefix + strconv.Itoa(maxSuffix(c.components, prefix)+1)
}

// maxSuffix scans id and class tokens of els for prefix followed by digits.
func maxSuffix(els []*surface.Element, prefix string) int {
	best := 0
	check := func(tok string) {
		rest, ok := strings.CutPrefix(tok, prefix)
		if !ok || rest == "" {
			return
		}
		n, err := strconv.Atoi(rest)
		if err != nil || n < 0 {
			return
		}
		if n > best {
			best = n
		}
	}
	for _, el := range els {
		check(el.ID())
		for _, cl := range el.Classes() {
			check(cl)
		}
	}
	return best
}
