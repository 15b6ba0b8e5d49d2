/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"errors"
	"fmt"
	"strings"

	"pagecomposer/internal/model"
)

// DefaultKey names the slot when none is configured.
const DefaultKey = "canvas-state"

var (
	// ErrInvalidDesign is returned by Load when the stored document does not
	// parse or does not match the design schema.
	ErrInvalidDesign = errors.New("invalid design")
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown storage backend")
)

// Store is a single-slot, last-write-wins design store.
// Load returns (nil, nil) when nothing is stored.
type Store interface {
	Save(d model.Design) error
	Load() (model.Design, error)
	Remove() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string // "file" | "sqlite" | "memory"
	Path    string
	Key     string
}

// Open returns the backend named by opts. The caller closes it with Close
// when it implements io.Closer.
func Open(opts Options) (Store, error) {
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		key = DefaultKey
	}
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", "file":
		return NewFileStore(opts.Path)
	case "sqlite":
		return OpenSQLite(opts.Path, key)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// decode validates and parses a stored document.
func decode(data []byte) (model.Design, error) {
	if err := ValidateDesign(data); err != nil {
		return nil, err
	}
	d, err := model.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDesign, err)
	}
	return d, nil
}
