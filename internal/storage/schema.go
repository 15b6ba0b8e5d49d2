/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"pagecomposer/internal/model"
)

//go:embed design.schema.json
var designSchema []byte

// DesignSchema returns the JSON schema persisted designs must satisfy.
func DesignSchema() []byte { return append([]byte(nil), designSchema...) }

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiled() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(designSchema))
	})
	return schema, schemaErr
}

// ValidateDesign checks a serialized design against the schema and the
// ordering rule that the canvas record, if present, comes first.
// Failures wrap ErrInvalidDesign.
func ValidateDesign(data []byte) error {
	s, err := compiled()
	if err != nil {
		return fmt.Errorf("compile design schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDesign, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalidDesign, strings.Join(msgs, "; "))
	}
	var heads []struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &heads); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDesign, err)
	}
	for i, h := range heads {
		if h.Type == model.CanvasType && i != 0 {
			return fmt.Errorf("%w: canvas record at index %d", ErrInvalidDesign, i)
		}
	}
	return nil
}

func indent(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
