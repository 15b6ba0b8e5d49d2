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
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"

	applog "pagecomposer/internal/log"
	"pagecomposer/internal/model"
)

// FileStore keeps the design as an indented JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
	log  *slog.Logger
}

// NewFileStore returns a store writing to path. The directory is created on
// first save.
func NewFileStore(path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("file store: path is required")
	}
	return &FileStore{path: path, log: applog.WithComponent("storage").With(slog.String("path", path))}, nil
}

// Path returns the file location.
func (s *FileStore) Path() string { return s.path }

// Save replaces the file atomically.
func (s *FileStore) Save(d model.Design) error {
	data, err := d.Marshal()
	if err != nil {
		return fmt.Errorf("marshal design: %w", err)
	}
	if err := ValidateDesign(data); err != nil {
		return err
	}
	pretty, err := indent(data)
	if err != nil {
		return fmt.Errorf("format design: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(s.path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, pretty); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp design: %w", err)
	}
	if err := os.Rename(temp, s.path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace design: %w", err)
	}
	s.log.Debug("design saved", slog.Int("records", len(d)), slog.Int("bytes", len(pretty)))
	return nil
}

// Load reads the file; a missing file is not an error.
func (s *FileStore) Load() (model.Design, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read design: %w", err)
	}
	d, err := decode(data)
	if err != nil {
		s.log.Warn("stored design rejected", slog.Any("err", err))
		return nil, err
	}
	return d, nil
}

// Remove deletes the file; removing an absent file succeeds.
func (s *FileStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove design: %w", err)
	}
	return nil
}

// writeFileSync writes data and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
