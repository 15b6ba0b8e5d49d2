/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultName is used when an export has no name.
const DefaultName = "page"

// WriteArchive writes data to dir/name, forcing a .zip extension. Absolute
// names ignore dir. The bytes go to a temp file that is renamed into place;
// on any failure the temp file is removed.
func WriteArchive(dir, name string, data []byte) (path string, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	if !strings.HasSuffix(strings.ToLower(name), ".zip") {
		name += ".zip"
	}
	path = name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}
	outDir := filepath.Dir(path)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.CreateTemp(outDir, ".export-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write archive: %w", err)
	}
	if err = f.Sync(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("sync archive: %w", err)
	}
	if err = f.Close(); err != nil {
		return "", fmt.Errorf("close archive: %w", err)
	}
	if st, serr := os.Stat(path); serr == nil && st.IsDir() {
		err = errors.New("target is a directory: " + path)
		return "", err
	}
	if err = os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("move archive into place: %w", err)
	}
	return path, nil
}

func replaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
