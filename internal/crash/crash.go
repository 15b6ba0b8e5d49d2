/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report and a last save of the
// design being edited.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "pagecomposer/internal/log"
	"pagecomposer/internal/model"
	"pagecomposer/internal/storage"
	"pagecomposer/internal/telemetry"
	"pagecomposer/internal/version"
)

// exitFn is replaced in tests.
var exitFn = os.Exit

// Session describes what is being edited when a panic happens. All fields
// are optional.
type Session struct {
	// State returns the live design; it is saved to Store.
	State     func() model.Design
	Store     storage.Store
	ReportDir string
	Telemetry *telemetry.Client
}

// Recover must be deferred directly: defer crash.Recover(s).
func Recover(s *Session) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	saved := autosave(s, l)
	reportPath, err := writeReport(s, r, stack, saved)
	if err != nil {
		l.Error("crash report not written", slog.String("path", reportPath), slog.Any("err", err))
	}
	_, _ = fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	_, _ = fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// autosave writes the live design to the session store. A panic while
// reading the design is contained.
func autosave(s *Session, l *slog.Logger) (ok bool) {
	if s == nil || s.State == nil || s.Store == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			l.Error("design unreadable during crash", slog.Any("panic", r))
			ok = false
		}
	}()
	if err := s.Store.Save(s.State()); err != nil {
		l.Error("crash autosave failed", slog.Any("err", err))
		return false
	}
	l.Info("crash autosave written")
	return true
}

func writeReport(s *Session, panicVal any, stack []byte, saved bool) (string, error) {
	dir := os.TempDir()
	if s != nil && s.ReportDir != "" {
		dir = s.ReportDir
		_ = os.MkdirAll(dir, 0o755)
	}
	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "pagecomposer crash report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if s != nil && s.Store != nil {
		fmt.Fprintf(&buf, "Store: %T\n", s.Store)
		fmt.Fprintf(&buf, "Autosaved: %t\n", saved)
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	if s != nil && s.Telemetry != nil {
		s.Telemetry.UploadCrash(buf.Bytes())
	}
	return path, nil
}
