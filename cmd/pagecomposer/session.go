/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"pagecomposer/internal/canvas"
	"pagecomposer/internal/config"
	"pagecomposer/internal/crash"
	"pagecomposer/internal/grid"
	applog "pagecomposer/internal/log"
	"pagecomposer/internal/model"
	"pagecomposer/internal/storage"
	"pagecomposer/internal/telemetry"
)

// session is one CLI invocation's canvas, loaded from the configured store
// or from a design file.
type session struct {
	cfg    config.AppConfig
	store  storage.Store
	canvas *canvas.Canvas
	tel    *telemetry.Client
	log    *slog.Logger
}

func canvasOptions(e config.EditorConfig) canvas.Options {
	return canvas.Options{
		Editable:      e.Editable,
		Layout:        canvas.Layout(e.LayoutMode),
		Width:         e.CanvasWidth,
		Height:        e.CanvasHeight,
		Grid:          grid.Options{GridSize: e.GridSize, CellSize: e.CellSize, Padding: e.Padding},
		SnapThreshold: e.SnapThreshold,
		MinSize:       e.MinSize,
		HistoryDepth:  e.HistoryDepth,
		Sanitize:      e.SanitizeContent,
	}
}

// openSession opens the store and restores its design. designFile, when
// set, replaces the stored design for this run without being saved.
func openSession(cfg config.AppConfig, designFile string, crashSess *crash.Session) (*session, error) {
	l := applog.WithComponent("cli")
	st, err := storage.Open(storage.Options{Backend: cfg.Storage.Backend, Path: cfg.Storage.Path, Key: cfg.Storage.Key})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s := &session{cfg: cfg, store: st, tel: telemetry.Default(), log: l}

	if designFile != "" {
		d, err := readDesign(designFile)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.canvas = canvas.New(canvasOptions(cfg.Editor), nil)
		s.canvas.RestoreState(d)
	} else {
		s.canvas = canvas.New(canvasOptions(cfg.Editor), st)
		if err := s.canvas.LoadFromStore(); err != nil {
			// An unreadable design is treated as absent.
			l.Warn("stored design ignored", slog.Any("err", err))
		}
	}
	s.canvas.Subscribe(func(ev canvas.DesignChanged) { s.tel.DesignChanged(string(ev.Reason), ev.Design) })

	if crashSess != nil {
		crashSess.State = s.canvas.GetState
		crashSess.Store = st
		crashSess.Telemetry = s.tel
	}
	l.Debug("session open", slog.String("backend", cfg.Storage.Backend), slog.String("path", cfg.Storage.Path), slog.Int("components", s.canvas.Len()))
	return s, nil
}

func (s *session) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.tel.Flush(ctx)
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			s.log.Warn("close store", slog.Any("err", err))
		}
	}
}

func readDesign(path string) (model.Design, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read design: %w", err)
	}
	if err := storage.ValidateDesign(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d, err := model.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(d) == 0 {
		return nil, errors.New(path + ": empty design")
	}
	return d, nil
}
