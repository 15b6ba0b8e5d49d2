/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history keeps the bounded undo and redo stacks of canvas designs.
package history

import (
	"log/slog"
	"sync"
	"time"

	applog "pagecomposer/internal/log"
	"pagecomposer/internal/model"
)

// DefaultMaxDepth bounds the undo stack.
const DefaultMaxDepth = 20

// Canvas is the live state being recorded.
type Canvas interface {
	GetState() model.Design
	RestoreState(model.Design)
}

// Loader supplies the last persisted design; a nil design means none.
type Loader interface {
	Load() (model.Design, error)
}

// Snapshot is an independently owned copy of a design.
type Snapshot struct {
	Design model.Design
	TS     time.Time
}

type Config struct {
	// MaxDepth caps the undo stack; the oldest entry is evicted first.
	MaxDepth int
}

// Manager records designs after each discrete action and replays them.
// It is safe for concurrent use; restores run outside the lock.
type Manager struct {
	cfg    Config
	canvas Canvas
	store  Loader
	log    *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	undo []Snapshot
	redo []Snapshot
}

// NewManager returns a manager for c. store may be nil.
func NewManager(c Canvas, store Loader, cfg Config) *Manager {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return &Manager{cfg: cfg, canvas: c, store: store, log: applog.WithComponent("history"), now: time.Now}
}

// Capture snapshots the current design. Empty designs and designs equal to
// the top entry are ignored. It reports whether an entry was pushed.
func (m *Manager) Capture() bool {
	d := m.canvas.GetState()
	if len(d) == 0 {
		m.log.Warn("capture skipped: empty design")
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.undo); n > 0 && m.undo[n-1].Design.Equal(d) {
		return false
	}
	m.redo = nil
	m.undo = append(m.undo, Snapshot{Design: d.Clone(), TS: m.now()})
	if over := len(m.undo) - m.cfg.MaxDepth; over > 0 {
		m.undo = append([]Snapshot(nil), m.undo[over:]...)
	}
	m.log.Debug("captured", slog.Int("depth", len(m.undo)), slog.Int("components", len(d.Components())))
	return true
}

// Undo restores the previous entry. Undoing the only entry restores the
// persisted design, or an empty one when nothing is persisted.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	n := len(m.undo)
	if n == 0 {
		m.mu.Unlock()
		m.log.Info("undo: nothing to undo")
		return false
	}
	top := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.redo = append(m.redo, top)
	var target model.Design
	fromStore := n == 1
	if !fromStore {
		target = m.undo[n-2].Design.Clone()
	}
	m.mu.Unlock()

	if fromStore {
		target = m.persisted()
	}
	m.canvas.RestoreState(target)
	m.log.Debug("undo", slog.Bool("from_store", fromStore), slog.Int("depth", n-1))
	return true
}

// Redo re-applies the most recently undone entry.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	n := len(m.redo)
	if n == 0 {
		m.mu.Unlock()
		m.log.Info("redo: nothing to redo")
		return false
	}
	s := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, s)
	target := s.Design.Clone()
	m.mu.Unlock()

	m.canvas.RestoreState(target)
	return true
}

func (m *Manager) persisted() model.Design {
	if m.store == nil {
		return model.Design{}
	}
	d, err := m.store.Load()
	if err != nil {
		m.log.Warn("undo: load persisted design", slog.Any("err", err))
		return model.Design{}
	}
	if d == nil {
		return model.Design{}
	}
	return d
}

// CanUndo reports whether Undo would restore anything.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

// CanRedo reports whether Redo would restore anything.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Stats returns the current stack depths.
func (m *Manager) Stats() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}

// Top returns a copy of the most recent undo entry.
func (m *Manager) Top() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return Snapshot{}, false
	}
	s := m.undo[len(m.undo)-1]
	return Snapshot{Design: s.Design.Clone(), TS: s.TS}, true
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
}
