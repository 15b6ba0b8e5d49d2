/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"log/slog"

	"pagecomposer/internal/model"
	"pagecomposer/internal/surface"
)

// Reason names the action behind a design change.
type Reason string

const (
	ReasonCreate  Reason = "create"
	ReasonDrop    Reason = "drop"
	ReasonMove    Reason = "move"
	ReasonResize  Reason = "resize"
	ReasonResized Reason = "resized" // observed size change
	ReasonReorder Reason = "reorder"
	ReasonDelete  Reason = "delete"
	ReasonEdit    Reason = "edit"
	ReasonImage   Reason = "image"
	ReasonUndo    Reason = "undo"
	ReasonRedo    Reason = "redo"
	ReasonClear   Reason = "clear"
	ReasonLoad    Reason = "load"
)

// DesignChanged is delivered to observers after every change.
type DesignChanged struct {
	Design model.Design
	Reason Reason
}

// Observer receives design-changed messages in subscription order.
type Observer func(DesignChanged)

type observerEntry struct {
	id int
	fn Observer
}

// Subscribe registers fn and returns a function that removes it.
func (c *Canvas) Subscribe(fn Observer) (unsubscribe func()) {
	c.nextObs++
	id := c.nextObs
	c.observers = append(c.observers, observerEntry{id: id, fn: fn})
	return func() {
		for i, o := range c.observers {
			if o.id == id {
				c.observers = append(c.observers[:i:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

// notify serialises the current design once and hands it to every observer.
func (c *Canvas) notify(reason Reason) {
	if c.muted > 0 || len(c.observers) == 0 {
		return
	}
	msg := DesignChanged{Design: c.GetState(), Reason: reason}
	for _, o := range append([]observerEntry(nil), c.observers...) {
		o.fn(DesignChanged{Design: msg.Design.Clone(), Reason: msg.Reason})
	}
}

// commit records a finished action: history first, then observers.
func (c *Canvas) commit(reason Reason) {
	c.hist.Capture()
	c.notify(reason)
}

func (c *Canvas) commitGesture(el *surface.Element, reason string) {
	c.log.Debug("gesture committed", slog.String("id", el.ID()), slog.String("reason", reason))
	c.commit(Reason(reason))
}

// persist is the built-in observer writing every change to the store.
// Clearing removes the slot instead.
func (c *Canvas) persist(ev DesignChanged) {
	if ev.Reason == ReasonClear {
		return
	}
	if err := c.store.Save(ev.Design); err != nil {
		c.log.Error("persist design", slog.String("reason", string(ev.Reason)), slog.Any("err", err))
	}
}

// mute suppresses notifications until the returned func runs. Used while
// restoring, where size observers would otherwise fire per component.
func (c *Canvas) mute() func() {
	c.muted++
	return func() { c.muted-- }
}
