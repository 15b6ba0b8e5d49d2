/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"pagecomposer/internal/geometry"
	"pagecomposer/internal/interact"
	"pagecomposer/internal/surface"
)

// DropEvent is a palette item released over the canvas. Target is the
// element under the pointer, if any.
type DropEvent struct {
	Type     string
	Settings string
	Pointer  geometry.Pt
	Target   *surface.Element
}

// Uploader resolves an image for a component and returns its source URL.
// It may block; the component stays pending until it returns.
type Uploader func(ctx context.Context) (string, error)

// DragOver moves the drop preview to the quantized pointer position.
func (c *Canvas) DragOver(pointer geometry.Pt) geometry.Pt { return c.grid.ShowPreview(pointer) }

// DragLeave hides the drop preview.
func (c *Canvas) DragLeave() { c.grid.HidePreview() }

// OnDrop creates a component from a palette drop on the canvas. Drops on or
// inside a container are left to the container and return nil.
func (c *Canvas) OnDrop(ev DropEvent) *surface.Element {
	l := c.log.With(slog.String("op", "drop"), slog.String("type", ev.Type))
	c.grid.HidePreview()
	if ev.Target != nil && ev.Target.Closest(isContainer) != nil {
		l.Debug("drop inside container ignored")
		return nil
	}
	settings := ev.Settings
	if settings == "" {
		if p, ok := c.palette[ev.Type]; ok {
			settings = p.DefaultSettings
		}
	}
	anchor := c.grid.Quantize(ev.Pointer)
	el := c.create(ev.Type, settings, "", "", "")
	if el == nil {
		return nil
	}
	if c.opts.Layout == LayoutAbsolute {
		if containerTypes[ev.Type] {
			el.Box.Y = anchor.Y
		} else {
			el.Box.X, el.Box.Y = anchor.X, anchor.Y
		}
		position(el)
	}
	c.wireDrag(el)
	c.surf.Root().AppendChild(el)
	c.components = append(c.components, el)
	l.Info("component dropped", slog.String("id", el.ID()), slog.Float64("x", el.Box.X), slog.Float64("y", el.Box.Y))
	c.commit(ReasonDrop)
	return el
}

// Add appends a component created with CreateComponent at the end of the
// collection. In absolute mode it is placed at its current box.
func (c *Canvas) Add(el *surface.Element) error {
	if el == nil || !isComponent(el) {
		return ErrUnknownComponent
	}
	if c.indexOf(el) >= 0 {
		return fmt.Errorf("component %s already placed", el.ID())
	}
	if c.opts.Layout == LayoutAbsolute {
		position(el)
	}
	c.wireDrag(el)
	c.surf.Root().AppendChild(el)
	c.components = append(c.components, el)
	c.commit(ReasonCreate)
	return nil
}

// DropInto creates a component inside a container. Column layouts receive
// it in the column under ev.Target, else in their first column. The new id
// is scoped by the container id.
func (c *Canvas) DropInto(containerID string, ev DropEvent) (*surface.Element, error) {
	owner, ok := c.Component(containerID)
	if !ok || !isContainer(owner) {
		return nil, fmt.Errorf("%w: container %q", ErrUnknownComponent, containerID)
	}
	zone := owner
	if typeOf(owner) != TypeContainer {
		cols := owner.FindAll(func(x *surface.Element) bool { return x.HasClass(ClassColumn) })
		if len(cols) == 0 {
			return nil, fmt.Errorf("container %q has no columns", containerID)
		}
		zone = cols[0]
		if ev.Target != nil {
			if col := ev.Target.Closest(func(x *surface.Element) bool { return x.HasClass(ClassColumn) }); col != nil && owner.Contains(col) {
				zone = col
			}
		}
	}
	settings := ev.Settings
	if settings == "" {
		settings = c.palette[ev.Type].DefaultSettings
	}
	el := c.create(ev.Type, settings, "", containerID, "")
	if el == nil {
		return nil, fmt.Errorf("%w: type %q", ErrUnknownComponent, ev.Type)
	}
	if c.opts.Layout == LayoutAbsolute {
		zb := c.surf.BoundsOf(zone)
		local := ev.Pointer.Sub(c.surf.ClientBounds().Min()).Add(c.surf.Scroll).Sub(zb.Min())
		el.Box.X = math.Max(0, local.X)
		el.Box.Y = math.Max(0, local.Y)
		position(el)
	}
	el.SetStyle("width", surface.Px(el.Box.W))
	el.SetStyle("height", surface.Px(el.Box.H))
	zone.AppendChild(el)
	c.commit(ReasonDrop)
	return el, nil
}

// position writes an absolute placement into the inline style.
func position(el *surface.Element) {
	el.SetStyle("position", "absolute")
	el.SetStyle("left", surface.Px(el.Box.X))
	el.SetStyle("top", surface.Px(el.Box.Y))
}

// wireDrag marks el draggable in absolute mode; grid placement is not draggable.
func (c *Canvas) wireDrag(el *surface.Element) {
	if c.opts.Editable && c.opts.Layout == LayoutAbsolute {
		el.SetAttr("draggable", "true")
		return
	}
	el.RemoveAttr("draggable")
}

// Reorder moves the component at from to index to. Out-of-range indices
// are logged and ignored.
func (c *Canvas) Reorder(from, to int) bool {
	n := len(c.components)
	if from < 0 || from >= n || to < 0 || to >= n {
		c.log.Warn("reorder out of range", slog.Int("from", from), slog.Int("to", to), slog.Int("len", n))
		return false
	}
	if from == to {
		return true
	}
	el := c.components[from]
	rest := append(c.components[:from:from], c.components[from+1:]...)
	out := make([]*surface.Element, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, el)
	out = append(out, rest[to:]...)
	c.components = out
	c.rerender()
	c.commit(ReasonReorder)
	return true
}

// rerender re-appends the components to the canvas in collection order.
func (c *Canvas) rerender() {
	root := c.surf.Root()
	for _, el := range c.components {
		el.Remove()
	}
	for _, el := range c.components {
		root.AppendChild(el)
	}
}

// Select marks a component selected, deselecting any other. Selection is
// only available on editable canvases.
func (c *Canvas) Select(id string) error {
	el, ok := c.Component(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, id)
	}
	if !c.opts.Editable {
		return errors.New("canvas is read-only")
	}
	c.Deselect()
	el.AddClass(surface.ClassSelected)
	c.selected = el
	return nil
}

// Deselect clears the selection.
func (c *Canvas) Deselect() {
	if c.selected != nil {
		c.selected.RemoveClass(surface.ClassSelected)
		c.selected = nil
	}
}

// DeleteSelected removes the selected component.
func (c *Canvas) DeleteSelected() error {
	if c.selected == nil {
		return errors.New("nothing selected")
	}
	return c.Delete(c.selected.ID())
}

// Delete removes a component, nested ones included.
func (c *Canvas) Delete(id string) error {
	el, ok := c.Component(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, id)
	}
	if c.ctrl.Target() != nil && el.Contains(c.ctrl.Target()) {
		c.ctrl.Cancel()
	}
	if c.selected != nil && el.Contains(c.selected) {
		c.selected = nil
	}
	c.surf.Unobserve(el)
	if i := c.indexOf(el); i >= 0 {
		c.components = append(c.components[:i], c.components[i+1:]...)
	}
	el.Remove()
	c.commit(ReasonDelete)
	return nil
}

// SetContent replaces the inner content of a non-custom component.
func (c *Canvas) SetContent(id, markup string) error {
	el, ok := c.Component(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, id)
	}
	if isCustom(el) {
		return fmt.Errorf("component %q is custom; it carries props, not content", id)
	}
	if err := el.SetInnerHTML(c.sanitize(markup)); err != nil {
		return err
	}
	typ := typeOf(el)
	if c.opts.Editable {
		c.attachAffordances(el, typ)
		c.decorate(el, typ)
	}
	c.commit(ReasonEdit)
	return nil
}

// SetCanvasStyle sets one inline declaration on the canvas root.
func (c *Canvas) SetCanvasStyle(prop, value string) {
	c.surf.Root().SetStyle(prop, value)
	c.commit(ReasonEdit)
}

// ClearCanvas removes every component, the persisted design and the history.
func (c *Canvas) ClearCanvas() error {
	c.ctrl.Cancel()
	c.clearComponents()
	c.hist.Clear()
	var err error
	if c.store != nil {
		if err = c.store.Remove(); err != nil {
			c.log.Error("clear persisted design", slog.Any("err", err))
		}
	}
	c.notify(ReasonClear)
	return err
}

// LoadFromStore restores the persisted design, if any, without recording
// history. An invalid stored design is reported and leaves the canvas as is.
func (c *Canvas) LoadFromStore() error {
	if c.store == nil {
		return nil
	}
	d, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("load design: %w", err)
	}
	if d == nil {
		return nil
	}
	c.RestoreState(d)
	c.notify(ReasonLoad)
	return nil
}

// Undo steps back one action.
func (c *Canvas) Undo() bool {
	if !c.hist.Undo() {
		return false
	}
	c.notify(ReasonUndo)
	return true
}

// Redo re-applies the last undone action.
func (c *Canvas) Redo() bool {
	if !c.hist.Redo() {
		return false
	}
	c.notify(ReasonRedo)
	return true
}

// AttachImage marks an image component pending, waits for up and sets the
// resolved source. Without a result the component stays pending.
func (c *Canvas) AttachImage(ctx context.Context, id string, up Uploader) error {
	el, ok := c.Component(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownComponent, id)
	}
	img := el.FirstByTag("img")
	if img == nil {
		return fmt.Errorf("component %q has no image", id)
	}
	el.AddClass(surface.ClassPending)
	src, err := up(ctx)
	if err != nil {
		el.RemoveClass(surface.ClassPending)
		c.log.Warn("image upload failed", slog.String("id", id), slog.Any("err", err))
		return fmt.Errorf("upload image: %w", err)
	}
	img.SetAttr("src", src)
	el.RemoveClass(surface.ClassPending)
	c.commit(ReasonImage)
	return nil
}

// StartDrag begins moving a component. Only absolute layouts are draggable.
func (c *Canvas) StartDrag(id string, pointer geometry.Pt) bool {
	el, ok := c.Component(id)
	if !ok || !c.opts.Editable || c.opts.Layout != LayoutAbsolute {
		return false
	}
	siblings := c.components
	if p := el.Parent(); p != nil && p != c.surf.Root() {
		siblings = siblings[:0:0]
		for _, s := range p.ElementChildren() {
			if isComponent(s) {
				siblings = append(siblings, s)
			}
		}
	}
	return c.ctrl.BeginMove(el, pointer, siblings)
}

// StartResize begins a corner resize. Containers use the unclamped variant.
func (c *Canvas) StartResize(id string, corner interact.Corner, pointer geometry.Pt) bool {
	el, ok := c.Component(id)
	if !ok || !c.opts.Editable || !el.HasClass(surface.ClassResizable) {
		return false
	}
	if isContainer(el) {
		return c.ctrl.BeginContainerResize(el, corner, pointer)
	}
	return c.ctrl.BeginResize(el, corner, pointer)
}

// PointerMove feeds the active gesture.
func (c *Canvas) PointerMove(pointer geometry.Pt) { c.ctrl.Move(pointer) }

// PointerUp ends the active gesture; a change is captured and announced.
func (c *Canvas) PointerUp() { c.ctrl.End() }

// CancelGesture abandons the active gesture.
func (c *Canvas) CancelGesture() { c.ctrl.Cancel() }
