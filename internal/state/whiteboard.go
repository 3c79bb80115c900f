// Package state holds the event-sourced document of one whiteboard session:
// the history of visible events, the redo batches of the local owner and
// the local selection.
package state

import (
	"errors"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/logging"
)

// Whiteboard is the document of one session seen by one owner.
//
// A Whiteboard is not safe for concurrent use. Every call, local or
// received from the transport, must come from the same goroutine.
type Whiteboard struct {
	owner      draw.Owner
	mode       draw.Mode
	background draw.Background

	ids    draw.IDGenerator
	base   logging.Logger
	logger logging.Logger

	history   *history
	redo      [][]draw.Event // newest batch first
	selection *idSet

	// OnBroadcast receives the events to paint locally.
	OnBroadcast func(b draw.Broadcast)
	// OnEmit receives the transports to send to other participants.
	OnEmit func(t draw.Transport)
	// OnHistory is called with the full history after every change.
	OnHistory func(events []draw.Event)
	// OnSelection is called with the selected events after every change.
	OnSelection func(events []draw.Event)
}

// NewWhiteboard creates an empty document for owner. A nil ids falls back
// to xids and a nil logger to the default logger.
func NewWhiteboard(owner draw.Owner, ids draw.IDGenerator, logger logging.Logger) *Whiteboard {
	if ids == nil {
		ids = draw.XIDGenerator{}
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Whiteboard{
		owner:      owner,
		mode:       draw.DefaultMode,
		background: draw.DefaultBackground(),
		ids:        ids,
		base:       logger,
		logger:     logging.WithOwner(logger, string(owner)),
		history:    newHistory(),
		selection:  newIDSet(),
	}
}

// Owner returns the local owner.
func (w *Whiteboard) Owner() draw.Owner {
	return w.owner
}

// SetOwner changes the local owner.
func (w *Whiteboard) SetOwner(owner draw.Owner) {
	w.owner = owner
	w.logger = logging.WithOwner(w.base, string(owner))
}

// IDs returns the generator used to stamp new events.
func (w *Whiteboard) IDs() draw.IDGenerator {
	return w.ids
}

// DrawMode returns the active tool.
func (w *Whiteboard) DrawMode() draw.Mode {
	return w.mode
}

// SetDrawMode changes the active tool. Leaving the selection mode clears
// the selection.
func (w *Whiteboard) SetDrawMode(mode draw.Mode) {
	if w.mode == draw.ModeSelection && mode != draw.ModeSelection {
		w.ClearSelection()
	}
	w.mode = mode
}

// Background returns the current background.
func (w *Whiteboard) Background() draw.Background {
	return w.background
}

// SetBackground replaces the background, repaints and sends it.
func (w *Whiteboard) SetBackground(bg draw.Background) {
	w.background = bg
	w.emit(draw.BackgroundTransport(bg))
	w.Redraw(false)
}

// History returns the visible events in insertion order.
func (w *Whiteboard) History() []draw.Event {
	return cloneEvents(w.history.list())
}

// OwnerHistory returns the visible events of the local owner.
func (w *Whiteboard) OwnerHistory() []draw.Event {
	return w.ownerEvents(w.History())
}

// RedoStack returns the redo batches, newest first.
func (w *Whiteboard) RedoStack() [][]draw.Event {
	result := make([][]draw.Event, len(w.redo))
	for i, batch := range w.redo {
		result[i] = cloneEvents(batch)
	}
	return result
}

// Emit commits an event drawn by the local owner and sends it. The event
// is stamped with the local owner so that Undo can reach it.
func (w *Whiteboard) Emit(e draw.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	e = draw.DeleteSnapshot(e)
	e.Owner = w.owner
	w.history.set(e)
	w.dropRedoAgainst([]draw.Event{e})
	w.emitHistory()
	w.Redraw(false)
	w.emit(draw.AddTransport([]draw.Event{e.Clone()}))
	return nil
}

// Receive applies a transport sent by another participant. Malformed
// content is logged and dropped without touching the document; the
// returned error only reports what was dropped.
func (w *Whiteboard) Receive(t draw.Transport) error {
	if err := t.Validate(); err != nil {
		w.logger.Warnf("drop transport: %v", err)
		return err
	}

	switch t.Action {
	case draw.ActionBackground:
		w.background = *t.Background
		w.Redraw(false)
	case draw.ActionAdd:
		events, errs := t.ValidEvents()
		for _, err := range errs {
			w.logger.Warnf("drop event: %v", err)
		}
		w.receiveAdd(events)
		return errors.Join(errs...)
	case draw.ActionRemove:
		w.receiveRemove(t.EventsID)
	case draw.ActionTranslate:
		w.transform(w.history.resolve(t.EventsID), func(e draw.Event) draw.Event {
			return draw.Translate(e, t.Translate[0], t.Translate[1])
		})
	case draw.ActionResize:
		w.transform(w.history.resolve(t.EventsID), func(e draw.Event) draw.Event {
			return draw.Resize(e, *t.Origin, *t.Scale)
		})
	}
	return nil
}

func (w *Whiteboard) receiveAdd(events []draw.Event) {
	if len(events) == 0 {
		return
	}
	events = withoutSnapshots(events)
	for _, e := range events {
		w.history.set(e)
	}
	if owned := w.ownerEvents(events); len(owned) > 0 {
		w.dropRedoAgainst(owned)
	}
	w.emitHistory()
	if w.OnBroadcast != nil {
		w.broadcast(draw.Broadcast{Events: cloneEvents(events), Animate: true})
	}
}

func (w *Whiteboard) receiveRemove(ids []string) {
	removed := w.pull(w.history.resolve(ids))
	if len(removed) == 0 {
		return
	}
	if owned := w.ownerEvents(removed); len(owned) > 0 {
		w.pushRedo(owned)
	}
	w.checkSelection()
	w.emitHistory()
	w.Redraw(false)
}

// Undo removes the latest event of the local owner.
func (w *Whiteboard) Undo() {
	e, ok := w.history.lastOf(w.owner)
	if !ok {
		return
	}
	w.history.delete(e.ID)
	w.pushRedo([]draw.Event{e})
	w.checkSelection()
	w.emitHistory()
	w.Redraw(false)
	w.emit(draw.RemoveTransport([]string{e.ID}))
}

// Redo restores the latest redo batch.
func (w *Whiteboard) Redo() {
	if len(w.redo) == 0 {
		return
	}
	batch := w.redo[0]
	w.redo = w.redo[1:]

	for _, e := range batch {
		w.history.set(e)
	}
	w.emitHistory()
	w.broadcast(draw.Broadcast{Events: cloneEvents(batch), Animate: true})
	w.emit(draw.AddTransport(cloneEvents(batch)))
}

// UndoAll removes every event of the local owner as one redo batch.
func (w *Whiteboard) UndoAll() {
	w.cut(w.ownerEvents(w.history.list()))
}

// CutSelection removes the selected events as one redo batch.
func (w *Whiteboard) CutSelection() {
	w.cut(w.history.resolve(w.selection.ids()))
}

func (w *Whiteboard) cut(events []draw.Event) {
	removed := w.pull(events)
	if len(removed) == 0 {
		return
	}
	w.pushRedo(removed)
	w.checkSelection()
	w.emitHistory()
	w.Redraw(false)

	ids := make([]string, len(removed))
	for i, e := range removed {
		ids[i] = e.ID
	}
	w.emit(draw.RemoveTransport(ids))
}

// Redraw broadcasts a full repaint: clear, background, history then
// selection outlines.
func (w *Whiteboard) Redraw(animate bool) {
	if w.OnBroadcast == nil {
		return
	}
	events := []draw.Event{draw.ClearEvent(w.ids, w.owner)}
	events = append(events, draw.BackgroundEvents(w.ids, w.owner, w.background)...)
	events = append(events, w.History()...)
	events = append(events, draw.SelectionEvents(w.ids, w.owner, w.Selection())...)
	w.broadcast(draw.Broadcast{Events: events, Animate: animate})
}

// SyncTransports returns the messages that bring a fresh participant up to
// date with this document.
func (w *Whiteboard) SyncTransports() []draw.Transport {
	result := []draw.Transport{draw.BackgroundTransport(w.background)}
	if w.history.len() > 0 {
		result = append(result, draw.AddTransport(w.History()))
	}
	return result
}

// dropRedoAgainst makes redo history unreachable past a new edit. Batches
// are consumed from the newest until one holds an event with the same id;
// the rest of that batch is discarded with it. A new id consumes the whole
// stack.
func (w *Whiteboard) dropRedoAgainst(events []draw.Event) {
	var pending []draw.Event
	for _, e := range events {
	scan:
		for len(pending) > 0 || len(w.redo) > 0 {
			if len(pending) == 0 {
				pending, w.redo = w.redo[0], w.redo[1:]
			}
			for len(pending) > 0 {
				redo := pending[0]
				pending = pending[1:]
				if redo.ID == e.ID {
					break scan
				}
			}
		}
	}
}

// pushRedo stores a batch without resize references, so that a redo in
// the middle of a resize restores and sends plain events.
func (w *Whiteboard) pushRedo(batch []draw.Event) {
	w.redo = append([][]draw.Event{withoutSnapshots(batch)}, w.redo...)
}

// pull deletes events from history and returns those that were present.
func (w *Whiteboard) pull(events []draw.Event) []draw.Event {
	var removed []draw.Event
	for _, e := range events {
		if w.history.delete(e.ID) {
			removed = append(removed, e)
		}
	}
	return removed
}

// transform replaces events in place and repaints.
func (w *Whiteboard) transform(events []draw.Event, fn func(draw.Event) draw.Event) {
	for _, e := range events {
		w.history.set(fn(e))
	}
	w.emitHistory()
	w.emitSelection()
	w.Redraw(false)
}

func (w *Whiteboard) ownerEvents(events []draw.Event) []draw.Event {
	var result []draw.Event
	for _, e := range events {
		if e.Owner == w.owner {
			result = append(result, e)
		}
	}
	return result
}

func (w *Whiteboard) broadcast(b draw.Broadcast) {
	if w.OnBroadcast != nil {
		w.OnBroadcast(b)
	}
}

func (w *Whiteboard) emit(t draw.Transport) {
	w.logger.Debugf("emit %s", t.Action)
	if w.OnEmit != nil {
		w.OnEmit(t)
	}
}

func (w *Whiteboard) emitHistory() {
	if w.OnHistory != nil {
		w.OnHistory(w.History())
	}
}

func withoutSnapshots(events []draw.Event) []draw.Event {
	result := make([]draw.Event, len(events))
	for i, e := range events {
		result[i] = draw.DeleteSnapshot(e)
	}
	return result
}

func cloneEvents(events []draw.Event) []draw.Event {
	if events == nil {
		return nil
	}
	result := make([]draw.Event, len(events))
	for i, e := range events {
		result[i] = e.Clone()
	}
	return result
}
