package state

import (
	"CollabBoard/internal/draw"
	"CollabBoard/internal/geom"
)

// Selection returns the selected events in selection order.
func (w *Whiteboard) Selection() []draw.Event {
	return cloneEvents(w.history.resolve(w.selection.ids()))
}

// SelectedIDs returns the selected ids in selection order.
func (w *Whiteboard) SelectedIDs() []string {
	return w.selection.ids()
}

// AddSelection selects the given ids. Ids missing from history are
// ignored. It reports whether the selection changed.
func (w *Whiteboard) AddSelection(ids []string) bool {
	changed := false
	for _, id := range ids {
		if w.history.has(id) && w.selection.add(id) {
			changed = true
		}
	}
	return w.selectionChanged(changed)
}

// RemoveSelection unselects the given ids.
func (w *Whiteboard) RemoveSelection(ids []string) bool {
	changed := false
	for _, id := range ids {
		if w.selection.delete(id) {
			changed = true
		}
	}
	return w.selectionChanged(changed)
}

// ClearSelection unselects everything.
func (w *Whiteboard) ClearSelection() bool {
	if w.selection.len() == 0 {
		return false
	}
	w.selection.clear()
	return w.selectionChanged(true)
}

// SelectOne replaces the selection by a single id taken from ids, the
// events found under the pointer. Repeated calls with the same ids cycle
// through them.
func (w *Whiteboard) SelectOne(ids []string) bool {
	ids = w.knownIDs(ids)
	if len(ids) == 0 || (len(ids) == 1 && w.selection.has(ids[0])) {
		return false
	}

	last := -1
	for i, id := range ids {
		if w.selection.has(id) {
			last = i
		}
	}
	w.selection.clear()
	w.selection.add(ids[(last+1)%len(ids)])
	return w.selectionChanged(true)
}

// TranslateSelection moves the selected events locally, without sending
// anything. Used while a translate gesture is in progress.
func (w *Whiteboard) TranslateSelection(dx, dy float64) {
	w.transform(w.history.resolve(w.selection.ids()), func(e draw.Event) draw.Event {
		return draw.Translate(e, dx, dy)
	})
}

// EmitTranslatedSelection sends the translation of the whole gesture.
func (w *Whiteboard) EmitTranslatedSelection(dx, dy float64) {
	w.emit(draw.TranslateTransport(w.selection.ids(), dx, dy))
}

// ResizeSelection scales the selected events locally. The first call of a
// gesture snapshots their data; every later call scales that snapshot.
func (w *Whiteboard) ResizeSelection(origin, scale geom.Point) {
	w.transform(w.history.resolve(w.selection.ids()), func(e draw.Event) draw.Event {
		return draw.Resize(draw.DefineSnapshot(e), origin, scale)
	})
}

// EmitResizedSelection ends a resize gesture and sends it.
func (w *Whiteboard) EmitResizedSelection(origin, scale geom.Point) {
	for _, e := range w.history.resolve(w.selection.ids()) {
		w.history.set(draw.DeleteSnapshot(e))
	}
	w.emit(draw.ResizeTransport(w.selection.ids(), origin, scale))
}

// checkSelection drops selected ids that left history.
func (w *Whiteboard) checkSelection() {
	stale := false
	for _, id := range w.selection.ids() {
		if !w.history.has(id) {
			w.selection.delete(id)
			stale = true
		}
	}
	if stale {
		w.emitSelection()
	}
}

func (w *Whiteboard) selectionChanged(changed bool) bool {
	if !changed {
		return false
	}
	w.emitSelection()
	w.Redraw(false)
	return true
}

func (w *Whiteboard) emitSelection() {
	if w.OnSelection != nil {
		w.OnSelection(w.Selection())
	}
}

func (w *Whiteboard) knownIDs(ids []string) []string {
	var result []string
	for _, id := range ids {
		if w.history.has(id) {
			result = append(result, id)
		}
	}
	return result
}
