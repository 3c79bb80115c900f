package state

import "CollabBoard/internal/draw"

// history is an insertion-ordered map from event id to event. Replacing an
// existing id keeps its position.
type history struct {
	order  []string
	events map[string]draw.Event
}

func newHistory() *history {
	return &history{events: make(map[string]draw.Event)}
}

func (h *history) set(e draw.Event) {
	if _, ok := h.events[e.ID]; !ok {
		h.order = append(h.order, e.ID)
	}
	h.events[e.ID] = e
}

func (h *history) get(id string) (draw.Event, bool) {
	e, ok := h.events[id]
	return e, ok
}

func (h *history) has(id string) bool {
	_, ok := h.events[id]
	return ok
}

func (h *history) delete(id string) bool {
	if _, ok := h.events[id]; !ok {
		return false
	}
	delete(h.events, id)
	for i, key := range h.order {
		if key == id {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
	return true
}

func (h *history) len() int {
	return len(h.order)
}

// list returns the events in insertion order.
func (h *history) list() []draw.Event {
	result := make([]draw.Event, len(h.order))
	for i, id := range h.order {
		result[i] = h.events[id]
	}
	return result
}

// lastOf returns the most recently inserted event of owner.
func (h *history) lastOf(owner draw.Owner) (draw.Event, bool) {
	for i := len(h.order) - 1; i >= 0; i-- {
		if e := h.events[h.order[i]]; e.Owner == owner {
			return e, true
		}
	}
	return draw.Event{}, false
}

// resolve returns the events found for ids, skipping unknown ones.
func (h *history) resolve(ids []string) []draw.Event {
	var result []draw.Event
	for _, id := range ids {
		if e, ok := h.events[id]; ok {
			result = append(result, e)
		}
	}
	return result
}

// idSet is an insertion-ordered set of ids.
type idSet struct {
	order []string
	index map[string]struct{}
}

func newIDSet() *idSet {
	return &idSet{index: make(map[string]struct{})}
}

func (s *idSet) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *idSet) add(id string) bool {
	if s.has(id) {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *idSet) delete(id string) bool {
	if !s.has(id) {
		return false
	}
	delete(s.index, id)
	for i, key := range s.order {
		if key == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *idSet) clear() {
	s.order = nil
	s.index = make(map[string]struct{})
}

func (s *idSet) len() int {
	return len(s.order)
}

func (s *idSet) ids() []string {
	return append([]string(nil), s.order...)
}
