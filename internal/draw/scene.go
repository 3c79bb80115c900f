package draw

import "CollabBoard/internal/geom"

// SelectionShift is the gap between a shape and its selection outline.
const SelectionShift = 3

// Background describes the surface behind the drawing.
type Background struct {
	Transparent bool    `json:"transparent"`
	Color       string  `json:"color"`
	Opacity     float64 `json:"opacity"`
}

// DefaultBackground is an opaque white surface.
func DefaultBackground() Background {
	return Background{Opacity: 1}
}

// ClearEvent erases the whole surface.
func ClearEvent(ids IDGenerator, owner Owner) Event {
	return New(ids, owner, TypeClear, make([]float64, 4), Options{})
}

// BackgroundEvent fills the whole surface with color.
func BackgroundEvent(ids IDGenerator, owner Owner, color string, opacity float64) Event {
	return New(ids, owner, TypeBackground, make([]float64, 4), Options{
		Color:       color,
		FillOpacity: opacity,
	})
}

// BackgroundEvents returns the fills painting bg: white unless transparent,
// then the background color when one is set.
func BackgroundEvents(ids IDGenerator, owner Owner, bg Background) []Event {
	var events []Event
	if !bg.Transparent {
		events = append(events, BackgroundEvent(ids, owner, "255, 255, 255", 1))
	}
	if bg.Color != "" {
		events = append(events, BackgroundEvent(ids, owner, bg.Color, bg.Opacity))
	}
	return events
}

// SelectionEvents returns the outlines of a selection: one selection event
// per shape when several are selected, then a single bounding selection
// covering all of them.
func SelectionEvents(ids IDGenerator, owner Owner, events []Event) []Event {
	if len(events) == 0 {
		return nil
	}

	var result []Event
	if len(events) > 1 {
		for _, e := range events {
			outline := e.Clone()
			outline.Type = TypeSelection
			result = append(result, outline)
		}
	}

	data := make([][]float64, len(events))
	for i, e := range events {
		data[i] = e.Data
	}
	box, _ := geom.Bounds(data...)

	return append(result, New(ids, owner, TypeBoundingSelection, box.Data(), Options{
		LineWidth: MaxLineWidth(events) + 2*SelectionShift,
		Color:     "0, 0, 0",
	}))
}

// Broadcast is a set of resolved events ready to paint.
type Broadcast struct {
	Events  []Event `json:"events"`
	Animate bool    `json:"animate"`
}
