// Package draw defines the draw event vocabulary exchanged by whiteboard
// participants, and the transport messages that carry it.
package draw

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"CollabBoard/internal/geom"
)

var (
	// ErrUnknownType is returned when an event carries a type outside the
	// known vocabulary.
	ErrUnknownType = errors.New("unknown draw event type")

	// ErrOddData is returned when an event payload is not made of x,y pairs
	// or is too short for its type.
	ErrOddData = errors.New("malformed draw event data")

	// ErrMissingID is returned when an event has no id.
	ErrMissingID = errors.New("draw event without id")
)

// Owner identifies the participant who authored an event.
type Owner string

// NewOwner returns a random owner identity.
func NewOwner() Owner {
	return Owner(uuid.NewString())
}

// UnmarshalJSON accepts both string and numeric owners. Numbers keep their
// decimal text so that equality stays by value.
func (o *Owner) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*o = Owner(s)
		return nil
	}

	text := string(b)
	if text == "null" {
		*o = ""
		return nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return fmt.Errorf("decode owner %s: %w", b, err)
	}
	if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
		text = strconv.FormatInt(int64(f), 10)
	}
	*o = Owner(text)
	return nil
}

// Type is the discriminant of a draw event.
type Type string

// The closed set of draw event types.
const (
	TypePoint             Type = "point"
	TypeLine              Type = "line"
	TypeLineSerie         Type = "lineSerie"
	TypeRectangle         Type = "rectangle"
	TypeEllipse           Type = "ellipse"
	TypeBackground        Type = "background"
	TypeClear             Type = "clear"
	TypeSelection         Type = "selection"
	TypeBoundingSelection Type = "boundingSelection"
)

// minDataLen returns the shortest payload accepted for the type.
func (t Type) minDataLen() (int, bool) {
	switch t {
	case TypePoint, TypeSelection:
		return 2, true
	case TypeLine, TypeLineSerie, TypeRectangle, TypeEllipse,
		TypeBackground, TypeClear, TypeBoundingSelection:
		return 4, true
	default:
		return 0, false
	}
}

// Valid reports whether t belongs to the vocabulary.
func (t Type) Valid() bool {
	_, ok := t.minDataLen()
	return ok
}

// InferType maps a coordinate count to the shape it describes:
// 2 is a point, 4 a line, anything else a line serie.
func InferType(n int) Type {
	switch n {
	case 2:
		return TypePoint
	case 4:
		return TypeLine
	default:
		return TypeLineSerie
	}
}

// Event is a single draw operation.
type Event struct {
	ID           string    `json:"id"`
	Owner        Owner     `json:"owner"`
	Type         Type      `json:"type"`
	Options      Options   `json:"options"`
	Data         []float64 `json:"data"`
	DataSnapshot []float64 `json:"dataSnapshot,omitempty"`
}

// New stamps a fresh id on a new event. Data and options are copied.
func New(ids IDGenerator, owner Owner, t Type, data []float64, options Options) Event {
	return Event{
		ID:      ids.NextID(),
		Owner:   owner,
		Type:    t,
		Options: options.Clone(),
		Data:    cloneData(data),
	}
}

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	e.Options = e.Options.Clone()
	e.Data = cloneData(e.Data)
	e.DataSnapshot = cloneData(e.DataSnapshot)
	return e
}

// Validate checks the event is well formed.
func (e Event) Validate() error {
	if e.ID == "" {
		return ErrMissingID
	}
	min, ok := e.Type.minDataLen()
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownType, e.Type)
	}
	if len(e.Data)%2 != 0 || len(e.Data) < min {
		return fmt.Errorf("%w: %s %s has %d values", ErrOddData, e.Type, e.ID, len(e.Data))
	}
	return nil
}

// Bounds returns the envelope of the event data.
func (e Event) Bounds() (geom.Line, bool) {
	return geom.Bounds(e.Data)
}

// Translate returns a copy of the event moved by (dx, dy). The id is kept.
func Translate(e Event, dx, dy float64) Event {
	moved := e.Clone()
	moved.Data = geom.Translate(e.Data, dx, dy)
	return moved
}

// TranslateAll translates every event of the list.
func TranslateAll(events []Event, dx, dy float64) []Event {
	result := make([]Event, len(events))
	for i, e := range events {
		result[i] = Translate(e, dx, dy)
	}
	return result
}

// DefineSnapshot returns a copy of the event holding its current data as
// the resize reference. An existing snapshot is kept.
func DefineSnapshot(e Event) Event {
	snap := e.Clone()
	if snap.DataSnapshot == nil {
		snap.DataSnapshot = cloneData(e.Data)
	}
	return snap
}

// DeleteSnapshot returns a copy of the event without resize reference.
func DeleteSnapshot(e Event) Event {
	e = e.Clone()
	e.DataSnapshot = nil
	return e
}

// Resize returns a copy of the event scaled around origin. The new data is
// always computed from the snapshot when one is defined.
func Resize(e Event, origin, scale geom.Point) Event {
	source := e.Data
	if e.DataSnapshot != nil {
		source = e.DataSnapshot
	}
	resized := e.Clone()
	resized.Data = geom.Scale(source, origin, scale)
	return resized
}

// MaxLineWidth returns the widest line width among events.
func MaxLineWidth(events []Event) float64 {
	var max float64
	for _, e := range events {
		if e.Options.LineWidth > max {
			max = e.Options.LineWidth
		}
	}
	return max
}

func cloneData(data []float64) []float64 {
	if data == nil {
		return nil
	}
	return append([]float64(nil), data...)
}
