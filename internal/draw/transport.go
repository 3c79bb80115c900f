package draw

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"CollabBoard/internal/geom"
)

var (
	// ErrUnknownAction is returned for transports with an unhandled action.
	ErrUnknownAction = errors.New("unknown transport action")

	// ErrMalformedTransport is returned when a transport lacks the fields
	// its action needs.
	ErrMalformedTransport = errors.New("malformed transport")
)

// Action is the discriminant of a transport message.
type Action string

// Transport actions.
const (
	ActionAdd        Action = "add"
	ActionRemove     Action = "remove"
	ActionTranslate  Action = "translate"
	ActionResize     Action = "resize"
	ActionBackground Action = "background"
)

// Transport is the wire message exchanged between participants.
type Transport struct {
	Action     Action      `json:"action"`
	Events     []Event     `json:"events,omitempty"`
	EventsID   []string    `json:"eventsId,omitempty"`
	Translate  *geom.Point `json:"translate,omitempty"`
	Origin     *geom.Point `json:"origin,omitempty"`
	Scale      *geom.Point `json:"scale,omitempty"`
	Background *Background `json:"background,omitempty"`
}

// AddTransport carries full events.
func AddTransport(events []Event) Transport {
	return Transport{Action: ActionAdd, Events: events}
}

// RemoveTransport carries the ids of removed events.
func RemoveTransport(ids []string) Transport {
	return Transport{Action: ActionRemove, EventsID: ids}
}

// TranslateTransport moves events by (dx, dy).
func TranslateTransport(ids []string, dx, dy float64) Transport {
	return Transport{Action: ActionTranslate, EventsID: ids, Translate: &geom.Point{dx, dy}}
}

// ResizeTransport scales events around origin.
func ResizeTransport(ids []string, origin, scale geom.Point) Transport {
	return Transport{Action: ActionResize, EventsID: ids, Origin: &origin, Scale: &scale}
}

// BackgroundTransport replaces the background.
func BackgroundTransport(bg Background) Transport {
	return Transport{Action: ActionBackground, Background: &bg}
}

// Validate checks the message carries what its action needs. Malformed
// events of an add are not reported here, see ValidEvents.
func (t Transport) Validate() error {
	switch t.Action {
	case ActionAdd, ActionRemove:
		return nil
	case ActionTranslate:
		if t.Translate == nil {
			return fmt.Errorf("%w: translate without vector", ErrMalformedTransport)
		}
	case ActionResize:
		if t.Origin == nil || t.Scale == nil {
			return fmt.Errorf("%w: resize without origin or scale", ErrMalformedTransport)
		}
	case ActionBackground:
		if t.Background == nil {
			return fmt.Errorf("%w: background without value", ErrMalformedTransport)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, t.Action)
	}
	return nil
}

// ValidEvents splits the events of an add into the well formed ones and
// the validation errors of the others. Resize references are local to a
// gesture and are dropped from the valid events.
func (t Transport) ValidEvents() ([]Event, []error) {
	var valid []Event
	var errs []error
	for _, e := range t.Events {
		if err := e.Validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, DeleteSnapshot(e))
	}
	return valid, errs
}

// Encode serializes a transport to JSON.
func Encode(t Transport) ([]byte, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode %s transport: %w", t.Action, err)
	}
	return b, nil
}

// Decode parses a JSON transport and checks its action.
func Decode(b []byte) (Transport, error) {
	var t Transport
	if err := json.Unmarshal(b, &t); err != nil {
		return Transport{}, fmt.Errorf("decode transport: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Transport{}, err
	}
	return t, nil
}
