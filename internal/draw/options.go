package draw

// Options are the stroke and fill settings of an event.
type Options struct {
	LineWidth   float64  `json:"lineWidth"`
	Color       string   `json:"color"`
	Opacity     float64  `json:"opacity"`
	FillOpacity float64  `json:"fillOpacity"`
	Angle       *float64 `json:"angle,omitempty"`
}

// DefaultOptions returns the options used when a participant has not
// picked any.
func DefaultOptions() Options {
	return Options{
		LineWidth:   4,
		Color:       "41, 182, 246",
		Opacity:     1,
		FillOpacity: 0,
	}
}

// Clone returns a copy that shares nothing with o.
func (o Options) Clone() Options {
	if o.Angle != nil {
		angle := *o.Angle
		o.Angle = &angle
	}
	return o
}

// WithAngle returns a copy limited to a partial sweep.
func (o Options) WithAngle(angle float64) Options {
	o.Angle = &angle
	return o
}

// Mode is the drawing tool in use.
type Mode string

// Drawing modes.
const (
	ModeBrush     Mode = "brush"
	ModeLine      Mode = "line"
	ModeRectangle Mode = "rectangle"
	ModeEllipse   Mode = "ellipse"
	ModeSelection Mode = "selection"
)

// DefaultMode is the tool selected at startup.
const DefaultMode = ModeBrush

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeBrush, ModeLine, ModeRectangle, ModeEllipse, ModeSelection:
		return true
	}
	return false
}

// ShapeType returns the event type drawn by a shape mode.
func (m Mode) ShapeType() (Type, bool) {
	switch m {
	case ModeLine:
		return TypeLine, true
	case ModeRectangle:
		return TypeRectangle, true
	case ModeEllipse:
		return TypeEllipse, true
	}
	return "", false
}
