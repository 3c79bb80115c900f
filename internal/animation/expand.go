// Package animation turns shapes into incremental frames and plays them
// back over successive ticks.
package animation

import (
	"math"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/geom"
)

const (
	// SplitMinDistance is the shortest line that gets subdivided.
	SplitMinDistance = 30
	// SplitStep is the distance between two subdivision points.
	SplitStep = 5
	// EllipseStep is the arc length drawn per ellipse frame.
	EllipseStep = 5
)

// Step tells the player where a frame goes.
type Step int

const (
	// Plain frames are committed as they are.
	Plain Step = iota
	// Partial frames replace the preview layer content.
	Partial
	// Final frames clear the preview and commit the whole shape.
	Final
)

func (s Step) String() string {
	switch s {
	case Partial:
		return "partial"
	case Final:
		return "final"
	default:
		return "plain"
	}
}

// Frame is one unit of playback.
type Frame struct {
	Event draw.Event
	Step  Step
}

// Expand maps events to playback frames. Lines, line series, rectangles
// and ellipses are drawn progressively, everything else is kept plain.
func Expand(events []draw.Event) []Frame {
	var frames []Frame
	for _, e := range events {
		switch e.Type {
		case draw.TypeLine:
			frames = append(frames, expandLine(e)...)
		case draw.TypeLineSerie:
			frames = append(frames, expandLineSerie(e)...)
		case draw.TypeRectangle:
			frames = append(frames, expandRectangle(e)...)
		case draw.TypeEllipse:
			frames = append(frames, expandEllipse(e)...)
		default:
			frames = append(frames, Frame{Event: e})
		}
	}
	return frames
}

// PlainFrames wraps events without expanding them.
func PlainFrames(events []draw.Event) []Frame {
	frames := make([]Frame, len(events))
	for i, e := range events {
		frames[i] = Frame{Event: e}
	}
	return frames
}

func expandLine(e draw.Event) []Frame {
	if len(e.Data) < 4 {
		return []Frame{{Event: e}}
	}
	serie := geom.SplitLine(geom.LineOf(e.Data), SplitMinDistance, SplitStep)

	var frames []Frame
	for i := 2; i+1 < len(serie)-2; i += 2 {
		frame := e.Clone()
		frame.Data = []float64{serie[0], serie[1], serie[i], serie[i+1]}
		frames = append(frames, Frame{Event: frame, Step: Partial})
	}
	return append(frames, Frame{Event: e, Step: Final})
}

func expandLineSerie(e draw.Event) []Frame {
	return prefixFrames(e, e.Data, draw.TypeLineSerie)
}

func expandRectangle(e draw.Event) []Frame {
	if len(e.Data) < 4 {
		return []Frame{{Event: e}}
	}
	x1, y1, x2, y2 := e.Data[0], e.Data[1], e.Data[2], e.Data[3]
	serie := geom.Concat(
		geom.SplitLine(geom.Line{x1, y1, x2, y1}, SplitMinDistance, SplitStep),
		geom.SplitLine(geom.Line{x2, y1, x2, y2}, SplitMinDistance, SplitStep),
		geom.SplitLine(geom.Line{x2, y2, x1, y2}, SplitMinDistance, SplitStep),
		geom.SplitLine(geom.Line{x1, y2, x1, y1}, SplitMinDistance, SplitStep),
	)
	return prefixFrames(e, serie, draw.TypeLineSerie)
}

// prefixFrames draws serie one more point per frame, then commits e.
func prefixFrames(e draw.Event, serie []float64, t draw.Type) []Frame {
	var frames []Frame
	for n := 4; n < len(serie); n += 2 {
		frame := e.Clone()
		frame.Type = t
		frame.Data = append([]float64(nil), serie[:n]...)
		frame.Options.FillOpacity = 0
		frames = append(frames, Frame{Event: frame, Step: Partial})
	}
	return append(frames, Frame{Event: e, Step: Final})
}

func expandEllipse(e draw.Event) []Frame {
	if len(e.Data) < 4 {
		return []Frame{{Event: e}}
	}
	l := geom.LineOf(e.Data)
	rx, ry := l.Width()/2, l.Height()/2
	steps := 2 * math.Pi * math.Sqrt((rx*rx+ry*ry)/2) / EllipseStep

	var frames []Frame
	for i := 1.0; i < steps; i++ {
		frame := e.Clone()
		frame.Options = frame.Options.WithAngle(2 * math.Pi / steps * i)
		frames = append(frames, Frame{Event: frame, Step: Partial})
	}
	return append(frames, Frame{Event: e, Step: Final})
}
