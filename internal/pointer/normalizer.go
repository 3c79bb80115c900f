// Package pointer turns raw device gestures into canvas coordinates.
package pointer

import (
	"math"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/geom"
)

// Origin selects the point a new sample is compared to before it is
// recorded.
type Origin int

const (
	// OriginPrevious compares with the last recorded point. Used for free
	// hand drawing.
	OriginPrevious Origin = iota
	// OriginFirst compares with the gesture start. Used for shapes.
	OriginFirst
)

// OriginFor returns the policy suited to a drawing mode.
func OriginFor(mode draw.Mode) Origin {
	if mode == draw.ModeBrush {
		return OriginPrevious
	}
	return OriginFirst
}

const (
	sensitivityMin = 3
	sensitivityMax = 9
)

// SensitivityFor derives the move threshold from the grid step and the
// line width.
func SensitivityFor(magnet, lineWidth float64) float64 {
	ratio := geom.Round(lineWidth / 3)
	if magnet != 0 {
		return math.Min(magnet, ratio)
	}
	return math.Min(math.Max(sensitivityMin, ratio), sensitivityMax)
}

// MagnetShift centers the grid on a canvas of the given size.
func MagnetShift(magnet float64, width, height int) geom.Point {
	if magnet == 0 {
		return geom.Point{}
	}
	return geom.Pt(
		geom.Round(math.Mod(float64(width)/2, magnet)),
		geom.Round(math.Mod(float64(height)/2, magnet)),
	)
}

// Config holds the normalizer settings. It is read on every call so it
// can change between gestures or even between samples.
type Config struct {
	Magnet      float64
	MagnetShift geom.Point
	Sensitivity float64
	Origin      Origin
}

// Gesture is the accumulated input of a gesture. Both lists hold x,y pairs;
// Magnetized is snapped to the grid, Original only rounded.
type Gesture struct {
	Magnetized []float64
	Original   []float64
}

// Last returns the latest magnetized point.
func (g Gesture) Last() geom.Point {
	n := len(g.Magnetized)
	return geom.Pt(g.Magnetized[n-2], g.Magnetized[n-1])
}

// First returns the starting magnetized point.
func (g Gesture) First() geom.Point {
	return geom.Pt(g.Magnetized[0], g.Magnetized[1])
}

// Normalizer converts start/move/end samples in device coordinates into
// gestures in canvas coordinates.
type Normalizer struct {
	Config Config

	// SurfaceOrigin returns the device position of the canvas top-left
	// corner. It is sampled once per gesture, at start.
	SurfaceOrigin func() geom.Point

	OnStart func(g Gesture)
	OnMove  func(g Gesture)
	OnEnd   func(g Gesture)

	origin     geom.Point
	magnetized []float64
	original   []float64
}

// Active reports whether a gesture is in progress.
func (n *Normalizer) Active() bool {
	return len(n.magnetized) > 0
}

// Start begins a gesture.
func (n *Normalizer) Start(x, y float64) {
	n.origin = geom.Point{}
	if n.SurfaceOrigin != nil {
		n.origin = n.SurfaceOrigin()
	}
	mx, my := n.magnetize(x, y)
	ox, oy := n.local(x, y)
	n.magnetized = []float64{mx, my}
	n.original = []float64{ox, oy}
	n.notify(n.OnStart)
}

// Move records a sample unless it stays within the sensitivity threshold
// of the sensitivity origin.
func (n *Normalizer) Move(x, y float64) {
	if !n.Active() {
		return
	}
	from := n.sensitivityOrigin()
	toX, toY := n.magnetize(x, y)
	s := n.Config.Sensitivity
	if math.Abs(toX-from[0]) <= s && math.Abs(toY-from[1]) <= s {
		return
	}
	ox, oy := n.local(x, y)
	n.magnetized = append(n.magnetized, toX, toY)
	n.original = append(n.original, ox, oy)
	n.notify(n.OnMove)
}

// End finishes the gesture without a final sample.
func (n *Normalizer) End() {
	if !n.Active() {
		return
	}
	n.notify(n.OnEnd)
	n.magnetized = nil
	n.original = nil
}

// EndAt records a final sample then finishes the gesture.
func (n *Normalizer) EndAt(x, y float64) {
	if !n.Active() {
		return
	}
	n.Move(x, y)
	n.End()
}

func (n *Normalizer) sensitivityOrigin() geom.Point {
	if n.Config.Origin == OriginFirst {
		return geom.Pt(n.magnetized[0], n.magnetized[1])
	}
	last := len(n.magnetized)
	return geom.Pt(n.magnetized[last-2], n.magnetized[last-1])
}

func (n *Normalizer) local(x, y float64) (float64, float64) {
	return geom.Round(x - n.origin[0]), geom.Round(y - n.origin[1])
}

func (n *Normalizer) magnetize(x, y float64) (float64, float64) {
	return snap(x-n.origin[0], n.Config.Magnet, n.Config.MagnetShift[0]),
		snap(y-n.origin[1], n.Config.Magnet, n.Config.MagnetShift[1])
}

func snap(v, magnet, shift float64) float64 {
	if magnet == 0 {
		return geom.Round(v)
	}
	return geom.Round((v-shift)/magnet)*magnet + shift
}

func (n *Normalizer) notify(fn func(Gesture)) {
	if fn == nil {
		return
	}
	fn(Gesture{
		Magnetized: append([]float64(nil), n.magnetized...),
		Original:   append([]float64(nil), n.original...),
	})
}
