package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"

	"CollabBoard/internal/geom"
)

// ErrSurfaceUnavailable is returned when no paint target can be acquired.
var ErrSurfaceUnavailable = errors.New("render surface unavailable")

// Pen describes how a path is stroked.
type Pen struct {
	Color gg.RGBA
	Width float64
	Dash  []float64
}

// Surface is the 2D target an Engine paints on.
type Surface interface {
	Size() (width, height int)
	Resize(width, height int) error
	Stroke(path *gg.Path, pen Pen) error
	Fill(path *gg.Path, color gg.RGBA) error
	// Clear makes the pixels of the box transparent.
	Clear(box geom.Line)
	Image() image.Image
	EncodePNG(w io.Writer) error
}

// GGSurface is a Surface backed by a gg context.
type GGSurface struct {
	ctx *gg.Context
}

// NewSurface allocates a surface of the given size.
func NewSurface(width, height int) (*GGSurface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrSurfaceUnavailable, width, height)
	}
	return &GGSurface{ctx: gg.NewContext(width, height)}, nil
}

// Size returns the surface size in pixels.
func (s *GGSurface) Size() (int, int) {
	return s.ctx.Width(), s.ctx.Height()
}

// Resize reallocates the pixels. The content is lost.
func (s *GGSurface) Resize(width, height int) error {
	if err := s.ctx.Resize(width, height); err != nil {
		return fmt.Errorf("%w: %v", ErrSurfaceUnavailable, err)
	}
	s.ctx.Clear()
	return nil
}

// Stroke strokes path with round caps and joins.
func (s *GGSurface) Stroke(path *gg.Path, pen Pen) error {
	stroke := gg.DefaultStroke().
		WithWidth(pen.Width).
		WithCap(gg.LineCapRound).
		WithJoin(gg.LineJoinRound)
	if len(pen.Dash) > 0 {
		stroke = stroke.WithDashPattern(pen.Dash...)
	} else {
		stroke = stroke.WithDash(nil)
	}
	s.ctx.SetStroke(stroke)
	s.ctx.SetLineWidth(pen.Width)
	s.ctx.SetLineCap(gg.LineCapRound)
	s.ctx.SetLineJoin(gg.LineJoinRound)
	s.ctx.SetRGBA(pen.Color.R, pen.Color.G, pen.Color.B, pen.Color.A)

	s.replay(path)
	return s.ctx.Stroke()
}

// Fill fills path using the non-zero rule.
func (s *GGSurface) Fill(path *gg.Path, color gg.RGBA) error {
	s.ctx.SetRGBA(color.R, color.G, color.B, color.A)
	s.replay(path)
	return s.ctx.Fill()
}

// Clear erases the box. A box covering the whole surface clears it at once.
func (s *GGSurface) Clear(box geom.Line) {
	w, h := s.Size()
	box = geom.Normalize(box)
	x0 := int(math.Max(0, math.Floor(box[0])))
	y0 := int(math.Max(0, math.Floor(box[1])))
	x1 := int(math.Min(float64(w), math.Ceil(box[2])))
	y1 := int(math.Min(float64(h), math.Ceil(box[3])))

	if x0 == 0 && y0 == 0 && x1 == w && y1 == h {
		s.ctx.Clear()
		return
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.ctx.SetPixel(x, y, gg.Transparent)
		}
	}
}

// Image returns the painted pixels.
func (s *GGSurface) Image() image.Image {
	_ = s.ctx.FlushGPU()
	return s.ctx.Image()
}

// EncodePNG writes the surface as PNG.
func (s *GGSurface) EncodePNG(w io.Writer) error {
	_ = s.ctx.FlushGPU()
	return s.ctx.EncodePNG(w)
}

// Close releases the context.
func (s *GGSurface) Close() error {
	return s.ctx.Close()
}

func (s *GGSurface) replay(path *gg.Path) {
	s.ctx.ClearPath()
	for _, el := range path.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			s.ctx.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			s.ctx.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			s.ctx.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			s.ctx.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			s.ctx.ClosePath()
		}
	}
}
