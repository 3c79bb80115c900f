// Package geom holds the coordinate helpers shared by the drawing engines.
//
// Coordinates are carried as flat slices of x,y pairs: a point is [x, y],
// a line (or box) is [fromX, fromY, toX, toY] and a line serie is any longer
// even-length list.
package geom

import "math"

// Point is an x,y pair.
type Point [2]float64

// Line is a from/to pair of points. It doubles as a bounding box.
type Line [4]float64

// Pt returns the point (x, y).
func Pt(x, y float64) Point {
	return Point{x, y}
}

// Data returns the point as a coordinate slice.
func (p Point) Data() []float64 {
	return []float64{p[0], p[1]}
}

// From returns the first point of the line.
func (l Line) From() Point {
	return Point{l[0], l[1]}
}

// To returns the second point of the line.
func (l Line) To() Point {
	return Point{l[2], l[3]}
}

// Width returns the signed horizontal extent.
func (l Line) Width() float64 {
	return l[2] - l[0]
}

// Height returns the signed vertical extent.
func (l Line) Height() float64 {
	return l[3] - l[1]
}

// Data returns the line as a freshly allocated coordinate slice.
func (l Line) Data() []float64 {
	return []float64{l[0], l[1], l[2], l[3]}
}

// LineOf builds a line from the first four values of data.
// Missing values are zero.
func LineOf(data []float64) Line {
	var l Line
	copy(l[:], data)
	return l
}

// IsEmpty reports whether the line has no extent.
func (l Line) IsEmpty() bool {
	return l[0] == l[2] && l[1] == l[3]
}

// Normalize orders the line so that from is the top-left corner.
func Normalize(l Line) Line {
	return Line{
		math.Min(l[0], l[2]),
		math.Min(l[1], l[3]),
		math.Max(l[0], l[2]),
		math.Max(l[1], l[3]),
	}
}

// Bounds returns the envelope of every pair found in the given coordinate
// lists. ok is false when no pair was found.
func Bounds(data ...[]float64) (box Line, ok bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)

	for _, d := range data {
		for i := 0; i+1 < len(d); i += 2 {
			x, y := d[i], d[i+1]
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
			ok = true
		}
	}
	if !ok {
		return Line{}, false
	}
	return Line{minX, minY, maxX, maxY}, true
}

// Translate returns a copy of data with every pair shifted by (dx, dy).
func Translate(data []float64, dx, dy float64) []float64 {
	if data == nil {
		return nil
	}
	result := make([]float64, len(data))
	for i := 0; i+1 < len(data); i += 2 {
		result[i] = data[i] + dx
		result[i+1] = data[i+1] + dy
	}
	return result
}

// Scale returns a copy of data with every pair moved to
// origin + (pair - origin) * scale.
func Scale(data []float64, origin, scale Point) []float64 {
	if data == nil {
		return nil
	}
	result := make([]float64, len(data))
	for i := 0; i+1 < len(data); i += 2 {
		result[i] = origin[0] + (data[i]-origin[0])*scale[0]
		result[i+1] = origin[1] + (data[i+1]-origin[1])*scale[1]
	}
	return result
}

// PointInRect reports whether p lies in the box, borders included.
// The box must be normalized.
func PointInRect(p Point, box Line) bool {
	return p[0] >= box[0] && p[0] <= box[2] &&
		p[1] >= box[1] && p[1] <= box[3]
}

// RectInRect reports whether inner lies entirely within outer.
// Outer is normalized before the comparison, inner must already be.
func RectInRect(inner, outer Line) bool {
	outer = Normalize(outer)
	return outer[0] <= inner[0] && outer[2] >= inner[2] &&
		outer[1] <= inner[1] && outer[3] >= inner[3]
}

// Overlap reports whether two normalized boxes share at least one point.
func Overlap(a, b Line) bool {
	return !(a[2] < b[0] || b[2] < a[0] || a[3] < b[1] || b[3] < a[1])
}

// Diagonal returns the length of the line.
func Diagonal(l Line) float64 {
	return math.Hypot(l[2]-l[0], l[3]-l[1])
}

// SplitLine subdivides a straight line into a serie of points spaced by
// roughly step. Lines shorter than minDistance are returned as is.
// Intermediate coordinates are rounded to one decimal.
func SplitLine(l Line, minDistance, step float64) []float64 {
	distance := Diagonal(l)
	if distance < minDistance || step <= 0 {
		return l.Data()
	}

	steps := math.Floor(distance / step)
	stepX := (l[2] - l[0]) / steps
	stepY := (l[3] - l[1]) / steps

	serie := make([]float64, 0, int(steps)*2+2)
	for i := 0.0; i < steps; i++ {
		serie = append(serie, round1(l[0]+i*stepX), round1(l[1]+i*stepY))
	}
	return append(serie, l[2], l[3])
}

// Concat joins line series, skipping the first point of a serie when it
// repeats the last point of the previous one.
func Concat(series ...[]float64) []float64 {
	var result []float64
	for i, serie := range series {
		if i > 0 && len(result) >= 2 && len(serie) >= 2 &&
			result[len(result)-2] == serie[0] && result[len(result)-1] == serie[1] {
			serie = serie[2:]
		}
		result = append(result, serie...)
	}
	return result
}

// Round rounds to the nearest integer, halves going up.
func Round(v float64) float64 {
	return math.Floor(v + 0.5)
}

func round1(v float64) float64 {
	return Round(v*10) / 10
}
