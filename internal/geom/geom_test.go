package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBounds(t *testing.T) {
	t.Run("point", func(t *testing.T) {
		box, ok := Bounds([]float64{3, 4})
		assert.True(t, ok)
		assert.Equal(t, Line{3, 4, 3, 4}, box)
	})

	t.Run("reversed line", func(t *testing.T) {
		box, ok := Bounds([]float64{10, 20, 0, 5})
		assert.True(t, ok)
		assert.Equal(t, Line{0, 5, 10, 20}, box)
	})

	t.Run("several series", func(t *testing.T) {
		box, ok := Bounds([]float64{1, 1, 2, 2}, []float64{-1, 5, 0, 0, 7, 3})
		assert.True(t, ok)
		assert.Equal(t, Line{-1, 0, 7, 5}, box)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := Bounds(nil, []float64{})
		assert.False(t, ok)
	})
}

func TestTranslate(t *testing.T) {
	data := []float64{0, 0, 10, 5}

	assert.Equal(t, []float64{2, -1, 12, 4}, Translate(data, 2, -1))
	assert.Equal(t, data, Translate(data, 0, 0))
	assert.Nil(t, Translate(nil, 1, 1))

	moved := Translate(data, 1, 1)
	moved[0] = 99
	assert.Equal(t, 0.0, data[0])
}

func TestScale(t *testing.T) {
	data := []float64{10, 10, 20, 30}

	assert.Equal(t, []float64{10, 10, 30, 50}, Scale(data, Pt(10, 10), Pt(2, 2)))
	assert.Equal(t, data, Scale(data, Pt(10, 10), Pt(1, 1)))
	assert.Equal(t, []float64{20, 10, 10, 30}, Scale(data, Pt(15, 0), Pt(-1, 1)))
}

func TestContainment(t *testing.T) {
	box := Line{0, 0, 10, 10}

	assert.True(t, PointInRect(Pt(0, 0), box))
	assert.True(t, PointInRect(Pt(5, 10), box))
	assert.False(t, PointInRect(Pt(10.1, 5), box))

	assert.True(t, RectInRect(Line{1, 1, 9, 9}, box))
	assert.True(t, RectInRect(Line{1, 1, 9, 9}, Line{10, 10, 0, 0}))
	assert.False(t, RectInRect(Line{-1, 1, 9, 9}, box))

	assert.True(t, Overlap(Line{-1, -1, 1, 1}, box))
	assert.False(t, Overlap(Line{11, 0, 12, 1}, box))
}

func TestSplitLine(t *testing.T) {
	t.Run("short line kept", func(t *testing.T) {
		assert.Equal(t, []float64{0, 0, 10, 0}, SplitLine(Line{0, 0, 10, 0}, 30, 5))
	})

	t.Run("long line split", func(t *testing.T) {
		serie := SplitLine(Line{0, 0, 30, 0}, 30, 5)
		assert.Equal(t, []float64{0, 0, 5, 0, 10, 0, 15, 0, 20, 0, 25, 0, 30, 0}, serie)
	})

	t.Run("rounded", func(t *testing.T) {
		serie := SplitLine(Line{0, 0, 0, 32}, 30, 5)
		assert.Len(t, serie, 14)
		assert.Equal(t, 5.3, serie[3])
		assert.Equal(t, []float64{0, 32}, serie[len(serie)-2:])
	})
}

func TestConcat(t *testing.T) {
	assert.Equal(t,
		[]float64{0, 0, 10, 0, 10, 10},
		Concat([]float64{0, 0, 10, 0}, []float64{10, 0, 10, 10}),
	)
	assert.Equal(t,
		[]float64{0, 0, 10, 0, 11, 0, 12, 0},
		Concat([]float64{0, 0, 10, 0}, []float64{11, 0, 12, 0}),
	)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 3.0, Round(2.5))
	assert.Equal(t, -2.0, Round(-2.5))
	assert.Equal(t, 2.0, Round(2.4))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, Line{}.IsEmpty())
	assert.True(t, Line{4, 4, 4, 4}.IsEmpty())
	assert.False(t, Line{0, 0, 0, 1}.IsEmpty())
}
