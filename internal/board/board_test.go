package board

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/geom"
	"CollabBoard/internal/logging"
	"CollabBoard/internal/prefs"
	"CollabBoard/internal/render"
	"CollabBoard/internal/state"
)

type fixture struct {
	board *Board
	wb    *state.Whiteboard
	emits []draw.Transport
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	if opts.Width == 0 {
		opts.Width, opts.Height = 100, 100
	}
	f := &fixture{wb: state.NewWhiteboard("me", draw.NewSeededGenerator(1), logging.Nop())}
	f.wb.OnEmit = func(tr draw.Transport) { f.emits = append(f.emits, tr) }

	b, err := New(f.wb, opts, logging.Nop())
	require.NoError(t, err)
	f.board = b
	return f
}

func (f *fixture) drag(points ...float64) {
	f.board.PointerStart(points[0], points[1])
	for i := 2; i+1 < len(points)-2; i += 2 {
		f.board.PointerMove(points[i], points[i+1])
	}
	n := len(points)
	f.board.PointerEnd(points[n-2], points[n-1])
}

func (f *fixture) lastEmit() draw.Transport {
	return f.emits[len(f.emits)-1]
}

func TestNewRejectsEmptyCanvas(t *testing.T) {
	wb := state.NewWhiteboard("me", draw.NewSeededGenerator(1), logging.Nop())
	_, err := New(wb, Options{}, logging.Nop())
	assert.ErrorIs(t, err, render.ErrSurfaceUnavailable)
}

func TestDrawModes(t *testing.T) {
	cases := []struct {
		name   string
		mode   draw.Mode
		points []float64
		typ    draw.Type
		data   []float64
	}{
		{"rectangle", draw.ModeRectangle, []float64{10, 10, 50, 50}, draw.TypeRectangle, []float64{10, 10, 50, 50}},
		{"ellipse", draw.ModeEllipse, []float64{10, 10, 30, 50, 40, 60}, draw.TypeEllipse, []float64{10, 10, 40, 60}},
		{"flat rectangle becomes a line", draw.ModeRectangle, []float64{10, 10, 50, 10}, draw.TypeLine, []float64{10, 10, 50, 10}},
		{"shape click becomes a point", draw.ModeLine, []float64{10, 10, 10, 10}, draw.TypePoint, []float64{10, 10}},
		{"brush click", draw.ModeBrush, []float64{10, 10, 10, 10}, draw.TypePoint, []float64{10, 10}},
		{"brush stroke", draw.ModeBrush, []float64{10, 10, 20, 20, 30, 30}, draw.TypeLineSerie, []float64{10, 10, 20, 20, 30, 30}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, Options{})
			f.wb.SetDrawMode(tc.mode)

			f.drag(tc.points...)

			history := f.wb.History()
			require.Len(t, history, 1)
			assert.Equal(t, tc.typ, history[0].Type)
			assert.Equal(t, tc.data, history[0].Data)
			assert.Equal(t, draw.Owner("me"), history[0].Owner)
			assert.Equal(t, draw.ActionAdd, f.lastEmit().Action)
		})
	}
}

func TestDrawnShapeIsHit(t *testing.T) {
	f := newFixture(t, Options{})
	f.wb.SetDrawMode(draw.ModeRectangle)
	f.drag(10, 10, 50, 50)

	id := f.wb.History()[0].ID
	assert.Equal(t, []string{id}, f.board.Result().EventsAt(30, 30))
	assert.Empty(t, f.board.Result().EventsAt(80, 80))
}

func TestDrawOptionsAreCopied(t *testing.T) {
	f := newFixture(t, Options{})
	opts := draw.DefaultOptions()
	opts.LineWidth = 7
	f.board.SetDrawOptions(opts)
	f.wb.SetDrawMode(draw.ModeLine)
	f.drag(10, 10, 60, 60)

	f.board.SetDrawOptions(draw.DefaultOptions())
	assert.Equal(t, 7.0, f.wb.History()[0].Options.LineWidth)
}

func TestCenteredCoordinates(t *testing.T) {
	f := newFixture(t, Options{Centered: true})
	f.wb.SetDrawMode(draw.ModeLine)
	f.drag(60, 60, 60, 90)

	history := f.wb.History()
	require.Len(t, history, 1)
	assert.Equal(t, []float64{10, 10, 10, 40}, history[0].Data)
	assert.Equal(t, []string{history[0].ID}, f.board.Result().EventsAt(60, 75))
}

func TestMagnet(t *testing.T) {
	f := newFixture(t, Options{Magnet: 10})
	f.wb.SetDrawMode(draw.ModeLine)
	f.drag(12, 14, 47, 33)

	assert.Equal(t, []float64{10, 10, 50, 30}, f.wb.History()[0].Data)
}

func TestDisabled(t *testing.T) {
	f := newFixture(t, Options{})
	f.board.SetDisabled(true)
	f.drag(10, 10, 50, 50)
	assert.Empty(t, f.wb.History())
}

func selectRect(t *testing.T, f *fixture, data ...float64) string {
	t.Helper()
	f.wb.SetDrawMode(draw.ModeRectangle)
	f.drag(data...)
	f.wb.SetDrawMode(draw.ModeSelection)
	return f.wb.History()[len(f.wb.History())-1].ID
}

func TestClickSelection(t *testing.T) {
	f := newFixture(t, Options{})
	id := selectRect(t, f, 10, 10, 50, 50)

	f.drag(30, 30, 30, 30)
	assert.Equal(t, []string{id}, f.wb.SelectedIDs())

	f.drag(30, 30, 30, 30)
	assert.Empty(t, f.wb.SelectedIDs())

	f.drag(30, 30, 30, 30)
	f.drag(90, 90, 90, 90)
	assert.Empty(t, f.wb.SelectedIDs())
}

func TestAreaSelection(t *testing.T) {
	f := newFixture(t, Options{})
	first := selectRect(t, f, 10, 10, 30, 30)
	selectRect(t, f, 60, 60, 90, 90)

	f.drag(5, 5, 20, 20, 40, 40)
	assert.Equal(t, []string{first}, f.wb.SelectedIDs())

	f.drag(95, 5, 98, 8)
	assert.Empty(t, f.wb.SelectedIDs())
}

func TestTranslateSelection(t *testing.T) {
	f := newFixture(t, Options{})
	id := selectRect(t, f, 10, 10, 50, 50)
	f.drag(30, 30, 30, 30)
	require.Equal(t, []string{id}, f.wb.SelectedIDs())

	f.drag(30, 30, 35, 38, 40, 45)

	history := f.wb.History()
	assert.Equal(t, []float64{20, 25, 60, 65}, history[0].Data)
	last := f.lastEmit()
	assert.Equal(t, draw.ActionTranslate, last.Action)
	assert.Equal(t, []string{id}, last.EventsID)
	assert.Equal(t, &geom.Point{10, 15}, last.Translate)
	assert.Equal(t, []string{id}, f.wb.SelectedIDs())
}

func TestResizeSelection(t *testing.T) {
	f := newFixture(t, Options{})
	id := selectRect(t, f, 10, 10, 50, 50)
	f.drag(30, 30, 30, 30)
	require.Equal(t, []string{id}, f.wb.SelectedIDs())

	f.drag(60, 60, 70, 70, 80, 80)

	history := f.wb.History()
	assert.Equal(t, []float64{10, 10, 70, 70}, history[0].Data)
	assert.Nil(t, history[0].DataSnapshot)

	last := f.lastEmit()
	assert.Equal(t, draw.ActionResize, last.Action)
	assert.Equal(t, &geom.Point{10, 10}, last.Origin)
	assert.Equal(t, &geom.Point{1.5, 1.5}, last.Scale)
}

func TestResizeFlatSelection(t *testing.T) {
	f := newFixture(t, Options{})
	f.wb.SetDrawMode(draw.ModeLine)
	f.drag(30, 10, 30, 50)
	id := f.wb.History()[0].ID
	require.Equal(t, draw.TypeLine, f.wb.History()[0].Type)

	f.wb.SetDrawMode(draw.ModeSelection)
	f.drag(30, 30, 30, 30)
	require.Equal(t, []string{id}, f.wb.SelectedIDs())

	// Bottom right handle of a selection with no width.
	f.drag(42, 62, 47, 67, 52, 72)

	last := f.lastEmit()
	require.Equal(t, draw.ActionResize, last.Action)
	assert.Equal(t, &geom.Point{30, 10}, last.Origin)
	assert.Equal(t, &geom.Point{1, 1.25}, last.Scale)

	data := f.wb.History()[0].Data
	assert.Equal(t, []float64{30, 10, 30, 60}, data)
	for _, v := range data {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "%v", data)
	}
}

func TestReceivedEventsAreAnimated(t *testing.T) {
	f := newFixture(t, Options{})
	line := draw.Event{ID: "remote", Owner: "peer", Type: draw.TypeLine, Options: draw.DefaultOptions(), Data: []float64{0, 50, 100, 50}}
	require.NoError(t, f.wb.Receive(draw.AddTransport([]draw.Event{line})))

	player := f.board.Player()
	assert.True(t, player.Playing())
	assert.Empty(t, f.board.Result().EventsAt(50, 50))

	for player.Tick() {
	}
	assert.Equal(t, []string{"remote"}, f.board.Result().EventsAt(50, 50))
}

func TestRedrawCancelsAnimation(t *testing.T) {
	f := newFixture(t, Options{})
	line := draw.Event{ID: "remote", Owner: "peer", Type: draw.TypeLine, Options: draw.DefaultOptions(), Data: []float64{0, 50, 100, 50}}
	require.NoError(t, f.wb.Receive(draw.AddTransport([]draw.Event{line})))
	f.board.Player().Tick()

	f.wb.Redraw(false)
	assert.False(t, f.board.Player().Playing())
	assert.Zero(t, f.board.Player().Pending())
	assert.Equal(t, []string{"remote"}, f.board.Result().EventsAt(50, 50))
}

func TestResize(t *testing.T) {
	f := newFixture(t, Options{})
	f.wb.SetDrawMode(draw.ModeRectangle)
	f.drag(10, 10, 50, 50)

	require.NoError(t, f.board.Resize(200, 150))
	w, h := f.board.Size()
	assert.Equal(t, 200, w)
	assert.Equal(t, 150, h)
	assert.Len(t, f.board.Result().EventsAt(30, 30), 1)
}

func TestComposite(t *testing.T) {
	f := newFixture(t, Options{})
	f.wb.Redraw(false)

	img := f.board.Composite()
	r, g, b, a := img.At(5, 5).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff, 0xffff}, []uint32{r, g, b, a})

	var buf bytes.Buffer
	require.NoError(t, f.board.EncodePNG(&buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestPrefs(t *testing.T) {
	store := prefs.NewMemoryStore()

	f := newFixture(t, Options{})
	opts := draw.DefaultOptions()
	opts.Color = "1, 2, 3"
	f.board.SetDrawOptions(opts)
	f.board.SetMagnet(12)
	f.wb.SetDrawMode(draw.ModeEllipse)
	f.wb.SetBackground(draw.Background{Color: "9, 9, 9", Opacity: 0.5})
	require.NoError(t, f.board.SavePrefs(store))

	g := newFixture(t, Options{})
	require.NoError(t, g.board.LoadPrefs(store))
	assert.Equal(t, opts, g.board.DrawOptions())
	assert.Equal(t, 12.0, g.board.Magnet())
	assert.Equal(t, draw.ModeEllipse, g.wb.DrawMode())
	assert.Equal(t, draw.Background{Color: "9, 9, 9", Opacity: 0.5}, g.wb.Background())
}

func TestLoadPrefsFromEmptyStore(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.board.LoadPrefs(prefs.NewMemoryStore()))
	assert.Equal(t, draw.DefaultOptions(), f.board.DrawOptions())
	assert.Equal(t, draw.DefaultMode, f.wb.DrawMode())
}
