// Package board wires the document, the pointer and three render layers
// into an interactive canvas.
//
// The result layer holds committed drawing, the broadcast layer shows
// animation frames, and the owner layer shows the gesture in progress.
package board

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/gogpu/gg"

	"CollabBoard/internal/animation"
	"CollabBoard/internal/draw"
	"CollabBoard/internal/geom"
	"CollabBoard/internal/logging"
	"CollabBoard/internal/pointer"
	"CollabBoard/internal/render"
	"CollabBoard/internal/state"
)

// SurfaceFactory allocates the surface of a layer.
type SurfaceFactory func(width, height int) (render.Surface, error)

// Options configure a board.
type Options struct {
	Width, Height int
	// Centered puts the origin of emitted coordinates at the canvas center.
	Centered bool
	Magnet   float64
	// Sensitivity overrides the derived pointer threshold when positive.
	Sensitivity float64
	// Divisor tunes the animation flush rate.
	Divisor float64
	// NewSurface defaults to gg surfaces.
	NewSurface SurfaceFactory
}

// Board is the canvas of one participant. Like the whiteboard it drives,
// it must be used from a single goroutine.
type Board struct {
	opts   Options
	logger logging.Logger

	wb        *state.Whiteboard
	result    *render.Engine
	broadcast *render.Engine
	owner     *render.Engine
	player    *animation.Player
	pointer   *pointer.Normalizer

	drawOptions draw.Options
	disabled    bool
	selection   selectionGesture
}

// New creates a board painting wb.
func New(wb *state.Whiteboard, opts Options, logger logging.Logger) (*Board, error) {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	if opts.NewSurface == nil {
		opts.NewSurface = func(w, h int) (render.Surface, error) {
			return render.NewSurface(w, h)
		}
	}

	b := &Board{
		opts:        opts,
		logger:      logger,
		wb:          wb,
		drawOptions: draw.DefaultOptions(),
	}

	engines := make([]*render.Engine, 3)
	for i := range engines {
		surface, err := opts.NewSurface(opts.Width, opts.Height)
		if err != nil {
			return nil, fmt.Errorf("create layer: %w", err)
		}
		if engines[i], err = render.New(surface, logger); err != nil {
			return nil, err
		}
	}
	b.result, b.broadcast, b.owner = engines[0], engines[1], engines[2]

	b.player = animation.NewPlayer(layerSink{b}, opts.Divisor)
	b.pointer = &pointer.Normalizer{
		OnStart: b.pointerStart,
		OnMove:  b.pointerMove,
		OnEnd:   b.pointerEnd,
	}
	wb.OnBroadcast = b.handleBroadcast
	return b, nil
}

// Whiteboard returns the document.
func (b *Board) Whiteboard() *state.Whiteboard {
	return b.wb
}

// Player returns the animation player. Tick it to advance playback.
func (b *Board) Player() *animation.Player {
	return b.player
}

// Result returns the committed layer.
func (b *Board) Result() *render.Engine {
	return b.result
}

// Size returns the canvas size.
func (b *Board) Size() (int, int) {
	return b.opts.Width, b.opts.Height
}

// Resize changes the canvas size and repaints the document.
func (b *Board) Resize(width, height int) error {
	for _, e := range []*render.Engine{b.result, b.broadcast, b.owner} {
		if err := e.ApplySize(width, height); err != nil {
			return err
		}
	}
	b.opts.Width, b.opts.Height = width, height
	b.player.Reset()
	b.wb.Redraw(false)
	return nil
}

// DrawOptions returns the options of the next shapes.
func (b *Board) DrawOptions() draw.Options {
	return b.drawOptions.Clone()
}

// SetDrawOptions changes the options of the next shapes.
func (b *Board) SetDrawOptions(opts draw.Options) {
	b.drawOptions = opts.Clone()
}

// Magnet returns the grid step, 0 when off.
func (b *Board) Magnet() float64 {
	return b.opts.Magnet
}

// SetMagnet changes the grid step.
func (b *Board) SetMagnet(magnet float64) {
	b.opts.Magnet = math.Max(0, magnet)
}

// SetDisabled ignores pointer input while true.
func (b *Board) SetDisabled(disabled bool) {
	b.disabled = disabled
}

// Center returns the offset added to document coordinates to get canvas
// coordinates.
func (b *Board) Center() geom.Point {
	if !b.opts.Centered {
		return geom.Point{}
	}
	return geom.Pt(math.Floor(float64(b.opts.Width)/2), math.Floor(float64(b.opts.Height)/2))
}

// Composite stacks the three layers.
func (b *Board) Composite() image.Image {
	return b.composite().Image()
}

// EncodePNG writes the composited canvas.
func (b *Board) EncodePNG(w io.Writer) error {
	dc := b.composite()
	defer dc.Close()
	return dc.EncodePNG(w)
}

func (b *Board) composite() *gg.Context {
	dc := gg.NewContext(b.opts.Width, b.opts.Height)
	for _, e := range []*render.Engine{b.result, b.broadcast, b.owner} {
		dc.DrawImage(gg.ImageBufFromImage(e.Surface().Image()), 0, 0)
	}
	return dc
}

// handleBroadcast paints a broadcast. A leading clear and background
// prelude repaints the result layer at once and cancels pending frames,
// the rest goes through the player.
func (b *Board) handleBroadcast(bc draw.Broadcast) {
	events := bc.Events
	var prelude []draw.Event
	for _, t := range []draw.Type{draw.TypeClear, draw.TypeBackground, draw.TypeBackground} {
		if len(events) == 0 || events[0].Type != t || !geom.LineOf(events[0].Data).IsEmpty() {
			break
		}
		prelude = append(prelude, events[0])
		events = events[1:]
	}

	if len(prelude) > 0 {
		b.player.Reset()
		b.broadcast.Clear()
		b.result.ResetPaths()
		for _, e := range prelude {
			b.commit(e)
		}
	}

	center := b.Center()
	b.player.Play(draw.TranslateAll(events, center[0], center[1]), bc.Animate)
}

func (b *Board) commit(e draw.Event) {
	if err := b.result.Handle(e); err != nil {
		b.logger.Warnf("skip event: %v", err)
	}
}

// layerSink routes player frames to the layers.
type layerSink struct {
	b *Board
}

func (s layerSink) ClearPreview() {
	s.b.broadcast.Clear()
	s.b.broadcast.ResetPaths()
}

func (s layerSink) Preview(e draw.Event) {
	if err := s.b.broadcast.Handle(e); err != nil {
		s.b.logger.Warnf("skip frame: %v", err)
	}
}

func (s layerSink) Commit(e draw.Event) {
	s.b.commit(e)
}
