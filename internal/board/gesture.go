package board

import (
	"math"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/geom"
	"CollabBoard/internal/pointer"
	"CollabBoard/internal/render"
)

const previewID = "preview"

var rubberBandOptions = draw.Options{
	LineWidth: 1,
	Color:     "160, 160, 160",
	Opacity:   1,
}

// selectionGesture is the state of a gesture in selection mode.
type selectionGesture struct {
	skipUnselect bool
	translate    bool
	resize       *render.Action
}

// PointerStart begins a gesture at canvas coordinates.
func (b *Board) PointerStart(x, y float64) {
	if b.disabled {
		return
	}
	mode := b.wb.DrawMode()
	sensitivity := b.opts.Sensitivity
	if sensitivity <= 0 {
		sensitivity = pointer.SensitivityFor(b.opts.Magnet, b.drawOptions.LineWidth)
	}
	b.pointer.Config = pointer.Config{
		Magnet:      b.opts.Magnet,
		MagnetShift: pointer.MagnetShift(b.opts.Magnet, b.opts.Width, b.opts.Height),
		Sensitivity: sensitivity,
		Origin:      pointer.OriginFor(mode),
	}
	b.pointer.Start(x, y)
}

// PointerMove continues the gesture.
func (b *Board) PointerMove(x, y float64) {
	b.pointer.Move(x, y)
}

// PointerEnd finishes the gesture with a last sample.
func (b *Board) PointerEnd(x, y float64) {
	b.pointer.EndAt(x, y)
}

func (b *Board) pointerStart(g pointer.Gesture) {
	if b.wb.DrawMode() == draw.ModeSelection {
		b.selectionStart(g)
		return
	}
	b.preview(draw.TypePoint, g.First().Data(), b.drawOptions)
}

func (b *Board) pointerMove(g pointer.Gesture) {
	mode := b.wb.DrawMode()
	if mode == draw.ModeSelection {
		b.selectionMove(g)
		return
	}
	if mode == draw.ModeBrush {
		b.preview(draw.TypeLineSerie, g.Magnetized, b.drawOptions)
		return
	}
	if t, ok := mode.ShapeType(); ok {
		b.preview(t, firstLast(g.Magnetized), b.drawOptions)
	}
}

func (b *Board) pointerEnd(g pointer.Gesture) {
	b.clearOwner()
	if b.wb.DrawMode() == draw.ModeSelection {
		b.selectionEnd(g)
		return
	}

	e, ok := b.gestureEvent(g)
	if !ok {
		return
	}
	b.commit(e)
	center := b.Center()
	if err := b.wb.Emit(draw.Translate(e, -center[0], -center[1])); err != nil {
		b.logger.Warnf("drop gesture: %v", err)
	}
}

// gestureEvent builds the event drawn by a finished gesture.
func (b *Board) gestureEvent(g pointer.Gesture) (draw.Event, bool) {
	mode := b.wb.DrawMode()
	ids, owner := b.wb.IDs(), b.wb.Owner()

	if mode == draw.ModeBrush {
		return draw.New(ids, owner, draw.InferType(len(g.Magnetized)), g.Magnetized, b.drawOptions), true
	}
	t, ok := mode.ShapeType()
	if !ok {
		return draw.Event{}, false
	}

	from, to := g.First(), g.Last()
	switch {
	case from == to:
		return draw.New(ids, owner, draw.TypePoint, from.Data(), b.drawOptions), true
	case from[0] == to[0] || from[1] == to[1]:
		t = draw.TypeLine
	}
	return draw.New(ids, owner, t, []float64{from[0], from[1], to[0], to[1]}, b.drawOptions), true
}

func (b *Board) selectionStart(g pointer.Gesture) {
	p := geom.Pt(g.Original[0], g.Original[1])
	ids := b.result.EventsAt(p[0], p[1])
	if len(ids) > 0 {
		b.selection.skipUnselect = b.wb.SelectOne(ids)
	}

	action, ok := b.result.ActionAt(p[0], p[1])
	if ok && action.Kind == render.ActionResize {
		b.selection.resize = &action
		return
	}
	b.selection.translate = (ok && action.Kind == render.ActionTranslate) || len(ids) > 0
}

func (b *Board) selectionMove(g pointer.Gesture) {
	b.clearOwner()
	switch {
	case b.selection.translate:
		n := len(g.Magnetized)
		b.wb.TranslateSelection(g.Magnetized[n-2]-g.Magnetized[n-4], g.Magnetized[n-1]-g.Magnetized[n-3])
	case b.selection.resize != nil:
		if origin, scale, ok := b.resizeConfig(g); ok {
			b.wb.ResizeSelection(origin, scale)
		}
	default:
		b.preview(draw.TypeRectangle, firstLast(g.Original), rubberBandOptions)
	}
}

func (b *Board) selectionEnd(g pointer.Gesture) {
	defer func() { b.selection = selectionGesture{} }()

	if len(g.Original) == 2 {
		if b.selection.skipUnselect {
			return
		}
		if ids := b.result.EventsAt(g.Original[0], g.Original[1]); len(ids) > 0 {
			b.wb.RemoveSelection(ids)
		} else {
			b.wb.ClearSelection()
		}
		return
	}

	switch {
	case b.selection.translate:
		from, to := g.First(), g.Last()
		b.wb.EmitTranslatedSelection(to[0]-from[0], to[1]-from[1])
	case b.selection.resize != nil:
		if origin, scale, ok := b.resizeConfig(g); ok {
			b.wb.EmitResizedSelection(origin, scale)
		}
	default:
		if ids := b.result.EventsIn(geom.LineOf(firstLast(g.Original))); len(ids) > 0 {
			b.wb.AddSelection(ids)
		} else {
			b.wb.ClearSelection()
		}
	}
}

// resizeConfig scales the selection so the dragged corner follows the
// pointer while the opposite corner stays in place.
func (b *Board) resizeConfig(g pointer.Gesture) (origin, scale geom.Point, ok bool) {
	action := b.selection.resize
	box := action.Bounds
	right := action.Corner == render.TopRight || action.Corner == render.BottomRight
	bottom := action.Corner == render.BottomLeft || action.Corner == render.BottomRight

	ox, oy := box[2], box[3]
	factorX, factorY := -1.0, -1.0
	if right {
		ox, factorX = box[0], 1
	}
	if bottom {
		oy, factorY = box[1], 1
	}

	w, h := box.Width(), box.Height()
	if w == 0 && h == 0 {
		return geom.Point{}, geom.Point{}, false
	}

	center := b.Center()
	origin = geom.Pt(math.Floor(ox-center[0]), math.Floor(oy-center[1]))

	shift := geom.LineOf(firstLast(g.Magnetized))
	scale = geom.Pt(1, 1)
	if w != 0 {
		scale[0] = (w + shift.Width()*factorX) / w
	}
	if h != 0 {
		scale[1] = (h + shift.Height()*factorY) / h
	}
	return origin, scale, true
}

func (b *Board) preview(t draw.Type, data []float64, opts draw.Options) {
	b.clearOwner()
	e := draw.Event{ID: previewID, Owner: b.wb.Owner(), Type: t, Options: opts, Data: data}
	if err := b.owner.Handle(e); err != nil {
		b.logger.Debugf("skip preview: %v", err)
	}
}

func (b *Board) clearOwner() {
	b.owner.Clear()
	b.owner.ResetPaths()
}

func firstLast(serie []float64) []float64 {
	n := len(serie)
	return []float64{serie[0], serie[1], serie[n-2], serie[n-1]}
}
