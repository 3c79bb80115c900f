// Package render paints draw events on a Surface and keeps the hit
// geometry needed to answer selection queries afterwards.
package render

import (
	"fmt"
	"math"

	"github.com/gogpu/gg"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/geom"
	"CollabBoard/internal/logging"
)

const (
	// PointFat pads the hit box of a point.
	PointFat = 3
	// ResizeHandle is the side of a corner resize handle.
	ResizeHandle = 8
)

var (
	selectionDash         = []float64{9, 6}
	boundingSelectionDash = []float64{4, 4}

	selectionOptions = draw.Options{
		LineWidth: 1,
		Color:     "160, 160, 160",
		Opacity:   1,
	}
	boundingSelectionOptions = draw.Options{
		LineWidth:   1,
		Color:       "160, 160, 160",
		Opacity:     1,
		FillOpacity: 1,
	}
)

// ActionKind is the gesture a bounding selection region starts.
type ActionKind string

// Action kinds.
const (
	ActionTranslate ActionKind = "translate"
	ActionResize    ActionKind = "resize"
)

// Corner names a resize handle.
type Corner string

// Resize corners.
const (
	TopLeft     Corner = "topLeft"
	TopRight    Corner = "topRight"
	BottomRight Corner = "bottomRight"
	BottomLeft  Corner = "bottomLeft"
)

// HitInfo is the geometry recorded for a painted event.
type HitInfo struct {
	EventID string
	Path    *gg.Path
	Bounds  geom.Line
}

// Action is an interactive region of a bounding selection.
type Action struct {
	EventID string
	Kind    ActionKind
	Corner  Corner
	Path    *gg.Path
	// Bounds is the selection box the action applies to.
	Bounds geom.Line
}

// Engine paints events on one surface and owns its hit geometry.
type Engine struct {
	surface Surface
	logger  logging.Logger

	infos   []HitInfo
	actions []Action
}

// New creates an engine over surface.
func New(surface Surface, logger logging.Logger) (*Engine, error) {
	if surface == nil {
		return nil, ErrSurfaceUnavailable
	}
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Engine{surface: surface, logger: logger}, nil
}

// Surface returns the paint target.
func (e *Engine) Surface() Surface {
	return e.surface
}

// Size returns the surface size.
func (e *Engine) Size() (int, int) {
	return e.surface.Size()
}

// SizeAsLine returns the whole surface as a box.
func (e *Engine) SizeAsLine() geom.Line {
	w, h := e.surface.Size()
	return geom.Line{0, 0, float64(w), float64(h)}
}

// ApplySize resizes the surface. Recorded geometry no longer matches the
// pixels and is dropped.
func (e *Engine) ApplySize(width, height int) error {
	if err := e.surface.Resize(width, height); err != nil {
		return err
	}
	e.ResetPaths()
	return nil
}

// ResetPaths drops every recorded hit region.
func (e *Engine) ResetPaths() {
	e.infos = nil
	e.actions = nil
}

// Clear erases the whole surface.
func (e *Engine) Clear() {
	e.surface.Clear(e.SizeAsLine())
}

// Handle paints one event and records its hit geometry.
func (e *Engine) Handle(ev draw.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	var (
		info *HitInfo
		err  error
	)
	switch ev.Type {
	case draw.TypePoint:
		info, err = e.drawPoint(ev.Data, ev.Options)
	case draw.TypeLine:
		info, err = e.drawLine(geom.LineOf(ev.Data), ev.Options)
	case draw.TypeLineSerie:
		info, err = e.drawLineSerie(ev.Data, ev.Options)
	case draw.TypeRectangle:
		info, err = e.drawRectangle(geom.LineOf(ev.Data), ev.Options)
	case draw.TypeEllipse:
		info, err = e.drawEllipse(geom.LineOf(ev.Data), ev.Options)
	case draw.TypeBackground:
		err = e.drawBackground(e.wholeIfEmpty(ev.Data), ev.Options)
	case draw.TypeClear:
		e.surface.Clear(e.wholeIfEmpty(ev.Data))
	case draw.TypeSelection:
		err = e.drawSelection(ev.Data, ev.Options)
	case draw.TypeBoundingSelection:
		var actions []Action
		actions, err = e.drawBoundingSelection(geom.LineOf(ev.Data), ev.Options)
		for i := range actions {
			actions[i].EventID = ev.ID
		}
		e.actions = append(e.actions, actions...)
	default:
		return fmt.Errorf("%w: %q", draw.ErrUnknownType, ev.Type)
	}
	if err != nil {
		return fmt.Errorf("paint %s %s: %w", ev.Type, ev.ID, err)
	}

	if info != nil {
		info.EventID = ev.ID
		e.infos = append(e.infos, *info)
	}
	return nil
}

// HandleAll paints events in order. Failing events are logged and skipped.
func (e *Engine) HandleAll(events []draw.Event) {
	for _, ev := range events {
		if err := e.Handle(ev); err != nil {
			e.logger.Warnf("skip event: %v", err)
		}
	}
}

// EventsAt returns the ids whose hit box contains the point.
func (e *Engine) EventsAt(x, y float64) []string {
	p := geom.Pt(x, y)
	return e.collect(func(info HitInfo) bool {
		return geom.PointInRect(p, info.Bounds)
	})
}

// EventsIn returns the ids whose hit box lies entirely within area.
func (e *Engine) EventsIn(area geom.Line) []string {
	return e.collect(func(info HitInfo) bool {
		return geom.RectInRect(info.Bounds, area)
	})
}

// ActionAt returns the first action region containing the point.
func (e *Engine) ActionAt(x, y float64) (Action, bool) {
	p := gg.Pt(x, y)
	for _, action := range e.actions {
		if action.Path.Contains(p) {
			return action, true
		}
	}
	return Action{}, false
}

// Hits returns the recorded hit geometry.
func (e *Engine) Hits() []HitInfo {
	return append([]HitInfo(nil), e.infos...)
}

// Actions returns the recorded action regions.
func (e *Engine) Actions() []Action {
	return append([]Action(nil), e.actions...)
}

func (e *Engine) collect(match func(HitInfo) bool) []string {
	var ids []string
	seen := make(map[string]struct{})
	for _, info := range e.infos {
		if _, ok := seen[info.EventID]; ok || !match(info) {
			continue
		}
		seen[info.EventID] = struct{}{}
		ids = append(ids, info.EventID)
	}
	return ids
}

func (e *Engine) wholeIfEmpty(data []float64) geom.Line {
	box := geom.LineOf(data)
	if box.IsEmpty() {
		return e.SizeAsLine()
	}
	return box
}

func (e *Engine) drawPoint(data []float64, opts draw.Options) (*HitInfo, error) {
	off := offset(opts)
	x, y := data[0]+off, data[1]+off

	path := gg.NewPath()
	ellipseArc(path, x, y, 1, 1, 2*math.Pi)
	if err := e.stroke(path, opts); err != nil {
		return nil, err
	}
	return &HitInfo{
		Path:   path,
		Bounds: geom.Normalize(geom.Line{x - PointFat, y - PointFat, x + PointFat, y + PointFat}),
	}, nil
}

func (e *Engine) drawLine(l geom.Line, opts draw.Options) (*HitInfo, error) {
	off := offset(opts)
	path := gg.NewPath()
	path.MoveTo(l[0]+off, l[1]+off)
	path.LineTo(l[2]+off, l[3]+off)
	if err := e.stroke(path, opts); err != nil {
		return nil, err
	}
	return &HitInfo{Path: path, Bounds: geom.Normalize(shift(l, off))}, nil
}

func (e *Engine) drawLineSerie(serie []float64, opts draw.Options) (*HitInfo, error) {
	off := offset(opts)
	path := gg.NewPath()
	path.MoveTo(serie[0]+off, serie[1]+off)
	for i := 2; i+1 < len(serie); i += 2 {
		path.LineTo(serie[i]+off, serie[i+1]+off)
	}
	if err := e.stroke(path, opts); err != nil {
		return nil, err
	}
	bounds, _ := geom.Bounds(geom.Translate(serie, off, off))
	return &HitInfo{Path: path, Bounds: bounds}, nil
}

func (e *Engine) drawRectangle(l geom.Line, opts draw.Options) (*HitInfo, error) {
	off := offset(opts)
	x, y := l[0]+off, l[1]+off
	w, h := l.Width(), l.Height()

	path := gg.NewPath()
	path.Rectangle(x, y, w, h)
	if err := e.stroke(path, opts); err != nil {
		return nil, err
	}

	if opts.FillOpacity > 0 {
		fx, fy := sign(w), sign(h)
		lw := opts.LineWidth
		fill := gg.NewPath()
		fill.Rectangle(x+fx*lw/2, y+fy*lw/2, w-fx*lw, h-fy*lw)
		if err := e.fill(fill, opts); err != nil {
			return nil, err
		}
	}
	return &HitInfo{Path: path, Bounds: geom.Normalize(shift(l, off))}, nil
}

func (e *Engine) drawEllipse(l geom.Line, opts draw.Options) (*HitInfo, error) {
	shiftX := geom.Round(l.Width() / 2)
	shiftY := geom.Round(l.Height() / 2)
	off := offset(opts)
	cx, cy := l[0]+shiftX+off, l[1]+shiftY+off
	rx, ry := math.Abs(shiftX), math.Abs(shiftY)

	angle := 2 * math.Pi
	if opts.Angle != nil {
		angle = *opts.Angle
	}

	path := gg.NewPath()
	ellipseArc(path, cx, cy, rx, ry, angle)
	if err := e.stroke(path, opts); err != nil {
		return nil, err
	}

	if opts.Angle == nil && opts.FillOpacity > 0 {
		fill := gg.NewPath()
		ellipseArc(fill, cx, cy,
			math.Max(0, rx-opts.LineWidth/2), math.Max(0, ry-opts.LineWidth/2), angle)
		if err := e.fill(fill, opts); err != nil {
			return nil, err
		}
	}
	return &HitInfo{Path: path, Bounds: geom.Normalize(shift(l, off))}, nil
}

func (e *Engine) drawBackground(box geom.Line, opts draw.Options) error {
	path := gg.NewPath()
	path.Rectangle(box[0], box[1], box.Width(), box.Height())
	return e.fill(path, opts)
}

func (e *Engine) drawSelection(data []float64, eventOptions draw.Options) error {
	box, ok := geom.Bounds(data)
	if !ok {
		return nil
	}
	x, y, w, h := selectionRect(box, offset(selectionOptions), eventOptions.LineWidth)
	path := gg.NewPath()
	path.Rectangle(x, y, w, h)
	return e.strokeDashed(path, selectionOptions, selectionDash)
}

func (e *Engine) drawBoundingSelection(box geom.Line, eventOptions draw.Options) ([]Action, error) {
	off := offset(boundingSelectionOptions)
	x, y, w, h := selectionRect(box, off, eventOptions.LineWidth)

	translate := gg.NewPath()
	translate.Rectangle(x, y, w, h)
	if err := e.strokeDashed(translate, boundingSelectionOptions, boundingSelectionDash); err != nil {
		return nil, err
	}
	bounds := shift(box, off)
	actions := []Action{{Kind: ActionTranslate, Path: translate, Bounds: bounds}}

	a := float64(ResizeHandle)
	handles := []struct {
		x, y   float64
		corner Corner
	}{
		{x - a, y - a, TopLeft},
		{x + w, y - a, TopRight},
		{x + w, y + h, BottomRight},
		{x - a, y + h, BottomLeft},
	}
	for _, handle := range handles {
		path := gg.NewPath()
		path.Rectangle(handle.x, handle.y, a, a)
		if err := e.stroke(path, boundingSelectionOptions); err != nil {
			return nil, err
		}
		if err := e.fill(path, boundingSelectionOptions); err != nil {
			return nil, err
		}
		actions = append(actions, Action{Kind: ActionResize, Corner: handle.corner, Path: path, Bounds: bounds})
	}
	return actions, nil
}

func (e *Engine) stroke(path *gg.Path, opts draw.Options) error {
	return e.strokeDashed(path, opts, nil)
}

func (e *Engine) strokeDashed(path *gg.Path, opts draw.Options, dash []float64) error {
	if opts.LineWidth <= 0 {
		return nil
	}
	color, err := ParseColor(opts.Color, opts.Opacity)
	if err != nil {
		return err
	}
	return e.surface.Stroke(path, Pen{Color: color, Width: opts.LineWidth, Dash: dash})
}

func (e *Engine) fill(path *gg.Path, opts draw.Options) error {
	color, err := ParseColor(opts.Color, opts.FillOpacity)
	if err != nil {
		return err
	}
	return e.surface.Fill(path, color)
}

// selectionRect returns the x, y, w, h of the outline drawn around box.
func selectionRect(box geom.Line, off, lineWidth float64) (x, y, w, h float64) {
	x, y = box[0]+off, box[1]+off
	w, h = box.Width(), box.Height()
	fx, fy := sign(w), sign(h)
	s := geom.Round(lineWidth/2) + draw.SelectionShift
	return x - fx*s, y - fy*s, w + fx*2*s, h + fy*2*s
}

// offset centers odd line widths on pixel boundaries.
func offset(opts draw.Options) float64 {
	if math.Mod(opts.LineWidth, 2) == 1 {
		return 0.5
	}
	return 0
}

func shift(l geom.Line, off float64) geom.Line {
	return geom.Line{l[0] + off, l[1] + off, l[2] + off, l[3] + off}
}

func sign(v float64) float64 {
	if v >= 0 {
		return 1
	}
	return -1
}

// ellipseArc appends an elliptical arc from angle 0 to sweep, made of cubic
// segments of at most a quarter turn.
func ellipseArc(p *gg.Path, cx, cy, rx, ry, sweep float64) {
	p.MoveTo(cx+rx, cy)
	if sweep <= 0 {
		return
	}
	segments := int(math.Ceil(sweep / (math.Pi / 2)))
	step := sweep / float64(segments)
	k := 4.0 / 3.0 * math.Tan(step/4)

	a1 := 0.0
	for i := 0; i < segments; i++ {
		a2 := a1 + step
		cos1, sin1 := math.Cos(a1), math.Sin(a1)
		cos2, sin2 := math.Cos(a2), math.Sin(a2)
		p.CubicTo(
			cx+rx*(cos1-k*sin1), cy+ry*(sin1+k*cos1),
			cx+rx*(cos2+k*sin2), cy+ry*(sin2-k*cos2),
			cx+rx*cos2, cy+ry*sin2,
		)
		a1 = a2
	}
	if sweep >= 2*math.Pi {
		p.Close()
	}
}
