// Package export writes a document to portable formats.
package export

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"CollabBoard/internal/draw"
	"CollabBoard/internal/geom"
	"CollabBoard/internal/render"
)

// Page describes the exported page, in canvas pixels.
type Page struct {
	Width, Height int
	Background    draw.Background
	// Offset is added to event coordinates, for documents drawn around
	// the canvas center.
	Offset geom.Point
}

// WritePDF draws events as vector paths on a single page. Events that
// cannot be drawn are skipped and reported in the returned error.
func WritePDF(w io.Writer, events []draw.Event, page Page) error {
	pdf, err := newPDF(events, page)
	if pdf == nil {
		return err
	}
	if outErr := pdf.Output(w); outErr != nil {
		return errors.Join(err, fmt.Errorf("write pdf: %w", outErr))
	}
	return err
}

// SavePDF writes the page to path.
func SavePDF(path string, events []draw.Event, page Page) error {
	pdf, err := newPDF(events, page)
	if pdf == nil {
		return err
	}
	if outErr := pdf.OutputFileAndClose(path); outErr != nil {
		return errors.Join(err, fmt.Errorf("write pdf %s: %w", path, outErr))
	}
	return err
}

func newPDF(events []draw.Event, page Page) (*gofpdf.Fpdf, error) {
	if page.Width <= 0 || page.Height <= 0 {
		return nil, fmt.Errorf("invalid page size %dx%d", page.Width, page.Height)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: float64(page.Width), Ht: float64(page.Height)},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")

	p := painter{pdf: pdf, page: page}
	var errs []error
	for _, bg := range draw.BackgroundEvents(draw.NewSeededGenerator(0), "", page.Background) {
		errs = append(errs, p.background(bg.Options))
	}
	for _, e := range events {
		if err := p.event(draw.Translate(e, page.Offset[0], page.Offset[1])); err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", e.ID, err))
		}
	}
	return pdf, errors.Join(errs...)
}

type painter struct {
	pdf  *gofpdf.Fpdf
	page Page
}

func (p painter) event(e draw.Event) error {
	if err := e.Validate(); err != nil {
		return err
	}
	o := e.Options
	d := e.Data

	switch e.Type {
	case draw.TypePoint:
		if err := p.stroke(o); err != nil {
			return err
		}
		p.pdf.Circle(d[0], d[1], 1, "D")
	case draw.TypeLine:
		if err := p.stroke(o); err != nil {
			return err
		}
		p.pdf.Line(d[0], d[1], d[2], d[3])
	case draw.TypeLineSerie:
		if err := p.stroke(o); err != nil {
			return err
		}
		p.pdf.MoveTo(d[0], d[1])
		for i := 2; i+1 < len(d); i += 2 {
			p.pdf.LineTo(d[i], d[i+1])
		}
		p.pdf.DrawPath("D")
	case draw.TypeRectangle:
		box := geom.Normalize(geom.LineOf(d))
		if o.FillOpacity > 0 {
			if err := p.fill(o); err != nil {
				return err
			}
			lw := o.LineWidth
			p.pdf.Rect(box[0]+lw/2, box[1]+lw/2, math.Max(0, box.Width()-lw), math.Max(0, box.Height()-lw), "F")
		}
		if err := p.stroke(o); err != nil {
			return err
		}
		p.pdf.Rect(box[0], box[1], box.Width(), box.Height(), "D")
	case draw.TypeEllipse:
		box := geom.Normalize(geom.LineOf(d))
		cx, cy := box[0]+box.Width()/2, box[1]+box.Height()/2
		rx, ry := box.Width()/2, box.Height()/2
		if o.Angle != nil {
			if err := p.stroke(o); err != nil {
				return err
			}
			p.pdf.Arc(cx, cy, rx, ry, 0, 0, *o.Angle*180/math.Pi, "D")
			break
		}
		if o.FillOpacity > 0 {
			if err := p.fill(o); err != nil {
				return err
			}
			lw := o.LineWidth
			p.pdf.Ellipse(cx, cy, math.Max(0, rx-lw/2), math.Max(0, ry-lw/2), 0, "F")
		}
		if err := p.stroke(o); err != nil {
			return err
		}
		p.pdf.Ellipse(cx, cy, rx, ry, 0, "D")
	case draw.TypeBackground:
		return p.background(o)
	case draw.TypeClear, draw.TypeSelection, draw.TypeBoundingSelection:
		// Not part of the printed document.
	default:
		return fmt.Errorf("%w: %q", draw.ErrUnknownType, e.Type)
	}
	return p.pdf.Error()
}

func (p painter) background(o draw.Options) error {
	if err := p.fill(o); err != nil {
		return err
	}
	p.pdf.Rect(0, 0, float64(p.page.Width), float64(p.page.Height), "F")
	return p.pdf.Error()
}

func (p painter) stroke(o draw.Options) error {
	r, g, b, err := rgb(o.Color)
	if err != nil {
		return err
	}
	p.pdf.SetDrawColor(r, g, b)
	p.pdf.SetLineWidth(o.LineWidth)
	p.pdf.SetAlpha(clamp(o.Opacity), "Normal")
	return nil
}

func (p painter) fill(o draw.Options) error {
	r, g, b, err := rgb(o.Color)
	if err != nil {
		return err
	}
	p.pdf.SetFillColor(r, g, b)
	p.pdf.SetAlpha(clamp(o.FillOpacity), "Normal")
	return nil
}

func rgb(color string) (r, g, b int, err error) {
	c, err := render.ParseColor(color, 1)
	if err != nil {
		return 0, 0, 0, err
	}
	return int(geom.Round(c.R * 255)), int(geom.Round(c.G * 255)), int(geom.Round(c.B * 255)), nil
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
