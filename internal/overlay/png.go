package overlay

import (
	"errors"
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Faultbox/sunpath/internal/trace"
)

// ErrUnknownPlane is returned for a projection plane other than xz, xy or zy.
var ErrUnknownPlane = errors.New("unknown projection plane")

// Plane selects the two scene axes a preview is drawn on.
type Plane string

const (
	PlanePlan  Plane = "xz" // looking down, north up
	PlaneFront Plane = "xy" // looking north
	PlaneSide  Plane = "zy" // looking west
)

// ParsePlane validates a plane name.
func ParsePlane(s string) (Plane, error) {
	switch p := Plane(strings.ToLower(strings.TrimSpace(s))); p {
	case PlanePlan, PlaneFront, PlaneSide:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlane, s)
}

func (p Plane) project(v r3.Vec) (x, y float64) {
	switch p {
	case PlaneFront:
		return v.X, v.Y
	case PlaneSide:
		return v.Z, v.Y
	default:
		return v.X, -v.Z
	}
}

func (p Plane) labels() (x, y string) {
	switch p {
	case PlaneFront:
		return "east (x)", "up (y)"
	case PlaneSide:
		return "south (z)", "up (y)"
	default:
		return "east (x)", "north (-z)"
	}
}

// segmentLines draws trace segments with their palette colors.
type segmentLines struct {
	plane    Plane
	segments []trace.Segment
	width    vg.Length
}

// Plot implements plot.Plotter.
func (s *segmentLines) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	for _, seg := range s.segments {
		x0, y0 := s.plane.project(seg.Start)
		x1, y1 := s.plane.project(seg.End)
		sty := draw.LineStyle{Color: seg.Color(), Width: s.width}
		c.StrokeLine2(sty, trX(x0), trY(y0), trX(x1), trY(y1))
	}
}

// DataRange implements plot.DataRanger.
func (s *segmentLines) DataRange() (xmin, xmax, ymin, ymax float64) {
	xys := make(plotter.XYs, 0, 2*len(s.segments))
	for _, seg := range s.segments {
		for _, v := range []r3.Vec{seg.Start, seg.End} {
			x, y := s.plane.project(v)
			xys = append(xys, plotter.XY{X: x, Y: y})
		}
	}
	return plotter.XYRange(xys)
}

// Plot builds a 2D preview of the overlay projected onto plane.
func (o *Overlay) Plot(plane Plane) (*plot.Plot, error) {
	if _, err := ParsePlane(string(plane)); err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = "sun ray paths (" + string(plane) + ")"
	p.X.Label.Text, p.Y.Label.Text = plane.labels()
	p.Add(plotter.NewGrid())

	if segs := o.drawn(); len(segs) > 0 {
		p.Add(&segmentLines{plane: plane, segments: segs, width: vg.Points(0.6)})
	}

	if pos, ok := o.Marker(); ok {
		x, y := plane.project(pos)
		sc, err := plotter.NewScatter(plotter.XYs{{X: x, Y: y}})
		if err != nil {
			return nil, fmt.Errorf("sun marker: %w", err)
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(5)
		sc.GlyphStyle.Color = color.RGBA{R: 0xff, G: 0xc0, A: 0xff}
		p.Add(sc)
		p.Legend.Add("sun", sc)
	}
	return p, nil
}

// WritePNG renders the preview to path. The format follows the file
// extension, as plot.Save does.
func (o *Overlay) WritePNG(path string, plane Plane) error {
	p, err := o.Plot(plane)
	if err != nil {
		return err
	}
	if err := p.Save(20*vg.Centimeter, 20*vg.Centimeter, path); err != nil {
		return fmt.Errorf("saving preview %s: %w", path, err)
	}
	return nil
}
