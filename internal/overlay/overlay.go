// Package overlay holds what is currently displayed for a trace: the segment
// group, its visibility and the sun marker.
//
// An Overlay is owned by the caller that drives tracing and is not safe for
// concurrent use.
package overlay

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/sunpath/internal/logger"
	"github.com/Faultbox/sunpath/internal/solar"
	"github.com/Faultbox/sunpath/internal/trace"
)

// DefaultMarkerDistance is how far from the origin the sun marker is drawn.
const DefaultMarkerDistance = 20.0

// Overlay is the displayed trace state.
type Overlay struct {
	markerDistance float64

	group   *trace.Group
	visible bool

	marker    r3.Vec
	hasMarker bool

	generation int
}

// New creates an empty, visible overlay. A markerDistance <= 0 selects
// DefaultMarkerDistance.
func New(markerDistance float64) *Overlay {
	if markerDistance <= 0 {
		markerDistance = DefaultMarkerDistance
	}
	return &Overlay{markerDistance: markerDistance, visible: true}
}

// Replace disposes of the current group and displays g in its place.
// The sun marker follows g's sun position. A nil g is the same as Clear.
func (o *Overlay) Replace(g *trace.Group) {
	if g == nil {
		o.Clear()
		return
	}
	if o.group != nil {
		logger.Named("overlay").Debug("disposing previous trace",
			zap.Int("segments", o.group.Len()))
	}
	o.group = g
	o.generation++
	o.SetSun(g.Sun)
}

// Clear removes the current group. The sun marker is kept.
func (o *Overlay) Clear() {
	if o.group == nil {
		return
	}
	o.group = nil
	o.generation++
}

// SetSun places the sun marker along p's direction, or removes it when the
// sun is below the horizon.
func (o *Overlay) SetSun(p solar.Position) {
	o.marker, o.hasMarker = solar.MarkerPosition(p, o.markerDistance)
}

// SetVisible shows or hides the current group without recomputing it.
func (o *Overlay) SetVisible(visible bool) {
	o.visible = visible
}

// Visible reports whether the group is shown.
func (o *Overlay) Visible() bool {
	return o.visible
}

// Group returns the current group, or nil.
func (o *Overlay) Group() *trace.Group {
	return o.group
}

// Marker returns the sun marker position; ok is false if there is none.
func (o *Overlay) Marker() (pos r3.Vec, ok bool) {
	return o.marker, o.hasMarker
}

// Generation increases every time the displayed group changes.
func (o *Overlay) Generation() int {
	return o.generation
}

// drawn returns the segments that should be rendered.
func (o *Overlay) drawn() []trace.Segment {
	if !o.visible || o.group == nil {
		return nil
	}
	return o.group.Segments
}
