package overlay

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/sunpath/internal/trace"
)

// Document is the JSON form of an overlay.
type Document struct {
	Visible  bool        `json:"visible"`
	Sun      *Sun        `json:"sun,omitempty"`
	Marker   *[3]float64 `json:"marker,omitempty"`
	Palette  []string    `json:"palette"`
	Segments []Segment   `json:"segments"`
	Stats    *Stats      `json:"stats,omitempty"`
}

// Sun is the solar position a trace was made for.
type Sun struct {
	AltitudeDeg float64    `json:"altitudeDeg"`
	AzimuthDeg  float64    `json:"azimuthDeg"`
	Direction   [3]float64 `json:"direction"`
}

// Segment is one exported line segment.
type Segment struct {
	Start      [3]float64 `json:"start"`
	End        [3]float64 `json:"end"`
	ColorIndex int        `json:"colorIndex"`
	Color      string     `json:"color"`
}

// Stats is the exported trace summary.
type Stats struct {
	Samples  int            `json:"samples"`
	Panels   []PanelStats   `json:"panels"`
	Outcomes map[string]int `json:"outcomes"`
}

// PanelStats is the exported seeding of one panel.
type PanelStats struct {
	Name    string  `json:"name"`
	Area    float64 `json:"area"`
	Rays    int     `json:"rays"`
	Samples int     `json:"samples"`
}

// Document builds the exported form of the overlay. Hidden overlays export
// no segments.
func (o *Overlay) Document() Document {
	doc := Document{
		Visible:  o.visible,
		Segments: []Segment{},
	}
	for _, c := range trace.Palette {
		doc.Palette = append(doc.Palette, hexColor(c))
	}
	if pos, ok := o.Marker(); ok {
		m := vec(pos)
		doc.Marker = &m
	}
	if o.group == nil {
		return doc
	}

	sun := o.group.Sun
	doc.Sun = &Sun{
		AltitudeDeg: sun.AltitudeDeg,
		AzimuthDeg:  sun.AzimuthDeg,
		Direction:   vec(sun.Direction),
	}
	for _, s := range o.drawn() {
		doc.Segments = append(doc.Segments, Segment{
			Start:      vec(s.Start),
			End:        vec(s.End),
			ColorIndex: s.ColorIndex,
			Color:      hexColor(s.Color()),
		})
	}

	st := o.group.Stats
	doc.Stats = &Stats{
		Samples:  st.Samples,
		Outcomes: make(map[string]int),
	}
	for _, p := range st.Panels {
		doc.Stats.Panels = append(doc.Stats.Panels, PanelStats{
			Name:    p.Name,
			Area:    p.Area,
			Rays:    p.Rays,
			Samples: p.Samples(),
		})
	}
	for _, oc := range []trace.Outcome{trace.Exhausted, trace.Escaped, trace.BlockedByFrame, trace.SegmentCap} {
		doc.Stats.Outcomes[oc.String()] = st.Count(oc)
	}
	return doc
}

// WriteJSON writes the overlay as indented JSON.
func (o *Overlay) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o.Document()); err != nil {
		return fmt.Errorf("encoding overlay: %w", err)
	}
	return nil
}

func vec(v r3.Vec) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
