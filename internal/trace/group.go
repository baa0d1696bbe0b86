package trace

import (
	"github.com/Faultbox/sunpath/internal/solar"
)

// PanelStats records how one glazing panel was seeded.
type PanelStats struct {
	Name  string
	Area  float64
	Rays  int // area-weighted share of the requested rays
	Grid  int // samples per side minus one
	Start int // index of the panel's first sample
}

// Samples is the number of rays actually traced through the panel.
func (p PanelStats) Samples() int {
	return (p.Grid + 1) * (p.Grid + 1)
}

// Stats summarises a trace run.
type Stats struct {
	Panels   []PanelStats
	Samples  int
	Outcomes [outcomeCount]int
}

// Count returns how many rays ended in outcome o.
func (s Stats) Count(o Outcome) int {
	if o >= outcomeCount {
		return 0
	}
	return s.Outcomes[o]
}

// Group is the complete output of one trace request. It is rendered and
// disposed of as a single unit, replacing any previous group.
type Group struct {
	Sun      solar.Position
	Segments []Segment
	Stats    Stats
}

// Len returns the number of segments.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Segments)
}
