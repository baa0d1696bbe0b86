// Package glazing finds the window panes in a scene and measures them.
package glazing

import (
	"github.com/Faultbox/sunpath/internal/scene"
)

// AreaEpsilon is the floor for the total glazing area so that area ratios
// never divide by zero.
const AreaEpsilon = 1e-6

// Panel is a glazing surface selected for ray seeding.
type Panel struct {
	Element *scene.Element
	Area    float64 // world-space area
}

// FindPanels snapshots root and returns its glazing panels.
func FindPanels(root *scene.Node) ([]Panel, float64) {
	return FindPanelsIn(scene.Capture(root))
}

// FindPanelsIn returns every glazing-tagged rectangle in snap with a positive
// area, in snapshot order, together with the total area. The total is never
// below AreaEpsilon, even when no panel is found.
func FindPanelsIn(snap *scene.Snapshot) ([]Panel, float64) {
	var panels []Panel
	total := 0.0
	for i := range snap.Elements {
		e := &snap.Elements[i]
		if e.Tag != scene.Glazing {
			continue
		}
		area, ok := e.PanelArea()
		if !ok || area <= 0 {
			continue
		}
		panels = append(panels, Panel{Element: e, Area: area})
		total += area
	}
	return panels, max(total, AreaEpsilon)
}
