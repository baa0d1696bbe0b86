// Package trace follows sun rays through the glazing of a room.
//
// Run seeds rays on every glazing panel in proportion to its area and traces
// each through a frozen snapshot of the scene. Trace implements the per-ray
// inside/outside bounce state machine.
package trace

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/sunpath/internal/glazing"
	"github.com/Faultbox/sunpath/internal/logger"
	"github.com/Faultbox/sunpath/internal/scene"
	"github.com/Faultbox/sunpath/internal/solar"
)

// DefaultSourceDistance is how far outside the glazing each ray starts.
const DefaultSourceDistance = 50.0

var (
	// ErrInvalidInput is returned for a malformed request.
	ErrInvalidInput = errors.New("invalid trace request")
	// ErrSunBelowHorizon is returned when there is no sun to trace from.
	ErrSunBelowHorizon = errors.New("sun is below the horizon")
	// ErrNoGlazing is returned when the scene has no usable glazing.
	ErrNoGlazing = errors.New("no glazing in scene")
)

// Request holds the tracing parameters.
type Request struct {
	RayCount   int // total rays distributed over all glazing, > 0
	MaxBounces int // interior reflection budget per ray, >= 0

	// Workers bounds concurrent ray tracing. Values <= 1 trace on the
	// calling goroutine.
	Workers int

	// SourceDistance is how far back along the sun direction rays start.
	// Zero means DefaultSourceDistance.
	SourceDistance float64
}

// Validate reports whether the request can be traced.
func (r Request) Validate() error {
	if r.RayCount <= 0 {
		return fmt.Errorf("%w: ray count must be positive, got %d", ErrInvalidInput, r.RayCount)
	}
	if r.MaxBounces < 0 {
		return fmt.Errorf("%w: max bounces must not be negative, got %d", ErrInvalidInput, r.MaxBounces)
	}
	if r.SourceDistance < 0 || math.IsNaN(r.SourceDistance) || math.IsInf(r.SourceDistance, 0) {
		return fmt.Errorf("%w: source distance %v", ErrInvalidInput, r.SourceDistance)
	}
	return nil
}

func (r Request) sourceDistance() float64 {
	if r.SourceDistance == 0 {
		return DefaultSourceDistance
	}
	return r.SourceDistance
}

type sample struct {
	origin r3.Vec
}

// Run traces the scene under root for the given sun position.
//
// The scene is captured once up front; edits to root while Run executes do
// not affect the result. ErrSunBelowHorizon and ErrNoGlazing are expected
// conditions: they are logged as warnings and no group is returned.
func Run(req Request, sun solar.Position, root *scene.Node) (*Group, error) {
	log := logger.Named("trace")

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !sun.AboveHorizon() {
		log.Warn("sun below horizon, nothing to trace",
			zap.Float64("altitude", sun.AltitudeDeg))
		return nil, ErrSunBelowHorizon
	}

	snap := scene.Capture(root)
	panels, total := glazing.FindPanelsIn(snap)
	if len(panels) == 0 {
		log.Warn("no glazing panels found", zap.Int("surfaces", len(snap.Elements)))
		return nil, ErrNoGlazing
	}

	group := &Group{Sun: sun}
	samples := seed(req, sun.Direction, panels, total, &group.Stats)
	for _, p := range group.Stats.Panels {
		log.Debug("seeded panel",
			zap.String("panel", p.Name),
			zap.Float64("area", p.Area),
			zap.Int("rays", p.Rays),
			zap.Int("grid", p.Grid))
	}

	dir := r3.Scale(-1, sun.Direction)
	paths := make([][]Segment, len(samples))
	outcomes := make([]Outcome, len(samples))
	traceOne := func(i int) {
		paths[i], outcomes[i] = TraceWithOutcome(samples[i].origin, dir, snap, req.MaxBounces)
	}

	if req.Workers <= 1 {
		for i := range samples {
			traceOne(i)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(req.Workers)
		for i := range samples {
			i := i
			g.Go(func() error {
				traceOne(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	n := 0
	for _, p := range paths {
		n += len(p)
	}
	group.Segments = make([]Segment, 0, n)
	for i, p := range paths {
		group.Segments = append(group.Segments, p...)
		group.Stats.Outcomes[outcomes[i]]++
	}
	group.Stats.Samples = len(samples)

	log.Info("trace complete",
		zap.Int("panels", len(panels)),
		zap.Float64("glazingArea", total),
		zap.Int("rays", len(samples)),
		zap.Int("segments", len(group.Segments)),
		zap.Int("escaped", group.Stats.Count(Escaped)),
		zap.Int("blocked", group.Stats.Count(BlockedByFrame)),
		zap.Int("exhausted", group.Stats.Count(Exhausted)))
	return group, nil
}

// seed lays an evenly spaced grid of ray origins over every panel.
func seed(req Request, sunDir r3.Vec, panels []glazing.Panel, total float64, stats *Stats) []sample {
	back := r3.Scale(req.sourceDistance(), sunDir)

	var samples []sample
	for _, p := range panels {
		rays := max(1, int(math.Round(float64(req.RayCount)*p.Area/total)))
		grid := max(1, int(math.Floor(math.Sqrt(float64(rays)))))

		stats.Panels = append(stats.Panels, PanelStats{
			Name:  p.Element.Name,
			Area:  p.Area,
			Rays:  rays,
			Grid:  grid,
			Start: len(samples),
		})

		for i := 0; i <= grid; i++ {
			for j := 0; j <= grid; j++ {
				point := p.Element.PanelPoint(float64(i)/float64(grid), float64(j)/float64(grid))
				samples = append(samples, sample{origin: r3.Add(point, back)})
			}
		}
	}
	return samples
}
