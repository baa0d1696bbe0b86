package trace

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/sunpath/internal/scene"
)

const (
	// Epsilon is how far a ray is nudged forward before each query, and the
	// minimum accepted hit distance, so it does not re-hit the surface it sits on.
	Epsilon = 1e-3

	// segmentSlack allows a few exterior bounces before a ray reaches glazing.
	segmentSlack = 5
)

// Segment is one straight piece of a ray path.
type Segment struct {
	Start, End r3.Vec
	ColorIndex int
}

// Intersector finds the first surface along a ray beyond minDist.
// scene.Snapshot implements it.
type Intersector interface {
	Intersect(origin, dir r3.Vec, minDist float64) (scene.Hit, bool)
}

// Outcome is the state a ray path ended in.
type Outcome uint8

const (
	// Exhausted means the interior bounce budget was used up.
	Exhausted Outcome = iota
	// Escaped means the ray left the scene.
	Escaped
	// BlockedByFrame means the ray struck a window frame from outside.
	BlockedByFrame
	// SegmentCap means the ray hit the per-ray segment limit.
	SegmentCap

	outcomeCount
)

func (o Outcome) String() string {
	switch o {
	case Exhausted:
		return "exhausted"
	case Escaped:
		return "escaped"
	case BlockedByFrame:
		return "blocked-by-frame"
	case SegmentCap:
		return "segment-cap"
	default:
		return "unknown"
	}
}

// MaxSegments is the most segments a single ray can produce.
func MaxSegments(maxBounces int) int {
	return maxBounces + segmentSlack
}

type rayState struct {
	position  r3.Vec
	direction r3.Vec
	inside    bool
	bounces   int
	segments  []Segment
}

// Trace follows one ray from origin along direction and returns its segments.
func Trace(origin, direction r3.Vec, q Intersector, maxBounces int) []Segment {
	segs, _ := TraceWithOutcome(origin, direction, q, maxBounces)
	return segs
}

// TraceWithOutcome is Trace that also reports why the path ended.
//
// A ray starts outside. Crossing glazing toggles inside and never bends the
// ray. Hitting a frame from outside ends the path. Any other hit reflects the
// ray, and counts as a bounce only while inside.
func TraceWithOutcome(origin, direction r3.Vec, q Intersector, maxBounces int) ([]Segment, Outcome) {
	s := rayState{
		position:  origin,
		direction: r3.Unit(direction),
	}

	for limit := MaxSegments(maxBounces); len(s.segments) < limit; {
		if s.bounces >= maxBounces {
			return s.segments, Exhausted
		}

		from := r3.Add(s.position, r3.Scale(Epsilon, s.direction))
		hit, ok := q.Intersect(from, s.direction, Epsilon)
		if !ok {
			return s.segments, Escaped
		}

		s.segments = append(s.segments, Segment{
			Start:      s.position,
			End:        hit.Point,
			ColorIndex: ColorIndex(s.inside, s.bounces),
		})
		s.position = hit.Point

		switch hit.Tag {
		case scene.Glazing:
			s.inside = !s.inside
		case scene.Frame:
			if !s.inside {
				return s.segments, BlockedByFrame
			}
			s.bounce(hit.Normal)
		case scene.Opaque:
			s.bounce(hit.Normal)
		}
	}
	return s.segments, SegmentCap
}

func (s *rayState) bounce(normal r3.Vec) {
	if s.inside {
		s.bounces++
	}
	s.direction = Reflect(s.direction, normal)
}

// Reflect mirrors d about the unit normal n.
func Reflect(d, n r3.Vec) r3.Vec {
	return r3.Sub(d, r3.Scale(2*r3.Dot(d, n), n))
}
