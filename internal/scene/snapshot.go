package scene

import (
	gomath "math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/sunpath/internal/logger"
	"github.com/Faultbox/sunpath/pkg/math"
)

const (
	// parallelEps is the smallest |local dir . normal| treated as non-parallel.
	parallelEps = 1e-12
	// edgeTol keeps points sampled exactly on a panel border inside the panel.
	edgeTol = 1e-9
)

// Hit describes the first surface a ray meets.
type Hit struct {
	Point    r3.Vec
	Distance float64
	Normal   r3.Vec // unit, world space, outward for boxes and +Z-derived for panels
	Tag      SurfaceTag
	Element  int // index into Snapshot.Elements
}

// Element is a surface frozen in world space.
type Element struct {
	Name   string
	Tag    SurfaceTag
	Shape  Shape
	World  math.Mat4
	Bounds AABB

	inverse math.Mat4
}

func newElement(name string, s Surface, world math.Mat4) Element {
	return Element{
		Name:    name,
		Tag:     s.Tag,
		Shape:   s.Shape,
		World:   world,
		Bounds:  TransformAABB(s.Shape.localBounds(), world),
		inverse: world.Inverse(),
	}
}

func (s Shape) localBounds() AABB {
	half := r3.Vec{X: s.Width / 2, Y: s.Height / 2}
	if s.Kind == ShapeBox {
		half.Z = s.Depth / 2
	}
	return NewAABB(r3.Scale(-1, half), half)
}

// PanelArea returns the world-space area of a panel element.
// ok is false for non-panel shapes.
func (e *Element) PanelArea() (area float64, ok bool) {
	if e.Shape.Kind != ShapePanel {
		return 0, false
	}
	return e.Shape.Width * e.Shape.Height * e.World.AxisScale(0) * e.World.AxisScale(1), true
}

// PanelPoint maps panel coordinates u, v in [0,1] to a world position.
// (0,0) is the local (-w/2, -h/2) corner.
func (e *Element) PanelPoint(u, v float64) r3.Vec {
	local := r3.Vec{
		X: -e.Shape.Width/2 + u*e.Shape.Width,
		Y: -e.Shape.Height/2 + v*e.Shape.Height,
	}
	return e.World.TransformPoint(local)
}

// Intersect tests the ray origin + t*dir for t in (tMin, tMax). dir must be unit length.
func (e *Element) Intersect(origin, dir r3.Vec, tMin, tMax float64) (Hit, bool) {
	lo := e.inverse.TransformPoint(origin)
	ld := e.inverse.TransformDirection(dir)

	var t float64
	var localNormal r3.Vec

	switch e.Shape.Kind {
	case ShapePanel:
		if gomath.Abs(ld.Z) < parallelEps {
			return Hit{}, false
		}
		t = -lo.Z / ld.Z
		if t <= tMin || t >= tMax {
			return Hit{}, false
		}
		p := r3.Add(lo, r3.Scale(t, ld))
		if gomath.Abs(p.X) > e.Shape.Width/2+edgeTol || gomath.Abs(p.Y) > e.Shape.Height/2+edgeTol {
			return Hit{}, false
		}
		localNormal = r3.Vec{Z: 1}

	case ShapeBox:
		s, ok := IntersectSlabs(lo, ld, e.Shape.localBounds())
		if !ok {
			return Hit{}, false
		}
		var axis int
		var sign float64
		switch {
		case s.Enter > tMin && s.Enter < tMax:
			t, axis, sign = s.Enter, s.EnterAxis, -1
		case s.Exit > tMin && s.Exit < tMax:
			t, axis, sign = s.Exit, s.ExitAxis, 1
		default:
			return Hit{}, false
		}
		localNormal = axisNormal(axis, sign*component(ld, axis))

	default:
		return Hit{}, false
	}

	return Hit{
		Point:    r3.Add(origin, r3.Scale(t, dir)),
		Distance: t,
		Normal:   e.World.TransformNormal(localNormal),
		Tag:      e.Tag,
	}, true
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// axisNormal returns the unit axis vector with the sign of s.
func axisNormal(axis int, s float64) r3.Vec {
	sign := 1.0
	if s < 0 {
		sign = -1
	}
	switch axis {
	case 0:
		return r3.Vec{X: sign}
	case 1:
		return r3.Vec{Y: sign}
	default:
		return r3.Vec{Z: sign}
	}
}

// Snapshot is a read-only, world-space copy of every surface in a scene.
// It is safe for concurrent Intersect calls.
type Snapshot struct {
	Elements []Element
}

// Capture flattens the tree under root. A panel has no thickness, so a zero
// scale along its local Z is ignored. Any other surface with a singular world
// transform cannot be intersected and is left out with a warning.
func Capture(root *Node) *Snapshot {
	snap := &Snapshot{}
	if root == nil {
		return snap
	}
	root.Walk(func(n *Node, world math.Mat4) {
		if n.Surface == nil {
			return
		}
		if n.Surface.Shape.Kind == ShapePanel {
			world = panelWorld(world)
		}
		if world.Determinant() == 0 {
			logger.Warn("skipping surface with singular transform",
				zap.String("surface", n.Name), zap.String("tag", n.Surface.Tag.String()))
			return
		}
		snap.Elements = append(snap.Elements, newElement(n.Name, *n.Surface, world))
	})
	return snap
}

// panelWorld replaces a collapsed local Z column with the unit normal of the
// panel plane. Transforms whose X and Y columns span a plane are then invertible.
func panelWorld(world math.Mat4) math.Mat4 {
	if world.Determinant() != 0 {
		return world
	}
	n := r3.Cross(world.Column(0), world.Column(1))
	if r3.Norm(n) == 0 {
		return world
	}
	n = r3.Unit(n)
	world[8], world[9], world[10] = n.X, n.Y, n.Z
	return world
}

// Intersect returns the nearest hit along the ray with distance greater than minDist.
func (s *Snapshot) Intersect(origin, dir r3.Vec, minDist float64) (Hit, bool) {
	dir = r3.Unit(dir)
	best := Hit{Distance: gomath.Inf(1)}
	found := false

	for i := range s.Elements {
		e := &s.Elements[i]
		if t, ok := IntersectAABB(origin, dir, e.Bounds); !ok || t-boundsPad > best.Distance {
			continue
		}
		h, ok := e.Intersect(origin, dir, minDist, best.Distance)
		if !ok {
			continue
		}
		h.Element = i
		best, found = h, true
	}
	return best, found
}
