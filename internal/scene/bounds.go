package scene

import (
	gomath "math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/sunpath/pkg/math"
)

// boundsPad keeps flat panels from collapsing to zero-thickness boxes.
const boundsPad = 1e-6

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min r3.Vec
	Max r3.Vec
}

// NewAABB creates an AABB from two corners in any order.
func NewAABB(a, b r3.Vec) AABB {
	return AABB{
		Min: r3.Vec{X: gomath.Min(a.X, b.X), Y: gomath.Min(a.Y, b.Y), Z: gomath.Min(a.Z, b.Z)},
		Max: r3.Vec{X: gomath.Max(a.X, b.X), Y: gomath.Max(a.Y, b.Y), Z: gomath.Max(a.Z, b.Z)},
	}
}

// TransformAABB returns the world bounds of a local box under m, padded slightly.
func TransformAABB(local AABB, m math.Mat4) AABB {
	out := AABB{
		Min: r3.Vec{X: gomath.Inf(1), Y: gomath.Inf(1), Z: gomath.Inf(1)},
		Max: r3.Vec{X: gomath.Inf(-1), Y: gomath.Inf(-1), Z: gomath.Inf(-1)},
	}
	for i := 0; i < 8; i++ {
		corner := local.Min
		if i&1 != 0 {
			corner.X = local.Max.X
		}
		if i&2 != 0 {
			corner.Y = local.Max.Y
		}
		if i&4 != 0 {
			corner.Z = local.Max.Z
		}
		p := m.TransformPoint(corner)
		out.Min = r3.Vec{X: gomath.Min(out.Min.X, p.X), Y: gomath.Min(out.Min.Y, p.Y), Z: gomath.Min(out.Min.Z, p.Z)}
		out.Max = r3.Vec{X: gomath.Max(out.Max.X, p.X), Y: gomath.Max(out.Max.Y, p.Y), Z: gomath.Max(out.Max.Z, p.Z)}
	}
	pad := r3.Vec{X: boundsPad, Y: boundsPad, Z: boundsPad}
	out.Min = r3.Sub(out.Min, pad)
	out.Max = r3.Add(out.Max, pad)
	return out
}

// Slab is the result of a ray/box slab test.
type Slab struct {
	Enter, Exit         float64
	EnterAxis, ExitAxis int // 0=X, 1=Y, 2=Z
}

// IntersectSlabs runs the slab test of the ray origin + t*dir against box.
// dir need not be normalized; t is in units of dir.
func IntersectSlabs(origin, dir r3.Vec, box AABB) (Slab, bool) {
	s := Slab{Enter: gomath.Inf(-1), Exit: gomath.Inf(1), EnterAxis: -1, ExitAxis: -1}

	o := [3]float64{origin.X, origin.Y, origin.Z}
	d := [3]float64{dir.X, dir.Y, dir.Z}
	lo := [3]float64{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float64{box.Max.X, box.Max.Y, box.Max.Z}

	for axis := 0; axis < 3; axis++ {
		if d[axis] == 0 {
			// Parallel to this slab: must already be inside it
			if o[axis] < lo[axis] || o[axis] > hi[axis] {
				return Slab{}, false
			}
			continue
		}
		t1 := (lo[axis] - o[axis]) / d[axis]
		t2 := (hi[axis] - o[axis]) / d[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > s.Enter {
			s.Enter, s.EnterAxis = t1, axis
		}
		if t2 < s.Exit {
			s.Exit, s.ExitAxis = t2, axis
		}
	}

	if s.Exit < s.Enter || s.Exit < 0 {
		return Slab{}, false
	}
	return s, true
}

// IntersectAABB tests ray intersection with box and returns the entry distance,
// or the exit distance if the ray starts inside.
func IntersectAABB(origin, dir r3.Vec, box AABB) (t float64, hit bool) {
	s, ok := IntersectSlabs(origin, dir, box)
	if !ok {
		return 0, false
	}
	if s.Enter < 0 {
		return s.Exit, true
	}
	return s.Enter, true
}
