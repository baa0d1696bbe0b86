// Package scene holds the room model that rays are traced against.
//
// A scene is a tree of Nodes, each with a local Transform and an optional
// Surface. Tracing never reads the tree directly: it works on a Snapshot,
// a flattened world-space copy taken once per trace request.
package scene

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/sunpath/pkg/math"
)

// ErrInvalidScene is returned for malformed scene descriptions.
var ErrInvalidScene = errors.New("invalid scene")

// ShapeKind identifies the geometry of a surface.
type ShapeKind uint8

const (
	// ShapePanel is a rectangle in the local XY plane centred on the origin, normal +Z.
	ShapePanel ShapeKind = iota
	// ShapeBox is an axis-aligned box in local space centred on the origin.
	ShapeBox
)

// Shape is the local geometry of a surface.
type Shape struct {
	Kind   ShapeKind
	Width  float64 // local X extent
	Height float64 // local Y extent
	Depth  float64 // local Z extent, boxes only
}

// Surface is the intersectable part of a node.
type Surface struct {
	Tag   SurfaceTag
	Shape Shape
}

// Transform places a node relative to its parent.
type Transform struct {
	Position r3.Vec
	Rotation math.Quat
	Scale    r3.Vec
}

// IdentityTransform returns a transform that leaves geometry unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    r3.Vec{X: 1, Y: 1, Z: 1},
	}
}

// Matrix returns the local-to-parent matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.Compose(t.Position, t.Rotation, t.Scale)
}

// Node is an element of the scene tree.
type Node struct {
	Name      string
	Transform Transform
	Surface   *Surface
	Children  []*Node
}

// NewNode creates an empty group node with an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: IdentityTransform()}
}

// NewPanel creates a rectangular surface node of the given size.
func NewPanel(name string, tag SurfaceTag, width, height float64) *Node {
	n := NewNode(name)
	n.Surface = &Surface{Tag: tag, Shape: Shape{Kind: ShapePanel, Width: width, Height: height}}
	return n
}

// NewBox creates a box surface node of the given size.
func NewBox(name string, tag SurfaceTag, width, height, depth float64) *Node {
	n := NewNode(name)
	n.Surface = &Surface{Tag: tag, Shape: Shape{Kind: ShapeBox, Width: width, Height: height, Depth: depth}}
	return n
}

// At sets the node position and returns the node for chaining.
func (n *Node) At(x, y, z float64) *Node {
	n.Transform.Position = r3.Vec{X: x, Y: y, Z: z}
	return n
}

// Rotated sets the node rotation from Euler degrees and returns the node.
func (n *Node) Rotated(x, y, z float64) *Node {
	n.Transform.Rotation = math.QuatFromEulerDegrees(x, y, z)
	return n
}

// Scaled sets the node scale and returns the node.
func (n *Node) Scaled(x, y, z float64) *Node {
	n.Transform.Scale = r3.Vec{X: x, Y: y, Z: z}
	return n
}

// Add appends children and returns the node.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Walk visits n and its descendants depth-first with their world matrices.
func (n *Node) Walk(fn func(node *Node, world math.Mat4)) {
	n.walk(math.Identity(), fn)
}

func (n *Node) walk(parent math.Mat4, fn func(*Node, math.Mat4)) {
	world := parent.Mul(n.Transform.Matrix())
	fn(n, world)
	for _, c := range n.Children {
		c.walk(world, fn)
	}
}
