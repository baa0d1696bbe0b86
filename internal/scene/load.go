package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/sunpath/pkg/math"
)

// file is the on-disk layout of a room scene.
//
//	name: office
//	nodes:
//	  - name: floor
//	    rotation: [-90, 0, 0]
//	    surface: {tag: opaque, panel: [6, 4]}
//	  - name: south-window
//	    position: [0, 1.5, 2]
//	    window: {width: 2, height: 1.2, frame: 0.06}
type file struct {
	Name  string     `yaml:"name"`
	Nodes []nodeFile `yaml:"nodes"`
}

type nodeFile struct {
	Name     string       `yaml:"name"`
	Position []float64    `yaml:"position"`
	Rotation []float64    `yaml:"rotation"` // Euler degrees, X then Y then Z
	Scale    []float64    `yaml:"scale"`
	Surface  *surfaceFile `yaml:"surface"`
	Window   *windowFile  `yaml:"window"`
	Children []nodeFile   `yaml:"children"`
}

type surfaceFile struct {
	Tag   SurfaceTag `yaml:"tag"`
	Panel []float64  `yaml:"panel"` // [width, height]
	Box   []float64  `yaml:"box"`   // [width, height, depth]
}

// windowFile expands into a glazing pane surrounded by four frame bars.
type windowFile struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Frame  float64 `yaml:"frame"`
}

// Load reads a scene YAML file. The root node is named after the file
// unless the document sets a name.
func Load(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	root, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if root.Name == "" {
		root.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return root, nil
}

// Parse decodes a scene document.
func Parse(data []byte) (*Node, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}

	root := NewNode(f.Name)
	for i := range f.Nodes {
		child, err := f.Nodes[i].build()
		if err != nil {
			return nil, err
		}
		root.Add(child)
	}
	return root, nil
}

func (nf *nodeFile) build() (*Node, error) {
	n := NewNode(nf.Name)

	var err error
	if n.Transform.Position, err = vec3(nf.Name, "position", nf.Position, r3.Vec{}); err != nil {
		return nil, err
	}
	rot, err := vec3(nf.Name, "rotation", nf.Rotation, r3.Vec{})
	if err != nil {
		return nil, err
	}
	n.Transform.Rotation = math.QuatFromEulerDegrees(rot.X, rot.Y, rot.Z)
	if n.Transform.Scale, err = vec3(nf.Name, "scale", nf.Scale, r3.Vec{X: 1, Y: 1, Z: 1}); err != nil {
		return nil, err
	}

	if nf.Surface != nil && nf.Window != nil {
		return nil, fmt.Errorf("%w: node %q has both surface and window", ErrInvalidScene, nf.Name)
	}
	if nf.Surface != nil {
		if n.Surface, err = nf.Surface.build(nf.Name); err != nil {
			return nil, err
		}
	}
	if nf.Window != nil {
		parts, err := nf.Window.build(nf.Name)
		if err != nil {
			return nil, err
		}
		n.Add(parts...)
	}

	for i := range nf.Children {
		child, err := nf.Children[i].build()
		if err != nil {
			return nil, err
		}
		n.Add(child)
	}
	return n, nil
}

func (sf *surfaceFile) build(owner string) (*Surface, error) {
	switch {
	case sf.Panel != nil && sf.Box != nil:
		return nil, fmt.Errorf("%w: node %q surface has both panel and box", ErrInvalidScene, owner)
	case sf.Panel != nil:
		if err := dims(owner, "panel", sf.Panel, 2); err != nil {
			return nil, err
		}
		return &Surface{Tag: sf.Tag, Shape: Shape{Kind: ShapePanel, Width: sf.Panel[0], Height: sf.Panel[1]}}, nil
	case sf.Box != nil:
		if err := dims(owner, "box", sf.Box, 3); err != nil {
			return nil, err
		}
		return &Surface{Tag: sf.Tag, Shape: Shape{Kind: ShapeBox, Width: sf.Box[0], Height: sf.Box[1], Depth: sf.Box[2]}}, nil
	default:
		return nil, fmt.Errorf("%w: node %q surface needs a panel or box", ErrInvalidScene, owner)
	}
}

func (wf *windowFile) build(owner string) ([]*Node, error) {
	if wf.Width <= 0 || wf.Height <= 0 || wf.Frame < 0 {
		return nil, fmt.Errorf("%w: node %q window needs positive width/height and non-negative frame", ErrInvalidScene, owner)
	}
	glass := NewPanel(owner+"/glass", Glazing, wf.Width, wf.Height)
	if wf.Frame == 0 {
		return []*Node{glass}, nil
	}

	f := wf.Frame
	outerW := wf.Width + 2*f
	halfW, halfH := (wf.Width+f)/2, (wf.Height+f)/2
	return []*Node{
		glass,
		NewBox(owner+"/frame-top", Frame, outerW, f, f).At(0, halfH, 0),
		NewBox(owner+"/frame-bottom", Frame, outerW, f, f).At(0, -halfH, 0),
		NewBox(owner+"/frame-left", Frame, f, wf.Height, f).At(-halfW, 0, 0),
		NewBox(owner+"/frame-right", Frame, f, wf.Height, f).At(halfW, 0, 0),
	}, nil
}

func vec3(owner, field string, v []float64, def r3.Vec) (r3.Vec, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
	default:
		return r3.Vec{}, fmt.Errorf("%w: node %q %s needs 3 components, got %d", ErrInvalidScene, owner, field, len(v))
	}
}

func dims(owner, field string, v []float64, want int) error {
	if len(v) != want {
		return fmt.Errorf("%w: node %q %s needs %d sizes, got %d", ErrInvalidScene, owner, field, want, len(v))
	}
	for _, d := range v {
		if d < 0 {
			return fmt.Errorf("%w: node %q %s has negative size %g", ErrInvalidScene, owner, field, d)
		}
	}
	return nil
}
