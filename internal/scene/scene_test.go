package scene

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/sunpath/internal/logger"
)

const tol = 1e-9

func near(a, b r3.Vec) bool {
	return r3.Norm(r3.Sub(a, b)) < 1e-6
}

func TestParseSurfaceTag(t *testing.T) {
	tests := []struct {
		in      string
		want    SurfaceTag
		wantErr bool
	}{
		{"glazing", Glazing, false},
		{"GLAZING", Glazing, false},
		{" Frame ", Frame, false},
		{"opaque", Opaque, false},
		{"", Opaque, false},
		{"glass", Opaque, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSurfaceTag(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSurfaceTag(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidScene) {
				t.Errorf("error should wrap ErrInvalidScene, got %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseSurfaceTag(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPanelIntersect(t *testing.T) {
	// 2x1 panel facing +Z at z=3
	root := NewNode("root").Add(NewPanel("pane", Glazing, 2, 1).At(0, 0, 3))
	snap := Capture(root)
	if len(snap.Elements) != 1 {
		t.Fatalf("expected 1 element, got %d", len(snap.Elements))
	}

	tests := []struct {
		name   string
		origin r3.Vec
		dir    r3.Vec
		hit    bool
		dist   float64
	}{
		{"straight on", r3.Vec{X: 0.5, Y: 0.2}, r3.Vec{Z: 1}, true, 3},
		{"from behind", r3.Vec{Z: 10}, r3.Vec{Z: -1}, true, 7},
		{"outside width", r3.Vec{X: 1.5}, r3.Vec{Z: 1}, false, 0},
		{"parallel", r3.Vec{Z: 3}, r3.Vec{X: 1}, false, 0},
		{"pointing away", r3.Vec{}, r3.Vec{Z: -1}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, ok := snap.Intersect(tt.origin, tt.dir, 1e-3)
			if ok != tt.hit {
				t.Fatalf("hit = %v, want %v", ok, tt.hit)
			}
			if !ok {
				return
			}
			if math.Abs(h.Distance-tt.dist) > tol {
				t.Errorf("distance = %f, want %f", h.Distance, tt.dist)
			}
			if h.Tag != Glazing {
				t.Errorf("tag = %v, want glazing", h.Tag)
			}
			if math.Abs(math.Abs(h.Normal.Z)-1) > tol {
				t.Errorf("normal = %v, want ±Z", h.Normal)
			}
		})
	}
}

func TestIntersectRespectsMinDistance(t *testing.T) {
	snap := Capture(NewNode("root").Add(NewPanel("wall", Opaque, 4, 4)))

	if _, ok := snap.Intersect(r3.Vec{Z: -0.0005}, r3.Vec{Z: 1}, 1e-3); ok {
		t.Error("hit closer than minDist should be ignored")
	}
	if _, ok := snap.Intersect(r3.Vec{Z: -0.5}, r3.Vec{Z: 1}, 1e-3); !ok {
		t.Error("expected hit beyond minDist")
	}
}

func TestIntersectNearestWins(t *testing.T) {
	root := NewNode("root").Add(
		NewPanel("far", Opaque, 2, 2).At(0, 0, 5),
		NewPanel("near", Frame, 2, 2).At(0, 0, 2),
	)
	snap := Capture(root)

	h, ok := snap.Intersect(r3.Vec{}, r3.Vec{Z: 1}, 1e-3)
	if !ok {
		t.Fatal("expected a hit")
	}
	if snap.Elements[h.Element].Name != "near" {
		t.Errorf("hit %q, want near", snap.Elements[h.Element].Name)
	}
	if h.Tag != Frame {
		t.Errorf("tag = %v, want frame", h.Tag)
	}
}

func TestRotatedScaledPanel(t *testing.T) {
	// Floor: panel rotated to face +Y and stretched to 6 x 4 world units.
	floor := NewPanel("floor", Opaque, 3, 2).Rotated(-90, 0, 0).Scaled(2, 2, 1)
	snap := Capture(NewNode("root").Add(floor))

	area, ok := snap.Elements[0].PanelArea()
	if !ok || math.Abs(area-24) > tol {
		t.Errorf("area = %f (ok=%v), want 24", area, ok)
	}

	h, ok := snap.Intersect(r3.Vec{X: 2.9, Y: 5, Z: 1.9}, r3.Vec{Y: -1}, 1e-3)
	if !ok {
		t.Fatal("expected hit on floor edge region")
	}
	if !near(h.Point, r3.Vec{X: 2.9, Z: 1.9}) {
		t.Errorf("point = %v", h.Point)
	}
	if math.Abs(math.Abs(h.Normal.Y)-1) > tol {
		t.Errorf("normal = %v, want ±Y", h.Normal)
	}
}

func TestBoxIntersect(t *testing.T) {
	snap := Capture(NewNode("root").Add(NewBox("fin", Opaque, 2, 2, 2).At(0, 0, 5)))

	h, ok := snap.Intersect(r3.Vec{}, r3.Vec{Z: 1}, 1e-3)
	if !ok {
		t.Fatal("expected box hit")
	}
	if math.Abs(h.Distance-4) > tol {
		t.Errorf("distance = %f, want 4", h.Distance)
	}
	if !near(h.Normal, r3.Vec{Z: -1}) {
		t.Errorf("entry normal = %v, want outward -Z", h.Normal)
	}

	// From inside the box the exit face is reported.
	h, ok = snap.Intersect(r3.Vec{Z: 5}, r3.Vec{X: 1}, 1e-3)
	if !ok {
		t.Fatal("expected exit hit")
	}
	if math.Abs(h.Distance-1) > tol || !near(h.Normal, r3.Vec{X: 1}) {
		t.Errorf("exit hit = %+v", h)
	}
}

func TestPanelPoint(t *testing.T) {
	snap := Capture(NewNode("root").Add(NewPanel("p", Glazing, 2, 1).At(1, 1, 1)))
	e := &snap.Elements[0]

	if got := e.PanelPoint(0, 0); !near(got, r3.Vec{X: 0, Y: 0.5, Z: 1}) {
		t.Errorf("PanelPoint(0,0) = %v", got)
	}
	if got := e.PanelPoint(1, 1); !near(got, r3.Vec{X: 2, Y: 1.5, Z: 1}) {
		t.Errorf("PanelPoint(1,1) = %v", got)
	}
}

func TestCaptureNestedTransforms(t *testing.T) {
	room := NewNode("room").At(10, 0, 0).Add(
		NewPanel("pane", Glazing, 1, 1).At(0, 0, 2),
	)
	snap := Capture(NewNode("root").Add(room))

	h, ok := snap.Intersect(r3.Vec{X: 10}, r3.Vec{Z: 1}, 1e-3)
	if !ok || math.Abs(h.Distance-2) > tol {
		t.Fatalf("expected hit at 2 through parent offset, got %+v ok=%v", h, ok)
	}
}

func TestCaptureSkipsSingular(t *testing.T) {
	root := NewNode("root").
		Add(NewPanel("collapsed", Opaque, 1, 1).Scaled(1, 0, 1)).
		Add(NewBox("squashed", Opaque, 1, 1, 1).Scaled(1, 1, 0))
	if n := len(Capture(root).Elements); n != 0 {
		t.Errorf("expected singular elements to be dropped, got %d", n)
	}
	if n := len(Capture(nil).Elements); n != 0 {
		t.Errorf("nil root should give empty snapshot, got %d", n)
	}
}

func TestCaptureWarnsOnSkippedSurface(t *testing.T) {
	var buf bytes.Buffer
	if err := logger.InitWithFileConfig("warn", logger.FileConfig{}, &buf); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.InitWithFileConfig("info", logger.FileConfig{}, nil) }()

	Capture(NewNode("root").Add(NewPanel("collapsed", Glazing, 1, 1).Scaled(0, 1, 1)))
	logger.Sync()

	for _, want := range []string{"singular transform", "collapsed"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output %q missing %q", buf.String(), want)
		}
	}
}

func TestCaptureKeepsPanelWithZeroDepthScale(t *testing.T) {
	root := NewNode("root").Add(NewPanel("pane", Glazing, 1, 1).Scaled(2, 1, 0).At(0, 0, 3))
	snap := Capture(root)
	if len(snap.Elements) != 1 {
		t.Fatalf("expected the panel to be kept, got %d elements", len(snap.Elements))
	}

	e := &snap.Elements[0]
	if area, _ := e.PanelArea(); math.Abs(area-2) > tol {
		t.Errorf("area = %v, want 2", area)
	}

	h, ok := snap.Intersect(r3.Vec{X: 0.9}, r3.Vec{Z: 1}, 1e-3)
	if !ok || math.Abs(h.Distance-3) > tol {
		t.Fatalf("expected hit at 3 inside the stretched panel, got %+v ok=%v", h, ok)
	}
	if math.Abs(math.Abs(h.Normal.Z)-1) > tol {
		t.Errorf("normal = %v, want +-Z", h.Normal)
	}
	if _, ok := snap.Intersect(r3.Vec{X: 1.1}, r3.Vec{Z: 1}, 1e-3); ok {
		t.Error("ray outside the stretched panel should miss")
	}
}

func TestParse(t *testing.T) {
	doc := `
name: office
nodes:
  - name: floor
    rotation: [-90, 0, 0]
    surface: {tag: opaque, panel: [6, 4]}
  - name: south
    position: [0, 1.5, 2]
    window: {width: 2, height: 1.2, frame: 0.05}
  - name: shelf
    position: [0, 2.4, 2.3]
    surface: {box: [2.2, 0.05, 0.6]}
    children:
      - name: label
        surface: {tag: frame, panel: [0.2, 0.1]}
`
	root, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if root.Name != "office" {
		t.Errorf("root name = %q", root.Name)
	}

	counts := map[SurfaceTag]int{}
	for _, e := range Capture(root).Elements {
		counts[e.Tag]++
	}
	if counts[Glazing] != 1 {
		t.Errorf("glazing count = %d, want 1", counts[Glazing])
	}
	if counts[Frame] != 5 {
		t.Errorf("frame count = %d, want 5 (4 bars + label)", counts[Frame])
	}
	if counts[Opaque] != 2 {
		t.Errorf("opaque count = %d, want 2", counts[Opaque])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad tag", "nodes:\n  - surface: {tag: glass, panel: [1, 1]}\n"},
		{"panel arity", "nodes:\n  - surface: {panel: [1]}\n"},
		{"negative size", "nodes:\n  - surface: {box: [1, -1, 1]}\n"},
		{"no shape", "nodes:\n  - surface: {tag: opaque}\n"},
		{"both shapes", "nodes:\n  - surface: {panel: [1, 1], box: [1, 1, 1]}\n"},
		{"bad position", "nodes:\n  - position: [1, 2]\n"},
		{"window and surface", "nodes:\n  - window: {width: 1, height: 1}\n    surface: {panel: [1, 1]}\n"},
		{"zero window", "nodes:\n  - window: {width: 0, height: 1}\n"},
		{"not yaml", "nodes: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, ErrInvalidScene) {
				t.Errorf("expected ErrInvalidScene, got %v", err)
			}
		})
	}
}

func TestLoadNamesRootAfterFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.yaml")
	if err := os.WriteFile(path, []byte("nodes:\n  - surface: {panel: [1, 1]}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	root, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if root.Name != "studio" {
		t.Errorf("root name = %q, want studio", root.Name)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
