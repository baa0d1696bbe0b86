package trace

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/Faultbox/sunpath/internal/scene"
	"github.com/Faultbox/sunpath/internal/solar"
)

// southSun is 30 degrees up, due south, shining onto a south-facing (+Z) window.
func southSun() solar.Position {
	return solar.Position{
		AltitudeDeg: 30,
		AzimuthDeg:  180,
		Direction:   solar.DirectionFromAngles(30, 180),
	}
}

func window(w, h float64) *scene.Node {
	return scene.NewNode("room").Add(scene.NewPanel("window", scene.Glazing, w, h))
}

func TestRunInvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"zero rays", Request{RayCount: 0, MaxBounces: 3}},
		{"negative rays", Request{RayCount: -4, MaxBounces: 3}},
		{"negative bounces", Request{RayCount: 10, MaxBounces: -1}},
		{"negative distance", Request{RayCount: 10, MaxBounces: 1, SourceDistance: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Run(tt.req, southSun(), window(1, 1))
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("error = %v, want ErrInvalidInput", err)
			}
			if g != nil {
				t.Error("no group should be returned")
			}
		})
	}
}

func TestRunSunBelowHorizon(t *testing.T) {
	night := solar.Position{AltitudeDeg: -12}
	g, err := Run(Request{RayCount: 10, MaxBounces: 3}, night, window(1, 1))
	if !errors.Is(err, ErrSunBelowHorizon) {
		t.Fatalf("error = %v, want ErrSunBelowHorizon", err)
	}
	if g != nil {
		t.Error("no group should be returned")
	}
}

func TestRunNoGlazing(t *testing.T) {
	root := scene.NewNode("room").Add(scene.NewPanel("wall", scene.Opaque, 4, 3))
	_, err := Run(Request{RayCount: 10, MaxBounces: 3}, southSun(), root)
	if !errors.Is(err, ErrNoGlazing) {
		t.Fatalf("error = %v, want ErrNoGlazing", err)
	}
}

func TestRunSingleWindow(t *testing.T) {
	g, err := Run(Request{RayCount: 16, MaxBounces: 3}, southSun(), window(2, 2))
	if err != nil {
		t.Fatal(err)
	}

	if len(g.Stats.Panels) != 1 {
		t.Fatalf("expected 1 panel, got %d", len(g.Stats.Panels))
	}
	p := g.Stats.Panels[0]
	if p.Rays != 16 || p.Grid != 4 || p.Samples() != 25 {
		t.Errorf("panel stats = %+v, want 16 rays on a 4x4 grid", p)
	}
	if g.Stats.Samples != 25 {
		t.Errorf("samples = %d, want 25", g.Stats.Samples)
	}
	// Each ray crosses the pane once and leaves.
	if g.Len() != 25 {
		t.Errorf("segments = %d, want 25", g.Len())
	}
	if g.Stats.Count(Escaped) != 25 {
		t.Errorf("escaped = %d, want 25", g.Stats.Count(Escaped))
	}

	sun := southSun().Direction
	for i, s := range g.Segments {
		if s.End.Z > 1e-9 || s.End.Z < -1e-9 {
			t.Errorf("segment %d should end on the pane, got %v", i, s.End)
		}
		if d := r3.Dot(r3.Sub(s.End, s.Start), sun); d > -DefaultSourceDistance+1e-6 || d < -DefaultSourceDistance-1e-6 {
			t.Errorf("segment %d should start %v units up-sun, got %v", i, DefaultSourceDistance, -d)
		}
	}
}

func TestRunSourceDistance(t *testing.T) {
	g, err := Run(Request{RayCount: 1, MaxBounces: 1, SourceDistance: 10}, southSun(), window(1, 1))
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range g.Segments {
		if l := r3.Norm(r3.Sub(s.End, s.Start)); l < 10-1e-6 || l > 10+1e-6 {
			t.Errorf("segment length = %v, want 10", l)
		}
	}
}

func TestRunAreaProportional(t *testing.T) {
	root := scene.NewNode("room").Add(
		scene.NewPanel("wide", scene.Glazing, 2, 1).At(-2, 0, 0),
		scene.NewPanel("square", scene.Glazing, 1, 1).At(2, 0, 0),
	)
	g, err := Run(Request{RayCount: 300, MaxBounces: 3}, southSun(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Stats.Panels) != 2 {
		t.Fatalf("expected 2 panels, got %d", len(g.Stats.Panels))
	}
	wide, square := g.Stats.Panels[0], g.Stats.Panels[1]
	if wide.Rays != 200 || square.Rays != 100 {
		t.Errorf("rays = %d/%d, want 200/100", wide.Rays, square.Rays)
	}
	if wide.Grid != 14 || square.Grid != 10 {
		t.Errorf("grid = %d/%d, want 14/10", wide.Grid, square.Grid)
	}
	if square.Start != wide.Samples() {
		t.Errorf("second panel starts at %d, want %d", square.Start, wide.Samples())
	}
	ratio := float64(wide.Samples()) / float64(square.Samples())
	if ratio < 1.5 || ratio > 2.5 {
		t.Errorf("sample ratio = %v, want about 2", ratio)
	}
}

func TestRunMinimumOneRay(t *testing.T) {
	root := scene.NewNode("room").Add(
		scene.NewPanel("big", scene.Glazing, 10, 10),
		scene.NewPanel("sliver", scene.Glazing, 0.01, 0.01).At(8, 0, 0),
	)
	g, err := Run(Request{RayCount: 10, MaxBounces: 1}, southSun(), root)
	if err != nil {
		t.Fatal(err)
	}
	sliver := g.Stats.Panels[1]
	if sliver.Rays != 1 || sliver.Grid != 1 || sliver.Samples() != 4 {
		t.Errorf("sliver stats = %+v, want 1 ray on a 1x1 grid", sliver)
	}
}

func TestRunIdempotent(t *testing.T) {
	root := officeScene()
	req := Request{RayCount: 120, MaxBounces: 4}

	a, err := Run(req, southSun(), root)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Run(req, southSun(), root)
	if err != nil {
		t.Fatal(err)
	}
	assertSameSegments(t, a, b)
}

func TestRunWorkersMatchSequential(t *testing.T) {
	root := officeScene()
	seq, err := Run(Request{RayCount: 200, MaxBounces: 5, Workers: 1}, southSun(), root)
	if err != nil {
		t.Fatal(err)
	}
	par, err := Run(Request{RayCount: 200, MaxBounces: 5, Workers: 8}, southSun(), root)
	if err != nil {
		t.Fatal(err)
	}
	assertSameSegments(t, seq, par)
	if seq.Stats.Outcomes != par.Stats.Outcomes {
		t.Errorf("outcomes differ: %v vs %v", seq.Stats.Outcomes, par.Stats.Outcomes)
	}
}

func TestRunOffice(t *testing.T) {
	g, err := Run(Request{RayCount: 200, MaxBounces: 4}, southSun(), officeScene())
	if err != nil {
		t.Fatal(err)
	}
	if g.Stats.Count(BlockedByFrame) == 0 {
		t.Error("edge rays should strike the window frame")
	}
	inside := 0
	for _, s := range g.Segments {
		if s.ColorIndex > 0 {
			inside++
		}
		if s.ColorIndex > 4 {
			t.Fatalf("color index %d exceeds bounce budget", s.ColorIndex)
		}
	}
	if inside == 0 {
		t.Error("some rays should travel inside the room")
	}
	total := 0
	for _, n := range g.Stats.Outcomes {
		total += n
	}
	if total != g.Stats.Samples {
		t.Errorf("outcomes sum to %d, want %d", total, g.Stats.Samples)
	}
}

// officeScene is a closed 6x3x6 room with a framed window in its south (+Z) wall.
func officeScene() *scene.Node {
	const (
		w, h, d = 6.0, 3.0, 6.0
		winW    = 2.0
		winH    = 1.2
		frame   = 0.1
	)
	room := scene.NewNode("office").At(0, h/2, 0)
	room.Add(
		scene.NewPanel("floor", scene.Opaque, w, d).Rotated(-90, 0, 0).At(0, -h/2, 0),
		scene.NewPanel("ceiling", scene.Opaque, w, d).Rotated(90, 0, 0).At(0, h/2, 0),
		scene.NewPanel("north", scene.Opaque, w, h).At(0, 0, -d/2),
		scene.NewPanel("east", scene.Opaque, d, h).Rotated(0, -90, 0).At(w/2, 0, 0),
		scene.NewPanel("west", scene.Opaque, d, h).Rotated(0, 90, 0).At(-w/2, 0, 0),
		scene.NewBox("desk", scene.Opaque, 1.6, 0.05, 0.8).At(0, -h/2+0.75, 0),
	)

	// South wall around the opening.
	side := (w - winW) / 2
	room.Add(
		scene.NewPanel("south-left", scene.Opaque, side, h).At(-(winW+side)/2, 0, d/2),
		scene.NewPanel("south-right", scene.Opaque, side, h).At((winW+side)/2, 0, d/2),
		scene.NewPanel("south-top", scene.Opaque, winW, (h-winH)/2).At(0, (winH+(h-winH)/2)/2, d/2),
		scene.NewPanel("south-bottom", scene.Opaque, winW, (h-winH)/2).At(0, -(winH+(h-winH)/2)/2, d/2),
	)

	win := scene.NewNode("window").At(0, 0, d/2)
	win.Add(
		scene.NewPanel("glass", scene.Glazing, winW, winH),
		scene.NewBox("frame-top", scene.Frame, winW, frame, frame).At(0, (winH-frame)/2, 0),
		scene.NewBox("frame-bottom", scene.Frame, winW, frame, frame).At(0, -(winH-frame)/2, 0),
		scene.NewBox("frame-left", scene.Frame, frame, winH, frame).At(-(winW-frame)/2, 0, 0),
		scene.NewBox("frame-right", scene.Frame, frame, winH, frame).At((winW-frame)/2, 0, 0),
	)
	room.Add(win)
	return scene.NewNode("root").Add(room)
}

func assertSameSegments(t *testing.T, a, b *Group) {
	t.Helper()
	if a.Len() != b.Len() {
		t.Fatalf("segment counts differ: %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Segments {
		if a.Segments[i] != b.Segments[i] {
			t.Fatalf("segment %d differs: %+v vs %+v", i, a.Segments[i], b.Segments[i])
		}
	}
}
