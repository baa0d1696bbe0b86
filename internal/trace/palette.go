package trace

import "image/color"

// Palette colors segments by how many interior bounces preceded them.
// Index 0 is sunlight that has not yet entered through glazing; index n is the
// path after the (n-1)th interior reflection.
var Palette = [...]color.RGBA{
	{R: 0xff, G: 0xd7, B: 0x00, A: 0xff}, // outside: gold
	{R: 0xff, G: 0x8c, B: 0x00, A: 0xff}, // entered: orange
	{R: 0xff, G: 0x45, B: 0x00, A: 0xff},
	{R: 0xdc, G: 0x14, B: 0x3c, A: 0xff},
	{R: 0xc7, G: 0x15, B: 0x85, A: 0xff},
	{R: 0x94, G: 0x00, B: 0xd3, A: 0xff},
	{R: 0x41, G: 0x69, B: 0xe1, A: 0xff},
	{R: 0x00, G: 0xbf, B: 0xff, A: 0xff},
	{R: 0x00, G: 0xce, B: 0xd1, A: 0xff},
	{R: 0x2e, G: 0x8b, B: 0x57, A: 0xff},
	{R: 0x70, G: 0x80, B: 0x90, A: 0xff}, // ten or more bounces
}

// ColorIndex returns the palette slot for a segment emitted in the given state.
func ColorIndex(inside bool, bounces int) int {
	if !inside {
		return 0
	}
	return clampIndex(bounces + 1)
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(Palette) {
		return len(Palette) - 1
	}
	return i
}

// Color returns the palette color of a segment.
func (s Segment) Color() color.RGBA {
	return Palette[clampIndex(s.ColorIndex)]
}
