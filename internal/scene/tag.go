package scene

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SurfaceTag classifies how a surface treats a ray.
type SurfaceTag uint8

const (
	// Opaque surfaces reflect rays. It is the zero value so untagged surfaces are opaque.
	Opaque SurfaceTag = iota
	// Glazing surfaces let rays pass through and flip the ray between outside and inside.
	Glazing
	// Frame surfaces block rays arriving from outside and reflect rays from inside.
	Frame
)

var tagNames = [...]string{
	Opaque:  "opaque",
	Glazing: "glazing",
	Frame:   "frame",
}

func (t SurfaceTag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return fmt.Sprintf("SurfaceTag(%d)", uint8(t))
}

// ParseSurfaceTag parses a tag name case-insensitively. An empty name is Opaque.
func ParseSurfaceTag(s string) (SurfaceTag, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return Opaque, nil
	}
	for i, n := range tagNames {
		if n == name {
			return SurfaceTag(i), nil
		}
	}
	return Opaque, fmt.Errorf("%w: unknown surface tag %q", ErrInvalidScene, s)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *SurfaceTag) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	tag, err := ParseSurfaceTag(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*t = tag
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t SurfaceTag) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
