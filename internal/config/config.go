// Package config handles sunpath configuration loading and management.
package config

// Config holds all simulator settings.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Trace   TraceConfig   `yaml:"trace"`
	Scene   SceneConfig   `yaml:"scene"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig holds the location and moment to simulate.
type SiteConfig struct {
	Latitude  float64 `yaml:"latitude"`  // decimal degrees, north positive
	Longitude float64 `yaml:"longitude"` // decimal degrees, east positive
	Date      string  `yaml:"date"`      // YYYY-MM-DD
	Time      string  `yaml:"time"`      // HH:MM, 24-hour local civil time
}

// TraceConfig holds ray budget settings.
type TraceConfig struct {
	RayCount       int     `yaml:"ray_count"`
	MaxBounces     int     `yaml:"max_bounces"`
	Workers        int     `yaml:"workers"`
	SourceDistance float64 `yaml:"source_distance"` // how far up-sun rays start from the glazing
	MarkerDistance float64 `yaml:"marker_distance"` // sun marker distance from origin
}

// SceneConfig holds the room model location.
type SceneConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig holds export targets. Empty paths disable that export.
type OutputConfig struct {
	JSON  string `yaml:"json"`
	PNG   string `yaml:"png"`
	Plane string `yaml:"plane"` // projection plane for the PNG: xz, xy or zy
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Latitude:  51.5074,
			Longitude: -0.1278,
			Date:      "2024-06-21",
			Time:      "12:00",
		},
		Trace: TraceConfig{
			RayCount:       200,
			MaxBounces:     3,
			Workers:        1,
			SourceDistance: 50,
			MarkerDistance: 20,
		},
		Scene: SceneConfig{
			Path: "room.yaml",
		},
		Output: OutputConfig{
			JSON:  "",
			PNG:   "",
			Plane: "xz",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
