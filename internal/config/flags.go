package config

import "flag"

var (
	flagConfig  string
	flagDebug   bool
	flagLat     float64
	flagLon     float64
	flagDate    string
	flagTime    string
	flagRays    int
	flagBounces int
	flagWorkers int
	flagScene   string
	flagJSON    string
	flagPNG     string
	flagPlane   string

	// setFlags holds the names of flags present on the command line.
	setFlags = map[string]bool{}
	parsed   = flag.CommandLine
)

func init() {
	registerFlags(flag.CommandLine)
}

// registerFlags binds the package flag variables to fs, resetting them to their defaults.
func registerFlags(fs *flag.FlagSet) {
	fs.StringVar(&flagConfig, "config", "", "Path to config file")
	fs.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	fs.Float64Var(&flagLat, "lat", 0, "Site latitude in degrees")
	fs.Float64Var(&flagLon, "lon", 0, "Site longitude in degrees")
	fs.StringVar(&flagDate, "date", "", "Date as YYYY-MM-DD")
	fs.StringVar(&flagTime, "time", "", "Local time as HH:MM")
	fs.IntVar(&flagRays, "rays", 0, "Total rays to distribute across glazing")
	fs.IntVar(&flagBounces, "bounces", 0, "Maximum interior bounces per ray")
	fs.IntVar(&flagWorkers, "workers", 0, "Parallel ray workers (1 = sequential)")
	fs.StringVar(&flagScene, "scene", "", "Path to room scene YAML")
	fs.StringVar(&flagJSON, "json", "", "Write traced segments as JSON to this path")
	fs.StringVar(&flagPNG, "png", "", "Write a projected preview PNG to this path")
	fs.StringVar(&flagPlane, "plane", "", "Preview projection plane: xz, xy or zy")
}

// ParseFlags parses command-line arguments (without the program or subcommand name).
func ParseFlags(args []string) error {
	return parseFlagSet(flag.CommandLine, args)
}

func parseFlagSet(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	parsed = fs
	setFlags = map[string]bool{}
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})
	return nil
}

// Args returns positional arguments left after flag parsing.
func Args() []string {
	return parsed.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return flagConfig
}

// applyFlags copies every flag given on the command line over the config.
// Values are not checked here; the solar and trace packages reject bad input.
func applyFlags(cfg *Config) {
	if setFlags["debug"] && flagDebug {
		cfg.Logging.Level = "debug"
	}
	if setFlags["lat"] {
		cfg.Site.Latitude = flagLat
	}
	if setFlags["lon"] {
		cfg.Site.Longitude = flagLon
	}
	if setFlags["date"] {
		cfg.Site.Date = flagDate
	}
	if setFlags["time"] {
		cfg.Site.Time = flagTime
	}
	if setFlags["rays"] {
		cfg.Trace.RayCount = flagRays
	}
	if setFlags["bounces"] {
		cfg.Trace.MaxBounces = flagBounces
	}
	if setFlags["workers"] {
		cfg.Trace.Workers = flagWorkers
	}
	if setFlags["scene"] {
		cfg.Scene.Path = flagScene
	}
	if setFlags["json"] {
		cfg.Output.JSON = flagJSON
	}
	if setFlags["png"] {
		cfg.Output.PNG = flagPNG
	}
	if setFlags["plane"] {
		cfg.Output.Plane = flagPlane
	}
}
