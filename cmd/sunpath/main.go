// sunpath traces sun rays through the windows of a room model.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/sunpath/internal/config"
	"github.com/Faultbox/sunpath/internal/glazing"
	"github.com/Faultbox/sunpath/internal/logger"
	"github.com/Faultbox/sunpath/internal/overlay"
	"github.com/Faultbox/sunpath/internal/scene"
	"github.com/Faultbox/sunpath/internal/solar"
	"github.com/Faultbox/sunpath/internal/trace"
)

type command func(cfg *config.Config, out io.Writer) error

var commands = map[string]command{
	"sun":    cmdSun,
	"panels": cmdPanels,
	"trace":  cmdTrace,
	"config": cmdConfig,
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	name := os.Args[1]
	switch name {
	case "help", "-h", "--help":
		printUsage()
		return
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", name)
		printUsage()
		os.Exit(1)
	}

	if err := config.ParseFlags(os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := cmd(cfg, os.Stdout); err != nil {
		logger.Fatal(name+" failed", zap.Error(err))
	}
}

func printUsage() {
	fmt.Println(`sunpath - sun ray path simulator

Usage:
  sunpath <command> [options]

Commands:
  sun       Show the sun position for the configured site and time
  panels    List the glazing panels found in the scene
  trace     Trace rays through the scene and export the result
  config    Write the effective configuration [to path, default user config dir]

Options:
  -config <file>   Config file (default ./sunpath.yaml or user config dir)
  -lat, -lon       Site latitude/longitude in decimal degrees
  -date, -time     Local date (YYYY-MM-DD) and time (HH:MM)
  -rays, -bounces  Total ray budget and interior bounce limit
  -workers <n>     Trace rays on n goroutines
  -scene <file>    Room scene YAML
  -json, -png      Export paths; -plane picks xz, xy or zy for the PNG
  -debug           Debug logging

Examples:
  sunpath sun -lat 40.7 -lon -74 -date 2024-12-21 -time 12:00
  sunpath panels -scene room.yaml
  sunpath trace -scene room.yaml -rays 400 -bounces 4 -png plan.png
  sunpath trace -time 16:30 -json trace.json -png side.png -plane zy`)
}

func solarPosition(cfg *config.Config) (solar.Position, error) {
	s := cfg.Site
	return solar.Compute(s.Date, s.Time, s.Latitude, s.Longitude)
}

func cmdSun(cfg *config.Config, out io.Writer) error {
	pos, err := solarPosition(cfg)
	if err != nil {
		return err
	}
	s := cfg.Site
	fmt.Fprintf(out, "Site:        %.4f, %.4f\n", s.Latitude, s.Longitude)
	fmt.Fprintf(out, "Local time:  %s %s (day %d)\n", s.Date, s.Time, pos.DayOfYear)
	fmt.Fprintf(out, "Declination: %.2f°\n", pos.DeclinationDeg)
	fmt.Fprintf(out, "Eq. of time: %.2f min\n", pos.EquationOfTimeMin)
	fmt.Fprintf(out, "Hour angle:  %.2f°\n", pos.HourAngleDeg)
	fmt.Fprintf(out, "Altitude:    %.2f°\n", pos.AltitudeDeg)

	if !pos.AboveHorizon() {
		fmt.Fprintln(out, "Sun is below the horizon")
	} else {
		fmt.Fprintf(out, "Azimuth:     %.2f°\n", pos.AzimuthDeg)
		d := pos.Direction
		fmt.Fprintf(out, "Direction:   (%.4f, %.4f, %.4f)\n", d.X, d.Y, d.Z)
		m, _ := solar.MarkerPosition(pos, cfg.Trace.MarkerDistance)
		fmt.Fprintf(out, "Marker:      (%.2f, %.2f, %.2f)\n", m.X, m.Y, m.Z)
	}

	when, err := solar.CivilTime(s.Date, s.Time, s.Longitude)
	if err != nil {
		return err
	}
	ref, err := solar.Reference(when, s.Latitude, s.Longitude)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Reference:   altitude %.2f°, azimuth %.2f° at %s\n",
		ref.AltitudeDeg, ref.AzimuthDeg, when.UTC().Format("2006-01-02 15:04 MST"))
	fmt.Fprintf(out, "Difference:  altitude %+.2f°, azimuth %+.2f°\n",
		pos.AltitudeDeg-ref.AltitudeDeg, pos.AzimuthDeg-ref.AzimuthDeg)
	return nil
}

func cmdPanels(cfg *config.Config, out io.Writer) error {
	root, err := scene.Load(cfg.Scene.Path)
	if err != nil {
		return fmt.Errorf("loading scene: %w", err)
	}
	panels, total := glazing.FindPanels(root)

	fmt.Fprintf(out, "Scene: %s\n", cfg.Scene.Path)
	if len(panels) == 0 {
		fmt.Fprintln(out, "No glazing panels")
		return nil
	}
	for _, p := range panels {
		c := p.Element.PanelPoint(0.5, 0.5)
		fmt.Fprintf(out, "  %-24s %8.3f m²  at (%.2f, %.2f, %.2f)\n", p.Element.Name, p.Area, c.X, c.Y, c.Z)
	}
	fmt.Fprintf(out, "Total glazing: %.3f m² in %d panels\n", total, len(panels))
	return nil
}

func cmdTrace(cfg *config.Config, out io.Writer) error {
	pos, err := solarPosition(cfg)
	if err != nil {
		return err
	}
	root, err := scene.Load(cfg.Scene.Path)
	if err != nil {
		return fmt.Errorf("loading scene: %w", err)
	}

	ov := overlay.New(cfg.Trace.MarkerDistance)
	ov.SetSun(pos)

	req := trace.Request{
		RayCount:       cfg.Trace.RayCount,
		MaxBounces:     cfg.Trace.MaxBounces,
		Workers:        cfg.Trace.Workers,
		SourceDistance: cfg.Trace.SourceDistance,
	}
	logger.Debug("trace request",
		zap.Int("rays", req.RayCount), zap.Int("bounces", req.MaxBounces), zap.Int("workers", req.Workers))
	group, err := trace.Run(req, pos, root)
	switch {
	case errors.Is(err, trace.ErrSunBelowHorizon), errors.Is(err, trace.ErrNoGlazing):
		fmt.Fprintf(out, "Nothing traced: %v\n", err)
	case err != nil:
		return err
	default:
		ov.Replace(group)
		printGroup(out, group)
	}

	return export(cfg, ov)
}

func printGroup(out io.Writer, g *trace.Group) {
	fmt.Fprintf(out, "Sun: altitude %.2f°, azimuth %.2f°\n", g.Sun.AltitudeDeg, g.Sun.AzimuthDeg)
	for _, p := range g.Stats.Panels {
		fmt.Fprintf(out, "  %-24s %8.3f m²  %4d rays  %4d samples\n", p.Name, p.Area, p.Rays, p.Samples())
	}
	fmt.Fprintf(out, "Traced %d rays into %d segments\n", g.Stats.Samples, g.Len())
	for _, o := range []trace.Outcome{trace.Escaped, trace.BlockedByFrame, trace.Exhausted, trace.SegmentCap} {
		fmt.Fprintf(out, "  %-17s %d\n", o.String()+":", g.Stats.Count(o))
	}
}

func export(cfg *config.Config, ov *overlay.Overlay) error {
	if path := cfg.Output.JSON; path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := ov.WriteJSON(f); err != nil {
			f.Close()
			logger.Error("partial trace JSON left on disk", zap.String("path", path), zap.Error(err))
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		logger.Info("wrote trace JSON", zap.String("path", path))
	}
	if path := cfg.Output.PNG; path != "" {
		plane, err := overlay.ParsePlane(cfg.Output.Plane)
		if err != nil {
			return err
		}
		if err := ov.WritePNG(path, plane); err != nil {
			return err
		}
		logger.Info("wrote preview", zap.String("path", path), zap.String("plane", string(plane)))
	}
	return nil
}

func cmdConfig(cfg *config.Config, out io.Writer) error {
	var path string
	if args := config.Args(); len(args) > 0 {
		path = args[0]
		if err := cfg.SaveTo(path); err != nil {
			return err
		}
	} else {
		saved, err := cfg.Save()
		if err != nil {
			return err
		}
		path = saved
	}
	fmt.Fprintf(out, "Config written to %s\n", path)
	return nil
}
