// Package solar converts a date, local time and location into the direction of the sun.
//
// Compute uses the engineering approximation (Equation of Time, cosine
// declination, hour angle from local solar time) with azimuth measured
// clockwise from North. Callers depend on these exact values; Reference gives
// an ephemeris position for comparison.
package solar

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrInvalidInput is returned when the date, time or coordinates cannot be used.
var ErrInvalidInput = errors.New("invalid input")

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"

	deg = math.Pi / 180
	rad = 180 / math.Pi
)

// Position is the sun's place in the sky for one request.
type Position struct {
	AltitudeDeg float64
	AzimuthDeg  float64 // 0 = North, 90 = East, clockwise
	Direction   r3.Vec  // unit vector from the scene origin toward the sun; zero when below the horizon

	DayOfYear         int
	DeclinationDeg    float64
	HourAngleDeg      float64
	EquationOfTimeMin float64
}

// AboveHorizon reports whether the sun is visible and can be traced.
func (p Position) AboveHorizon() bool {
	return p.AltitudeDeg > 0 && p.Direction != (r3.Vec{})
}

// Compute returns the solar position for a calendar date ("YYYY-MM-DD"),
// a local civil time ("HH:MM", 24-hour) and a location in decimal degrees.
func Compute(date, timeOfDay string, latitude, longitude float64) (Position, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return Position{}, fmt.Errorf("%w: date %q: %v", ErrInvalidInput, date, err)
	}
	tod, err := time.Parse(timeLayout, timeOfDay)
	if err != nil {
		return Position{}, fmt.Errorf("%w: time %q: %v", ErrInvalidInput, timeOfDay, err)
	}
	if err := checkCoordinates(latitude, longitude); err != nil {
		return Position{}, err
	}

	day := julian.DayOfYearGregorian(d.Year(), int(d.Month()), d.Day())
	return position(day, tod.Hour(), tod.Minute(), latitude, longitude), nil
}

func checkCoordinates(latitude, longitude float64) error {
	if math.IsNaN(latitude) || math.IsInf(latitude, 0) || math.IsNaN(longitude) || math.IsInf(longitude, 0) {
		return fmt.Errorf("%w: coordinates must be finite (lat=%v, lon=%v)", ErrInvalidInput, latitude, longitude)
	}
	if math.Abs(latitude) > 90 || math.Abs(longitude) > 180 {
		return fmt.Errorf("%w: coordinates out of range (lat=%v, lon=%v)", ErrInvalidInput, latitude, longitude)
	}
	return nil
}

// StandardMeridian returns the local standard time meridian for a longitude.
// Halves round up, so -7.5 maps to 0 and 7.5 maps to 15.
func StandardMeridian(longitude float64) float64 {
	return 15 * math.Floor(longitude/15+0.5)
}

// EquationOfTime returns the equation of time in minutes for a 1-based day of year.
func EquationOfTime(dayOfYear int) float64 {
	b := (360.0 / 365.0) * float64(dayOfYear-81) * deg
	return 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)
}

// Declination returns the approximate solar declination in degrees.
func Declination(dayOfYear int) float64 {
	return -23.45 * math.Cos((360.0/365.0)*float64(dayOfYear+10)*deg)
}

func position(day, hour, minute int, latitude, longitude float64) Position {
	eot := EquationOfTime(day)
	tc := 4*(longitude-StandardMeridian(longitude)) + eot
	lst := float64(hour) + float64(minute)/60 + tc/60
	h := 15 * (lst - 12)
	decl := Declination(day)

	p := Position{
		DayOfYear:         day,
		DeclinationDeg:    decl,
		HourAngleDeg:      h,
		EquationOfTimeMin: eot,
	}

	phi, delta, hr := latitude*deg, decl*deg, h*deg
	alpha := math.Asin(math.Sin(delta)*math.Sin(phi) + math.Cos(delta)*math.Cos(phi)*math.Cos(hr))
	p.AltitudeDeg = alpha * rad

	// At or below the horizon: no visible sun, azimuth 0 and no direction.
	if alpha <= 0 {
		return p
	}
	cosAlpha := math.Cos(alpha)
	if cosAlpha <= 0 {
		// Exactly overhead; azimuth is undefined.
		p.Direction = r3.Vec{Y: 1}
		return p
	}

	cosAz := (math.Sin(delta)*math.Cos(phi) - math.Cos(delta)*math.Sin(phi)*math.Cos(hr)) / cosAlpha
	az := math.Acos(clamp(cosAz, -1, 1)) * rad
	if h > 0 {
		az = 360 - az
	}
	p.AzimuthDeg = az
	p.Direction = DirectionFromAngles(p.AltitudeDeg, az)
	return p
}

// DirectionFromAngles converts altitude/azimuth in degrees to a unit vector in
// scene space: Y is up, -Z is North and +X is East.
func DirectionFromAngles(altitudeDeg, azimuthDeg float64) r3.Vec {
	alt := altitudeDeg * deg
	az := azimuthDeg * deg
	return r3.Unit(r3.Vec{
		X: math.Cos(alt) * math.Sin(az),
		Y: math.Sin(alt),
		Z: -math.Cos(alt) * math.Cos(az),
	})
}

// MarkerPosition places the sun indicator along the solar direction.
// ok is false when the sun is below the horizon and the marker should be removed.
func MarkerPosition(p Position, distance float64) (pos r3.Vec, ok bool) {
	if !p.AboveHorizon() {
		return r3.Vec{}, false
	}
	return r3.Scale(distance, p.Direction), true
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
