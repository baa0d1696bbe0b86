package solar

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	meeussolar "github.com/soniakeys/meeus/v3/solar"
)

// CivilTime interprets date and time of day as local civil time in the zone of
// the longitude's standard meridian. This is the same clock Compute assumes.
func CivilTime(date, timeOfDay string, longitude float64) (time.Time, error) {
	if err := checkCoordinates(0, longitude); err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(dateLayout+" "+timeLayout, date+" "+timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q: %v", ErrInvalidInput, date, timeOfDay, err)
	}
	offset := int(StandardMeridian(longitude) / 15 * 3600)
	zone := time.FixedZone(fmt.Sprintf("LSTM%+.0f", StandardMeridian(longitude)), offset)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, zone), nil
}

// Reference computes the sun's position from the apparent equatorial
// coordinates and apparent sidereal time. It is only used to report how far
// Compute drifts from an ephemeris; tracing never uses it.
func Reference(t time.Time, latitude, longitude float64) (Position, error) {
	if err := checkCoordinates(latitude, longitude); err != nil {
		return Position{}, err
	}
	t = t.UTC()
	jd := julian.TimeToJD(t)

	// Apparent RA/Dec of the sun, radians
	ra, dec := meeussolar.ApparentEquatorial(jd)
	gast := sidereal.Apparent(jd)

	// Local hour angle, positive west
	h := math.Remainder(gast.Angle().Rad()+longitude*deg-float64(ra), 2*math.Pi)

	phi := latitude * deg
	sinAlt := dec.Sin()*math.Sin(phi) + dec.Cos()*math.Cos(phi)*math.Cos(h)
	alt := math.Asin(clamp(sinAlt, -1, 1))
	az := math.Atan2(-dec.Cos()*math.Sin(h), dec.Sin()*math.Cos(phi)-dec.Cos()*math.Sin(phi)*math.Cos(h)) * rad
	if az < 0 {
		az += 360
	}

	p := Position{
		AltitudeDeg:    alt * rad,
		DeclinationDeg: dec.Deg(),
		HourAngleDeg:   h * rad,
		DayOfYear:      t.YearDay(),
	}
	if alt > 0 {
		p.AzimuthDeg = az
		p.Direction = DirectionFromAngles(p.AltitudeDeg, az)
	}
	return p, nil
}
