package ephemeris

import (
	"fmt"
	"math"
	"time"

	"chosenoffset.com/sunmap/internal/core/shadows"
)

// NOAA computes sun positions with the NOAA solar calculator equations.
// Accuracy is within about a minute of arc for dates between 1901 and 2099.
type NOAA struct {
	// Refraction adds the standard atmospheric refraction correction so the
	// elevation is apparent rather than geometric
	Refraction bool
}

// NewNOAA returns a provider reporting apparent elevations
func NewNOAA() *NOAA {
	return &NOAA{Refraction: true}
}

// degToRad converts an angle from degrees to radians
func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}

// radToDeg converts an angle from radians to degrees
func radToDeg(rad float64) float64 {
	return rad * (180.0 / math.Pi)
}

// fixAngle normalizes an angle to the range [0, 360) degrees
func fixAngle(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// julianDay converts an instant to a Julian Day, keeping sub-second precision
func julianDay(t time.Time) float64 {
	return 2440587.5 + float64(t.UnixNano())/86400e9
}

// Position implements Provider
func (n *NOAA) Position(t time.Time, latitude, longitude float64) (shadows.SunPosition, error) {
	if t.IsZero() {
		return shadows.SunPosition{}, &EphemerisError{Time: t, Err: fmt.Errorf("zero timestamp")}
	}
	if math.IsNaN(latitude) || latitude < -90 || latitude > 90 {
		return shadows.SunPosition{}, &EphemerisError{Time: t, Err: fmt.Errorf("latitude %g outside [-90, 90]", latitude)}
	}
	if math.IsNaN(longitude) || longitude < -180 || longitude > 180 {
		return shadows.SunPosition{}, &EphemerisError{Time: t, Err: fmt.Errorf("longitude %g outside [-180, 180]", longitude)}
	}

	utc := t.UTC()
	T := (julianDay(utc) - 2451545.0) / 36525.0 // Julian centuries since J2000.0

	// Solar coordinates
	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032)) // Mean longitude
	M := 357.52911 + T*(35999.05029-0.0001537*T)           // Mean anomaly
	e := 0.016708634 - T*(0.000042037+0.0000001267*T)      // Orbit eccentricity

	// Equation of center
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+0.000014*T)) +
		math.Sin(degToRad(2*M))*(0.019993-0.000101*T) +
		math.Sin(degToRad(3*M))*0.000289
	omega := 125.04 - 1934.136*T
	lambda := L0 + C - 0.00569 - 0.00478*math.Sin(degToRad(omega)) // Apparent longitude

	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60 // Mean obliquity
	eps := eps0 + 0.00256*math.Cos(degToRad(omega))

	decl := math.Asin(math.Sin(degToRad(eps)) * math.Sin(degToRad(lambda)))

	// Equation of time in minutes
	y := math.Tan(degToRad(eps)/2) * math.Tan(degToRad(eps)/2)
	eqTime := 4 * radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M)))

	// True solar time and hour angle
	utcMin := float64(utc.Hour()*60+utc.Minute()) + float64(utc.Second())/60 + float64(utc.Nanosecond())/60e9
	tst := math.Mod(utcMin+eqTime+4*longitude, 1440)
	if tst < 0 {
		tst += 1440
	}
	ha := degToRad(tst/4 - 180)

	lat := degToRad(latitude)
	cosZenith := math.Sin(lat)*math.Sin(decl) + math.Cos(lat)*math.Cos(decl)*math.Cos(ha)
	cosZenith = math.Max(-1, math.Min(1, cosZenith))
	elevation := 90 - radToDeg(math.Acos(cosZenith))

	if n.Refraction {
		elevation += refraction(elevation)
	}
	elevation = math.Min(elevation, 90)

	azimuth := fixAngle(radToDeg(math.Atan2(
		math.Sin(ha),
		math.Cos(ha)*math.Sin(lat)-math.Tan(decl)*math.Cos(lat),
	)) + 180)

	return shadows.SunPosition{AzimuthDeg: azimuth, ElevationDeg: elevation}, nil
}

// refraction returns the atmospheric refraction correction in degrees
func refraction(elevation float64) float64 {
	switch {
	case elevation > 85:
		return 0
	case elevation > 5:
		te := math.Tan(degToRad(elevation))
		return (58.1/te - 0.07/math.Pow(te, 3) + 0.000086/math.Pow(te, 5)) / 3600
	case elevation > -0.575:
		return (1735 + elevation*(-518.2+elevation*(103.4+elevation*(-12.79+elevation*0.711)))) / 3600
	default:
		te := math.Tan(degToRad(elevation))
		return -20.772 / te / 3600
	}
}
