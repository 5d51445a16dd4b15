package georef

import "math"

// GeoMapper converts between geographic and UTM coordinates. The local
// frame and the output writers depend only on this interface; WGS84Mapper
// is the stock implementation.
type GeoMapper interface {
	LatLonToUTM(lat, lon float64) (easting, northing float64, zone int, isNorth bool)
	UTMToLatLon(easting, northing float64, zone int, isNorth bool) (lat, lon float64)
}

// WGS84 ellipsoid constants.
const (
	wgs84A = 6378137.0
	wgs84F = 1.0 / 298.257223563

	utmScale        = 0.9996
	utmFalseEasting = 500000.0
	utmFalseNorth   = 10000000.0
)

// WGS84Mapper implements GeoMapper with the standard transverse Mercator
// series expansion on the WGS84 ellipsoid. Accuracy is at the millimeter
// level, well inside what alignment needs.
type WGS84Mapper struct{}

// UTMZone returns the longitudinal UTM zone for a longitude in degrees.
func UTMZone(lon float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return zone
}

func centralMeridian(zone int) float64 {
	return float64(zone-1)*6 - 180 + 3
}

// LatLonToUTM projects a geographic position (degrees) to UTM easting and
// northing in the position's natural zone.
func (WGS84Mapper) LatLonToUTM(lat, lon float64) (easting, northing float64, zone int, isNorth bool) {
	zone = UTMZone(lon)
	isNorth = lat >= 0

	e2 := wgs84F * (2 - wgs84F)
	ep2 := e2 / (1 - e2)
	phi := lat * math.Pi / 180
	lam := (lon - centralMeridian(zone)) * math.Pi / 180

	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	n := wgs84A / math.Sqrt(1-e2*sinPhi*sinPhi)
	t := math.Pow(math.Tan(phi), 2)
	c := ep2 * cosPhi * cosPhi
	a := cosPhi * lam

	m := meridianArc(phi, e2)

	easting = utmScale*n*(a+
		(1-t+c)*math.Pow(a, 3)/6+
		(5-18*t+t*t+72*c-58*ep2)*math.Pow(a, 5)/120) + utmFalseEasting

	northing = utmScale * (m + n*math.Tan(phi)*
		(a*a/2+
			(5-t+9*c+4*c*c)*math.Pow(a, 4)/24+
			(61-58*t+t*t+600*c-330*ep2)*math.Pow(a, 6)/720))
	if !isNorth {
		northing += utmFalseNorth
	}
	return easting, northing, zone, isNorth
}

// UTMToLatLon inverts the projection for a given zone and hemisphere,
// returning latitude and longitude in degrees.
func (WGS84Mapper) UTMToLatLon(easting, northing float64, zone int, isNorth bool) (lat, lon float64) {
	e2 := wgs84F * (2 - wgs84F)
	ep2 := e2 / (1 - e2)
	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))

	x := easting - utmFalseEasting
	y := northing
	if !isNorth {
		y -= utmFalseNorth
	}

	m := y / utmScale
	mu := m / (wgs84A * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sinPhi1, cosPhi1 := math.Sin(phi1), math.Cos(phi1)
	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := math.Pow(math.Tan(phi1), 2)
	n1 := wgs84A / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	r1 := wgs84A * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := x / (n1 * utmScale)

	phi := phi1 - (n1 * math.Tan(phi1) / r1) *
		(d*d/2-
			(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
			(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
	lam := (d -
		(1+2*t1+c1)*math.Pow(d, 3)/6 +
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120) / cosPhi1

	lat = phi * 180 / math.Pi
	lon = centralMeridian(zone) + lam*180/math.Pi
	return lat, lon
}

// meridianArc returns the meridian arc length from the equator to phi.
func meridianArc(phi, e2 float64) float64 {
	e4 := e2 * e2
	e6 := e4 * e2
	return wgs84A * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}
