package domain

import "github.com/pymaxion/geographiclib-go/geodesic"

// DistanceKm solves the inverse geodesic problem on the WGS-84 ellipsoid and
// returns the distance between a and b in kilometres. Pure function; symmetric
// in its arguments and zero for identical points.
func DistanceKm(a, b Coordinates) float64 {
	r := geodesic.WGS84.Inverse(a.Lat, a.Lon, b.Lat, b.Lon)
	return r.S12 / 1000.0
}
