// Package geo provides great-circle distance math for the check-in geofence.
package geo

import "math"

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000

// Distance returns the haversine distance in meters between two
// latitude/longitude pairs given in degrees.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// WithinRadius reports whether the two points are at most radiusMeters apart.
func WithinRadius(lat1, lon1, lat2, lon2, radiusMeters float64) bool {
	return Distance(lat1, lon1, lat2, lon2) <= radiusMeters
}

func toRad(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
