// Package geo holds the coordinate type and the distance/scoring math.
package geo

import "math"

const (
	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371

	// MaxScore is awarded for a perfect (or near-perfect) guess.
	MaxScore = 5000

	// perfectKm is the radius inside which a guess counts as perfect,
	// so pointer-precision near-hits still earn full points.
	perfectKm = 0.25

	// decayKm controls how quickly points fall off with distance.
	decayKm = 2000
)

// Coordinate is a WGS84 latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate is within latitude −90..90 and
// longitude −180..180.
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// DistanceKm returns the great-circle distance between a and b in kilometers.
func DistanceKm(a, b Coordinate) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	sinLat := math.Sin(dLat / 2)
	sinLng := math.Sin(dLng / 2)

	h := sinLat*sinLat + math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*sinLng*sinLng
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// ScoreFromDistance maps a distance in kilometers to points in [0, MaxScore].
// Inside perfectKm the guess earns MaxScore; beyond that points decay
// exponentially and approach zero for antipodal misses.
func ScoreFromDistance(d float64) int {
	if d < perfectKm {
		return MaxScore
	}
	return int(math.Round(MaxScore * math.Exp(-d/decayKm)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
