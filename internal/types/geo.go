// README: Common geographic value objects used across modules.
package types

import (
	"math"
	"time"
)

type ID string

// GeoPoint is a WGS 84 coordinate in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether both components are finite and within range.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// PathPoint is one vertex of a walk path. Seq is the position in the path.
type PathPoint struct {
	GeoPoint
	Seq        int        `json:"seq"`
	RecordedAt *time.Time `json:"recorded_at,omitempty"`
}

// NewPath turns decoded coordinates into sequenced path points.
func NewPath(points []GeoPoint) []PathPoint {
	out := make([]PathPoint, len(points))
	for i, p := range points {
		out[i] = PathPoint{GeoPoint: p, Seq: i}
	}
	return out
}
