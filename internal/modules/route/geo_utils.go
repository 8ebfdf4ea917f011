// Package route generates walking routes; geo_utils holds the spherical math.
package route

import (
	"math"

	"routeroll/internal/types"
)

const earthRadiusM = 6371000.0

// maxJitterDeg bounds the fallback offset applied around an origin when a
// projected destination is unusable.
const maxJitterDeg = 0.001

// Distance returns the great-circle distance in metres between two points.
func Distance(a, b types.GeoPoint) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusM * c
}

// PathLength sums Distance over consecutive points.
func PathLength(points []types.PathPoint) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += Distance(points[i-1].GeoPoint, points[i].GeoPoint)
	}
	return total
}

// DestinationPoint projects distanceM metres from origin along bearingRad
// (clockwise from north). ok is false when the result is not a usable
// coordinate.
func DestinationPoint(origin types.GeoPoint, bearingRad, distanceM float64) (types.GeoPoint, bool) {
	delta := distanceM / earthRadiusM
	phi1 := degreesToRadians(origin.Lat)
	lambda1 := degreesToRadians(origin.Lng)

	sinPhi2 := math.Sin(phi1)*math.Cos(delta) + math.Cos(phi1)*math.Sin(delta)*math.Cos(bearingRad)
	phi2 := math.Asin(sinPhi2)
	lambda2 := lambda1 + math.Atan2(
		math.Sin(bearingRad)*math.Sin(delta)*math.Cos(phi1),
		math.Cos(delta)-math.Sin(phi1)*sinPhi2,
	)

	p := types.GeoPoint{
		Lat: radiansToDegrees(phi2),
		Lng: normalizeLng(radiansToDegrees(lambda2)),
	}
	return p, p.Valid()
}

// jitter returns a point within maxJitterDeg of origin on each axis.
func jitter(origin types.GeoPoint, rnd RandomSource) types.GeoPoint {
	p := types.GeoPoint{
		Lat: origin.Lat + (rnd.Float64()*2-1)*maxJitterDeg,
		Lng: origin.Lng + (rnd.Float64()*2-1)*maxJitterDeg,
	}
	p.Lat = math.Max(-90, math.Min(90, p.Lat))
	p.Lng = normalizeLng(p.Lng)
	return p
}

func normalizeLng(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	return math.Mod(math.Mod(lng+180, 360)+360, 360) - 180
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radiansToDegrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
