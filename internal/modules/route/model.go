// README: Route generation request, transient candidate, and generated route record.
package route

import (
	"fmt"
	"math"
	"time"

	"routeroll/internal/types"
)

type Difficulty string

const (
	DifficultyEasy     Difficulty = "easy"
	DifficultyModerate Difficulty = "moderate"
	DifficultyHard     Difficulty = "hard"
)

type Request struct {
	Start                types.GeoPoint
	TargetDistanceMeters float64
	Weather              types.WeatherSnapshot
	Units                types.Units
}

func (r Request) validate() error {
	if !r.Start.Valid() {
		return fmt.Errorf("%w: start (%v, %v) is not a valid coordinate", ErrInvalidInput, r.Start.Lat, r.Start.Lng)
	}
	if math.IsNaN(r.TargetDistanceMeters) || math.IsInf(r.TargetDistanceMeters, 0) || r.TargetDistanceMeters <= 0 {
		return fmt.Errorf("%w: target distance must be positive, got %v", ErrInvalidInput, r.TargetDistanceMeters)
	}
	return nil
}

// Candidate lives for a single attempt.
type Candidate struct {
	Destination types.GeoPoint
	Path        []types.PathPoint
	TravelTime  time.Duration
}

type GeneratedRoute struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	DistanceMeters  float64               `json:"distance_m"`
	DurationSeconds float64               `json:"duration_s"`
	Path            []types.PathPoint     `json:"path"`
	Start           types.GeoPoint        `json:"start"`
	End             types.GeoPoint        `json:"end"`
	Weather         types.WeatherSnapshot `json:"weather"`
	Difficulty      Difficulty            `json:"difficulty"`
	SafetyScore     int                   `json:"safety_score"`
	CreatedAt       time.Time             `json:"created_at"`
}
