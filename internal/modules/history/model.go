// README: Saved route record and walking stats.
package history

import (
	"time"

	"routeroll/internal/modules/route"
	"routeroll/internal/types"
)

type SavedRoute struct {
	route.GeneratedRoute
	UserID   types.ID   `json:"user_id"`
	WalkedAt *time.Time `json:"walked_at,omitempty"`
}

// PeriodStats totals the walks whose local day falls inside one calendar period.
type PeriodStats struct {
	Routes         int     `json:"routes"`
	DistanceMeters float64 `json:"distance_m"`
	TimeSeconds    float64 `json:"time_s"`
}

func (p *PeriodStats) add(w walkRecord) {
	p.Routes++
	p.DistanceMeters += w.DistanceM
	p.TimeSeconds += w.DurationS
}

// Stats periods are calendar based in the service location. Weeks start on Sunday.
type Stats struct {
	TotalRoutes         int         `json:"total_routes"`
	TotalDistanceMeters float64     `json:"total_distance_m"`
	TotalTimeSeconds    float64     `json:"total_time_s"`
	CurrentStreak       int         `json:"current_streak"`
	LongestStreak       int         `json:"longest_streak"`
	LastWalkDate        *time.Time  `json:"last_walk_date,omitempty"`
	Today               PeriodStats `json:"today"`
	ThisWeek            PeriodStats `json:"this_week"`
	ThisMonth           PeriodStats `json:"this_month"`
	ThisYear            PeriodStats `json:"this_year"`
}

// walkRecord is the slice of a walked route that stats need.
type walkRecord struct {
	DistanceM float64
	DurationS float64
	WalkedAt  time.Time
}
