// README: NATS publisher for route history events.
package events

import (
	"context"
	"encoding/json"
	"time"

	"routeroll/internal/modules/history"
	"routeroll/internal/types"
)

const (
	SubjectRouteGenerated = "routes.generated"
	SubjectRouteWalked    = "routes.walked"
)

// Conn is the slice of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
}

type RouteGenerated struct {
	RouteID        string    `json:"route_id"`
	UserID         types.ID  `json:"user_id"`
	DistanceMeters float64   `json:"distance_m"`
	Difficulty     string    `json:"difficulty"`
	CreatedAt      time.Time `json:"created_at"`
}

type RouteWalked struct {
	RouteID  string    `json:"route_id"`
	UserID   types.ID  `json:"user_id"`
	WalkedAt time.Time `json:"walked_at"`
}

// Publisher implements history.Events.
type Publisher struct {
	conn Conn
}

var _ history.Events = (*Publisher)(nil)

func NewPublisher(conn Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) RouteSaved(_ context.Context, r *history.SavedRoute) error {
	return p.publish(SubjectRouteGenerated, RouteGenerated{
		RouteID:        r.ID,
		UserID:         r.UserID,
		DistanceMeters: r.DistanceMeters,
		Difficulty:     string(r.Difficulty),
		CreatedAt:      r.CreatedAt,
	})
}

func (p *Publisher) RouteWalked(_ context.Context, userID types.ID, routeID string, at time.Time) error {
	return p.publish(SubjectRouteWalked, RouteWalked{RouteID: routeID, UserID: userID, WalkedAt: at})
}

func (p *Publisher) publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.conn.Publish(subject, data)
}
