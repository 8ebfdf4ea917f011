// README: Google Maps Directions adapter returning decoded walking paths.
package maps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"googlemaps.github.io/maps"

	"routeroll/internal/types"
)

var ErrNoRoute = errors.New("no route found")

// RouteService handles interactions with the Google Maps Directions API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
// Extra client options (e.g. maps.WithBaseURL in tests) are passed through.
func NewRouteService(apiKey string, opts ...maps.ClientOption) (*RouteService, error) {
	client, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// FetchPath returns the decoded walking path of the first route from origin to
// destination and the summed travel time of its legs.
func (s *RouteService) FetchPath(ctx context.Context, origin, destination types.GeoPoint) ([]types.PathPoint, time.Duration, error) {
	r := &maps.DirectionsRequest{
		Origin:      formatLatLng(origin),
		Destination: formatLatLng(destination),
		Mode:        maps.TravelModeWalking,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return nil, 0, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 {
		return nil, 0, ErrNoRoute
	}

	route := routes[0]
	decoded, err := route.OverviewPolyline.Decode()
	if err != nil {
		return nil, 0, fmt.Errorf("decode polyline: %w", err)
	}

	points := make([]types.GeoPoint, 0, len(decoded))
	for _, ll := range decoded {
		p := types.GeoPoint{Lat: ll.Lat, Lng: ll.Lng}
		if p.Valid() {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return nil, 0, ErrNoRoute
	}

	var total time.Duration
	for _, leg := range route.Legs {
		total += leg.Duration
	}
	return types.NewPath(points), total, nil
}

func formatLatLng(p types.GeoPoint) string {
	return strconv.FormatFloat(p.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(p.Lng, 'f', 6, 64)
}
