// README: Base handler utilities (JSON helpers, error mapping, service contracts).
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"routeroll/internal/http/middleware"
	"routeroll/internal/modules/history"
	"routeroll/internal/modules/preferences"
	"routeroll/internal/modules/route"
	"routeroll/internal/types"
)

type RouteGenerator interface {
	Generate(ctx context.Context, req route.Request) (*route.GeneratedRoute, error)
}

type HistoryService interface {
	Save(ctx context.Context, userID types.ID, r *route.GeneratedRoute) (*history.SavedRoute, error)
	List(ctx context.Context, userID types.ID) ([]history.SavedRoute, error)
	MarkWalked(ctx context.Context, userID types.ID, id string) error
	Delete(ctx context.Context, userID types.ID, id string) error
	Stats(ctx context.Context, userID types.ID) (history.Stats, error)
}

type PreferenceService interface {
	Get(ctx context.Context, userID types.ID) (preferences.Preferences, error)
	Update(ctx context.Context, userID types.ID, p preferences.Preferences) (preferences.Preferences, error)
}

type WeatherService interface {
	Current(ctx context.Context, at types.GeoPoint) types.WeatherSnapshot
}

type errorResponse struct {
	Error string `json:"error"`
}

// parseRouteID accepts the UUIDs route generation assigns.
func parseRouteID(c *gin.Context) (string, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func callerID(c *gin.Context) types.ID {
	return types.ID(middleware.CallerUID(c))
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, route.ErrInvalidInput),
		errors.Is(err, history.ErrBadRequest),
		errors.Is(err, preferences.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, history.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusServiceUnavailable, "request cancelled")
	default:
		slog.Error("request failed", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
