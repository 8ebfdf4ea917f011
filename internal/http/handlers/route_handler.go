// README: Route handlers for generate/list/walked/delete and walking stats.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"routeroll/internal/modules/preferences"
	"routeroll/internal/modules/route"
	"routeroll/internal/types"
)

const (
	walkingSpeedKph = 5.0
	metersPerMile   = 1609.34
)

type RouteHandler struct {
	routes  RouteGenerator
	history HistoryService
	prefs   PreferenceService
	weather WeatherService
}

func NewRouteHandler(routes RouteGenerator, history HistoryService, prefs PreferenceService, weather WeatherService) *RouteHandler {
	return &RouteHandler{routes: routes, history: history, prefs: prefs, weather: weather}
}

type generateRouteReq struct {
	Lat         *float64               `json:"lat"`
	Lng         *float64               `json:"lng"`
	DistanceM   float64                `json:"distance_m"`
	Distance    float64                `json:"distance"`
	DurationMin float64                `json:"duration_min"`
	Units       string                 `json:"units"`
	Weather     *types.WeatherSnapshot `json:"weather"`
}

func (h *RouteHandler) Generate(c *gin.Context) {
	var req generateRouteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(c, http.StatusBadRequest, "missing fields")
		return
	}
	uid := callerID(c)
	ctx := c.Request.Context()

	prefs := preferences.Defaults()
	if h.prefs != nil {
		p, err := h.prefs.Get(ctx, uid)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		prefs = p
	}
	units := prefs.Units
	if req.Units != "" {
		units = types.ParseUnits(req.Units)
	}

	start := types.GeoPoint{Lat: *req.Lat, Lng: *req.Lng}
	w := types.WeatherSnapshot{}
	if req.Weather != nil {
		w = *req.Weather
	} else if start.Valid() {
		w = h.weather.Current(ctx, start)
	}

	r, err := h.routes.Generate(ctx, route.Request{
		Start:                start,
		TargetDistanceMeters: targetDistance(req, units, prefs.PreferredDurationMin),
		Weather:              w,
		Units:                units,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if r == nil {
		writeError(c, http.StatusNotFound, "no route found")
		return
	}

	saved, err := h.history.Save(ctx, uid, r)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, saved)
}

// targetDistance picks the first of distance_m, distance (km or mi by units),
// duration_min, then the preferred duration. Durations assume 5 km/h.
func targetDistance(req generateRouteReq, units types.Units, preferredMin int) float64 {
	switch {
	case req.DistanceM != 0:
		return req.DistanceM
	case req.Distance != 0 && units == types.UnitsImperial:
		return req.Distance * metersPerMile
	case req.Distance != 0:
		return req.Distance * 1000
	case req.DurationMin != 0:
		return req.DurationMin / 60 * walkingSpeedKph * 1000
	}
	return float64(preferredMin) / 60 * walkingSpeedKph * 1000
}

func (h *RouteHandler) List(c *gin.Context) {
	routes, err := h.history.List(c.Request.Context(), callerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"routes": routes})
}

func (h *RouteHandler) MarkWalked(c *gin.Context) {
	id, ok := parseRouteID(c)
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid route id")
		return
	}
	if err := h.history.MarkWalked(c.Request.Context(), callerID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"route_id": id, "walked": true})
}

func (h *RouteHandler) Delete(c *gin.Context) {
	id, ok := parseRouteID(c)
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid route id")
		return
	}
	if err := h.history.Delete(c.Request.Context(), callerID(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *RouteHandler) Stats(c *gin.Context) {
	st, err := h.history.Stats(c.Request.Context(), callerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}
