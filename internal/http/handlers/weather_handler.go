// README: Weather handler.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"routeroll/internal/modules/weather"
	"routeroll/internal/types"
)

type WeatherHandler struct {
	weather WeatherService
}

func NewWeatherHandler(w WeatherService) *WeatherHandler {
	return &WeatherHandler{weather: w}
}

type weatherResp struct {
	types.WeatherSnapshot
	Icon string `json:"icon"`
}

func (h *WeatherHandler) Current(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	at := types.GeoPoint{Lat: lat, Lng: lng}
	if errLat != nil || errLng != nil || !at.Valid() {
		writeError(c, http.StatusBadRequest, "invalid lat/lng")
		return
	}
	w := h.weather.Current(c.Request.Context(), at)
	writeJSON(c, http.StatusOK, weatherResp{WeatherSnapshot: w, Icon: weather.Icon(w.ConditionCode)})
}
