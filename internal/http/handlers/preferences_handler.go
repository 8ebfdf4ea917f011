// README: Preference handlers for get/replace.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"routeroll/internal/modules/preferences"
)

type PreferencesHandler struct {
	prefs PreferenceService
}

func NewPreferencesHandler(prefs PreferenceService) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

func (h *PreferencesHandler) Get(c *gin.Context) {
	p, err := h.prefs.Get(c.Request.Context(), callerID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

// Put replaces the whole set; fields left out of the body take their defaults.
func (h *PreferencesHandler) Put(c *gin.Context) {
	p := preferences.Defaults()
	if err := c.ShouldBindJSON(&p); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	saved, err := h.prefs.Update(c.Request.Context(), callerID(c), p)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, saved)
}
