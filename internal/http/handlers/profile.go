package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sitterboard/internal/app"
	"sitterboard/internal/http/response"
)

type ProfileHandler struct {
	profiles *app.ProfileService
}

func NewProfileHandler(profiles *app.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	caller, err := callerFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	profile, err := h.profiles.Get(c.Request.Context(), caller.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"profile": profile})
}

func Health(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"status": "ok"})
}
