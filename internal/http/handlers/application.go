package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sitterboard/internal/app"
	"sitterboard/internal/http/response"
)

type ApplicationHandler struct {
	applications *app.ApplicationService
}

func NewApplicationHandler(applications *app.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applications: applications}
}

type applyRequest struct {
	Message string `json:"message"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *ApplicationHandler) Apply(c *gin.Context) {
	caller, err := callerFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	noticeID, err := idParam(c, "noticeId", "notice")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req applyRequest
	bindLenient(c, &req)
	created, err := h.applications.Apply(c.Request.Context(), caller, noticeID, req.Message)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"message": "Application submitted successfully", "application": created})
}

func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	caller, err := callerFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	noticeID, err := idParam(c, "noticeId", "notice")
	if err != nil {
		response.Error(c, err)
		return
	}
	applicationID, err := idParam(c, "applicationId", "application")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req updateStatusRequest
	bindLenient(c, &req)
	result, err := h.applications.UpdateStatus(c.Request.Context(), caller, noticeID, applicationID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"message":     "Application status updated successfully",
		"application": result.Application,
		"notice":      result.Notice,
		"cascaded":    result.Cascaded,
	})
}

func (h *ApplicationHandler) ListMine(c *gin.Context) {
	caller, err := callerFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.applications.ListForStudent(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"applications": items})
}
