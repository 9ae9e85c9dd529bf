package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sitterboard/internal/app"
	"sitterboard/internal/domain/notice"
	"sitterboard/internal/http/response"
)

type NoticeHandler struct {
	notices *app.NoticeService
}

func NewNoticeHandler(notices *app.NoticeService) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

type noticeRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Address     string  `json:"address"`
	Location    string  `json:"location"`
	PayRate     float64 `json:"payRate"`
	Duration    string  `json:"duration"`
	AgeGroup    string  `json:"ageGroup"`
}

func (h *NoticeHandler) Create(c *gin.Context) {
	caller, err := callerFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req noticeRequest
	if err := decodeJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	created, err := h.notices.Create(c.Request.Context(), caller, notice.Fields(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"message": "Notice created successfully", "notice": created})
}

func (h *NoticeHandler) ListOpen(c *gin.Context) {
	items, err := h.notices.ListOpen(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"notices": items})
}

func (h *NoticeHandler) ListMine(c *gin.Context) {
	caller, err := callerFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, err := h.notices.ListOwned(c.Request.Context(), caller)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"notices": items})
}

func (h *NoticeHandler) Get(c *gin.Context) {
	caller, err := callerFrom(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	id, err := idParam(c, "noticeId", "notice")
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.notices.Get(c.Request.Context(), caller, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"notice": item})
}
