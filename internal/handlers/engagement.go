package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coursova/backend/internal/logger"
	"github.com/coursova/backend/internal/services"
)

type EngagementHandler struct {
	log               *logger.Logger
	engagementService services.EngagementService
}

func NewEngagementHandler(log *logger.Logger, engagementService services.EngagementService) *EngagementHandler {
	return &EngagementHandler{
		log:               log.With("handler", "EngagementHandler"),
		engagementService: engagementService,
	}
}

func (h *EngagementHandler) RecordWatchTime(c *gin.Context) {
	var input services.WatchTimeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	rec, err := h.engagementService.RecordWatchTime(c.Request.Context(), input)
	if err != nil {
		h.log.Warn("RecordWatchTime failed", "error", err)
		RespondError(c, http.StatusBadRequest, "record_watch_time_failed", err)
		return
	}
	RespondOK(c, gin.H{"engagement": rec})
}
