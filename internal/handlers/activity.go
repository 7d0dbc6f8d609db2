package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskboard/taskboard-api/internal/dto"
	"github.com/taskboard/taskboard-api/internal/services"
)

type ActivityHandler struct {
	activityService *services.ActivityService
}

func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

// ListActivities returns the most recent activity entries, newest first
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	activities, err := h.activityService.Recent()
	if err != nil {
		respondTaskError(c, err)
		return
	}

	items := dto.ToActivityDTOs(activities)
	c.JSON(http.StatusOK, gin.H{
		"count":      len(items),
		"activities": items,
	})
}
