package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidtube/backend/internal/service"
)

// DashboardHandler serves channel statistics for channel owners.
type DashboardHandler struct {
	dashboardService service.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats returns aggregate subscriber, video, view and like totals for a
// channel.
func (h *DashboardHandler) GetStats(c *gin.Context) {
	channelID, ok := objectIDParam(c, "channelId")
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetChannelStats(c.Request.Context(), channelID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, stats, "Channel stats fetched successfully")
}

// GetVideos returns a channel's published videos.
func (h *DashboardHandler) GetVideos(c *gin.Context) {
	channelID, ok := objectIDParam(c, "channelId")
	if !ok {
		return
	}

	videos, err := h.dashboardService.GetChannelVideos(c.Request.Context(), channelID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, videos, "Channel videos fetched successfully")
}
