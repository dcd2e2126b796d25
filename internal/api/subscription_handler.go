package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidtube/backend/internal/service"
)

// SubscriptionHandler serves the channel subscription endpoints.
type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(subscriptionService service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionService: subscriptionService}
}

// Toggle flips the authenticated user's subscription to a channel.
func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	subscriberID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	channelID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	sub, subscribed, err := h.subscriptionService.Toggle(c.Request.Context(), channelID, subscriberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	message := "Unsubscribed from channel"
	var data interface{} = gin.H{"subscribed": false}
	if subscribed {
		message = "Subscribed to channel"
		data = gin.H{"subscribed": true, "subscription": sub}
	}
	respond(c, http.StatusOK, data, message)
}

// GetSubscribers lists a channel's subscribers with their profiles.
func (h *SubscriptionHandler) GetSubscribers(c *gin.Context) {
	channelID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	subscribers, err := h.subscriptionService.GetChannelSubscribers(c.Request.Context(), channelID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, subscribers, "Subscribers fetched successfully")
}

// GetSubscribedChannels lists the channels a user is subscribed to.
func (h *SubscriptionHandler) GetSubscribedChannels(c *gin.Context) {
	subscriberID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	channels, err := h.subscriptionService.GetSubscribedChannels(c.Request.Context(), subscriberID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, channels, "Subscribed channels fetched successfully")
}
