package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidtube/backend/internal/service"
)

// TweetHandler serves the short-post endpoints.
type TweetHandler struct {
	tweetService service.TweetService
}

// NewTweetHandler creates a new TweetHandler.
func NewTweetHandler(tweetService service.TweetService) *TweetHandler {
	return &TweetHandler{tweetService: tweetService}
}

type TweetRequest struct {
	Content string `json:"content" binding:"required"`
}

// Create posts a new tweet for the authenticated user.
func (h *TweetHandler) Create(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	var req TweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	tweet, err := h.tweetService.Create(c.Request.Context(), ownerID, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, tweet, "Tweet created successfully")
}

// ListOwn returns the authenticated user's tweets with like info.
func (h *TweetHandler) ListOwn(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	tweets, err := h.tweetService.ListByOwner(c.Request.Context(), userID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, tweets, "Tweets fetched successfully")
}

// ListByUser returns another user's tweets, with isLiked computed for the
// viewer.
func (h *TweetHandler) ListByUser(c *gin.Context) {
	viewer, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	ownerID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	tweets, err := h.tweetService.ListByOwner(c.Request.Context(), ownerID, viewer)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, tweets, "Tweets fetched successfully")
}

// Update edits an owned tweet's content.
func (h *TweetHandler) Update(c *gin.Context) {
	actor, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	tweetID, ok := objectIDParam(c, "tweetId")
	if !ok {
		return
	}

	var req TweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	tweet, err := h.tweetService.Update(c.Request.Context(), actor, tweetID, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, tweet, "Tweet updated successfully")
}

// Delete removes an owned tweet.
func (h *TweetHandler) Delete(c *gin.Context) {
	actor, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	tweetID, ok := objectIDParam(c, "tweetId")
	if !ok {
		return
	}

	if err := h.tweetService.Delete(c.Request.Context(), actor, tweetID); err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "Tweet deleted successfully")
}
