package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/service"
)

// LikeHandler serves the like toggle endpoints for videos, comments and
// tweets.
type LikeHandler struct {
	likeService service.LikeService
}

// NewLikeHandler creates a new LikeHandler.
func NewLikeHandler(likeService service.LikeService) *LikeHandler {
	return &LikeHandler{likeService: likeService}
}

// ToggleVideo flips the like state on a video.
func (h *LikeHandler) ToggleVideo(c *gin.Context) {
	h.toggle(c, "videoId", h.likeService.ToggleVideoLike)
}

// ToggleComment flips the like state on a comment.
func (h *LikeHandler) ToggleComment(c *gin.Context) {
	h.toggle(c, "commentId", h.likeService.ToggleCommentLike)
}

// ToggleTweet flips the like state on a tweet.
func (h *LikeHandler) ToggleTweet(c *gin.Context) {
	h.toggle(c, "tweetId", h.likeService.ToggleTweetLike)
}

// GetLikedVideos lists videos the authenticated user has liked.
func (h *LikeHandler) GetLikedVideos(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	videos, err := h.likeService.GetLikedVideos(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, videos, "Liked videos fetched successfully")
}

type toggleFunc func(ctx context.Context, targetID, userID primitive.ObjectID) (*domain.Like, bool, error)

func (h *LikeHandler) toggle(c *gin.Context, param string, fn toggleFunc) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	targetID, ok := objectIDParam(c, param)
	if !ok {
		return
	}

	like, liked, err := fn(c.Request.Context(), targetID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	message := "Like removed"
	var data interface{} = gin.H{"liked": false}
	if liked {
		message = "Like added"
		data = gin.H{"liked": true, "like": like}
	}
	respond(c, http.StatusOK, data, message)
}
