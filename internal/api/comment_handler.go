package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidtube/backend/internal/service"
)

// CommentHandler serves the video comment endpoints.
type CommentHandler struct {
	commentService service.CommentService
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

type CommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListForVideo returns a page of a video's comments, newest first.
func (h *CommentHandler) ListForVideo(c *gin.Context) {
	viewer, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}

	page, limit := pageParams(c)
	comments, err := h.commentService.ListForVideo(c.Request.Context(), videoID, viewer, page, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, comments, "Comments fetched successfully")
}

// Add creates a comment on a video.
func (h *CommentHandler) Add(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	comment, err := h.commentService.Add(c.Request.Context(), ownerID, videoID, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, comment, "Comment added successfully")
}

// Update edits an owned comment.
func (h *CommentHandler) Update(c *gin.Context) {
	actor, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	commentID, ok := objectIDParam(c, "commentId")
	if !ok {
		return
	}

	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	comment, err := h.commentService.Update(c.Request.Context(), actor, commentID, req.Content)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, comment, "Comment updated successfully")
}

// Delete removes an owned comment.
func (h *CommentHandler) Delete(c *gin.Context) {
	actor, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	commentID, ok := objectIDParam(c, "commentId")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), actor, commentID); err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "Comment deleted successfully")
}
