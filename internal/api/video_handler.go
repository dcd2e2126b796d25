package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/repository"
	"vidtube/backend/internal/service"
)

// VideoHandler serves video publishing, browsing and management endpoints.
type VideoHandler struct {
	videoService service.VideoService
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(videoService service.VideoService) *VideoHandler {
	return &VideoHandler{videoService: videoService}
}

// List returns a page of published videos. Supports free-text search over
// title and description, sorting and filtering by owner.
func (h *VideoHandler) List(c *gin.Context) {
	viewer, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	page, limit := pageParams(c)
	q := repository.ListVideosQuery{
		Search:   c.Query("query"),
		Viewer:   viewer,
		SortBy:   c.DefaultQuery("sortBy", "createdAt"),
		SortDesc: c.DefaultQuery("sortType", "desc") != "asc",
		Page:     page,
		Limit:    limit,
	}

	if ownerHex := c.Query("userId"); ownerHex != "" {
		ownerID, err := primitive.ObjectIDFromHex(ownerHex)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid userId format")
			return
		}
		q.OwnerID = &ownerID
	}

	videos, err := h.videoService.List(c.Request.Context(), q)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, videos, "Videos fetched successfully")
}

// Publish uploads a video file and its thumbnail and creates the record.
func (h *VideoHandler) Publish(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	duration, _ := strconv.ParseFloat(c.PostForm("duration"), 64)

	videoHeader, err := c.FormFile("videoFile")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Video file is required")
		return
	}
	videoFile, closeVideo, err := openUpload(videoHeader)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read video file")
		return
	}
	defer closeVideo()

	thumbHeader, err := c.FormFile("thumbnail")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Thumbnail file is required")
		return
	}
	thumbnail, closeThumb, err := openUpload(thumbHeader)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read thumbnail file")
		return
	}
	defer closeThumb()

	video, err := h.videoService.Publish(c.Request.Context(), ownerID, title, description, duration, videoFile, thumbnail)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, video, "Video published successfully")
}

// Get returns the full video view. Viewing counts: the videos view counter
// is incremented and the video is appended to the viewer's watch history.
func (h *VideoHandler) Get(c *gin.Context) {
	viewer, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}

	view, err := h.videoService.Get(c.Request.Context(), videoID, viewer)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, view, "Video fetched successfully")
}

// Update changes title, description and optionally the thumbnail.
func (h *VideoHandler) Update(c *gin.Context) {
	actor, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")

	var thumbnail *service.FileUpload
	if thumbHeader, err := c.FormFile("thumbnail"); err == nil {
		upload, closeThumb, err := openUpload(thumbHeader)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Could not read thumbnail file")
			return
		}
		defer closeThumb()
		thumbnail = &upload
	}

	video, err := h.videoService.Update(c.Request.Context(), actor, videoID, title, description, thumbnail)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, video, "Video updated successfully")
}

// Delete removes the video, its stored files and its likes and comments.
func (h *VideoHandler) Delete(c *gin.Context) {
	actor, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}

	if err := h.videoService.Delete(c.Request.Context(), actor, videoID); err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "Video deleted successfully")
}

// TogglePublish flips the published state of an owned video.
func (h *VideoHandler) TogglePublish(c *gin.Context) {
	actor, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}

	video, err := h.videoService.TogglePublish(c.Request.Context(), actor, videoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, video, "Publish state toggled successfully")
}
