package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidtube/backend/internal/service"
)

// PlaylistHandler serves the playlist endpoints.
type PlaylistHandler struct {
	playlistService service.PlaylistService
}

// NewPlaylistHandler creates a new PlaylistHandler.
func NewPlaylistHandler(playlistService service.PlaylistService) *PlaylistHandler {
	return &PlaylistHandler{playlistService: playlistService}
}

type PlaylistRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Create makes a new empty playlist for the authenticated user.
func (h *PlaylistHandler) Create(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	var req PlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	playlist, err := h.playlistService.Create(c.Request.Context(), ownerID, req.Name, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, playlist, "Playlist created successfully")
}

// ListOwn returns the authenticated user's playlists with owner info.
func (h *PlaylistHandler) ListOwn(c *gin.Context) {
	ownerID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	playlists, err := h.playlistService.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, playlists, "Playlists fetched successfully")
}

// ListByUser returns another user's playlists.
func (h *PlaylistHandler) ListByUser(c *gin.Context) {
	ownerID, ok := objectIDParam(c, "userId")
	if !ok {
		return
	}

	playlists, err := h.playlistService.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, playlists, "Playlists fetched successfully")
}

// Get returns one playlist with owner and video details.
func (h *PlaylistHandler) Get(c *gin.Context) {
	playlistID, ok := objectIDParam(c, "playlistId")
	if !ok {
		return
	}

	view, err := h.playlistService.Get(c.Request.Context(), playlistID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, view, "Playlist fetched successfully")
}

// Update renames an owned playlist.
func (h *PlaylistHandler) Update(c *gin.Context) {
	actor, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	playlistID, ok := objectIDParam(c, "playlistId")
	if !ok {
		return
	}

	var req PlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	playlist, err := h.playlistService.Update(c.Request.Context(), actor, playlistID, req.Name, req.Description)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, playlist, "Playlist updated successfully")
}

// Delete removes an owned playlist.
func (h *PlaylistHandler) Delete(c *gin.Context) {
	actor, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	playlistID, ok := objectIDParam(c, "playlistId")
	if !ok {
		return
	}

	if err := h.playlistService.Delete(c.Request.Context(), actor, playlistID); err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "Playlist deleted successfully")
}

// AddVideo adds a video to an owned playlist. Adding the same video twice
// is a conflict.
func (h *PlaylistHandler) AddVideo(c *gin.Context) {
	actor, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	playlistID, ok := objectIDParam(c, "playlistId")
	if !ok {
		return
	}
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}

	playlist, err := h.playlistService.AddVideo(c.Request.Context(), actor, playlistID, videoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, playlist, "Video added to playlist")
}

// RemoveVideo removes a video from an owned playlist.
func (h *PlaylistHandler) RemoveVideo(c *gin.Context) {
	actor, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}
	playlistID, ok := objectIDParam(c, "playlistId")
	if !ok {
		return
	}
	videoID, ok := objectIDParam(c, "videoId")
	if !ok {
		return
	}

	playlist, err := h.playlistService.RemoveVideo(c.Request.Context(), actor, playlistID, videoID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, playlist, "Video removed from playlist")
}
