package api

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/config"
	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/service"
)

// UserHandler serves account, session and channel-profile endpoints.
type UserHandler struct {
	authService service.AuthService
	userService service.UserService
	jwtCfg      config.JWTConfig
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService service.AuthService, userService service.UserService, jwtCfg config.JWTConfig) *UserHandler {
	return &UserHandler{authService: authService, userService: userService, jwtCfg: jwtCfg}
}

// --- Request Structs ---

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// --- Handler Methods ---

// Register creates a new account from a multipart form: text fields plus a
// required avatar file and an optional cover image.
func (h *UserHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	fullName := c.PostForm("fullName")
	password := c.PostForm("password")

	avatarHeader, err := c.FormFile("avatar")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Avatar file is required")
		return
	}
	avatar, closeAvatar, err := openUpload(avatarHeader)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read avatar file")
		return
	}
	defer closeAvatar()

	var coverImage *service.FileUpload
	if coverHeader, err := c.FormFile("coverImage"); err == nil {
		cover, closeCover, err := openUpload(coverHeader)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Could not read cover image file")
			return
		}
		defer closeCover()
		coverImage = &cover
	}

	user, err := h.authService.Register(c.Request.Context(), username, email, fullName, password, avatar, coverImage)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, user, "User registered successfully")
}

// Login authenticates by username or email and sets the token pair both in
// the body and as HTTP-only cookies.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, pair, err := h.authService.Login(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, gin.H{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "User logged in successfully")
}

// Logout clears the stored refresh token and expires the auth cookies.
func (h *UserHandler) Logout(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), userID); err != nil {
		handleServiceError(c, err)
		return
	}

	h.clearAuthCookies(c)
	respond(c, http.StatusOK, nil, "User logged out successfully")
}

// Refresh rotates the token pair. The refresh token is taken from the
// cookie first, then from the request body.
func (h *UserHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie("refreshToken")
	if refreshToken == "" {
		var req RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	}, "Access token refreshed")
}

// ChangePassword verifies the old password before setting the new one.
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, nil, "Password changed successfully")
}

// GetCurrent returns the authenticated user's account.
func (h *UserHandler) GetCurrent(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	user, err := h.userService.GetCurrent(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, user, "Current user fetched successfully")
}

// UpdateAccount changes the full name and email of the account.
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	user, err := h.userService.UpdateAccount(c.Request.Context(), userID, req.FullName, req.Email)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, user, "Account details updated successfully")
}

// UpdateAvatar replaces the avatar image.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.userService.UpdateAvatar, "Avatar updated successfully")
}

// UpdateCoverImage replaces the cover image.
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.userService.UpdateCoverImage, "Cover image updated successfully")
}

// GetChannelProfile returns a channel's public profile with subscription
// counts and whether the viewer is subscribed.
func (h *UserHandler) GetChannelProfile(c *gin.Context) {
	viewer, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	username := c.Param("username")
	profile, err := h.userService.GetChannelProfile(c.Request.Context(), username, viewer)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, profile, "Channel profile fetched successfully")
}

// GetWatchHistory returns the viewer's watch history with owner details.
func (h *UserHandler) GetWatchHistory(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	history, err := h.userService.GetWatchHistory(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, history, "Watch history fetched successfully")
}

// --- Helpers ---

// imageUpdateFunc matches UserService.UpdateAvatar and UpdateCoverImage.
type imageUpdateFunc func(ctx context.Context, userID primitive.ObjectID, upload service.FileUpload) (*domain.User, error)

func (h *UserHandler) updateImage(c *gin.Context, field string, update imageUpdateFunc, message string) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Failed to identify user from token")
		return
	}

	header, err := c.FormFile(field)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, field+" file is required")
		return
	}
	upload, closeUpload, err := openUpload(header)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read "+field+" file")
		return
	}
	defer closeUpload()

	user, err := update(c.Request.Context(), userID, upload)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, user, message)
}

// openUpload wraps a multipart file header into a service.FileUpload.
// The returned close func must be called after the service is done reading.
func openUpload(header *multipart.FileHeader) (service.FileUpload, func(), error) {
	file, err := header.Open()
	if err != nil {
		return service.FileUpload{}, nil, err
	}
	upload := service.FileUpload{
		Reader:      file,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}
	return upload, func() { file.Close() }, nil
}

func (h *UserHandler) setAuthCookies(c *gin.Context, pair service.TokenPair) {
	c.SetCookie(accessTokenCookie, pair.AccessToken, int(h.jwtCfg.AccessExpiration.Seconds()), "/", "", true, true)
	c.SetCookie("refreshToken", pair.RefreshToken, int(h.jwtCfg.RefreshExpiration.Seconds()), "/", "", true, true)
}

func (h *UserHandler) clearAuthCookies(c *gin.Context) {
	c.SetCookie(accessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie("refreshToken", "", -1, "/", "", true, true)
}
