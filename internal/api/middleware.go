package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/service"
)

// Constants for context keys
const (
	ContextUserIDKey   = "userID"
	ContextUsernameKey = "username"
)

// accessTokenCookie is read when the Authorization header is absent, so
// browser clients work without attaching headers themselves.
const accessTokenCookie = "accessToken"

// AuthMiddleware creates a Gin middleware that validates the access token
// from the Authorization header or the accessToken cookie.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			if cookie, err := c.Cookie(accessTokenCookie); err == nil {
				tokenString = cookie
			}
		}
		if tokenString == "" {
			abortWithError(c, http.StatusUnauthorized, "Authentication token is missing")
			return
		}

		claims, err := authService.ParseAccessToken(tokenString)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid or expired access token")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// currentUserID returns the authenticated user's id from the context.
// Only valid after AuthMiddleware has run.
func currentUserID(c *gin.Context) (primitive.ObjectID, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return primitive.NilObjectID, errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid user ID type in context")
	}
	return primitive.ObjectIDFromHex(idStr)
}

// objectIDParam parses a path parameter as an ObjectID, aborting with 400
// on malformed input so nothing malformed ever reaches a query.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return primitive.NilObjectID, false
	}
	return id, true
}

// pageParams reads ?page and ?limit, falling back to sane defaults and
// clamping the limit so a single request cannot ask for the whole collection.
func pageParams(c *gin.Context) (page, limit int64) {
	page, _ = strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}
