package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vidtube/backend/internal/service"
)

// apiResponse is the uniform envelope every successful endpoint returns.
type apiResponse struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

// apiError is the failure envelope: the base shape plus an errors list,
// present even when empty.
type apiError struct {
	apiResponse
	Errors []string `json:"errors"`
}

// errorLog receives unexpected service failures. SetupRoutes swaps in the
// application logger; the default keeps early aborts from going dark.
var errorLog = logrus.StandardLogger()

func respond(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, apiResponse{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    code < http.StatusBadRequest,
	})
}

// abortWithError writes a failure envelope and stops the handler chain.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, apiError{
		apiResponse: apiResponse{
			StatusCode: code,
			Message:    message,
		},
		Errors: []string{},
	})
}

// handleServiceError maps the service error taxonomy to HTTP status codes.
// Every specific service error wraps one of the taxonomy sentinels, so a
// single errors.Is per kind covers all of them. Upstream and unclassified
// errors are logged for operators; the client only sees a generic message.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUnauthenticated):
		abortWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrForbidden):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUpstream):
		errorLog.WithError(err).WithField("path", c.FullPath()).Error("Upstream dependency failure")
		abortWithError(c, http.StatusInternalServerError, "An upstream dependency failed")
	default:
		errorLog.WithError(err).WithField("path", c.FullPath()).Error("Unhandled service error")
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
