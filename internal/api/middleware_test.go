package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vidtube/backend/internal/domain"
	"vidtube/backend/internal/service"
)

// stubAuthService accepts exactly one token string and returns canned
// claims for it. Everything except ParseAccessToken panics: the middleware
// must not touch the rest of the interface.
type stubAuthService struct {
	validToken string
	claims     *service.AccessClaims
}

func (s *stubAuthService) ParseAccessToken(token string) (*service.AccessClaims, error) {
	if token == s.validToken {
		return s.claims, nil
	}
	return nil, service.ErrUnauthenticated
}

func (s *stubAuthService) Register(context.Context, string, string, string, string, service.FileUpload, *service.FileUpload) (*domain.User, error) {
	panic("not expected")
}

func (s *stubAuthService) Login(context.Context, string, string, string) (*domain.User, service.TokenPair, error) {
	panic("not expected")
}

func (s *stubAuthService) Logout(context.Context, primitive.ObjectID) error { panic("not expected") }

func (s *stubAuthService) Refresh(context.Context, string) (service.TokenPair, error) {
	panic("not expected")
}

func (s *stubAuthService) ChangePassword(context.Context, primitive.ObjectID, string, string) error {
	panic("not expected")
}

func newAuthTestRouter(userID primitive.ObjectID) (*gin.Engine, string) {
	gin.SetMode(gin.TestMode)

	token := "good-token"
	auth := &stubAuthService{
		validToken: token,
		claims: &service.AccessClaims{
			UserID:           userID.Hex(),
			Username:         "gopher",
			RegisteredClaims: jwt.RegisteredClaims{},
		},
	}

	router := gin.New()
	router.GET("/protected", AuthMiddleware(auth), func(c *gin.Context) {
		id, err := currentUserID(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "no user in context")
			return
		}
		respond(c, http.StatusOK, gin.H{"userId": id.Hex()}, "ok")
	})
	return router, token
}

// decodeEnvelope unmarshals into the failure shape, which is a superset of
// the success shape; Errors stays nil for success bodies.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) apiError {
	t.Helper()
	var envelope apiError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	return envelope
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	router, _ := newAuthTestRouter(primitive.NewObjectID())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	envelope := decodeEnvelope(t, rr)
	assert.False(t, envelope.Success)
	assert.Equal(t, http.StatusUnauthorized, envelope.StatusCode)
	assert.NotNil(t, envelope.Errors)
}

func TestAuthMiddlewareBearerHeader(t *testing.T) {
	userID := primitive.NewObjectID()
	router, token := newAuthTestRouter(userID)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	envelope := decodeEnvelope(t, rr)
	assert.True(t, envelope.Success)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, userID.Hex(), data["userId"])
}

func TestAuthMiddlewareCookieFallback(t *testing.T) {
	router, token := newAuthTestRouter(primitive.NewObjectID())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: accessTokenCookie, Value: token})
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	router, _ := newAuthTestRouter(primitive.NewObjectID())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer forged")
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	router, token := newAuthTestRouter(primitive.NewObjectID())

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", token) // missing the Bearer prefix
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestObjectIDParamRejectsMalformedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/things/:thingId", func(c *gin.Context) {
		id, ok := objectIDParam(c, "thingId")
		if !ok {
			return
		}
		respond(c, http.StatusOK, gin.H{"id": id.Hex()}, "ok")
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/things/not-an-object-id", nil)
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	envelope := decodeEnvelope(t, rr)
	assert.False(t, envelope.Success)
}

func TestPageParamsDefaultsAndClamping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name      string
		query     string
		wantPage  int64
		wantLimit int64
	}{
		{"defaults", "", 1, 10},
		{"explicit", "?page=3&limit=25", 3, 25},
		{"negative page", "?page=-2", 1, 10},
		{"zero limit", "?limit=0", 1, 10},
		{"oversized limit", "?limit=5000", 1, 100},
		{"garbage", "?page=abc&limit=xyz", 1, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/"+tc.query, nil)

			page, limit := pageParams(c)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantLimit, limit)
		})
	}
}
