package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/partaj-app/partaj-backend/internal/domain"
	"github.com/partaj-app/partaj-backend/internal/platform/ctxutil"
	"github.com/partaj-app/partaj-backend/internal/platform/logger"
)

type fakeAuthService struct {
	userID uuid.UUID
	err    error
}

func (f *fakeAuthService) Register(ctx context.Context, user *types.User, password string) (*types.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, string, error) {
	return "", "", errors.New("not implemented")
}

func (f *fakeAuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	return "", "", errors.New("not implemented")
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string) error {
	return errors.New("not implemented")
}

func (f *fakeAuthService) ContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if f.err != nil {
		return nil, f.err
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      f.userID,
	}), nil
}

func (f *fakeAuthService) AccessTTL() time.Duration { return time.Hour }

func newAuthRouter(t *testing.T, svc *fakeAuthService) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	require.NoError(t, err)

	r := gin.New()
	r.Use(NewAuthMiddleware(log, svc).RequireAuth())
	r.GET("/me", func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": rd.UserID.String()})
	})
	return r
}

func TestRequireAuthMissingToken(t *testing.T) {
	t.Parallel()

	r := newAuthRouter(t, &fakeAuthService{userID: uuid.New()})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthInvalidToken(t *testing.T) {
	t.Parallel()

	r := newAuthRouter(t, &fakeAuthService{err: errors.New("bad token")})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthBearerToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	r := newAuthRouter(t, &fakeAuthService{userID: userID})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), userID.String())
}

func TestRequireAuthQueryToken(t *testing.T) {
	t.Parallel()

	r := newAuthRouter(t, &fakeAuthService{userID: uuid.New()})
	req := httptest.NewRequest(http.MethodGet, "/me?token=sometoken", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthNilUser(t *testing.T) {
	t.Parallel()

	r := newAuthRouter(t, &fakeAuthService{userID: uuid.Nil})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
