package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vmportal/internal/auth"
	"vmportal/internal/models"
	"vmportal/internal/repository"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenManager, *repository.MemoryUserRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tm, err := auth.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	repo := repository.NewMemoryUserRepository()

	router := gin.New()
	router.GET("/whoami", Authenticate(tm, repo, zap.NewNop()), func(c *gin.Context) {
		id := Identity(c)
		c.JSON(http.StatusOK, gin.H{"id": id.ID, "role": id.Role})
	})
	router.GET("/admin", Authenticate(tm, repo, zap.NewNop()), RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router, tm, repo
}

func get(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_MissingOrMalformedHeader(t *testing.T) {
	router, _, _ := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, get(router, "/whoami", "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/whoami", "Basic abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/whoami", "Bearer").Code)
	assert.Equal(t, http.StatusUnauthorized, get(router, "/whoami", "Bearer bad-token").Code)
}

func TestAuthenticate_DeletedUserRejected(t *testing.T) {
	router, tm, repo := newTestRouter(t)

	user := &models.User{ID: "u1", Username: "student1", Email: "s1@school.com", Role: models.RoleStudent}
	require.NoError(t, repo.Create(context.Background(), user))

	token, err := tm.Issue(user)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(router, "/whoami", "Bearer "+token).Code)

	require.NoError(t, repo.Delete(context.Background(), "u1"))
	assert.Equal(t, http.StatusUnauthorized, get(router, "/whoami", "Bearer "+token).Code,
		"a still-unexpired token for a deleted user must not authenticate")
}

func TestAuthenticate_RoleChangeTakesEffectImmediately(t *testing.T) {
	router, tm, repo := newTestRouter(t)

	user := &models.User{ID: "u1", Username: "u1", Email: "u1@school.com", Role: models.RoleAdmin}
	require.NoError(t, repo.Create(context.Background(), user))

	token, err := tm.Issue(user)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(router, "/admin", "Bearer "+token).Code)

	// Downgrade the role while the token is still valid.
	user.Role = models.RoleStudent
	require.NoError(t, repo.Update(context.Background(), user))

	assert.Equal(t, http.StatusForbidden, get(router, "/admin", "Bearer "+token).Code,
		"role is read from the store per request, not from the token")
}
