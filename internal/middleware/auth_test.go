package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clipstream_backend/internal/auth"
	"clipstream_backend/internal/models"
	"clipstream_backend/internal/repositories"
	"clipstream_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubUserRepo отдает одного заранее заданного пользователя по ID
type stubUserRepo struct {
	user *models.User
}

func (s *stubUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (s *stubUserRepo) FindByUsername(_ *gorm.DB, _ string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (s *stubUserRepo) FindByLogin(_ *gorm.DB, _ string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (s *stubUserRepo) ExistsByUsernameOrEmail(_ *gorm.DB, _, _ string) (bool, error) {
	return false, nil
}

func (s *stubUserRepo) Create(_ *gorm.DB, _ *models.User) error { return nil }

func (s *stubUserRepo) UpdateAccount(_ *gorm.DB, _, _, _ string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (s *stubUserRepo) UpdatePassword(_ *gorm.DB, _, _ string) error { return nil }

func (s *stubUserRepo) UpdateAvatar(_ *gorm.DB, _, _ string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (s *stubUserRepo) UpdateCoverImage(_ *gorm.DB, _, _ string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (s *stubUserRepo) SetRefreshToken(_ *gorm.DB, _, _ string) error { return nil }

func (s *stubUserRepo) RotateRefreshToken(_ *gorm.DB, _, _, _ string) error { return nil }

func (s *stubUserRepo) ClearRefreshToken(_ *gorm.DB, _ string) error { return nil }

// ---------------------------------------------------------------------------

func newGuardRouter(t *testing.T, optional bool) (*gin.Engine, *auth.TokenManager, *stubUserRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewTokenManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	repo := &stubUserRepo{
		user: &models.User{
			BaseModel: models.BaseModel{ID: "user-1"},
			Username:  "chai",
			Email:     "chai@test.com",
			FullName:  "Chai Aunt",
		},
	}

	router := gin.New()
	// Guard читает db из контекста; в этих тестах репозиторий его игнорирует
	router.Use(func(c *gin.Context) {
		c.Set(string(contextkeys.DBContextKey), (*gorm.DB)(nil))
	})

	guard := AccessGuard(tokens, repo)
	if optional {
		guard = OptionalAccessGuard(tokens, repo)
	}

	router.GET("/protected", guard, func(c *gin.Context) {
		userID, _ := c.Get(contextkeys.UserIDKey)
		id, _ := userID.(string)
		c.JSON(http.StatusOK, gin.H{"userID": id})
	})

	return router, tokens, repo
}

func issueAccessToken(t *testing.T, tokens *auth.TokenManager, userID string) string {
	t.Helper()
	tokenStr, err := tokens.GenerateAccessToken(auth.Identity{ID: userID, Username: "chai"})
	require.NoError(t, err)
	return tokenStr
}

func TestAccessGuard_MissingToken(t *testing.T) {
	router, _, _ := newGuardRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized request, login to access")
}

func TestAccessGuard_BearerToken(t *testing.T) {
	router, tokens, _ := newGuardRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccessToken(t, tokens, "user-1"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAccessGuard_CookieToken(t *testing.T) {
	router, tokens, _ := newGuardRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: issueAccessToken(t, tokens, "user-1")})
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

// Cookie имеет приоритет: мусорный заголовок не мешает валидной cookie...
func TestAccessGuard_CookieBeatsHeader(t *testing.T) {
	router, tokens, _ := newGuardRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: issueAccessToken(t, tokens, "user-1")})
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// ...а мусорная cookie валидным заголовком не спасается
func TestAccessGuard_BadCookieNotRescuedByHeader(t *testing.T) {
	router, tokens, _ := newGuardRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: "garbage"})
	req.Header.Set("Authorization", "Bearer "+issueAccessToken(t, tokens, "user-1"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccessGuard_InvalidToken(t *testing.T) {
	router, _, _ := newGuardRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired token")
}

func TestAccessGuard_ExpiredToken(t *testing.T) {
	router, _, _ := newGuardRouter(t, false)
	expired := auth.NewTokenManager("access-secret", "refresh-secret", -time.Minute, time.Hour)

	tokenStr, err := expired.GenerateAccessToken(auth.Identity{ID: "user-1"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// Токен валиден, но пользователь уже удален
func TestAccessGuard_DeletedUser(t *testing.T) {
	router, tokens, _ := newGuardRouter(t, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccessToken(t, tokens, "ghost-user"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAccessGuard_NoToken(t *testing.T) {
	router, _, _ := newGuardRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	// Запрос проходит, userID пустой
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":""`)
}

func TestOptionalAccessGuard_WithToken(t *testing.T) {
	router, tokens, _ := newGuardRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+issueAccessToken(t, tokens, "user-1"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}
