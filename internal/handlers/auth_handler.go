package handlers

import (
	"fmt"
	"net/http"

	"clipstream_backend/internal/config"
	"clipstream_backend/internal/services"
	"clipstream_backend/internal/services/dto"
	"clipstream_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

type AuthHandler struct {
	*BaseHandler
	authService   services.AuthService
	uploadService services.UploadService
	cfg           *config.Config
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService, uploadService services.UploadService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		BaseHandler:   base,
		authService:   authService,
		uploadService: uploadService,
		cfg:           cfg,
	}
}

// RegisterRoutes регистрирует маршруты аутентификации под /api/v1/users
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, guard gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.POST("/refresh-token", h.RefreshToken)

		// Secured routes
		users.POST("/logout", guard, h.Logout)
		users.POST("/change-password", guard, h.ChangePassword)
	}
}

// Register - multipart-форма: поля аккаунта + файл avatar (обязателен)
// и coverImage (опционален)
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	db := h.GetDB(c)

	avatarFile, err := c.FormFile("avatar")
	if err != nil {
		h.HandleServiceError(c, apperrors.ErrFileMissing)
		return
	}

	avatarURL, uploadErr := h.uploadService.SaveImage(ctx, avatarFile, "avatars")
	if uploadErr != nil {
		h.HandleServiceError(c, uploadErr)
		return
	}

	// Обложка опциональна: отсутствие файла - не ошибка
	coverURL := ""
	if coverFile, err := c.FormFile("coverImage"); err == nil {
		coverURL, uploadErr = h.uploadService.SaveImage(ctx, coverFile, "covers")
		if uploadErr != nil {
			h.HandleServiceError(c, uploadErr)
			return
		}
	}

	user, err := h.authService.Register(db, &req, avatarURL, coverURL)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	Respond(c, http.StatusCreated, user, fmt.Sprintf("%s registered successfully", user.Username))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	response, err := h.authService.Login(db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	// Двойная доставка: токены и в теле, и в httpOnly cookies
	h.setAuthCookies(c, response.AccessToken, response.RefreshToken)

	Respond(c, http.StatusOK, response, fmt.Sprintf("%s login successfully", response.User.Username))
}

// RefreshToken - ротация: токен берется из cookie, иначе из тела
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	incoming, _ := c.Cookie(refreshTokenCookie)
	if incoming == "" {
		var req dto.RefreshRequest
		// Тело опционально - его отсутствие означает "токена нет"
		_ = c.ShouldBind(&req)
		incoming = req.RefreshToken
	}

	db := h.GetDB(c)

	response, err := h.authService.RefreshTokens(db, incoming)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setAuthCookies(c, response.AccessToken, response.RefreshToken)

	Respond(c, http.StatusOK, dto.AuthResponse{
		AccessToken:  response.AccessToken,
		RefreshToken: response.RefreshToken,
	}, "Access token refreshed successfully")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	if err := h.authService.Logout(db, userID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.clearAuthCookies(c)

	Respond(c, http.StatusOK, gin.H{}, "User logged out successfully")
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	if err := h.authService.ChangePassword(db, userID, &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	Respond(c, http.StatusOK, gin.H{}, "Password changed successfully")
}

// setAuthCookies ставит оба токена httpOnly+secure cookies
func (h *AuthHandler) setAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	c.SetCookie(accessTokenCookie, accessToken, int(h.cfg.AccessTokenTTL().Seconds()), "/", "", true, true)
	c.SetCookie(refreshTokenCookie, refreshToken, int(h.cfg.RefreshTokenTTL().Seconds()), "/", "", true, true)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetCookie(accessTokenCookie, "", -1, "/", "", true, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", true, true)
}
