package handlers

import (
	"net/http"

	"clipstream_backend/internal/services"
	"clipstream_backend/internal/services/dto"
	"clipstream_backend/pkg/apperrors"
	"clipstream_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

// RegisterRoutes регистрирует маршруты аккаунта под /api/v1/users.
// optionalGuard пропускает запрос без токена, но кладет userID в контекст,
// если токен есть (нужно для isSubscribed в профиле канала).
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, guard, optionalGuard gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.GET("/me", guard, h.GetMe)
		users.PATCH("/me", guard, h.UpdateAccount)
		users.POST("/me/avatar", guard, h.UpdateAvatar)
		users.POST("/me/cover-image", guard, h.UpdateCoverImage)
		users.GET("/history", guard, h.GetWatchHistory)

		users.GET("/c/:username", optionalGuard, h.GetChannelProfile)
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	db := h.GetDB(c)

	user, err := h.userService.GetByID(db, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	Respond(c, http.StatusOK, user, "Current user fetched successfully")
}

func (h *UserHandler) UpdateAccount(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)

	user, err := h.userService.UpdateAccount(db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	Respond(c, http.StatusOK, user, "Account details updated successfully")
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		h.HandleServiceError(c, apperrors.ErrFileMissing)
		return
	}

	db := h.GetDB(c)

	user, svcErr := h.userService.UpdateAvatar(c.Request.Context(), db, userID, file)
	if svcErr != nil {
		h.HandleServiceError(c, svcErr)
		return
	}

	Respond(c, http.StatusOK, user, "Avatar updated successfully")
}

func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("coverImage")
	if err != nil {
		h.HandleServiceError(c, apperrors.ErrFileMissing)
		return
	}

	db := h.GetDB(c)

	user, svcErr := h.userService.UpdateCoverImage(c.Request.Context(), db, userID, file)
	if svcErr != nil {
		h.HandleServiceError(c, svcErr)
		return
	}

	Respond(c, http.StatusOK, user, "Cover image updated successfully")
}

// GetChannelProfile - публичный профиль канала. Работает и без токена,
// тогда isSubscribed всегда false.
func (h *UserHandler) GetChannelProfile(c *gin.Context) {
	username := c.Param("username")

	viewerID := ""
	if id, exists := c.Get(contextkeys.UserIDKey); exists {
		if s, ok := id.(string); ok {
			viewerID = s
		}
	}

	db := h.GetDB(c)

	profile, err := h.userService.GetChannelProfile(db, username, viewerID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	Respond(c, http.StatusOK, profile, "User channel fetched successfully")
}

func (h *UserHandler) GetWatchHistory(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	limit := ParseQueryInt(c, "limit", 20)
	offset := ParseQueryInt(c, "offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	db := h.GetDB(c)

	items, err := h.userService.GetWatchHistory(db, userID, limit, offset)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	Respond(c, http.StatusOK, items, "Watch history fetched successfully")
}
