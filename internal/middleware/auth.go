package middleware

import (
	"strings"

	"clipstream_backend/internal/auth"
	"clipstream_backend/internal/logger"
	"clipstream_backend/internal/repositories"
	"clipstream_backend/pkg/apperrors"
	"clipstream_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const accessTokenCookie = "accessToken"

// AccessGuard проверяет access-токен и кладет в контекст ID и запись
// пользователя. Токен берется из cookie accessToken, иначе из заголовка
// Authorization: Bearer. Все виды сбоя проверки дают клиенту один и тот
// же 401; конкретная причина остается в логах.
func AccessGuard(tokens *auth.TokenManager, userRepo repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractAccessToken(c)
		if tokenStr == "" {
			abortUnauthorized(c, apperrors.ErrMissingToken, "access token not provided")
			return
		}

		claims, err := tokens.ParseAccessToken(tokenStr)
		if err != nil {
			abortUnauthorized(c, apperrors.ErrInvalidToken, "access token rejected: "+err.Error())
			return
		}

		// Пользователь мог быть удален после выдачи токена
		user, err := userRepo.FindByID(dbFromContext(c), claims.UserID)
		if err != nil {
			abortUnauthorized(c, apperrors.ErrInvalidToken, "token subject not found: "+claims.UserID)
			return
		}

		c.Set(contextkeys.UserIDKey, user.ID)
		c.Set(contextkeys.CurrentUserKey, user)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))

		c.Next()
	}
}

// OptionalAccessGuard - вариант для публичных маршрутов, которым полезно
// знать зрителя (например, isSubscribed в профиле канала). Отсутствие или
// невалидность токена не прерывает запрос.
func OptionalAccessGuard(tokens *auth.TokenManager, userRepo repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := extractAccessToken(c)
		if tokenStr == "" {
			c.Next()
			return
		}

		claims, err := tokens.ParseAccessToken(tokenStr)
		if err != nil {
			c.Next()
			return
		}

		user, err := userRepo.FindByID(dbFromContext(c), claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		c.Set(contextkeys.UserIDKey, user.ID)
		c.Set(contextkeys.CurrentUserKey, user)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID))

		c.Next()
	}
}

// extractAccessToken: cookie имеет приоритет над заголовком
func extractAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(accessTokenCookie); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

func abortUnauthorized(c *gin.Context, appErr *apperrors.AppError, reason string) {
	logger.CtxWarn(c.Request.Context(), "Unauthorized request",
		"reason", reason,
		"path", c.Request.URL.Path,
		"ip", c.ClientIP(),
	)
	apperrors.HandleError(c, appErr)
	c.Abort()
}

func dbFromContext(c *gin.Context) *gorm.DB {
	val, ok := c.Get(string(contextkeys.DBContextKey))
	if !ok {
		panic("critical error: DBMiddleware did not set the db key")
	}
	return val.(*gorm.DB)
}
