package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrTokenInvalid - единая ошибка проверки токена. Подпись не сошлась,
// срок истек, токен malformed - наружу уходит одно и то же, конкретная
// причина остается в обернутой ошибке для логов.
var ErrTokenInvalid = errors.New("invalid token")

// AccessClaims - полезная нагрузка access токена
type AccessClaims struct {
	UserID   string `json:"_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	jwt.RegisteredClaims
}

// RefreshClaims - полезная нагрузка refresh токена.
// Минимальная поверхность: только ID пользователя.
type RefreshClaims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// Identity - данные пользователя, зашиваемые в access токен
type Identity struct {
	ID       string
	Email    string
	Username string
	FullName string
}

// TokenManager выпускает и проверяет подписанные токены.
// Ключи и TTL приходят явной конфигурацией при конструировании,
// access и refresh подписываются РАЗНЫМИ ключами.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// GenerateAccessToken выпускает короткоживущий access токен с полным
// набором полей идентичности.
func (m *TokenManager) GenerateAccessToken(identity Identity) (string, error) {
	now := time.Now()
	claims := &AccessClaims{
		UserID:   identity.ID,
		Email:    identity.Email,
		Username: identity.Username,
		FullName: identity.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.accessSecret)
}

// GenerateRefreshToken выпускает долгоживущий refresh токен.
// jti (uuid) гарантирует, что два выпуска для одного пользователя
// дают разные строки даже в пределах одной секунды - иначе ротация
// была бы ненаблюдаемой.
func (m *TokenManager) GenerateRefreshToken(userID string) (string, error) {
	now := time.Now()
	claims := &RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.refreshSecret)
}

// ParseAccessToken проверяет подпись и срок access токена и возвращает claims
func (m *TokenManager) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenString, claims, m.accessSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken проверяет подпись и срок refresh токена и возвращает claims
func (m *TokenManager) ParseRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenString, claims, m.refreshSecret); err != nil {
		return nil, err
	}
	return claims, nil
}

// parse - чистая проверка без побочных эффектов: сперва подпись, потом срок
// (jwt/v5 делает обе проверки внутри ParseWithClaims)
func (m *TokenManager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if !token.Valid {
		return ErrTokenInvalid
	}
	return nil
}
