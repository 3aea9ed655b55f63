package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"clipstream_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateUser создает пользователя напрямую в БД, хешируя пароль,
// если он передан в сыром виде
func CreateUser(t *testing.T, db *gorm.DB, user *models.User) error {
	if user.PasswordHash != "" && !strings.HasPrefix(user.PasswordHash, "$2a$") {
		hashed, err := bcrypt.GenerateFromPassword([]byte(user.PasswordHash), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash test password: %v", err)
		}
		user.PasswordHash = string(hashed)
	}
	if user.Avatar == "" {
		user.Avatar = "http://files/avatars/default.png"
	}

	result := db.Create(user)
	if result.Error != nil {
		t.Logf("failed to create test user %s: %v", user.Email, result.Error)
		return result.Error
	}
	return nil
}

// AuthBody - токены из ответа login/refresh
type AuthBody struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *struct {
		ID       string `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

// ParseAuthResponse достает поле data из конверта ответа
func ParseAuthResponse(t *testing.T, body string) *AuthBody {
	var envelope struct {
		Data    AuthBody `json:"data"`
		Success bool     `json:"success"`
	}
	err := json.Unmarshal([]byte(body), &envelope)
	require.NoError(t, err, "failed to parse auth response: "+body)
	return &envelope.Data
}

// CreateAndLoginUser создает пользователя и логинит его через API.
// Возвращает пару токенов и пользователя (с сырым паролем в PasswordHash).
func CreateAndLoginUser(t *testing.T, ts *TestServer, username, password string) (*AuthBody, *models.User) {
	email := fmt.Sprintf("%s_%d@test.com", username, time.Now().UnixNano())
	user := &models.User{
		Username:     username,
		Email:        email,
		FullName:     "Test " + username,
		PasswordHash: password,
	}
	err := CreateUser(t, ts.DB, user)
	require.NoError(t, err)

	loginBody := map[string]interface{}{
		"userId":   username,
		"password": password,
	}
	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/users/login", "", loginBody)
	assert.Equal(t, http.StatusOK, res.StatusCode, "login should succeed, response: "+bodyStr)

	tokens := ParseAuthResponse(t, bodyStr)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	user.PasswordHash = password
	return tokens, user
}
