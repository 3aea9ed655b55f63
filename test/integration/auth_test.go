package integration_test

import (
	"net/http"
	"testing"

	"clipstream_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegisterLoginGuardFlow - золотой путь: регистрация через
// multipart-форму, логин, доступ к защищенному ресурсу
func TestRegisterLoginGuardFlow(t *testing.T) {
	ts := GetTestServer(t)

	fields := map[string]string{
		"username": "chai",
		"email":    "chai@test.com",
		"password": "super_password123",
		"fullName": "Chai Aunt",
	}
	files := map[string]string{
		"avatar":     "avatar.png",
		"coverImage": "cover.png",
	}

	regRes, regBody := ts.SendMultipart(t, http.MethodPost, "/api/v1/users/register", "", fields, files)
	assert.Equal(t, http.StatusCreated, regRes.StatusCode, regBody)
	assert.Contains(t, regBody, `"success":true`)
	assert.Contains(t, regBody, "chai")
	// Секреты не должны утекать в ответ
	assert.NotContains(t, regBody, "password")
	assert.NotContains(t, regBody, "refreshToken")

	loginRes, loginBody := ts.SendRequest(t, http.MethodPost, "/api/v1/users/login", "", map[string]interface{}{
		"userId":   "chai",
		"password": "super_password123",
	})
	assert.Equal(t, http.StatusOK, loginRes.StatusCode, loginBody)

	// Токены приходят и в теле, и httpOnly cookies
	tokens := helpers.ParseAuthResponse(t, loginBody)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	cookies := loginRes.Cookies()
	cookieNames := map[string]bool{}
	for _, c := range cookies {
		cookieNames[c.Name] = true
		assert.True(t, c.HttpOnly, "cookie %s must be httpOnly", c.Name)
	}
	assert.True(t, cookieNames["accessToken"])
	assert.True(t, cookieNames["refreshToken"])

	meRes, meBody := ts.SendRequest(t, http.MethodGet, "/api/v1/users/me", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, meRes.StatusCode, meBody)
	assert.Contains(t, meBody, "chai@test.com")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	ts := GetTestServer(t)
	helpers.CreateAndLoginUser(t, ts, "chai", "super_password123")

	fields := map[string]string{
		"username": "chai",
		"email":    "another@test.com",
		"password": "super_password123",
		"fullName": "Another",
	}
	res, body := ts.SendMultipart(t, http.MethodPost, "/api/v1/users/register", "", fields, map[string]string{"avatar": "a.png"})

	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, body, "User already exists")
}

func TestRegister_MissingAvatar(t *testing.T) {
	ts := GetTestServer(t)

	fields := map[string]string{
		"username": "chai",
		"email":    "chai@test.com",
		"password": "super_password123",
		"fullName": "Chai",
	}
	res, body := ts.SendMultipart(t, http.MethodPost, "/api/v1/users/register", "", fields, nil)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, body, `"success":false`)
}

func TestLogin_UnknownUser(t *testing.T) {
	ts := GetTestServer(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/users/login", "", map[string]interface{}{
		"userId":   "ghost",
		"password": "whatever123",
	})

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Contains(t, body, "User does not exist")
}

func TestLogin_WrongPassword(t *testing.T) {
	ts := GetTestServer(t)
	helpers.CreateAndLoginUser(t, ts, "chai", "correct_password")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/users/login", "", map[string]interface{}{
		"userId":   "chai",
		"password": "wrong_password",
	})

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, "Wrong credentials")
}

// TestRefreshRotation - refresh выдает новую пару, а старый refresh-токен
// после этого отклоняется как replay
func TestRefreshRotation(t *testing.T) {
	ts := GetTestServer(t)
	tokens, _ := helpers.CreateAndLoginUser(t, ts, "chai", "super_password123")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/users/refresh-token", "", map[string]interface{}{
		"refreshToken": tokens.RefreshToken,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, body)

	fresh := helpers.ParseAuthResponse(t, body)
	assert.NotEmpty(t, fresh.AccessToken)
	assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)

	// Повтор со старым токеном
	replayRes, replayBody := ts.SendRequest(t, http.MethodPost, "/api/v1/users/refresh-token", "", map[string]interface{}{
		"refreshToken": tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, replayRes.StatusCode)
	assert.Contains(t, replayBody, "Refresh token is expired or used")

	// Новый токен продолжает работать
	res2, body2 := ts.SendRequest(t, http.MethodPost, "/api/v1/users/refresh-token", "", map[string]interface{}{
		"refreshToken": fresh.RefreshToken,
	})
	assert.Equal(t, http.StatusOK, res2.StatusCode, body2)
}

// TestRefreshViaCookie - refresh-токен принимается из cookie без тела
func TestRefreshViaCookie(t *testing.T) {
	ts := GetTestServer(t)
	tokens, _ := helpers.CreateAndLoginUser(t, ts, "chai", "super_password123")

	res, body := ts.SendRequestWithCookies(t, http.MethodPost, "/api/v1/users/refresh-token",
		[]*http.Cookie{{Name: "refreshToken", Value: tokens.RefreshToken}}, nil)

	assert.Equal(t, http.StatusOK, res.StatusCode, body)
	fresh := helpers.ParseAuthResponse(t, body)
	assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)
}

func TestRefresh_MissingToken(t *testing.T) {
	ts := GetTestServer(t)

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/users/refresh-token", "", nil)

	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Contains(t, body, "Unauthorized request")
}

// TestLogout - выход отзывает refresh-токен и сбрасывает cookies
func TestLogout(t *testing.T) {
	ts := GetTestServer(t)
	tokens, _ := helpers.CreateAndLoginUser(t, ts, "chai", "super_password123")

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/users/logout", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, body)
	assert.Contains(t, body, "logged out")

	// Cookies должны быть сброшены
	for _, c := range res.Cookies() {
		if c.Name == "accessToken" || c.Name == "refreshToken" {
			assert.True(t, c.MaxAge < 0 || c.Value == "", "cookie %s must be cleared", c.Name)
		}
	}

	// Refresh после logout отклоняется
	refRes, refBody := ts.SendRequest(t, http.MethodPost, "/api/v1/users/refresh-token", "", map[string]interface{}{
		"refreshToken": tokens.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, refRes.StatusCode)
	assert.Contains(t, refBody, "Refresh token is expired or used")

	// Повторный logout - не ошибка
	res2, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/users/logout", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, res2.StatusCode)
}

func TestChangePassword(t *testing.T) {
	ts := GetTestServer(t)
	tokens, _ := helpers.CreateAndLoginUser(t, ts, "chai", "old_password123")

	// Неверный старый пароль
	badRes, badBody := ts.SendRequest(t, http.MethodPost, "/api/v1/users/change-password", tokens.AccessToken, map[string]interface{}{
		"oldPassword": "not-the-old-one",
		"newPassword": "new_password123",
	})
	assert.Equal(t, http.StatusUnauthorized, badRes.StatusCode)
	assert.Contains(t, badBody, "Invalid old password")

	// Успешная смена
	okRes, okBody := ts.SendRequest(t, http.MethodPost, "/api/v1/users/change-password", tokens.AccessToken, map[string]interface{}{
		"oldPassword": "old_password123",
		"newPassword": "new_password123",
	})
	assert.Equal(t, http.StatusOK, okRes.StatusCode, okBody)

	// Старый пароль больше не работает
	loginRes, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/users/login", "", map[string]interface{}{
		"userId":   "chai",
		"password": "old_password123",
	})
	assert.Equal(t, http.StatusUnauthorized, loginRes.StatusCode)

	// Новый - работает
	loginRes2, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/users/login", "", map[string]interface{}{
		"userId":   "chai",
		"password": "new_password123",
	})
	assert.Equal(t, http.StatusOK, loginRes2.StatusCode)
}
