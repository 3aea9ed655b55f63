package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные для ошибок бизнес-логики
аккаунтов и сессий.
*/

// =========================================================================
// Фабричные функции (оборачивают ошибки нижних слоев)
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404).
// Используется, когда ошибка репозитория (типа gorm.ErrRecordNotFound)
// должна быть преобразована в AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// =========================================================================
// Предопределенные переменные (частые, статичные ошибки)
// =========================================================================

// --- Auth & Sessions ---

// ErrInvalidCredentials - неверный логин или пароль.
// Намеренно не различает "пользователь не найден" и "пароль не подошел"
// на уровне ответа; различие остается в логах.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Wrong credentials",
	http.StatusUnauthorized,
)

// ErrUserNotFound - пользователь не существует (401-поток логина использует
// отдельную 404-ошибку, см. §login: "User not exist? Please register first")
var ErrUserNotFound = New(
	CodeNotFound,
	"auth",
	"User does not exist, please register first",
	http.StatusNotFound,
)

// ErrInvalidToken - неверный, просроченный или подделанный токен.
// Клиент получает один и тот же ответ для всех под-видов сбоя проверки.
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// ErrMissingToken - токен не передан ни в cookie, ни в заголовке
var ErrMissingToken = New(
	CodeUnauthorized,
	"auth",
	"Unauthorized request, login to access",
	http.StatusUnauthorized,
)

// ErrRefreshTokenReplayed - предъявленный refresh-токен не совпадает с
// хранимым: он уже был ротирован или отозван через logout. Повторное
// использование трактуется как replay, а не принимается молча.
var ErrRefreshTokenReplayed = New(
	CodeInvalidToken,
	"auth",
	"Refresh token is expired or used",
	http.StatusUnauthorized,
)

// ErrWrongPassword - старый пароль не подошел при смене пароля
var ErrWrongPassword = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid old password",
	http.StatusUnauthorized,
)

// --- Users ---

// ErrUserAlreadyExists - username или email уже заняты
var ErrUserAlreadyExists = New(
	CodeAlreadyExists,
	"users",
	"User already exists, please login",
	http.StatusConflict,
)

// ErrEmailAlreadyExists - email уже используется другим аккаунтом
var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"users",
	"Email already in use",
	http.StatusConflict,
)

// ErrChannelNotFound - канал (профиль пользователя) не найден
var ErrChannelNotFound = New(
	CodeNotFound,
	"users",
	"Channel does not exist",
	http.StatusNotFound,
)

// --- Uploads & Files ---

// ErrFileMissing - обязательный файл не передан в multipart-форме
var ErrFileMissing = New(
	CodeValidationFailed,
	"validation",
	"Required file is missing",
	http.StatusBadRequest,
)

// ErrFileTooLarge - файл превышает максимальный размер для одного запроса
var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

// ErrInvalidFileType - MIME-тип файла не разрешен
var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)
