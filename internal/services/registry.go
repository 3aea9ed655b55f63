package services

import (
	"clipstream_backend/internal/email"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService   AuthService
	UserService   UserService
	UploadService UploadService
	EmailService  email.Provider
}
