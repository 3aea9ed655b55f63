package app

import (
	"clipstream_backend/internal/email"
	"clipstream_backend/internal/logger"
)

// MockEmailProvider - заглушка почты для окружений без SMTP
type MockEmailProvider struct{}

func (m *MockEmailProvider) Send(e *email.Email) error {
	logger.Info("[MOCK EMAIL] message suppressed", "to", e.To, "subject", e.Subject)
	return nil
}

func (m *MockEmailProvider) SendWelcome(to, username string) error {
	logger.Info("[MOCK EMAIL] welcome suppressed", "to", to, "username", username)
	return nil
}
