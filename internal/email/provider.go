package email

// Email представляет структуру email сообщения
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Provider определяет интерфейс для отправки email
type Provider interface {
	// Send отправляет простое email сообщение
	Send(email *Email) error

	// SendWelcome отправляет приветственное письмо после регистрации
	SendWelcome(to, username string) error
}
