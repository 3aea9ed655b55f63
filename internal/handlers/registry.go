package handlers

// AppHandlers - реестр всех HTTP-обработчиков приложения
type AppHandlers struct {
	Auth *AuthHandler
	User *UserHandler
	File *FileHandler
}
