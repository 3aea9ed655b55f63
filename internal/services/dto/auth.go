package dto

// =======================
// Auth DTOs
// =======================

// RegisterRequest - поля регистрации. Файлы avatar/coverImage приходят
// той же multipart-формой и обрабатываются отдельно от DTO.
type RegisterRequest struct {
	Username string `form:"username" json:"username" validate:"required,username"`
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
	FullName string `form:"fullName" json:"fullName" validate:"required"`
}

// LoginRequest - вход по username или email (поле userId, как в клиенте)
type LoginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse - ответ login/refresh: санитизированный пользователь
// плюс свежая пара токенов. Refresh всегда возвращает НОВУЮ пару.
type AuthResponse struct {
	User         *UserDTO `json:"user,omitempty"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
}

// RefreshRequest - refresh-токен в теле (если не пришел в cookie)
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest - смена пароля аутентифицированным пользователем
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}
