package services

import (
	"strings"

	"clipstream_backend/internal/auth"
	"clipstream_backend/internal/email"
	"clipstream_backend/internal/logger"
	"clipstream_backend/internal/models"
	"clipstream_backend/internal/repositories"
	"clipstream_backend/internal/services/dto"
	"clipstream_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// AuthService - координатор жизненного цикла сессии:
// Anonymous -> Authenticated -> (Expired | LoggedOut)
type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest, avatarURL, coverURL string) (*dto.UserDTO, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	RefreshTokens(db *gorm.DB, incomingRefreshToken string) (*dto.AuthResponse, error)
	Logout(db *gorm.DB, userID string) error
	ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error
}

type AuthServiceImpl struct {
	userRepo      repositories.UserRepository
	tokens        *auth.TokenManager
	emailProvider email.Provider
	bcryptCost    int
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokens *auth.TokenManager,
	emailProvider email.Provider,
	bcryptCost int,
) AuthService {
	return &AuthServiceImpl{
		userRepo:      userRepo,
		tokens:        tokens,
		emailProvider: emailProvider,
		bcryptCost:    bcryptCost,
	}
}

// Register - регистрация нового пользователя
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest, avatarURL, coverURL string) (*dto.UserDTO, error) {
	// Нормализация: username и email приводятся к нижнему регистру
	username := strings.ToLower(strings.TrimSpace(req.Username))
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)

	if username == "" || emailAddr == "" || fullName == "" || strings.TrimSpace(req.Password) == "" {
		return nil, apperrors.NewBadRequestError("Field is missing")
	}

	// Аватар обязателен, обложка - нет
	if avatarURL == "" {
		return nil, apperrors.ErrFileMissing
	}

	exists, err := s.userRepo.ExistsByUsernameOrEmail(db, username, emailAddr)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.ErrUserAlreadyExists
	}

	hashedPassword, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Username:     username,
		Email:        emailAddr,
		FullName:     fullName,
		Avatar:       avatarURL,
		CoverImage:   coverURL,
		PasswordHash: hashedPassword,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if apperrors.Is(err, repositories.ErrUserAlreadyExists) {
			// Гонка с конкурентной регистрацией - уникальный индекс решил
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	s.sendWelcomeEmail(user.Email, user.Username)

	return dto.NewUserDTO(user), nil
}

// Login - аутентификация по username/email и паролю
func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	login := strings.ToLower(strings.TrimSpace(req.UserID))
	if login == "" || req.Password == "" {
		return nil, apperrors.NewBadRequestError("Please fill the required field")
	}

	user, err := s.userRepo.FindByLogin(db, login)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.issueTokenPair(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Частичное сохранение: пишется только refresh_token,
	// полная валидация документа не перезапускается
	if err := s.userRepo.SetRefreshToken(db, user.ID, refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		User:         dto.NewUserDTO(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshTokens - ротация: проверяет предъявленный refresh-токен и
// атомарно заменяет хранимый на новый. Возвращает НОВУЮ пару токенов;
// старый refresh с этого момента не пригоден, даже если его срок не истек.
func (s *AuthServiceImpl) RefreshTokens(db *gorm.DB, incomingRefreshToken string) (*dto.AuthResponse, error) {
	if incomingRefreshToken == "" {
		return nil, apperrors.ErrMissingToken
	}

	claims, err := s.tokens.ParseRefreshToken(incomingRefreshToken)
	if err != nil {
		// Подпись или срок: для клиента не различимо, детали в логах
		logger.WithError(err).Warn("refresh token verification failed")
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(db, claims.UserID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.NewUnauthorizedError("Invalid refresh token")
		}
		return nil, apperrors.InternalError(err)
	}

	accessToken, refreshToken, err := s.issueTokenPair(user)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Условный UPDATE - единственная точка сериализации ротации.
	// Из двух конкурентных refresh с одним токеном побеждает один.
	if err := s.userRepo.RotateRefreshToken(db, user.ID, incomingRefreshToken, refreshToken); err != nil {
		if apperrors.Is(err, repositories.ErrRefreshTokenStale) {
			logger.Warn("refresh token replay detected", "user_id", user.ID)
			return nil, apperrors.ErrRefreshTokenReplayed
		}
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		User:         dto.NewUserDTO(user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout - сброс хранимого refresh-токена. Идемпотентен: повторный
// вызов для уже разлогиненного пользователя ошибкой не является.
func (s *AuthServiceImpl) Logout(db *gorm.DB, userID string) error {
	if err := s.userRepo.ClearRefreshToken(db, userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

// ChangePassword - смена пароля со сверкой старого
func (s *AuthServiceImpl) ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		return apperrors.ErrWrongPassword
	}

	hashedPassword, err := auth.HashPassword(req.NewPassword, s.bcryptCost)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdatePassword(db, userID, hashedPassword); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *AuthServiceImpl) issueTokenPair(user *models.User) (string, string, error) {
	accessToken, err := s.tokens.GenerateAccessToken(auth.Identity{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		FullName: user.FullName,
	})
	if err != nil {
		return "", "", err
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(user.ID)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *AuthServiceImpl) sendWelcomeEmail(to, username string) {
	if s.emailProvider == nil {
		return
	}
	// Письмо не должно блокировать или ронять регистрацию
	go func() {
		if err := s.emailProvider.SendWelcome(to, username); err != nil {
			logger.WithError(err).Warn("failed to send welcome email", "email", to)
		}
	}()
}
