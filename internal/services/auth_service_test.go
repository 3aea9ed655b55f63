package services

import (
	"strings"
	"sync"
	"testing"
	"time"

	"clipstream_backend/internal/auth"
	"clipstream_backend/internal/models"
	"clipstream_backend/internal/repositories"
	"clipstream_backend/internal/services/dto"
	"clipstream_backend/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// fakeUserRepo - in-memory реализация UserRepository для unit-тестов.
// Воспроизводит семантику настоящего репозитория, включая условную
// перезапись refresh-токена. db игнорируется (в тестах передается nil).
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User // по ID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (f *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) FindByUsername(_ *gorm.DB, username string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) FindByLogin(_ *gorm.DB, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == login || u.Email == login {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(_ *gorm.DB, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(_ *gorm.DB, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) UpdateAccount(_ *gorm.DB, userID, fullName, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	u.FullName = fullName
	u.Email = email
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdatePassword(_ *gorm.DB, userID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeUserRepo) UpdateAvatar(_ *gorm.DB, userID, avatarURL string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	u.Avatar = avatarURL
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) UpdateCoverImage(_ *gorm.DB, userID, coverURL string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	u.CoverImage = coverURL
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) SetRefreshToken(_ *gorm.DB, userID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.RefreshToken = token
	return nil
}

func (f *fakeUserRepo) RotateRefreshToken(_ *gorm.DB, userID, presented, next string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok || u.RefreshToken != presented {
		return repositories.ErrRefreshTokenStale
	}
	u.RefreshToken = next
	return nil
}

func (f *fakeUserRepo) ClearRefreshToken(_ *gorm.DB, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		u.RefreshToken = ""
	}
	return nil
}

func (f *fakeUserRepo) storedRefreshToken(userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[userID]; ok {
		return u.RefreshToken
	}
	return ""
}

// ---------------------------------------------------------------------------

func newTestAuthService(repo *fakeUserRepo) AuthService {
	tokens := auth.NewTokenManager("access-test-secret", "refresh-test-secret", 15*time.Minute, 24*time.Hour)
	return NewAuthService(repo, tokens, nil, bcrypt.MinCost)
}

func registerTestUser(t *testing.T, svc AuthService) *dto.UserDTO {
	t.Helper()
	user, err := svc.Register(nil, &dto.RegisterRequest{
		Username: "chai",
		Email:    "chai@test.com",
		Password: "super_password123",
		FullName: "Chai Aunt",
	}, "http://files/avatars/a.png", "")
	require.NoError(t, err)
	return user
}

func TestRegister_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	user, err := svc.Register(nil, &dto.RegisterRequest{
		Username: "  ChAi  ",
		Email:    "Chai@Test.COM",
		Password: "super_password123",
		FullName: "Chai Aunt",
	}, "http://files/avatars/a.png", "http://files/covers/c.png")
	require.NoError(t, err)

	// Нормализация регистра
	assert.Equal(t, "chai", user.Username)
	assert.Equal(t, "chai@test.com", user.Email)
	assert.NotEmpty(t, user.ID)

	// Хеш в хранилище не равен исходному паролю
	stored, err := repo.FindByID(nil, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "super_password123", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$2a$"))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)
	registerTestUser(t, svc)

	_, err := svc.Register(nil, &dto.RegisterRequest{
		Username: "chai",
		Email:    "other@test.com",
		Password: "password123",
		FullName: "Other",
	}, "http://files/avatars/b.png", "")

	assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
}

func TestRegister_MissingAvatar(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	_, err := svc.Register(nil, &dto.RegisterRequest{
		Username: "chai",
		Email:    "chai@test.com",
		Password: "password123",
		FullName: "Chai",
	}, "", "")

	assert.ErrorIs(t, err, apperrors.ErrFileMissing)
}

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)
	registered := registerTestUser(t, svc)

	// По username
	res, err := svc.Login(nil, &dto.LoginRequest{UserID: "chai", Password: "super_password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, registered.ID, res.User.ID)

	// Возвращенный refresh-токен совпадает с сохраненным
	assert.Equal(t, res.RefreshToken, repo.storedRefreshToken(registered.ID))

	// По email, регистр нормализуется
	res2, err := svc.Login(nil, &dto.LoginRequest{UserID: "CHAI@test.com", Password: "super_password123"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, res2.User.ID)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	_, err := svc.Login(nil, &dto.LoginRequest{UserID: "ghost", Password: "whatever123"})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

// Испорченный хеш в хранилище - отказ в аутентификации, не паника
func TestLogin_MalformedStoredHash(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)

	require.NoError(t, repo.Create(nil, &models.User{
		Username:     "broken",
		Email:        "broken@test.com",
		FullName:     "Broken Hash",
		Avatar:       "http://files/avatars/a.png",
		PasswordHash: "not-a-bcrypt-hash",
	}))

	_, err := svc.Login(nil, &dto.LoginRequest{UserID: "broken", Password: "whatever123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	registerTestUser(t, svc)

	_, err := svc.Login(nil, &dto.LoginRequest{UserID: "chai", Password: "wrong-password"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefreshTokens_RotatesPair(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)
	registered := registerTestUser(t, svc)

	loginRes, err := svc.Login(nil, &dto.LoginRequest{UserID: "chai", Password: "super_password123"})
	require.NoError(t, err)

	refreshRes, err := svc.RefreshTokens(nil, loginRes.RefreshToken)
	require.NoError(t, err)

	// Новая пара, хранимый токен заменен
	assert.NotEqual(t, loginRes.RefreshToken, refreshRes.RefreshToken)
	assert.Equal(t, refreshRes.RefreshToken, repo.storedRefreshToken(registered.ID))
}

// Повторное предъявление уже ротированного токена должно отклоняться,
// даже если его срок действия не истек.
func TestRefreshTokens_ReplayRejected(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	registerTestUser(t, svc)

	loginRes, err := svc.Login(nil, &dto.LoginRequest{UserID: "chai", Password: "super_password123"})
	require.NoError(t, err)

	_, err = svc.RefreshTokens(nil, loginRes.RefreshToken)
	require.NoError(t, err)

	_, err = svc.RefreshTokens(nil, loginRes.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrRefreshTokenReplayed)
}

func TestRefreshTokens_MissingToken(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	_, err := svc.RefreshTokens(nil, "")
	assert.ErrorIs(t, err, apperrors.ErrMissingToken)
}

func TestRefreshTokens_GarbageToken(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())

	_, err := svc.RefreshTokens(nil, "not-a-jwt")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestLogout_InvalidatesRefreshToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(repo)
	registered := registerTestUser(t, svc)

	loginRes, err := svc.Login(nil, &dto.LoginRequest{UserID: "chai", Password: "super_password123"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(nil, registered.ID))
	assert.Empty(t, repo.storedRefreshToken(registered.ID))

	// Refresh после logout - replay
	_, err = svc.RefreshTokens(nil, loginRes.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrRefreshTokenReplayed)

	// Повторный logout не ошибка
	assert.NoError(t, svc.Logout(nil, registered.ID))
}

func TestChangePassword(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo())
	registered := registerTestUser(t, svc)

	err := svc.ChangePassword(nil, registered.ID, &dto.ChangePasswordRequest{
		OldPassword: "wrong-old",
		NewPassword: "new_password123",
	})
	assert.ErrorIs(t, err, apperrors.ErrWrongPassword)

	err = svc.ChangePassword(nil, registered.ID, &dto.ChangePasswordRequest{
		OldPassword: "super_password123",
		NewPassword: "new_password123",
	})
	require.NoError(t, err)

	// Старый пароль больше не подходит
	_, err = svc.Login(nil, &dto.LoginRequest{UserID: "chai", Password: "super_password123"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	res, err := svc.Login(nil, &dto.LoginRequest{UserID: "chai", Password: "new_password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}
