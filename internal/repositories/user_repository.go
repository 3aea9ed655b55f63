package repositories

import (
	"errors"
	"time"

	"clipstream_backend/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrUserNotFound возвращается, когда пользователь не найден в БД
	ErrUserNotFound = errors.New("user not found")
	// ErrUserAlreadyExists возвращается при нарушении уникальности username/email
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrRefreshTokenStale возвращается, когда условный UPDATE refresh-токена
	// не нашел строку: хранимое значение уже не равно предъявленному.
	// Для сервиса это сигнал ротации или logout - то есть replay.
	ErrRefreshTokenStale = errors.New("stored refresh token does not match")
)

// UserRepository определяет контракт хранилища учетных записей.
// db (пул или транзакция) передается в каждый вызов - репозиторий
// состояния не держит.
type UserRepository interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByUsername(db *gorm.DB, username string) (*models.User, error)
	FindByLogin(db *gorm.DB, login string) (*models.User, error) // username ИЛИ email
	ExistsByUsernameOrEmail(db *gorm.DB, username, email string) (bool, error)
	Create(db *gorm.DB, user *models.User) error

	// Частичные обновления: пишут только перечисленные колонки,
	// полная валидация документа не перезапускается
	UpdateAccount(db *gorm.DB, userID, fullName, email string) (*models.User, error)
	UpdatePassword(db *gorm.DB, userID, passwordHash string) error
	UpdateAvatar(db *gorm.DB, userID, avatarURL string) (*models.User, error)
	UpdateCoverImage(db *gorm.DB, userID, coverURL string) (*models.User, error)

	// Refresh-токен: ровно одно живое значение на пользователя
	SetRefreshToken(db *gorm.DB, userID, token string) error
	RotateRefreshToken(db *gorm.DB, userID, presented, next string) error
	ClearRefreshToken(db *gorm.DB, userID string) error
}

type userRepository struct {
	// Пустая структура - db не хранится здесь
}

// NewUserRepository создает новый экземпляр UserRepository
func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(db *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByLogin ищет по username или email одним запросом
func (r *userRepository) FindByLogin(db *gorm.DB, login string) (*models.User, error) {
	var user models.User
	err := db.Where("username = ? OR email = ?", login, login).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(db *gorm.DB, username, email string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	if err := db.Create(user).Error; err != nil {
		// Уникальные индексы на username и email - последний рубеж
		// против гонки "кто успел зарегистрироваться"
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) UpdateAccount(db *gorm.DB, userID, fullName, email string) (*models.User, error) {
	result := db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"full_name":  fullName,
			"email":      email,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrUserAlreadyExists
		}
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.FindByID(db, userID)
}

func (r *userRepository) UpdatePassword(db *gorm.DB, userID, passwordHash string) error {
	result := db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password_hash": passwordHash,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) UpdateAvatar(db *gorm.DB, userID, avatarURL string) (*models.User, error) {
	return r.updateSingleColumn(db, userID, "avatar", avatarURL)
}

func (r *userRepository) UpdateCoverImage(db *gorm.DB, userID, coverURL string) (*models.User, error) {
	return r.updateSingleColumn(db, userID, "cover_image", coverURL)
}

func (r *userRepository) updateSingleColumn(db *gorm.DB, userID, column, value string) (*models.User, error) {
	result := db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			column:       value,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	return r.FindByID(db, userID)
}

// SetRefreshToken безусловно записывает новый refresh-токен (login)
func (r *userRepository) SetRefreshToken(db *gorm.DB, userID, token string) error {
	result := db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RotateRefreshToken - условный compare-and-swap: перезаписывает токен,
// только если хранимое значение всё еще равно предъявленному. Из двух
// конкурентных refresh с одним и тем же устаревшим токеном выиграет
// ровно один; второй получит ErrRefreshTokenStale.
func (r *userRepository) RotateRefreshToken(db *gorm.DB, userID, presented, next string) error {
	result := db.Model(&models.User{}).
		Where("id = ? AND refresh_token = ?", userID, presented).
		Update("refresh_token", next)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRefreshTokenStale
	}
	return nil
}

// ClearRefreshToken сбрасывает токен в пустую строку (logout).
// Идемпотентна: отсутствие строки с токеном ошибкой не является.
func (r *userRepository) ClearRefreshToken(db *gorm.DB, userID string) error {
	return db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", "").Error
}
