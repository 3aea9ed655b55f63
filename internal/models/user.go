package models

import "time"

// User - учетная запись пользователя (канал медиаплатформы).
// PasswordHash и RefreshToken никогда не сериализуются в ответы:
// наружу уходит только санитизированная проекция (dto.UserDTO).
type User struct {
	BaseModel
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	FullName     string `gorm:"not null;index" json:"fullName"`
	Avatar       string `gorm:"not null" json:"avatar"`              // URL в объектном хранилище
	CoverImage   string `json:"coverImage"`                          // опционально
	PasswordHash string `gorm:"not null" json:"-"`                   // всегда хеш, никогда plaintext
	RefreshToken string `gorm:"column:refresh_token" json:"-"`       // максимум одно живое значение
}

// Subscription - связь "подписчик -> канал"
type Subscription struct {
	BaseModel
	SubscriberID string `gorm:"type:uuid;not null;index" json:"subscriberId"`
	ChannelID    string `gorm:"type:uuid;not null;index" json:"channelId"`

	Subscriber *User `gorm:"foreignKey:SubscriberID" json:"-"`
	Channel    *User `gorm:"foreignKey:ChannelID" json:"-"`
}

// Video - минимальная сущность ролика, достаточная для read-model
// проекций (история просмотров). Загрузка и управление роликами
// живут в другом сабсистеме.
type Video struct {
	BaseModel
	OwnerID   string `gorm:"type:uuid;not null;index" json:"ownerId"`
	Title     string `gorm:"not null" json:"title"`
	Thumbnail string `json:"thumbnail"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
}

// WatchHistoryEntry - факт просмотра ролика пользователем
type WatchHistoryEntry struct {
	BaseModel
	UserID    string    `gorm:"type:uuid;not null;index" json:"userId"`
	VideoID   string    `gorm:"type:uuid;not null;index" json:"videoId"`
	WatchedAt time.Time `gorm:"not null;default:now()" json:"watchedAt"`

	Video *Video `gorm:"foreignKey:VideoID" json:"video,omitempty"`
}
