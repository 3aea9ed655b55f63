package dto

import (
	"time"

	"clipstream_backend/internal/models"
)

// =======================
// User DTOs
// =======================

// UserDTO - санитизированная проекция пользователя: без хеша пароля
// и без refresh-токена. Единственная форма, в которой User покидает сервис.
type UserDTO struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewUserDTO строит проекцию из модели
func NewUserDTO(u *models.User) *UserDTO {
	return &UserDTO{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FullName:   u.FullName,
		Avatar:     u.Avatar,
		CoverImage: u.CoverImage,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UpdateAccountRequest - обновление полей аккаунта
type UpdateAccountRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

// ChannelProfileResponse - публичный профиль канала с агрегатами подписок
type ChannelProfileResponse struct {
	ID                        string `json:"id"`
	Username                  string `json:"username"`
	FullName                  string `json:"fullName"`
	Email                     string `json:"email"`
	Avatar                    string `json:"avatar"`
	CoverImage                string `json:"coverImage,omitempty"`
	SubscribersCount          int64  `json:"subscribersCount"`
	ChannelsSubscribedToCount int64  `json:"channelsSubscribedToCount"`
	IsSubscribed              bool   `json:"isSubscribed"`
}

// WatchHistoryItem - элемент истории просмотров с проекцией владельца ролика
type WatchHistoryItem struct {
	VideoID   string         `json:"videoId"`
	Title     string         `json:"title"`
	Thumbnail string         `json:"thumbnail,omitempty"`
	WatchedAt time.Time      `json:"watchedAt"`
	Owner     *VideoOwnerDTO `json:"owner,omitempty"`
}

// VideoOwnerDTO - минимальная проекция владельца ролика
type VideoOwnerDTO struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}
