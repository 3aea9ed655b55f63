package services

import (
	"context"
	"mime/multipart"
	"strings"

	"clipstream_backend/internal/repositories"
	"clipstream_backend/internal/services/dto"
	"clipstream_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// UserService - операции над аккаунтом и read-model проекции
// (профиль канала, история просмотров)
type UserService interface {
	GetByID(db *gorm.DB, userID string) (*dto.UserDTO, error)
	UpdateAccount(db *gorm.DB, userID string, req *dto.UpdateAccountRequest) (*dto.UserDTO, error)
	UpdateAvatar(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.UserDTO, error)
	UpdateCoverImage(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.UserDTO, error)
	GetChannelProfile(db *gorm.DB, username, viewerID string) (*dto.ChannelProfileResponse, error)
	GetWatchHistory(db *gorm.DB, userID string, limit, offset int) ([]dto.WatchHistoryItem, error)
}

type UserServiceImpl struct {
	userRepo    repositories.UserRepository
	channelRepo repositories.ChannelRepository
	uploads     UploadService
}

func NewUserService(
	userRepo repositories.UserRepository,
	channelRepo repositories.ChannelRepository,
	uploads UploadService,
) UserService {
	return &UserServiceImpl{
		userRepo:    userRepo,
		channelRepo: channelRepo,
		uploads:     uploads,
	}
}

func (s *UserServiceImpl) GetByID(db *gorm.DB, userID string) (*dto.UserDTO, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserDTO(user), nil
}

// UpdateAccount обновляет fullName и email
func (s *UserServiceImpl) UpdateAccount(db *gorm.DB, userID string, req *dto.UpdateAccountRequest) (*dto.UserDTO, error) {
	fullName := strings.TrimSpace(req.FullName)
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	if fullName == "" || emailAddr == "" {
		return nil, apperrors.NewBadRequestError("All fields are required")
	}

	user, err := s.userRepo.UpdateAccount(db, userID, fullName, emailAddr)
	if err != nil {
		switch {
		case apperrors.Is(err, repositories.ErrUserNotFound):
			return nil, apperrors.ErrNotFound(err)
		case apperrors.Is(err, repositories.ErrUserAlreadyExists):
			return nil, apperrors.ErrEmailAlreadyExists
		default:
			return nil, apperrors.InternalError(err)
		}
	}
	return dto.NewUserDTO(user), nil
}

// UpdateAvatar загружает новый аватар в хранилище и обновляет ссылку
func (s *UserServiceImpl) UpdateAvatar(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.UserDTO, error) {
	url, err := s.uploads.SaveImage(ctx, file, "avatars")
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateAvatar(db, userID, url)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserDTO(user), nil
}

// UpdateCoverImage загружает новую обложку в хранилище и обновляет ссылку
func (s *UserServiceImpl) UpdateCoverImage(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.UserDTO, error) {
	url, err := s.uploads.SaveImage(ctx, file, "covers")
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateCoverImage(db, userID, url)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserDTO(user), nil
}

// GetChannelProfile - публичный профиль канала с агрегатами подписок.
// viewerID может быть пустым (неаутентифицированный просмотр).
func (s *UserServiceImpl) GetChannelProfile(db *gorm.DB, username, viewerID string) (*dto.ChannelProfileResponse, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, apperrors.NewBadRequestError("Username is missing")
	}

	user, err := s.userRepo.FindByUsername(db, username)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrChannelNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	stats, err := s.channelRepo.GetChannelStats(db, user.ID, viewerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.ChannelProfileResponse{
		ID:                        user.ID,
		Username:                  user.Username,
		FullName:                  user.FullName,
		Email:                     user.Email,
		Avatar:                    user.Avatar,
		CoverImage:                user.CoverImage,
		SubscribersCount:          stats.SubscribersCount,
		ChannelsSubscribedToCount: stats.ChannelsSubscribedToCount,
		IsSubscribed:              stats.IsSubscribed,
	}, nil
}

// GetWatchHistory - история просмотров с проекцией владельца ролика
func (s *UserServiceImpl) GetWatchHistory(db *gorm.DB, userID string, limit, offset int) ([]dto.WatchHistoryItem, error) {
	entries, err := s.channelRepo.GetWatchHistory(db, userID, limit, offset)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.WatchHistoryItem, 0, len(entries))
	for _, e := range entries {
		item := dto.WatchHistoryItem{
			VideoID:   e.VideoID,
			WatchedAt: e.WatchedAt,
		}
		if e.Video != nil {
			item.Title = e.Video.Title
			item.Thumbnail = e.Video.Thumbnail
			if e.Video.Owner != nil {
				item.Owner = &dto.VideoOwnerDTO{
					Username: e.Video.Owner.Username,
					FullName: e.Video.Owner.FullName,
					Avatar:   e.Video.Owner.Avatar,
				}
			}
		}
		items = append(items, item)
	}
	return items, nil
}
