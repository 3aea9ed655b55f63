package repositories

import (
	"clipstream_backend/internal/models"

	"gorm.io/gorm"
)

// ChannelStats - агрегаты подписок для профиля канала
type ChannelStats struct {
	SubscribersCount          int64
	ChannelsSubscribedToCount int64
	IsSubscribed              bool
}

// ChannelRepository - read-model поверх подписок и истории просмотров.
// Только чтение: запись подписок и просмотров живет в видео-сабсистеме.
type ChannelRepository interface {
	GetChannelStats(db *gorm.DB, channelID, viewerID string) (*ChannelStats, error)
	GetWatchHistory(db *gorm.DB, userID string, limit, offset int) ([]models.WatchHistoryEntry, error)
}

type channelRepository struct{}

// NewChannelRepository создает новый экземпляр ChannelRepository
func NewChannelRepository() ChannelRepository {
	return &channelRepository{}
}

func (r *channelRepository) GetChannelStats(db *gorm.DB, channelID, viewerID string) (*ChannelStats, error) {
	stats := &ChannelStats{}

	err := db.Model(&models.Subscription{}).
		Where("channel_id = ?", channelID).
		Count(&stats.SubscribersCount).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Subscription{}).
		Where("subscriber_id = ?", channelID).
		Count(&stats.ChannelsSubscribedToCount).Error
	if err != nil {
		return nil, err
	}

	if viewerID != "" {
		var count int64
		err = db.Model(&models.Subscription{}).
			Where("channel_id = ? AND subscriber_id = ?", channelID, viewerID).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		stats.IsSubscribed = count > 0
	}

	return stats, nil
}

// GetWatchHistory возвращает просмотры пользователя, свежие первыми,
// с роликом и его владельцем (для проекции fullName/username/avatar)
func (r *channelRepository) GetWatchHistory(db *gorm.DB, userID string, limit, offset int) ([]models.WatchHistoryEntry, error) {
	var entries []models.WatchHistoryEntry
	err := db.Where("user_id = ?", userID).
		Preload("Video").
		Preload("Video.Owner").
		Order("watched_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}
