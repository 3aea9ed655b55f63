package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"clipstream_backend/internal/storage"
	"clipstream_backend/pkg/apperrors"

	"github.com/google/uuid"
)

// UploadConfig - лимиты загрузки (config: upload)
type UploadConfig struct {
	MaxSize      int64
	AllowedTypes []string
}

// UploadService сохраняет бинарные ассеты (аватары, обложки)
// в объектное хранилище и возвращает публичный URL.
type UploadService interface {
	SaveImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
}

type UploadServiceImpl struct {
	storage storage.Storage
	config  UploadConfig
}

func NewUploadService(st storage.Storage, cfg UploadConfig) UploadService {
	return &UploadServiceImpl{
		storage: st,
		config:  cfg,
	}
}

// SaveImage проверяет размер и MIME-тип, кладет файл в хранилище
// под уникальным именем и возвращает его URL
func (s *UploadServiceImpl) SaveImage(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	if file == nil {
		return "", apperrors.ErrFileMissing
	}

	if s.config.MaxSize > 0 && file.Size > s.config.MaxSize {
		return "", apperrors.ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if !s.isAllowedType(contentType) {
		return "", apperrors.ErrInvalidFileType
	}

	src, err := file.Open()
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	path := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)

	if err := s.storage.Save(ctx, path, src, contentType); err != nil {
		return "", apperrors.InternalError(err)
	}

	url, err := s.storage.GetURL(ctx, path)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return url, nil
}

func (s *UploadServiceImpl) isAllowedType(contentType string) bool {
	for _, t := range s.config.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
