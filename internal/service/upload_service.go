package service

import (
	"context"
	"io"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/pkg/objectstore"
)

type IUploadService interface {
	Upload(ctx context.Context, fileName string, reader io.Reader, size int64, contentType string) (*dto.UploadResponse, error)
}

type uploadService struct {
	store objectstore.ObjectStore
	log   logger.ILogger
}

func NewUploadService(store objectstore.ObjectStore, log logger.ILogger) IUploadService {
	return &uploadService{store: store, log: log}
}

func (s *uploadService) Upload(ctx context.Context, fileName string, reader io.Reader, size int64, contentType string) (*dto.UploadResponse, error) {
	fileUrl, err := s.store.Upload(ctx, fileName, reader, size, contentType)
	if err != nil {
		s.log.Error("UPLOAD", "Failed to store uploaded file", map[string]interface{}{
			"file_name": fileName,
			"error":     err.Error(),
		})
		return nil, err
	}

	return &dto.UploadResponse{
		FileUrl:  fileUrl,
		FileName: fileName,
	}, nil
}
