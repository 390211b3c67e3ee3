package storage

import (
	"context"
	"resumeapi/internal/models"
)

// Client is implemented by every storage backend.
type Client interface {
	Upload(ctx context.Context, file *models.UploadedFile) (*models.StorageReference, error)
	Delete(ctx context.Context, remoteID string) error
	// Info returns models.ErrFileNotFound when the object does not exist.
	Info(ctx context.Context, remoteID string) (*models.StorageReference, error)
	Name() string
}
