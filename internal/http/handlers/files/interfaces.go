package files

import (
	"context"
	"resumeapi/internal/models"
)

const pkg = "filesHandler/"

type FileProvider interface {
	UploadInfo(ctx context.Context, remoteID string) (*models.StorageReference, error)
}

type FileDeleter interface {
	DeleteUpload(ctx context.Context, remoteID string) error
}
