package uploadservice

import (
	"context"
	"resumeapi/internal/models"
)

type Storage interface {
	Upload(ctx context.Context, file *models.UploadedFile) (*models.StorageReference, error)
	Delete(ctx context.Context, remoteID string) error
	Info(ctx context.Context, remoteID string) (*models.StorageReference, error)
	Name() string
}

type Notifier interface {
	Notify(ctx context.Context, payload models.WebhookPayload) models.WebhookStatus
}

type DedupCache interface {
	ReferenceByDigest(ctx context.Context, digest string) (*models.StorageReference, error)
	SaveReference(ctx context.Context, digest string, ref *models.StorageReference) error
	ForgetReference(ctx context.Context, remoteID string) error
}
