package upload

import (
	"context"
	"resumeapi/internal/models"
)

const pkg = "uploadHandler/"

type Uploader interface {
	HandleUpload(ctx context.Context, file *models.UploadedFile) (*models.UploadResult, error)
}

type PolicyProvider interface {
	Policy() models.UploadPolicy
}
