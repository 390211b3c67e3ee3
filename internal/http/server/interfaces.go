package server

import (
	"context"
	"resumeapi/internal/models"
)

type AuthService interface {
	Login(ctx context.Context, login string, password string) (*models.Token, error)
	UserByToken(ctx context.Context, token string) (*models.User, error)
}

type UploadService interface {
	HandleUpload(ctx context.Context, file *models.UploadedFile) (*models.UploadResult, error)
	Policy() models.UploadPolicy
	UploadInfo(ctx context.Context, remoteID string) (*models.StorageReference, error)
	DeleteUpload(ctx context.Context, remoteID string) error
}
