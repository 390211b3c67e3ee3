package driverepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"resumeapi/internal/models"
	"resumeapi/internal/repositories/storage"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	pkg     = "driveRepo/"
	backend = "drive"

	fileFields = "id, name, webViewLink, webContentLink, size, mimeType, createdTime"
)

type Config struct {
	CredentialsFile   string
	ServiceAccountKey string
	FolderID          string
}

type repository struct {
	files    *drive.FilesService
	folderID string
}

// NewRepository authenticates with a service account key taken from
// CredentialsFile, falling back to the inline ServiceAccountKey JSON.
func NewRepository(ctx context.Context, cfg Config) (*repository, error) {
	op := pkg + "NewRepository"

	creds, err := loadCredentials(ctx, cfg.CredentialsFile, cfg.ServiceAccountKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	srv, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return newRepository(srv, cfg.FolderID), nil
}

func newRepository(srv *drive.Service, folderID string) *repository {
	return &repository{
		files:    srv.Files,
		folderID: folderID,
	}
}

func loadCredentials(ctx context.Context, file string, inline string) (*google.Credentials, error) {
	var errs []error

	if file != "" {
		data, err := os.ReadFile(file)
		switch {
		case err == nil:
			creds, err := google.CredentialsFromJSON(ctx, data, drive.DriveFileScope)
			if err == nil {
				return creds, nil
			}
			errs = append(errs, fmt.Errorf("credentials file %s: %w", file, err))
		case !errors.Is(err, os.ErrNotExist):
			errs = append(errs, fmt.Errorf("credentials file %s: %w", file, err))
		}
	}

	if inline != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(inline), drive.DriveFileScope)
		if err == nil {
			return creds, nil
		}
		errs = append(errs, fmt.Errorf("service account key: %w", err))
	}

	if len(errs) == 0 {
		return nil, errors.New("no google service account credentials provided")
	}

	return nil, errors.Join(errs...)
}

func (r *repository) Name() string {
	return backend
}

func (r *repository) Upload(ctx context.Context, file *models.UploadedFile) (*models.StorageReference, error) {
	op := pkg + "Upload"

	name := storage.BaseName(file.Filename)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNoFile)
	}

	meta := &drive.File{
		Name:     name,
		MimeType: file.ContentType,
	}
	if r.folderID != "" {
		meta.Parents = []string{r.folderID}
	}

	mediaOpts := make([]googleapi.MediaOption, 0, 1)
	if file.ContentType != "" {
		mediaOpts = append(mediaOpts, googleapi.ContentType(file.ContentType))
	}

	created, err := r.files.Create(meta).
		Media(bytes.NewReader(file.Content), mediaOpts...).
		Fields(fileFields).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	if created.Id == "" {
		return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: errors.New("empty file id in response")})
	}

	ref := toReference(created)
	if ref.Size == 0 {
		ref.Size = file.Size()
	}
	if ref.ContentType == "" {
		ref.ContentType = file.ContentType
	}

	return ref, nil
}

func (r *repository) Info(ctx context.Context, remoteID string) (*models.StorageReference, error) {
	op := pkg + "Info"

	if remoteID == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
	}

	f, err := r.files.Get(remoteID).Fields(fileFields).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}

	return toReference(f), nil
}

func (r *repository) Delete(ctx context.Context, remoteID string) error {
	op := pkg + "Delete"

	if remoteID == "" {
		return fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
	}

	if err := r.files.Delete(remoteID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}

	return nil
}

func toReference(f *drive.File) *models.StorageReference {
	ref := &models.StorageReference{
		RemoteID:     f.Id,
		Name:         f.Name,
		ViewLink:     f.WebViewLink,
		DownloadLink: f.WebContentLink,
		Size:         f.Size,
		ContentType:  f.MimeType,
		Backend:      backend,
	}

	if ref.ViewLink == "" {
		ref.ViewLink = "https://drive.google.com/file/d/" + f.Id + "/view"
	}

	if created, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		ref.CreatedAt = created.UTC()
	}

	return ref
}

func mapError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return models.ErrFileNotFound
	}

	return &models.StorageError{Backend: backend, Err: err}
}
