package miniorepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"resumeapi/internal/models"
	"resumeapi/internal/repositories/storage"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	pkg     = "minioRepo/"
	backend = "minio"

	metaOriginalFilename = "original-filename"
)

type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	LinkTTL   time.Duration
}

type objectAPI interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
}

type repository struct {
	client  objectAPI
	bucket  string
	linkTTL time.Duration
	now     func() time.Time
}

// NewRepository connects to MinIO and checks that the bucket exists.
func NewRepository(ctx context.Context, cfg Config) (*repository, error) {
	op := pkg + "NewRepository"

	client, err := newClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: minio bucket does not exist: %s", op, cfg.Bucket)
	}

	return newRepository(client, cfg.Bucket, cfg.LinkTTL), nil
}

func newClient(cfg Config) (*minio.Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("minio configuration incomplete")
	}

	endpoint, secure, err := normaliseEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
}

func newRepository(client objectAPI, bucket string, linkTTL time.Duration) *repository {
	if linkTTL <= 0 {
		linkTTL = 15 * time.Minute
	}

	return &repository{
		client:  client,
		bucket:  bucket,
		linkTTL: linkTTL,
		now:     time.Now,
	}
}

// normaliseEndpoint accepts either "minio:9000" or "http(s)://minio:9000".
func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, errors.New("empty endpoint")
	}

	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, errors.New("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, errors.New("endpoint must not contain a path")
		}
		return u.Host, u.Scheme == "https", nil
	}

	// host:port without a scheme is a local MinIO, insecure by default
	return raw, false, nil
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

	now := r.now().UTC()
	key := storage.ObjectKey(now, name)

	_, err := r.client.PutObject(ctx, r.bucket, key, bytes.NewReader(file.Content), file.Size(), minio.PutObjectOptions{
		ContentType:  file.ContentType,
		UserMetadata: map[string]string{metaOriginalFilename: url.PathEscape(name)},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	ref := &models.StorageReference{
		RemoteID:    key,
		Name:        name,
		Size:        file.Size(),
		ContentType: file.ContentType,
		Backend:     backend,
		CreatedAt:   now,
	}

	if err := r.fillLinks(ctx, ref); err != nil {
		_ = r.client.RemoveObject(ctx, r.bucket, key, minio.RemoveObjectOptions{})
		return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	return ref, nil
}

func (r *repository) Info(ctx context.Context, remoteID string) (*models.StorageReference, error) {
	op := pkg + "Info"

	info, err := r.stat(ctx, remoteID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	name := path.Base(remoteID)
	for k, v := range info.UserMetadata {
		if !strings.EqualFold(k, metaOriginalFilename) {
			continue
		}
		if unescaped, err := url.PathUnescape(v); err == nil {
			name = unescaped
		}
	}

	ref := &models.StorageReference{
		RemoteID:    remoteID,
		Name:        name,
		Size:        info.Size,
		ContentType: info.ContentType,
		Backend:     backend,
		CreatedAt:   info.LastModified.UTC(),
	}

	if err := r.fillLinks(ctx, ref); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	return ref, nil
}

func (r *repository) Delete(ctx context.Context, remoteID string) error {
	op := pkg + "Delete"

	if _, err := r.stat(ctx, remoteID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.client.RemoveObject(ctx, r.bucket, remoteID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	return nil
}

func (r *repository) stat(ctx context.Context, key string) (minio.ObjectInfo, error) {
	if !storage.ValidObjectKey(key) {
		return minio.ObjectInfo{}, models.ErrFileNotFound
	}

	info, err := r.client.StatObject(ctx, r.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
			return minio.ObjectInfo{}, models.ErrFileNotFound
		}
		return minio.ObjectInfo{}, &models.StorageError{Backend: backend, Err: err}
	}

	return info, nil
}

func (r *repository) fillLinks(ctx context.Context, ref *models.StorageReference) error {
	view, err := r.client.PresignedGetObject(ctx, r.bucket, ref.RemoteID, r.linkTTL, nil)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("response-content-disposition", mime.FormatMediaType("attachment", map[string]string{"filename": ref.Name}))

	download, err := r.client.PresignedGetObject(ctx, r.bucket, ref.RemoteID, r.linkTTL, params)
	if err != nil {
		return err
	}

	ref.ViewLink = view.String()
	ref.DownloadLink = download.String()

	return nil
}
