package s3repo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"resumeapi/internal/models"
	"resumeapi/internal/repositories/storage"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	pkg     = "s3Repo/"
	backend = "s3"

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
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	loadAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type repository struct {
	objects objectAPI
	presign presignAPI
	bucket  string
	linkTTL time.Duration
	now     func() time.Time
}

// NewRepository builds an S3 client from static keys when given, otherwise
// from the default AWS credential chain. Credentials must resolve.
func NewRepository(ctx context.Context, cfg Config) (*repository, error) {
	op := pkg + "NewRepository"

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%s: bucket is not set", op)
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := loadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: load aws config: %w", op, err)
	}

	if awsCfg.Credentials == nil {
		return nil, fmt.Errorf("%s: no credentials configured", op)
	}

	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return nil, fmt.Errorf("%s: resolve credentials: %w", op, err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newRepository(client, s3.NewPresignClient(client), cfg.Bucket, cfg.LinkTTL), nil
}

func newRepository(objects objectAPI, presign presignAPI, bucket string, linkTTL time.Duration) *repository {
	if linkTTL <= 0 {
		linkTTL = 15 * time.Minute
	}

	return &repository{
		objects: objects,
		presign: presign,
		bucket:  bucket,
		linkTTL: linkTTL,
		now:     time.Now,
	}
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

	in := &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Content),
		ContentLength: aws.Int64(file.Size()),
		Metadata:      map[string]string{metaOriginalFilename: url.PathEscape(name)},
	}
	if file.ContentType != "" {
		in.ContentType = aws.String(file.ContentType)
	}

	if _, err := r.objects.PutObject(ctx, in); err != nil {
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
		_, _ = r.objects.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(r.bucket), Key: aws.String(key)})
		return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	return ref, nil
}

func (r *repository) Info(ctx context.Context, remoteID string) (*models.StorageReference, error) {
	op := pkg + "Info"

	out, err := r.head(ctx, remoteID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	name := path.Base(remoteID)
	if escaped, ok := out.Metadata[metaOriginalFilename]; ok {
		if unescaped, err := url.PathUnescape(escaped); err == nil {
			name = unescaped
		}
	}

	ref := &models.StorageReference{
		RemoteID:    remoteID,
		Name:        name,
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: aws.ToString(out.ContentType),
		Backend:     backend,
		CreatedAt:   aws.ToTime(out.LastModified).UTC(),
	}

	if err := r.fillLinks(ctx, ref); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	return ref, nil
}

func (r *repository) Delete(ctx context.Context, remoteID string) error {
	op := pkg + "Delete"

	if _, err := r.head(ctx, remoteID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err := r.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(remoteID),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	return nil
}

func (r *repository) head(ctx context.Context, key string) (*s3.HeadObjectOutput, error) {
	if !storage.ValidObjectKey(key) {
		return nil, models.ErrFileNotFound
	}

	out, err := r.objects.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrFileNotFound
		}
		return nil, &models.StorageError{Backend: backend, Err: err}
	}

	return out, nil
}

// fillLinks sets a presigned inline view link and a presigned attachment
// download link.
func (r *repository) fillLinks(ctx context.Context, ref *models.StorageReference) error {
	view, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(ref.RemoteID),
	}, s3.WithPresignExpires(r.linkTTL))
	if err != nil {
		return err
	}

	download, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(r.bucket),
		Key:                        aws.String(ref.RemoteID),
		ResponseContentDisposition: aws.String(mime.FormatMediaType("attachment", map[string]string{"filename": ref.Name})),
	}, s3.WithPresignExpires(r.linkTTL))
	if err != nil {
		return err
	}

	ref.ViewLink = view.URL
	ref.DownloadLink = download.URL

	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey

	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
