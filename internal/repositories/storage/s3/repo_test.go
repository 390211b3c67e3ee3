package s3repo

import (
	"bytes"
	"context"
	"errors"
	"io"
	"resumeapi/internal/models"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockObjects struct {
	mock.Mock
}

func (m *mockObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.PutObjectOutput), args.Error(1)
}

func (m *mockObjects) HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadObjectOutput), args.Error(1)
}

func (m *mockObjects) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.DeleteObjectOutput), args.Error(1)
}

type mockPresign struct {
	mock.Mock
}

func (m *mockPresign) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	args := m.Called(ctx, in)
	if fn, ok := args.Get(0).(func(*s3.GetObjectInput) *v4.PresignedHTTPRequest); ok {
		return fn(in), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*v4.PresignedHTTPRequest), args.Error(1)
}

func presignedFor(in *s3.GetObjectInput) *v4.PresignedHTTPRequest {
	u := "https://cv.s3.example.com/" + aws.ToString(in.Key)
	if in.ResponseContentDisposition != nil {
		u += "?download=1"
	}
	return &v4.PresignedHTTPRequest{URL: u}
}

func newTestRepo(objects *mockObjects, presign *mockPresign) *repository {
	repo := newRepository(objects, presign, "cv", time.Minute)
	repo.now = func() time.Time { return time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC) }
	return repo
}

func TestUpload_Success(t *testing.T) {
	t.Parallel()

	objects := new(mockObjects)
	presign := new(mockPresign)

	objects.On("PutObject", mock.Anything, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		reader, ok := in.Body.(*bytes.Reader)
		if !ok {
			return false
		}
		_, _ = reader.Seek(0, io.SeekStart)
		body, _ := io.ReadAll(reader)
		return aws.ToString(in.Bucket) == "cv" &&
			strings.HasPrefix(aws.ToString(in.Key), "uploads/2024/05/17/") &&
			strings.HasSuffix(aws.ToString(in.Key), ".pdf") &&
			aws.ToString(in.ContentType) == "application/pdf" &&
			aws.ToInt64(in.ContentLength) == 5 &&
			in.Metadata["original-filename"] == "my%20cv.pdf" &&
			string(body) == "%PDF-"
	})).Return(&s3.PutObjectOutput{}, nil)

	presign.On("PresignGetObject", mock.Anything, mock.Anything).
		Return(presignedFor, nil)

	repo := newTestRepo(objects, presign)

	ref, err := repo.Upload(context.Background(), &models.UploadedFile{
		Filename:    "my cv.pdf",
		ContentType: "application/pdf",
		Content:     []byte("%PDF-"),
	})
	require.NoError(t, err)

	assert.Equal(t, "s3", ref.Backend)
	assert.Equal(t, "my cv.pdf", ref.Name)
	assert.Equal(t, int64(5), ref.Size)
	assert.Equal(t, "https://cv.s3.example.com/"+ref.RemoteID, ref.ViewLink)
	assert.Equal(t, "https://cv.s3.example.com/"+ref.RemoteID+"?download=1", ref.DownloadLink)
	objects.AssertExpectations(t)
}

func TestUpload_ProviderError(t *testing.T) {
	t.Parallel()

	objects := new(mockObjects)
	presign := new(mockPresign)

	boom := errors.New("access denied")
	objects.On("PutObject", mock.Anything, mock.Anything).Return(nil, boom)

	repo := newTestRepo(objects, presign)

	ref, err := repo.Upload(context.Background(), &models.UploadedFile{Filename: "cv.pdf", Content: []byte("x")})
	assert.Nil(t, ref)
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
	assert.ErrorIs(t, err, boom)
	presign.AssertNotCalled(t, "PresignGetObject", mock.Anything, mock.Anything)
}

func TestUpload_PresignFailureRemovesObject(t *testing.T) {
	t.Parallel()

	objects := new(mockObjects)
	presign := new(mockPresign)

	objects.On("PutObject", mock.Anything, mock.Anything).Return(&s3.PutObjectOutput{}, nil)
	objects.On("DeleteObject", mock.Anything, mock.Anything).Return(&s3.DeleteObjectOutput{}, nil)
	presign.On("PresignGetObject", mock.Anything, mock.Anything).Return(nil, errors.New("sign failed"))

	repo := newTestRepo(objects, presign)

	ref, err := repo.Upload(context.Background(), &models.UploadedFile{Filename: "cv.pdf", Content: []byte("x")})
	assert.Nil(t, ref)
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
	objects.AssertCalled(t, "DeleteObject", mock.Anything, mock.Anything)
}

func TestInfo(t *testing.T) {
	t.Parallel()

	objects := new(mockObjects)
	presign := new(mockPresign)

	key := "uploads/2024/05/17/0b6f.pdf"
	modified := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

	objects.On("HeadObject", mock.Anything, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == key
	})).Return(&s3.HeadObjectOutput{
		ContentLength: aws.Int64(42),
		ContentType:   aws.String("application/pdf"),
		LastModified:  aws.Time(modified),
		Metadata:      map[string]string{"original-filename": "resume.pdf"},
	}, nil)
	presign.On("PresignGetObject", mock.Anything, mock.Anything).
		Return(presignedFor, nil)

	repo := newTestRepo(objects, presign)

	ref, err := repo.Info(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", ref.Name)
	assert.Equal(t, int64(42), ref.Size)
	assert.Equal(t, modified, ref.CreatedAt)
	assert.Equal(t, "https://cv.s3.example.com/"+key, ref.ViewLink)
}

func TestInfo_NotFound(t *testing.T) {
	t.Parallel()

	objects := new(mockObjects)
	presign := new(mockPresign)

	objects.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NotFound{})

	repo := newTestRepo(objects, presign)

	_, err := repo.Info(context.Background(), "uploads/2024/05/17/missing.pdf")
	assert.ErrorIs(t, err, models.ErrFileNotFound)

	_, err = repo.Info(context.Background(), "secrets/config.yaml")
	assert.ErrorIs(t, err, models.ErrFileNotFound)
	objects.AssertNumberOfCalls(t, "HeadObject", 1)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	objects := new(mockObjects)
	presign := new(mockPresign)

	key := "uploads/2024/05/17/0b6f.pdf"
	objects.On("HeadObject", mock.Anything, mock.Anything).Return(&s3.HeadObjectOutput{}, nil)
	objects.On("DeleteObject", mock.Anything, mock.MatchedBy(func(in *s3.DeleteObjectInput) bool {
		return aws.ToString(in.Bucket) == "cv" && aws.ToString(in.Key) == key
	})).Return(&s3.DeleteObjectOutput{}, nil)

	repo := newTestRepo(objects, presign)

	assert.NoError(t, repo.Delete(context.Background(), key))
	objects.AssertExpectations(t)
}

func TestDelete_NotFound(t *testing.T) {
	t.Parallel()

	objects := new(mockObjects)
	presign := new(mockPresign)

	objects.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NoSuchKey{})

	repo := newTestRepo(objects, presign)

	err := repo.Delete(context.Background(), "uploads/2024/05/17/0b6f.pdf")
	assert.ErrorIs(t, err, models.ErrFileNotFound)
	objects.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
}

func TestNewRepository_StaticKeysAndEndpoint(t *testing.T) {
	t.Setenv("AWS_PROFILE", "")
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent/config")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent/credentials")

	repo, err := NewRepository(context.Background(), Config{
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		Bucket:    "cv",
		AccessKey: "access",
		SecretKey: "secret",
		LinkTTL:   time.Minute,
	})
	require.NoError(t, err)

	req, err := repo.presign.PresignGetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String("cv"),
		Key:    aws.String("uploads/2024/05/17/a.pdf"),
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(req.URL, "http://localhost:9000/cv/uploads/2024/05/17/a.pdf?"), req.URL)
}

func TestNewRepository_NoBucket(t *testing.T) {
	t.Parallel()

	_, err := NewRepository(context.Background(), Config{Region: "us-east-1"})
	assert.Error(t, err)
}
