package miniorepo

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"resumeapi/internal/models"
	"strings"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *mockClient) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *mockClient) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	args := m.Called(ctx, bucketName, objectName)
	return args.Error(0)
}

func (m *mockClient) PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucketName, objectName, expires)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	u := *args.Get(0).(*url.URL)
	if len(reqParams) > 0 {
		u.RawQuery = reqParams.Encode()
	}
	return &u, args.Error(1)
}

func newTestRepo(client *mockClient) *repository {
	repo := newRepository(client, "cv", time.Minute)
	repo.now = func() time.Time { return time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC) }
	return repo
}

func TestNormaliseEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw      string
		endpoint string
		secure   bool
		wantErr  bool
	}{
		{raw: "minio:9000", endpoint: "minio:9000"},
		{raw: " http://minio:9000 ", endpoint: "minio:9000"},
		{raw: "https://s3.example.com/", endpoint: "s3.example.com", secure: true},
		{raw: "https://s3.example.com/bucket", wantErr: true},
		{raw: "http://", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		endpoint, secure, err := normaliseEndpoint(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.endpoint, endpoint)
		assert.Equal(t, tt.secure, secure)
	}
}

func TestUpload_Success(t *testing.T) {
	t.Parallel()

	client := new(mockClient)
	client.On("PutObject", mock.Anything, "cv", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "uploads/2024/05/17/") && strings.HasSuffix(key, ".pdf")
	}), int64(3), mock.MatchedBy(func(opts minio.PutObjectOptions) bool {
		return opts.ContentType == "application/pdf" && opts.UserMetadata["original-filename"] == "cv.pdf"
	})).Return(minio.UploadInfo{}, nil)
	client.On("PresignedGetObject", mock.Anything, "cv", mock.Anything, time.Minute).
		Return(&url.URL{Scheme: "http", Host: "minio:9000", Path: "/cv/object"}, nil)

	repo := newTestRepo(client)

	ref, err := repo.Upload(context.Background(), &models.UploadedFile{
		Filename:    "cv.pdf",
		ContentType: "application/pdf",
		Content:     []byte("abc"),
	})
	require.NoError(t, err)

	assert.Equal(t, "minio", ref.Backend)
	assert.Equal(t, "cv.pdf", ref.Name)
	assert.Equal(t, "http://minio:9000/cv/object", ref.ViewLink)
	assert.Contains(t, ref.DownloadLink, "response-content-disposition=attachment")
	client.AssertExpectations(t)
}

func TestUpload_ProviderError(t *testing.T) {
	t.Parallel()

	client := new(mockClient)
	boom := errors.New("connection refused")
	client.On("PutObject", mock.Anything, "cv", mock.Anything, mock.Anything, mock.Anything).Return(minio.UploadInfo{}, boom)

	repo := newTestRepo(client)

	ref, err := repo.Upload(context.Background(), &models.UploadedFile{Filename: "cv.pdf", Content: []byte("abc")})
	assert.Nil(t, ref)
	assert.ErrorIs(t, err, models.ErrStorageUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestInfo(t *testing.T) {
	t.Parallel()

	key := "uploads/2024/05/17/0b6f.pdf"
	modified := time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC)

	client := new(mockClient)
	client.On("StatObject", mock.Anything, "cv", key).Return(minio.ObjectInfo{
		Key:          key,
		Size:         42,
		ContentType:  "application/pdf",
		LastModified: modified,
		UserMetadata: minio.StringMap{"Original-Filename": "my%20cv.pdf"},
	}, nil)
	client.On("PresignedGetObject", mock.Anything, "cv", key, time.Minute).
		Return(&url.URL{Scheme: "http", Host: "minio:9000", Path: "/cv/" + key}, nil)

	repo := newTestRepo(client)

	ref, err := repo.Info(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "my cv.pdf", ref.Name)
	assert.Equal(t, int64(42), ref.Size)
	assert.Equal(t, modified, ref.CreatedAt)
}

func TestInfo_NotFound(t *testing.T) {
	t.Parallel()

	key := "uploads/2024/05/17/0b6f.pdf"

	client := new(mockClient)
	client.On("StatObject", mock.Anything, "cv", key).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound})

	repo := newTestRepo(client)

	_, err := repo.Info(context.Background(), key)
	assert.ErrorIs(t, err, models.ErrFileNotFound)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	key := "uploads/2024/05/17/0b6f.pdf"

	client := new(mockClient)
	client.On("StatObject", mock.Anything, "cv", key).Return(minio.ObjectInfo{Key: key}, nil)
	client.On("RemoveObject", mock.Anything, "cv", key).Return(nil)

	repo := newTestRepo(client)

	assert.NoError(t, repo.Delete(context.Background(), key))
	client.AssertExpectations(t)
}

func TestDelete_InvalidKey(t *testing.T) {
	t.Parallel()

	client := new(mockClient)
	repo := newTestRepo(client)

	err := repo.Delete(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, models.ErrFileNotFound)
	client.AssertNotCalled(t, "RemoveObject", mock.Anything, mock.Anything, mock.Anything)
}

func TestNewClient_PresignsOffline(t *testing.T) {
	t.Parallel()

	client, err := newClient(Config{
		Endpoint:  "http://localhost:9000",
		Region:    "us-east-1",
		Bucket:    "resumes",
		AccessKey: "access",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	u, err := client.PresignedGetObject(context.Background(), "resumes", "uploads/2024/05/17/a.pdf", time.Minute, nil)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/resumes/uploads/2024/05/17/a.pdf", u.Path)
}

func TestNewClient_Incomplete(t *testing.T) {
	t.Parallel()

	_, err := newClient(Config{Endpoint: "localhost:9000", Bucket: "resumes"})
	assert.ErrorContains(t, err, "minio configuration incomplete")
}
