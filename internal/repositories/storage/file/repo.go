package filerepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"resumeapi/internal/models"
	"resumeapi/internal/repositories/storage"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
)

const (
	pkg     = "fileRepo/"
	backend = "local"
)

// repository keeps every upload in its own directory named after the
// object id: <root>/<id>/<original name>.
type repository struct {
	root    string
	baseURL string
	now     func() time.Time
}

func NewRepository(root string, baseURL string) (*repository, error) {
	op := pkg + "NewRepository"

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &repository{
		root:    abs,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}, nil
}

func (r *repository) Name() string {
	return backend
}

func (r *repository) Upload(ctx context.Context, file *models.UploadedFile) (*models.StorageReference, error) {
	op := pkg + "Upload"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	name := storage.BaseName(file.Filename)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, models.ErrNoFile)
	}

	id := uuid.NewV4().String()
	dir := filepath.Join(r.root, id)

	if err := os.Mkdir(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	if err := writeFile(filepath.Join(dir, name), file.Content); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	link := r.link(id, name)

	return &models.StorageReference{
		RemoteID:     id,
		Name:         name,
		ViewLink:     link,
		DownloadLink: link,
		Size:         file.Size(),
		ContentType:  file.ContentType,
		Backend:      backend,
		CreatedAt:    r.now().UTC(),
	}, nil
}

func (r *repository) Info(ctx context.Context, remoteID string) (*models.StorageReference, error) {
	op := pkg + "Info"

	dir, err := r.dir(remoteID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".tmp-") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
		}

		link := r.link(remoteID, entry.Name())

		return &models.StorageReference{
			RemoteID:     remoteID,
			Name:         entry.Name(),
			ViewLink:     link,
			DownloadLink: link,
			Size:         info.Size(),
			Backend:      backend,
			CreatedAt:    info.ModTime().UTC(),
		}, nil
	}

	return nil, fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
}

func (r *repository) Delete(ctx context.Context, remoteID string) error {
	op := pkg + "Delete"

	dir, err := r.dir(remoteID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
		}
		return fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("%s: %w", op, &models.StorageError{Backend: backend, Err: err})
	}

	return nil
}

// dir maps an object id to its directory, refusing anything that is not a uuid.
func (r *repository) dir(remoteID string) (string, error) {
	id, err := uuid.FromString(remoteID)
	if err != nil {
		return "", models.ErrFileNotFound
	}

	return filepath.Join(r.root, id.String()), nil
}

func (r *repository) link(id string, name string) string {
	if r.baseURL != "" {
		return r.baseURL + "/" + id + "/" + url.PathEscape(name)
	}

	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filepath.Join(r.root, id, name))}
	return u.String()
}

// writeFile writes through a temp file so a reader never sees partial content.
func writeFile(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
