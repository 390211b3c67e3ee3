package uploadservice

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"resumeapi/internal/models"
	"slices"
	"strings"
	"time"
)

const pkg = "uploadService/"

type Config struct {
	AllowedExtensions []string
	// MaxSize of 0 disables the size check.
	MaxSize        int64
	StorageTimeout time.Duration
}

type UploadService struct {
	log      *slog.Logger
	storage  Storage
	notifier Notifier
	dedup    DedupCache
	cfg      Config
	now      func() time.Time
}

// New builds the upload pipeline. dedup may be nil.
func New(
	log *slog.Logger,
	storage Storage,
	notifier Notifier,
	dedup DedupCache,
	cfg Config,
) *UploadService {
	return &UploadService{
		log:      log,
		storage:  storage,
		notifier: notifier,
		dedup:    dedup,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (us *UploadService) Policy() models.UploadPolicy {
	return models.UploadPolicy{
		AllowedExtensions: slices.Clone(us.cfg.AllowedExtensions),
		MaxSize:           us.cfg.MaxSize,
		Backend:           us.storage.Name(),
	}
}

// HandleUpload validates the file, stores it and notifies the webhook.
// Webhook problems are reported in the result, never as an error.
func (us *UploadService) HandleUpload(ctx context.Context, file *models.UploadedFile) (*models.UploadResult, error) {
	op := pkg + "HandleUpload"

	log := us.log.With(slog.String("op", op))

	if file == nil || strings.TrimSpace(file.Filename) == "" {
		log.Warn("no file provided")
		return nil, fmt.Errorf("%s: %w", op, models.ErrNoFile)
	}

	log = log.With(slog.String("filename", file.Filename), slog.Int64("size", file.Size()))

	log.Debug("attempting to upload file")

	if err := us.validate(file); err != nil {
		log.Warn("file rejected", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	digest := contentDigest(file.Content)

	if ref := us.cachedReference(ctx, log, digest); ref != nil {
		log.Info("reusing stored object", slog.String("file_id", ref.RemoteID))
		return us.finish(ctx, log, file, ref, true), nil
	}

	ref, err := us.store(ctx, file)
	if err != nil {
		log.Error("failed to store file", slog.String("backend", us.storage.Name()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrInternal, err)
	}

	if us.dedup != nil {
		if err := us.dedup.SaveReference(ctx, digest, ref); err != nil {
			log.Warn("failed to cache reference", slog.String("error", err.Error()))
		}
	}

	log.Info("file stored", slog.String("file_id", ref.RemoteID), slog.String("backend", ref.Backend))

	return us.finish(ctx, log, file, ref, false), nil
}

func (us *UploadService) UploadInfo(ctx context.Context, remoteID string) (*models.StorageReference, error) {
	op := pkg + "UploadInfo"

	log := us.log.With(slog.String("op", op), slog.String("file_id", remoteID))

	ctx, cancel := us.storageContext(ctx)
	defer cancel()

	ref, err := us.storage.Info(ctx, remoteID)
	if err != nil {
		if errors.Is(err, models.ErrFileNotFound) {
			log.Info("file not found")
			return nil, fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
		}

		log.Error("failed to get file info", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w: %w", op, models.ErrInternal, err)
	}

	return ref, nil
}

func (us *UploadService) DeleteUpload(ctx context.Context, remoteID string) error {
	op := pkg + "DeleteUpload"

	log := us.log.With(slog.String("op", op), slog.String("file_id", remoteID))

	storageCtx, cancel := us.storageContext(ctx)
	defer cancel()

	if err := us.storage.Delete(storageCtx, remoteID); err != nil {
		if errors.Is(err, models.ErrFileNotFound) {
			log.Info("file not found")
			return fmt.Errorf("%s: %w", op, models.ErrFileNotFound)
		}

		log.Error("failed to delete file", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w: %w", op, models.ErrInternal, err)
	}

	if us.dedup != nil {
		if err := us.dedup.ForgetReference(ctx, remoteID); err != nil {
			log.Warn("failed to drop cached reference", slog.String("error", err.Error()))
		}
	}

	log.Info("file deleted")

	return nil
}

func (us *UploadService) validate(file *models.UploadedFile) error {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !slices.Contains(us.cfg.AllowedExtensions, ext) {
		return fmt.Errorf("%w: only %s files are accepted", models.ErrUnsupportedFileType, strings.Join(us.cfg.AllowedExtensions, ", "))
	}

	if file.Size() == 0 {
		return models.ErrEmptyFile
	}

	if us.cfg.MaxSize > 0 && file.Size() > us.cfg.MaxSize {
		return fmt.Errorf("%w: limit is %d bytes", models.ErrFileTooLarge, us.cfg.MaxSize)
	}

	return nil
}

func (us *UploadService) cachedReference(ctx context.Context, log *slog.Logger, digest string) *models.StorageReference {
	if us.dedup == nil {
		return nil
	}

	ref, err := us.dedup.ReferenceByDigest(ctx, digest)
	if err != nil {
		if !errors.Is(err, models.ErrReferenceNotCached) {
			log.Warn("dedup lookup failed", slog.String("error", err.Error()))
		}
		return nil
	}

	if ref.Backend != us.storage.Name() {
		return nil
	}

	// Cached links may be presigned and expired; Info re-signs them and
	// confirms the object still exists.
	infoCtx, cancel := us.storageContext(ctx)
	defer cancel()

	fresh, err := us.storage.Info(infoCtx, ref.RemoteID)
	if err != nil {
		if errors.Is(err, models.ErrFileNotFound) {
			log.Info("cached object is gone", slog.String("file_id", ref.RemoteID))
			if err := us.dedup.ForgetReference(ctx, ref.RemoteID); err != nil {
				log.Warn("failed to drop cached reference", slog.String("error", err.Error()))
			}
			return nil
		}

		log.Warn("failed to refresh cached reference", slog.String("file_id", ref.RemoteID), slog.String("error", err.Error()))
		return nil
	}

	return fresh
}

func (us *UploadService) store(ctx context.Context, file *models.UploadedFile) (*models.StorageReference, error) {
	ctx, cancel := us.storageContext(ctx)
	defer cancel()

	ref, err := us.storage.Upload(ctx, file)
	if err != nil {
		if !errors.Is(err, models.ErrStorageUnavailable) {
			err = &models.StorageError{Backend: us.storage.Name(), Err: err}
		}
		return nil, err
	}

	return ref, nil
}

func (us *UploadService) finish(ctx context.Context, log *slog.Logger, file *models.UploadedFile, ref *models.StorageReference, deduplicated bool) *models.UploadResult {
	payload := models.WebhookPayload{
		FileID:           ref.RemoteID,
		FileName:         ref.Name,
		ViewLink:         ref.ViewLink,
		DownloadLink:     ref.DownloadLink,
		FileSize:         ref.Size,
		ContentType:      file.ContentType,
		Storage:          ref.Backend,
		OriginalFilename: file.Filename,
		UploadedAt:       us.now().UTC(),
	}

	status := us.notifier.Notify(ctx, payload)
	if !status.OK() {
		log.Warn("webhook not delivered", slog.String("status", status.Status), slog.String("message", status.Message))
	}

	return &models.UploadResult{
		Filename:     file.Filename,
		Reference:    ref,
		Webhook:      status,
		Deduplicated: deduplicated,
	}
}

func (us *UploadService) storageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if us.cfg.StorageTimeout > 0 {
		return context.WithTimeout(ctx, us.cfg.StorageTimeout)
	}
	return context.WithCancel(ctx)
}

func contentDigest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
