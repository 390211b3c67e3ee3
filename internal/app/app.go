package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"resumeapi/internal/cache/redis"
	"resumeapi/internal/config"
	"resumeapi/internal/dbs/postgres"
	cacheuploadsrepo "resumeapi/internal/repositories/cache/uploads"
	userrepo "resumeapi/internal/repositories/db/user"
	staticuserrepo "resumeapi/internal/repositories/static/user"
	"resumeapi/internal/repositories/storage"
	driverepo "resumeapi/internal/repositories/storage/drive"
	filerepo "resumeapi/internal/repositories/storage/file"
	miniorepo "resumeapi/internal/repositories/storage/minio"
	s3repo "resumeapi/internal/repositories/storage/s3"
	authservice "resumeapi/internal/services/auth"
	notificationservice "resumeapi/internal/services/notification"
	uploadservice "resumeapi/internal/services/upload"
)

type App struct {
	AuthService   *authservice.AuthService
	UploadService *uploadservice.UploadService

	closers []func() error
}

func NewApp(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	a := &App{}

	users, err := a.newUserProvider(ctx, cfg)
	if err != nil {
		log.Error("failed to init credentials store", "err", err)
		_ = a.Close()
		return nil, fmt.Errorf("failed to init credentials store: %w", err)
	}

	fileStorage, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		log.Error("failed to init storage", "backend", cfg.Storage.Backend, "err", err)
		_ = a.Close()
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	var dedup uploadservice.DedupCache
	if cfg.Cache.Addr != "" {
		cache, err := redis.New(ctx, redis.Config{Addr: cfg.Cache.Addr, Password: cfg.Cache.Password, DB: cfg.Cache.DB})
		if err != nil {
			log.Error("failed connect to cache", "err", err)
			_ = a.Close()
			return nil, fmt.Errorf("failed connect to cache: %w", err)
		}
		a.closers = append(a.closers, cache.Close)

		dedup = cacheuploadsrepo.New(cache, cfg.Cache.DedupTTL)
	}

	authService := authservice.New(log, users, cfg.Auth.SecretKey, cfg.Auth.TokenTTL)

	notifier := notificationservice.New(log, cfg.Webhook.URL, cfg.Webhook.Secret, cfg.Webhook.Timeout)

	uploadService := uploadservice.New(log, fileStorage, notifier, dedup, uploadservice.Config{
		AllowedExtensions: cfg.Upload.AllowedExtensions,
		MaxSize:           cfg.Upload.MaxSize,
		StorageTimeout:    cfg.Storage.Timeout,
	})

	log.Info("app initialized",
		slog.String("credentials", cfg.Credentials.Backend),
		slog.String("storage", fileStorage.Name()),
		slog.Bool("dedup", dedup != nil),
	)

	a.AuthService = authService
	a.UploadService = uploadService

	return a, nil
}

// Close releases connections opened by NewApp in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}

func (a *App) newUserProvider(ctx context.Context, cfg *config.Config) (authservice.UserProvider, error) {
	switch cfg.Credentials.Backend {
	case config.CredentialsPostgres:
		db, err := postgres.New(ctx, postgres.Config{
			Addr:     cfg.DB.Addr,
			Port:     cfg.DB.Port,
			User:     cfg.DB.User,
			Password: cfg.DB.Password,
			DB:       cfg.DB.DB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)

		return userrepo.NewRepository(db), nil
	case config.CredentialsStatic:
		return staticuserrepo.New(cfg.Credentials.AdminUsername, cfg.Credentials.AdminEmail, cfg.Credentials.AdminPassword)
	default:
		return nil, fmt.Errorf("unknown credentials backend %q", cfg.Credentials.Backend)
	}
}

func newStorage(ctx context.Context, cfg config.Storage) (storage.Client, error) {
	switch cfg.Backend {
	case config.StorageDrive:
		return driverepo.NewRepository(ctx, driverepo.Config{
			CredentialsFile:   cfg.Drive.CredentialsFile,
			ServiceAccountKey: cfg.Drive.ServiceAccountKey,
			FolderID:          cfg.Drive.FolderID,
		})
	case config.StorageS3:
		return s3repo.NewRepository(ctx, s3repo.Config{
			Endpoint:  cfg.Object.Endpoint,
			Region:    cfg.Object.Region,
			Bucket:    cfg.Object.Bucket,
			AccessKey: cfg.Object.AccessKey,
			SecretKey: cfg.Object.SecretKey,
			LinkTTL:   cfg.Object.LinkTTL,
		})
	case config.StorageMinio:
		return miniorepo.NewRepository(ctx, miniorepo.Config{
			Endpoint:  cfg.Object.Endpoint,
			Region:    cfg.Object.Region,
			Bucket:    cfg.Object.Bucket,
			AccessKey: cfg.Object.AccessKey,
			SecretKey: cfg.Object.SecretKey,
			LinkTTL:   cfg.Object.LinkTTL,
		})
	case config.StorageLocal:
		return filerepo.NewRepository(cfg.Local.Path, cfg.Local.BaseURL)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
