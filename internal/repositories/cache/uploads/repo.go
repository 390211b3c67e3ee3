package cacheuploadsrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"resumeapi/internal/models"
	cacherepo "resumeapi/internal/repositories/cache"
	"time"
)

const pkg = "cacheUploadsRepo/"

const (
	digestKeyPrefix = "upload:sha256:"
	remoteKeyPrefix = "upload:id:"
)

// repository maps content digests to the storage references they produced,
// plus a reverse index so a deleted object can be forgotten by its id.
type repository struct {
	cache cacherepo.Cache
	ttl   time.Duration
}

func New(cache cacherepo.Cache, ttl time.Duration) *repository {
	return &repository{
		cache: cache,
		ttl:   ttl,
	}
}

func (r *repository) ReferenceByDigest(ctx context.Context, digest string) (*models.StorageReference, error) {
	op := pkg + "ReferenceByDigest"

	refJSON, err := r.cache.Get(ctx, digestKeyPrefix+digest).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if refJSON == "" {
		return nil, models.ErrReferenceNotCached
	}

	var ref models.StorageReference
	if err := json.Unmarshal([]byte(refJSON), &ref); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &ref, nil
}

func (r *repository) SaveReference(ctx context.Context, digest string, ref *models.StorageReference) error {
	op := pkg + "SaveReference"

	refJSON, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.cache.Set(ctx, digestKeyPrefix+digest, string(refJSON), r.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.cache.Set(ctx, remoteKeyPrefix+ref.RemoteID, digest, r.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) ForgetReference(ctx context.Context, remoteID string) error {
	op := pkg + "ForgetReference"

	digest, err := r.cache.Get(ctx, remoteKeyPrefix+remoteID).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	keys := []string{remoteKeyPrefix + remoteID}
	if digest != "" {
		keys = append(keys, digestKeyPrefix+digest)
	}

	if err := r.cache.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
