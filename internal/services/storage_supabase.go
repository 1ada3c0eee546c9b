package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"alfredoptarigan/resume-intake/internal/apperror"
	"alfredoptarigan/resume-intake/internal/config"
	"alfredoptarigan/resume-intake/internal/logger"
)

// SupabaseStorage is a BlobStore backed by the Supabase Storage REST API.
type SupabaseStorage interface {
	BlobStore
	EnsureBucket(ctx context.Context) error
}

type supabaseStorage struct {
	client  *resty.Client
	baseURL string
	bucket  string
	log     zerolog.Logger
}

func NewSupabaseStorage(cfg config.SupabaseConfig, timeout time.Duration) SupabaseStorage {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(timeout).
		SetAuthToken(cfg.Key).
		SetHeader("apikey", cfg.Key)

	return &supabaseStorage{
		client:  client,
		baseURL: cfg.URL,
		bucket:  cfg.Bucket,
		log:     logger.Component("supabase_storage"),
	}
}

// Store implements BlobStore.
func (s *supabaseStorage) Store(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "false").
		SetBody(content).
		Post(s.objectPath(key))
	if err != nil {
		return "", apperror.BlobStoreUnavailable(fmt.Errorf("upload %s: %w", key, err))
	}
	if resp.IsError() {
		return "", apperror.BlobStoreUnavailable(fmt.Errorf("upload %s: status %d: %s", key, resp.StatusCode(), truncate(resp.String(), 300)))
	}

	s.log.Info().
		Str("blob_key", key).
		Int("bytes", len(content)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("blob stored")

	return s.publicURL(key), nil
}

// Delete implements BlobStore. A missing object counts as deleted.
func (s *supabaseStorage) Delete(ctx context.Context, key string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		Delete(s.objectPath(key))
	if err != nil {
		return apperror.BlobStoreUnavailable(fmt.Errorf("delete %s: %w", key, err))
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil
	}
	if resp.IsError() {
		return apperror.BlobStoreUnavailable(fmt.Errorf("delete %s: status %d: %s", key, resp.StatusCode(), truncate(resp.String(), 300)))
	}
	return nil
}

// EnsureBucket creates the bucket as public when it does not exist yet.
func (s *supabaseStorage) EnsureBucket(ctx context.Context) error {
	resp, err := s.client.R().
		SetContext(ctx).
		Get("/storage/v1/bucket/" + s.bucket)
	if err != nil {
		return apperror.BlobStoreUnavailable(err)
	}
	if resp.IsSuccess() {
		return nil
	}

	resp, err = s.client.R().
		SetContext(ctx).
		SetBody(map[string]interface{}{
			"id":     s.bucket,
			"name":   s.bucket,
			"public": true,
		}).
		Post("/storage/v1/bucket")
	if err != nil {
		return apperror.BlobStoreUnavailable(err)
	}
	if resp.IsError() {
		return apperror.BlobStoreUnavailable(fmt.Errorf("create bucket %s: status %d: %s", s.bucket, resp.StatusCode(), truncate(resp.String(), 300)))
	}

	s.log.Info().Str("bucket", s.bucket).Msg("bucket created")
	return nil
}

func (s *supabaseStorage) objectPath(key string) string {
	return fmt.Sprintf("/storage/v1/object/%s/%s", s.bucket, key)
}

func (s *supabaseStorage) publicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key)
}
