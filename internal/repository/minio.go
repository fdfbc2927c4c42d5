package repository

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/RubachokBoss/classroom-gradebook/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// ObjectStorage keeps roster originals and generated gradebook exports.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration, downloadName string) (string, error)
}

type MinIORepository struct {
	client *minio.Client
	bucket string
	region string
	logger zerolog.Logger

	ensureMu      sync.Mutex
	bucketEnsured bool
}

func NewMinIORepository(cfg config.StorageConfig, logger zerolog.Logger) (*MinIORepository, error) {
	// Инициализация клиента MinIO
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	repo := &MinIORepository{
		client: client,
		bucket: cfg.Bucket,
		region: cfg.Region,
		logger: logger,
	}

	// Best-effort bootstrap: сервис стартует, даже если MinIO ещё не готов.
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := repo.ensureBucket(ctx); err != nil {
		logger.Error().Err(err).
			Str("endpoint", cfg.Endpoint).
			Str("bucket", cfg.Bucket).
			Msg("MinIO not ready during startup; uploads will retry on demand")
	} else {
		logger.Info().
			Str("endpoint", cfg.Endpoint).
			Str("bucket", cfg.Bucket).
			Bool("ssl", cfg.UseSSL).
			Msg("Connected to MinIO")
	}

	return repo, nil
}

func (r *MinIORepository) ensureBucket(ctx context.Context) error {
	r.ensureMu.Lock()
	defer r.ensureMu.Unlock()
	if r.bucketEnsured {
		return nil
	}

	// Если MinIO ещё не отвечает, ретраим до дедлайна ctx.
	backoff := 500 * time.Millisecond
	for {
		exists, err := r.client.BucketExists(ctx, r.bucket)
		if err == nil && !exists {
			err = r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{Region: r.region})
			if err == nil {
				r.logger.Info().Str("bucket", r.bucket).Msg("Created new bucket")
			}
		}
		if err == nil {
			r.bucketEnsured = true
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("minio not ready: %w", err)
		case <-time.After(backoff):
		}
	}
}

func (r *MinIORepository) Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error {
	if err := r.ensureBucket(ctx); err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	uploadInfo, err := r.client.PutObject(ctx, r.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}

	r.logger.Debug().
		Str("bucket", r.bucket).
		Str("key", key).
		Str("etag", uploadInfo.ETag).
		Int64("size", size).
		Msg("Object uploaded to MinIO")

	return nil
}

func (r *MinIORepository) PresignedURL(ctx context.Context, key string, ttl time.Duration, downloadName string) (string, error) {
	if err := r.ensureBucket(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	if downloadName != "" {
		params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", downloadName))
	}

	u, err := r.client.PresignedGetObject(ctx, r.bucket, key, ttl, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return u.String(), nil
}

// RosterObjectKey is where an uploaded roster file is archived.
func RosterObjectKey(classroomID, fileName string, at time.Time) string {
	return fmt.Sprintf("rosters/%s/%d_%s", classroomID, at.Unix(), sanitizeName(fileName))
}

// ExportObjectKey is where a rendered gradebook export is stored.
func ExportObjectKey(classroomID, exportID string) string {
	return fmt.Sprintf("exports/%s/%s.xlsx", classroomID, exportID)
}

func sanitizeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." || name == "/" {
		return "upload"
	}
	return name
}
