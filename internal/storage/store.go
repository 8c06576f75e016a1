package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go-do-list/backend/internal/config"
)

var (
	ErrNotExist   = errors.New("stored file does not exist")
	ErrInvalidKey = errors.New("invalid storage key")
)

// FileStore holds attachment bytes under flat keys such as "12_report.pdf".
type FileStore interface {
	// Save writes body under key, replacing any previous content, and
	// returns the number of bytes written.
	Save(ctx context.Context, key string, body io.Reader) (int64, error)
	// Open returns the content and its size, or ErrNotExist.
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

func New(ctx context.Context, cfg config.StorageConfig) (FileStore, error) {
	switch cfg.Driver {
	case "local", "":
		return NewLocalStore(cfg.UploadDir)
	case "minio":
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// Key builds the storage key for a task attachment.
func Key(taskID uint, filename string) string {
	return fmt.Sprintf("%d_%s", taskID, filename)
}
