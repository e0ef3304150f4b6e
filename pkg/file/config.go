package file

import (
	"context"
	"fmt"
)

// Driver names accepted by Config.Driver.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config selects and configures the storage backend.
type Config struct {
	Driver  string `env:"AVATAR_STORAGE" envDefault:"local"`
	Dir     string `env:"AVATAR_DIR" envDefault:"public/avatars"`
	BaseURL string `env:"AVATAR_BASE_URL" envDefault:"/avatars/"`
	S3      S3Config
}

// New builds the backend named by cfg.Driver.
func New(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Driver {
	case DriverLocal, "":
		return NewLocalStorage(cfg.Dir, cfg.BaseURL)
	case DriverS3:
		return NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
