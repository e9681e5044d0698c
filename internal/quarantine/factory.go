package quarantine

import (
	"context"
	"fmt"

	"tgcheck/internal/check"
	"tgcheck/internal/config"
)

// NewQuarantineFromConfig creates a Quarantine implementation based on the quarantine config type.
func NewQuarantineFromConfig(ctx context.Context, cfg config.QuarantineConfig) (check.Quarantine, error) {
	switch cfg.Type {
	case "filesystem", "":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("filesystem quarantine requires dir to be set")
		}
		return NewFileSystemQuarantine(cfg.Dir)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 quarantine requires s3_bucket to be set")
		}
		return NewS3Quarantine(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown quarantine type: %s", cfg.Type)
	}
}
