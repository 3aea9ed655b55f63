package storage

import (
	"fmt"
)

// NewCloudflareR2Storage creates a storage instance for Cloudflare R2.
// R2 is S3-compatible, so it reuses the S3 implementation with a custom
// endpoint (https://<account_id>.r2.cloudflarestorage.com) and
// path-style addressing.
func NewCloudflareR2Storage(cfg Config) (*S3Storage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required for Cloudflare R2")
	}

	cfg.Region = "auto"
	if cfg.BaseURL == "" {
		// Use R2 public URL if none configured
		cfg.BaseURL = fmt.Sprintf("https://%s.r2.dev", cfg.Bucket)
	}

	return NewS3Storage(cfg)
}
