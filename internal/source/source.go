package source

import (
	"context"
	"fmt"

	"brew-backend/internal/config"
)

// Source fetches the raw transaction export bytes from wherever the
// deployment keeps them.
type Source interface {
	// Fetch returns the raw CSV bytes of the transaction export.
	Fetch(ctx context.Context) ([]byte, error)
	// Describe names the origin for logs.
	Describe() string
}

// FromConfig picks the source implied by the configuration: an object
// store bucket when one is set, the local file path otherwise.
func FromConfig(cfg *config.Config) (Source, error) {
	if cfg.Dataset.S3Bucket != "" {
		return NewObjectSource(cfg)
	}
	if cfg.Dataset.Path == "" {
		return nil, fmt.Errorf("no dataset source configured: set dataset.path or dataset.s3_bucket")
	}
	return NewFileSource(cfg.Dataset.Path), nil
}
