package source

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"brew-backend/internal/config"
)

const fetchTimeout = 30 * time.Second

// ObjectSource reads the transaction export from an S3-compatible
// bucket. A custom endpoint makes it work against R2 and MinIO too.
type ObjectSource struct {
	client *s3.Client
	bucket string
	key    string
}

func NewObjectSource(cfg *config.Config) (*ObjectSource, error) {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.ObjectStore.Region),
	}
	if cfg.ObjectStore.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.ObjectStore.AccessKey,
			cfg.ObjectStore.SecretKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("configure object store client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.ObjectStore.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.ObjectStore.Endpoint)
		}
	})

	return &ObjectSource{
		client: client,
		bucket: cfg.Dataset.S3Bucket,
		key:    cfg.Dataset.S3Key,
	}, nil
}

func (s *ObjectSource) Fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch dataset object: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read dataset object: %w", err)
	}
	return data, nil
}

func (s *ObjectSource) Describe() string {
	return "s3://" + s.bucket + "/" + s.key
}
