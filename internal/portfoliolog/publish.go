package portfoliolog

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vk/backgrid/internal/ctxlog"
)

// Uploader is the subset of *manager.Uploader the publisher needs.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Publisher copies log directories to an S3 bucket.
type Publisher struct {
	up     Uploader
	bucket string
	prefix string
}

// NewPublisher creates a publisher writing to bucket under prefix.
func NewPublisher(up Uploader, bucket, prefix string) *Publisher {
	return &Publisher{up: up, bucket: bucket, prefix: prefix}
}

// NewS3Publisher builds a publisher from the default AWS configuration chain
// (environment, shared config files, instance roles).
func NewS3Publisher(ctx context.Context, bucket, prefix string) (*Publisher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewPublisher(manager.NewUploader(s3.NewFromConfig(cfg)), bucket, prefix), nil
}

// Publish uploads every regular file directly under dir to
// <prefix>/<base(dir)>/<file> and returns the object keys in upload order.
func (p *Publisher) Publish(ctx context.Context, dir string) ([]string, error) {
	logger := ctxlog.FromContext(ctx).With("bucket", p.bucket)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list log directory %q: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	keys := make([]string, 0, len(names))
	for _, name := range names {
		key := path.Join(p.prefix, filepath.Base(dir), name)
		if err := p.upload(ctx, filepath.Join(dir, name), key); err != nil {
			return keys, err
		}
		logger.Debug("Uploaded log file.", "key", key)
		keys = append(keys, key)
	}
	logger.Info("Published portfolio log.", "files", len(keys), "prefix", path.Join(p.prefix, filepath.Base(dir)))
	return keys, nil
}

func (p *Publisher) upload(ctx context.Context, src, key string) error {
	file, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file '%s': %w", src, err)
	}
	defer file.Close()

	contentType := mime.TypeByExtension(filepath.Ext(src))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = p.up.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload '%s' to s3://%s/%s: %w", src, p.bucket, key, err)
	}
	return nil
}
