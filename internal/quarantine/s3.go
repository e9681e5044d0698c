package quarantine

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"tgcheck/internal/check"
	"tgcheck/internal/config"
)

// uploader is the subset of manager.Uploader used here.
type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3Quarantine uploads files to an S3 bucket and removes the local copy once
// the upload succeeds. Objects are stored as <prefix>/<base name>.
type S3Quarantine struct {
	bucket   string
	prefix   string
	uploader uploader
}

// NewS3Quarantine builds an S3 client from cfg. Static credentials are used
// when both keys are set; otherwise the default AWS credential chain applies.
func NewS3Quarantine(ctx context.Context, cfg config.QuarantineConfig) (*S3Quarantine, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Quarantine(cfg.S3Bucket, cfg.S3Prefix, manager.NewUploader(client)), nil
}

func newS3Quarantine(bucket, prefix string, up uploader) *S3Quarantine {
	return &S3Quarantine{bucket: bucket, prefix: prefix, uploader: up}
}

// Move uploads the file and deletes it locally. The local file is kept if
// the upload fails.
func (q *S3Quarantine) Move(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", localPath, err)
	}

	key := path.Join(q.prefix, filepath.Base(localPath))
	_, err = q.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(q.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	f.Close()
	if err != nil {
		return "", fmt.Errorf("uploading %s to s3://%s/%s: %w", localPath, q.bucket, key, err)
	}

	if err := os.Remove(localPath); err != nil {
		return "", fmt.Errorf("removing %s after upload: %w", localPath, err)
	}
	return fmt.Sprintf("s3://%s/%s", q.bucket, key), nil
}

// Compile-time check that S3Quarantine implements check.Quarantine interface
var _ check.Quarantine = (*S3Quarantine)(nil)
