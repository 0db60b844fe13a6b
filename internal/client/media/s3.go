package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	cc "github.com/guia-app/guia/internal/client/config"
	"github.com/guia-app/guia/internal/client/models"
	"github.com/guia-app/guia/internal/logging"
)

var loadAWSConfig = config.LoadDefaultConfig

// objectPutter is the part of *s3.Client the uploader uses.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader puts files straight into a bucket.
type S3Uploader struct {
	client    objectPutter
	bucket    string
	publicURL string
	logger    logging.Logger
	now       func() time.Time
}

// NewS3Uploader builds an uploader from the S3 settings. A custom endpoint
// switches to path-style addressing, as MinIO and R2 expect.
func NewS3Uploader(ctx context.Context, cfg cc.S3, logger logging.Logger) (*S3Uploader, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3 uploads need a bucket")
	}
	if logger == nil {
		logger = logging.Discard()
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := loadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3Uploader{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL(cfg),
		logger:    logger,
		now:       time.Now,
	}, nil
}

func publicURL(cfg cc.S3) string {
	switch {
	case cfg.PublicURL != "":
		return strings.TrimSuffix(cfg.PublicURL, "/")
	case cfg.Endpoint != "":
		return strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

// objectKey places uploads under a dated prefix with a random name.
func (u *S3Uploader) objectKey(f File) string {
	d := u.now().UTC()
	name := uuid.NewString() + strings.ToLower(filepath.Ext(f.Name))
	return path.Join("media", string(f.Kind()), fmt.Sprintf("%04d/%02d/%02d", d.Year(), d.Month(), d.Day()), name)
}

func (u *S3Uploader) Upload(ctx context.Context, f File) (*models.Upload, error) {
	if err := Validate(f); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer fh.Close()

	key := u.objectKey(f)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          fh,
		ContentType:   aws.String(f.ContentType),
		ContentLength: aws.Int64(f.Size),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", f.Name, err)
	}
	u.logger.Debug(ctx, "uploaded to s3", "bucket", u.bucket, "key", key, "size", f.Size)

	return &models.Upload{
		URL:         u.publicURL + "/" + key,
		FilePath:    key,
		FileName:    f.Name,
		ContentType: f.ContentType,
		Size:        f.Size,
	}, nil
}
