package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrUploadFailed wraps object-store failures. A send carrying an attachment
// is aborted before persistence when upload fails; the client may resubmit.
var ErrUploadFailed = errors.New("attachment upload failed")

// Uploader stores raw attachment bytes and returns a public content URL.
type Uploader interface {
	Upload(ctx context.Context, contentType string, data []byte) (string, error)
}

// S3Store uploads attachments to an S3 bucket.
type S3Store struct {
	uploader *manager.Uploader
	bucket   string
	region   string
}

// NewS3Store builds an S3-backed uploader using the default AWS config chain.
func NewS3Store(ctx context.Context, region, bucket string) (*S3Store, error) {
	cfg, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(region))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg)
	return &S3Store{uploader: manager.NewUploader(client), bucket: bucket, region: region}, nil
}

// Upload stores the attachment under a unique key and returns its URL.
func (s *S3Store) Upload(ctx context.Context, contentType string, data []byte) (string, error) {
	key := fmt.Sprintf("attachments/%s/%s%s", time.Now().UTC().Format("2006/01/02"), uuid.NewString(), extensionFor(contentType))
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, url.PathEscape(key)), nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
