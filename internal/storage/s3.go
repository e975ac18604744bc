package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	apperrors "github.com/musewave/backend/internal/errors"
)

// S3Store is a Store backed by S3 (or an S3-compatible endpoint), generalized
// from the teacher's audio-specific S3Uploader into a generic keyed Put.
type S3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

var _ Store = (*S3Store)(nil)

// S3Config configures an S3Store.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional, for S3-compatible backends (MinIO, R2)
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string
}

// NewS3Store creates an S3Store, grounded on the teacher's NewS3Uploader.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, bucket: cfg.Bucket, baseURL: strings.TrimSuffix(cfg.BaseURL, "/")}, nil
}

func (s *S3Store) url(key string) string {
	return s.baseURL + "/" + cleanKey(key)
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte) (string, int64, error) {
	key = cleanKey(key)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType(filepath.Ext(key))),
	})
	if err != nil {
		return "", 0, apperrors.StorageUnavailableError(err.Error())
	}
	return s.url(key), int64(len(data)), nil
}

func (s *S3Store) PutStream(ctx context.Context, key string, reader io.Reader) (string, int64, error) {
	buf, err := io.ReadAll(reader)
	if err != nil {
		return "", 0, apperrors.StorageUnavailableError(err.Error())
	}
	return s.Put(ctx, key, buf)
}

func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleanKey(key)),
	})
	if err != nil {
		return nil, translateS3Err(err)
	}
	return out.Body, nil
}

func (s *S3Store) OpenRange(ctx context.Context, key string, start, end int64) (io.ReadCloser, error) {
	rangeHeader := fmt.Sprintf("bytes=%d-%d", start, end-1)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleanKey(key)),
		Range:  aws.String(rangeHeader),
	})
	if err != nil {
		return nil, translateS3Err(err)
	}
	return out.Body, nil
}

func (s *S3Store) Stat(ctx context.Context, key string) (Info, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleanKey(key)),
	})
	if err != nil {
		return Info{}, translateS3Err(err)
	}
	var size int64
	if out.ContentLength != nil {
		size = *out.ContentLength
	}
	var mtime = out.LastModified
	if mtime == nil {
		return Info{Size: size}, nil
	}
	return Info{Size: size, Mtime: *mtime}, nil
}

func (s *S3Store) ResolvePath(key string) string { return "" }

func translateS3Err(err error) error {
	if strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound") {
		return apperrors.NotFound("asset")
	}
	return apperrors.StorageUnavailableError(err.Error())
}

func contentType(extension string) string {
	switch strings.ToLower(extension) {
	case ".wav":
		return "audio/wav"
	case ".mp3":
		return "audio/mpeg"
	case ".mp4":
		return "video/mp4"
	case ".srt":
		return "application/x-subrip"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
