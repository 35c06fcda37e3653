// Package upload stages product images on disk and, when object storage is
// configured, hands them to an S3-compatible bucket.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/storefront-api/internal/config"
)

var (
	ErrEmptyFile       = errors.New("empty file")
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrObjectHost      = errors.New("object host unavailable")
)

var allowedExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true, ".avif": true,
}

// ObjectPutter is the subset of the S3 client used here.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Service stores uploaded images and returns their public URL.
type Service struct {
	dir        string
	publicBase string
	maxBytes   int64

	objects    ObjectPutter // nil keeps files local
	bucket     string
	objectBase string

	log   logrus.FieldLogger
	now   func() time.Time
	newID func() string
}

// New creates the staging directory.  objects may be nil.
func New(cfg config.UploadConfig, objects ObjectPutter, log logrus.FieldLogger) (*Service, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	s := &Service{
		dir:        cfg.Dir,
		publicBase: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxBytes:   cfg.MaxBytes,
		log:        log.WithField("component", "upload"),
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
	if objects != nil && cfg.S3.Enabled() {
		s.objects = objects
		s.bucket = cfg.S3.Bucket
		s.objectBase = strings.TrimRight(cfg.S3.PublicURL, "/")
	}
	return s, nil
}

// NewS3Client builds a client from the default AWS chain, overridden by
// static keys and a custom endpoint when configured.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// Dir is the local directory served under /images.
func (s *Service) Dir() string { return s.dir }

// Upload stages fh and returns the URL the image is reachable under.
func (s *Service) Upload(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Size == 0 {
		return "", ErrEmptyFile
	}
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, fh.Size)
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	name := s.fileName(ext)
	path := filepath.Join(s.dir, name)
	if err := s.stage(fh, path); err != nil {
		return "", err
	}

	if s.objects == nil {
		return s.publicBase + "/images/" + name, nil
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.WithError(err).WithField("file", name).Warn("staged file not removed")
		}
	}()
	if err := s.put(ctx, path, name, ext); err != nil {
		return "", err
	}
	return s.objectBase + "/" + name, nil
}

func (s *Service) fileName(ext string) string {
	return fmt.Sprintf("product_%d_%s%s", s.now().UnixMilli(), s.newID(), ext)
}

func (s *Service) stage(fh *multipart.FileHeader, path string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create staged file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return fmt.Errorf("write staged file: %w", err)
	}
	return dst.Close()
}

func (s *Service) put(ctx context.Context, path, key, ext string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reopen staged file: %w", err)
	}
	defer f.Close()

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := s.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	}); err != nil {
		return fmt.Errorf("%w: %w", ErrObjectHost, err)
	}
	s.log.WithFields(logrus.Fields{"bucket": s.bucket, "key": key}).Info("image uploaded")
	return nil
}
