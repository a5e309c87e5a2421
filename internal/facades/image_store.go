package facades

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-leaf-classifier/internal/logger"
)

// DefaultExtension is used when the caller does not supply one.
const DefaultExtension = ".jpg"

// ErrForeignReference is returned when a reference does not point into the configured bucket.
var ErrForeignReference = errors.New("reference does not belong to the image bucket")

// S3Client is the subset of *s3.Client used by the image store.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Presigner is the subset of *s3.PresignClient used by the image store.
type S3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Config holds connection settings for the image bucket.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string // S3 compatible endpoint such as MinIO, empty for AWS
	AccessKeyID     string // optional, falls back to the default credential chain
	SecretAccessKey string
}

// NewS3Client builds an S3 client from cfg. A custom endpoint switches to path-style addressing.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// ImageStoreS3Facade stores classified images in an S3 bucket.
type ImageStoreS3Facade struct {
	client    S3Client
	presigner S3Presigner
	bucket    string
	region    string
	endpoint  string
	newID     func() string
}

// ImageStoreOpt configures an ImageStoreS3Facade.
type ImageStoreOpt func(*ImageStoreS3Facade)

// WithPresigner enables PresignGet.
func WithPresigner(p S3Presigner) ImageStoreOpt {
	return func(f *ImageStoreS3Facade) {
		f.presigner = p
	}
}

// WithObjectIDGenerator overrides the object name generator.
func WithObjectIDGenerator(gen func() string) ImageStoreOpt {
	return func(f *ImageStoreS3Facade) {
		f.newID = gen
	}
}

// NewImageStoreS3Facade creates a facade over client for the bucket in cfg.
func NewImageStoreS3Facade(client S3Client, cfg S3Config, opts ...ImageStoreOpt) *ImageStoreS3Facade {
	f := &ImageStoreS3Facade{
		client:   client,
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		newID:    NewObjectID,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Store uploads data under <class>/<id><ext> and returns the object's URL.
func (f *ImageStoreS3Facade) Store(ctx context.Context, data []byte, predictedClass, extension, contentType string) (string, error) {
	key := ObjectKey(predictedClass, f.newID(), extension)

	input := &s3.PutObjectInput{
		Bucket:        aws.String(f.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := f.client.PutObject(ctx, input); err != nil {
		logger.Log.Errorw("failed to upload image", "bucket", f.bucket, "key", key, "error", err)
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	ref := f.Reference(key)
	logger.Log.Infow("image stored", "key", key, "size", len(data), "reference", ref)
	return ref, nil
}

// Fetch downloads the object stored under key.
func (f *ImageStoreS3Facade) Fetch(ctx context.Context, key string) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		logger.Log.Errorw("failed to download image", "bucket", f.bucket, "key", key, "error", err)
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// PresignGet returns a time-limited GET URL for the object behind reference.
func (f *ImageStoreS3Facade) PresignGet(ctx context.Context, reference string, ttl time.Duration) (string, error) {
	if f.presigner == nil {
		return "", errors.New("presigning is not configured")
	}

	key, err := f.KeyFromReference(reference)
	if err != nil {
		return "", err
	}

	req, err := f.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		logger.Log.Errorw("failed to presign image url", "key", key, "error", err)
		return "", fmt.Errorf("presign %s: %w", key, err)
	}

	return req.URL, nil
}

// Reference returns the stable locator for key.
func (f *ImageStoreS3Facade) Reference(key string) string {
	return f.baseURL() + key
}

// KeyFromReference is the inverse of Reference.
func (f *ImageStoreS3Facade) KeyFromReference(reference string) (string, error) {
	key, ok := strings.CutPrefix(reference, f.baseURL())
	if !ok || key == "" {
		return "", fmt.Errorf("%w: %s", ErrForeignReference, reference)
	}
	return key, nil
}

func (f *ImageStoreS3Facade) baseURL() string {
	if f.endpoint != "" {
		return fmt.Sprintf("%s/%s/", f.endpoint, f.bucket)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", f.bucket, f.region)
}

// SanitizeClassName turns a label into a safe single path segment.
func SanitizeClassName(name string) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
	if safe == "" {
		return "unknown"
	}
	return safe
}

// NormalizeExtension lowercases ext and makes sure it starts with a dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return DefaultExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ObjectKey composes <safe_class>/<id><ext>.
func ObjectKey(predictedClass, id, extension string) string {
	return SanitizeClassName(predictedClass) + "/" + id + NormalizeExtension(extension)
}

// NewObjectID returns 128 random bits, hex encoded.
func NewObjectID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
