package repository

import (
	"bytes"
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/goliatone/go-errors"
	auth "github.com/goliatone/go-user-auth"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ObjectAPI is the subset of the S3 client the store needs
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds the settings for an S3 compatible backend (AWS, MinIO)
type S3Config struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// NewS3Client builds a client from static credentials. A custom endpoint
// switches to path style addressing.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Store keeps the collection as a single object in a bucket
type S3Store struct {
	client ObjectAPI
	bucket string
	key    string
	logger auth.Logger
}

var _ auth.DocumentStore = (*S3Store)(nil)

func NewS3Store(client ObjectAPI, bucket, key string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		key:    key,
		logger: nopLogger{},
	}
}

func (s *S3Store) WithLogger(logger auth.Logger) *S3Store {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *S3Store) Load(ctx context.Context) auth.Collection {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			s.logger.Info("user collection object not found, starting empty", "bucket", s.bucket, "key", s.key)
		} else {
			s.logger.Error("failed to fetch user collection, starting empty", "bucket", s.bucket, "key", s.key, "error", err)
		}
		return auth.NewCollection()
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		s.logger.Error("failed to read user collection, starting empty", "bucket", s.bucket, "key", s.key, "error", err)
		return auth.NewCollection()
	}

	return decodeCollection(data, s.logger, "s3://"+s.bucket+"/"+s.key)
}

func (s *S3Store) Save(ctx context.Context, c auth.Collection) error {
	data, err := encodeCollection(c)
	if err != nil {
		return s.wrap(err, "failed to encode user collection")
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return s.wrap(err, "failed to upload user collection")
	}

	return nil
}

func (s *S3Store) wrap(err error, msg string) error {
	return errors.Wrap(err, errors.CategoryInternal, msg).
		WithTextCode(auth.TextCodeStorage).
		WithMetadata(map[string]any{"bucket": s.bucket, "key": s.key})
}
