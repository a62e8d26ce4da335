package storage

import (
	"context"
	"io"
	"time"

	"family_hub_server/internal/config"
	"family_hub_server/pkg/errorx"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3Client S3 客户端中用到的方法，便于测试替换
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Storage 基于 S3 兼容对象存储的实现
type S3Storage struct {
	client    s3Client
	presigner s3Presigner
	bucket    string
	baseURL   string
}

// NewS3Storage 使用默认凭证链创建 S3 存储，配置了 AccessKeyID 时改用静态凭证
func NewS3Storage(ctx context.Context, cfg *config.StorageConfig) (*S3Storage, error) {
	if cfg.Bucket == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "storageConfig.bucket is required for s3 driver")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeStorageError, "load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3Storage(client, s3.NewPresignClient(client), cfg), nil
}

func newS3Storage(client s3Client, presigner s3Presigner, cfg *config.StorageConfig) *S3Storage {
	return &S3Storage{
		client:    client,
		presigner: presigner,
		bucket:    cfg.Bucket,
		baseURL:   objectBaseURL(cfg),
	}
}

// objectBaseURL 计算对象公开访问地址的前缀
func objectBaseURL(cfg *config.StorageConfig) string {
	switch {
	case cfg.PublicBaseURL != "":
		return cfg.PublicBaseURL
	case cfg.Endpoint != "":
		return joinURL(cfg.Endpoint, cfg.Bucket)
	default:
		return "https://" + cfg.Bucket + ".s3." + cfg.Region + ".amazonaws.com"
	}
}

func (s *S3Storage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", errorx.Wrapf(err, errorx.CodeStorageError, "s3 put %s", key)
	}
	return joinURL(s.baseURL, key), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return errorx.Wrapf(err, errorx.CodeStorageError, "s3 delete %s", key)
	}
	return nil
}

func (s *S3Storage) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", errorx.Wrapf(err, errorx.CodeStorageError, "s3 presign %s", key)
	}
	return req.URL, nil
}

var _ Storage = (*S3Storage)(nil)
