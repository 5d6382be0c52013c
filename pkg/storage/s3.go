package storage

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/google/uuid"

	"quantcloud-be/internal/pkg/logger"
)

// S3Config holds configuration for the S3 client
type S3Config struct {
	Bucket    string // bucket name
	Prefix    string // key prefix for all operations
	Region    string // AWS region (default: us-east-1)
	Endpoint  string // custom endpoint for S3-compatible storage (MinIO, etc.)
	AccessKey string // access key (optional, uses IAM roles if empty)
	SecretKey string // secret key (optional, uses IAM roles if empty)
}

// S3Client wraps object storage for model artifacts. It holds credentials,
// so download access for clients goes through presigned URLs instead.
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	config        S3Config
	log           logger.ILogger
}

func NewS3Client(cfg S3Config, log logger.ILogger) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket is required")
	}

	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	// Explicit credentials when provided, default chain (IAM roles) otherwise
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // required for MinIO and most S3-compatible storage
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)
	presignClient := s3.NewPresignClient(client)

	log.Info("storage", "S3 client initialized", map[string]interface{}{
		"bucket":   cfg.Bucket,
		"prefix":   cfg.Prefix,
		"region":   cfg.Region,
		"endpoint": cfg.Endpoint,
	})

	return &S3Client{
		client:        client,
		presignClient: presignClient,
		config:        cfg,
		log:           log,
	}, nil
}

// Bucket returns the configured bucket name.
func (c *S3Client) Bucket() string {
	return c.config.Bucket
}

// BuildModelKey forms the canonical object key for a stored model file.
func BuildModelKey(userId, fileId uuid.UUID, filename string) string {
	return fmt.Sprintf("models/%s/%s/%s", userId, fileId, filename)
}

func (c *S3Client) fullKey(key string) string {
	if c.config.Prefix == "" {
		return key
	}
	return strings.TrimSuffix(c.config.Prefix, "/") + "/" + strings.TrimPrefix(key, "/")
}

// hexToS3Checksum converts a hex SHA-256 digest to the base64 form the S3
// checksum headers use.
func hexToS3Checksum(hexDigest string) (string, error) {
	raw, err := hex.DecodeString(hexDigest)
	if err != nil {
		return "", fmt.Errorf("invalid sha256 digest %q: %w", hexDigest, err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// PresignPut generates a time-limited URL for uploading an object. When a
// checksum is given the upload must carry a matching x-amz-checksum-sha256
// header, so S3 itself rejects content that does not hash to it.
func (c *S3Client) PresignPut(ctx context.Context, key, checksumSHA256 string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = 15 * time.Minute
	}

	fullKey := c.fullKey(key)

	input := &s3.PutObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(fullKey),
	}
	if checksumSHA256 != "" {
		encoded, err := hexToS3Checksum(checksumSHA256)
		if err != nil {
			return "", err
		}
		input.ChecksumAlgorithm = types.ChecksumAlgorithmSha256
		input.ChecksumSHA256 = aws.String(encoded)
	}

	req, err := c.presignClient.PresignPutObject(ctx, input, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned PUT URL: %w", err)
	}

	return req.URL, nil
}

// Put uploads an object directly, stamping its SHA-256 so later HeadObject
// calls can verify the stored content.
func (c *S3Client) Put(ctx context.Context, key string, body []byte) error {
	fullKey := c.fullKey(key)

	sum := sha256.Sum256(body)
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:            aws.String(c.config.Bucket),
		Key:               aws.String(fullKey),
		Body:              bytes.NewReader(body),
		ContentLength:     aws.Int64(int64(len(body))),
		ChecksumAlgorithm: types.ChecksumAlgorithmSha256,
		ChecksumSHA256:    aws.String(base64.StdEncoding.EncodeToString(sum[:])),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	c.log.Info("storage", "Uploaded object", map[string]interface{}{
		"bucket": c.config.Bucket,
		"key":    fullKey,
		"size":   len(body),
	})

	return nil
}

// ChecksumSHA256 returns the hex SHA-256 digest S3 recorded for an object,
// or empty when none was stored. Objects written here always carry one:
// uploads go through a checksum-bound presigned PUT or through Put.
func (c *S3Client) ChecksumSHA256(ctx context.Context, key string) (string, error) {
	fullKey := c.fullKey(key)

	head, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket:       aws.String(c.config.Bucket),
		Key:          aws.String(fullKey),
		ChecksumMode: types.ChecksumModeEnabled,
	})
	if err != nil {
		return "", fmt.Errorf("failed to head object: %w", err)
	}
	if head.ChecksumSHA256 == nil || *head.ChecksumSHA256 == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(*head.ChecksumSHA256)
	if err != nil {
		return "", fmt.Errorf("malformed checksum on object %s: %w", fullKey, err)
	}
	return hex.EncodeToString(raw), nil
}

// PresignGet generates a time-limited URL for downloading an object.
func (c *S3Client) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry == 0 {
		expiry = 15 * time.Minute
	}

	fullKey := c.fullKey(key)

	req, err := c.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(fullKey),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned GET URL: %w", err)
	}

	return req.URL, nil
}

// Delete removes an object.
func (c *S3Client) Delete(ctx context.Context, key string) error {
	fullKey := c.fullKey(key)

	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}

	c.log.Info("storage", "Deleted object", map[string]interface{}{
		"bucket": c.config.Bucket,
		"key":    fullKey,
	})

	return nil
}

// Exists checks whether an object is present.
func (c *S3Client) Exists(ctx context.Context, key string) (bool, error) {
	fullKey := c.fullKey(key)

	_, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object existence: %w", err)
	}

	return true, nil
}

// ObjectSize returns the stored size of an object in bytes.
func (c *S3Client) ObjectSize(ctx context.Context, key string) (int64, error) {
	fullKey := c.fullKey(key)

	head, err := c.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.config.Bucket),
		Key:    aws.String(fullKey),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to head object: %w", err)
	}
	if head.ContentLength == nil {
		return 0, nil
	}
	return *head.ContentLength, nil
}

func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "NotFound") ||
		strings.Contains(errStr, "NoSuchKey") ||
		strings.Contains(errStr, "404")
}
