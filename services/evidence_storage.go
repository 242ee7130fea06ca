package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/NomadCrew/crewtrip-backend/config"
	apperrors "github.com/NomadCrew/crewtrip-backend/errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const sniffLen = 512

var allowedEvidenceTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/heic":      ".heic",
	"image/heif":      ".heif",
	"image/webp":      ".webp",
}

// EvidenceStorage keeps down-payment receipts.
type EvidenceStorage interface {
	// Upload validates content and stores it, returning the object key.
	Upload(ctx context.Context, tripID, userID int64, body io.Reader) (string, error)
	PresignURL(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

type s3ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3EvidenceStorage stores evidence in an S3-compatible bucket (AWS or R2).
type S3EvidenceStorage struct {
	client     s3ObjectAPI
	presigner  s3PresignAPI
	bucketName string
	presignTTL time.Duration
	maxBytes   int64
}

var _ EvidenceStorage = (*S3EvidenceStorage)(nil)

// NewS3EvidenceStorage builds a client from the default AWS chain. Static
// keys take precedence when set. A custom endpoint switches to path-style
// addressing for R2 and MinIO.
func NewS3EvidenceStorage(ctx context.Context, cfg config.StorageConfig) (*S3EvidenceStorage, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage credentials: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := time.Duration(cfg.PresignTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	maxMB := cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = 10
	}
	return &S3EvidenceStorage{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		bucketName: cfg.Bucket,
		presignTTL: ttl,
		maxBytes:   int64(maxMB) * 1024 * 1024,
	}, nil
}

// EvidenceKey lays objects out per trip and member.
func EvidenceKey(tripID, userID int64, ext string) string {
	return fmt.Sprintf("evidence/%d/%d/%s%s", tripID, userID, uuid.NewString(), ext)
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty storage key")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return fmt.Errorf("path traversal detected in storage key")
		}
	}
	return nil
}

// Upload sniffs the content type instead of trusting the client, and reads
// the body into memory bounded by the configured limit.
func (s *S3EvidenceStorage) Upload(ctx context.Context, tripID, userID int64, body io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read evidence: %w", err)
	}
	if len(data) == 0 {
		return "", apperrors.ValidationFailed("empty_file", "evidence file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", apperrors.ValidationFailed("file_too_large",
			fmt.Sprintf("evidence exceeds maximum of %d bytes", s.maxBytes))
	}

	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	detected := mimetype.Detect(head)
	ext, ok := allowedEvidenceTypes[detected.String()]
	if !ok {
		return "", apperrors.ValidationFailed("invalid_mime_type",
			fmt.Sprintf("MIME type %s is not allowed. Allowed: pdf, jpeg, png, heic, webp", detected.String()))
	}

	key := EvidenceKey(tripID, userID, ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(detected.String()),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object failed: %w", err)
	}
	return key, nil
}

func (s *S3EvidenceStorage) PresignURL(ctx context.Context, key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	disposition := fmt.Sprintf("inline; filename=\"%s\"", path.Base(key))
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucketName),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(disposition),
	}, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("s3 presign failed: %w", err)
	}
	return req.URL, nil
}

func (s *S3EvidenceStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object failed: %w", err)
	}
	return nil
}
