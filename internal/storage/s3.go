package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Verifier checks that a data product location actually exists in the
// object store before the workflow registers it with the catalog.
type Verifier interface {
	VerifyLocation(ctx context.Context, location string) error
}

// S3Verifier verifies locations against an S3-compatible object store.
type S3Verifier struct {
	logger zerolog.Logger
	client *s3.Client
}

// NewS3Verifier creates a verifier for the given endpoint. Credentials are
// static; path-style addressing is used so non-AWS endpoints work.
func NewS3Verifier(logger zerolog.Logger, endpoint, accessKey, secretKey string) *S3Verifier {
	client := s3.New(s3.Options{
		BaseEndpoint: aws.String(endpoint),
		Region:       "us-east-1",
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})
	return &S3Verifier{
		logger: logger.With().Str("component", "s3-verifier").Logger(),
		client: client,
	}
}

// VerifyLocation checks that the location's bucket exists and, when the
// location carries a prefix, that at least one object lives under it.
// Location format is "bucket" or "bucket/prefix".
func (v *S3Verifier) VerifyLocation(ctx context.Context, location string) error {
	bucket, prefix := splitLocation(location)
	if bucket == "" {
		return fmt.Errorf("invalid location %q", location)
	}

	_, err := v.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", bucket, err)
	}

	if prefix == "" {
		return nil
	}

	out, err := v.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("list objects under %s/%s: %w", bucket, prefix, err)
	}
	if out.KeyCount == nil || *out.KeyCount == 0 {
		return fmt.Errorf("location %s has no objects", location)
	}

	v.logger.Debug().Str("location", location).Msg("verified data product location")
	return nil
}

func splitLocation(location string) (bucket, prefix string) {
	location = strings.TrimPrefix(location, "s3://")
	bucket, prefix, _ = strings.Cut(location, "/")
	return bucket, strings.TrimSuffix(prefix, "/")
}

// NoopVerifier accepts every location. Used when no object store endpoint
// is configured.
type NoopVerifier struct{}

func (NoopVerifier) VerifyLocation(ctx context.Context, location string) error {
	return nil
}
