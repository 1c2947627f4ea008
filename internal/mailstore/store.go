// Package mailstore fetches raw mail bodies from the incoming-mail bucket.
package mailstore

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API defines the interface for S3 operations.
type S3API interface {
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store reads stored messages from S3. SES receipt rules write each inbound
// message as one object whose key is the SES message id.
type Store struct {
	api S3API
}

// NewStore creates a new Store.
func NewStore(api S3API) *Store {
	return &Store{api: api}
}

// Fetch returns the raw bytes of a stored message.
func (s *Store) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	output, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("reading s3://%s/%s: %w", bucket, key, err)
	}
	return data, nil
}
