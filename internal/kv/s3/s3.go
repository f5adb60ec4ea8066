// Package s3 stores ledger blobs as S3 objects.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"fatura/internal/kv"
)

type Options struct {
	Bucket string
	Region string
	Prefix string
	// Endpoint overrides the S3 endpoint (MinIO, LocalStack). Enables path-style addressing.
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// ObjectAPI is the subset of the S3 client the store uses.
type ObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Store struct {
	api    ObjectAPI
	bucket string
	prefix string
}

var _ kv.Store = (*Store)(nil)

// New builds an S3 client from the default AWS config chain. Static credentials win
// when both parts are set.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithAPI(client, opts.Bucket, opts.Prefix), nil
}

func NewWithAPI(api ObjectAPI, bucket, prefix string) *Store {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{api: api, bucket: bucket, prefix: prefix}
}

func (s *Store) objectKey(key string) string {
	return s.prefix + key + ".json"
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, kv.ErrNotFound
		}
		return nil, fmt.Errorf("get object %s: %w", s.objectKey(key), err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", s.objectKey(key), err)
	}
	return b, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.objectKey(key)),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", s.objectKey(key), err)
	}
	return nil
}
