package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/hupe1980/qsql/source"
)

// Client is the subset of the S3 API the store uses.
type Client interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ source.Store = (*Store)(nil)

// Store implements source.Store for one S3 bucket.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	uploader *manager.Uploader
}

// Option configures a Store.
type Option func(*Store)

// WithPrefix prepends prefix to every object key.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithPartSize sets the multipart upload part size in bytes.
func WithPartSize(n int64) Option {
	return func(s *Store) {
		s.uploader.PartSize = n
	}
}

// NewStore creates a store for bucket using client.
func NewStore(client Client, bucket string, optFns ...Option) *Store {
	s := &Store{
		client:   client,
		bucket:   bucket,
		uploader: manager.NewUploader(client),
	}
	for _, fn := range optFns {
		fn(s)
	}
	return s
}

// NewFromConfig creates a store using the default AWS credential chain
// and region resolution.
func NewFromConfig(ctx context.Context, bucket string, optFns ...Option) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return NewStore(s3.NewFromConfig(cfg), bucket, optFns...), nil
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Open streams an object. Missing keys map to source.ErrNotFound.
func (s *Store) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, source.ErrNotFound
		}
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return nil, source.ErrNotFound
		}
		return nil, err
	}
	return out.Body, nil
}

// Put uploads data as one object.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	_, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
		Body:   bytes.NewReader(data),
	})
	return err
}
