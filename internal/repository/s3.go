package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options configures an S3PhotoRepository
type S3Options struct {
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
	Endpoint  string
}

// S3PhotoRepository stores photos as objects under a key prefix in an
// S3-compatible bucket (AWS, MinIO, Beget).
type S3PhotoRepository struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3PhotoRepository creates a new S3 photo repository
func NewS3PhotoRepository(ctx context.Context, opts S3Options) (*S3PhotoRepository, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3PhotoRepository(client, opts.Bucket, opts.Prefix), nil
}

func newS3PhotoRepository(client *s3.Client, bucket, prefix string) *S3PhotoRepository {
	prefix = strings.Trim(prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &S3PhotoRepository{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (r *S3PhotoRepository) key(name string) string {
	return r.prefix + name
}

// Save uploads a photo object. The body is buffered so the request carries
// an exact content length.
func (r *S3PhotoRepository) Save(ctx context.Context, name string, src io.Reader) (int64, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return 0, fmt.Errorf("failed to read photo body: %w", err)
	}

	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(r.key(name)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(ContentType(name)),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to put photo object: %w", err)
	}

	return int64(len(data)), nil
}

// List returns the names of all objects directly under the prefix
func (r *S3PhotoRepository) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(r.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(r.bucket),
		Prefix:    aws.String(r.prefix),
		Delimiter: aws.String("/"),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list photo objects: %w", err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), r.prefix)
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			names = append(names, name)
		}
	}

	return names, nil
}

// Open fetches a photo object
func (r *S3PhotoRepository) Open(ctx context.Context, name string) (*PhotoObject, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		var notFound *types.NotFound
		if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get photo object: %w", err)
	}

	var modTime time.Time
	if out.LastModified != nil {
		modTime = *out.LastModified
	}

	return &PhotoObject{
		Name:    name,
		Body:    out.Body,
		Size:    aws.ToInt64(out.ContentLength),
		ModTime: modTime,
	}, nil
}

// Delete removes a photo object
func (r *S3PhotoRepository) Delete(ctx context.Context, name string) error {
	_, err := r.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo object: %w", err)
	}
	return nil
}
