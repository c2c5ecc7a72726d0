package object

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pkg/errors"

	"github.com/youwenshao/staffroom/core"
)

type s3Store struct {
	client   *s3.Client
	bucket   string
	endpoint string
}

var _ Store = (*s3Store)(nil)

// NewS3Store builds a Store over an S3-compatible endpoint (AWS or MinIO).
// Returns nil when storage is not configured; the Uploader then embeds
// diagrams inline.
func NewS3Store(ctx context.Context, conf *core.Config) (Store, error) {
	if !conf.Storage.Enabled() {
		return nil, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(conf.Storage.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			conf.Storage.AccessKey,
			conf.Storage.SecretKey,
			"",
		)))
	if err != nil {
		return nil, errors.Wrap(err, "loading storage config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(conf.Storage.Endpoint)
		o.UsePathStyle = true
	})

	return &s3Store{
		client:   client,
		bucket:   conf.Storage.Bucket,
		endpoint: strings.TrimRight(conf.Storage.Endpoint, "/"),
	}, nil
}

func (s *s3Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", errors.Wrap(err, "putting object")
	}
	return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key), nil
}
