// Package publish uploads finished videos to object storage.
package publish

import (
	"context"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

// Target is a parsed s3://bucket/prefix destination.
type Target struct {
	Bucket string
	Prefix string
}

// ParseTarget accepts "s3://bucket" or "s3://bucket/some/prefix".
func ParseTarget(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, errors.Wrapf(err, "publish target %q", raw)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return Target{}, errors.Errorf("publish target %q is not s3://bucket[/prefix]", raw)
	}
	return Target{Bucket: u.Host, Prefix: strings.Trim(u.Path, "/")}, nil
}

// Key is the object key for a local file.
func (t Target) Key(localPath string) string {
	name := filepath.Base(localPath)
	if t.Prefix == "" {
		return name
	}
	return path.Join(t.Prefix, name)
}

// ObjectPutter is the part of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Publisher struct {
	client ObjectPutter
	target Target
}

// NewS3Publisher builds a client from the default AWS configuration chain
// (environment, shared config, instance role).
func NewS3Publisher(ctx context.Context, target Target, region string) (*S3Publisher, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return &S3Publisher{client: s3.NewFromConfig(awsCfg), target: target}, nil
}

func NewWithClient(client ObjectPutter, target Target) *S3Publisher {
	return &S3Publisher{client: client, target: target}
}

// Publish uploads the file at localPath and returns its s3:// URL.
func (p *S3Publisher) Publish(ctx context.Context, localPath string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer f.Close()

	key := p.target.Key(localPath)
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.target.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType(localPath)),
	})
	if err != nil {
		return "", errors.Wrapf(err, "upload to s3://%s/%s", p.target.Bucket, key)
	}
	return "s3://" + p.target.Bucket + "/" + key, nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".mp4", ".m4v":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}
