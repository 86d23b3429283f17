package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/client"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/hexbee-net/errors"
)

const (
	rangeHeader = "bytes=%d-%d"

	errInvalidOffset = errors.Error("invalid offset")
)

// Reader reads an S3 object with ranged GET requests.
type Reader struct {
	ctx    context.Context
	client s3iface.S3API

	bucket string
	key    string
	size   int64
}

// NewReader creates an S3 Reader.
func NewReader(ctx context.Context, bucket, key string, configProvider client.ConfigProvider, configs ...*aws.Config) (*Reader, error) {
	return NewReaderWithClient(ctx, s3.New(configProvider, configs...), bucket, key)
}

// NewReaderWithClient is the same as NewReader but allows passing your own S3 client.
func NewReaderWithClient(ctx context.Context, s3Client s3iface.S3API, bucket, key string) (*Reader, error) {
	head, err := s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to fetch file description"),
			errors.Fields{
				"bucket": bucket,
				"key":    key,
			})
	}

	return &Reader{
		ctx:    ctx,
		client: s3Client,
		bucket: bucket,
		key:    key,
		size:   aws.Int64Value(head.ContentLength),
	}, nil
}

func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, errors.WithFields(
			errors.WithStack(errInvalidOffset),
			errors.Fields{
				"offset": off,
			})
	}

	if off >= r.size {
		return 0, io.EOF
	}

	if len(p) == 0 {
		return 0, nil
	}

	end := min(off+int64(len(p)), r.size)

	out, err := r.client.GetObjectWithContext(r.ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.key),
		Range:  aws.String(fmt.Sprintf(rangeHeader, off, end-1)),
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to get object range")
	}

	defer func() { _ = out.Body.Close() }()

	n, err := io.ReadFull(out.Body, p[:end-off])
	if err != nil {
		return n, errors.Wrap(err, "failed to read object range")
	}

	if n < len(p) {
		return n, io.EOF
	}

	return n, nil
}

func (r *Reader) Size() int64 {
	return r.size
}

func (r *Reader) Close() error {
	return nil
}
