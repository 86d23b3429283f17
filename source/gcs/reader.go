package gcs

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/hexbee-net/errors"
)

const (
	errInstantiate   = errors.Error("failed to instantiate GCS client")
	errInvalidOffset = errors.Error("invalid offset")
)

// Reader reads a GCS object with range requests.
type Reader struct {
	ctx    context.Context
	object *storage.ObjectHandle
	size   int64

	// client is closed with the reader when the reader created it.
	client *storage.Client
}

// NewReader creates a GCS Reader with a client configured from the environment.
func NewReader(ctx context.Context, bucket, name string) (*Reader, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrap(errInstantiate, err.Error())
	}

	r, err := NewReaderWithClient(ctx, client, bucket, name)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	r.client = client

	return r, nil
}

// NewReaderWithClient is the same as NewReader but allows passing your own GCS client.
func NewReaderWithClient(ctx context.Context, client *storage.Client, bucket, name string) (*Reader, error) {
	object := client.Bucket(bucket).Object(name)

	attrs, err := object.Attrs(ctx)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to get object attributes"),
			errors.Fields{
				"bucket": bucket,
				"name":   name,
			})
	}

	return &Reader{
		ctx:    ctx,
		object: object,
		size:   attrs.Size,
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

	length := min(int64(len(p)), r.size-off)

	rr, err := r.object.NewRangeReader(r.ctx, off, length)
	if err != nil {
		return 0, errors.Wrap(err, "failed to open object range")
	}

	defer func() { _ = rr.Close() }()

	n, err := io.ReadFull(rr, p[:length])
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
	if r.client == nil {
		return nil
	}

	err := r.client.Close()
	r.client = nil

	if err != nil {
		return errors.Wrap(err, "failed to close GCS client")
	}

	return nil
}
