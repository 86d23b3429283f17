package azblob

import (
	"context"
	"io"
	"net/url"

	"github.com/Azure/azure-pipeline-go/pipeline"
	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/hexbee-net/errors"
)

const errInvalidOffset = errors.Error("invalid offset")

// ReaderOptions configures the pipeline of a Reader.
type ReaderOptions struct {
	// HTTPSender configures the sender of HTTP requests
	HTTPSender pipeline.Factory
	// Retry configures the built-in retry policy behavior.
	RetryOptions azblob.RetryOptions
	// Log configures the pipeline's logging infrastructure indicating what information is logged and where.
	Log pipeline.LogOptions
}

// Reader reads an Azure block blob with ranged downloads.
type Reader struct {
	ctx  context.Context
	blob azblob.BlockBlobURL
	size int64
}

// NewReader creates an Azure Blob Reader for the blob at rawURL.
func NewReader(ctx context.Context, rawURL string, credential azblob.Credential, options ReaderOptions) (*Reader, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse URL")
	}

	blob := azblob.NewBlockBlobURL(*u, azblob.NewPipeline(credential, azblob.PipelineOptions{
		HTTPSender: options.HTTPSender,
		Retry:      options.RetryOptions,
		Log:        options.Log,
	}))

	props, err := blob.GetProperties(ctx, azblob.BlobAccessConditions{})
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to get blob properties"),
			errors.Fields{
				"url": rawURL,
			})
	}

	return &Reader{
		ctx:  ctx,
		blob: blob,
		size: props.ContentLength(),
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

	count := min(int64(len(p)), r.size-off)

	resp, err := r.blob.Download(r.ctx, off, count, azblob.BlobAccessConditions{}, false)
	if err != nil {
		return 0, errors.Wrap(err, "failed to download blob range")
	}

	body := resp.Body(azblob.RetryReaderOptions{})
	defer func() { _ = body.Close() }()

	n, err := io.ReadFull(body, p[:count])
	if err != nil {
		return n, errors.Wrap(err, "failed to read data")
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
