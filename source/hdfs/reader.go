package hdfs

import (
	"github.com/colinmarc/hdfs/v2"
	"github.com/hexbee-net/errors"
)

// Reader reads a file stored on HDFS.
type Reader struct {
	file *hdfs.FileReader

	// client is closed with the reader when the reader created it.
	client *hdfs.Client
}

// NewReader connects to the namenodes at hosts as user and opens the file at path.
func NewReader(hosts []string, user string, path string) (*Reader, error) {
	client, err := hdfs.NewClient(hdfs.ClientOptions{
		Addresses: hosts,
		User:      user,
	})
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to create HDFS client"),
			errors.Fields{
				"hosts": hosts,
			})
	}

	r, err := NewReaderWithClient(client, path)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	r.client = client

	return r, nil
}

// NewReaderWithClient is the same as NewReader but allows passing your own HDFS client.
func NewReaderWithClient(client *hdfs.Client, path string) (*Reader, error) {
	f, err := client.Open(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, "failed to open HDFS file"),
			errors.Fields{
				"path": path,
			})
	}

	return &Reader{file: f}, nil
}

func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	return r.file.ReadAt(p, off)
}

func (r *Reader) Size() int64 {
	return r.file.Stat().Size()
}

func (r *Reader) Close() error {
	if err := r.file.Close(); err != nil {
		return errors.Wrap(err, "failed to close HDFS file")
	}

	if r.client == nil {
		return nil
	}

	err := r.client.Close()
	r.client = nil

	if err != nil {
		return errors.Wrap(err, "failed to close HDFS client")
	}

	return nil
}
