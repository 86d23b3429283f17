package layout

import (
	"context"
	"io"

	"github.com/apache/thrift/lib/go/thrift"
)

func readThrift(ctx context.Context, tr thrift.TStruct, r io.Reader) error {
	// Make sure we are not using any kind of buffered reader here.
	// bufio.Reader "can" reads more data ahead of time, which is a problem on this library
	transport := &thrift.StreamTransport{Reader: r}
	proto := thrift.NewTCompactProtocolConf(transport, &thrift.TConfiguration{})

	return tr.Read(ctx, proto)
}

func writeThrift(ctx context.Context, tr thrift.TStruct, w io.Writer) error {
	ts := thrift.NewTSerializer()
	ts.Protocol = thrift.NewTCompactProtocolFactoryConf(&thrift.TConfiguration{}).GetProtocol(ts.Transport)

	buf, err := ts.Write(ctx, tr)
	if err != nil {
		return err
	}

	_, err = w.Write(buf)

	return err
}

// /////////////////////////////////////////////////////////////////////////////

type offsetReader struct {
	inner io.Reader
	count int64
	err   error
}

func (r *offsetReader) Read(p []byte) (int, error) {
	n, err := r.inner.Read(p)
	r.count += int64(n)
	r.err = err

	return n, err
}

func (r *offsetReader) Count() int64 {
	return r.count
}
