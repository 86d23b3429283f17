package dictcol

import (
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hexbee-net/errors"

	"github.com/hexbee-net/dictcol/deserialize"
	"github.com/hexbee-net/dictcol/layout"
	"github.com/hexbee-net/dictcol/types"
)

const errKeyWidthMismatch = errors.Error("key width does not match the key type")

type options struct {
	logger    log.Logger
	metrics   *Metrics
	mem       memory.Allocator
	selection []layout.Interval
}

// Option configures a ColumnReader.
type Option func(*options)

// WithLogger sets the logger of the reader.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics updated by the reader.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithAllocator sets the allocator of the dictionary arrays built by Open.
func WithAllocator(mem memory.Allocator) Option {
	return func(o *options) {
		o.mem = mem
	}
}

// WithRowSelection restricts the rows read by Open to sel.
func WithRowSelection(sel []layout.Interval) Option {
	return func(o *options) {
		o.selection = sel
	}
}

func newOptions(opts []Option) options {
	o := options{
		logger: log.NewNopLogger(),
		mem:    memory.DefaultAllocator,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.metrics == nil {
		o.metrics = NewMetrics(nil)
	}

	return o
}

// ColumnReader reads a dictionary-encoded column chunk as a sequence of
// dictionary arrays with keys of type K.
type ColumnReader[K deserialize.Key] struct {
	driver  *deserialize.Driver[K]
	logger  log.Logger
	metrics *Metrics

	dict arrow.Array
	done bool
}

// NewColumnReader returns a reader decoding the pages returned by pages.
func NewColumnReader[K deserialize.Key](pages deserialize.PageIterator, dictReader deserialize.DictReader, cfg Config, opts ...Option) (*ColumnReader[K], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if w := KeyWidth[K](); cfg.KeyWidth != 0 && cfg.KeyWidth != w {
		return nil, errors.WithFields(
			errors.WithStack(errKeyWidthMismatch),
			errors.Fields{
				"key_width": cfg.KeyWidth,
				"key_type":  w,
			})
	}

	o := newOptions(opts)
	it := &instrumentedPages{
		inner:   pages,
		logger:  o.logger,
		metrics: o.metrics,
	}

	return &ColumnReader[K]{
		driver:  deserialize.NewDriver[K](it, dictReader, cfg.ChunkSize, cfg.Limit),
		logger:  o.logger,
		metrics: o.metrics,
	}, nil
}

// Open returns a reader for the column chunk stored in r and described by desc.
func Open[K deserialize.Key](r io.Reader, desc layout.ColumnDescriptor, cfg Config, opts ...Option) (*ColumnReader[K], error) {
	o := newOptions(opts)

	var pageOpts []layout.PageReaderOption
	if o.selection != nil {
		pageOpts = append(pageOpts, layout.WithRowSelection(o.selection))
	}

	pages, err := layout.NewPageReader(r, desc, pageOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create page reader")
	}

	dictReader, err := types.NewDictReader(desc, o.mem)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create dictionary reader")
	}

	return NewColumnReader[K](pages, dictReader, cfg, opts...)
}

// KeyWidth returns the width in bits of the key type K.
func KeyWidth[K deserialize.Key]() int {
	return deserialize.KeyType[K]().(arrow.FixedWidthDataType).BitWidth()
}

// Next returns the next array of the column chunk, or io.EOF once every row
// has been returned. The caller must release the array.
func (r *ColumnReader[K]) Next() (*array.Dictionary, error) {
	if r.done {
		return nil, io.EOF
	}

	for {
		outcome, arr, err := r.driver.Poll()
		if err != nil {
			r.done = true
			r.metrics.decodeErrors.WithLabelValues(errorReason(err)).Inc()
			level.Warn(r.logger).Log("msg", "failed to decode column chunk", "err", err)

			return nil, err
		}

		switch outcome {
		case deserialize.OutcomeProduced:
			r.trackDictionary()
			r.metrics.chunks.Inc()
			r.metrics.rows.Add(float64(arr.Len()))
			level.Debug(r.logger).Log("msg", "array decoded", "rows", arr.Len(), "nulls", arr.NullN())

			return arr, nil

		case deserialize.OutcomeDone:
			r.done = true
			return nil, io.EOF
		}
	}
}

func (r *ColumnReader[K]) trackDictionary() {
	dict := r.driver.Dictionary()
	if dict == r.dict {
		return
	}

	r.dict = dict
	level.Debug(r.logger).Log("msg", "dictionary installed", "values", dict.Len(), "type", dict.DataType())
}

// Close releases the resources held by the reader. Arrays already returned
// remain valid.
func (r *ColumnReader[K]) Close() {
	r.done = true
	r.dict = nil
	r.driver.Close()
}

// instrumentedPages counts and logs the pages handed to the driver.
type instrumentedPages struct {
	inner   deserialize.PageIterator
	logger  log.Logger
	metrics *Metrics
}

func (p *instrumentedPages) Next() (layout.Page, error) {
	page, err := p.inner.Next()
	if err != nil {
		return nil, err
	}

	switch pg := page.(type) {
	case *layout.DictPage:
		p.metrics.pages.WithLabelValues("dictionary").Inc()
		level.Debug(p.logger).Log("msg", "dictionary page", "values", pg.NumValues, "encoding", pg.Encoding)

	case *layout.DataPage:
		p.metrics.pages.WithLabelValues("data").Inc()
		level.Debug(p.logger).Log("msg", "data page", "values", pg.NumValues, "rows", pg.NumRows, "encoding", pg.Encoding)
	}

	return page, nil
}
