package deserialize

import (
	"io"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/hexbee-net/dictcol/layout"
	"github.com/hexbee-net/errors"
)

// PageIterator returns the pages of a column chunk, then io.EOF.
type PageIterator interface {
	Next() (layout.Page, error)
}

// DictReader decodes the values of a dictionary page.
type DictReader interface {
	ReadDict(page *layout.DictPage) (arrow.Array, error)
}

// Outcome is the result of a call to Driver.Poll.
type Outcome int

const (
	// OutcomeNeedMore means a page was consumed without filling a chunk.
	OutcomeNeedMore Outcome = iota
	// OutcomeProduced means a chunk is returned.
	OutcomeProduced
	// OutcomeDone means every page has been read and every chunk returned.
	OutcomeDone
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNeedMore:
		return "need-more"
	case OutcomeProduced:
		return "produced"
	case OutcomeDone:
		return "done"
	default:
		return "unknown"
	}
}

// Driver assembles the data pages of a column into dictionary-encoded arrays
// of a fixed number of rows. Only the last array may be shorter.
//
// A Driver is not safe for concurrent use.
type Driver[K Key] struct {
	pages      PageIterator
	dictReader DictReader

	dict  arrow.Array
	queue []*decodedChunk[K]

	chunkSize int
	remaining int

	pageCount int
	eof       bool
}

// NewDriver returns a driver emitting arrays of chunkSize rows, reading at
// most limit rows. A chunkSize or limit lower or equal to zero is unbounded.
func NewDriver[K Key](pages PageIterator, dictReader DictReader, chunkSize, limit int) *Driver[K] {
	if chunkSize <= 0 {
		chunkSize = math.MaxInt
	}

	if limit <= 0 {
		limit = math.MaxInt
	}

	return &Driver[K]{
		pages:      pages,
		dictReader: dictReader,
		chunkSize:  chunkSize,
		remaining:  limit,
	}
}

// Poll advances the driver by at most one data page. With OutcomeProduced,
// the returned array is owned by the caller, who must release it. After an
// error, the driver must not be polled again.
func (d *Driver[K]) Poll() (Outcome, *array.Dictionary, error) {
	if len(d.queue) > 1 {
		return d.emit()
	}

	for {
		if d.eof || d.remaining == 0 {
			return d.flush()
		}

		page, err := d.pages.Next()
		if errors.Cause(err) == io.EOF {
			d.eof = true
			continue
		}

		if err != nil {
			return OutcomeDone, nil, errors.WithFields(
				errors.Wrap(err, "failed to read page"),
				errors.Fields{
					"page": d.pageCount,
				})
		}

		d.pageCount++

		switch p := page.(type) {
		case *layout.DictPage:
			if err := d.installDictionary(p); err != nil {
				return OutcomeDone, nil, err
			}

		case *layout.DataPage:
			if err := d.readDataPage(p); err != nil {
				return OutcomeDone, nil, errors.WithFields(err, errors.Fields{
					"page": d.pageCount - 1,
				})
			}

			if d.frontReady() {
				return d.emit()
			}

			return OutcomeNeedMore, nil, nil

		default:
			return OutcomeDone, nil, errors.WithStack(errUnknownPage)
		}
	}
}

// Dictionary returns the current dictionary, or nil before the first
// dictionary page. The driver keeps ownership of it.
func (d *Driver[K]) Dictionary() arrow.Array {
	return d.dict
}

// Close releases the dictionary and drops the buffered rows.
func (d *Driver[K]) Close() {
	for _, c := range d.queue {
		c.release()
	}

	d.queue = nil

	if d.dict != nil {
		d.dict.Release()
		d.dict = nil
	}
}

func (d *Driver[K]) installDictionary(p *layout.DictPage) error {
	dict, err := d.dictReader.ReadDict(p)
	if err != nil {
		return errors.WithFields(
			errors.Wrap(err, "failed to read dictionary page"),
			errors.Fields{
				"page": d.pageCount - 1,
			})
	}

	// buffered chunks keep their own reference on the previous dictionary.
	if d.dict != nil {
		d.dict.Release()
	}

	d.dict = dict

	return nil
}

func (d *Driver[K]) readDataPage(p *layout.DataPage) error {
	if d.dict == nil {
		return errors.WithStack(ErrMissingDictionary)
	}

	state, err := newPageState[K](p)
	if err != nil {
		return err
	}

	return d.extendFromNewPage(state)
}

// extendFromNewPage reads the page into the queue: the last chunk is filled
// first, then new chunks are pushed so none exceeds the chunk size. Rows
// decoded against another dictionary are never mixed in the same chunk.
func (d *Driver[K]) extendFromNewPage(state pageState[K]) error {
	var c *decodedChunk[K]

	if n := len(d.queue); n > 0 && d.queue[n-1].len() < d.chunkSize && (d.queue[n-1].dict == d.dict || d.queue[n-1].len() == 0) {
		c = d.queue[n-1]
		c.bind(d.dict)
	} else {
		c = newDecodedChunk[K](d.dict, min(d.chunkSize, d.remaining, state.len()))
		d.queue = append(d.queue, c)
	}

	for {
		before := c.len()

		if err := state.extend(c, min(d.chunkSize-before, d.remaining)); err != nil {
			return err
		}

		added := c.len() - before
		d.remaining -= added

		if state.len() == 0 || d.remaining == 0 || added == 0 {
			return nil
		}

		c = newDecodedChunk[K](d.dict, min(d.chunkSize, d.remaining, state.len()))
		d.queue = append(d.queue, c)
	}
}

func (d *Driver[K]) frontReady() bool {
	return len(d.queue) > 1 || (len(d.queue) == 1 && d.queue[0].len() >= d.chunkSize)
}

func (d *Driver[K]) emit() (Outcome, *array.Dictionary, error) {
	c := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]

	defer c.release()

	arr, err := c.toArray()
	if err != nil {
		return OutcomeDone, nil, err
	}

	return OutcomeProduced, arr, nil
}

// flush emits the buffered rows once no page is left to read.
func (d *Driver[K]) flush() (Outcome, *array.Dictionary, error) {
	for len(d.queue) > 0 && d.queue[0].len() == 0 {
		d.queue[0].release()
		d.queue = d.queue[1:]
	}

	if len(d.queue) == 0 {
		return OutcomeDone, nil, nil
	}

	return d.emit()
}
