package deserialize

import (
	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hexbee-net/dictcol/layout"
	"github.com/hexbee-net/errors"
)

// pageState is the decoding state of one data page. Its variants are
// requiredState, optionalState, filteredRequiredState and
// filteredOptionalState.
type pageState[K Key] interface {
	// len returns the number of rows left to read from the page.
	len() int

	// extend appends at most remaining rows to the chunk.
	extend(c *decodedChunk[K], remaining int) error
}

type requiredState[K Key] struct {
	indices *indexStream
	left    int
}

type optionalState[K Key] struct {
	validity *levelStream
	indices  *indexStream
	left     int
}

type filteredRequiredState[K Key] struct {
	indices *indexStream
	filter  *rowFilter
}

type filteredOptionalState[K Key] struct {
	validity *levelStream
	indices  *indexStream
	filter   *rowFilter
}

func (s *requiredState[K]) len() int         { return s.left }
func (s *optionalState[K]) len() int         { return s.left }
func (s *filteredRequiredState[K]) len() int { return s.filter.left }
func (s *filteredOptionalState[K]) len() int { return s.filter.left }

func newPageState[K Key](page *layout.DataPage) (pageState[K], error) {
	if page.Encoding != parquet.Encoding_PLAIN_DICTIONARY && page.Encoding != parquet.Encoding_RLE_DICTIONARY {
		return nil, errors.WithFields(
			errors.WithStack(ErrNotImplemented),
			errors.Fields{
				"encoding": page.Encoding.String(),
			})
	}

	if page.Repetition == parquet.FieldRepetitionType_REPEATED {
		return nil, errors.WithFields(
			errors.WithStack(ErrNotImplemented),
			errors.Fields{
				"repetition": page.Repetition.String(),
			})
	}

	if page.NumValues < 0 {
		return nil, errors.WithFields(
			errors.New("negative number of values"),
			errors.Fields{
				"num-values": page.NumValues,
			})
	}

	indices := newIndexStream(page.Values)

	var (
		validity *levelStream
		filter   *rowFilter
		err      error
	)

	if page.IsOptional() {
		if validity, err = newLevelStream(page.DefinitionLevels); err != nil {
			return nil, err
		}
	}

	if page.IsFiltered() {
		if filter, err = newRowFilter(page.Selection, page.NumValues); err != nil {
			return nil, err
		}
	}

	switch {
	case !page.IsOptional() && !page.IsFiltered():
		return &requiredState[K]{indices: indices, left: page.NumValues}, nil
	case page.IsOptional() && !page.IsFiltered():
		return &optionalState[K]{validity: validity, indices: indices, left: page.NumValues}, nil
	case !page.IsOptional():
		return &filteredRequiredState[K]{indices: indices, filter: filter}, nil
	default:
		return &filteredOptionalState[K]{validity: validity, indices: indices, filter: filter}, nil
	}
}
