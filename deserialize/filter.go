package deserialize

import (
	"github.com/hexbee-net/dictcol/layout"
	"github.com/hexbee-net/errors"
)

// rowFilter walks the selected intervals of a page.
type rowFilter struct {
	intervals []layout.Interval
	pos       int
	left      int
}

func newRowFilter(sel []layout.Interval, numRows int) (*rowFilter, error) {
	end := 0
	for _, i := range sel {
		if i.Start < end || i.Length < 0 {
			return nil, errors.WithFields(
				errors.WithStack(errInvalidSelection),
				errors.Fields{
					"start":  i.Start,
					"length": i.Length,
				})
		}

		end = i.End()
	}

	intervals := layout.SliceSelection(sel, 0, numRows)

	return &rowFilter{
		intervals: intervals,
		left:      layout.SelectionLen(intervals),
	}, nil
}

// next returns the number of rows to skip, then to take, to read at most
// max selected rows of the current interval.
func (f *rowFilter) next(max int) (skip, take int) {
	if len(f.intervals) == 0 || max <= 0 {
		return 0, 0
	}

	i := f.intervals[0]
	if f.pos < i.Start {
		skip = i.Start - f.pos
		f.pos = i.Start
	}

	take = i.End() - f.pos
	if take > max {
		take = max
	}

	f.pos += take
	f.left -= take

	if f.pos == i.End() {
		f.intervals = f.intervals[1:]
	}

	return skip, take
}
