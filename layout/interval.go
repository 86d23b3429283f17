package layout

// Interval is a range of Length rows starting at row Start.
type Interval struct {
	Start  int
	Length int
}

func (i Interval) End() int {
	return i.Start + i.Length
}

// SelectionLen returns the number of rows selected by sel.
func SelectionLen(sel []Interval) int {
	n := 0
	for _, i := range sel {
		n += i.Length
	}

	return n
}

// SliceSelection restricts sel to the rows [first, first+n) and rebases the
// result on first. The result is never nil, so a window without any selected
// row reads as an empty selection.
func SliceSelection(sel []Interval, first, n int) []Interval {
	out := make([]Interval, 0, len(sel))
	last := first + n

	for _, i := range sel {
		start, end := i.Start, i.End()
		if end <= first || i.Length <= 0 {
			continue
		}

		if start >= last {
			break
		}

		if start < first {
			start = first
		}

		if end > last {
			end = last
		}

		out = append(out, Interval{Start: start - first, Length: end - start})
	}

	return out
}
