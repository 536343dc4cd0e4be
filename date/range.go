package date

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// NewRange returns the range [from, to].
func NewRange(from, to Date) Range { return Range{From: from, To: to} }

// YearRange returns the range covering the full calendar year y.
func YearRange(y int) Range {
	return Range{From: New(y, 1, 1), To: New(y, 12, 31)}
}

// LastDays returns the range covering the n most recent days, today included.
func LastDays(n int) Range {
	today := Today()
	return Range{From: today.Add(-n + 1), To: today}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }

// Days returns the number of days in the range, boundaries included.
func (r Range) Days() int {
	n := 0
	for d := r.From; !d.After(r.To); d = d.Add(1) {
		n++
	}
	return n
}

func (r Range) String() string { return r.From.String() + ".." + r.To.String() }

// Windows splits the range into consecutive sub-ranges of at most size days.
// The union of the windows covers every day of r exactly once: no gaps, no
// overlaps. The last window may be shorter.
func (r Range) Windows(size int) []Range {
	if size < 1 || r.To.Before(r.From) {
		return nil
	}
	var windows []Range
	for from := r.From; !from.After(r.To); from = from.Add(size) {
		to := from.Add(size - 1)
		if to.After(r.To) {
			to = r.To
		}
		windows = append(windows, Range{From: from, To: to})
	}
	return windows
}
