package traffic

import "fmt"

// BuildSeries returns the gap-filled views and clones series of the history between startDate and
// endDate, both inclusive YYYY-MM-DD strings. An empty bound defaults to the earliest or latest
// day observed in the history.
func BuildSeries(history *RepositoryHistory, startDate string, endDate string) (Series, error) {
	return ReconcileHistory(history).Series(startDate, endDate)
}

// Series builds the gap-filled series over the resolved range. Days without data are emitted
// with zero count and uniques.
func (r *Reconciled) Series(startDate string, endDate string) (Series, error) {
	return r.LimitedSeries(startDate, endDate, 0)
}

// LimitedSeries is Series with the resolved range capped to maxDays days. A wider range is an
// ErrInvalidRange. A maxDays of 0 leaves the range unbounded.
func (r *Reconciled) LimitedSeries(startDate string, endDate string, maxDays int) (Series, error) {
	start, end, hasRange, err := r.resolveRange(startDate, endDate)
	if err != nil {
		return Series{}, err
	}
	if hasRange && maxDays > 0 && DaysInclusive(start, end) > maxDays {
		return Series{}, fmt.Errorf("%w: %s to %s spans %d days, the maximum is %d",
			ErrInvalidRange, start, end, DaysInclusive(start, end), maxDays)
	}

	series := Series{
		Views:  make([]SeriesPoint, 0),
		Clones: make([]SeriesPoint, 0),
	}
	if !hasRange {
		return series, nil
	}

	numDays := DaysInclusive(start, end)
	series.Views = make([]SeriesPoint, 0, numDays)
	series.Clones = make([]SeriesPoint, 0, numDays)
	for day := start; day <= end; day = day.Next() {
		key := day.String()
		series.Views = append(series.Views, pointAt(r.Views, key))
		series.Clones = append(series.Clones, pointAt(r.Clones, key))
	}

	return series, nil
}

func (r *Reconciled) resolveRange(startDate string, endDate string) (Day, Day, bool, error) {
	var start, end Day
	var err error

	if startDate != "" {
		start, err = ParseDay(startDate)
		if err != nil {
			return 0, 0, false, err
		}
	}
	if endDate != "" {
		end, err = ParseDay(endDate)
		if err != nil {
			return 0, 0, false, err
		}
	}

	if startDate == "" || endDate == "" {
		first, last, found := r.observedSpan()
		if !found {
			return 0, 0, false, nil
		}
		if startDate == "" {
			start = first
		}
		if endDate == "" {
			end = last
		}
	}

	if start > end {
		return 0, 0, false, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, start, end)
	}

	return start, end, true, nil
}

// observedSpan merges the spans of views and clones
func (r *Reconciled) observedSpan() (Day, Day, bool) {
	first, last, found := r.Views.Span()
	clonesFirst, clonesLast, clonesFound := r.Clones.Span()
	if !clonesFound {
		return first, last, found
	}
	if !found {
		return clonesFirst, clonesLast, true
	}

	return min(first, clonesFirst), max(last, clonesLast), true
}

func pointAt(days *DayMap, key string) SeriesPoint {
	metric, _ := days.Get(key)

	return SeriesPoint{
		Date:    key,
		Count:   metric.Count,
		Uniques: metric.Uniques,
	}
}
