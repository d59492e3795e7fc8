package traffic

// DayMap maps calendar day keys to metrics and iterates in first-insertion order.
// Set on an existing key replaces the value in place.
type DayMap struct {
	index  map[string]int
	keys   []string
	values []DailyMetric
}

// NewDayMap creates an empty DayMap
func NewDayMap() *DayMap {
	return &DayMap{
		index: make(map[string]int),
	}
}

// Set stores the metric for the day, overwriting any previous value
func (m *DayMap) Set(day string, metric DailyMetric) {
	pos, found := m.index[day]
	if found {
		m.values[pos] = metric
		return
	}

	m.index[day] = len(m.keys)
	m.keys = append(m.keys, day)
	m.values = append(m.values, metric)
}

// Get returns the metric stored for the day
func (m *DayMap) Get(day string) (DailyMetric, bool) {
	pos, found := m.index[day]
	if !found {
		return DailyMetric{}, false
	}

	return m.values[pos], true
}

// Len returns the number of distinct days
func (m *DayMap) Len() int {
	return len(m.keys)
}

// Range calls fn for every entry in insertion order until fn returns false
func (m *DayMap) Range(fn func(day string, metric DailyMetric) bool) {
	for i, key := range m.keys {
		if !fn(key, m.values[i]) {
			return
		}
	}
}

// Sum adds up counts and uniques over all stored days
func (m *DayMap) Sum() DailyMetric {
	var sum DailyMetric
	for _, v := range m.values {
		sum.Count += v.Count
		sum.Uniques += v.Uniques
	}

	return sum
}

// Span returns the earliest and latest parseable days. Keys that are not YYYY-MM-DD are skipped.
func (m *DayMap) Span() (Day, Day, bool) {
	var first, last Day
	found := false
	for _, key := range m.keys {
		d, err := ParseDay(key)
		if err != nil {
			continue
		}
		if !found || d < first {
			first = d
		}
		if !found || d > last {
			last = d
		}
		found = true
	}

	return first, last, found
}
