package traffic

import "time"

// SchemaVersion is the version stamped on every persisted history
const SchemaVersion = 1

// DailyMetric is a single day's value for views or clones
type DailyMetric struct {
	Count   int64 `json:"count"`
	Uniques int64 `json:"uniques"`
}

// DayMetric is a DailyMetric keyed by its calendar day (YYYY-MM-DD)
type DayMetric struct {
	Date    string `json:"date"`
	Count   int64  `json:"count"`
	Uniques int64  `json:"uniques"`
}

// Metric returns the value part of the entry
func (dm DayMetric) Metric() DailyMetric {
	return DailyMetric{Count: dm.Count, Uniques: dm.Uniques}
}

// Referrer is one entry of the top referring sites list
type Referrer struct {
	Source  string `json:"source"`
	Count   int64  `json:"count"`
	Uniques int64  `json:"uniques"`
}

// Path is one entry of the popular content list
type Path struct {
	Path    string `json:"path"`
	Title   string `json:"title"`
	Count   int64  `json:"count"`
	Uniques int64  `json:"uniques"`
}

// Snapshot is the result of one traffic fetch. Date identifies the snapshot itself and is
// unrelated to the days carried in Views and Clones.
type Snapshot struct {
	FetchedAt time.Time   `json:"fetchedAt"`
	Date      string      `json:"date"`
	Views     []DayMetric `json:"views"`
	Clones    []DayMetric `json:"clones"`
	Referrers []Referrer  `json:"referrers"`
	Paths     []Path      `json:"paths"`
}

// NewSnapshot creates an empty snapshot stamped with the provided fetch instant
func NewSnapshot(fetchedAt time.Time) *Snapshot {
	fetchedAt = fetchedAt.UTC()

	return &Snapshot{
		FetchedAt: fetchedAt,
		Date:      DayOf(fetchedAt).String(),
		Views:     make([]DayMetric, 0),
		Clones:    make([]DayMetric, 0),
		Referrers: make([]Referrer, 0),
		Paths:     make([]Path, 0),
	}
}

// RepositoryHistory is the append-only snapshot sequence of one repository, oldest first.
// Revision is the sequence number of the last appended snapshot and grows with every append.
type RepositoryHistory struct {
	Repository  string     `json:"repository"`
	Version     int        `json:"version"`
	Revision    int64      `json:"revision"`
	Snapshots   []Snapshot `json:"snapshots"`
	LastUpdated time.Time  `json:"lastUpdated"`
}

// Totals holds the deduplicated lifetime sums of a repository
type Totals struct {
	Views        int64 `json:"views"`
	Clones       int64 `json:"clones"`
	UniqueViews  int64 `json:"uniqueViews"`
	UniqueClones int64 `json:"uniqueClones"`
}

// SeriesPoint is one entry of a gap-filled daily series
type SeriesPoint struct {
	Date    string `json:"date"`
	Count   int64  `json:"count"`
	Uniques int64  `json:"uniques"`
}

// Series holds the views and clones daily series over the same range
type Series struct {
	Views  []SeriesPoint `json:"viewsSeries"`
	Clones []SeriesPoint `json:"clonesSeries"`
}
