package traffic

// MetricSelector picks the day-keyed entries of a snapshot that a reconciliation walks
type MetricSelector func(snapshot *Snapshot) []DayMetric

// SelectViews selects the views of a snapshot
func SelectViews(snapshot *Snapshot) []DayMetric {
	return snapshot.Views
}

// SelectClones selects the clones of a snapshot
func SelectClones(snapshot *Snapshot) []DayMetric {
	return snapshot.Clones
}

// Reconcile walks the snapshots in append order and keeps, for every day, the value of the
// last snapshot mentioning it. Values for the same day are never summed.
func Reconcile(snapshots []Snapshot, selector MetricSelector) *DayMap {
	days := NewDayMap()
	for i := range snapshots {
		for _, entry := range selector(&snapshots[i]) {
			days.Set(entry.Date, entry.Metric())
		}
	}

	return days
}

// Reconciled holds the per-day views and clones of a history after reconciliation.
// It is never mutated once built, so it can be shared between readers.
type Reconciled struct {
	Views  *DayMap
	Clones *DayMap
}

// ReconcileHistory reconciles views and clones of the provided history. A nil history yields empty maps.
func ReconcileHistory(history *RepositoryHistory) *Reconciled {
	var snapshots []Snapshot
	if history != nil {
		snapshots = history.Snapshots
	}

	return &Reconciled{
		Views:  Reconcile(snapshots, SelectViews),
		Clones: Reconcile(snapshots, SelectClones),
	}
}
