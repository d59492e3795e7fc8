package traffic

// ComputeTotals returns the deduplicated lifetime totals of the history.
// An empty or nil history yields all-zero totals.
func ComputeTotals(history *RepositoryHistory) Totals {
	return ReconcileHistory(history).Totals()
}

// Totals sums the reconciled per-day values
func (r *Reconciled) Totals() Totals {
	views := r.Views.Sum()
	clones := r.Clones.Sum()

	return Totals{
		Views:        views.Count,
		Clones:       clones.Count,
		UniqueViews:  views.Uniques,
		UniqueClones: clones.Uniques,
	}
}
