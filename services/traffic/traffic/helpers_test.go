package traffic

import "time"

func snapshotOf(fetchedAt string, views []DayMetric, clones []DayMetric) Snapshot {
	t, _ := time.Parse(time.RFC3339, fetchedAt)
	s := NewSnapshot(t)
	s.Views = append(s.Views, views...)
	s.Clones = append(s.Clones, clones...)

	return *s
}

func historyOf(snapshots ...Snapshot) *RepositoryHistory {
	h := &RepositoryHistory{
		Repository: "octocat/hello-world",
		Version:    SchemaVersion,
		Snapshots:  snapshots,
	}
	if len(snapshots) > 0 {
		h.LastUpdated = snapshots[len(snapshots)-1].FetchedAt
	}

	return h
}
