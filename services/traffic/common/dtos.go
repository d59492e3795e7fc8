package common

import "github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"

// RepositoryInfo describes a repository as listed live by the source hosting API
type RepositoryInfo struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Owner       string `json:"owner"`
	URL         string `json:"url"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CollectionResult is one entry of a batch collection. Exactly one of Snapshot and Error is set.
type CollectionResult struct {
	Repository string            `json:"repository"`
	Snapshot   *traffic.Snapshot `json:"traffic,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// StoredRepository is a repository that has a persisted history
type StoredRepository struct {
	Name string `json:"name"`
}

// ChartData holds the gap-filled daily series of a repository
type ChartData struct {
	ViewsSeries  []traffic.SeriesPoint `json:"viewsSeries"`
	ClonesSeries []traffic.SeriesPoint `json:"clonesSeries"`
}

// TrafficReport is the assembled answer for a single repository traffic query
type TrafficReport struct {
	Name        string         `json:"name"`
	LastUpdated int64          `json:"lastUpdated"`
	Totals      traffic.Totals `json:"totals"`
	ChartData   ChartData      `json:"chartData"`
}
