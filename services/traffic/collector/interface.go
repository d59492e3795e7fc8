package collector

import (
	"context"
	"time"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/common"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
)

// SnapshotSource defines the interface for fetching traffic snapshots from the source hosting API
type SnapshotSource interface {
	// ListRepositories returns the repositories that should be collected
	ListRepositories(ctx context.Context) ([]common.RepositoryInfo, error)

	// FetchSnapshot fetches the current traffic window of one repository
	FetchSnapshot(ctx context.Context, fullName string) (*traffic.Snapshot, error)

	IsInterfaceNil() bool
}

// HistoryAppender defines the write side of the history store
type HistoryAppender interface {
	// AppendSnapshot creates the history if absent and appends the snapshot to it
	AppendSnapshot(ctx context.Context, repository string, snapshot *traffic.Snapshot) error

	IsInterfaceNil() bool
}

// MetricsHandler defines the collection metrics sink
type MetricsHandler interface {
	IncCollection(outcome string)
	ObserveBatchDuration(duration time.Duration)
	IsInterfaceNil() bool
}
