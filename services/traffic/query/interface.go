package query

import (
	"context"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
)

// HistoryReader defines the read side of the history store
type HistoryReader interface {
	GetHistory(ctx context.Context, repository string) (*traffic.RepositoryHistory, error)
	GetRevision(ctx context.Context, repository string) (int64, error)
	ListRepositories(ctx context.Context) ([]string, error)
	IsInterfaceNil() bool
}

// CacheMetrics defines the query cache metrics sink
type CacheMetrics interface {
	IncCacheHits()
	IncCacheMisses()
	IsInterfaceNil() bool
}
