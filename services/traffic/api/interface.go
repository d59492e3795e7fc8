package api

import (
	"context"
	"net/http"
	"time"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/common"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
)

// TrafficQuerier defines the read path over stored traffic histories
type TrafficQuerier interface {
	// GetTotals returns the deduplicated lifetime totals, or ErrNotFound
	GetTotals(ctx context.Context, repository string) (traffic.Totals, error)

	// GetSeries returns the gap-filled daily series, or ErrNotFound / ErrInvalidRange
	GetSeries(ctx context.Context, repository string, startDate string, endDate string) (traffic.Series, error)

	// GetTraffic returns totals and chart data in one report
	GetTraffic(ctx context.Context, repository string, startDate string, endDate string) (*common.TrafficReport, error)

	// ListStored returns the repositories with a stored history
	ListStored(ctx context.Context) ([]common.StoredRepository, error)

	IsInterfaceNil() bool
}

// BatchCollector defines the on-demand collection entry point
type BatchCollector interface {
	CollectAll(ctx context.Context) ([]common.CollectionResult, error)
	IsInterfaceNil() bool
}

// RepositoryLister defines the live repository listing of the source hosting API
type RepositoryLister interface {
	ListRepositories(ctx context.Context) ([]common.RepositoryInfo, error)
	IsInterfaceNil() bool
}

// MetricsHandler defines the HTTP metrics sink and exposition handler
type MetricsHandler interface {
	IncRequestsTotal(route string, status int)
	ObserveRequestDuration(route string, duration time.Duration)
	Handler() http.Handler
	IsInterfaceNil() bool
}
