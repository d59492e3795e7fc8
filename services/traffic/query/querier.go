package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/common"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("query")

// ArgsQuerier holds the querier's dependencies
type ArgsQuerier struct {
	Store     HistoryReader
	Metrics   CacheMetrics
	CacheSize int
	CacheTTL  time.Duration

	// MaxSeriesDays caps the span of a requested series, 0 means unbounded
	MaxSeriesDays int
}

// cachedHistory is a reconciled history valid for as long as no snapshot was appended after it
type cachedHistory struct {
	revision    int64
	lastUpdated time.Time
	reconciled  *traffic.Reconciled
}

type querier struct {
	store         HistoryReader
	metrics       CacheMetrics
	cache         *lru.LRU[string, *cachedHistory]
	maxSeriesDays int
}

// NewQuerier creates the component answering totals and series queries
func NewQuerier(args ArgsQuerier) (*querier, error) {
	if check.IfNil(args.Store) {
		return nil, errors.New("nil history reader")
	}
	if check.IfNil(args.Metrics) {
		return nil, errors.New("nil cache metrics")
	}
	if args.CacheSize < 1 {
		return nil, fmt.Errorf("invalid cache size: %d", args.CacheSize)
	}
	if args.MaxSeriesDays < 0 {
		return nil, fmt.Errorf("invalid maximum series span: %d", args.MaxSeriesDays)
	}

	return &querier{
		store:         args.Store,
		metrics:       args.Metrics,
		cache:         lru.NewLRU[string, *cachedHistory](args.CacheSize, nil, args.CacheTTL),
		maxSeriesDays: args.MaxSeriesDays,
	}, nil
}

// GetTotals returns the lifetime totals of the repository
func (q *querier) GetTotals(ctx context.Context, repository string) (traffic.Totals, error) {
	reconciled, _, err := q.reconciled(ctx, repository)
	if err != nil {
		return traffic.Totals{}, err
	}

	return reconciled.Totals(), nil
}

// GetSeries returns the gap-filled daily series of the repository. Empty bounds default to the observed span.
func (q *querier) GetSeries(ctx context.Context, repository string, startDate string, endDate string) (traffic.Series, error) {
	reconciled, _, err := q.reconciled(ctx, repository)
	if err != nil {
		return traffic.Series{}, err
	}

	return reconciled.LimitedSeries(startDate, endDate, q.maxSeriesDays)
}

// GetTraffic assembles the name, totals and chart data of the repository
func (q *querier) GetTraffic(ctx context.Context, repository string, startDate string, endDate string) (*common.TrafficReport, error) {
	reconciled, lastUpdated, err := q.reconciled(ctx, repository)
	if err != nil {
		return nil, err
	}

	series, err := reconciled.LimitedSeries(startDate, endDate, q.maxSeriesDays)
	if err != nil {
		return nil, err
	}

	return &common.TrafficReport{
		Name:        repository,
		LastUpdated: lastUpdated.Unix(),
		Totals:      reconciled.Totals(),
		ChartData: common.ChartData{
			ViewsSeries:  series.Views,
			ClonesSeries: series.Clones,
		},
	}, nil
}

// ListStored returns the repositories with a stored history
func (q *querier) ListStored(ctx context.Context) ([]common.StoredRepository, error) {
	names, err := q.store.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}

	repos := make([]common.StoredRepository, 0, len(names))
	for _, name := range names {
		repos = append(repos, common.StoredRepository{Name: name})
	}

	return repos, nil
}

func (q *querier) reconciled(ctx context.Context, repository string) (*traffic.Reconciled, time.Time, error) {
	revision, err := q.store.GetRevision(ctx, repository)
	if err != nil {
		return nil, time.Time{}, err
	}

	entry, found := q.cache.Get(repository)
	if found && entry.revision == revision {
		q.metrics.IncCacheHits()
		return entry.reconciled, entry.lastUpdated, nil
	}
	q.metrics.IncCacheMisses()

	history, err := q.store.GetHistory(ctx, repository)
	if err != nil {
		return nil, time.Time{}, err
	}

	log.Trace("reconciling traffic history", "repository", repository, "snapshots", len(history.Snapshots))

	entry = &cachedHistory{
		revision:    history.Revision,
		lastUpdated: history.LastUpdated,
		reconciled:  traffic.ReconcileHistory(history),
	}
	q.cache.Add(repository, entry)

	return entry.reconciled, entry.lastUpdated, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (q *querier) IsInterfaceNil() bool {
	return q == nil
}
