package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/common"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/metrics"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"golang.org/x/sync/errgroup"
)

var log = logger.GetOrCreate("collector")

// ArgsCollector holds the collector's dependencies
type ArgsCollector struct {
	Source       SnapshotSource
	Store        HistoryAppender
	Metrics      MetricsHandler
	NumWorkers   int
	BatchTimeout time.Duration
}

// collector fetches a snapshot for every repository and appends it to the store
type collector struct {
	source       SnapshotSource
	store        HistoryAppender
	metrics      MetricsHandler
	numWorkers   int
	batchTimeout time.Duration
	mutBatch     sync.Mutex
}

// NewCollector creates a new collector instance
func NewCollector(args ArgsCollector) (*collector, error) {
	if check.IfNil(args.Source) {
		return nil, errors.New("nil snapshot source")
	}
	if check.IfNil(args.Store) {
		return nil, errors.New("nil history store")
	}
	if check.IfNil(args.Metrics) {
		return nil, errors.New("nil metrics handler")
	}
	if args.NumWorkers < 1 {
		return nil, fmt.Errorf("invalid number of workers: %d", args.NumWorkers)
	}
	if args.BatchTimeout <= 0 {
		return nil, fmt.Errorf("invalid batch timeout: %v", args.BatchTimeout)
	}

	return &collector{
		source:       args.Source,
		store:        args.Store,
		metrics:      args.Metrics,
		numWorkers:   args.NumWorkers,
		batchTimeout: args.BatchTimeout,
	}, nil
}

// CollectAll fetches and stores a snapshot for every listed repository. A failure of one repository
// is reported in its own result entry and never affects the others. Batches never overlap, so
// snapshots of the same repository are appended in fetch order.
func (c *collector) CollectAll(ctx context.Context) ([]common.CollectionResult, error) {
	c.mutBatch.Lock()
	defer c.mutBatch.Unlock()

	start := time.Now()
	defer func() {
		c.metrics.ObserveBatchDuration(time.Since(start))
	}()

	repos, err := c.source.ListRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUpstreamFailure, err)
	}

	log.Debug("found repositories to collect traffic for", "count", len(repos))

	results := make([]common.CollectionResult, len(repos))
	var eg errgroup.Group
	eg.SetLimit(c.numWorkers)
	for i, repo := range repos {
		eg.Go(func() error {
			// failures are recorded in the repository's own entry, so workers never fail the group
			results[i] = c.collectRepository(ctx, repo.FullName)
			return nil
		})
	}
	_ = eg.Wait()

	return results, nil
}

func (c *collector) collectRepository(ctx context.Context, fullName string) common.CollectionResult {
	result := common.CollectionResult{
		Repository: fullName,
	}

	snapshot, err := c.source.FetchSnapshot(ctx, fullName)
	if err != nil {
		err = tagError(common.ErrUpstreamFailure, err)
		log.Error("failed to collect traffic", "repository", fullName, "error", err)
		c.metrics.IncCollection(metrics.OutcomeUpstreamFailure)
		result.Error = err.Error()

		return result
	}

	err = c.store.AppendSnapshot(ctx, fullName, snapshot)
	if err != nil {
		err = tagError(common.ErrPersistenceFailure, err)
		log.Error("failed to save traffic", "repository", fullName, "error", err)
		c.metrics.IncCollection(metrics.OutcomePersistenceFailure)
		result.Error = err.Error()

		return result
	}

	log.Debug("collected traffic data", "repository", fullName)
	c.metrics.IncCollection(metrics.OutcomeSuccess)
	result.Snapshot = snapshot

	return result
}

func tagError(kind error, err error) error {
	if errors.Is(err, kind) {
		return err
	}

	return fmt.Errorf("%w: %w", kind, err)
}

// Process runs a full collection bounded by the batch timeout and logs the outcome
func (c *collector) Process(ctx context.Context) {
	log.Info("starting scheduled traffic data collection")

	batchCtx, cancel := context.WithTimeout(ctx, c.batchTimeout)
	defer cancel()

	results, err := c.CollectAll(batchCtx)
	if err != nil {
		log.Error("scheduled traffic collection failed", "error", err)
		return
	}

	numFailed := 0
	for _, r := range results {
		if len(r.Error) > 0 {
			numFailed++
		}
	}

	log.Info("scheduled traffic collection completed", "repositories", len(results), "failed", numFailed)
}

// IsInterfaceNil returns true if the value under the interface is nil
func (c *collector) IsInterfaceNil() bool {
	return c == nil
}
