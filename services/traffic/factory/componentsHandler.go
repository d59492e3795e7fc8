package factory

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/iulianpascalau/gh-traffic-monitoring/commonGo"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/api"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/collector"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/config"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/metrics"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/query"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/source"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/storage"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/rs/cors"
)

var log = logger.GetOrCreate("factory")

type historyStore interface {
	collector.HistoryAppender
	query.HistoryReader
	Close() error
}

type componentsHandler struct {
	store     historyStore
	collector Collector
	server    Server
	schedule  string
	onStart   bool
	mutCancel sync.Mutex
	cancel    func()
	done      <-chan struct{}
}

// NewComponentsHandler creates a new components handler
func NewComponentsHandler(
	gitHubToken string,
	serviceKeyApi string,
	cfg config.Config,
) (*componentsHandler, error) {
	gitHub, err := source.NewGitHubSource(source.ArgsGitHubSource{
		BaseURL:           cfg.GitHub.BaseURL,
		Token:             gitHubToken,
		Timeout:           time.Duration(cfg.GitHub.TimeoutInSeconds) * time.Second,
		RepositoriesLimit: cfg.GitHub.RepositoriesLimit,
		Clock:             time.Now,
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	promMetrics := metrics.NewPrometheusMetrics()

	coll, err := collector.NewCollector(collector.ArgsCollector{
		Source:       gitHub,
		Store:        store,
		Metrics:      promMetrics,
		NumWorkers:   cfg.Collector.NumWorkers,
		BatchTimeout: time.Duration(cfg.Collector.BatchTimeoutInSeconds) * time.Second,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	querier, err := query.NewQuerier(query.ArgsQuerier{
		Store:     store,
		Metrics:   promMetrics,
		CacheSize:     cfg.Cache.NumEntries,
		CacheTTL:      time.Duration(cfg.Cache.TTLInSeconds) * time.Second,
		MaxSeriesDays: cfg.Query.MaxSeriesDays,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	server, err := api.NewServer(api.ArgsWebServer{
		ServiceKeyApi:  serviceKeyApi,
		ListenAddress:  cfg.ListenAddress,
		Querier:        querier,
		Collector:      coll,
		Lister:         gitHub,
		Metrics:        promMetrics,
		GeneralHandler: newCORSHandler(),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &componentsHandler{
		store:     store,
		collector: coll,
		server:    server,
		schedule:  cfg.Collector.Schedule,
		onStart:   cfg.Collector.CollectOnStart,
	}, nil
}

// newCORSHandler allows browser dashboards hosted elsewhere to call the API
func newCORSHandler() func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Api-Key"},
	}).Handler
}

// GetStore returns the storage component
func (ch *componentsHandler) GetStore() historyStore {
	return ch.store
}

// GetCollector returns the collector component
func (ch *componentsHandler) GetCollector() Collector {
	return ch.collector
}

// GetServer returns the server component
func (ch *componentsHandler) GetServer() Server {
	return ch.server
}

// Start starts the HTTP server and the collection schedule
func (ch *componentsHandler) Start() error {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done, err := commonGo.CronJobStarter(ctx, ch.collector.Process, ch.schedule, ch.onStart)
	if err != nil {
		cancel()
		return err
	}

	ch.cancel = cancel
	ch.done = done
	ch.server.Start()

	log.Info("traffic collection scheduled", "schedule", ch.schedule, "collect on start", ch.onStart)

	return nil
}

// Close closes the inner components in reverse order
func (ch *componentsHandler) Close() {
	ch.mutCancel.Lock()
	defer ch.mutCancel.Unlock()

	if ch.cancel != nil {
		_ = ch.server.Close()

		ch.cancel()
		<-ch.done
		ch.cancel = nil
	}

	err := ch.store.Close()
	log.LogIfError(err)
}
