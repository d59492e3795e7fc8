package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/common"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const unmatchedRoute = "unmatched"

var log = logger.GetOrCreate("api")

type server struct {
	router         *gin.Engine
	httpServer     *http.Server
	querier        TrafficQuerier
	collector      BatchCollector
	lister         RepositoryLister
	metrics        MetricsHandler
	serviceKey     string
	listenAddr     string
	generalHandler func(http.Handler) http.Handler
	wg             sync.WaitGroup
}

// ArgsWebServer defines the web server arguments
type ArgsWebServer struct {
	ServiceKeyApi  string
	ListenAddress  string
	Querier        TrafficQuerier
	Collector      BatchCollector
	Lister         RepositoryLister
	Metrics        MetricsHandler
	GeneralHandler func(http.Handler) http.Handler
}

// NewServer initializes the Gin engine and mounts all routes
func NewServer(args ArgsWebServer) (*server, error) {
	if check.IfNil(args.Querier) {
		return nil, errors.New("querier is required")
	}
	if check.IfNil(args.Collector) {
		return nil, errors.New("collector is required")
	}
	if check.IfNil(args.Lister) {
		return nil, errors.New("repository lister is required")
	}
	if check.IfNil(args.Metrics) {
		return nil, errors.New("metrics handler is required")
	}
	if args.GeneralHandler == nil {
		return nil, errors.New("nil http handler")
	}
	if len(args.ServiceKeyApi) == 0 {
		return nil, errors.New("empty service key")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(gin.Recovery())

	s := &server{
		router:         router,
		querier:        args.Querier,
		collector:      args.Collector,
		lister:         args.Lister,
		metrics:        args.Metrics,
		serviceKey:     args.ServiceKeyApi,
		listenAddr:     args.ListenAddress,
		generalHandler: args.GeneralHandler,
	}

	router.Use(s.observeRequests())
	s.setupRoutes()
	return s, nil
}

func (s *server) setupRoutes() {
	s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := s.router.Group("/api")

	// Endpoints calling the source hosting API consume its rate limit
	upstream := api.Group("")
	upstream.Use(s.authAPIKey())
	{
		upstream.GET("/github/repositories", s.handleGetLiveRepositories)
		upstream.GET("/github/traffic", s.handleCollect)
		upstream.POST("/collect", s.handleCollect)
	}

	api.GET("/database/repositories", s.handleGetStoredRepositories)
	api.GET("/database/repositories/traffic", s.handleGetTraffic)
	api.GET("/repositories/:owner/:repo/totals", s.handleGetTotals)
	api.GET("/repositories/:owner/:repo/series", s.handleGetSeries)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "api route not found"})
	})
}

// Start listens and serves connections
func (s *server) Start() {
	handler := s.generalHandler(s.router)

	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		log.Error("failed to listen", "error", err)
		return
	}
	s.listenAddr = ln.Addr().String()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		log.Info("starting HTTP server", "address", s.listenAddr)

		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
		}
	}()
}

// Address returns the actual listen address
func (s *server) Address() string {
	return s.listenAddr
}

// Close gracefully stops the server
func (s *server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}
	s.wg.Wait()

	return nil
}

// --- Middlewares ---

func (s *server) authAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("X-Api-Key")
		if key != s.serviceKey {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *server) observeRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if len(route) == 0 {
			route = unmatchedRoute
		}
		s.metrics.IncRequestsTotal(route, c.Writer.Status())
		s.metrics.ObserveRequestDuration(route, time.Since(start))
	}
}

// --- Handlers ---

func (s *server) handleGetLiveRepositories(c *gin.Context) {
	repos, err := s.lister.ListRepositories(c.Request.Context())
	if err != nil {
		log.Warn("failed to list live repositories", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, repos)
}

func (s *server) handleCollect(c *gin.Context) {
	log.Debug("on-demand traffic collection", "sender", c.Request.RemoteAddr)

	results, err := s.collector.CollectAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, results)
}

func (s *server) handleGetStoredRepositories(c *gin.Context) {
	repos, err := s.querier.ListStored(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, repos)
}

func (s *server) handleGetTraffic(c *gin.Context) {
	name := c.Query("name")
	if len(name) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing repository name"})
		return
	}

	report, err := s.querier.GetTraffic(c.Request.Context(), name, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *server) handleGetTotals(c *gin.Context) {
	name := c.Param("owner") + "/" + c.Param("repo")
	totals, err := s.querier.GetTotals(c.Request.Context(), name)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": name, "totals": totals})
}

func (s *server) handleGetSeries(c *gin.Context) {
	name := c.Param("owner") + "/" + c.Param("repo")
	series, err := s.querier.GetSeries(c.Request.Context(), name, c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, series)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, common.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Warn("request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *server) IsInterfaceNil() bool {
	return s == nil
}
