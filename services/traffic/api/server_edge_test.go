package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/common"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/testsCommon"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
	"github.com/stretchr/testify/require"
)

func createStubArgs() ArgsWebServer {
	return ArgsWebServer{
		ServiceKeyApi:  testKey,
		ListenAddress:  ":0",
		Querier:        &testsCommon.TrafficQuerierStub{},
		Collector:      &testsCommon.BatchCollectorStub{},
		Lister:         &testsCommon.SnapshotSourceStub{},
		Metrics:        testsCommon.NewMetricsStub(),
		GeneralHandler: func(h http.Handler) http.Handler { return h },
	}
}

func TestNewServer(t *testing.T) {
	t.Parallel()

	t.Run("nil querier should error", func(t *testing.T) {
		args := createStubArgs()
		args.Querier = nil
		serv, err := NewServer(args)
		require.Nil(t, serv)
		require.Contains(t, err.Error(), "querier is required")
	})
	t.Run("nil collector should error", func(t *testing.T) {
		args := createStubArgs()
		args.Collector = nil
		serv, err := NewServer(args)
		require.Nil(t, serv)
		require.Contains(t, err.Error(), "collector is required")
	})
	t.Run("nil lister should error", func(t *testing.T) {
		args := createStubArgs()
		args.Lister = nil
		serv, err := NewServer(args)
		require.Nil(t, serv)
		require.Contains(t, err.Error(), "repository lister is required")
	})
	t.Run("nil metrics should error", func(t *testing.T) {
		args := createStubArgs()
		args.Metrics = nil
		serv, err := NewServer(args)
		require.Nil(t, serv)
		require.Contains(t, err.Error(), "metrics handler is required")
	})
	t.Run("nil general handler should error", func(t *testing.T) {
		args := createStubArgs()
		args.GeneralHandler = nil
		serv, err := NewServer(args)
		require.Nil(t, serv)
		require.Contains(t, err.Error(), "nil http handler")
	})
	t.Run("empty service key should error", func(t *testing.T) {
		args := createStubArgs()
		args.ServiceKeyApi = ""
		serv, err := NewServer(args)
		require.Nil(t, serv)
		require.Contains(t, err.Error(), "empty service key")
	})
	t.Run("should work", func(t *testing.T) {
		serv, err := NewServer(createStubArgs())
		require.NoError(t, err)
		require.False(t, serv.IsInterfaceNil())
	})
}

func TestServer_StartAndClose(t *testing.T) {
	args := createStubArgs()
	args.ListenAddress = "127.0.0.1:0"
	serv, err := NewServer(args)
	require.NoError(t, err)

	serv.Start()
	require.NotEqual(t, "127.0.0.1:0", serv.Address())

	resp, err := http.Get(fmt.Sprintf("http://%s/api/database/repositories", serv.Address()))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	err = serv.Close()
	require.NoError(t, err)
}

func TestCollectEndpoints(t *testing.T) {
	t.Parallel()

	fetchedAt := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	numCalls := 0
	args := createStubArgs()
	args.Collector = &testsCommon.BatchCollectorStub{
		CollectAllHandler: func(ctx context.Context) ([]common.CollectionResult, error) {
			numCalls++
			return []common.CollectionResult{
				{Repository: "octo/cat", Snapshot: traffic.NewSnapshot(fetchedAt)},
				{Repository: "octo/dog", Error: "upstream failure: non-2xx HTTP status code: 403 Forbidden"},
			}, nil
		},
	}
	serv, err := NewServer(args)
	require.NoError(t, err)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/github/traffic"},
		{http.MethodPost, "/api/collect"},
	} {
		w := doRequest(serv, route.method, route.path, "")
		require.Equal(t, http.StatusUnauthorized, w.Code)

		w = doRequest(serv, route.method, route.path, "wrong")
		require.Equal(t, http.StatusUnauthorized, w.Code)

		w = doRequest(serv, route.method, route.path, testKey)
		require.Equal(t, http.StatusOK, w.Code)

		var results []common.CollectionResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
		require.Len(t, results, 2)
		require.Equal(t, "octo/cat", results[0].Repository)
		require.NotNil(t, results[0].Snapshot)
		require.Empty(t, results[0].Error)
		require.Nil(t, results[1].Snapshot)
		require.Contains(t, results[1].Error, "403")
	}
	require.Equal(t, 2, numCalls)
}

func TestCollectEndpoint_ListingFailure(t *testing.T) {
	t.Parallel()

	args := createStubArgs()
	args.Collector = &testsCommon.BatchCollectorStub{
		CollectAllHandler: func(ctx context.Context) ([]common.CollectionResult, error) {
			return nil, fmt.Errorf("%w: listing failed", common.ErrUpstreamFailure)
		},
	}
	serv, err := NewServer(args)
	require.NoError(t, err)

	w := doRequest(serv, http.MethodPost, "/api/collect", testKey)
	require.Equal(t, http.StatusBadGateway, w.Code)
	require.Contains(t, w.Body.String(), "listing failed")
}

func TestLiveRepositoriesEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("should return the live listing", func(t *testing.T) {
		args := createStubArgs()
		args.Lister = &testsCommon.SnapshotSourceStub{
			ListRepositoriesHandler: func(ctx context.Context) ([]common.RepositoryInfo, error) {
				return []common.RepositoryInfo{{ID: 1, Name: "cat", FullName: "octo/cat", Owner: "octo"}}, nil
			},
		}
		serv, err := NewServer(args)
		require.NoError(t, err)

		w := doRequest(serv, http.MethodGet, "/api/github/repositories", "")
		require.Equal(t, http.StatusUnauthorized, w.Code)

		w = doRequest(serv, http.MethodGet, "/api/github/repositories", testKey)
		require.Equal(t, http.StatusOK, w.Code)

		var repos []common.RepositoryInfo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &repos))
		require.Equal(t, "octo/cat", repos[0].FullName)
	})
	t.Run("upstream failure should return 502", func(t *testing.T) {
		args := createStubArgs()
		args.Lister = &testsCommon.SnapshotSourceStub{
			ListRepositoriesHandler: func(ctx context.Context) ([]common.RepositoryInfo, error) {
				return nil, errors.New("bad credentials")
			},
		}
		serv, err := NewServer(args)
		require.NoError(t, err)

		w := doRequest(serv, http.MethodGet, "/api/github/repositories", testKey)
		require.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestHandlers_QuerierErrors(t *testing.T) {
	t.Parallel()

	args := createStubArgs()
	args.Querier = &testsCommon.TrafficQuerierStub{
		GetTotalsHandler: func(ctx context.Context, repository string) (traffic.Totals, error) {
			return traffic.Totals{}, fmt.Errorf("%w: %s", common.ErrNotFound, repository)
		},
		GetSeriesHandler: func(ctx context.Context, repository string, startDate string, endDate string) (traffic.Series, error) {
			return traffic.Series{}, common.ErrInvalidRange
		},
		GetTrafficHandler: func(ctx context.Context, repository string, startDate string, endDate string) (*common.TrafficReport, error) {
			return nil, fmt.Errorf("%w: disk I/O error", common.ErrPersistenceFailure)
		},
		ListStoredHandler: func(ctx context.Context) ([]common.StoredRepository, error) {
			return nil, errors.New("db list error")
		},
	}
	serv, err := NewServer(args)
	require.NoError(t, err)

	w := doRequest(serv, http.MethodGet, "/api/repositories/octo/cat/totals", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(serv, http.MethodGet, "/api/repositories/octo/cat/series?startDate=2024-01-05&endDate=2024-01-01", "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(serv, http.MethodGet, "/api/database/repositories/traffic?name=octo/cat", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)

	w = doRequest(serv, http.MethodGet, "/api/database/repositories", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandlers_ForwardQueryParameters(t *testing.T) {
	t.Parallel()

	var gotRepository, gotStart, gotEnd string
	args := createStubArgs()
	args.Querier = &testsCommon.TrafficQuerierStub{
		GetSeriesHandler: func(ctx context.Context, repository string, startDate string, endDate string) (traffic.Series, error) {
			gotRepository, gotStart, gotEnd = repository, startDate, endDate
			return traffic.Series{}, nil
		},
	}
	serv, err := NewServer(args)
	require.NoError(t, err)

	w := doRequest(serv, http.MethodGet, "/api/repositories/octo/cat/series?startDate=2024-01-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "octo/cat", gotRepository)
	require.Equal(t, "2024-01-01", gotStart)
	require.Empty(t, gotEnd)
}

func TestNoRoute(t *testing.T) {
	t.Parallel()

	serv, err := NewServer(createStubArgs())
	require.NoError(t, err)

	w := doRequest(serv, http.MethodGet, "/api/unknown", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "api route not found")
}
