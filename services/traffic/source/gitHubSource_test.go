package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 8, 0, 0, 5, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

const (
	reposPayload = `[
		{"id": 1, "name": "hello-world", "full_name": "octocat/hello-world", "owner": {"login": "octocat"},
		 "html_url": "https://github.com/octocat/hello-world", "description": null,
		 "created_at": "2020-01-01T00:00:00Z", "updated_at": "2024-01-01T00:00:00Z"},
		{"id": 2, "name": "spoon-knife", "full_name": "octocat/spoon-knife", "owner": {"login": "octocat"},
		 "html_url": "https://github.com/octocat/spoon-knife", "description": "fork me",
		 "created_at": "2020-02-01T00:00:00Z", "updated_at": "2024-01-02T00:00:00Z"}
	]`
	viewsPayload = `{"count": 14, "uniques": 4, "views": [
		{"timestamp": "2024-01-06T00:00:00Z", "count": 10, "uniques": 3},
		{"timestamp": "2024-01-07T00:00:00Z", "count": 4, "uniques": 1}
	]}`
	clonesPayload = `{"count": 2, "uniques": 1, "clones": [
		{"timestamp": "2024-01-07T00:00:00Z", "count": 2, "uniques": 1}
	]}`
	referrersPayload = `[{"referrer": "google.com", "count": 8, "uniques": 2}]`
	pathsPayload     = `[{"path": "/octocat/hello-world", "title": "hello-world", "count": 12, "uniques": 3}]`
)

func newGitHubMock(t *testing.T, token string) *httptest.Server {
	mux := http.NewServeMux()
	handle := func(path string, payload string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			assert.Equal(t, acceptHeader, r.Header.Get("Accept"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(payload))
		})
	}

	handle("/user/repos", reposPayload)
	handle("/repos/octocat/hello-world/traffic/views", viewsPayload)
	handle("/repos/octocat/hello-world/traffic/clones", clonesPayload)
	handle("/repos/octocat/hello-world/traffic/popular/referrers", referrersPayload)
	handle("/repos/octocat/hello-world/traffic/popular/paths", pathsPayload)
	mux.HandleFunc("/repos/octocat/limited/traffic/views", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusForbidden)
	})
	handle("/repos/octocat/broken/traffic/views", `{"views": "nope"}`)

	return httptest.NewServer(mux)
}

func createSource(t *testing.T, url string, token string) *gitHubSource {
	src, err := NewGitHubSource(ArgsGitHubSource{
		BaseURL:           url,
		Token:             token,
		Timeout:           time.Second,
		RepositoriesLimit: 50,
		Clock:             fixedClock,
	})
	require.NoError(t, err)

	return src
}

func TestNewGitHubSource(t *testing.T) {
	t.Parallel()

	t.Run("empty token should error", func(t *testing.T) {
		src, err := NewGitHubSource(ArgsGitHubSource{BaseURL: "http://localhost", Clock: fixedClock})
		assert.Nil(t, src)
		assert.True(t, src.IsInterfaceNil())
		assert.ErrorContains(t, err, "github token is required")
	})
	t.Run("empty base URL should error", func(t *testing.T) {
		src, err := NewGitHubSource(ArgsGitHubSource{Token: "t", Clock: fixedClock})
		assert.Nil(t, src)
		assert.ErrorContains(t, err, "empty base URL")
	})
	t.Run("nil clock should error", func(t *testing.T) {
		src, err := NewGitHubSource(ArgsGitHubSource{Token: "t", BaseURL: "http://localhost"})
		assert.Nil(t, src)
		assert.Equal(t, errNilClock, err)
	})
	t.Run("should work", func(t *testing.T) {
		src, err := NewGitHubSource(ArgsGitHubSource{Token: "t", BaseURL: "http://localhost/", Clock: fixedClock})
		assert.Nil(t, err)
		assert.False(t, src.IsInterfaceNil())
		assert.Equal(t, "http://localhost", src.baseURL)
		assert.Equal(t, 100, src.repositoriesLimit)
	})
}

func TestGitHubSource_ListRepositories(t *testing.T) {
	t.Parallel()

	server := newGitHubMock(t, "secret")
	defer server.Close()

	t.Run("should work", func(t *testing.T) {
		repos, err := createSource(t, server.URL, "secret").ListRepositories(context.Background())
		require.NoError(t, err)
		require.Len(t, repos, 2)

		assert.Equal(t, int64(1), repos[0].ID)
		assert.Equal(t, "octocat/hello-world", repos[0].FullName)
		assert.Equal(t, "octocat", repos[0].Owner)
		assert.Equal(t, "", repos[0].Description)
		assert.Equal(t, "fork me", repos[1].Description)
		assert.Equal(t, "https://github.com/octocat/spoon-knife", repos[1].URL)
	})
	t.Run("bad credentials should error", func(t *testing.T) {
		repos, err := createSource(t, server.URL, "wrong").ListRepositories(context.Background())
		assert.Nil(t, repos)

		var statusErr errStatusNotOK
		require.True(t, errors.As(err, &statusErr))
		assert.Equal(t, http.StatusUnauthorized, int(statusErr))
	})
}

func TestGitHubSource_FetchSnapshot(t *testing.T) {
	t.Parallel()

	server := newGitHubMock(t, "secret")
	defer server.Close()

	src := createSource(t, server.URL, "secret")

	t.Run("should work", func(t *testing.T) {
		snapshot, err := src.FetchSnapshot(context.Background(), "octocat/hello-world")
		require.NoError(t, err)

		assert.Equal(t, fixedNow, snapshot.FetchedAt)
		assert.Equal(t, "2024-01-08", snapshot.Date)
		assert.Equal(t, []traffic.DayMetric{
			{Date: "2024-01-06", Count: 10, Uniques: 3},
			{Date: "2024-01-07", Count: 4, Uniques: 1},
		}, snapshot.Views)
		assert.Equal(t, []traffic.DayMetric{
			{Date: "2024-01-07", Count: 2, Uniques: 1},
		}, snapshot.Clones)
		assert.Equal(t, []traffic.Referrer{{Source: "google.com", Count: 8, Uniques: 2}}, snapshot.Referrers)
		assert.Equal(t, []traffic.Path{{Path: "/octocat/hello-world", Title: "hello-world", Count: 12, Uniques: 3}}, snapshot.Paths)
	})
	t.Run("invalid repository names should error", func(t *testing.T) {
		for _, name := range []string{"", "octocat", "/repo", "owner/", "a/b/c"} {
			snapshot, err := src.FetchSnapshot(context.Background(), name)
			assert.Nil(t, snapshot)
			assert.Equal(t, errInvalidRepositoryName(name), err)
		}
	})
	t.Run("rate limited should error", func(t *testing.T) {
		snapshot, err := src.FetchSnapshot(context.Background(), "octocat/limited")
		assert.Nil(t, snapshot)
		assert.ErrorContains(t, err, "403")
		assert.ErrorContains(t, err, "octocat/limited")
	})
	t.Run("malformed payload should error", func(t *testing.T) {
		snapshot, err := src.FetchSnapshot(context.Background(), "octocat/broken")
		assert.Nil(t, snapshot)
		assert.Equal(t, errUnexpectedPayload("views"), err)
	})
	t.Run("unknown repository should error", func(t *testing.T) {
		snapshot, err := src.FetchSnapshot(context.Background(), "octocat/missing")
		assert.Nil(t, snapshot)
		assert.ErrorContains(t, err, "404")
	})
	t.Run("connection refused should error", func(t *testing.T) {
		snapshot, err := createSource(t, "http://localhost:59999", "secret").FetchSnapshot(context.Background(), "octocat/hello-world")
		assert.Nil(t, snapshot)
		assert.Error(t, err)
	})
}

func TestParseDailyMetrics(t *testing.T) {
	t.Parallel()

	metrics, err := parseDailyMetrics([]byte(`{"count": 0, "uniques": 0}`), "views")
	require.NoError(t, err)
	assert.NotNil(t, metrics)
	assert.Empty(t, metrics)
}
