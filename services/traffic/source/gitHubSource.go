package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/common"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

const (
	acceptHeader     = "application/vnd.github+json"
	apiVersionHeader = "2022-11-28"
)

var log = logger.GetOrCreate("source")

// ArgsGitHubSource holds the arguments needed to build a GitHub traffic source
type ArgsGitHubSource struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	RepositoriesLimit int
	Clock             func() time.Time
}

type gitHubSource struct {
	baseURL           string
	token             string
	repositoriesLimit int
	clock             func() time.Time
	client            *http.Client
}

// NewGitHubSource creates a snapshot source backed by the GitHub REST API
func NewGitHubSource(args ArgsGitHubSource) (*gitHubSource, error) {
	if len(args.Token) == 0 {
		return nil, errors.New("github token is required")
	}
	if len(args.BaseURL) == 0 {
		return nil, errors.New("empty base URL")
	}
	if args.Clock == nil {
		return nil, errNilClock
	}

	limit := args.RepositoriesLimit
	if limit <= 0 {
		limit = 100
	}

	log.Debug("GitHub API client initialized", "base URL", args.BaseURL)

	return &gitHubSource{
		baseURL:           strings.TrimRight(args.BaseURL, "/"),
		token:             args.Token,
		repositoriesLimit: limit,
		clock:             args.Clock,
		client: &http.Client{
			Timeout: args.Timeout,
		},
	}, nil
}

// ListRepositories returns the public repositories of the authenticated user
func (s *gitHubSource) ListRepositories(ctx context.Context) ([]common.RepositoryInfo, error) {
	body, err := s.get(ctx, fmt.Sprintf("/user/repos?visibility=public&per_page=%d", s.repositoriesLimit))
	if err != nil {
		return nil, fmt.Errorf("%w while listing repositories", err)
	}

	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, errUnexpectedPayload("repositories")
	}

	repos := make([]common.RepositoryInfo, 0, len(parsed.Array()))
	parsed.ForEach(func(_, repo gjson.Result) bool {
		repos = append(repos, common.RepositoryInfo{
			ID:          repo.Get("id").Int(),
			Name:        repo.Get("name").String(),
			FullName:    repo.Get("full_name").String(),
			Owner:       repo.Get("owner.login").String(),
			URL:         repo.Get("html_url").String(),
			Description: repo.Get("description").String(),
			CreatedAt:   repo.Get("created_at").String(),
			UpdatedAt:   repo.Get("updated_at").String(),
		})
		return true
	})

	log.Debug("found public repositories", "count", len(repos))

	return repos, nil
}

// FetchSnapshot fetches views, clones, referrers and popular paths of a repository as one snapshot
func (s *gitHubSource) FetchSnapshot(ctx context.Context, fullName string) (*traffic.Snapshot, error) {
	owner, repo, found := strings.Cut(fullName, "/")
	if !found || len(owner) == 0 || len(repo) == 0 || strings.Contains(repo, "/") {
		return nil, errInvalidRepositoryName(fullName)
	}

	prefix := "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(repo) + "/traffic"
	snapshot := traffic.NewSnapshot(s.clock())

	views, err := s.get(ctx, prefix+"/views")
	if err != nil {
		return nil, fmt.Errorf("%w while fetching views of %s", err, fullName)
	}
	snapshot.Views, err = parseDailyMetrics(views, "views")
	if err != nil {
		return nil, err
	}

	clones, err := s.get(ctx, prefix+"/clones")
	if err != nil {
		return nil, fmt.Errorf("%w while fetching clones of %s", err, fullName)
	}
	snapshot.Clones, err = parseDailyMetrics(clones, "clones")
	if err != nil {
		return nil, err
	}

	referrers, err := s.get(ctx, prefix+"/popular/referrers")
	if err != nil {
		return nil, fmt.Errorf("%w while fetching referrers of %s", err, fullName)
	}
	snapshot.Referrers, err = parseReferrers(referrers)
	if err != nil {
		return nil, err
	}

	paths, err := s.get(ctx, prefix+"/popular/paths")
	if err != nil {
		return nil, fmt.Errorf("%w while fetching paths of %s", err, fullName)
	}
	snapshot.Paths, err = parsePaths(paths)
	if err != nil {
		return nil, err
	}

	log.Debug("fetched traffic snapshot", "repository", fullName,
		"views days", len(snapshot.Views), "clones days", len(snapshot.Clones))

	return snapshot, nil
}

func (s *gitHubSource) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("X-GitHub-Api-Version", apiVersionHeader)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			log.Warn("GitHub rate limit exhausted", "reset", resp.Header.Get("X-RateLimit-Reset"))
		}
		return nil, errStatusNotOK(resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

func parseDailyMetrics(body []byte, field string) ([]traffic.DayMetric, error) {
	entries := gjson.GetBytes(body, field)
	if !entries.Exists() {
		return make([]traffic.DayMetric, 0), nil
	}
	if !entries.IsArray() {
		return nil, errUnexpectedPayload(field)
	}

	metrics := make([]traffic.DayMetric, 0, len(entries.Array()))
	entries.ForEach(func(_, entry gjson.Result) bool {
		metrics = append(metrics, traffic.DayMetric{
			Date:    traffic.DayKeyFromTimestamp(entry.Get("timestamp").String()),
			Count:   entry.Get("count").Int(),
			Uniques: entry.Get("uniques").Int(),
		})
		return true
	})

	return metrics, nil
}

func parseReferrers(body []byte) ([]traffic.Referrer, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, errUnexpectedPayload("referrers")
	}

	referrers := make([]traffic.Referrer, 0, len(parsed.Array()))
	parsed.ForEach(func(_, entry gjson.Result) bool {
		referrers = append(referrers, traffic.Referrer{
			Source:  entry.Get("referrer").String(),
			Count:   entry.Get("count").Int(),
			Uniques: entry.Get("uniques").Int(),
		})
		return true
	})

	return referrers, nil
}

func parsePaths(body []byte) ([]traffic.Path, error) {
	parsed := gjson.ParseBytes(body)
	if !parsed.IsArray() {
		return nil, errUnexpectedPayload("paths")
	}

	paths := make([]traffic.Path, 0, len(parsed.Array()))
	parsed.ForEach(func(_, entry gjson.Result) bool {
		paths = append(paths, traffic.Path{
			Path:    entry.Get("path").String(),
			Title:   entry.Get("title").String(),
			Count:   entry.Get("count").Int(),
			Uniques: entry.Get("uniques").Int(),
		})
		return true
	})

	return paths, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (s *gitHubSource) IsInterfaceNil() bool {
	return s == nil
}
