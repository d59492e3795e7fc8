package testsCommon

import (
	"context"
	"time"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
)

// HistoryStoreStub -
type HistoryStoreStub struct {
	AppendSnapshotHandler   func(ctx context.Context, repository string, snapshot *traffic.Snapshot) error
	GetHistoryHandler       func(ctx context.Context, repository string) (*traffic.RepositoryHistory, error)
	GetLastUpdatedHandler   func(ctx context.Context, repository string) (time.Time, error)
	GetRevisionHandler      func(ctx context.Context, repository string) (int64, error)
	ListRepositoriesHandler func(ctx context.Context) ([]string, error)
	CloseHandler            func() error
}

// AppendSnapshot -
func (stub *HistoryStoreStub) AppendSnapshot(ctx context.Context, repository string, snapshot *traffic.Snapshot) error {
	if stub.AppendSnapshotHandler != nil {
		return stub.AppendSnapshotHandler(ctx, repository, snapshot)
	}

	return nil
}

// GetHistory -
func (stub *HistoryStoreStub) GetHistory(ctx context.Context, repository string) (*traffic.RepositoryHistory, error) {
	if stub.GetHistoryHandler != nil {
		return stub.GetHistoryHandler(ctx, repository)
	}

	return &traffic.RepositoryHistory{Repository: repository}, nil
}

// GetLastUpdated -
func (stub *HistoryStoreStub) GetLastUpdated(ctx context.Context, repository string) (time.Time, error) {
	if stub.GetLastUpdatedHandler != nil {
		return stub.GetLastUpdatedHandler(ctx, repository)
	}

	return time.Time{}, nil
}

// GetRevision -
func (stub *HistoryStoreStub) GetRevision(ctx context.Context, repository string) (int64, error) {
	if stub.GetRevisionHandler != nil {
		return stub.GetRevisionHandler(ctx, repository)
	}

	return 0, nil
}

// ListRepositories -
func (stub *HistoryStoreStub) ListRepositories(ctx context.Context) ([]string, error) {
	if stub.ListRepositoriesHandler != nil {
		return stub.ListRepositoriesHandler(ctx)
	}

	return make([]string, 0), nil
}

// Close -
func (stub *HistoryStoreStub) Close() error {
	if stub.CloseHandler != nil {
		return stub.CloseHandler()
	}

	return nil
}

// IsInterfaceNil -
func (stub *HistoryStoreStub) IsInterfaceNil() bool {
	return stub == nil
}
