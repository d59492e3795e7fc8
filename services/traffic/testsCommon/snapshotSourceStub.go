package testsCommon

import (
	"context"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/common"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
)

// SnapshotSourceStub -
type SnapshotSourceStub struct {
	ListRepositoriesHandler func(ctx context.Context) ([]common.RepositoryInfo, error)
	FetchSnapshotHandler    func(ctx context.Context, fullName string) (*traffic.Snapshot, error)
}

// ListRepositories -
func (stub *SnapshotSourceStub) ListRepositories(ctx context.Context) ([]common.RepositoryInfo, error) {
	if stub.ListRepositoriesHandler != nil {
		return stub.ListRepositoriesHandler(ctx)
	}

	return make([]common.RepositoryInfo, 0), nil
}

// FetchSnapshot -
func (stub *SnapshotSourceStub) FetchSnapshot(ctx context.Context, fullName string) (*traffic.Snapshot, error) {
	if stub.FetchSnapshotHandler != nil {
		return stub.FetchSnapshotHandler(ctx, fullName)
	}

	return &traffic.Snapshot{}, nil
}

// IsInterfaceNil -
func (stub *SnapshotSourceStub) IsInterfaceNil() bool {
	return stub == nil
}
