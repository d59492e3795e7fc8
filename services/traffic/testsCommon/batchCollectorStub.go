package testsCommon

import (
	"context"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/common"
)

// BatchCollectorStub -
type BatchCollectorStub struct {
	CollectAllHandler func(ctx context.Context) ([]common.CollectionResult, error)
}

// CollectAll -
func (stub *BatchCollectorStub) CollectAll(ctx context.Context) ([]common.CollectionResult, error) {
	if stub.CollectAllHandler != nil {
		return stub.CollectAllHandler(ctx)
	}

	return make([]common.CollectionResult, 0), nil
}

// IsInterfaceNil -
func (stub *BatchCollectorStub) IsInterfaceNil() bool {
	return stub == nil
}
