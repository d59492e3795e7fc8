package testsCommon

import (
	"context"

	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/common"
	"github.com/iulianpascalau/gh-traffic-monitoring/services/traffic/traffic"
)

// TrafficQuerierStub -
type TrafficQuerierStub struct {
	GetTotalsHandler  func(ctx context.Context, repository string) (traffic.Totals, error)
	GetSeriesHandler  func(ctx context.Context, repository string, startDate string, endDate string) (traffic.Series, error)
	GetTrafficHandler func(ctx context.Context, repository string, startDate string, endDate string) (*common.TrafficReport, error)
	ListStoredHandler func(ctx context.Context) ([]common.StoredRepository, error)
}

// GetTotals -
func (stub *TrafficQuerierStub) GetTotals(ctx context.Context, repository string) (traffic.Totals, error) {
	if stub.GetTotalsHandler != nil {
		return stub.GetTotalsHandler(ctx, repository)
	}

	return traffic.Totals{}, nil
}

// GetSeries -
func (stub *TrafficQuerierStub) GetSeries(ctx context.Context, repository string, startDate string, endDate string) (traffic.Series, error) {
	if stub.GetSeriesHandler != nil {
		return stub.GetSeriesHandler(ctx, repository, startDate, endDate)
	}

	return traffic.Series{}, nil
}

// GetTraffic -
func (stub *TrafficQuerierStub) GetTraffic(ctx context.Context, repository string, startDate string, endDate string) (*common.TrafficReport, error) {
	if stub.GetTrafficHandler != nil {
		return stub.GetTrafficHandler(ctx, repository, startDate, endDate)
	}

	return &common.TrafficReport{Name: repository}, nil
}

// ListStored -
func (stub *TrafficQuerierStub) ListStored(ctx context.Context) ([]common.StoredRepository, error) {
	if stub.ListStoredHandler != nil {
		return stub.ListStoredHandler(ctx)
	}

	return make([]common.StoredRepository, 0), nil
}

// IsInterfaceNil -
func (stub *TrafficQuerierStub) IsInterfaceNil() bool {
	return stub == nil
}
