package testsCommon

import (
	"net/http"
	"sync"
	"time"
)

// MetricsStub -
type MetricsStub struct {
	mut         sync.Mutex
	Collections map[string]int
	CacheHits   int
	CacheMisses int
}

// NewMetricsStub -
func NewMetricsStub() *MetricsStub {
	return &MetricsStub{
		Collections: make(map[string]int),
	}
}

// IncCollection -
func (stub *MetricsStub) IncCollection(outcome string) {
	stub.mut.Lock()
	stub.Collections[outcome]++
	stub.mut.Unlock()
}

// GetCollections -
func (stub *MetricsStub) GetCollections(outcome string) int {
	stub.mut.Lock()
	defer stub.mut.Unlock()

	return stub.Collections[outcome]
}

// ObserveBatchDuration -
func (stub *MetricsStub) ObserveBatchDuration(_ time.Duration) {
}

// IncRequestsTotal -
func (stub *MetricsStub) IncRequestsTotal(_ string, _ int) {
}

// ObserveRequestDuration -
func (stub *MetricsStub) ObserveRequestDuration(_ string, _ time.Duration) {
}

// IncCacheHits -
func (stub *MetricsStub) IncCacheHits() {
	stub.mut.Lock()
	stub.CacheHits++
	stub.mut.Unlock()
}

// IncCacheMisses -
func (stub *MetricsStub) IncCacheMisses() {
	stub.mut.Lock()
	stub.CacheMisses++
	stub.mut.Unlock()
}

// Handler -
func (stub *MetricsStub) Handler() http.Handler {
	return http.NotFoundHandler()
}

// IsInterfaceNil -
func (stub *MetricsStub) IsInterfaceNil() bool {
	return stub == nil
}
