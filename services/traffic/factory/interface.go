package factory

import "context"

// Server defines the operation of an entity able to serve requests
type Server interface {
	Start()
	Address() string
	Close() error
}

// Collector defines the scheduled collection entry point
type Collector interface {
	Process(ctx context.Context)
	IsInterfaceNil() bool
}
