package warehouse

import (
	"context"
	"errors"
)

// Client defines the minimal contract required by the repositories to
// interact with the managed SQL warehouse.
//
// Every statement carries its values as named parameters; callers never
// interpolate request data into SQL text.
type Client interface {
	Query(ctx context.Context, stmt Statement) (Result, error)
	Insert(ctx context.Context, dataset, table string, rows any) error
	VerifyConnectivity(ctx context.Context) error
	Close() error
}

// Statement pairs a SQL string with its named parameter values.
type Statement struct {
	SQL    string
	Params map[string]any
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// Record groups key-value pairs returned from the warehouse engine.
type Record map[string]any

// Options configures a warehouse client implementation.
type Options struct {
	ProjectID string
	Location  string
}

// ErrMissingProject indicates the warehouse project is not provided.
var ErrMissingProject = errors.New("warehouse project ID is required")
