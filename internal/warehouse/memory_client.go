package warehouse

import (
	"context"
	"sync"
)

// MemoryClient is a simple in-memory implementation of the Client interface
// used for unit testing repository and scoring logic without a live
// warehouse.
type MemoryClient struct {
	mu           sync.Mutex
	queryCalls   []ExecutedStatement
	insertCalls  []ExecutedInsert
	queryResults []Result
	err          error
	connectivity error
}

// ExecutedStatement captures a SQL statement and parameters sent to the
// warehouse.
type ExecutedStatement struct {
	SQL    string
	Params map[string]any
}

// ExecutedInsert captures a streamed insert request.
type ExecutedInsert struct {
	Dataset string
	Table   string
	Rows    any
}

// NewMemoryClient instantiates the in-memory client with optional canned
// results.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError configures the client to return the provided error for
// subsequent calls.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied
// error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// PushQueryResult appends a result that will be returned on the next Query
// call.
func (m *MemoryClient) PushQueryResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryResults = append(m.queryResults, res)
}

func (m *MemoryClient) Query(_ context.Context, stmt Statement) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}

	m.queryCalls = append(m.queryCalls, ExecutedStatement{
		SQL:    stmt.SQL,
		Params: cloneParams(stmt.Params),
	})

	if len(m.queryResults) == 0 {
		return Result{}, nil
	}

	res := m.queryResults[0]
	m.queryResults = m.queryResults[1:]
	return res, nil
}

func (m *MemoryClient) Insert(_ context.Context, dataset, table string, rows any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}

	m.insertCalls = append(m.insertCalls, ExecutedInsert{
		Dataset: dataset,
		Table:   table,
		Rows:    rows,
	})
	return nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close() error {
	return nil
}

// QueryCalls returns a snapshot of executed statements.
func (m *MemoryClient) QueryCalls() []ExecutedStatement {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedStatement(nil), m.queryCalls...)
}

// InsertCalls returns a snapshot of executed inserts.
func (m *MemoryClient) InsertCalls() []ExecutedInsert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedInsert(nil), m.insertCalls...)
}

func cloneParams(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
