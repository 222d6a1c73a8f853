package warehouse

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

// NewBigQueryClient establishes a BigQuery connection using the official
// client library. Values always travel as query parameters, which is what
// lets the repositories keep untrusted request data out of SQL text.
func NewBigQueryClient(ctx context.Context, opts Options) (Client, error) {
	if opts.ProjectID == "" {
		return nil, ErrMissingProject
	}

	client, err := bigquery.NewClient(ctx, opts.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("create bigquery client: %w", err)
	}
	if opts.Location != "" {
		client.Location = opts.Location
	}

	return &bigQueryClient{client: client, projectID: opts.ProjectID}, nil
}

type bigQueryClient struct {
	client    *bigquery.Client
	projectID string
}

func (c *bigQueryClient) Query(ctx context.Context, stmt Statement) (Result, error) {
	q := c.client.Query(stmt.SQL)

	// Deterministic parameter order keeps job metadata stable across runs.
	names := make([]string, 0, len(stmt.Params))
	for name := range stmt.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		q.Parameters = append(q.Parameters, bigquery.QueryParameter{
			Name:  name,
			Value: stmt.Params[name],
		})
	}

	it, err := q.Read(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("run warehouse query: %w", err)
	}

	var records []Record
	for {
		var row map[string]bigquery.Value
		err := it.Next(&row)
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("read warehouse row: %w", err)
		}
		record := make(Record, len(row))
		for key, value := range row {
			record[key] = normalizeValue(value)
		}
		records = append(records, record)
	}

	return Result{Records: records}, nil
}

// normalizeValue flattens the driver's nested value types (repeated fields,
// records) into plain []any / map[string]any so callers never depend on
// bigquery types.
func normalizeValue(value bigquery.Value) any {
	switch v := value.(type) {
	case []bigquery.Value:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalizeValue(item)
		}
		return out
	case map[string]bigquery.Value:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

func (c *bigQueryClient) Insert(ctx context.Context, dataset, table string, rows any) error {
	inserter := c.client.Dataset(dataset).Table(table).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("insert into %s.%s: %w", dataset, table, err)
	}
	return nil
}

// VerifyConnectivity issues a trivial query to confirm the warehouse is
// reachable and the caller is authorized.
func (c *bigQueryClient) VerifyConnectivity(ctx context.Context) error {
	q := c.client.Query("SELECT 1")
	it, err := q.Read(ctx)
	if err != nil {
		return fmt.Errorf("verify warehouse connectivity: %w", err)
	}
	var row []bigquery.Value
	if err := it.Next(&row); err != nil && !errors.Is(err, iterator.Done) {
		return fmt.Errorf("verify warehouse connectivity: %w", err)
	}
	return nil
}

func (c *bigQueryClient) Close() error {
	return c.client.Close()
}
