package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tanmay/corebank/backend/internal/domain"
	"github.com/tanmay/corebank/backend/internal/warehouse"
)

var (
	// ErrProfileNotFound signals that no credit history exists for the
	// requested customer. Callers treat this as the manual-review branch,
	// not as a failure.
	ErrProfileNotFound = errors.New("customer profile not found")

	// ErrStoreUnavailable signals that the backing warehouse errored or was
	// unreachable. Distinct from not-found; the repository never retries.
	ErrStoreUnavailable = errors.New("profile store unavailable")
)

// Tables groups the warehouse locations the repository reads and writes.
type Tables struct {
	Dataset           string
	HistoryTable      string
	ApplicationsTable string
}

// Repository encapsulates warehouse persistence for customer credit data.
type Repository struct {
	client warehouse.Client
	tables Tables
}

// New instantiates a Repository backed by the supplied warehouse client.
func New(client warehouse.Client, tables Tables) *Repository {
	if tables.Dataset == "" {
		tables.Dataset = "credit_risk_mvp"
	}
	if tables.HistoryTable == "" {
		tables.HistoryTable = "credit_history"
	}
	if tables.ApplicationsTable == "" {
		tables.ApplicationsTable = "loan_applications"
	}
	return &Repository{client: client, tables: tables}
}

const lookupProfileSQLTemplate = `
SELECT customer_id, age, income, credit_score, months_employed, num_credit_lines, interest_rate, dti_ratio
FROM %s
WHERE customer_id = @customer_id
LIMIT 1`

const sampleCustomerIDsSQLTemplate = `
SELECT customer_id
FROM %s
LIMIT @limit`

// LookupProfile fetches the stored credit history for one customer.
//
// The identifier is trimmed of surrounding whitespace before the query runs:
// pasted IDs routinely carry hidden spaces or newlines, and an untrimmed
// lookup would report a spurious not-found. The customer ID travels as a
// query parameter, never as interpolated SQL text.
func (r *Repository) LookupProfile(ctx context.Context, customerID string) (domain.CustomerProfile, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.CustomerProfile{}, fmt.Errorf("%w: empty customer ID", ErrProfileNotFound)
	}

	stmt := warehouse.Statement{
		SQL: fmt.Sprintf(lookupProfileSQLTemplate, r.historyTableRef()),
		Params: map[string]any{
			"customer_id": customerID,
		},
	}

	res, err := r.client.Query(ctx, stmt)
	if err != nil {
		return domain.CustomerProfile{}, fmt.Errorf("%w: lookup %s: %v", ErrStoreUnavailable, customerID, err)
	}
	if len(res.Records) == 0 {
		return domain.CustomerProfile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, customerID)
	}

	// Duplicate customer IDs are a data-quality concern upstream; the first
	// row wins.
	record := res.Records[0]
	profile := domain.CustomerProfile{
		CustomerID:     toString(record["customer_id"]),
		Age:            toInt(record["age"]),
		Income:         toFloat(record["income"]),
		CreditScore:    toInt(record["credit_score"]),
		MonthsEmployed: toInt(record["months_employed"]),
		NumCreditLines: toInt(record["num_credit_lines"]),
		InterestRate:   toFloat(record["interest_rate"]),
		DTIRatio:       toFloat(record["dti_ratio"]),
	}
	if profile.CustomerID == "" {
		profile.CustomerID = customerID
	}
	return profile, nil
}

// SampleCustomerIDs returns up to limit stored customer identifiers. Used by
// the demo auto-fill endpoint to hand out a known-good ID.
func (r *Repository) SampleCustomerIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}

	stmt := warehouse.Statement{
		SQL: fmt.Sprintf(sampleCustomerIDsSQLTemplate, r.historyTableRef()),
		Params: map[string]any{
			"limit": int64(limit),
		},
	}

	res, err := r.client.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%w: sample customer IDs: %v", ErrStoreUnavailable, err)
	}

	ids := make([]string, 0, len(res.Records))
	for _, record := range res.Records {
		if id := toString(record["customer_id"]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// InsertApplications appends extracted application rows to the applications
// table. Rows are best-effort data from the document pipeline and are stored
// as-is.
func (r *Repository) InsertApplications(ctx context.Context, rows []domain.ApplicationRecord) error {
	if len(rows) == 0 {
		return nil
	}
	if err := r.client.Insert(ctx, r.tables.Dataset, r.tables.ApplicationsTable, rows); err != nil {
		return fmt.Errorf("%w: insert %d applications: %v", ErrStoreUnavailable, len(rows), err)
	}
	return nil
}

func (r *Repository) historyTableRef() string {
	return fmt.Sprintf("`%s.%s`", r.tables.Dataset, r.tables.HistoryTable)
}
