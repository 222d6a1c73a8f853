package inbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tanmay/corebank/backend/internal/blob"
	"github.com/tanmay/corebank/backend/internal/docextract"
	"github.com/tanmay/corebank/backend/internal/domain"
)

// ErrMalformedApplication indicates a pending payload that could not be
// parsed into a usable loan application.
var ErrMalformedApplication = errors.New("malformed application payload")

// ErrApplicationNotFound indicates the requested payload does not exist.
var ErrApplicationNotFound = errors.New("application not found")

const payloadSuffix = ".json"

// Reader lists and fetches pending application payloads from the blob
// store. Payloads are the OCR service's JSON output: the document text plus
// an extraction confidence. The reader is a source of decision inputs only;
// it never decides anything itself.
type Reader struct {
	store  blob.Store
	prefix string
}

// NewReader binds a Reader to the store prefix holding pending payloads.
func NewReader(store blob.Store, prefix string) *Reader {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Reader{store: store, prefix: prefix}
}

// List returns the identifiers of pending applications. Each call re-lists
// the backing store; there is no cursor state to resume.
func (r *Reader) List(ctx context.Context) ([]string, error) {
	names, err := r.store.List(ctx, r.prefix, payloadSuffix)
	if err != nil {
		return nil, fmt.Errorf("list pending applications: %w", err)
	}

	ids := make([]string, 0, len(names))
	for _, name := range names {
		id := strings.TrimSuffix(strings.TrimPrefix(name, r.prefix), payloadSuffix)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// payload mirrors the OCR service's output object.
type payload struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Fetch loads one pending payload and parses it into a LoanApplication.
//
// Unlike the batch pipeline, which defaults unmatched fields and continues,
// a payload headed for the decision pipeline must identify the applicant and
// carry a positive amount; anything less fails with ErrMalformedApplication.
func (r *Reader) Fetch(ctx context.Context, id string) (domain.LoanApplication, error) {
	name := r.prefix + id + payloadSuffix

	data, err := r.store.Read(ctx, name)
	if err != nil {
		if errors.Is(err, blob.ErrObjectNotFound) {
			return domain.LoanApplication{}, fmt.Errorf("%w: %s", ErrApplicationNotFound, id)
		}
		return domain.LoanApplication{}, fmt.Errorf("fetch application %s: %w", id, err)
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.LoanApplication{}, fmt.Errorf("%w: %s: %v", ErrMalformedApplication, id, err)
	}

	fields := docextract.ParseFields(p.Text)
	if fields.CustomerID == "" {
		return domain.LoanApplication{}, fmt.Errorf("%w: %s: no applicant ID in payload text", ErrMalformedApplication, id)
	}
	if fields.LoanAmount <= 0 {
		return domain.LoanApplication{}, fmt.Errorf("%w: %s: missing or non-positive loan amount", ErrMalformedApplication, id)
	}

	return domain.LoanApplication{
		CustomerID:   fields.CustomerID,
		LoanAmount:   float64(fields.LoanAmount),
		SourceObject: name,
	}, nil
}
