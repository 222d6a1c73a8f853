package inbox

import (
	"context"
	"errors"
	"testing"

	"github.com/tanmay/corebank/backend/internal/blob"
)

const validPayload = `{
	"text": "Applicant ID: abc-123\nDeclared Annual Income: $80000\nRequested Loan Amount: $20000\nApplication Date: 2026-08-01",
	"confidence": 0.95
}`

func TestList(t *testing.T) {
	store := blob.NewMemoryStore()
	store.Put("batch_results/app-1.json", []byte(validPayload))
	store.Put("batch_results/app-2.json", []byte(validPayload))
	store.Put("batch_results/notes.txt", []byte("not a payload"))
	store.Put("application_forms/app-1.pdf", []byte("%PDF"))
	reader := NewReader(store, "batch_results")

	ids, err := reader.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 IDs, got %v", ids)
	}
	if ids[0] != "app-1" || ids[1] != "app-2" {
		t.Fatalf("unexpected IDs: %v", ids)
	}
}

func TestList_Empty(t *testing.T) {
	reader := NewReader(blob.NewMemoryStore(), "batch_results")

	ids, err := reader.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no IDs, got %v", ids)
	}
}

func TestFetch(t *testing.T) {
	store := blob.NewMemoryStore()
	store.Put("batch_results/app-1.json", []byte(validPayload))
	reader := NewReader(store, "batch_results")

	app, err := reader.Fetch(context.Background(), "app-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if app.CustomerID != "abc-123" {
		t.Errorf("customer ID: got %q", app.CustomerID)
	}
	if app.LoanAmount != 20000 {
		t.Errorf("loan amount: got %v", app.LoanAmount)
	}
	if app.SourceObject != "batch_results/app-1.json" {
		t.Errorf("source object: got %q", app.SourceObject)
	}
}

func TestFetch_NotFound(t *testing.T) {
	reader := NewReader(blob.NewMemoryStore(), "batch_results")

	_, err := reader.Fetch(context.Background(), "missing")
	if !errors.Is(err, ErrApplicationNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestFetch_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"broken JSON", `{"text": `},
		{"no applicant ID", `{"text": "illegible scan", "confidence": 0.2}`},
		{"missing amount", `{"text": "Applicant ID: abc-123", "confidence": 0.9}`},
		{"zero amount", `{"text": "Applicant ID: abc-123\nRequested Loan Amount: $0", "confidence": 0.9}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := blob.NewMemoryStore()
			store.Put("batch_results/bad.json", []byte(tc.payload))
			reader := NewReader(store, "batch_results")

			_, err := reader.Fetch(context.Background(), "bad")
			if !errors.Is(err, ErrMalformedApplication) {
				t.Fatalf("expected malformed-application, got %v", err)
			}
		})
	}
}

func TestFetch_StoreError(t *testing.T) {
	store := blob.NewMemoryStore().WithError(errors.New("bucket unreachable"))
	reader := NewReader(store, "batch_results")

	_, err := reader.Fetch(context.Background(), "app-1")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrApplicationNotFound) || errors.Is(err, ErrMalformedApplication) {
		t.Fatalf("transport failures must stay generic, got %v", err)
	}
}
