package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/tanmay/corebank/backend/internal/domain"
	"github.com/tanmay/corebank/backend/internal/repository"
	"github.com/tanmay/corebank/backend/internal/scoring"
)

type stubProfileStore struct {
	profile domain.CustomerProfile
	err     error
	calls   int
	lastID  string
	ids     []string
}

func (s *stubProfileStore) LookupProfile(_ context.Context, customerID string) (domain.CustomerProfile, error) {
	s.calls++
	s.lastID = customerID
	if s.err != nil {
		return domain.CustomerProfile{}, s.err
	}
	return s.profile, nil
}

func (s *stubProfileStore) SampleCustomerIDs(_ context.Context, _ int) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.ids, nil
}

type stubScorer struct {
	score domain.RiskScore
	err   error
	calls int
}

func (s *stubScorer) Score(_ context.Context, _ domain.FeatureVector) (domain.RiskScore, error) {
	s.calls++
	if s.err != nil {
		return domain.RiskScore{}, s.err
	}
	return s.score, nil
}

func knownProfile() domain.CustomerProfile {
	return domain.CustomerProfile{
		CustomerID:     "abc-123",
		Age:            34,
		Income:         80000,
		CreditScore:    720,
		MonthsEmployed: 36,
		NumCreditLines: 4,
		InterestRate:   7.5,
		DTIRatio:       0.3,
	}
}

func TestDecide_ScoredApproval(t *testing.T) {
	store := &stubProfileStore{profile: knownProfile()}
	scorer := &stubScorer{score: domain.RiskScore{
		Label: domain.LabelLowRisk,
		Probabilities: map[domain.RiskLabel]float64{
			domain.LabelLowRisk:  0.91,
			domain.LabelHighRisk: 0.09,
		},
	}}
	svc := NewDecisionService(store, scorer, Options{})

	decision, err := svc.Decide(context.Background(), LoanRequest{CustomerID: "abc-123", LoanAmount: 20000})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if decision.Outcome != domain.OutcomeApprove {
		t.Fatalf("expected approve, got %s", decision.Outcome)
	}
	if decision.Label != domain.LabelLowRisk {
		t.Errorf("expected label 0, got %d", decision.Label)
	}
	if decision.Confidence != 0.91 {
		t.Errorf("expected confidence 0.91, got %v", decision.Confidence)
	}
	if decision.Profile == nil {
		t.Fatal("expected profile echo")
	}
	echo := decision.Profile.Echo()
	if echo.Income != 80000 || echo.CreditScore != 720 || echo.DTIRatio != 0.3 || echo.MonthsEmployed != 36 {
		t.Errorf("unexpected profile echo: %+v", echo)
	}
}

func TestDecide_HighRiskRejection(t *testing.T) {
	store := &stubProfileStore{profile: knownProfile()}
	scorer := &stubScorer{score: domain.RiskScore{
		Label: domain.LabelHighRisk,
		Probabilities: map[domain.RiskLabel]float64{
			domain.LabelLowRisk:  0.2,
			domain.LabelHighRisk: 0.8,
		},
	}}
	svc := NewDecisionService(store, scorer, Options{})

	decision, err := svc.Decide(context.Background(), LoanRequest{CustomerID: "abc-123", LoanAmount: 20000})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if decision.Outcome != domain.OutcomeReject {
		t.Fatalf("expected reject, got %s", decision.Outcome)
	}
	if decision.Confidence != 0.8 {
		t.Errorf("expected confidence 0.8, got %v", decision.Confidence)
	}
}

func TestDecide_UnknownCustomerManualReview(t *testing.T) {
	store := &stubProfileStore{err: fmt.Errorf("%w: ghost-1", repository.ErrProfileNotFound)}
	scorer := &stubScorer{}
	svc := NewDecisionService(store, scorer, Options{})

	decision, err := svc.Decide(context.Background(), LoanRequest{CustomerID: "ghost-1", LoanAmount: 10000})
	if err != nil {
		t.Fatalf("manual review must be a success outcome, got error %v", err)
	}

	if decision.Outcome != domain.OutcomeManualReview {
		t.Fatalf("expected manual_review, got %s", decision.Outcome)
	}
	if decision.Confidence != 0 {
		t.Errorf("expected zero confidence, got %v", decision.Confidence)
	}
	if decision.Profile != nil {
		t.Error("manual review must not carry a profile")
	}
	if decision.Message == "" {
		t.Error("expected an explanatory message")
	}
	if scorer.calls != 0 {
		t.Fatalf("scorer must never run for unknown customers, got %d calls", scorer.calls)
	}
}

func TestDecide_StoreErrorIsUpstreamFailure(t *testing.T) {
	store := &stubProfileStore{err: fmt.Errorf("%w: connection reset", repository.ErrStoreUnavailable)}
	scorer := &stubScorer{}
	svc := NewDecisionService(store, scorer, Options{})

	_, err := svc.Decide(context.Background(), LoanRequest{CustomerID: "abc-123", LoanAmount: 10000})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream-unavailable, got %v", err)
	}
	if !errors.Is(err, repository.ErrStoreUnavailable) {
		t.Errorf("store failure should stay distinguishable in the chain, got %v", err)
	}
	if scorer.calls != 0 {
		t.Errorf("scorer must not run after a store failure, got %d calls", scorer.calls)
	}
}

func TestDecide_InvalidInputSkipsStore(t *testing.T) {
	tests := []struct {
		name string
		req  LoanRequest
	}{
		{"empty customer ID", LoanRequest{CustomerID: "", LoanAmount: 1000}},
		{"whitespace customer ID", LoanRequest{CustomerID: "   ", LoanAmount: 1000}},
		{"zero amount", LoanRequest{CustomerID: "abc-123", LoanAmount: 0}},
		{"negative amount", LoanRequest{CustomerID: "abc-123", LoanAmount: -50}},
		{"NaN amount", LoanRequest{CustomerID: "abc-123", LoanAmount: math.NaN()}},
		{"infinite amount", LoanRequest{CustomerID: "abc-123", LoanAmount: math.Inf(1)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &stubProfileStore{profile: knownProfile()}
			scorer := &stubScorer{}
			svc := NewDecisionService(store, scorer, Options{})

			_, err := svc.Decide(context.Background(), tc.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected invalid-request, got %v", err)
			}
			if store.calls != 0 {
				t.Errorf("store must not be called for invalid input, got %d calls", store.calls)
			}
			if scorer.calls != 0 {
				t.Errorf("scorer must not be called for invalid input, got %d calls", scorer.calls)
			}
		})
	}
}

func TestDecide_TrimsCustomerID(t *testing.T) {
	store := &stubProfileStore{profile: knownProfile()}
	scorer := &stubScorer{score: domain.RiskScore{
		Label:         domain.LabelLowRisk,
		Probabilities: map[domain.RiskLabel]float64{domain.LabelLowRisk: 0.7, domain.LabelHighRisk: 0.3},
	}}
	svc := NewDecisionService(store, scorer, Options{})

	decision, err := svc.Decide(context.Background(), LoanRequest{CustomerID: "  abc-123 \n", LoanAmount: 5000})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.lastID != "abc-123" {
		t.Fatalf("expected trimmed ID at the store, got %q", store.lastID)
	}
	if decision.Outcome != domain.OutcomeApprove {
		t.Fatalf("trimmed and untrimmed lookups must be equivalent, got %s", decision.Outcome)
	}
}

func TestDecide_ConfidenceMatchesPredictedLabel(t *testing.T) {
	// The predicted label carries the smaller probability here; confidence
	// selection must go by label match, never by maximum.
	store := &stubProfileStore{profile: knownProfile()}
	scorer := &stubScorer{score: domain.RiskScore{
		Label: domain.LabelLowRisk,
		Probabilities: map[domain.RiskLabel]float64{
			domain.LabelLowRisk:  0.4,
			domain.LabelHighRisk: 0.6,
		},
	}}
	svc := NewDecisionService(store, scorer, Options{})

	decision, err := svc.Decide(context.Background(), LoanRequest{CustomerID: "abc-123", LoanAmount: 5000})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if decision.Confidence != 0.4 {
		t.Fatalf("expected confidence 0.4 for predicted label 0, got %v", decision.Confidence)
	}
	if decision.Confidence < 0 || decision.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", decision.Confidence)
	}
}

func TestDecide_ScoringFailurePropagates(t *testing.T) {
	store := &stubProfileStore{profile: knownProfile()}
	scorer := &stubScorer{err: fmt.Errorf("%w: prediction returned no rows", scoring.ErrScoringFailed)}
	svc := NewDecisionService(store, scorer, Options{})

	_, err := svc.Decide(context.Background(), LoanRequest{CustomerID: "abc-123", LoanAmount: 5000})
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream-unavailable, got %v", err)
	}
	if !errors.Is(err, scoring.ErrScoringFailed) {
		t.Errorf("scoring failure should stay distinguishable in the chain, got %v", err)
	}
}

func TestDecide_MissingProbabilityEntry(t *testing.T) {
	store := &stubProfileStore{profile: knownProfile()}
	scorer := &stubScorer{score: domain.RiskScore{
		Label:         domain.LabelHighRisk,
		Probabilities: map[domain.RiskLabel]float64{domain.LabelLowRisk: 1.0},
	}}
	svc := NewDecisionService(store, scorer, Options{})

	_, err := svc.Decide(context.Background(), LoanRequest{CustomerID: "abc-123", LoanAmount: 5000})
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("a decision must never be fabricated without a matching probability, got %v", err)
	}
}

func TestDecide_Deterministic(t *testing.T) {
	store := &stubProfileStore{profile: knownProfile()}
	scorer := &stubScorer{score: domain.RiskScore{
		Label:         domain.LabelLowRisk,
		Probabilities: map[domain.RiskLabel]float64{domain.LabelLowRisk: 0.91, domain.LabelHighRisk: 0.09},
	}}
	svc := NewDecisionService(store, scorer, Options{})

	req := LoanRequest{CustomerID: "abc-123", LoanAmount: 20000}
	first, err := svc.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.Decide(context.Background(), req)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first.Outcome != second.Outcome || first.Label != second.Label || first.Confidence != second.Confidence {
		t.Fatalf("identical requests must yield identical decisions: %+v vs %+v", first, second)
	}
}

func TestRandomCustomerID(t *testing.T) {
	store := &stubProfileStore{ids: []string{"a", "b", "c"}}
	svc := NewDecisionService(store, &stubScorer{}, Options{})

	id, err := svc.RandomCustomerID(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	found := false
	for _, candidate := range store.ids {
		if candidate == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("returned ID %q is not in the sample", id)
	}
}

func TestRandomCustomerID_EmptyStore(t *testing.T) {
	svc := NewDecisionService(&stubProfileStore{}, &stubScorer{}, Options{})

	_, err := svc.RandomCustomerID(context.Background())
	if !errors.Is(err, ErrNoCustomers) {
		t.Fatalf("expected no-customers error, got %v", err)
	}
}
