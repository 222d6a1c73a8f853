package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/tanmay/corebank/backend/internal/domain"
	"github.com/tanmay/corebank/backend/internal/repository"
)

// ProfileStore is the lookup contract required by the decision service.
type ProfileStore interface {
	LookupProfile(ctx context.Context, customerID string) (domain.CustomerProfile, error)
	SampleCustomerIDs(ctx context.Context, limit int) ([]string, error)
}

// Scorer produces a risk label and per-label probabilities for one feature
// vector.
type Scorer interface {
	Score(ctx context.Context, features domain.FeatureVector) (domain.RiskScore, error)
}

// LoanRequest is the pipeline entry point.
type LoanRequest struct {
	CustomerID string
	LoanAmount float64
}

// Options tunes the decision service. Zero values fall back to defaults.
type Options struct {
	// LookupTimeout bounds the profile store call.
	LookupTimeout time.Duration
	// ScoringTimeout bounds the scoring call.
	ScoringTimeout time.Duration
	// SampleSize caps how many IDs RandomCustomerID draws from.
	SampleSize int
}

const (
	defaultUpstreamTimeout = 10 * time.Second
	defaultSampleSize      = 50
)

// DecisionService orchestrates one loan decision: profile lookup, feature
// assembly, scoring, and response shaping. It is stateless and holds no
// cross-request data; repeating a request against unchanged backing data
// yields the same decision.
type DecisionService struct {
	profiles ProfileStore
	scorer   Scorer
	opts     Options
	randFn   func(n int) int
}

// NewDecisionService wires the service with its two collaborators.
func NewDecisionService(profiles ProfileStore, scorer Scorer, opts Options) *DecisionService {
	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = defaultUpstreamTimeout
	}
	if opts.ScoringTimeout <= 0 {
		opts.ScoringTimeout = defaultUpstreamTimeout
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = defaultSampleSize
	}
	return &DecisionService{
		profiles: profiles,
		scorer:   scorer,
		opts:     opts,
		randFn:   rand.Intn,
	}
}

// Decide runs the two-phase pipeline for one request.
//
// An unknown customer is a first-class success outcome: the decision carries
// OutcomeManualReview and the scorer is never consulted. A store or scorer
// failure aborts the whole request; no partial decision is ever returned.
func (s *DecisionService) Decide(ctx context.Context, req LoanRequest) (domain.Decision, error) {
	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		return domain.Decision{}, fmt.Errorf("%w: customer ID is required", ErrInvalidRequest)
	}
	if req.LoanAmount <= 0 || math.IsNaN(req.LoanAmount) || math.IsInf(req.LoanAmount, 0) {
		return domain.Decision{}, fmt.Errorf("%w: loan amount must be a positive number", ErrInvalidRequest)
	}

	lookupCtx, cancel := context.WithTimeout(ctx, s.opts.LookupTimeout)
	profile, err := s.profiles.LookupProfile(lookupCtx, customerID)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return domain.Decision{
				Outcome: domain.OutcomeManualReview,
				Message: fmt.Sprintf("No credit history found for customer %q. Application queued for manual review.", customerID),
			}, nil
		}
		if ctx.Err() != nil {
			// Caller went away; surface the cancellation untouched.
			return domain.Decision{}, ctx.Err()
		}
		return domain.Decision{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	features := domain.NewFeatureVector(profile, req.LoanAmount)

	scoreCtx, cancel := context.WithTimeout(ctx, s.opts.ScoringTimeout)
	score, err := s.scorer.Score(scoreCtx, features)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return domain.Decision{}, ctx.Err()
		}
		// The profile already fetched is discarded with the request.
		return domain.Decision{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	confidence, ok := score.Confidence()
	if !ok {
		return domain.Decision{}, fmt.Errorf("%w: scorer returned no probability for label %d", ErrUpstreamUnavailable, score.Label)
	}

	return domain.Decision{
		Outcome:    domain.OutcomeForLabel(score.Label),
		Label:      score.Label,
		Confidence: confidence,
		Profile:    &profile,
	}, nil
}

// DecideApplication runs the pipeline for an application fetched from the
// inbox.
func (s *DecisionService) DecideApplication(ctx context.Context, app domain.LoanApplication) (domain.Decision, error) {
	return s.Decide(ctx, LoanRequest{
		CustomerID: app.CustomerID,
		LoanAmount: app.LoanAmount,
	})
}

// RandomCustomerID returns one stored customer identifier, drawn at random
// from a bounded sample. It exists for the demo auto-fill flow.
func (s *DecisionService) RandomCustomerID(ctx context.Context) (string, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, s.opts.LookupTimeout)
	defer cancel()

	ids, err := s.profiles.SampleCustomerIDs(lookupCtx, s.opts.SampleSize)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	if len(ids) == 0 {
		return "", ErrNoCustomers
	}
	return ids[s.randFn(len(ids))], nil
}
