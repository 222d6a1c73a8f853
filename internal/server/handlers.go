package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tanmay/corebank/backend/internal/domain"
	"github.com/tanmay/corebank/backend/internal/inbox"
	"github.com/tanmay/corebank/backend/internal/service"
)

// manualReviewSentinel is the prediction value clients see when an
// application is routed to a human instead of the model.
const manualReviewSentinel = "HITL"

// InboxReader is the pending-application source consumed by the inbox
// endpoints.
type InboxReader interface {
	List(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, id string) (domain.LoanApplication, error)
}

// APIHandlers exposes HTTP handlers for the decision API.
type APIHandlers struct {
	logger    *slog.Logger
	decisions *service.DecisionService
	inbox     InboxReader
}

// NewAPIHandlers constructs an APIHandlers instance. The inbox reader may be
// nil when no blob store is configured; inbox routes then report the feature
// as unavailable.
func NewAPIHandlers(logger *slog.Logger, decisions *service.DecisionService, inboxReader InboxReader) *APIHandlers {
	return &APIHandlers{
		logger:    logger,
		decisions: decisions,
		inbox:     inboxReader,
	}
}

type loanRequestPayload struct {
	CustomerID string      `json:"customer_id"`
	LoanAmount json.Number `json:"loan_amount"`
}

type scoredResponse struct {
	Profile     domain.ProfileEcho `json:"profile"`
	Prediction  int                `json:"prediction"`
	Probability float64            `json:"probability"`
}

type manualReviewResponse struct {
	Prediction  string  `json:"prediction"`
	Probability float64 `json:"probability"`
	Message     string  `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *APIHandlers) handleProcessLoan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload loanRequestPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The amount arrives as a JSON number or a numeric form string; either
	// way a non-numeric value is an invalid request, not a 500.
	amount, err := payload.LoanAmount.Float64()
	if err != nil {
		writeError(w, http.StatusBadRequest, "loan_amount must be a number")
		return
	}

	decision, err := h.decisions.Decide(r.Context(), service.LoanRequest{
		CustomerID: payload.CustomerID,
		LoanAmount: amount,
	})
	if err != nil {
		h.writeServiceError(w, r, err, "process loan failed")
		return
	}

	h.respondDecision(w, decision)
}

func (h *APIHandlers) handleRandomCustomer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	id, err := h.decisions.RandomCustomerID(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoCustomers) {
			writeError(w, http.StatusNotFound, "no customer data available")
			return
		}
		h.writeServiceError(w, r, err, "random customer lookup failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"customer_id": id})
}

func (h *APIHandlers) handleInboxList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	if h.inbox == nil {
		writeError(w, http.StatusNotImplemented, "inbox is not configured")
		return
	}

	ids, err := h.inbox.List(r.Context())
	if err != nil {
		h.logger.Error("inbox listing failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "failed to list pending applications")
		return
	}
	if ids == nil {
		ids = []string{}
	}

	respondJSON(w, http.StatusOK, map[string]any{"applications": ids})
}

func (h *APIHandlers) handleInboxDecision(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	if h.inbox == nil {
		writeError(w, http.StatusNotImplemented, "inbox is not configured")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/inbox/applications/")
	id, ok := strings.CutSuffix(rest, "/decision")
	id = strings.Trim(id, "/")
	if !ok || id == "" {
		writeError(w, http.StatusBadRequest, "expected /inbox/applications/{id}/decision")
		return
	}

	app, err := h.inbox.Fetch(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, "inbox fetch failed")
		return
	}

	decision, err := h.decisions.DecideApplication(r.Context(), app)
	if err != nil {
		h.writeServiceError(w, r, err, "inbox decision failed")
		return
	}

	h.respondDecision(w, decision)
}

func (h *APIHandlers) respondDecision(w http.ResponseWriter, decision domain.Decision) {
	if decision.Outcome == domain.OutcomeManualReview {
		respondJSON(w, http.StatusOK, manualReviewResponse{
			Prediction:  manualReviewSentinel,
			Probability: 0.0,
			Message:     decision.Message,
		})
		return
	}

	respondJSON(w, http.StatusOK, scoredResponse{
		Profile:     decision.Profile.Echo(),
		Prediction:  int(decision.Label),
		Probability: decision.Confidence,
	})
}

// writeServiceError maps the pipeline's error taxonomy onto HTTP statuses.
// Manual review is not an error and never reaches this path.
func (h *APIHandlers) writeServiceError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, inbox.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, inbox.ErrMalformedApplication):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrUpstreamUnavailable):
		h.logger.Error(logMsg, "error", err, "path", r.URL.Path)
		writeError(w, http.StatusServiceUnavailable, "upstream unavailable, please retry")
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		h.logger.Error(logMsg, "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, target any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("invalid JSON payload: %w", err)
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Error: message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
