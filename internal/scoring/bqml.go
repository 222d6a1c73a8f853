package scoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tanmay/corebank/backend/internal/domain"
	"github.com/tanmay/corebank/backend/internal/warehouse"
)

// ErrScoringFailed signals that the model responded but the result is
// unusable: no row came back, the row is malformed, or the predicted label
// is absent from the model's own probability set. Callers must propagate the
// failure rather than fabricate a decision.
var ErrScoringFailed = errors.New("scoring failed")

// Options locates the warehouse-hosted risk model.
type Options struct {
	Dataset string
	Model   string
}

// BQMLScorer invokes the pre-trained risk model through the warehouse's
// inline prediction function. Feature values travel as named query
// parameters; only the model reference is templated into the SQL text.
type BQMLScorer struct {
	client warehouse.Client
	opts   Options
}

// NewBQMLScorer constructs a scorer bound to the given model.
func NewBQMLScorer(client warehouse.Client, opts Options) *BQMLScorer {
	if opts.Dataset == "" {
		opts.Dataset = "credit_risk_mvp"
	}
	if opts.Model == "" {
		opts.Model = "risk_score_model"
	}
	return &BQMLScorer{client: client, opts: opts}
}

const predictSQLTemplate = `
SELECT predicted_label, predicted_label_probs
FROM ML.PREDICT(
  MODEL %s,
  (SELECT
    @age AS age,
    @income AS income,
    @loan_amount AS loan_amount,
    @credit_score AS credit_score,
    @months_employed AS months_employed,
    @num_credit_lines AS num_credit_lines,
    @interest_rate AS interest_rate,
    @dti_ratio AS dti_ratio
  )
)`

// Score submits one feature vector and parses the predicted label together
// with the per-label probability entries.
func (s *BQMLScorer) Score(ctx context.Context, features domain.FeatureVector) (domain.RiskScore, error) {
	stmt := warehouse.Statement{
		SQL: fmt.Sprintf(predictSQLTemplate, s.modelRef()),
		Params: map[string]any{
			"age":              int64(features.Age),
			"income":           features.Income,
			"loan_amount":      features.LoanAmount,
			"credit_score":     int64(features.CreditScore),
			"months_employed":  int64(features.MonthsEmployed),
			"num_credit_lines": int64(features.NumCreditLines),
			"interest_rate":    features.InterestRate,
			"dti_ratio":        features.DTIRatio,
		},
	}

	res, err := s.client.Query(ctx, stmt)
	if err != nil {
		return domain.RiskScore{}, fmt.Errorf("run prediction: %w", err)
	}
	if len(res.Records) == 0 {
		return domain.RiskScore{}, fmt.Errorf("%w: prediction returned no rows", ErrScoringFailed)
	}

	return parsePrediction(res.Records[0])
}

func (s *BQMLScorer) modelRef() string {
	return fmt.Sprintf("`%s.%s`", s.opts.Dataset, s.opts.Model)
}

func parsePrediction(record warehouse.Record) (domain.RiskScore, error) {
	label, ok := parseLabel(record["predicted_label"])
	if !ok {
		return domain.RiskScore{}, fmt.Errorf("%w: unreadable predicted label %v", ErrScoringFailed, record["predicted_label"])
	}

	probs, err := parseProbabilities(record["predicted_label_probs"])
	if err != nil {
		return domain.RiskScore{}, err
	}

	score := domain.RiskScore{Label: label, Probabilities: probs}
	if _, ok := score.Confidence(); !ok {
		return domain.RiskScore{}, fmt.Errorf("%w: no probability entry for predicted label %d", ErrScoringFailed, label)
	}
	return score, nil
}

// parseProbabilities unpacks the repeated (label, prob) record the model
// attaches to each prediction row.
func parseProbabilities(value any) (map[domain.RiskLabel]float64, error) {
	entries, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: unreadable probability set %T", ErrScoringFailed, value)
	}

	probs := make(map[domain.RiskLabel]float64, len(entries))
	for _, entry := range entries {
		fields, ok := asRecord(entry)
		if !ok {
			return nil, fmt.Errorf("%w: unreadable probability entry %T", ErrScoringFailed, entry)
		}
		label, ok := parseLabel(fields["label"])
		if !ok {
			return nil, fmt.Errorf("%w: unreadable probability label %v", ErrScoringFailed, fields["label"])
		}
		probs[label] = asFloat(fields["prob"])
	}
	return probs, nil
}

func asRecord(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case warehouse.Record:
		return v, true
	default:
		return nil, false
	}
}

func parseLabel(value any) (domain.RiskLabel, bool) {
	switch v := value.(type) {
	case int64:
		return domain.RiskLabel(v), true
	case int:
		return domain.RiskLabel(v), true
	case float64:
		return domain.RiskLabel(int(v)), true
	case bool:
		if v {
			return domain.LabelHighRisk, true
		}
		return domain.LabelLowRisk, true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return domain.RiskLabel(n), true
	default:
		return 0, false
	}
}

func asFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
