package domain

// RiskLabel is the binary label produced by the external risk model. The
// numeric convention is a fixed contract with the scorer and must not be
// inverted: 1 means high risk (reject), 0 means low risk (approve).
type RiskLabel int

const (
	LabelLowRisk  RiskLabel = 0
	LabelHighRisk RiskLabel = 1
)

// Outcome is the terminal state of one decision request.
type Outcome string

const (
	OutcomeApprove      Outcome = "approve"
	OutcomeReject       Outcome = "reject"
	OutcomeManualReview Outcome = "manual_review"
)

// RiskScore is the scorer's raw output: the predicted label and the
// probability the model assigned to each label it considered.
type RiskScore struct {
	Label         RiskLabel
	Probabilities map[RiskLabel]float64
}

// Confidence returns the probability entry matching the predicted label.
// Selection is by matching label, not by maximum, so the value stays correct
// if the scorer ever returns more than two labels. The second return is
// false when no entry matches.
func (s RiskScore) Confidence() (float64, bool) {
	p, ok := s.Probabilities[s.Label]
	return p, ok
}

// Decision is the normalized result of one loan request.
//
// Invariant: Outcome is OutcomeManualReview if and only if no profile exists
// for the requested customer; in that case Profile is nil and Confidence is
// zero. Otherwise Outcome reflects the scorer's label and Confidence is the
// probability of that label.
type Decision struct {
	Outcome    Outcome
	Label      RiskLabel
	Confidence float64
	Profile    *CustomerProfile
	Message    string
}

// OutcomeForLabel maps the scorer's label convention onto a decision outcome.
func OutcomeForLabel(label RiskLabel) Outcome {
	if label == LabelHighRisk {
		return OutcomeReject
	}
	return OutcomeApprove
}
