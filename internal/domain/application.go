package domain

import "time"

// LoanApplication is a single loan request. It exists only for the duration
// of one decision; it may originate from a form submission or from a pending
// inbox payload.
type LoanApplication struct {
	CustomerID string
	LoanAmount float64
	// SourceObject names the blob the application was fetched from, when it
	// came through the inbox. Empty for direct API submissions.
	SourceObject string
}

// ApplicationRecord is a row appended to the applications table by the batch
// document pipeline. Fields extracted from OCR text are best-effort: an
// unmatched pattern leaves the zero value rather than failing the document.
type ApplicationRecord struct {
	CustomerID string    `bigquery:"customer_id"`
	Income     int64     `bigquery:"income"`
	LoanAmount int64     `bigquery:"loan_amount"`
	AppDate    string    `bigquery:"app_date"`
	FileName   string    `bigquery:"file_name"`
	IngestedAt time.Time `bigquery:"ingested_at"`
}

// FeatureVector is the flattened numeric input handed to the scorer for one
// decision: the stored profile fields plus the requested amount. Assembled
// fresh per request, never persisted.
type FeatureVector struct {
	Age            int
	Income         float64
	LoanAmount     float64
	CreditScore    int
	MonthsEmployed int
	NumCreditLines int
	InterestRate   float64
	DTIRatio       float64
}

// NewFeatureVector combines a profile with the requested loan amount.
func NewFeatureVector(profile CustomerProfile, loanAmount float64) FeatureVector {
	return FeatureVector{
		Age:            profile.Age,
		Income:         profile.Income,
		LoanAmount:     loanAmount,
		CreditScore:    profile.CreditScore,
		MonthsEmployed: profile.MonthsEmployed,
		NumCreditLines: profile.NumCreditLines,
		InterestRate:   profile.InterestRate,
		DTIRatio:       profile.DTIRatio,
	}
}
