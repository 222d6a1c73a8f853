package docextract

import "testing"

const sampleFormText = `CoreBanking Loan Application Form

Applicant ID: a1b2c3d4
Declared Annual Income: $80000
Requested Loan Amount: $20000
Application Date: 2026-08-01

Signature: ____________`

func TestParseFields(t *testing.T) {
	fields := ParseFields(sampleFormText)

	if fields.CustomerID != "a1b2c3d4" {
		t.Errorf("customer ID: got %q", fields.CustomerID)
	}
	if fields.Income != 80000 {
		t.Errorf("income: got %d", fields.Income)
	}
	if fields.LoanAmount != 20000 {
		t.Errorf("loan amount: got %d", fields.LoanAmount)
	}
	if fields.AppDate != "2026-08-01" {
		t.Errorf("app date: got %q", fields.AppDate)
	}
}

func TestParseFields_PartialMatch(t *testing.T) {
	fields := ParseFields("Applicant ID: xyz-9\nsome smudged OCR output")

	if fields.CustomerID != "xyz-9" {
		t.Errorf("customer ID: got %q", fields.CustomerID)
	}
	if fields.Income != 0 || fields.LoanAmount != 0 || fields.AppDate != "" {
		t.Errorf("unmatched fields must stay at zero values: %+v", fields)
	}
}

func TestParseFields_NoMatch(t *testing.T) {
	fields := ParseFields("completely illegible scan")
	if fields != (ApplicationFields{}) {
		t.Fatalf("expected zero-value fields, got %+v", fields)
	}
}

func TestParseFields_HyphenatedID(t *testing.T) {
	fields := ParseFields("Applicant ID: abc-123-def Requested Loan Amount: $500")
	if fields.CustomerID != "abc-123-def" {
		t.Errorf("hyphens belong to the ID: got %q", fields.CustomerID)
	}
	if fields.LoanAmount != 500 {
		t.Errorf("loan amount: got %d", fields.LoanAmount)
	}
}

func TestParseFields_DollarSignRequired(t *testing.T) {
	fields := ParseFields("Declared Annual Income: 80000")
	if fields.Income != 0 {
		t.Errorf("income without a dollar sign must not match, got %d", fields.Income)
	}
}
