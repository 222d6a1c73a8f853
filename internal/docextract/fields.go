package docextract

import (
	"regexp"
	"strconv"
)

// The application forms carry a fixed text layout, so field extraction is a
// set of fixed patterns over the OCR text rather than a form parser.
var (
	applicantIDPattern = regexp.MustCompile(`Applicant ID: ([a-zA-Z0-9\-]+)`)
	incomePattern      = regexp.MustCompile(`Declared Annual Income: \$([\d]+)`)
	loanAmountPattern  = regexp.MustCompile(`Requested Loan Amount: \$([\d]+)`)
	appDatePattern     = regexp.MustCompile(`Application Date: ([\d\-]+)`)
)

// ApplicationFields holds the values pulled from one document's text.
type ApplicationFields struct {
	CustomerID string
	Income     int64
	LoanAmount int64
	AppDate    string
}

// ParseFields extracts the four application fields from OCR text.
//
// This is a lossy, best-effort extraction: any field whose pattern does not
// match is left at its zero value and processing continues. The batch
// pipeline stores these rows as-is; interactive callers must validate the
// result instead of trusting it.
func ParseFields(text string) ApplicationFields {
	var fields ApplicationFields

	if m := applicantIDPattern.FindStringSubmatch(text); m != nil {
		fields.CustomerID = m[1]
	}
	if m := incomePattern.FindStringSubmatch(text); m != nil {
		fields.Income = parseInt64(m[1])
	}
	if m := loanAmountPattern.FindStringSubmatch(text); m != nil {
		fields.LoanAmount = parseInt64(m[1])
	}
	if m := appDatePattern.FindStringSubmatch(text); m != nil {
		fields.AppDate = m[1]
	}

	return fields
}

func parseInt64(value string) int64 {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
