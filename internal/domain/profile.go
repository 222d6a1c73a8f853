package domain

// CustomerProfile is the stored credit history snapshot for one customer.
// It is read-only for the duration of a decision request; the profile store
// owns the canonical record.
type CustomerProfile struct {
	CustomerID     string
	Age            int
	Income         float64
	CreditScore    int
	MonthsEmployed int
	NumCreditLines int
	InterestRate   float64
	DTIRatio       float64
}

// ProfileEcho is the subset of profile fields echoed back to API clients
// alongside a scored decision.
type ProfileEcho struct {
	Income         float64 `json:"income"`
	CreditScore    int     `json:"credit_score"`
	DTIRatio       float64 `json:"dti_ratio"`
	MonthsEmployed int     `json:"months_employed"`
}

// Echo extracts the client-facing subset of the profile.
func (p CustomerProfile) Echo() ProfileEcho {
	return ProfileEcho{
		Income:         p.Income,
		CreditScore:    p.CreditScore,
		DTIRatio:       p.DTIRatio,
		MonthsEmployed: p.MonthsEmployed,
	}
}
